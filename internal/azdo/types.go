package azdo

import "time"

// Azure DevOps list responses share a {count, value} envelope.

type Project struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	State       string `json:"state"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

type projectsResponse struct {
	Count int       `json:"count"`
	Value []Project `json:"value"`
}

type Repository struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	DefaultBranch string `json:"defaultBranch"`
	IsDisabled    bool   `json:"isDisabled"`
	WebURL        string `json:"webUrl"`
	Size          int64  `json:"size"`
}

type repositoriesResponse struct {
	Count int          `json:"count"`
	Value []Repository `json:"value"`
}

type IdentityRef struct {
	DisplayName string `json:"displayName"`
	UniqueName  string `json:"uniqueName"`
}

type PullRequest struct {
	PullRequestID int         `json:"pullRequestId"`
	Title         string      `json:"title"`
	Status        string      `json:"status"`
	IsDraft       bool        `json:"isDraft"`
	CreatedBy     IdentityRef `json:"createdBy"`
	CreationDate  time.Time   `json:"creationDate"`
	SourceRefName string      `json:"sourceRefName"`
	TargetRefName string      `json:"targetRefName"`
	URL           string      `json:"url"`
}

type pullRequestsResponse struct {
	Count int           `json:"count"`
	Value []PullRequest `json:"value"`
}

type Variable struct {
	Value    string `json:"value"`
	IsSecret bool   `json:"isSecret"`
}

type VariableGroup struct {
	ID         int                 `json:"id"`
	Name       string              `json:"name"`
	Type       string              `json:"type"`
	Variables  map[string]Variable `json:"variables"`
	ModifiedBy IdentityRef         `json:"modifiedBy"`
	ModifiedOn time.Time           `json:"modifiedOn"`
}

type variableGroupsResponse struct {
	Count int             `json:"count"`
	Value []VariableGroup `json:"value"`
}

type BuildDefinition struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Path        string `json:"path"`
	QueueStatus string `json:"queueStatus"`
	Revision    int    `json:"revision"`
}

type buildDefinitionsResponse struct {
	Count int               `json:"count"`
	Value []BuildDefinition `json:"value"`
}
