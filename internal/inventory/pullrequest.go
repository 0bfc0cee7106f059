package inventory

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"

	"adoscan/internal/azdo"
)

// PullRequestRecord is one pull request, flattened with provenance.
type PullRequestRecord struct {
	XMLName       xml.Name  `json:"-" xml:"pullRequest"`
	Organization  string    `json:"organization" xml:"organization"`
	Project       string    `json:"project" xml:"project"`
	Repository    string    `json:"repository" xml:"repository"`
	PullRequestID int       `json:"pullRequestId" xml:"pullRequestId"`
	Title         string    `json:"title" xml:"title"`
	Status        string    `json:"status" xml:"status"`
	IsDraft       bool      `json:"isDraft" xml:"isDraft"`
	CreatedBy     string    `json:"createdBy" xml:"createdBy"`
	CreatedDate   time.Time `json:"createdDate" xml:"createdDate"`
	SourceBranch  string    `json:"sourceBranch" xml:"sourceBranch"`
	TargetBranch  string    `json:"targetBranch" xml:"targetBranch"`
	URL           string    `json:"url" xml:"url"`
}

func (r PullRequestRecord) Header() []string {
	return []string{
		"Organization", "Project", "Repository", "PullRequestID", "Title",
		"Status", "IsDraft", "CreatedBy", "CreatedDate", "SourceBranch",
		"TargetBranch", "URL",
	}
}

func (r PullRequestRecord) Row() []string {
	return []string{
		r.Organization, r.Project, r.Repository,
		strconv.Itoa(r.PullRequestID), r.Title, r.Status,
		strconv.FormatBool(r.IsDraft), r.CreatedBy,
		r.CreatedDate.UTC().Format(time.RFC3339),
		r.SourceBranch, r.TargetBranch, r.URL,
	}
}

func (r PullRequestRecord) SortKey() string {
	return fmt.Sprintf("%s/%s/%s/%010d", r.Organization, r.Project, r.Repository, r.PullRequestID)
}

// PullRequestRecords flattens a repository's pull requests. Draft pull
// requests are dropped unless includeDrafts is set.
func PullRequestRecords(org, project, repository string, prs []azdo.PullRequest, includeDrafts bool) []Record {
	records := make([]Record, 0, len(prs))
	for _, pr := range prs {
		if pr.IsDraft && !includeDrafts {
			continue
		}
		records = append(records, PullRequestRecord{
			Organization:  org,
			Project:       project,
			Repository:    repository,
			PullRequestID: pr.PullRequestID,
			Title:         pr.Title,
			Status:        pr.Status,
			IsDraft:       pr.IsDraft,
			CreatedBy:     pr.CreatedBy.DisplayName,
			CreatedDate:   pr.CreationDate,
			SourceBranch:  TrimRefPrefix(pr.SourceRefName),
			TargetBranch:  TrimRefPrefix(pr.TargetRefName),
			URL:           pr.URL,
		})
	}
	return records
}

// TrimRefPrefix strips the refs/heads/ prefix from a git ref name.
func TrimRefPrefix(ref string) string {
	return strings.TrimPrefix(ref, "refs/heads/")
}
