package azdo

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

const pullRequestListTop = 1000

// ListRepositories returns the git repositories of a project. Identical
// concurrent calls share one round trip.
func (c *Client) ListRepositories(ctx context.Context, project string) ([]Repository, error) {
	path := fmt.Sprintf("%s/_apis/git/repositories", url.PathEscape(project))

	var resp repositoriesResponse
	if err := c.getJSONShared(ctx, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Value, nil
}

// ListPullRequests returns pull requests for one repository. status is the
// searchCriteria.status value: active, completed, abandoned, or all.
func (c *Client) ListPullRequests(ctx context.Context, project, repositoryID, status string) ([]PullRequest, error) {
	path := fmt.Sprintf("%s/_apis/git/repositories/%s/pullrequests", url.PathEscape(project), url.PathEscape(repositoryID))
	params := url.Values{}
	params.Set("$top", strconv.Itoa(pullRequestListTop))
	if status != "" {
		params.Set("searchCriteria.status", status)
	}

	var resp pullRequestsResponse
	if err := c.getJSON(ctx, path, params, &resp); err != nil {
		return nil, err
	}
	return resp.Value, nil
}
