package azdo

import (
	"context"
	"fmt"
	"net/url"
)

// ListVariableGroups returns the variable groups of a project. Secret
// variable values are never returned by the API; the isSecret flag is.
func (c *Client) ListVariableGroups(ctx context.Context, project string) ([]VariableGroup, error) {
	path := fmt.Sprintf("%s/_apis/distributedtask/variablegroups", url.PathEscape(project))

	var resp variableGroupsResponse
	if err := c.getJSON(ctx, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Value, nil
}
