package azdo

import (
	"context"
	"fmt"
	"net/url"
)

// ListBuildDefinitions returns the build (pipeline) definitions of a project.
func (c *Client) ListBuildDefinitions(ctx context.Context, project string) ([]BuildDefinition, error) {
	path := fmt.Sprintf("%s/_apis/build/definitions", url.PathEscape(project))

	var resp buildDefinitionsResponse
	if err := c.getJSON(ctx, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Value, nil
}
