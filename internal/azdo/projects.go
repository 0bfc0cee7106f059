package azdo

import (
	"context"
	"net/url"
	"strconv"
)

// projectListTop bounds a single project listing. The API caps responses
// anyway; organizations larger than this are out of scope (no pagination).
const projectListTop = 1000

// ListProjects returns every project in the organization, in API order.
// Identical concurrent calls share one round trip.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	params := url.Values{}
	params.Set("$top", strconv.Itoa(projectListTop))

	var resp projectsResponse
	if err := c.getJSONShared(ctx, "_apis/projects", params, &resp); err != nil {
		return nil, err
	}
	return resp.Value, nil
}
