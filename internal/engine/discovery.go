package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"adoscan/internal/azdo"
)

// projectStateWellFormed is the only project state worth scanning; projects
// being created or deleted surface half-populated data.
const projectStateWellFormed = "wellFormed"

// DiscoverProjects lists the organization's projects and keeps the ones
// that are well-formed, have a non-blank name, and match at least one of
// the patterns. Results are sorted by name.
func DiscoverProjects(ctx context.Context, client *azdo.Client, patterns []string) ([]azdo.Project, error) {
	projects, err := client.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	kept := make([]azdo.Project, 0, len(projects))
	for _, p := range projects {
		if strings.TrimSpace(p.Name) == "" {
			continue
		}
		if !strings.EqualFold(p.State, projectStateWellFormed) {
			continue
		}
		if !MatchAnyProjectName(patterns, p.Name) {
			continue
		}
		kept = append(kept, p)
	}

	sort.Slice(kept, func(i, j int) bool { return kept[i].Name < kept[j].Name })
	return kept, nil
}

// DiscoverRepoTargets enumerates git repositories across projects, one
// listing per project with at most limit in flight, and returns one Target
// per enabled repository, sorted by key. A listing failure for any project
// fails the whole discovery: targets must be complete before dispatch.
func DiscoverRepoTargets(ctx context.Context, client *azdo.Client, projects []azdo.Project, limit int) ([]Target, error) {
	if limit < 1 {
		limit = 1
	}

	var (
		mu      sync.Mutex
		targets []Target
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, project := range projects {
		project := project
		g.Go(func() error {
			repos, err := client.ListRepositories(gctx, project.Name)
			if err != nil {
				return fmt.Errorf("failed to list repositories for %s: %w", project.Name, err)
			}
			mu.Lock()
			defer mu.Unlock()
			for _, repo := range repos {
				repo := repo
				if repo.IsDisabled {
					continue
				}
				targets = append(targets, Target{Project: project, Repo: &repo})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(targets, func(i, j int) bool { return targets[i].Key() < targets[j].Key() })
	return targets, nil
}

// ProjectTargets wraps projects as dispatch targets for project-scoped
// scans (variable groups).
func ProjectTargets(projects []azdo.Project) []Target {
	targets := make([]Target, 0, len(projects))
	for _, p := range projects {
		targets = append(targets, Target{Project: p})
	}
	return targets
}
