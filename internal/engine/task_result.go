package engine

import (
	"adoscan/internal/azdo"
	"adoscan/internal/inventory"
)

// Target is one unit of dispatch: a repository for pull request scans, or
// a project for variable group scans (Repo is nil then).
type Target struct {
	Project azdo.Project
	Repo    *azdo.Repository
}

// Key identifies the target as org-relative "project" or "project/repo".
func (t Target) Key() string {
	if t.Repo == nil {
		return t.Project.Name
	}
	return t.Project.Name + "/" + t.Repo.Name
}

// TaskResult is the outcome of executing the work function for exactly one
// target. Every dispatched target produces exactly one TaskResult: either
// records, or an error, never both and never neither.
type TaskResult struct {
	Target  Target
	Records []inventory.Record
	Err     error
}
