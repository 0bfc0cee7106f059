package engine

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"adoscan/internal/azdo"
	"adoscan/internal/inventory"
)

func prResult(project, repo string, ids ...int) TaskResult {
	prs := make([]azdo.PullRequest, 0, len(ids))
	for _, id := range ids {
		prs = append(prs, azdo.PullRequest{
			PullRequestID: id,
			Title:         "change",
			Status:        "active",
			CreationDate:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
			SourceRefName: "refs/heads/feature",
			TargetRefName: "refs/heads/main",
		})
	}
	return TaskResult{
		Target: Target{
			Project: azdo.Project{Name: project},
			Repo:    &azdo.Repository{ID: repo, Name: repo},
		},
		Records: inventory.PullRequestRecords("acme", project, repo, prs, false),
	}
}

func TestAggregate_TwoProjectsThreePRsEach(t *testing.T) {
	results := []TaskResult{
		prResult("Alpha", "api", 1, 2, 3),
		prResult("Beta", "web", 4, 5, 6),
	}

	records, summary := Aggregate("run-1", results)

	if len(records) != 6 {
		t.Fatalf("expected 6 records, got %d", len(records))
	}
	want := RunSummary{RunID: "run-1", TotalTargets: 2, Succeeded: 2, Failed: 0, TotalRecords: 6}
	if summary != want {
		t.Fatalf("summary mismatch: got %+v want %+v", summary, want)
	}
}

func TestAggregate_FailedResultsContributeNoRecords(t *testing.T) {
	denied := TaskResult{
		Target: Target{
			Project: azdo.Project{Name: "Beta"},
			Repo:    &azdo.Repository{ID: "web", Name: "web"},
		},
		Err: errors.New("request failed with status 403"),
	}
	results := []TaskResult{prResult("Alpha", "api", 1, 2, 3), denied}

	records, summary := Aggregate("run-2", results)

	if len(records) != 3 {
		t.Fatalf("expected records from the successful target only, got %d", len(records))
	}
	for _, r := range records {
		pr, ok := r.(inventory.PullRequestRecord)
		if !ok {
			t.Fatalf("unexpected record type %T", r)
		}
		if pr.Repository != "api" {
			t.Fatalf("record leaked from failed target: %+v", pr)
		}
	}
	if summary.Succeeded != 1 || summary.Failed != 1 {
		t.Fatalf("summary mismatch: %+v", summary)
	}
}

func TestAggregate_IsDeterministicOverSameResults(t *testing.T) {
	shuffled := []TaskResult{
		prResult("Beta", "web", 9, 7),
		prResult("Alpha", "api", 2, 1),
	}
	reordered := []TaskResult{shuffled[1], shuffled[0]}

	first, _ := Aggregate("run-3", shuffled)
	second, _ := Aggregate("run-3", reordered)

	if len(first) != len(second) {
		t.Fatalf("record counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if !reflect.DeepEqual(first[i], second[i]) {
			t.Fatalf("record %d differs across aggregations:\n%+v\n%+v", i, first[i], second[i])
		}
	}
}

func TestAggregate_Empty(t *testing.T) {
	records, summary := Aggregate("run-4", nil)
	if len(records) != 0 {
		t.Fatalf("expected no records, got %d", len(records))
	}
	if summary.TotalTargets != 0 || summary.Succeeded != 0 || summary.Failed != 0 {
		t.Fatalf("summary mismatch: %+v", summary)
	}
}
