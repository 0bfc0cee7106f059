package inventory

import (
	"testing"
	"time"

	"adoscan/internal/azdo"
)

func samplePRs() []azdo.PullRequest {
	return []azdo.PullRequest{
		{
			PullRequestID: 42,
			Title:         "Add retry to uploader",
			Status:        "active",
			CreatedBy:     azdo.IdentityRef{DisplayName: "Dana"},
			CreationDate:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
			SourceRefName: "refs/heads/feature/upload-retry",
			TargetRefName: "refs/heads/main",
			URL:           "https://dev.azure.com/acme/_apis/git/pullRequests/42",
		},
		{
			PullRequestID: 43,
			Title:         "WIP: rework config",
			Status:        "active",
			IsDraft:       true,
			SourceRefName: "refs/heads/config",
			TargetRefName: "refs/heads/main",
		},
	}
}

func TestPullRequestRecords_FlattensWithProvenance(t *testing.T) {
	records := PullRequestRecords("acme", "Platform", "api", samplePRs(), true)
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	pr := records[0].(PullRequestRecord)
	if pr.Organization != "acme" || pr.Project != "Platform" || pr.Repository != "api" {
		t.Fatalf("provenance mismatch: %+v", pr)
	}
	if pr.PullRequestID != 42 || pr.CreatedBy != "Dana" {
		t.Fatalf("field mapping mismatch: %+v", pr)
	}
	if pr.SourceBranch != "feature/upload-retry" || pr.TargetBranch != "main" {
		t.Fatalf("branch names not trimmed: %+v", pr)
	}
}

func TestPullRequestRecords_DropsDraftsByDefault(t *testing.T) {
	records := PullRequestRecords("acme", "Platform", "api", samplePRs(), false)
	if len(records) != 1 {
		t.Fatalf("expected drafts to be dropped, got %d records", len(records))
	}
	if records[0].(PullRequestRecord).PullRequestID != 42 {
		t.Fatalf("wrong record survived: %+v", records[0])
	}
}

func TestPullRequestRecord_RowMatchesHeader(t *testing.T) {
	records := PullRequestRecords("acme", "Platform", "api", samplePRs(), true)
	pr := records[0].(PullRequestRecord)

	header := pr.Header()
	row := pr.Row()
	if len(header) != len(row) {
		t.Fatalf("header has %d columns, row has %d", len(header), len(row))
	}
	if row[0] != "acme" || row[3] != "42" || row[8] != "2026-01-02T03:04:05Z" {
		t.Fatalf("unexpected row values: %v", row)
	}
}

func TestTrimRefPrefix(t *testing.T) {
	tests := []struct {
		ref  string
		want string
	}{
		{"refs/heads/main", "main"},
		{"refs/heads/feature/x", "feature/x"},
		{"refs/tags/v1", "refs/tags/v1"},
		{"main", "main"},
		{"", ""},
	}
	for _, tc := range tests {
		if got := TrimRefPrefix(tc.ref); got != tc.want {
			t.Errorf("TrimRefPrefix(%q) = %q, want %q", tc.ref, got, tc.want)
		}
	}
}
