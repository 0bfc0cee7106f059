package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"

	"adoscan/internal/inventory"
)

func samplePRRecord(id int) inventory.PullRequestRecord {
	return inventory.PullRequestRecord{
		Organization:  "acme",
		Project:       "Platform",
		Repository:    "api",
		PullRequestID: id,
		Title:         "change",
		Status:        "active",
		SourceBranch:  "feature",
		TargetBranch:  "main",
	}
}

func TestConsoleSink_TextEvents(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	s := NewConsoleSink(&buf, "text")

	events := []Event{
		{Type: "run.started", RunID: "r1", Targets: 3},
		{Type: "target.finished", Target: "Platform/api"},
		{Type: "target.finished", Target: "Platform/web", Error: "request failed with status 403", Denied: true},
		{Type: "target.finished", Target: "Platform/old", Error: "boom"},
		{Type: "run.finished", Succeeded: 1, Failed: 2, Records: 4},
	}
	for _, e := range events {
		if err := s.Write(e); err != nil {
			t.Fatalf("Write(%s): %v", e.Type, err)
		}
	}
	if err := s.Write(samplePRRecord(1)); err != nil {
		t.Fatalf("Write(record): %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"[ OK ] Platform/api",
		"[SKIP] Platform/web - request failed with status 403",
		"[FAIL] Platform/old - boom",
		"1 succeeded, 2 failed, 4 records",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "acme") {
		t.Errorf("text mode must not render records:\n%s", out)
	}
}

func TestConsoleSink_JSONAggregatesRecords(t *testing.T) {
	var buf bytes.Buffer
	s := NewConsoleSink(&buf, "json")

	if err := s.Write(Event{Type: "run.started"}); err != nil {
		t.Fatalf("Write(event): %v", err)
	}
	for i := 1; i <= 2; i++ {
		if err := s.Write(samplePRRecord(i)); err != nil {
			t.Fatalf("Write(record): %v", err)
		}
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	var records []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &records); err != nil {
		t.Fatalf("output is not a JSON array: %v\n%s", err, buf.String())
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0]["pullRequestId"] != float64(1) {
		t.Fatalf("unexpected first record: %v", records[0])
	}
}

func TestConsoleSink_NDJSONStreamsEventsAndRecords(t *testing.T) {
	var buf bytes.Buffer
	s := NewConsoleSink(&buf, "ndjson")

	if err := s.Write(Event{Type: "run.started", RunID: "r1"}); err != nil {
		t.Fatalf("Write(event): %v", err)
	}
	if err := s.Write(samplePRRecord(5)); err != nil {
		t.Fatalf("Write(record): %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 NDJSON lines, got %d:\n%s", len(lines), buf.String())
	}

	var first, second map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("line 1 not JSON: %v", err)
	}
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("line 2 not JSON: %v", err)
	}
	if first["type"] != "run.started" {
		t.Fatalf("unexpected first event: %v", first)
	}
	if second["type"] != "record" || second["record"] == nil {
		t.Fatalf("unexpected record event: %v", second)
	}
}

func TestConsoleSink_UnsupportedFormat(t *testing.T) {
	var buf bytes.Buffer
	s := NewConsoleSink(&buf, "yaml")
	if err := s.Write(Event{Type: "run.started"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
