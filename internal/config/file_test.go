package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFile_MissingDefaultIsNotAnError(t *testing.T) {
	fc, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"), false)
	if err != nil {
		t.Fatalf("LoadFile returned error for missing optional file: %v", err)
	}
	if fc.Organization != "" {
		t.Fatalf("expected empty defaults, got %+v", fc)
	}
}

func TestLoadFile_MissingExplicitIsAnError(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"), true); err == nil {
		t.Fatal("expected error for missing explicit file")
	}
}

func TestLoadFile_ParsesValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "adoscan.yaml")
	content := `organization: acme
projects:
  - "Platform*"
  - Legacy
throttle: 5
timeout: 15m
console_format: ndjson
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	fc, err := LoadFile(path, true)
	if err != nil {
		t.Fatalf("LoadFile returned error: %v", err)
	}
	if fc.Organization != "acme" {
		t.Fatalf("organization mismatch: %q", fc.Organization)
	}
	if len(fc.Projects) != 2 || fc.Projects[0] != "Platform*" {
		t.Fatalf("projects mismatch: %v", fc.Projects)
	}
	if fc.Throttle != 5 {
		t.Fatalf("throttle mismatch: %d", fc.Throttle)
	}
	timeout, err := fc.ParseTimeout()
	if err != nil {
		t.Fatalf("ParseTimeout returned error: %v", err)
	}
	if timeout != 15*time.Minute {
		t.Fatalf("timeout mismatch: %s", timeout)
	}
}

func TestParseTimeout_Invalid(t *testing.T) {
	fc := &FileConfig{Timeout: "soon"}
	if _, err := fc.ParseTimeout(); err == nil {
		t.Fatal("expected error for unparseable timeout")
	}
}
