package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vanderheijden86/stackview/pkg/loader"
)

func TestFileSourceKindInference(t *testing.T) {
	tests := []struct {
		path string
		want loader.SourceKind
	}{
		{"threads.jsonl", loader.KindJSONL},
		{"export.txt", loader.KindJSONL},
		{"sessions.db", loader.KindSQLite},
		{"sessions.sqlite", loader.KindSQLite},
		{"sessions.sqlite3", loader.KindSQLite},
	}
	for _, tt := range tests {
		if got := fileSource(tt.path); got.Kind != tt.want {
			t.Errorf("fileSource(%q).Kind = %v, want %v", tt.path, got.Kind, tt.want)
		}
	}
}

func TestResolveSourcesExplicitFileWins(t *testing.T) {
	sources, err := resolveSources("", "custom.jsonl")
	if err != nil {
		t.Fatalf("resolveSources: %v", err)
	}
	if len(sources) != 1 || sources[0].Path != "custom.jsonl" {
		t.Errorf("sources = %v, want the explicit file only", sources)
	}
}

func TestResolveSourcesWorkspaceConfig(t *testing.T) {
	dir := t.TempDir()
	svDir := filepath.Join(dir, ".sv")
	if err := os.MkdirAll(svDir, 0755); err != nil {
		t.Fatal(err)
	}
	cfgPath := filepath.Join(svDir, "workspace.yaml")
	cfg := "name: test\nsources:\n  - path: threads.jsonl\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}

	sources, err := resolveSources(cfgPath, "")
	if err != nil {
		t.Fatalf("resolveSources: %v", err)
	}
	if len(sources) != 1 {
		t.Fatalf("expected 1 source, got %v", sources)
	}
	// Relative source paths anchor at the config's project dir, not .sv.
	if want := filepath.Join(dir, "threads.jsonl"); sources[0].Path != want {
		t.Errorf("source path = %s, want %s", sources[0].Path, want)
	}
}

func TestResolveSourcesMissingConfigErrors(t *testing.T) {
	if _, err := resolveSources(filepath.Join(t.TempDir(), "nope.yaml"), ""); err == nil {
		t.Error("expected an error for a missing workspace config")
	}
}
