package loader

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
)

func writeExport(t *testing.T, lines string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "threads.jsonl")
	if err := os.WriteFile(path, []byte(lines), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadThreadsFromFile(t *testing.T) {
	path := writeExport(t, `{"id":"th-1","title":"Fix CI","status":"done","last_updated_date":"2026-08-29T09:00:00Z"}
{"id":"th-2","title":"Continue CI fix","status":"running","handoff_parent_id":"th-1"}
`)
	threads, err := LoadThreadsFromFile(path)
	if err != nil {
		t.Fatalf("LoadThreadsFromFile: %v", err)
	}
	if len(threads) != 2 {
		t.Fatalf("expected 2 threads, got %d", len(threads))
	}
	if threads[0].ID != "th-1" || threads[1].HandoffParentID != "th-1" {
		t.Errorf("unexpected threads: %+v", threads)
	}
}

func TestLoadThreadsSkipsMalformedLines(t *testing.T) {
	path := writeExport(t, `{"id":"th-1","title":"ok","status":"done"}
not json at all
{"title":"missing id","status":"done"}

{"id":"th-2","title":"also ok","status":"failed"}
`)
	threads, err := LoadThreadsFromFile(path)
	if err != nil {
		t.Fatalf("LoadThreadsFromFile: %v", err)
	}
	if len(threads) != 2 {
		t.Fatalf("expected 2 threads (malformed skipped), got %d", len(threads))
	}
}

func TestLoadThreadsMissingFile(t *testing.T) {
	if _, err := LoadThreadsFromFile(filepath.Join(t.TempDir(), "nope.jsonl")); err == nil {
		t.Error("expected error for missing export file")
	}
}

func TestLoadAllMergesInSourceOrder(t *testing.T) {
	a := writeExport(t, `{"id":"th-1","title":"a","status":"done"}
{"id":"th-2","title":"b","status":"done"}
`)
	b := filepath.Join(t.TempDir(), "more.jsonl")
	if err := os.WriteFile(b, []byte(`{"id":"th-2","title":"dup","status":"done"}
{"id":"th-3","title":"c","status":"done"}
`), 0644); err != nil {
		t.Fatal(err)
	}

	threads, err := LoadAll(context.Background(), []Source{
		{Name: "a", Path: a, Kind: KindJSONL},
		{Name: "b", Path: b, Kind: KindJSONL},
	})
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(threads) != 3 {
		t.Fatalf("expected 3 threads after dedup, got %d", len(threads))
	}
	// First source wins the duplicate ID.
	if threads[1].Title != "b" {
		t.Errorf("expected first source to win th-2, got title %q", threads[1].Title)
	}
	if threads[0].ID != "th-1" || threads[2].ID != "th-3" {
		t.Errorf("merge order wrong: %+v", threads)
	}
}

func TestLoadAllPropagatesSourceError(t *testing.T) {
	_, err := LoadAll(context.Background(), []Source{
		{Name: "bad", Path: filepath.Join(t.TempDir(), "absent.jsonl"), Kind: KindJSONL},
	})
	if err == nil {
		t.Error("expected error from missing source")
	}
}

func TestLoadThreadsFromDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	_, err = db.Exec(`
		CREATE TABLE threads (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			status TEXT NOT NULL,
			workdir TEXT,
			blocker TEXT,
			cost_cents INTEGER,
			linked_issues TEXT,
			last_updated TEXT,
			last_updated_date TEXT,
			handoff_parent_id TEXT
		);
		INSERT INTO threads (id, title, status, cost_cents, linked_issues, last_updated_date, handoff_parent_id)
		VALUES ('th-1', 'Refactor parser', 'done', 120, '["gh-7"]', '2026-08-28T10:00:00Z', ''),
		       ('th-2', 'Parser follow-up', 'running', 0, NULL, '2026-08-29T10:00:00Z', 'th-1');`)
	if err != nil {
		t.Fatal(err)
	}
	if err := db.Close(); err != nil {
		t.Fatal(err)
	}

	threads, err := LoadThreadsFromDB(context.Background(), path)
	if err != nil {
		t.Fatalf("LoadThreadsFromDB: %v", err)
	}
	if len(threads) != 2 {
		t.Fatalf("expected 2 threads, got %d", len(threads))
	}
	if threads[0].CostCents != 120 || len(threads[0].LinkedIssues) != 1 || threads[0].LinkedIssues[0] != "gh-7" {
		t.Errorf("th-1 loaded wrong: %+v", threads[0])
	}
	if threads[1].HandoffParentID != "th-1" {
		t.Errorf("th-2 missing handoff parent: %+v", threads[1])
	}
}
