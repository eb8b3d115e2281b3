// Package loader reads conversation threads from the backend's export
// formats: a JSONL dump (one thread per line) or the agent session
// store (SQLite). It never interprets handoff relations; that is the
// topology package's job.
package loader

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/stackview/pkg/model"
)

// SourceKind identifies how a thread source is stored on disk.
type SourceKind string

const (
	KindJSONL  SourceKind = "jsonl"
	KindSQLite SourceKind = "sqlite"
)

// Source is one place threads come from, as configured in the
// workspace file.
type Source struct {
	Name string
	Path string
	Kind SourceKind
}

// Load reads a single source.
func Load(ctx context.Context, src Source) ([]model.Thread, error) {
	switch src.Kind {
	case KindSQLite:
		return LoadThreadsFromDB(ctx, src.Path)
	case KindJSONL, "":
		return LoadThreadsFromFile(src.Path)
	default:
		return nil, fmt.Errorf("unknown source kind %q for %s", src.Kind, src.Path)
	}
}

// LoadAll reads every source concurrently and merges the results in
// source order, so two runs over the same workspace produce threads in
// the same order regardless of which source finished first.
func LoadAll(ctx context.Context, sources []Source) ([]model.Thread, error) {
	results := make([][]model.Thread, len(sources))
	g, ctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			threads, err := Load(ctx, src)
			if err != nil {
				return fmt.Errorf("source %s: %w", src.Path, err)
			}
			results[i] = threads
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var merged []model.Thread
	seen := make(map[string]bool)
	for _, threads := range results {
		for _, th := range threads {
			// First source wins on ID collisions; the topology builder
			// does not defend against duplicates.
			if seen[th.ID] {
				continue
			}
			seen[th.ID] = true
			merged = append(merged, th)
		}
	}
	return merged, nil
}

// LoadThreadsFromFile reads threads from a JSONL export file.
// Malformed lines are skipped rather than failing the whole load; the
// backend occasionally truncates the final line mid-write.
func LoadThreadsFromFile(path string) ([]model.Thread, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("no thread export found at %s", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open thread export: %w", err)
	}
	defer file.Close()

	var threads []model.Thread
	scanner := bufio.NewScanner(file)
	// Threads with long blocker descriptions can produce large lines
	const maxCapacity = 1024 * 1024 * 10 // 10MB
	buf := make([]byte, maxCapacity)
	scanner.Buffer(buf, maxCapacity)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		var th model.Thread
		if err := json.Unmarshal(line, &th); err != nil {
			continue
		}
		if th.ID == "" {
			continue
		}
		threads = append(threads, th)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading thread export: %w", err)
	}
	return threads, nil
}
