package topology

import (
	"fmt"
	"reflect"
	"testing"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/stackview/pkg/model"
)

// genThreads produces arbitrary thread lists: random parent references
// (including dangling ones and cycles), random timestamps (including
// empty and garbage), unique IDs.
func genThreads(t *rapid.T) []model.Thread {
	n := rapid.IntRange(0, 40).Draw(t, "n")
	dates := []string{
		"",
		"garbage",
		"2026-08-25T09:00:00Z",
		"2026-08-26T09:00:00Z",
		"2026-08-27T09:00:00Z",
		"2026-08-27T09:00:00Z", // deliberate duplicate for tie coverage
	}
	threads := make([]model.Thread, n)
	for i := 0; i < n; i++ {
		parent := ""
		if rapid.Bool().Draw(t, fmt.Sprintf("hasParent%d", i)) {
			// May point at any ID, itself, or beyond the list (dangling).
			j := rapid.IntRange(0, n+2).Draw(t, fmt.Sprintf("parent%d", i))
			parent = fmt.Sprintf("th-%d", j)
		}
		threads[i] = model.Thread{
			ID:              fmt.Sprintf("th-%d", i),
			Title:           fmt.Sprintf("Thread %d", i),
			Status:          model.StatusDone,
			HandoffParentID: parent,
			LastUpdatedDate: rapid.SampledFrom(dates).Draw(t, fmt.Sprintf("date%d", i)),
		}
	}
	return threads
}

func TestBuildPartitionProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		threads := genThreads(t)
		entries := Build(threads)

		counts := make(map[string]int)
		for _, e := range entries {
			counts[e.Head.ID]++
			for _, d := range e.Descendants {
				counts[d.ID]++
			}
		}
		if len(counts) != len(threads) {
			t.Fatalf("output covers %d threads, input has %d", len(counts), len(threads))
		}
		for _, in := range threads {
			if counts[in.ID] != 1 {
				t.Fatalf("thread %s appears %d times, want exactly 1", in.ID, counts[in.ID])
			}
		}
	})
}

func TestBuildIdempotenceProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		threads := genThreads(t)
		if first, second := Build(threads), Build(threads); !reflect.DeepEqual(first, second) {
			t.Fatalf("builds differ for identical input")
		}
	})
}

func TestBuildStackInvariantsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		threads := genThreads(t)
		for _, e := range Build(threads) {
			if e.Kind == KindThread {
				if len(e.Descendants) != 0 || e.Topology != nil {
					t.Fatalf("bare thread %s carries stack fields", e.ID())
				}
				continue
			}
			if len(e.Descendants) == 0 {
				t.Fatalf("stack %s has no descendants", e.ID())
			}
			top := e.Topology
			if top == nil {
				t.Fatalf("stack %s missing topology", e.ID())
			}
			if top.RootID != e.Head.ID {
				t.Fatalf("stack %s: rootID %s != head", e.ID(), top.RootID)
			}

			members := map[string]bool{e.Head.ID: true}
			for _, d := range e.Descendants {
				members[d.ID] = true
			}

			// childToParent and parentToChildren are mutual inverses
			// restricted to the component.
			for child, parent := range top.ChildToParent {
				if !members[child] || !members[parent] {
					t.Fatalf("stack %s: edge %s->%s escapes component", e.ID(), child, parent)
				}
				found := false
				for _, k := range top.ParentToChildren[parent] {
					if k == child {
						found = true
						break
					}
				}
				if !found {
					t.Fatalf("stack %s: edge %s->%s missing from parentToChildren", e.ID(), child, parent)
				}
			}
			for parent, kids := range top.ParentToChildren {
				if !members[parent] {
					t.Fatalf("stack %s: parent %s outside component", e.ID(), parent)
				}
				for _, k := range kids {
					if top.ChildToParent[k] != parent {
						t.Fatalf("stack %s: parentToChildren[%s] lists %s but childToParent disagrees", e.ID(), parent, k)
					}
				}
			}
		}
	})
}

func TestFlattenFullyExpandedProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		threads := genThreads(t)
		entries := Build(threads)
		expanded := make(map[string]bool, len(entries))
		for _, e := range entries {
			expanded[e.ID()] = true
		}
		rows := Flatten(entries, expanded)
		if len(rows) != len(threads) {
			t.Fatalf("fully expanded Flatten has %d rows, want %d", len(rows), len(threads))
		}
		seen := make(map[string]bool, len(rows))
		for _, r := range rows {
			if seen[r.ID] {
				t.Fatalf("thread %s duplicated in flattened rows", r.ID)
			}
			seen[r.ID] = true
		}
	})
}
