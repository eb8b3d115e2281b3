// Package topology turns a flat thread list into a forest of handoff
// stacks. It is the single source of truth for grouping and nesting:
// the table, board and card views all render the entries produced here
// and never re-derive parent/child relationships themselves.
package topology

import (
	"sort"
	"time"

	"github.com/vanderheijden86/stackview/pkg/model"
)

// Kind discriminates the two entry shapes
type Kind string

const (
	KindThread Kind = "thread" // single thread, no handoff relations
	KindStack  Kind = "stack"  // connected handoff tree, size >= 2
)

// Topology is the restricted parent/child index for one stack, scoped
// to that stack's members only. Views use it to compute nesting depth
// for indentation without walking the thread list again.
type Topology struct {
	RootID           string              `json:"root_id"`
	ChildToParent    map[string]string   `json:"child_to_parent"`
	ParentToChildren map[string][]string `json:"parent_to_children"`
}

// Entry is one renderable unit: either a bare thread or a collapsed
// handoff stack headed by its root thread.
type Entry struct {
	Kind Kind         `json:"kind"`
	Head model.Thread `json:"head"`

	// Descendants holds every stack member except the head, in
	// depth-first order with each node's children visited most recently
	// updated first. Empty for bare threads.
	Descendants []model.Thread `json:"descendants,omitempty"`

	// LastActiveDate is the newest parseable timestamp across all
	// members (for a bare thread, its own). Zero when no member has a
	// parseable date, which sorts the entry last.
	LastActiveDate time.Time `json:"last_active_date"`

	// Topology is nil for bare threads.
	Topology *Topology `json:"topology,omitempty"`
}

// ID returns the entry's identity: the head thread's ID. The view
// layer keys its expand/collapse and selection state on this.
func (e Entry) ID() string {
	return e.Head.ID
}

// Build groups threads into display entries, one per connected
// component of the handoff graph, sorted by descending recency.
//
// The builder is stateless: every call starts from nothing and rebuilds
// in full. Thread lists are small (tens to low hundreds) and refresh on
// a timer or explicit action, so rebuilding is cheaper than keeping an
// incremental structure honest.
//
// Malformed input never fails the build. A handoff parent absent from
// the list is treated as no parent, and cycles are cut by the visited
// set during the upward walk. Duplicate IDs are not defended against;
// callers supply a deduplicated list.
func Build(threads []model.Thread) []Entry {
	if len(threads) == 0 {
		return nil
	}

	// Step 1: materialize both directions of the handoff relation.
	// Edges are admitted only when the named parent is present; a
	// dangling reference makes the child parentless for this build.
	present := make(map[string]bool, len(threads))
	for _, th := range threads {
		present[th.ID] = true
	}
	childToParent := make(map[string]string)
	parentToChildren := make(map[string][]string)
	byID := make(map[string]model.Thread, len(threads))
	for _, th := range threads {
		byID[th.ID] = th
		if th.HasParent() && present[th.HandoffParentID] && th.HandoffParentID != th.ID {
			childToParent[th.ID] = th.HandoffParentID
			parentToChildren[th.HandoffParentID] = append(parentToChildren[th.HandoffParentID], th.ID)
		}
	}

	// Steps 2-5: discover components in input order. Each thread not
	// yet assigned seeds a walk that recovers its whole component.
	assigned := make(map[string]bool, len(threads))
	var entries []Entry
	for _, th := range threads {
		if assigned[th.ID] {
			continue
		}
		members := collectComponent(th.ID, childToParent, parentToChildren)
		for _, id := range members {
			assigned[id] = true
		}
		entries = append(entries, buildEntry(members, byID, childToParent, parentToChildren))
	}

	// Step 9: rank entries by effective recency, newest first. The
	// stable sort keeps component discovery order (= input order) for
	// equal or unparseable timestamps.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].LastActiveDate.After(entries[j].LastActiveDate)
	})
	return entries
}

// collectComponent returns every member of the component containing
// start, in a deterministic order: the upward ancestor chain first,
// then breadth-first expansion downward through all fan-out branches.
func collectComponent(start string, childToParent map[string]string, parentToChildren map[string][]string) []string {
	// Step 3: walk upward until a parentless thread or a cycle. The
	// visited check is the termination guarantee; without it a
	// two-thread mutual handoff would loop forever.
	visited := map[string]bool{start: true}
	members := []string{start}
	cur := start
	for {
		parent, ok := childToParent[cur]
		if !ok || visited[parent] {
			break
		}
		visited[parent] = true
		members = append(members, parent)
		cur = parent
	}

	// Step 4: expand downward from everything seen so far. Starting
	// from the whole chain (not just the top) recovers sibling branches
	// even when the seed thread was a leaf deep inside a fan-out tree.
	queue := append([]string(nil), members...)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, child := range parentToChildren[id] {
			if !visited[child] {
				visited[child] = true
				members = append(members, child)
				queue = append(queue, child)
			}
		}
	}
	return members
}

// buildEntry turns one component's member list into a display entry.
func buildEntry(members []string, byID map[string]model.Thread, childToParent map[string]string, parentToChildren map[string][]string) Entry {
	inComponent := make(map[string]bool, len(members))
	for _, id := range members {
		inComponent[id] = true
	}

	// Steps 6 and 8: restrict both maps to the component. The local
	// child->parent map is also what root selection consults, so a
	// dangling external reference can never masquerade as "has parent".
	localParent := make(map[string]string)
	localChildren := make(map[string][]string)
	for _, id := range members {
		if p, ok := childToParent[id]; ok && inComponent[p] {
			localParent[id] = p
			localChildren[p] = append(localChildren[p], id)
		}
	}

	rootID := ""
	for _, id := range members {
		if _, ok := localParent[id]; !ok {
			rootID = id
			break
		}
	}
	if rootID == "" {
		// Every member claims a parent. The upward walk's termination
		// rule should make this unreachable; degrade silently like the
		// rest of the package rather than crash on bad data.
		rootID = members[0]
	}

	// Step 7: singleton components stay plain threads.
	if len(members) == 1 {
		th := byID[members[0]]
		return Entry{Kind: KindThread, Head: th, LastActiveDate: th.When()}
	}

	lastActive := time.Time{}
	for _, id := range members {
		if ts := byID[id].When(); ts.After(lastActive) {
			lastActive = ts
		}
	}

	descendants := make([]model.Thread, 0, len(members)-1)
	seen := map[string]bool{rootID: true}
	appendSubtree(rootID, rootID, byID, localChildren, seen, &descendants)
	// A cycle that survived into the local maps can leave members
	// unreachable from the root. Sweep them in so no thread is dropped.
	for _, id := range members {
		if !seen[id] {
			seen[id] = true
			descendants = append(descendants, byID[id])
		}
	}

	return Entry{
		Kind:           KindStack,
		Head:           byID[rootID],
		Descendants:    descendants,
		LastActiveDate: lastActive,
		Topology: &Topology{
			RootID:           rootID,
			ChildToParent:    localParent,
			ParentToChildren: localChildren,
		},
	}
}

// appendSubtree walks the component depth-first from id, children
// sorted most recently updated first, and collects every node except
// the root into out. Parents always precede their children. The seen
// map cuts revisits when the fallback root sits on a cycle.
func appendSubtree(id, rootID string, byID map[string]model.Thread, localChildren map[string][]string, seen map[string]bool, out *[]model.Thread) {
	if id != rootID {
		*out = append(*out, byID[id])
	}
	children := append([]string(nil), localChildren[id]...)
	sort.SliceStable(children, func(i, j int) bool {
		return byID[children[i]].When().After(byID[children[j]].When())
	})
	for _, child := range children {
		if seen[child] {
			continue
		}
		seen[child] = true
		appendSubtree(child, rootID, byID, localChildren, seen, out)
	}
}
