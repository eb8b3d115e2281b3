package topology

import "github.com/vanderheijden86/stackview/pkg/model"

// Depth returns the nesting depth of a member thread: 0 for the root,
// 1 for its direct continuations, and so on. Unknown IDs and members
// stranded by a truncated cycle report the depth at which the upward
// walk gave out. The bound keeps a corrupt index from looping.
func (t *Topology) Depth(id string) int {
	depth := 0
	cur := id
	for cur != t.RootID {
		parent, ok := t.ChildToParent[cur]
		if !ok || depth > len(t.ChildToParent) {
			break
		}
		cur = parent
		depth++
	}
	return depth
}

// Size returns the number of threads an entry represents.
func Size(e Entry) int {
	return 1 + len(e.Descendants)
}

// LastActive returns the most recently updated member of an entry. For
// a bare thread that is the thread itself; for a stack it may be any
// member, not necessarily the head; the board view places a stack in
// the column of whichever member was touched last. Ties and stacks with
// no parseable dates resolve to the earliest member in tree order.
func LastActive(e Entry) model.Thread {
	best := e.Head
	bestWhen := best.When()
	for _, th := range e.Descendants {
		if ts := th.When(); ts.After(bestWhen) {
			best = th
			bestWhen = ts
		}
	}
	return best
}

// Flatten produces the row order a keyboard-navigable view walks: every
// head, followed by its descendants only when the entry's ID is in the
// expanded set. Expand/collapse state belongs to the view layer; this
// is the one place it meets the topology.
func Flatten(entries []Entry, expanded map[string]bool) []model.Thread {
	out := make([]model.Thread, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Head)
		if expanded[e.ID()] {
			out = append(out, e.Descendants...)
		}
	}
	return out
}
