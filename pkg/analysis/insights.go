// Package analysis computes read-only summaries over a built thread
// forest for the --robot-insights output. Nothing here feeds back into
// the topology; it is reporting only.
package analysis

import (
	"sort"

	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/vanderheijden86/stackview/pkg/topology"
)

// Insights summarizes the shape of the handoff forest. All outputs are
// deterministic and bounded so agents can diff them between runs.
type Insights struct {
	TotalThreads int `json:"total_threads"`
	TotalStacks  int `json:"total_stacks"`
	BareThreads  int `json:"bare_threads"`
	LargestStack int `json:"largest_stack"`
	MaxDepth     int `json:"max_depth"`
	MaxFanOut    int `json:"max_fan_out"`

	// DepthHistogram counts threads by nesting depth (0 = heads).
	DepthHistogram map[int]int `json:"depth_histogram"`

	// CentralThreads ranks threads by PageRank over handoff edges.
	// A thread many continuations flow from scores high; useful for
	// spotting the session everything else forked off.
	CentralThreads []CentralThread `json:"central_threads,omitempty"`
}

// CentralThread is one PageRank ranking entry.
type CentralThread struct {
	ID    string  `json:"id"`
	Title string  `json:"title,omitempty"`
	Score float64 `json:"score"`
}

// centralThreadsLimit caps the PageRank ranking length.
const centralThreadsLimit = 5

// Summarize computes insights over built entries.
func Summarize(entries []topology.Entry) Insights {
	ins := Insights{DepthHistogram: make(map[int]int)}

	for _, e := range entries {
		size := topology.Size(e)
		ins.TotalThreads += size
		if e.Kind == topology.KindStack {
			ins.TotalStacks++
			if size > ins.LargestStack {
				ins.LargestStack = size
			}
		} else {
			ins.BareThreads++
		}

		ins.DepthHistogram[0]++
		if e.Topology == nil {
			continue
		}
		for _, d := range e.Descendants {
			depth := e.Topology.Depth(d.ID)
			ins.DepthHistogram[depth]++
			if depth > ins.MaxDepth {
				ins.MaxDepth = depth
			}
		}
		for _, kids := range e.Topology.ParentToChildren {
			if len(kids) > ins.MaxFanOut {
				ins.MaxFanOut = len(kids)
			}
		}
	}

	ins.CentralThreads = centralThreads(entries)
	return ins
}

// centralThreads runs PageRank over the handoff edges of every stack.
// Edges point child -> parent so rank flows toward the threads work was
// continued from.
func centralThreads(entries []topology.Entry) []CentralThread {
	g := simple.NewDirectedGraph()
	idToNode := make(map[string]int64)
	nodeToEntry := make(map[int64]CentralThread)

	next := int64(1)
	nodeFor := func(id, title string) int64 {
		if nid, ok := idToNode[id]; ok {
			return nid
		}
		nid := next
		next++
		idToNode[id] = nid
		nodeToEntry[nid] = CentralThread{ID: id, Title: title}
		g.AddNode(simple.Node(nid))
		return nid
	}

	edges := 0
	for _, e := range entries {
		if e.Topology == nil {
			continue
		}
		nodeFor(e.Head.ID, e.Head.Title)
		for _, d := range e.Descendants {
			nodeFor(d.ID, d.Title)
		}
		for child, parent := range e.Topology.ChildToParent {
			from, to := idToNode[child], idToNode[parent]
			if from == to {
				continue
			}
			g.SetEdge(g.NewEdge(simple.Node(from), simple.Node(to)))
			edges++
		}
	}
	if edges == 0 {
		return nil
	}

	ranks := network.PageRank(g, 0.85, 1e-6)
	out := make([]CentralThread, 0, len(ranks))
	for nid, score := range ranks {
		ct := nodeToEntry[nid]
		ct.Score = score
		out = append(out, ct)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > centralThreadsLimit {
		out = out[:centralThreadsLimit]
	}
	return out
}
