// Package export renders thread topologies into shareable formats.
package export

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/vanderheijden86/stackview/pkg/model"
	"github.com/vanderheijden86/stackview/pkg/topology"
)

// GenerateMarkdown creates a markdown report of the thread forest in
// display order: summary counts, a mermaid graph of handoff edges, and
// one section per entry.
func GenerateMarkdown(entries []topology.Entry, title string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", title))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", time.Now().Format(time.RFC1123)))

	var total, stacks, active int
	for _, e := range entries {
		total += topology.Size(e)
		if e.Kind == topology.KindStack {
			stacks++
		}
		if e.Head.Status.IsActive() {
			active++
		}
		for _, d := range e.Descendants {
			if d.Status.IsActive() {
				active++
			}
		}
	}
	sb.WriteString("## Summary\n\n")
	sb.WriteString(fmt.Sprintf("- **Threads**: %d\n", total))
	sb.WriteString(fmt.Sprintf("- **Stacks**: %d\n", stacks))
	sb.WriteString(fmt.Sprintf("- **Active**: %d\n\n", active))

	sb.WriteString("## Handoff Graph\n\n")
	sb.WriteString("```mermaid\ngraph TD\n")
	hasEdges := false
	for _, e := range entries {
		writeNode(&sb, e.Head)
		for _, d := range e.Descendants {
			writeNode(&sb, d)
		}
		if e.Topology == nil {
			continue
		}
		for _, d := range e.Descendants {
			if parent, ok := e.Topology.ChildToParent[d.ID]; ok {
				sb.WriteString(fmt.Sprintf("    %s --> %s\n", mermaidID(parent), mermaidID(d.ID)))
				hasEdges = true
			}
		}
	}
	if !hasEdges {
		sb.WriteString("    %% no handoff relationships\n")
	}
	sb.WriteString("```\n\n---\n\n")

	for _, e := range entries {
		writeEntry(&sb, e)
	}
	return sb.String()
}

func writeNode(sb *strings.Builder, th model.Thread) {
	safeTitle := strings.ReplaceAll(th.Title, "\"", "'")
	sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", mermaidID(th.ID), safeTitle))
}

// mermaidID strips characters mermaid treats as syntax.
func mermaidID(id string) string {
	return strings.NewReplacer("-", "_", ".", "_", " ", "_").Replace(id)
}

func writeEntry(sb *strings.Builder, e topology.Entry) {
	if e.Kind == topology.KindThread {
		sb.WriteString(fmt.Sprintf("## %s %s\n\n", e.Head.ID, e.Head.Title))
		writeThreadFacts(sb, e.Head, 0)
		sb.WriteString("\n")
		return
	}

	sb.WriteString(fmt.Sprintf("## %s %s (stack of %d)\n\n", e.Head.ID, e.Head.Title, topology.Size(e)))
	writeThreadFacts(sb, e.Head, 0)
	for _, d := range e.Descendants {
		writeThreadFacts(sb, d, e.Topology.Depth(d.ID))
	}
	sb.WriteString("\n")
}

func writeThreadFacts(sb *strings.Builder, th model.Thread, depth int) {
	indent := strings.Repeat("  ", depth)
	line := fmt.Sprintf("%s- **%s** %s (%s", indent, th.ID, th.Title, th.Status)
	if th.LastUpdated != "" {
		line += ", " + th.LastUpdated
	}
	line += ")"
	if th.Blocker != "" {
		line += " blocked: " + th.Blocker
	}
	sb.WriteString(line + "\n")
}

// SaveMarkdownToFile writes the report for the given entries to path.
func SaveMarkdownToFile(entries []topology.Entry, title, path string) error {
	content := GenerateMarkdown(entries, title)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

