package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"

	"github.com/vanderheijden86/stackview/pkg/model"
	"github.com/vanderheijden86/stackview/pkg/topology"
)

// Row is one visible line in the table view: a thread plus the display
// metadata the delegate needs. Rows are rebuilt from the entries and
// the expanded set whenever either changes.
type Row struct {
	Thread    model.Thread
	Depth     int    // nesting level, 0 for heads
	IsHead    bool   // first row of its entry
	EntryID   string // the entry this row belongs to
	StackSize int    // 1 for bare threads
	Expanded  bool   // meaningful for stack heads only
}

// BuildRows flattens entries into table rows, descendants included
// only for expanded stacks. Nesting depth comes from each entry's
// restricted topology index.
func BuildRows(entries []topology.Entry, expanded map[string]bool) []Row {
	rows := make([]Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, Row{
			Thread:    e.Head,
			IsHead:    true,
			EntryID:   e.ID(),
			StackSize: topology.Size(e),
			Expanded:  expanded[e.ID()],
		})
		if !expanded[e.ID()] {
			continue
		}
		for _, d := range e.Descendants {
			rows = append(rows, Row{
				Thread:    d,
				Depth:     e.Topology.Depth(d.ID),
				EntryID:   e.ID(),
				StackSize: topology.Size(e),
			})
		}
	}
	return rows
}

// RowItem wraps Row to implement list.Item
type RowItem struct {
	Row Row
}

func (i RowItem) Title() string {
	return i.Row.Thread.Title
}

func (i RowItem) Description() string {
	return fmt.Sprintf("%s %s", i.Row.Thread.ID, i.Row.Thread.Status)
}

func (i RowItem) FilterValue() string {
	return i.Row.Thread.Title + " " + i.Row.Thread.ID
}

// RowDelegate renders one thread row with indentation and a stack
// badge on heads.
type RowDelegate struct {
	Theme Theme
}

func (d RowDelegate) Height() int  { return 1 }
func (d RowDelegate) Spacing() int { return 0 }

func (d RowDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d RowDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(RowItem)
	if !ok {
		return
	}
	line := d.renderRow(i.Row, m.Width(), index == m.Index())
	fmt.Fprint(w, line)
}

// renderRow is separated from Render so the layout is testable without
// a list.Model.
func (d RowDelegate) renderRow(row Row, width int, selected bool) string {
	r := d.Theme.Renderer
	var sb strings.Builder

	sb.WriteString(strings.Repeat("  ", row.Depth))
	sb.WriteString(expandIndicator(row))
	sb.WriteString(" ")

	statusStyle := r.NewStyle().Foreground(d.Theme.GetStatusColor(string(row.Thread.Status)))
	sb.WriteString(statusStyle.Render(GetStatusIcon(string(row.Thread.Status))))
	sb.WriteString(" ")

	idStyle := r.NewStyle().Foreground(d.Theme.Highlight)
	sb.WriteString(idStyle.Render(row.Thread.ID))
	sb.WriteString(" ")

	badge := ""
	if row.IsHead && row.StackSize > 1 {
		badge = fmt.Sprintf(" [%d]", row.StackSize)
	}
	suffix := ""
	if row.Thread.LastUpdated != "" {
		suffix = "  " + r.NewStyle().Foreground(d.Theme.Muted).Render(row.Thread.LastUpdated)
	}

	used := runewidth.StringWidth(row.Thread.ID) + row.Depth*2 + len(badge) + 16
	avail := width - used
	if avail < 10 {
		avail = 10
	}
	title := truncate.StringWithTail(row.Thread.Title, uint(avail), "…")
	sb.WriteString(title)
	sb.WriteString(badge)
	sb.WriteString(suffix)

	line := sb.String()
	if selected {
		line = d.Theme.Selected.Render(line)
	}
	return line
}

// expandIndicator marks stack heads as expandable.
func expandIndicator(row Row) string {
	if !row.IsHead || row.StackSize == 1 {
		return " "
	}
	if row.Expanded {
		return "▾"
	}
	return "▸"
}
