package ui

import (
	"fmt"
	"strings"

	"github.com/vanderheijden86/stackview/pkg/topology"
)

// DayGroup is one card-grid section: all entries whose effective
// recency falls on the same day.
type DayGroup struct {
	Day     string // "2026-08-29", or "undated" for unparseable dates
	Entries []topology.Entry
}

const undatedGroup = "undated"

// GroupByDay buckets entries by the day of their last activity.
// Entries arrive recency-sorted, so groups come out newest day first
// with the undated bucket trailing, and order inside a group is
// preserved.
func GroupByDay(entries []topology.Entry) []DayGroup {
	var groups []DayGroup
	index := make(map[string]int)
	for _, e := range entries {
		day := undatedGroup
		if !e.LastActiveDate.IsZero() {
			day = e.LastActiveDate.Format("2006-01-02")
		}
		i, ok := index[day]
		if !ok {
			i = len(groups)
			index[day] = i
			groups = append(groups, DayGroup{Day: day})
		}
		groups[i].Entries = append(groups[i].Entries, e)
	}
	return groups
}

// CardsModel renders the card grid grouped by activity day.
type CardsModel struct {
	groups []DayGroup
	cursor int // index into the flattened entry sequence
	theme  Theme
	width  int
	height int
}

// NewCardsModel creates a card grid from built entries.
func NewCardsModel(entries []topology.Entry, theme Theme) CardsModel {
	return CardsModel{groups: GroupByDay(entries), theme: theme}
}

// SetEntries regroups after a reload.
func (c *CardsModel) SetEntries(entries []topology.Entry) {
	c.groups = GroupByDay(entries)
	if c.cursor >= c.count() {
		c.cursor = c.count() - 1
	}
	if c.cursor < 0 {
		c.cursor = 0
	}
}

// SetSize updates the available dimensions.
func (c *CardsModel) SetSize(width, height int) {
	c.width = width
	c.height = height
}

func (c *CardsModel) count() int {
	n := 0
	for _, g := range c.groups {
		n += len(g.Entries)
	}
	return n
}

func (c *CardsModel) MoveDown() {
	if c.cursor < c.count()-1 {
		c.cursor++
	}
}

func (c *CardsModel) MoveUp() {
	if c.cursor > 0 {
		c.cursor--
	}
}

// Selected returns the entry under the cursor, or false when empty.
func (c *CardsModel) Selected() (topology.Entry, bool) {
	i := 0
	for _, g := range c.groups {
		for _, e := range g.Entries {
			if i == c.cursor {
				return e, true
			}
			i++
		}
	}
	return topology.Entry{}, false
}

// View renders day sections with one card line per entry.
func (c *CardsModel) View() string {
	r := c.theme.Renderer
	dayStyle := r.NewStyle().Bold(true).Foreground(c.theme.Secondary)
	mutedStyle := r.NewStyle().Foreground(c.theme.Muted)

	var sb strings.Builder
	i := 0
	for _, g := range c.groups {
		sb.WriteString(dayStyle.Render(g.Day))
		sb.WriteString("\n")
		for _, e := range g.Entries {
			line := fmt.Sprintf("  %s %s", GetStatusIcon(string(topology.LastActive(e).Status)), e.Head.Title)
			if size := topology.Size(e); size > 1 {
				line += mutedStyle.Render(fmt.Sprintf(" (+%d handoffs)", size-1))
			}
			if i == c.cursor {
				line = c.theme.Selected.Render(line)
			}
			sb.WriteString(line)
			sb.WriteString("\n")
			i++
		}
		sb.WriteString("\n")
	}
	if sb.Len() == 0 {
		return mutedStyle.Render("No threads to display.")
	}
	return sb.String()
}
