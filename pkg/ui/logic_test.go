package ui

import (
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/stackview/pkg/model"
	"github.com/vanderheijden86/stackview/pkg/topology"
)

func newTestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(io.Discard))
}

func th(id, parent, date string, status model.Status) model.Thread {
	return model.Thread{
		ID:              id,
		Title:           "Thread " + id,
		Status:          status,
		HandoffParentID: parent,
		LastUpdatedDate: date,
	}
}

func testEntries() []topology.Entry {
	return topology.Build([]model.Thread{
		th("head", "", "2026-08-25T09:00:00Z", model.StatusDone),
		th("kid", "head", "2026-08-29T09:00:00Z", model.StatusRunning),
		th("solo", "", "2026-08-28T09:00:00Z", model.StatusWaiting),
	})
}

func TestBuildRowsCollapsed(t *testing.T) {
	rows := BuildRows(testEntries(), nil)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows when collapsed, got %d", len(rows))
	}
	if !rows[0].IsHead || rows[0].Thread.ID != "head" {
		t.Errorf("first row should be the stack head, got %+v", rows[0])
	}
	if rows[0].StackSize != 2 || rows[0].Expanded {
		t.Errorf("head row metadata wrong: %+v", rows[0])
	}
}

func TestBuildRowsExpanded(t *testing.T) {
	rows := BuildRows(testEntries(), map[string]bool{"head": true})
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows when expanded, got %d", len(rows))
	}
	if rows[1].Thread.ID != "kid" || rows[1].Depth != 1 || rows[1].IsHead {
		t.Errorf("descendant row wrong: %+v", rows[1])
	}
	if rows[1].EntryID != "head" {
		t.Errorf("descendant should belong to entry head, got %s", rows[1].EntryID)
	}
}

func TestExpandIndicator(t *testing.T) {
	tests := []struct {
		row  Row
		want string
	}{
		{Row{IsHead: true, StackSize: 2}, "▸"},
		{Row{IsHead: true, StackSize: 2, Expanded: true}, "▾"},
		{Row{IsHead: true, StackSize: 1}, " "},
		{Row{IsHead: false, StackSize: 2}, " "},
	}
	for _, tt := range tests {
		if got := expandIndicator(tt.row); got != tt.want {
			t.Errorf("expandIndicator(%+v) = %q, want %q", tt.row, got, tt.want)
		}
	}
}

func TestFilterEntriesMatchesDescendant(t *testing.T) {
	entries := testEntries()
	// "kid" only exists inside the stack; the whole stack must survive.
	got := filterEntries(entries, "kid")
	if len(got) != 1 || got[0].ID() != "head" {
		t.Errorf("expected the stack containing kid, got %v", got)
	}
}

func TestFilterEntriesEmptyQueryKeepsAll(t *testing.T) {
	entries := testEntries()
	if got := filterEntries(entries, ""); len(got) != len(entries) {
		t.Errorf("empty query should keep all entries, got %d of %d", len(got), len(entries))
	}
}

func TestFilterEntriesNoMatch(t *testing.T) {
	if got := filterEntries(testEntries(), "zzzqqq"); len(got) != 0 {
		t.Errorf("expected no matches, got %v", got)
	}
}

func TestBoardPlacesStackByLastActiveMember(t *testing.T) {
	board := NewBoardModel(testEntries(), newTestTheme())
	// The stack's newest member (kid) is running, so the stack sits in
	// the Running column even though its head is done.
	if len(board.columns[ColRunning]) != 1 || board.columns[ColRunning][0].ID() != "head" {
		t.Errorf("Running column = %v", board.columns[ColRunning])
	}
	if len(board.columns[ColDone]) != 0 {
		t.Errorf("Done column should be empty, got %v", board.columns[ColDone])
	}
	if len(board.columns[ColWaiting]) != 1 {
		t.Errorf("Waiting column should hold solo, got %v", board.columns[ColWaiting])
	}
}

func TestBoardNavigationSkipsEmptyColumns(t *testing.T) {
	board := NewBoardModel(testEntries(), newTestTheme())
	// Active columns: Running and Waiting.
	if got := len(board.activeColIdx); got != 2 {
		t.Fatalf("expected 2 active columns, got %d", got)
	}
	board.MoveRight()
	if board.actualFocusedCol() != ColWaiting {
		t.Errorf("expected focus on Waiting after MoveRight, got %d", board.actualFocusedCol())
	}
	board.MoveRight() // no further columns
	if board.actualFocusedCol() != ColWaiting {
		t.Errorf("focus should stay on last active column")
	}
}

func TestBoardSelected(t *testing.T) {
	board := NewBoardModel(testEntries(), newTestTheme())
	e, ok := board.Selected()
	if !ok || e.ID() != "head" {
		t.Errorf("Selected = %v/%v, want the stack entry", e.ID(), ok)
	}
}

func TestGroupByDay(t *testing.T) {
	entries := topology.Build([]model.Thread{
		th("a", "", "2026-08-29T09:00:00Z", model.StatusDone),
		th("b", "", "2026-08-29T18:00:00Z", model.StatusDone),
		th("c", "", "2026-08-28T09:00:00Z", model.StatusDone),
		th("d", "", "", model.StatusDone),
	})
	groups := GroupByDay(entries)
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d: %v", len(groups), groups)
	}
	if groups[0].Day != "2026-08-29" || len(groups[0].Entries) != 2 {
		t.Errorf("first group = %+v", groups[0])
	}
	if groups[1].Day != "2026-08-28" {
		t.Errorf("second group = %s", groups[1].Day)
	}
	if groups[2].Day != undatedGroup || len(groups[2].Entries) != 1 {
		t.Errorf("undated group = %+v", groups[2])
	}
}

func TestCardsSelection(t *testing.T) {
	cards := NewCardsModel(testEntries(), newTestTheme())
	e, ok := cards.Selected()
	if !ok || e.ID() != "head" {
		t.Errorf("initial selection = %v/%v, want head", e.ID(), ok)
	}
	cards.MoveDown()
	e, _ = cards.Selected()
	if e.ID() != "solo" {
		t.Errorf("after MoveDown selection = %s, want solo", e.ID())
	}
	cards.MoveDown() // past the end
	e, _ = cards.Selected()
	if e.ID() != "solo" {
		t.Errorf("cursor ran past the last card: %s", e.ID())
	}
}

func TestSetThreadsDropsStaleExpandedIDs(t *testing.T) {
	m := NewModel([]model.Thread{
		th("head", "", "2026-08-25T09:00:00Z", model.StatusDone),
		th("kid", "head", "2026-08-26T09:00:00Z", model.StatusDone),
	})
	m.expanded["head"] = true
	// head's stack dissolves: kid is gone in the new list.
	m.SetThreads([]model.Thread{
		th("head", "", "2026-08-25T09:00:00Z", model.StatusDone),
	})
	if m.expanded["head"] {
		t.Error("expanded set should drop IDs that no longer name a stack")
	}
}

func TestDetailMarkdownListsHandoffs(t *testing.T) {
	entries := testEntries()
	var stack topology.Entry
	for _, e := range entries {
		if e.Kind == topology.KindStack {
			stack = e
		}
	}
	md := detailMarkdown(stack)
	for _, want := range []string{"# Thread head", "## Handoffs (1)", "kid"} {
		if !strings.Contains(md, want) {
			t.Errorf("detail markdown missing %q:\n%s", want, md)
		}
	}
}
