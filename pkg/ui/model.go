package ui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/vanderheijden86/stackview/pkg/model"
	"github.com/vanderheijden86/stackview/pkg/topology"
)

type focus int

const (
	focusTable focus = iota
	focusBoard
	focusCards
)

// ThreadsReloadedMsg carries a fresh thread list, typically sent by the
// file watcher after a source changed.
type ThreadsReloadedMsg struct {
	Threads []model.Thread
}

// Model is the root bubbletea model: it owns the thread list, the
// built topology, the expand/collapse set and the three views.
type Model struct {
	threads []model.Thread
	entries []topology.Entry // all entries, built once per input change
	visible []topology.Entry // entries after search filtering

	// expanded holds the stack IDs whose descendants are shown. This
	// is view state; the topology itself is rebuilt from scratch on
	// every reload and never mutated.
	expanded map[string]bool

	list     list.Model
	board    BoardModel
	cards    CardsModel
	theme    Theme
	focused  focus
	detailVP viewport.Model
	renderer *glamour.TermRenderer

	searchInput textinput.Model
	searching   bool
	query       string

	showDetail bool
	ready      bool
	width      int
	height     int
	statusMsg  string
}

// NewModel builds the root model from an initial thread list.
func NewModel(threads []model.Thread) Model {
	theme := DefaultTheme(lipgloss.DefaultRenderer())

	entries := topology.Build(threads)

	delegate := RowDelegate{Theme: theme}
	l := list.New(nil, delegate, 0, 0)
	l.Title = "Threads"
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false) // fuzzy search replaces the built-in filter
	l.SetShowStatusBar(false)

	mdRenderer, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(60),
	)

	ti := textinput.New()
	ti.Placeholder = "search threads"
	ti.CharLimit = 80

	m := Model{
		threads:     threads,
		entries:     entries,
		visible:     entries,
		expanded:    make(map[string]bool),
		list:        l,
		board:       NewBoardModel(entries, theme),
		cards:       NewCardsModel(entries, theme),
		theme:       theme,
		detailVP:    viewport.New(40, 20),
		renderer:    mdRenderer,
		searchInput: ti,
	}
	m.refreshRows()
	return m
}

// SetThreads replaces the thread list and rebuilds everything derived
// from it. Expanded IDs that no longer name a stack are dropped.
func (m *Model) SetThreads(threads []model.Thread) {
	m.threads = threads
	m.entries = topology.Build(threads)
	valid := make(map[string]bool, len(m.entries))
	for _, e := range m.entries {
		if e.Kind == topology.KindStack {
			valid[e.ID()] = true
		}
	}
	for id := range m.expanded {
		if !valid[id] {
			delete(m.expanded, id)
		}
	}
	m.applyFilter()
}

// applyFilter recomputes the visible entries from the current query.
// An entry stays visible when any member matches.
func (m *Model) applyFilter() {
	m.visible = filterEntries(m.entries, m.query)
	m.board.SetEntries(m.visible)
	m.cards.SetEntries(m.visible)
	m.refreshRows()
}

// filterEntries keeps entries with at least one fuzzy-matching member.
func filterEntries(entries []topology.Entry, query string) []topology.Entry {
	if query == "" {
		return entries
	}
	var haystack []string
	var owners []int
	for i, e := range entries {
		haystack = append(haystack, e.Head.Title+" "+e.Head.ID)
		owners = append(owners, i)
		for _, d := range e.Descendants {
			haystack = append(haystack, d.Title+" "+d.ID)
			owners = append(owners, i)
		}
	}
	keep := make(map[int]bool)
	for _, match := range fuzzy.Find(query, haystack) {
		keep[owners[match.Index]] = true
	}
	out := make([]topology.Entry, 0, len(keep))
	for i, e := range entries {
		if keep[i] {
			out = append(out, e)
		}
	}
	return out
}

// refreshRows rebuilds the table rows from visible entries and the
// expanded set, preserving the cursor when possible.
func (m *Model) refreshRows() {
	selectedID := ""
	if row, ok := m.selectedRow(); ok {
		selectedID = row.Thread.ID
	}

	rows := BuildRows(m.visible, m.expanded)
	items := make([]list.Item, len(rows))
	for i, r := range rows {
		items[i] = RowItem{Row: r}
	}
	m.list.SetItems(items)

	if selectedID != "" {
		for i, r := range rows {
			if r.Thread.ID == selectedID {
				m.list.Select(i)
				break
			}
		}
	}
}

func (m *Model) selectedRow() (Row, bool) {
	item, ok := m.list.SelectedItem().(RowItem)
	if !ok {
		return Row{}, false
	}
	return item.Row, true
}

// selectedEntry resolves the entry the cursor sits in, regardless of
// which view has focus.
func (m *Model) selectedEntry() (topology.Entry, bool) {
	switch m.focused {
	case focusBoard:
		return m.board.Selected()
	case focusCards:
		return m.cards.Selected()
	default:
		row, ok := m.selectedRow()
		if !ok {
			return topology.Entry{}, false
		}
		for _, e := range m.visible {
			if e.ID() == row.EntryID {
				return e, true
			}
		}
		return topology.Entry{}, false
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height-2)
		m.board.SetSize(msg.Width, msg.Height-2)
		m.cards.SetSize(msg.Width, msg.Height-2)
		m.detailVP.Width = msg.Width / 2
		m.detailVP.Height = msg.Height - 4
		m.ready = true
		return m, nil

	case ThreadsReloadedMsg:
		m.SetThreads(msg.Threads)
		m.statusMsg = fmt.Sprintf("reloaded %d threads", len(msg.Threads))
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searching = false
		m.query = m.searchInput.Value()
		m.applyFilter()
		return m, nil
	case "esc":
		m.searching = false
		m.searchInput.SetValue("")
		m.query = ""
		m.applyFilter()
		return m, nil
	}
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "tab":
		m.focused = (m.focused + 1) % 3
		return m, nil
	case "1":
		m.focused = focusTable
		return m, nil
	case "2":
		m.focused = focusBoard
		return m, nil
	case "3":
		m.focused = focusCards
		return m, nil

	case "/":
		m.searching = true
		m.searchInput.Focus()
		return m, textinput.Blink

	case "esc":
		if m.query != "" {
			m.query = ""
			m.searchInput.SetValue("")
			m.applyFilter()
		}
		return m, nil

	case "enter", " ":
		if m.focused == focusTable {
			if row, ok := m.selectedRow(); ok && row.StackSize > 1 {
				if m.expanded[row.EntryID] {
					delete(m.expanded, row.EntryID)
				} else {
					m.expanded[row.EntryID] = true
				}
				m.refreshRows()
			}
		}
		return m, nil

	case "E":
		for _, e := range m.visible {
			if e.Kind == topology.KindStack {
				m.expanded[e.ID()] = true
			}
		}
		m.refreshRows()
		return m, nil

	case "C":
		m.expanded = make(map[string]bool)
		m.refreshRows()
		return m, nil

	case "d":
		m.showDetail = !m.showDetail
		if m.showDetail {
			m.renderDetail()
		}
		return m, nil

	case "y":
		if e, ok := m.selectedEntry(); ok {
			if err := clipboard.WriteAll(e.Head.ID); err != nil {
				m.statusMsg = "clipboard unavailable"
			} else {
				m.statusMsg = "copied " + e.Head.ID
			}
		}
		return m, nil
	}

	// View-local navigation
	switch m.focused {
	case focusBoard:
		switch msg.String() {
		case "j", "down":
			m.board.MoveDown()
		case "k", "up":
			m.board.MoveUp()
		case "h", "left":
			m.board.MoveLeft()
		case "l", "right":
			m.board.MoveRight()
		}
		return m, nil
	case focusCards:
		switch msg.String() {
		case "j", "down":
			m.cards.MoveDown()
		case "k", "up":
			m.cards.MoveUp()
		}
		return m, nil
	default:
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		if m.showDetail {
			m.renderDetail()
		}
		return m, cmd
	}
}

// renderDetail rebuilds the detail pane for the selected entry.
func (m *Model) renderDetail() {
	e, ok := m.selectedEntry()
	if !ok || m.renderer == nil {
		return
	}
	md := detailMarkdown(e)
	out, err := m.renderer.Render(md)
	if err != nil {
		out = md
	}
	m.detailVP.SetContent(out)
}

// detailMarkdown summarizes an entry for the glamour pane.
func detailMarkdown(e topology.Entry) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", e.Head.Title)
	fmt.Fprintf(&sb, "- **ID**: %s\n", e.Head.ID)
	fmt.Fprintf(&sb, "- **Status**: %s\n", e.Head.Status)
	if e.Head.Workdir != "" {
		fmt.Fprintf(&sb, "- **Workdir**: %s\n", e.Head.Workdir)
	}
	if e.Head.CostCents > 0 {
		fmt.Fprintf(&sb, "- **Cost**: $%.2f\n", float64(e.Head.CostCents)/100)
	}
	if e.Head.Blocker != "" {
		fmt.Fprintf(&sb, "- **Blocked**: %s\n", e.Head.Blocker)
	}
	if len(e.Head.LinkedIssues) > 0 {
		fmt.Fprintf(&sb, "- **Issues**: %s\n", strings.Join(e.Head.LinkedIssues, ", "))
	}
	if e.Kind == topology.KindStack {
		fmt.Fprintf(&sb, "\n## Handoffs (%d)\n\n", len(e.Descendants))
		for _, d := range e.Descendants {
			indent := strings.Repeat("  ", e.Topology.Depth(d.ID))
			fmt.Fprintf(&sb, "%s- %s %s (%s)\n", indent, d.ID, d.Title, d.Status)
		}
	}
	return sb.String()
}

func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	var body string
	switch m.focused {
	case focusBoard:
		body = m.board.View()
	case focusCards:
		body = m.cards.View()
	default:
		body = m.list.View()
	}

	if m.showDetail {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, m.detailVP.View())
	}

	var footer string
	switch {
	case m.searching:
		footer = m.searchInput.View()
	case m.statusMsg != "":
		footer = m.theme.Renderer.NewStyle().Foreground(m.theme.Muted).Render(m.statusMsg)
	default:
		footer = m.theme.Renderer.NewStyle().Foreground(m.theme.Muted).
			Render("tab: view · enter: expand · /: search · d: detail · y: yank · q: quit")
	}
	return body + "\n" + footer
}
