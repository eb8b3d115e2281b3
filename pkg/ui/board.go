package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/stackview/pkg/model"
	"github.com/vanderheijden86/stackview/pkg/topology"
)

// Column indices for the board
const (
	ColRunning = 0
	ColWaiting = 1
	ColDone    = 2
	ColFailed  = 3
)

var columnTitles = [4]string{"Running", "Waiting", "Done", "Failed"}

// BoardModel represents the status board with adaptive columns. An
// entry lands in the column of its most recently active member, so a
// stack whose latest continuation is still running shows under Running
// even when the head finished long ago.
type BoardModel struct {
	columns      [4][]topology.Entry
	activeColIdx []int  // indices of non-empty columns (for navigation)
	focusedCol   int    // index into activeColIdx
	selectedRow  [4]int // selection per column
	theme        Theme
	width        int
	height       int
}

// columnFor maps a status to its board column.
func columnFor(status model.Status) int {
	switch status {
	case model.StatusRunning:
		return ColRunning
	case model.StatusWaiting:
		return ColWaiting
	case model.StatusFailed:
		return ColFailed
	default:
		return ColDone
	}
}

// NewBoardModel creates a board from built entries.
func NewBoardModel(entries []topology.Entry, theme Theme) BoardModel {
	b := BoardModel{theme: theme}
	b.SetEntries(entries)
	return b
}

// SetEntries redistributes entries into columns, typically after a
// reload or filter. Entries arrive already sorted by recency, and the
// columns keep that order.
func (b *BoardModel) SetEntries(entries []topology.Entry) {
	var cols [4][]topology.Entry
	for _, e := range entries {
		col := columnFor(topology.LastActive(e).Status)
		cols[col] = append(cols[col], e)
	}
	b.columns = cols

	for i := 0; i < 4; i++ {
		if b.selectedRow[i] >= len(b.columns[i]) {
			if len(b.columns[i]) > 0 {
				b.selectedRow[i] = len(b.columns[i]) - 1
			} else {
				b.selectedRow[i] = 0
			}
		}
	}
	b.updateActiveColumns()
}

// updateActiveColumns rebuilds the list of non-empty column indices
func (b *BoardModel) updateActiveColumns() {
	b.activeColIdx = nil
	for i := 0; i < 4; i++ {
		if len(b.columns[i]) > 0 {
			b.activeColIdx = append(b.activeColIdx, i)
		}
	}
	if len(b.activeColIdx) == 0 {
		b.activeColIdx = []int{ColRunning, ColWaiting, ColDone, ColFailed}
	}
	if b.focusedCol >= len(b.activeColIdx) {
		b.focusedCol = len(b.activeColIdx) - 1
	}
	if b.focusedCol < 0 {
		b.focusedCol = 0
	}
}

// SetSize updates the available dimensions.
func (b *BoardModel) SetSize(width, height int) {
	b.width = width
	b.height = height
}

// actualFocusedCol returns the actual column index (0-3) being focused
func (b *BoardModel) actualFocusedCol() int {
	if len(b.activeColIdx) == 0 {
		return 0
	}
	return b.activeColIdx[b.focusedCol]
}

// Selected returns the entry under the cursor, or false if the board
// is empty.
func (b *BoardModel) Selected() (topology.Entry, bool) {
	col := b.actualFocusedCol()
	if len(b.columns[col]) == 0 {
		return topology.Entry{}, false
	}
	return b.columns[col][b.selectedRow[col]], true
}

func (b *BoardModel) MoveDown() {
	col := b.actualFocusedCol()
	if count := len(b.columns[col]); count > 0 && b.selectedRow[col] < count-1 {
		b.selectedRow[col]++
	}
}

func (b *BoardModel) MoveUp() {
	col := b.actualFocusedCol()
	if b.selectedRow[col] > 0 {
		b.selectedRow[col]--
	}
}

func (b *BoardModel) MoveRight() {
	if b.focusedCol < len(b.activeColIdx)-1 {
		b.focusedCol++
	}
}

func (b *BoardModel) MoveLeft() {
	if b.focusedCol > 0 {
		b.focusedCol--
	}
}

// View renders the four columns side by side.
func (b *BoardModel) View() string {
	colWidth := b.width/4 - 2
	if colWidth < 16 {
		colWidth = 16
	}

	rendered := make([]string, 0, 4)
	for col := 0; col < 4; col++ {
		rendered = append(rendered, b.renderColumn(col, colWidth))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (b *BoardModel) renderColumn(col, width int) string {
	r := b.theme.Renderer
	focused := b.actualFocusedCol() == col

	titleStyle := r.NewStyle().Bold(true).Width(width)
	if focused {
		titleStyle = titleStyle.Foreground(b.theme.Highlight)
	} else {
		titleStyle = titleStyle.Foreground(b.theme.Muted)
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf("%s (%d)", columnTitles[col], len(b.columns[col]))))
	sb.WriteString("\n")

	for row, e := range b.columns[col] {
		sb.WriteString(b.renderCard(e, width, focused && row == b.selectedRow[col]))
		sb.WriteString("\n")
	}

	style := r.NewStyle().Width(width).PaddingRight(2)
	return style.Render(sb.String())
}

func (b *BoardModel) renderCard(e topology.Entry, width int, selected bool) string {
	r := b.theme.Renderer
	title := e.Head.Title
	if topology.Size(e) > 1 {
		title = fmt.Sprintf("%s [%d]", title, topology.Size(e))
	}
	style := r.NewStyle().Width(width).MaxWidth(width)
	if selected {
		style = style.Inherit(b.theme.Selected)
	}
	icon := GetStatusIcon(string(topology.LastActive(e).Status))
	return style.Render(icon + " " + title)
}
