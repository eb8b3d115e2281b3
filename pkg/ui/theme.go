package ui

import "github.com/charmbracelet/lipgloss"

// Theme holds the adaptive colors and shared styles for all views.
type Theme struct {
	Renderer *lipgloss.Renderer

	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor

	Selected lipgloss.Style
	Border   lipgloss.Style
}

// DefaultTheme returns the standard theme for the given renderer.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	primary := lipgloss.AdaptiveColor{Light: "#D70000", Dark: "#FF5F5F"}
	secondary := lipgloss.AdaptiveColor{Light: "#AF8700", Dark: "#FFD75F"}
	muted := lipgloss.AdaptiveColor{Light: "#8A8A8A", Dark: "#6C6C6C"}
	highlight := lipgloss.AdaptiveColor{Light: "#005FAF", Dark: "#5FAFFF"}

	return Theme{
		Renderer:  r,
		Primary:   primary,
		Secondary: secondary,
		Muted:     muted,
		Highlight: highlight,
		Selected:  r.NewStyle().Bold(true).Foreground(highlight),
		Border:    r.NewStyle().Foreground(muted),
	}
}

// GetStatusColor maps a thread status to its display color.
func (t Theme) GetStatusColor(status string) lipgloss.AdaptiveColor {
	switch status {
	case "running":
		return lipgloss.AdaptiveColor{Light: "#008700", Dark: "#5FD700"}
	case "waiting":
		return t.Secondary
	case "failed":
		return t.Primary
	case "done":
		return t.Muted
	default:
		return t.Muted
	}
}

// GetStatusIcon returns the dot used next to a thread's title.
func GetStatusIcon(status string) string {
	switch status {
	case "running":
		return "●"
	case "waiting":
		return "◐"
	case "failed":
		return "✗"
	case "done":
		return "✓"
	default:
		return "○"
	}
}
