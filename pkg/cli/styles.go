package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color scheme for console output.
type Theme struct {
	Primary lipgloss.Color // Headings and labels
	Alert   lipgloss.Color // Manipulation verdicts
	OK      lipgloss.Color // Clean verdicts
	Dim     lipgloss.Color // Secondary text
}

// DefaultTheme is the default terminal theme.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#00ff9f"),
	Alert:   lipgloss.Color("#ff5f56"),
	OK:      lipgloss.Color("#27c93f"),
	Dim:     lipgloss.Color("#6e7681"),
}

// Styles holds all styles derived from a theme.
type Styles struct {
	Title lipgloss.Style
	Label lipgloss.Style
	Alert lipgloss.Style
	OK    lipgloss.Style
	Dim   lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Title: lipgloss.NewStyle().Bold(true).Foreground(t.Primary).Padding(0, 1),
		Label: lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Alert: lipgloss.NewStyle().Bold(true).Foreground(t.Alert),
		OK:    lipgloss.NewStyle().Bold(true).Foreground(t.OK),
		Dim:   lipgloss.NewStyle().Foreground(t.Dim),
	}
}

// Banner renders the verdict headline, colored by severity.
func (s Styles) Banner(detected bool, label string, score float64) string {
	conf := fmt.Sprintf("%s, %.2f", label, score)
	if detected {
		return s.Alert.Render("MANIPULATION DETECTED") + " " + s.Dim.Render("("+conf+")")
	}
	return s.OK.Render("NO MANIPULATION DETECTED") + " " + s.Dim.Render("("+conf+")")
}

// StatusBadge renders a job status word with severity coloring.
func (s Styles) StatusBadge(status string) string {
	switch status {
	case "completed":
		return s.OK.Render(status)
	case "failed", "cancelled":
		return s.Alert.Render(status)
	default:
		return s.Dim.Render(status)
	}
}

// Rule renders a horizontal rule of the given width.
func (s Styles) Rule(width int) string {
	if width < 1 {
		width = 1
	}
	return s.Dim.Render(strings.Repeat("─", width))
}
