package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	ColorPrimary   = lipgloss.Color("#7C3AED")
	ColorSuccess   = lipgloss.Color("#10B981")
	ColorFailure   = lipgloss.Color("#EF4444")
	ColorWarning   = lipgloss.Color("#F59E0B")
	ColorInfo      = lipgloss.Color("#3B82F6")
	ColorMuted     = lipgloss.Color("#6B7280")
	ColorBorder    = lipgloss.Color("#374151")
	ColorHighlight = lipgloss.Color("#1F2937")
	ColorText      = lipgloss.Color("#F9FAFB")

	StylePane = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder)

	StylePaneFocused = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorPrimary)

	StyleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Background(ColorPrimary).
			Padding(0, 1)

	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess)
	StyleFailure = lipgloss.NewStyle().Foreground(ColorFailure)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning)
	StyleInfo    = lipgloss.NewStyle().Foreground(ColorInfo)
	StyleMuted   = lipgloss.NewStyle().Foreground(ColorMuted)

	StyleMatch = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FCD34D")).
			Background(lipgloss.Color("#78350F"))
)

// StatusStyle colours the request and transfer states that appear in the
// status columns of the dashboards.
func StatusStyle(status string) lipgloss.Style {
	switch strings.ToLower(status) {
	case "done", "completed", "announced", "normal-archived", "ok":
		return StyleSuccess
	case "not_exist", "failed", "rejected", "aborted", "stuck":
		return StyleFailure
	case "staging", "staged", "assignment-approved", "running-open", "running-closed":
		return StyleWarning
	case "submitted", "running", "acquired", "assigned":
		return StyleInfo
	case "new", "validation", "defined", "approved":
		return StyleMuted
	default:
		return lipgloss.NewStyle()
	}
}

// IsStatusColumn reports whether a column holds request states.
func IsStatusColumn(key string) bool {
	return key == "status" || strings.HasSuffix(key, "_status")
}
