package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/cms-PdmV/PdmVPages/internal/source"
	"github.com/cms-PdmV/PdmVPages/internal/ui"
)

func RenderHeader(title string, updatedAt time.Time, stale bool, width int) string {
	left := lipgloss.NewStyle().Bold(true).
		Foreground(ui.ColorText).
		Render(fmt.Sprintf(" pdmv-pages | %s", title))

	right := ""
	if !updatedAt.IsZero() {
		right = lipgloss.NewStyle().Foreground(ui.ColorMuted).
			Render("Last update: " + updatedAt.Format(source.TimestampLayout) + " ")
	}
	if stale {
		right = lipgloss.NewStyle().Foreground(ui.ColorWarning).Render("offline copy ") + right
	}

	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	padding := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.NewStyle().
		Background(ui.ColorHighlight).
		Width(width).
		Render(left + padding + right)
}

// RenderTabs lists the dashboards with the active one highlighted.
func RenderTabs(names []string, active int, width int) string {
	parts := make([]string, len(names))
	for i, n := range names {
		label := fmt.Sprintf(" %d %s ", i+1, n)
		if i == active {
			parts[i] = lipgloss.NewStyle().Bold(true).
				Foreground(ui.ColorText).Background(ui.ColorPrimary).Render(label)
		} else {
			parts[i] = ui.StyleMuted.Render(label)
		}
	}
	return lipgloss.NewStyle().Width(width).Render(strings.Join(parts, " "))
}
