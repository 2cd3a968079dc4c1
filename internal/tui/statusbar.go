package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/cms-PdmV/PdmVPages/internal/ui"
)

func RenderStatusBar(status, hints string, width int) string {
	left := lipgloss.NewStyle().Foreground(ui.ColorMuted).Render("  " + status)

	help := lipgloss.NewStyle().Foreground(ui.ColorMuted).
		Render(hints + " ")

	gap := max(width-lipgloss.Width(left)-lipgloss.Width(help), 0)
	padding := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.NewStyle().
		Background(lipgloss.Color("#111827")).
		Width(width).
		Render(left + padding + help)
}

// RenderAddressBar shows the share link of the current view, the way a
// browser shows its location.
func RenderAddressBar(link string, width int) string {
	label := ui.StyleInfo.Render("  link ")
	room := width - lipgloss.Width(label) - 1
	if room > 1 && lipgloss.Width(link) > room {
		r := []rune(link)
		link = "…" + string(r[len(r)-room+1:])
	}
	return lipgloss.NewStyle().Width(width).Render(label + link)
}
