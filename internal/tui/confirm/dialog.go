// Package confirm is a yes/no dialog for destructive actions such as
// clearing every column search of a dashboard.
package confirm

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/cms-PdmV/PdmVPages/internal/ui"
)

type ResultMsg struct {
	Confirmed bool
	Action    string
	// Dashboard is the tab the action targets.
	Dashboard string
}

type Model struct {
	Title     string
	Message   string
	Action    string
	Dashboard string
	active    bool
	selected  bool // true = confirm selected
}

func New(title, message, action, dashboard string) Model {
	return Model{
		Title:     title,
		Message:   message,
		Action:    action,
		Dashboard: dashboard,
		active:    true,
	}
}

func (m Model) IsActive() bool { return m.active }

func (m Model) Init() tea.Cmd { return nil }

func (m Model) result(ok bool) tea.Cmd {
	r := ResultMsg{Confirmed: ok, Action: m.Action, Dashboard: m.Dashboard}
	return func() tea.Msg { return r }
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.active {
		return m, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "y", "Y":
			m.active = false
			return m, m.result(true)
		case "n", "N", "esc":
			m.active = false
			return m, m.result(false)
		case "enter":
			m.active = false
			return m, m.result(m.selected)
		case "tab", "left", "right", "h", "l":
			m.selected = !m.selected
		}
	}
	return m, nil
}

func (m Model) View() string {
	if !m.active {
		return ""
	}

	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ui.ColorWarning).
		Padding(1, 2).
		Width(50)

	title := lipgloss.NewStyle().Bold(true).
		Foreground(ui.ColorWarning).
		Render(m.Title)

	yesStyle := lipgloss.NewStyle().Padding(0, 1)
	noStyle := lipgloss.NewStyle().Padding(0, 1)

	if m.selected {
		yesStyle = yesStyle.Bold(true).Background(ui.ColorSuccess).Foreground(ui.ColorText)
		noStyle = noStyle.Foreground(ui.ColorMuted)
	} else {
		yesStyle = yesStyle.Foreground(ui.ColorMuted)
		noStyle = noStyle.Bold(true).Background(ui.ColorFailure).Foreground(ui.ColorText)
	}

	content := fmt.Sprintf("%s\n\n%s\n\n%s  %s\n\ny/n to confirm, esc to cancel",
		title, m.Message,
		yesStyle.Render("Yes"), noStyle.Render("No"))

	return style.Render(content)
}
