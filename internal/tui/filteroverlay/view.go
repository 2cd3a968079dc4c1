package filteroverlay

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/cms-PdmV/PdmVPages/internal/model"
	"github.com/cms-PdmV/PdmVPages/internal/ui"
)

// ---------------------------------------------------------------------------
// Result message
// ---------------------------------------------------------------------------

// ResultMsg is emitted when the user applies or cancels the overlay. When
// LinkChanged is set the app restores the whole view from Link and ignores
// Queries.
type ResultMsg struct {
	Applied     bool
	Link        string
	LinkChanged bool
	// Queries holds one entry per column, in schema order. Blank Raw
	// clears that column.
	Queries []model.ColumnQuery
}

// ---------------------------------------------------------------------------
// Model
// ---------------------------------------------------------------------------

// Model edits every column search of a dashboard at once, plus the share
// link. Field 0 is the link; field i+1 is column i of the schema.
type Model struct {
	active  bool
	focused int
	schema  model.Schema
	link    string
	inputs  []textinput.Model
	width   int
	height  int
}

// New creates an active overlay pre-populated with the current link and
// column queries.
func New(schema model.Schema, link string, current map[string]string) Model {
	m := Model{
		active: true,
		schema: schema,
		link:   link,
		inputs: make([]textinput.Model, len(schema)+1),
	}

	linkInput := textinput.New()
	linkInput.Placeholder = "paste a shared link or query"
	linkInput.CharLimit = 2048
	linkInput.Width = 40
	linkInput.SetValue(link)
	m.inputs[0] = linkInput

	for i, c := range schema {
		ti := textinput.New()
		ti.Placeholder = "any"
		ti.CharLimit = 256
		ti.Width = 40
		ti.SetValue(current[c.Key])
		m.inputs[i+1] = ti
	}

	// Start on the first column rather than the link.
	if len(schema) > 0 {
		m.focused = 1
	}
	m.inputs[m.focused].Focus()
	return m
}

func (m Model) IsActive() bool { return m.active }

func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

// ---------------------------------------------------------------------------
// Update
// ---------------------------------------------------------------------------

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.active {
		return m, nil
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
		return m, cmd
	}

	switch keyMsg.String() {
	case "esc":
		m.active = false
		return m, emitResult(ResultMsg{Applied: false})
	case "enter":
		m.active = false
		return m, emitResult(m.buildResult())
	case "tab", "down":
		m.moveFocus(1)
		return m, nil
	case "shift+tab", "up":
		m.moveFocus(-1)
		return m, nil
	case "ctrl+x":
		for i := 1; i < len(m.inputs); i++ {
			m.inputs[i].SetValue("")
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focused], cmd = m.inputs[m.focused].Update(keyMsg)
	return m, cmd
}

func (m *Model) moveFocus(delta int) {
	m.inputs[m.focused].Blur()
	n := len(m.inputs)
	m.focused = (m.focused + delta + n) % n
	m.inputs[m.focused].Focus()
}

func (m Model) buildResult() ResultMsg {
	link := strings.TrimSpace(m.inputs[0].Value())
	r := ResultMsg{
		Applied:     true,
		Link:        link,
		LinkChanged: link != m.link,
	}
	for i, c := range m.schema {
		r.Queries = append(r.Queries, model.ColumnQuery{Column: c.Key, Raw: m.inputs[i+1].Value()})
	}
	return r
}

func emitResult(r ResultMsg) tea.Cmd {
	return func() tea.Msg { return r }
}

// ---------------------------------------------------------------------------
// View
// ---------------------------------------------------------------------------

func (m Model) View() string {
	if !m.active {
		return ""
	}

	labelWidth := 12
	for _, c := range m.schema {
		labelWidth = max(labelWidth, lipgloss.Width(c.Label())+2)
	}
	labelStyle := lipgloss.NewStyle().Width(labelWidth).Foreground(ui.ColorMuted)
	focusedLabelStyle := lipgloss.NewStyle().Width(labelWidth).Bold(true).Foreground(ui.ColorPrimary)

	rows := make([]string, 0, len(m.inputs)+1)
	for i, in := range m.inputs {
		ls := labelStyle
		if i == m.focused {
			ls = focusedLabelStyle
		}
		label := "Share link:"
		if i > 0 {
			label = m.schema[i-1].Label() + ":"
		}
		cursor := "  "
		if i == m.focused {
			cursor = lipgloss.NewStyle().Foreground(ui.ColorPrimary).Render("> ")
		}
		rows = append(rows, fmt.Sprintf("%s%s %s", cursor, ls.Render(label), in.View()))
		if i == 0 {
			rows = append(rows, "")
		}
	}

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(ui.ColorPrimary).
		MarginBottom(1).
		Render("Column Search")

	help := lipgloss.NewStyle().
		Foreground(ui.ColorMuted).
		MarginTop(1).
		Render("enter: apply  tab: next  ctrl+x: clear  esc: cancel\n-abc excludes, -* empty only, a b matches a…b")

	body := lipgloss.JoinVertical(lipgloss.Left,
		title,
		strings.Join(rows, "\n"),
		help,
	)

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ui.ColorPrimary).
		Padding(1, 2).
		Width(labelWidth + 52).
		Render(body)

	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height,
			lipgloss.Center, lipgloss.Center,
			box)
	}
	return box
}
