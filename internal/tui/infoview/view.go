// Package infoview shows every field of one record in a scrollable pane,
// for cells too long to read in the table.
package infoview

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/cms-PdmV/PdmVPages/internal/model"
	"github.com/cms-PdmV/PdmVPages/internal/ui"
)

type Model struct {
	schema   model.Schema
	record   model.Record
	viewport viewport.Model
	width    int
	height   int
	ready    bool
}

func New() Model {
	return Model{}
}

// SetRecord selects the record to show.
func (m *Model) SetRecord(schema model.Schema, rec model.Record) {
	m.schema = schema
	m.record = rec
	if m.ready {
		m.viewport.SetContent(m.render())
		m.viewport.GotoTop()
	}
}

func (m Model) Record() model.Record { return m.record }

func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	headerH := 1
	if !m.ready {
		m.viewport = viewport.New(w, max(h-headerH, 1))
		m.ready = true
	} else {
		m.viewport.Width = w
		m.viewport.Height = max(h-headerH, 1)
	}
	m.viewport.SetContent(m.render())
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.ready {
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.record == nil {
		return "\n  Select a row and press 'i' to view it"
	}

	pct := m.viewport.ScrollPercent() * 100
	header := fmt.Sprintf(" Record  %3.0f%%", pct)
	hints := lipgloss.NewStyle().Foreground(ui.ColorMuted).Render(
		"  j/k:scroll  PgUp/Dn:page  esc:back")
	headerLine := lipgloss.NewStyle().Bold(true).
		Foreground(ui.ColorText).
		Render(header) + hints

	return headerLine + "\n" + m.viewport.View()
}

func (m Model) render() string {
	if m.record == nil {
		return ""
	}

	labelW := 8
	for _, c := range m.schema {
		labelW = max(labelW, lipgloss.Width(c.Label())+2)
	}
	label := lipgloss.NewStyle().Foreground(ui.ColorMuted).Width(labelW)
	valueW := max(m.width-labelW-4, 20)
	value := lipgloss.NewStyle().Foreground(ui.ColorText).Width(valueW)
	empty := lipgloss.NewStyle().Foreground(ui.ColorMuted).Italic(true)

	var b strings.Builder
	b.WriteString("\n")
	for _, c := range m.schema {
		v := m.record.Get(c.Key)
		var rendered string
		switch {
		case v.IsEmpty():
			rendered = empty.Render("(empty)")
		case ui.IsStatusColumn(c.Key):
			rendered = ui.StatusStyle(v.String()).Render(v.String())
		default:
			rendered = value.Render(formatValue(v.String()))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, "  ", label.Render(c.Label()), rendered))
		b.WriteString("\n")
	}
	return b.String()
}

// formatValue indents values holding JSON objects or arrays.
func formatValue(s string) string {
	if !strings.HasPrefix(s, "{") && !strings.HasPrefix(s, "[") {
		return s
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(s), "", "  "); err != nil {
		return s
	}
	return buf.String()
}
