// Package tableview renders one dashboard board as a scrollable grid with
// a column cursor and an inline search field for the focused column.
package tableview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/cms-PdmV/PdmVPages/internal/board"
	"github.com/cms-PdmV/PdmVPages/internal/model"
	"github.com/cms-PdmV/PdmVPages/internal/ui"
)

const (
	maxCellWidth = 48
	// chrome is the number of lines used by the table border, the header
	// and the search line.
	chrome = 5
)

type Model struct {
	board *board.Board

	row    int // cursor in the visible rows
	offset int // first visible row on screen
	col    int // focused column index in the schema

	search     textinput.Model
	searching  bool
	prevSearch string

	width  int
	height int
}

func New() Model {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.CharLimit = 256
	return Model{search: ti}
}

// SetBoard attaches a board, keeping the cursor where possible.
func (m *Model) SetBoard(b *board.Board) {
	m.board = b
	m.clamp()
}

func (m Model) Board() *board.Board { return m.board }

func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.search.Width = max(w-20, 10)
	m.clamp()
}

// IsSearching reports whether the column search field has focus; the app
// then routes every key here.
func (m Model) IsSearching() bool { return m.searching }

// FocusedColumn returns the key of the column under the cursor.
func (m Model) FocusedColumn() string {
	if m.board == nil || len(m.board.Schema()) == 0 {
		return ""
	}
	return m.board.Schema()[m.col].Key
}

// Selected returns the record under the cursor.
func (m Model) Selected() (model.Record, bool) {
	if m.board == nil {
		return nil, false
	}
	rows := m.board.Visible()
	if m.row < 0 || m.row >= len(rows) {
		return nil, false
	}
	return m.board.Dataset().Records[rows[m.row]], true
}

func (m Model) pageSize() int {
	return max(m.height-chrome, 1)
}

func (m *Model) clamp() {
	if m.board == nil {
		return
	}
	n := len(m.board.Visible())
	m.row = min(max(m.row, 0), max(n-1, 0))
	if cols := len(m.board.Schema()); m.col >= cols {
		m.col = max(cols-1, 0)
	}
	page := m.pageSize()
	if m.row < m.offset {
		m.offset = m.row
	}
	if m.row >= m.offset+page {
		m.offset = m.row - page + 1
	}
	m.offset = min(max(m.offset, 0), max(n-page, 0))
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) changed() tea.Cmd {
	name := m.board.Name()
	return func() tea.Msg { return ui.ViewChangedMsg{Dashboard: name} }
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.board == nil {
		return m, nil
	}
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.searching {
			var cmd tea.Cmd
			m.search, cmd = m.search.Update(msg)
			return m, cmd
		}
		return m, nil
	}
	if m.searching {
		return m.updateSearch(keyMsg)
	}

	switch {
	case key.Matches(keyMsg, ui.Keys.Down):
		m.row++
	case key.Matches(keyMsg, ui.Keys.Up):
		m.row--
	case key.Matches(keyMsg, ui.Keys.PageDown):
		m.row += m.pageSize()
	case key.Matches(keyMsg, ui.Keys.PageUp):
		m.row -= m.pageSize()
	case key.Matches(keyMsg, ui.Keys.Top):
		m.row = 0
	case key.Matches(keyMsg, ui.Keys.Bottom):
		m.row = len(m.board.Visible()) - 1
	case key.Matches(keyMsg, ui.Keys.Right):
		if m.col < len(m.board.Schema())-1 {
			m.col++
		}
	case key.Matches(keyMsg, ui.Keys.Left):
		if m.col > 0 {
			m.col--
		}
	case key.Matches(keyMsg, ui.Keys.Sort):
		col := m.FocusedColumn()
		if !m.board.ToggleSort(col) {
			return m, status(fmt.Sprintf("Column %s cannot be sorted", col))
		}
		m.clamp()
		return m, m.changed()
	case key.Matches(keyMsg, ui.Keys.Search):
		if col := m.FocusedColumn(); model.Reserved(col) {
			return m, status(fmt.Sprintf("Column %s cannot be searched", col))
		}
		m.prevSearch = m.board.Query(m.FocusedColumn())
		m.search.SetValue(m.prevSearch)
		m.search.CursorEnd()
		m.searching = true
		return m, m.search.Focus()
	case key.Matches(keyMsg, ui.Keys.ClearColumn):
		m.board.ClearQuery(m.FocusedColumn())
		m.clamp()
		return m, m.changed()
	default:
		return m, nil
	}
	m.clamp()
	return m, nil
}

// updateSearch applies the search text on every keystroke so the grid and
// the share link follow the user's typing.
func (m Model) updateSearch(msg tea.KeyMsg) (Model, tea.Cmd) {
	col := m.FocusedColumn()
	switch msg.String() {
	case "enter":
		m.searching = false
		m.search.Blur()
		return m, nil
	case "esc":
		m.searching = false
		m.search.Blur()
		_ = m.board.SetQuery(col, m.prevSearch)
		m.clamp()
		return m, m.changed()
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() == before {
		return m, cmd
	}
	_ = m.board.SetQuery(col, m.search.Value())
	m.row = 0
	m.clamp()
	return m, tea.Batch(cmd, m.changed())
}

func status(text string) tea.Cmd {
	return func() tea.Msg { return ui.StatusMsg{Text: text} }
}

// visibleColumns returns the schema indices that fit in the width, always
// including the focused column.
func (m Model) visibleColumns(widths []int) []int {
	schema := m.board.Schema()
	if m.width <= 0 {
		all := make([]int, len(schema))
		for i := range all {
			all[i] = i
		}
		return all
	}

	start := 0
	for {
		used := 1
		var cols []int
		for i := start; i < len(schema); i++ {
			w := widths[i] + 3
			if used+w > m.width && len(cols) > 0 {
				break
			}
			used += w
			cols = append(cols, i)
		}
		if len(cols) == 0 || cols[len(cols)-1] >= m.col || start >= m.col {
			return cols
		}
		start++
	}
}

func (m Model) columnWidths(rows []model.Record) []int {
	schema := m.board.Schema()
	widths := make([]int, len(schema))
	for i, c := range schema {
		widths[i] = lipgloss.Width(headerLabel(c, model.SortState{}, "")) + 2
		for _, r := range rows {
			widths[i] = max(widths[i], lipgloss.Width(r.Get(c.Key).String()))
		}
		widths[i] = min(widths[i], maxCellWidth)
	}
	return widths
}

func headerLabel(c model.Column, sort model.SortState, query string) string {
	label := c.Label()
	if sort.Column == c.Key {
		if sort.Direction == model.Descending {
			label += " ▼"
		} else {
			label += " ▲"
		}
	}
	if query != "" {
		label += " *"
	}
	return label
}

func truncate(s string, w int) string {
	if lipgloss.Width(s) <= w {
		return s
	}
	r := []rune(s)
	if w <= 1 || len(r) <= 1 {
		return string(r[:min(len(r), max(w, 0))])
	}
	return string(r[:w-1]) + "…"
}

func (m Model) View() string {
	if m.board == nil {
		return ui.StyleMuted.Render("  Loading...")
	}

	schema := m.board.Schema()
	visible := m.board.Visible()
	end := min(m.offset+m.pageSize(), len(visible))
	page := make([]model.Record, 0, end-m.offset)
	for _, idx := range visible[m.offset:end] {
		page = append(page, m.board.Dataset().Records[idx])
	}

	widths := m.columnWidths(page)
	cols := m.visibleColumns(widths)
	sort := m.board.Sort()
	errs := m.board.PatternErrors()

	headers := make([]string, len(cols))
	for i, ci := range cols {
		c := schema[ci]
		headers[i] = truncate(headerLabel(c, sort, m.board.Query(c.Key)), widths[ci])
	}
	rows := make([][]string, len(page))
	for r, rec := range page {
		row := make([]string, len(cols))
		for i, ci := range cols {
			row[i] = truncate(rec.Get(schema[ci].Key).String(), widths[ci])
		}
		rows[r] = row
	}

	cursor := m.row - m.offset
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ui.ColorBorder)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			colKey := schema[cols[col]].Key
			if row == table.HeaderRow {
				s = s.Bold(true).Foreground(ui.ColorPrimary)
				if _, bad := errs[colKey]; bad {
					s = s.Foreground(ui.ColorFailure)
				}
				if cols[col] == m.col {
					s = s.Underline(true)
				}
				return s
			}
			if ui.IsStatusColumn(colKey) && row < len(rows) {
				s = s.Inherit(ui.StatusStyle(strings.TrimSpace(rows[row][col])))
			}
			if row == cursor {
				s = s.Background(ui.ColorHighlight).Bold(true)
			}
			return s
		})

	var b strings.Builder
	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(m.footer(len(visible)))
	return b.String()
}

func (m Model) footer(shown int) string {
	col := m.FocusedColumn()
	if m.searching {
		line := fmt.Sprintf(" %s %s", ui.StyleInfo.Render(col), m.search.View())
		if err := m.board.PatternErrors()[col]; err != nil {
			line += "  " + ui.StyleFailure.Render("invalid pattern")
		}
		return line
	}

	info := fmt.Sprintf(" %d of %d", shown, m.board.Total())
	if q := m.board.Query(col); q != "" {
		info += fmt.Sprintf("  %s: %q", col, q)
	}
	if n := len(m.board.Queries()); n > 0 {
		info += fmt.Sprintf("  (%d filters)", n)
	}
	return ui.StyleMuted.Render(info)
}
