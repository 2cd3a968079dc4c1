package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/cms-PdmV/PdmVPages/internal/board"
	"github.com/cms-PdmV/PdmVPages/internal/config"
	"github.com/cms-PdmV/PdmVPages/internal/logging"
	"github.com/cms-PdmV/PdmVPages/internal/search"
	"github.com/cms-PdmV/PdmVPages/internal/share"
	"github.com/cms-PdmV/PdmVPages/internal/source"
	"github.com/cms-PdmV/PdmVPages/internal/tui/confirm"
	"github.com/cms-PdmV/PdmVPages/internal/tui/filteroverlay"
	"github.com/cms-PdmV/PdmVPages/internal/tui/infoview"
	"github.com/cms-PdmV/PdmVPages/internal/tui/tableview"
	"github.com/cms-PdmV/PdmVPages/internal/ui"
)

const loadTimeout = 90 * time.Second

// chromeLines is header + tabs + address bar + status bar.
const chromeLines = 4

// Options wires the side effects of the app. Nil functions disable the
// matching action.
type Options struct {
	// Initial is the dashboard shown first; Query seeds its view state and
	// may be a bare query or a full share link.
	Initial string
	Query   string

	Watcher   *source.Watcher
	Clipboard func(text string) error
	Browse    func(url string) error
	Logger    *slog.Logger
}

// tab is one dashboard. Tabs are shared by pointer between App copies.
type tab struct {
	dash    config.Dashboard
	addr    *share.MemoryAddress
	board   *board.Board
	view    tableview.Model
	loading bool
	err     error
	// pending is a share query to restore once the data arrives.
	pending string
}

type App struct {
	cfg    *config.Config
	loader *source.Loader
	opts   Options
	logger *slog.Logger

	tabs   []*tab
	active int

	filterOverlay filteroverlay.Model
	confirmDialog confirm.Model
	infoView      infoview.Model
	showInfo      bool

	width    int
	height   int
	status   string
	showHelp bool
}

func NewApp(cfg *config.Config, loader *source.Loader, opts Options) App {
	a := App{
		cfg:      cfg,
		loader:   loader,
		opts:     opts,
		logger:   logging.Default(opts.Logger),
		status:   "Loading dashboards...",
		infoView: infoview.New(),
	}
	for i, d := range cfg.Dashboards {
		t := &tab{
			dash:    d,
			addr:    share.NewMemoryAddress(""),
			view:    tableview.New(),
			loading: true,
		}
		if d.Name == opts.Initial {
			a.active = i
			t.pending = opts.Query
		}
		a.tabs = append(a.tabs, t)
	}
	return a
}

func (a App) Init() tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(a.tabs)+1)
	for i := range a.tabs {
		cmds = append(cmds, a.loadDashboard(i, false))
	}
	if a.opts.Watcher != nil && a.opts.Watcher.Watching() {
		cmds = append(cmds, waitForChange(a.opts.Watcher.Changes()))
	}
	return tea.Batch(cmds...)
}

func (a App) loadDashboard(i int, reload bool) tea.Cmd {
	d := a.tabs[i].dash
	loader := a.loader
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		load := loader.Load
		if reload {
			load = loader.Reload
		}
		data, err := load(ctx, d)
		return ui.DatasetLoadedMsg{Dashboard: d.Name, Data: data, Reload: reload, Err: err}
	}
}

func waitForChange(ch <-chan string) tea.Cmd {
	return func() tea.Msg {
		name, ok := <-ch
		if !ok {
			return nil
		}
		return ui.SourceChangedMsg{Dashboard: name}
	}
}

func (a App) copyLink(link string) tea.Cmd {
	fn := a.opts.Clipboard
	return func() tea.Msg {
		if fn == nil {
			return ui.ActionResultMsg{Action: "copy", Err: fmt.Errorf("clipboard not available")}
		}
		if err := fn(link); err != nil {
			return ui.ActionResultMsg{Action: "copy", Err: err}
		}
		return ui.ActionResultMsg{Action: "copy", Success: true}
	}
}

func (a App) openLink(link string) tea.Cmd {
	fn := a.opts.Browse
	return func() tea.Msg {
		if fn == nil {
			return ui.ActionResultMsg{Action: "open", Err: fmt.Errorf("no browser configured")}
		}
		if err := fn(link); err != nil {
			return ui.ActionResultMsg{Action: "open", Err: err}
		}
		return ui.ActionResultMsg{Action: "open", Success: true}
	}
}

func (a App) tabIndex(name string) int {
	for i, t := range a.tabs {
		if t.dash.Name == name {
			return i
		}
	}
	return -1
}

func (a App) current() *tab {
	if len(a.tabs) == 0 {
		return nil
	}
	return a.tabs[a.active]
}

func (a App) boardOptions(d config.Dashboard) board.Options {
	return board.Options{
		Search:      search.Options{CaseSensitive: a.cfg.CaseSensitive},
		DefaultSort: d.Sort(),
		BaseURL:     d.BaseURL,
		Logger:      a.logger,
	}
}

// --- Update ---

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.propagateSize()
		return &a, nil

	case ui.DatasetLoadedMsg:
		a.applyLoaded(msg)
		return &a, nil

	case ui.SourceChangedMsg:
		if i := a.tabIndex(msg.Dashboard); i >= 0 {
			a.status = fmt.Sprintf("%s changed on disk, reloading...", a.tabs[i].dash.Label())
			cmds = append(cmds, a.loadDashboard(i, true))
		}
		if a.opts.Watcher != nil {
			cmds = append(cmds, waitForChange(a.opts.Watcher.Changes()))
		}
		return &a, tea.Batch(cmds...)

	case ui.ActionResultMsg:
		switch {
		case msg.Err != nil:
			a.status = fmt.Sprintf("%s failed: %v", msg.Action, msg.Err)
		case msg.Action == "copy":
			a.status = "Link copied to clipboard"
		case msg.Action == "open":
			a.status = "Link opened in browser"
		}
		return &a, nil

	case ui.ViewChangedMsg:
		if t := a.current(); t != nil && t.board != nil && t.dash.Name == msg.Dashboard {
			a.status = a.rowsStatus(t)
		}
		return &a, nil

	case ui.StatusMsg:
		a.status = msg.Text
		return &a, nil

	case confirm.ResultMsg:
		if msg.Confirmed && msg.Action == "clear-all" {
			if i := a.tabIndex(msg.Dashboard); i >= 0 && a.tabs[i].board != nil {
				t := a.tabs[i]
				t.board.ClearFilters()
				t.view.SetBoard(t.board)
				a.status = "Cleared all column searches"
			}
		}
		return &a, nil

	case filteroverlay.ResultMsg:
		if msg.Applied {
			a.applyOverlay(msg)
		}
		return &a, nil
	}

	if a.confirmDialog.IsActive() {
		var cmd tea.Cmd
		a.confirmDialog, cmd = a.confirmDialog.Update(msg)
		return &a, cmd
	}
	if a.filterOverlay.IsActive() {
		var cmd tea.Cmd
		a.filterOverlay, cmd = a.filterOverlay.Update(msg)
		return &a, cmd
	}

	t := a.current()
	keyMsg, isKey := msg.(tea.KeyMsg)
	if !isKey {
		if t != nil {
			var cmd tea.Cmd
			t.view, cmd = t.view.Update(msg)
			return &a, cmd
		}
		return &a, nil
	}

	if a.showHelp {
		a.showHelp = false
		return &a, nil
	}

	if a.showInfo {
		if key.Matches(keyMsg, ui.Keys.Back) || key.Matches(keyMsg, ui.Keys.Info) || key.Matches(keyMsg, ui.Keys.Quit) {
			a.showInfo = false
			return &a, nil
		}
		var cmd tea.Cmd
		a.infoView, cmd = a.infoView.Update(keyMsg)
		return &a, cmd
	}

	// The inline column search owns the keyboard while it is open.
	if t != nil && t.view.IsSearching() {
		var cmd tea.Cmd
		t.view, cmd = t.view.Update(keyMsg)
		return &a, cmd
	}

	switch {
	case key.Matches(keyMsg, ui.Keys.Quit):
		return &a, tea.Quit
	case key.Matches(keyMsg, ui.Keys.Help):
		a.showHelp = true
		return &a, nil
	case key.Matches(keyMsg, ui.Keys.NextTab):
		a.switchTab(a.active + 1)
		return &a, nil
	case key.Matches(keyMsg, ui.Keys.PrevTab):
		a.switchTab(a.active - 1 + len(a.tabs))
		return &a, nil
	}

	if s := keyMsg.String(); len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
		if i := int(s[0] - '1'); i < len(a.tabs) {
			a.switchTab(i)
		}
		return &a, nil
	}

	if t == nil {
		return &a, nil
	}

	if key.Matches(keyMsg, ui.Keys.Refresh) {
		t.loading = true
		a.status = fmt.Sprintf("Reloading %s...", t.dash.Label())
		return &a, a.loadDashboard(a.active, true)
	}

	if t.board == nil {
		return &a, nil
	}

	switch {
	case key.Matches(keyMsg, ui.Keys.Filter):
		current := make(map[string]string)
		for _, q := range t.board.Queries() {
			current[q.Column] = q.Raw
		}
		a.filterOverlay = filteroverlay.New(t.board.Schema(), t.board.ShareQuery(), current)
		a.filterOverlay.SetSize(a.width, a.height-chromeLines)
		return &a, a.filterOverlay.Init()
	case key.Matches(keyMsg, ui.Keys.ClearAll):
		if len(t.board.Queries()) == 0 {
			a.status = "No column searches to clear"
			return &a, nil
		}
		a.confirmDialog = confirm.New("Clear searches",
			fmt.Sprintf("Clear all %d column searches of %s?", len(t.board.Queries()), t.dash.Label()),
			"clear-all", t.dash.Name)
		return &a, nil
	case key.Matches(keyMsg, ui.Keys.Copy):
		return &a, a.copyLink(t.board.ShareURL())
	case key.Matches(keyMsg, ui.Keys.Open):
		a.status = "Opening link..."
		return &a, a.openLink(t.board.ShareURL())
	case key.Matches(keyMsg, ui.Keys.Info):
		rec, ok := t.view.Selected()
		if !ok {
			a.status = "No row selected"
			return &a, nil
		}
		a.infoView.SetRecord(t.board.Schema(), rec)
		a.showInfo = true
		return &a, nil
	}

	var cmd tea.Cmd
	t.view, cmd = t.view.Update(keyMsg)
	return &a, cmd
}

func (a *App) applyLoaded(msg ui.DatasetLoadedMsg) {
	i := a.tabIndex(msg.Dashboard)
	if i < 0 {
		return
	}
	t := a.tabs[i]
	t.loading = false

	if msg.Err != nil {
		t.err = msg.Err
		a.logger.Error("loading dashboard failed", "dashboard", msg.Dashboard, "error", msg.Err)
		if i == a.active {
			a.status = fmt.Sprintf("Error: %v", msg.Err)
		}
		return
	}
	t.err = nil

	if t.board == nil {
		t.board = board.New(msg.Data, t.addr, a.boardOptions(t.dash))
	} else {
		t.board.Replace(msg.Data)
	}
	issues := t.board.Issues()
	if t.pending != "" {
		issues = t.board.Restore(t.pending)
		t.pending = ""
	}
	t.view.SetBoard(t.board)

	if i != a.active {
		return
	}
	a.status = a.rowsStatus(t)
	if len(issues) > 0 {
		a.status = fmt.Sprintf("Ignored %d link parameter(s): %s", len(issues), issues[0])
	}
}

func (a *App) applyOverlay(msg filteroverlay.ResultMsg) {
	t := a.current()
	if t == nil || t.board == nil {
		return
	}
	if msg.LinkChanged {
		issues := t.board.Restore(msg.Link)
		t.view.SetBoard(t.board)
		a.status = a.rowsStatus(t)
		if len(issues) > 0 {
			a.status = fmt.Sprintf("Ignored %d link parameter(s): %s", len(issues), issues[0])
		}
		return
	}

	var failed []string
	for _, q := range msg.Queries {
		if err := t.board.SetQuery(q.Column, q.Raw); err != nil {
			failed = append(failed, err.Error())
		}
	}
	t.view.SetBoard(t.board)
	a.status = a.rowsStatus(t)
	if len(failed) > 0 {
		a.status = strings.Join(failed, "; ")
	}
}

func (a *App) switchTab(i int) {
	if len(a.tabs) == 0 {
		return
	}
	a.active = i % len(a.tabs)
	t := a.tabs[a.active]
	switch {
	case t.loading:
		a.status = fmt.Sprintf("Loading %s...", t.dash.Label())
	case t.err != nil:
		a.status = fmt.Sprintf("Error: %v", t.err)
	default:
		a.status = a.rowsStatus(t)
	}
}

func (a App) rowsStatus(t *tab) string {
	if t.board == nil {
		return ""
	}
	s := fmt.Sprintf("%d of %d rows", len(t.board.Visible()), t.board.Total())
	if n := len(t.board.PatternErrors()); n > 0 {
		s += fmt.Sprintf(", %d invalid pattern(s)", n)
	}
	return s
}

func (a *App) propagateSize() {
	h := max(a.height-chromeLines, 1)
	for _, t := range a.tabs {
		t.view.SetSize(a.width, h)
	}
	a.filterOverlay.SetSize(a.width, h)
	a.infoView.SetSize(a.width, h)
}

// --- View ---

func (a App) View() string {
	t := a.current()

	var header, link string
	names := make([]string, len(a.tabs))
	for i, tb := range a.tabs {
		names[i] = tb.dash.Label()
	}
	tabs := RenderTabs(names, a.active, a.width)

	var content string
	switch {
	case t == nil:
		header = RenderHeader("", time.Time{}, false, a.width)
		content = ui.StyleMuted.Render("  No dashboards configured")
	default:
		var updated time.Time
		stale := false
		if t.board != nil {
			updated = t.board.Dataset().UpdatedAt
			stale = t.board.Dataset().Stale
			link = t.board.ShareURL()
		}
		header = RenderHeader(t.dash.Label(), updated, stale, a.width)
		switch {
		case t.err != nil && t.board == nil:
			content = ui.StyleFailure.Render(fmt.Sprintf("  Could not load %s: %v", t.dash.Label(), t.err))
		case t.board == nil:
			content = ui.StyleMuted.Render("  Loading...")
		default:
			content = t.view.View()
		}
	}

	if a.showHelp {
		content = a.renderHelp()
	} else if a.showInfo {
		content = a.infoView.View()
	} else if a.confirmDialog.IsActive() {
		content = a.confirmDialog.View()
	} else if a.filterOverlay.IsActive() {
		content = a.filterOverlay.View()
	}

	maxContentLines := a.height - chromeLines
	if maxContentLines > 0 {
		lines := strings.Split(content, "\n")
		if len(lines) > maxContentLines {
			content = strings.Join(lines[:maxContentLines], "\n")
		}
	}

	return header + "\n" + tabs + "\n" + content + "\n" +
		RenderAddressBar(link, a.width) + "\n" +
		RenderStatusBar(a.status, a.contextHints(), a.width)
}

func (a App) contextHints() string {
	t := a.current()
	switch {
	case a.confirmDialog.IsActive():
		return "y: yes  n: no"
	case a.filterOverlay.IsActive():
		return "enter: apply  esc: cancel"
	case t != nil && t.view.IsSearching():
		return "enter: keep  esc: revert"
	case a.showInfo:
		return "esc: back"
	}
	return "/: search  s: sort  f: filters  y: copy  ?: help  q: quit"
}

func (a App) renderHelp() string {
	contentH := max(a.height-chromeLines-2, 1)

	bold := lipgloss.NewStyle().Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(ui.ColorPrimary).Bold(true).Width(14)
	desc := lipgloss.NewStyle().Foreground(lipgloss.Color("#D1D5DB"))

	row := func(k, d string) string {
		return "  " + keyStyle.Render(k) + desc.Render(d) + "\n"
	}

	var b strings.Builder
	b.WriteString("\n" + bold.Render("  Navigation") + "\n\n")
	b.WriteString(row("1-9", "Switch dashboard"))
	b.WriteString(row("tab / S-tab", "Next / previous dashboard"))
	b.WriteString(row("j / k", "Move down / up"))
	b.WriteString(row("h / l", "Previous / next column"))
	b.WriteString(row("g / G", "Go to top / bottom"))
	b.WriteString(row("PgUp/PgDn", "Page up / page down"))
	b.WriteString(row("i", "Show every field of the row"))
	b.WriteString(row("r", "Reload data"))
	b.WriteString(row("q", "Quit"))

	b.WriteString("\n" + bold.Render("  Search & Sort") + "\n\n")
	b.WriteString(row("/", "Search the focused column"))
	b.WriteString(row("c", "Clear the focused column"))
	b.WriteString(row("f", "Edit all column searches or paste a link"))
	b.WriteString(row("x", "Clear all column searches"))
	b.WriteString(row("enter / s", "Sort by column, again to reverse"))

	b.WriteString("\n" + bold.Render("  Sharing") + "\n\n")
	b.WriteString(row("y", "Copy link to this view"))
	b.WriteString(row("o", "Open link in browser"))

	b.WriteString("\n" + bold.Render("  Search syntax") + "\n\n")
	b.WriteString(row("abc", "Contains a match for the regular expression abc"))
	b.WriteString(row("a b, a*b", "a, then anything, then b"))
	b.WriteString(row("-abc, !abc", "Does not match abc"))
	b.WriteString(row("-*", "Empty values only"))

	b.WriteString("\n" + lipgloss.NewStyle().Foreground(ui.ColorMuted).Render("  Press any key to close") + "\n")

	style := ui.StylePaneFocused.Width(max(a.width-2, 1)).Height(contentH)
	return style.Render(b.String())
}
