package tui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cms-PdmV/PdmVPages/internal/config"
	"github.com/cms-PdmV/PdmVPages/internal/logging"
	"github.com/cms-PdmV/PdmVPages/internal/source"
	"github.com/cms-PdmV/PdmVPages/internal/tui/confirm"
	"github.com/cms-PdmV/PdmVPages/internal/tui/filteroverlay"
	"github.com/cms-PdmV/PdmVPages/internal/ui"
)

const testData = `[
	{"dataset": "/ZeroBias/Run2022C/RAW", "status": "done", "events": 120},
	{"dataset": "/JetHT/Run2022D/RAW", "status": "submitted", "events": 7},
	{"dataset": "/JetHT/Run2023B/RAW", "status": "new", "events": 50}
]`

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func writeData(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.json")
	if err := os.WriteFile(path, []byte(testData), 0o644); err != nil {
		t.Fatalf("writing data: %v", err)
	}
	return path
}

func testConfig(t *testing.T) *config.Config {
	path := writeData(t)
	return &config.Config{Dashboards: []config.Dashboard{
		{Name: "rereco_ul", Source: path, BaseURL: "https://example.cern.ch/rereco_ul/"},
		{Name: "main_bkg_ul", Source: path},
	}}
}

// loaded builds an app and feeds it the load results of every dashboard.
func loaded(t *testing.T, opts Options) App {
	t.Helper()
	app := NewApp(testConfig(t), source.NewLoader(nil, nil, logging.Discard()), opts)

	m, _ := app.Update(tea.WindowSizeMsg{Width: 140, Height: 30})
	app = *m.(*App)
	for i := range app.tabs {
		msg := app.loadDashboard(i, false)()
		m, _ = app.Update(msg)
		app = *m.(*App)
	}
	return app
}

func press(app App, msgs ...tea.Msg) (App, tea.Cmd) {
	var cmd tea.Cmd
	for _, msg := range msgs {
		var m tea.Model
		m, cmd = app.Update(msg)
		app = *m.(*App)
	}
	return app, cmd
}

func TestAppLoadsDashboards(t *testing.T) {
	app := loaded(t, Options{})

	for _, tb := range app.tabs {
		if tb.board == nil || tb.board.Total() != 3 {
			t.Fatalf("%s not loaded", tb.dash.Name)
		}
	}
	if app.status != "3 of 3 rows" {
		t.Errorf("status = %q", app.status)
	}
	out := app.View()
	if !strings.Contains(out, "/ZeroBias/Run2022C/RAW") {
		t.Error("view should show the records")
	}
	if !strings.Contains(out, "https://example.cern.ch/rereco_ul/") {
		t.Error("address bar should show the share link")
	}
}

func TestAppInitialQueryIsRestored(t *testing.T) {
	app := loaded(t, Options{
		Initial: "main_bkg_ul",
		Query:   "https://example.cern.ch/main_bkg_ul/?dataset=JetHT&sort=events&dir=desc",
	})

	if app.active != 1 {
		t.Fatalf("active = %d, want 1", app.active)
	}
	b := app.current().board
	if got := len(b.Visible()); got != 2 {
		t.Errorf("visible = %d, want 2", got)
	}
	if got := b.ShareQuery(); got != "dataset=JetHT&sort=events&dir=descending" {
		t.Errorf("ShareQuery = %q", got)
	}
	if app.tabs[0].board.ShareQuery() != "" {
		t.Error("other dashboards should start unfiltered")
	}
}

func TestAppTabsKeepTheirOwnState(t *testing.T) {
	app := loaded(t, Options{})

	app, _ = press(app, keyRunes("/"), keyRunes("2"), keyRunes("3"), tea.KeyMsg{Type: tea.KeyEnter})
	if got := app.tabs[0].board.ShareQuery(); got != "dataset=23" {
		t.Fatalf("ShareQuery = %q", got)
	}

	app, _ = press(app, keyRunes("2"))
	if app.active != 1 {
		t.Fatalf("active = %d after pressing 2", app.active)
	}
	if app.current().board.ShareQuery() != "" {
		t.Error("second dashboard picked up the first one's search")
	}

	app, _ = press(app, tea.KeyMsg{Type: tea.KeyTab})
	if app.active != 0 {
		t.Errorf("tab should wrap to the first dashboard, active = %d", app.active)
	}
}

func TestAppCopyLink(t *testing.T) {
	var copied string
	app := loaded(t, Options{Clipboard: func(s string) error {
		copied = s
		return nil
	}})
	_ = app.tabs[0].board.SetQuery("status", "done")

	_, cmd := press(app, keyRunes("y"))
	if cmd == nil {
		t.Fatal("expected copy command")
	}
	msg := cmd().(ui.ActionResultMsg)
	if !msg.Success {
		t.Fatalf("copy failed: %v", msg.Err)
	}
	if copied != "https://example.cern.ch/rereco_ul/?status=done" {
		t.Errorf("copied %q", copied)
	}

	app, _ = press(app, msg)
	if app.status != "Link copied to clipboard" {
		t.Errorf("status = %q", app.status)
	}
}

func TestAppOpenLinkError(t *testing.T) {
	app := loaded(t, Options{Browse: func(string) error { return errors.New("no display") }})
	_, cmd := press(app, keyRunes("o"))
	msg := cmd().(ui.ActionResultMsg)
	app, _ = press(app, msg)
	if !strings.Contains(app.status, "no display") {
		t.Errorf("status = %q", app.status)
	}
}

func TestAppFilterOverlayAppliesQueries(t *testing.T) {
	app := loaded(t, Options{})

	app, _ = press(app, keyRunes("f"))
	if !app.filterOverlay.IsActive() {
		t.Fatal("f should open the filter overlay")
	}
	app, _ = press(app, keyRunes("J"), keyRunes("e"), keyRunes("t"))
	app, cmd := press(app, tea.KeyMsg{Type: tea.KeyEnter})
	if app.filterOverlay.IsActive() {
		t.Fatal("overlay should close on enter")
	}
	app, _ = press(app, cmd().(filteroverlay.ResultMsg))

	if got := app.tabs[0].board.ShareQuery(); got != "dataset=Jet" {
		t.Errorf("ShareQuery = %q", got)
	}
	if app.status != "2 of 3 rows" {
		t.Errorf("status = %q", app.status)
	}
}

func TestAppFilterOverlayRestoresPastedLink(t *testing.T) {
	app := loaded(t, Options{})
	app, _ = press(app, keyRunes("f"), tea.KeyMsg{Type: tea.KeyShiftTab})
	for _, r := range "?status=-done&bogus=1" {
		app, _ = press(app, keyRunes(string(r)))
	}
	app, cmd := press(app, tea.KeyMsg{Type: tea.KeyEnter})
	app, _ = press(app, cmd())

	b := app.tabs[0].board
	if got := b.ShareQuery(); got != "status=-done" {
		t.Errorf("ShareQuery = %q", got)
	}
	if !strings.Contains(app.status, "bogus") {
		t.Errorf("status should report the ignored parameter: %q", app.status)
	}
}

func TestAppClearAllAsksFirst(t *testing.T) {
	app := loaded(t, Options{})
	_ = app.tabs[0].board.SetQuery("dataset", "JetHT")
	_ = app.tabs[0].board.SetQuery("status", "new")

	app, _ = press(app, keyRunes("x"))
	if !app.confirmDialog.IsActive() {
		t.Fatal("x should ask for confirmation")
	}
	app, cmd := press(app, keyRunes("y"))
	app, _ = press(app, cmd().(confirm.ResultMsg))

	if got := app.tabs[0].board.ShareQuery(); got != "" {
		t.Errorf("ShareQuery = %q after clear", got)
	}
	if len(app.tabs[0].board.Visible()) != 3 {
		t.Error("all rows should be visible after clearing")
	}
}

func TestAppLoadError(t *testing.T) {
	cfg := &config.Config{Dashboards: []config.Dashboard{
		{Name: "missing", Source: filepath.Join(t.TempDir(), "nope.json")},
	}}
	app := NewApp(cfg, source.NewLoader(nil, nil, logging.Discard()), Options{})
	app, _ = press(app, tea.WindowSizeMsg{Width: 100, Height: 20}, app.loadDashboard(0, false)())

	if app.tabs[0].err == nil {
		t.Fatal("expected load error")
	}
	if !strings.Contains(app.View(), "Could not load missing") {
		t.Error("view should explain the failure")
	}
}

func TestAppReloadKeepsState(t *testing.T) {
	app := loaded(t, Options{})
	_ = app.tabs[0].board.SetQuery("dataset", "JetHT")

	app, cmd := press(app, keyRunes("r"))
	app, _ = press(app, cmd())

	if got := app.tabs[0].board.ShareQuery(); got != "dataset=JetHT" {
		t.Errorf("ShareQuery after reload = %q", got)
	}
	if len(app.tabs[0].board.Visible()) != 2 {
		t.Error("filter should still apply after reload")
	}
}

func TestAppInfoViewShowsSelectedRow(t *testing.T) {
	app := loaded(t, Options{})

	app, _ = press(app, keyRunes("j"), keyRunes("i"))
	if !app.showInfo {
		t.Fatal("i should open the row details")
	}
	if !strings.Contains(app.View(), "/JetHT/Run2022D/RAW") {
		t.Error("details should show the selected row")
	}

	app, _ = press(app, tea.KeyMsg{Type: tea.KeyEsc})
	if app.showInfo {
		t.Error("esc should close the row details")
	}
}
