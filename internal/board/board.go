// Package board drives one dashboard table: it owns the column filters and
// the sort, keeps the visible rows up to date, and mirrors every change into
// the dashboard's Address so the current view can always be shared.
package board

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/cms-PdmV/PdmVPages/internal/logging"
	"github.com/cms-PdmV/PdmVPages/internal/model"
	"github.com/cms-PdmV/PdmVPages/internal/search"
	"github.com/cms-PdmV/PdmVPages/internal/share"
	"github.com/cms-PdmV/PdmVPages/internal/sorting"
	"github.com/cms-PdmV/PdmVPages/internal/view"
)

type Options struct {
	Search search.Options
	// DefaultSort applies when the address carries no sort. It is not
	// written to share links until the user changes the sort.
	DefaultSort model.SortState
	// BaseURL is the public location of the dashboard, used for share links.
	BaseURL string
	Logger  *slog.Logger
}

// Board is one dashboard instance. It is not safe for concurrent use; all
// calls are expected from a single event loop.
type Board struct {
	name    string
	data    *model.Dataset
	filters *search.Filters
	sorter  *sorting.Controller
	addr    share.Address
	opts    Options
	logger  *slog.Logger

	visible []int
	issues  []share.Issue
	// defaultSort is set while the sort is the dashboard default rather
	// than one chosen by the user or a link. It is left out of the address.
	defaultSort bool
}

// New builds a board over data and restores its state from addr.
func New(data *model.Dataset, addr share.Address, opts Options) *Board {
	if addr == nil {
		addr = share.NewMemoryAddress("")
	}
	b := &Board{
		name:   data.Name,
		addr:   addr,
		opts:   opts,
		logger: logging.Default(opts.Logger).With("dashboard", data.Name),
	}
	b.bind(data)
	return b
}

// bind attaches data and rebuilds the filter and sort state from the
// address, which is the only place the view state survives.
func (b *Board) bind(data *model.Dataset) {
	b.data = data
	b.filters = search.NewFilters(data.Schema, b.opts.Search)
	b.sorter = sorting.NewController(data.Schema)

	b.issues = share.Decode(b.addr.Query(), b.filters, b.sorter)
	for _, is := range b.issues {
		b.logger.Warn("ignoring share parameter", "issue", is.String())
	}
	b.defaultSort = false
	if !b.sorter.State().Active() && b.opts.DefaultSort.Active() {
		b.defaultSort = b.sorter.Set(b.opts.DefaultSort.Column, b.opts.DefaultSort.Direction)
	}
	b.recompute()
}

// Replace swaps in freshly loaded data, keeping filters and sort.
func (b *Board) Replace(data *model.Dataset) {
	b.bind(data)
	b.logger.Info("dashboard reloaded", "records", len(data.Records), "visible", len(b.visible))
}

// Restore replaces the whole state with the one encoded in query, as when
// the user opens a shared link.
func (b *Board) Restore(query string) []share.Issue {
	b.addr.SetQuery(share.StripBase(query, b.opts.BaseURL))
	b.bind(b.data)
	b.sync()
	return b.issues
}

func (b *Board) recompute() {
	b.visible = view.Recompute(b.data.Records, b.filters, b.sorter)
}

func (b *Board) sync() {
	sorter := b.sorter
	if b.defaultSort {
		sorter = nil
	}
	b.addr.SetQuery(share.Encode(b.filters, sorter))
}

// changed runs after every mutation: the view and the address are updated
// before control returns to the caller.
func (b *Board) changed() {
	b.recompute()
	b.sync()
}

// SetQuery sets the search text of column. Blank text clears it.
func (b *Board) SetQuery(column, raw string) error {
	if err := b.filters.SetQuery(column, raw); err != nil {
		if !errors.Is(err, search.ErrUnknownColumn) {
			return err
		}
		if s := b.SuggestColumns(column); len(s) > 0 {
			return fmt.Errorf("%w (did you mean %s?)", err, strings.Join(s, ", "))
		}
		return err
	}
	if err := b.filters.Err(column); err != nil {
		b.logger.Debug("search pattern does not compile", "column", column, "error", err)
	}
	b.changed()
	return nil
}

func (b *Board) ClearQuery(column string) {
	b.filters.ClearQuery(column)
	b.changed()
}

// ClearFilters drops every column query and keeps the sort.
func (b *Board) ClearFilters() {
	b.filters.Reset()
	b.changed()
}

// ToggleSort toggles the sort on column. It reports false for columns that
// cannot be sorted.
func (b *Board) ToggleSort(column string) bool {
	if !b.sorter.Toggle(column) {
		return false
	}
	b.defaultSort = false
	b.changed()
	return true
}

func (b *Board) SetSort(column string, dir model.Direction) bool {
	if !b.sorter.Set(column, dir) {
		return false
	}
	b.defaultSort = false
	b.changed()
	return true
}

// SuggestColumns returns column keys that fuzzily resemble input, best first.
func (b *Board) SuggestColumns(input string) []string {
	if input == "" {
		return nil
	}
	matches := fuzzy.Find(input, b.data.Schema.Keys())
	var out []string
	for i, m := range matches {
		if i == 3 {
			break
		}
		out = append(out, m.Str)
	}
	return out
}

func (b *Board) Name() string { return b.name }

func (b *Board) Dataset() *model.Dataset { return b.data }

func (b *Board) Schema() model.Schema { return b.data.Schema }

// Visible returns the indices of the visible records, in display order.
func (b *Board) Visible() []int { return b.visible }

// Rows returns the visible records in display order.
func (b *Board) Rows() []model.Record {
	return view.Project(b.data.Records, b.visible)
}

func (b *Board) Total() int { return len(b.data.Records) }

func (b *Board) Query(column string) string {
	raw, _ := b.filters.Query(column)
	return raw
}

func (b *Board) Queries() []model.ColumnQuery { return b.filters.Queries() }

// PatternErrors returns the columns whose search text is not a valid pattern.
func (b *Board) PatternErrors() map[string]error { return b.filters.Errors() }

func (b *Board) Sort() model.SortState { return b.sorter.State() }

// Issues returns the share parameters ignored by the last restore.
func (b *Board) Issues() []share.Issue { return b.issues }

// ShareQuery is the encoded state, as held by the address.
func (b *Board) ShareQuery() string { return b.addr.Query() }

// ShareURL is the link that reproduces the current view.
func (b *Board) ShareURL() string {
	return share.URL(b.opts.BaseURL, b.addr.Query())
}
