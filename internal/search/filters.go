package search

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cms-PdmV/PdmVPages/internal/model"
)

var (
	ErrUnknownColumn  = errors.New("unknown column")
	ErrReservedColumn = errors.New("column name is reserved for sorting and cannot be searched")
)

type columnFilter struct {
	matcher Matcher
	err     error
}

// Filters holds the active search of every column of one table. A record
// passes when it satisfies every active column.
type Filters struct {
	schema  model.Schema
	opts    Options
	queries map[string]string
	active  map[string]columnFilter
}

func NewFilters(schema model.Schema, opts Options) *Filters {
	return &Filters{
		schema:  schema,
		opts:    opts,
		queries: make(map[string]string),
		active:  make(map[string]columnFilter),
	}
}

func (f *Filters) Schema() model.Schema { return f.schema }

// SetQuery replaces the search text of a column. Blank text clears the
// column. A pattern that fails to compile is kept, but the column then
// matches no record; the compile error is available from Err. Columns named
// like a sort parameter are rejected with ErrReservedColumn.
func (f *Filters) SetQuery(column, raw string) error {
	if !f.schema.Has(column) {
		return fmt.Errorf("%w: %s", ErrUnknownColumn, column)
	}
	if model.Reserved(column) {
		return fmt.Errorf("%w: %s", ErrReservedColumn, column)
	}
	if strings.TrimSpace(raw) == "" {
		f.ClearQuery(column)
		return nil
	}
	if prev, ok := f.queries[column]; ok && prev == raw {
		return nil
	}

	m, err := Compile(raw, f.opts)
	f.queries[column] = raw
	f.active[column] = columnFilter{matcher: m, err: err}
	return nil
}

func (f *Filters) ClearQuery(column string) {
	delete(f.queries, column)
	delete(f.active, column)
}

func (f *Filters) Reset() {
	f.queries = make(map[string]string)
	f.active = make(map[string]columnFilter)
}

// Query returns the raw search text of a column and whether it is active.
func (f *Filters) Query(column string) (string, bool) {
	raw, ok := f.queries[column]
	return raw, ok
}

// Queries returns the active column queries in schema order.
func (f *Filters) Queries() []model.ColumnQuery {
	var out []model.ColumnQuery
	for _, c := range f.schema {
		if raw, ok := f.queries[c.Key]; ok {
			out = append(out, model.ColumnQuery{Column: c.Key, Raw: raw})
		}
	}
	return out
}

// Err returns the pattern error of a column, if its query did not compile.
func (f *Filters) Err(column string) error {
	return f.active[column].err
}

// Errors returns every column whose query did not compile, keyed by column.
func (f *Filters) Errors() map[string]error {
	out := make(map[string]error)
	for col, cf := range f.active {
		if cf.err != nil {
			out[col] = cf.err
		}
	}
	return out
}

func (f *Filters) Active() int { return len(f.queries) }

// Matches reports whether rec satisfies every active column query.
func (f *Filters) Matches(rec model.Record) bool {
	for col, cf := range f.active {
		if cf.err != nil {
			return false
		}
		if !cf.matcher.Match(rec.Get(col)) {
			return false
		}
	}
	return true
}
