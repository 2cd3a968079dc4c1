// Package share serializes the filters and sort of a table into URL query
// parameters and restores them, so a view can be bookmarked and shared.
//
// Format: one parameter per filtered column, in schema order, holding the
// raw search text, then sort=<column>&dir=ascending|descending when a sort
// is active.
package share

import (
	"fmt"
	"net/url"
	"slices"
	"sort"
	"strings"

	"github.com/cms-PdmV/PdmVPages/internal/model"
	"github.com/cms-PdmV/PdmVPages/internal/search"
	"github.com/cms-PdmV/PdmVPages/internal/sorting"
)

const (
	ParamSort = model.ParamSort
	ParamDir  = model.ParamDir
)

// Reserved reports whether key cannot be used as a column parameter.
func Reserved(key string) bool { return model.Reserved(key) }

// Issue describes a query parameter that Decode ignored.
type Issue struct {
	Param  string
	Value  string
	Reason string
}

func (i Issue) String() string {
	if i.Param == "" {
		return i.Reason
	}
	return fmt.Sprintf("%s=%q: %s", i.Param, i.Value, i.Reason)
}

// Encode returns the query string (without leading ?) for the current state.
func Encode(filters *search.Filters, sorter *sorting.Controller) string {
	var b strings.Builder
	add := func(k, v string) {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(v))
	}

	if filters != nil {
		for _, q := range filters.Queries() {
			if Reserved(q.Column) {
				continue
			}
			add(q.Column, q.Raw)
		}
	}
	if sorter != nil {
		if st := sorter.State(); st.Active() {
			add(ParamSort, st.Column)
			add(ParamDir, string(st.Direction))
		}
	}
	return b.String()
}

// Decode resets filters and sorter and seeds them from query. query may be
// a bare query string, one with a leading ?, or a full URL. Parameters that
// cannot be applied are skipped and returned as issues; Decode never fails.
func Decode(query string, filters *search.Filters, sorter *sorting.Controller) []Issue {
	filters.Reset()
	sorter.Clear()

	var issues []Issue
	values, err := url.ParseQuery(rawQuery(query))
	if err != nil {
		// ParseQuery keeps every pair it could parse.
		issues = append(issues, Issue{Reason: fmt.Sprintf("malformed query: %v", err)})
	}

	schema := filters.Schema()
	var unknown []string
	for key := range values {
		if !Reserved(key) && !schema.Has(key) {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		issues = append(issues, Issue{Param: key, Value: first(values[key]), Reason: "unknown column"})
	}

	for _, col := range schema {
		if Reserved(col.Key) {
			continue
		}
		vals, ok := values[col.Key]
		if !ok {
			continue
		}
		if err := filters.SetQuery(col.Key, first(vals)); err != nil {
			issues = append(issues, Issue{Param: col.Key, Value: first(vals), Reason: err.Error()})
		}
	}

	if vals, ok := values[ParamSort]; ok {
		column := first(vals)
		dir := model.Ascending
		if raw, ok := values[ParamDir]; ok {
			if d, ok := model.ParseDirection(first(raw)); ok {
				dir = d
			} else {
				issues = append(issues, Issue{Param: ParamDir, Value: first(raw), Reason: "invalid direction"})
			}
		}
		if column != "" && !sorter.Set(column, dir) {
			issues = append(issues, Issue{Param: ParamSort, Value: column, Reason: "column is not sortable"})
		}
	} else if raw, ok := values[ParamDir]; ok {
		issues = append(issues, Issue{Param: ParamDir, Value: first(raw), Reason: "direction without sort column"})
	}
	return issues
}

func first(vals []string) string {
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}

// rawQuery extracts the query part of s.
func rawQuery(s string) string {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "://") {
		if u, err := url.Parse(s); err == nil {
			return u.RawQuery
		}
	}
	if i := strings.IndexByte(s, '#'); i >= 0 {
		s = s[:i]
	}
	if i := strings.IndexByte(s, '?'); i >= 0 {
		s = s[i+1:]
	}
	return s
}

// StripBase removes from query the parameters that belong to the base URL
// itself, so a link built by URL decodes back to the same state. A pair is
// dropped only when both its key and value appear in the base query.
func StripBase(query, base string) string {
	u, err := url.Parse(base)
	if err != nil || u.RawQuery == "" {
		return query
	}
	own, err := url.ParseQuery(u.RawQuery)
	if err != nil {
		return query
	}

	var kept []string
	for _, pair := range strings.Split(rawQuery(query), "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		key, kerr := url.QueryUnescape(k)
		val, verr := url.QueryUnescape(v)
		if kerr == nil && verr == nil && slices.Contains(own[key], val) {
			continue
		}
		kept = append(kept, pair)
	}
	return strings.Join(kept, "&")
}

// URL joins a dashboard base URL and an encoded query.
func URL(base, query string) string {
	if query == "" {
		return base
	}
	if strings.Contains(base, "?") {
		return base + "&" + query
	}
	return base + "?" + query
}
