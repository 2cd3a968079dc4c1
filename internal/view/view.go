// Package view computes the visible rows of a table from its records, its
// column filters and its sort.
package view

import (
	"sort"

	"github.com/cms-PdmV/PdmVPages/internal/model"
)

// Filter selects records. *search.Filters implements it.
type Filter interface {
	Matches(rec model.Record) bool
}

// Sorter orders records. *sorting.Controller implements it.
type Sorter interface {
	Compare(a, b model.Record) int
}

// Recompute returns the indices of the records that pass filter, ordered by
// sorter. Equal records keep their input order. A nil filter keeps every
// record and a nil sorter keeps the input order.
func Recompute(records []model.Record, filter Filter, sorter Sorter) []int {
	idx := make([]int, 0, len(records))
	for i, rec := range records {
		if filter == nil || filter.Matches(rec) {
			idx = append(idx, i)
		}
	}
	if sorter != nil {
		sort.SliceStable(idx, func(i, j int) bool {
			return sorter.Compare(records[idx[i]], records[idx[j]]) < 0
		})
	}
	return idx
}

// Project returns the records at idx, in order.
func Project(records []model.Record, idx []int) []model.Record {
	out := make([]model.Record, len(idx))
	for i, n := range idx {
		out[i] = records[n]
	}
	return out
}
