// Package sorting keeps the single active sort of a table and orders records
// by it.
package sorting

import (
	"strings"

	"github.com/cms-PdmV/PdmVPages/internal/model"
)

// Controller tracks the requested sort column and direction. Only columns
// declared sortable in its schema can become active.
type Controller struct {
	schema model.Schema
	state  model.SortState
	cmp    compareFunc
}

type compareFunc func(a, b model.Value) int

func NewController(schema model.Schema) *Controller {
	return &Controller{schema: schema}
}

func (c *Controller) Schema() model.Schema { return c.schema }

func (c *Controller) State() model.SortState { return c.state }

// Sortable reports whether column may be used as a sort key.
func (c *Controller) Sortable(column string) bool {
	col, ok := c.schema.Column(column)
	return ok && col.Sortable
}

// Toggle activates column in ascending order, or flips the direction when
// column is already active. It returns false for unknown or non-sortable
// columns and leaves the state untouched.
func (c *Controller) Toggle(column string) bool {
	if c.state.Column == column && c.state.Active() {
		c.state.Direction = c.state.Direction.Flip()
		return true
	}
	return c.Set(column, model.Ascending)
}

// Set makes column the active sort with the given direction.
func (c *Controller) Set(column string, dir model.Direction) bool {
	col, ok := c.schema.Column(column)
	if !ok || !col.Sortable {
		return false
	}
	if dir != model.Descending {
		dir = model.Ascending
	}
	c.state = model.SortState{Column: column, Direction: dir}
	c.cmp = comparatorFor(col.Type)
	return true
}

func (c *Controller) Clear() {
	c.state = model.SortState{}
	c.cmp = nil
}

// Compare orders two records by the active sort. It returns 0 when no sort
// is active or the values tie, so a stable sort keeps the input order.
func (c *Controller) Compare(a, b model.Record) int {
	if !c.state.Active() || c.cmp == nil {
		return 0
	}
	r := c.cmp(a.Get(c.state.Column), b.Get(c.state.Column))
	if c.state.Direction == model.Descending {
		return -r
	}
	return r
}

func comparatorFor(t model.ColumnType) compareFunc {
	if t == model.ColumnNumber {
		return compareNumeric
	}
	return compareLexical
}

func compareLexical(a, b model.Value) int {
	return strings.Compare(a.String(), b.String())
}

// Ranks used by numeric columns: empties first, then numbers, then any
// text that does not parse.
const (
	rankEmpty = iota
	rankNumber
	rankText
)

func numericRank(v model.Value) (int, float64) {
	if v.IsEmpty() {
		return rankEmpty, 0
	}
	if f, ok := v.Float(); ok {
		return rankNumber, f
	}
	return rankText, 0
}

func compareNumeric(a, b model.Value) int {
	ra, fa := numericRank(a)
	rb, fb := numericRank(b)
	if ra != rb {
		return ra - rb
	}
	switch ra {
	case rankNumber:
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	case rankText:
		return compareLexical(a, b)
	}
	return 0
}
