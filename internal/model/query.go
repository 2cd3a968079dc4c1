package model

type Direction string

const (
	Ascending  Direction = "ascending"
	Descending Direction = "descending"
)

// ParseDirection accepts the long URL form as well as the asc/desc shorthands.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "ascending", "asc":
		return Ascending, true
	case "descending", "desc":
		return Descending, true
	}
	return "", false
}

func (d Direction) Flip() Direction {
	if d == Descending {
		return Ascending
	}
	return Descending
}

// Share link parameters that carry the sort. A column with one of these
// keys cannot be searched, since its query would not survive in a link.
const (
	ParamSort = "sort"
	ParamDir  = "dir"
)

// Reserved reports whether key is one of the sort parameters.
func Reserved(key string) bool {
	return key == ParamSort || key == ParamDir
}

// ColumnQuery is the raw search text a user typed into one column's filter.
type ColumnQuery struct {
	Column string
	Raw    string
}

// SortState is the active sort. An empty Column means no sort.
type SortState struct {
	Column    string
	Direction Direction
}

func (s SortState) Active() bool { return s.Column != "" }
