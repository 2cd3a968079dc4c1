package view

import (
	"testing"

	"github.com/cms-PdmV/PdmVPages/internal/model"
	"github.com/cms-PdmV/PdmVPages/internal/search"
	"github.com/cms-PdmV/PdmVPages/internal/sorting"
)

var schema = model.Schema{
	{Key: "name", Type: model.ColumnText, Sortable: true},
	{Key: "count", Type: model.ColumnNumber, Sortable: true},
}

func names(records []model.Record, idx []int) []string {
	out := make([]string, len(idx))
	for i, r := range Project(records, idx) {
		out[i] = r.Get("name").String()
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRecomputeNameScenario(t *testing.T) {
	records := []model.Record{
		{"name": model.Text("ABC_v1")},
		{"name": model.Text("XYZdef")},
		{"name": model.Text("")},
	}

	tests := []struct {
		query string
		want  []string
	}{
		{"XYZ", []string{"XYZdef"}},
		{"-XYZ", []string{"ABC_v1", ""}},
		{"-*", []string{""}},
		{"*", []string{"ABC_v1", "XYZdef", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			f := search.NewFilters(schema, search.Options{})
			if err := f.SetQuery("name", tt.query); err != nil {
				t.Fatal(err)
			}
			got := names(records, Recompute(records, f, sorting.NewController(schema)))
			if !equalStrings(got, tt.want) {
				t.Errorf("view = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRecomputeFiltersThenSorts(t *testing.T) {
	records := []model.Record{
		{"name": model.Text("a"), "count": model.Number(5)},
		{"name": model.Text("b"), "count": model.Number(1)},
		{"name": model.Text("c"), "count": model.Number(5)},
		{"name": model.Text("skip"), "count": model.Number(0)},
	}
	f := search.NewFilters(schema, search.Options{})
	_ = f.SetQuery("name", "-skip")
	s := sorting.NewController(schema)
	s.Toggle("count")

	if got, want := names(records, Recompute(records, f, s)), []string{"b", "a", "c"}; !equalStrings(got, want) {
		t.Errorf("view = %q, want %q", got, want)
	}
}

func TestRecomputeIsPure(t *testing.T) {
	records := []model.Record{
		{"name": model.Text("z")},
		{"name": model.Text("y")},
	}
	s := sorting.NewController(schema)
	s.Toggle("name")

	first := Recompute(records, nil, s)
	second := Recompute(records, nil, s)
	if len(first) != len(second) || first[0] != second[0] || first[1] != second[1] {
		t.Errorf("repeated Recompute differs: %v vs %v", first, second)
	}
	if records[0].Get("name").String() != "z" {
		t.Error("Recompute reordered its input")
	}
}

func TestRecomputeNilInputs(t *testing.T) {
	records := []model.Record{{"name": model.Text("b")}, {"name": model.Text("a")}}
	got := Recompute(records, nil, nil)
	if len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Errorf("Recompute(nil, nil) = %v, want [0 1]", got)
	}
	if got := Recompute(nil, nil, nil); len(got) != 0 {
		t.Errorf("Recompute on no records = %v", got)
	}
}
