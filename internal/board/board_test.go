package board

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cms-PdmV/PdmVPages/internal/model"
	"github.com/cms-PdmV/PdmVPages/internal/search"
	"github.com/cms-PdmV/PdmVPages/internal/share"
)

func testDataset() *model.Dataset {
	return &model.Dataset{
		Name: "rereco_ul",
		Schema: model.Schema{
			{Key: "dataset", Type: model.ColumnText, Sortable: true},
			{Key: "era", Type: model.ColumnText, Sortable: true},
			{Key: "events", Type: model.ColumnNumber, Sortable: true},
			{Key: "notes", Type: model.ColumnText},
		},
		Records: []model.Record{
			{"dataset": model.Text("/ZeroBias/Run2022C/RAW"), "era": model.Text("Run2022C"), "events": model.Number(5)},
			{"dataset": model.Text("/JetHT/Run2022D/RAW"), "era": model.Text("Run2022D"), "events": model.Number(1)},
			{"dataset": model.Text("/JetHT/Run2023B/RAW"), "era": model.Text(""), "events": model.Number(5)},
		},
	}
}

func datasets(b *Board) []string {
	var out []string
	for _, r := range b.Rows() {
		out = append(out, r.Get("dataset").String())
	}
	return out
}

func TestNewRestoresFromAddress(t *testing.T) {
	addr := share.NewMemoryAddress("dataset=JetHT&sort=events&dir=descending")
	b := New(testDataset(), addr, Options{})

	assert.Equal(t, []string{"/JetHT/Run2023B/RAW", "/JetHT/Run2022D/RAW"}, datasets(b))
	assert.Equal(t, model.SortState{Column: "events", Direction: model.Descending}, b.Sort())
	assert.Empty(t, b.Issues())
	assert.Equal(t, 0, addr.Writes, "loading must not rewrite the address")
}

func TestMutationsSyncAddress(t *testing.T) {
	addr := share.NewMemoryAddress("")
	b := New(testDataset(), addr, Options{BaseURL: "https://cms-pdmv.cern.ch/pages/rereco_ul"})

	require.NoError(t, b.SetQuery("era", "-*"))
	assert.Equal(t, "era=-%2A", addr.Query())
	assert.Equal(t, []string{"/JetHT/Run2023B/RAW"}, datasets(b))

	require.True(t, b.ToggleSort("dataset"))
	assert.Equal(t, "era=-%2A&sort=dataset&dir=ascending", addr.Query())

	b.ClearQuery("era")
	assert.Equal(t, "sort=dataset&dir=ascending", addr.Query())
	assert.Equal(t, []string{"/JetHT/Run2022D/RAW", "/JetHT/Run2023B/RAW", "/ZeroBias/Run2022C/RAW"}, datasets(b))

	assert.Equal(t, "https://cms-pdmv.cern.ch/pages/rereco_ul?sort=dataset&dir=ascending", b.ShareURL())
	assert.Equal(t, 3, addr.Writes)
}

func TestToggleSortRejectsUnsortable(t *testing.T) {
	addr := share.NewMemoryAddress("")
	b := New(testDataset(), addr, Options{})

	assert.False(t, b.ToggleSort("notes"))
	assert.False(t, b.Sort().Active())
	assert.Equal(t, 0, addr.Writes)
}

func TestSetQueryUnknownColumnSuggests(t *testing.T) {
	b := New(testDataset(), nil, Options{})

	err := b.SetQuery("evnts", "5")
	require.Error(t, err)
	assert.True(t, errors.Is(err, search.ErrUnknownColumn))
	assert.Contains(t, err.Error(), "did you mean events")
}

func TestInvalidPatternEmptiesViewOnly(t *testing.T) {
	b := New(testDataset(), nil, Options{})
	require.True(t, b.ToggleSort("events"))

	require.NoError(t, b.SetQuery("dataset", "Run(2022"))
	assert.Empty(t, b.Rows())
	assert.Contains(t, b.PatternErrors(), "dataset")
	assert.Equal(t, model.SortState{Column: "events", Direction: model.Ascending}, b.Sort())

	require.NoError(t, b.SetQuery("dataset", "Run2022"))
	assert.Len(t, b.Rows(), 2)
}

func TestDefaultSort(t *testing.T) {
	opts := Options{DefaultSort: model.SortState{Column: "events", Direction: model.Descending}}

	b := New(testDataset(), share.NewMemoryAddress(""), opts)
	assert.Equal(t, opts.DefaultSort, b.Sort())

	b = New(testDataset(), share.NewMemoryAddress("sort=dataset"), opts)
	assert.Equal(t, "dataset", b.Sort().Column, "address sort wins over default")
}

func TestDefaultSortStaysOutOfAddress(t *testing.T) {
	opts := Options{
		DefaultSort: model.SortState{Column: "dataset", Direction: model.Ascending},
		BaseURL:     "https://cms-pdmv.cern.ch/pages/rereco_ul",
	}
	addr := share.NewMemoryAddress("")
	b := New(testDataset(), addr, opts)
	assert.Equal(t, "", addr.Query())

	require.NoError(t, b.SetQuery("era", "2022"))
	assert.Equal(t, "era=2022", addr.Query())
	assert.Equal(t, opts.DefaultSort, b.Sort(), "default sort still orders the rows")

	b.ClearFilters()
	assert.Equal(t, "", addr.Query())
	assert.Equal(t, "https://cms-pdmv.cern.ch/pages/rereco_ul", b.ShareURL())

	b.Restore("")
	assert.Equal(t, "", addr.Query())
	assert.Equal(t, opts.DefaultSort, b.Sort())

	// Once the user picks a sort, even the default column, it is shared.
	require.True(t, b.ToggleSort("dataset"))
	assert.Equal(t, "sort=dataset&dir=descending", addr.Query())

	// A reload rebuilds from the address and keeps the chosen sort.
	b.Replace(testDataset())
	assert.Equal(t, model.SortState{Column: "dataset", Direction: model.Descending}, b.Sort())
	require.NoError(t, b.SetQuery("era", "2022"))
	assert.Equal(t, "era=2022&sort=dataset&dir=descending", addr.Query())

	b.Restore("era=2023")
	assert.Equal(t, "era=2023", addr.Query())
	assert.Equal(t, opts.DefaultSort, b.Sort())
}

func TestReservedColumnCannotBeSearched(t *testing.T) {
	data := &model.Dataset{
		Name: "x",
		Schema: model.Schema{
			{Key: "name", Type: model.ColumnText, Sortable: true},
			{Key: "sort", Type: model.ColumnText, Sortable: true},
		},
		Records: []model.Record{
			{"name": model.Text("b"), "sort": model.Text("x")},
			{"name": model.Text("a"), "sort": model.Text("y")},
		},
	}
	addr := share.NewMemoryAddress("")
	b := New(data, addr, Options{DefaultSort: model.SortState{Column: "name", Direction: model.Ascending}})

	err := b.SetQuery("sort", "x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, search.ErrReservedColumn))
	assert.Equal(t, "", addr.Query())
	assert.Len(t, b.Visible(), 2, "a rejected query must not hide rows")

	b.Replace(data)
	assert.Len(t, b.Visible(), 2)
	assert.Equal(t, "", b.Query("sort"))

	// The column can still be sorted on, and that survives a reload.
	require.True(t, b.ToggleSort("sort"))
	assert.Equal(t, "sort=sort&dir=ascending", addr.Query())
	b.Replace(data)
	assert.Equal(t, "sort", b.Sort().Column)
}

func TestReplaceKeepsState(t *testing.T) {
	b := New(testDataset(), nil, Options{})
	require.NoError(t, b.SetQuery("dataset", "JetHT"))

	next := testDataset()
	next.Records = append(next.Records, model.Record{"dataset": model.Text("/JetHT/Run2024A/RAW")})
	b.Replace(next)

	assert.Equal(t, "JetHT", b.Query("dataset"))
	assert.Len(t, b.Rows(), 3)
	assert.Equal(t, 4, b.Total())
}

func TestRestoreReportsIssues(t *testing.T) {
	addr := share.NewMemoryAddress("dataset=JetHT")
	b := New(testDataset(), addr, Options{})

	issues := b.Restore("https://example.org/x?bogus=1&era=2022")
	require.Len(t, issues, 1)
	assert.Equal(t, "bogus", issues[0].Param)
	assert.Equal(t, "", b.Query("dataset"))
	assert.Equal(t, "2022", b.Query("era"))
	assert.Equal(t, "era=2022", addr.Query())
}

func TestRestoreLinkWithBaseQuery(t *testing.T) {
	addr := share.NewMemoryAddress("")
	b := New(testDataset(), addr, Options{BaseURL: "https://cms-pdmv.cern.ch/pages?page=rereco_ul"})
	require.NoError(t, b.SetQuery("era", "2022"))
	link := b.ShareURL()
	assert.Equal(t, "https://cms-pdmv.cern.ch/pages?page=rereco_ul&era=2022", link)

	issues := b.Restore(link)
	assert.Empty(t, issues)
	assert.Equal(t, "era=2022", addr.Query())
	assert.Equal(t, link, b.ShareURL())
}

func TestClearFiltersKeepsSort(t *testing.T) {
	b := New(testDataset(), nil, Options{})
	require.NoError(t, b.SetQuery("dataset", "Zero"))
	require.NoError(t, b.SetQuery("era", "2022"))
	b.ToggleSort("era")

	b.ClearFilters()
	assert.Empty(t, b.Queries())
	assert.Equal(t, "sort=era&dir=ascending", b.ShareQuery())
	assert.Len(t, b.Visible(), 3)
}
