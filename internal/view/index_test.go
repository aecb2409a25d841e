package view

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chartlab/domain/browse"
	"chartlab/domain/core"
	"chartlab/domain/table"
)

// browseDataset builds a small mixed-type dataset with predictable content:
// rows alternate categories A/B/C and carry ascending amounts.
func browseDataset(t *testing.T, n int) *table.Dataset {
	t.Helper()
	cols := []table.Column{
		{Name: "amount", Type: table.TypeNumeric},
		{Name: "category", Type: table.TypeCategorical},
		{Name: "day", Type: table.TypeDatetime},
	}
	rows := make([]map[string]string, n)
	for i := 0; i < n; i++ {
		rows[i] = map[string]string{
			"amount":   fmt.Sprintf("%d", (i*7)%100),
			"category": string(rune('A' + i%3)),
			"day":      fmt.Sprintf("2024-01-%02d", i%28+1),
		}
	}
	ds, err := table.NewDataset("browse", cols, rows)
	require.NoError(t, err)
	return ds
}

func TestPage_ConcatenationReproducesOriginalOrder(t *testing.T) {
	ds := browseDataset(t, 23)
	ix := NewIndex(ds)

	var got []table.Row
	for page := 0; ; page++ {
		rows := ix.Page(page, 5)
		if len(rows) == 0 {
			break
		}
		got = append(got, rows...)
	}

	require.Len(t, got, 23)
	for i, row := range got {
		assert.Equal(t, ds.Rows[i]["amount"].Raw, row["amount"].Raw, "row %d out of order", i)
	}
}

func TestPage_BeyondLastPageIsEmptyNotError(t *testing.T) {
	ix := NewIndex(browseDataset(t, 10))

	rows := ix.Page(5, 10)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestPage_LastPageIsShort(t *testing.T) {
	ix := NewIndex(browseDataset(t, 23))

	assert.Len(t, ix.Page(4, 5), 3)
}

func TestSetFilter_EqualsKeepsOriginalOrder(t *testing.T) {
	ds := browseDataset(t, 12)
	ix := NewIndex(ds)

	require.NoError(t, ix.SetFilter(&browse.Filter{Column: "category", Op: browse.OpEquals, Value: "A"}))

	// categories cycle A,B,C so A sits at indices 0,3,6,9
	rows := ix.Page(0, 2)
	require.Len(t, rows, 2)
	assert.Equal(t, ds.Rows[0]["amount"].Raw, rows[0]["amount"].Raw)
	assert.Equal(t, ds.Rows[3]["amount"].Raw, rows[1]["amount"].Raw)
	assert.Equal(t, 4, ix.MatchCount())
}

func TestSetFilter_NumericComparison(t *testing.T) {
	cols := []table.Column{{Name: "v", Type: table.TypeNumeric}}
	ds, err := table.NewDataset("nums", cols, []map[string]string{
		{"v": "5"}, {"v": "50"}, {"v": "500"}, {"v": ""},
	})
	require.NoError(t, err)
	ix := NewIndex(ds)

	require.NoError(t, ix.SetFilter(&browse.Filter{Column: "v", Op: browse.OpGreaterThan, Value: "40"}))
	// null cells never match an ordered comparison
	assert.Equal(t, 2, ix.MatchCount())
}

func TestSetFilter_InvalidPredicates(t *testing.T) {
	ix := NewIndex(browseDataset(t, 6))

	cases := []struct {
		name string
		f    browse.Filter
	}{
		{"nonexistent column", browse.Filter{Column: "nope", Op: browse.OpEquals, Value: "1"}},
		{"unknown operator", browse.Filter{Column: "amount", Op: "between", Value: "1"}},
		{"non-numeric value for numeric column", browse.Filter{Column: "amount", Op: browse.OpGreaterThan, Value: "abc"}},
		{"ordered comparison on categorical", browse.Filter{Column: "category", Op: browse.OpLessThan, Value: "B"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := tc.f
			err := ix.SetFilter(&f)
			assert.ErrorIs(t, err, core.ErrInvalidFilter)
		})
	}

	// a rejected filter leaves the view untouched
	assert.Equal(t, 6, ix.MatchCount())
}

func TestSetSearch_MatchesAnyField(t *testing.T) {
	cols := []table.Column{
		{Name: "name", Type: table.TypeText},
		{Name: "city", Type: table.TypeText},
	}
	ds, err := table.NewDataset("people", cols, []map[string]string{
		{"name": "Ada", "city": "London"},
		{"name": "Linus", "city": "Helsinki"},
		{"name": "Grace", "city": "Arlington"},
	})
	require.NoError(t, err)
	ix := NewIndex(ds)

	ix.SetSearch("LIN")
	// matches "Linus" and "Arlington", case-insensitively
	assert.Equal(t, 2, ix.MatchCount())

	ix.SetSearch("")
	assert.Equal(t, 3, ix.MatchCount())
}

func TestSetSort_StableOnTies(t *testing.T) {
	cols := []table.Column{
		{Name: "score", Type: table.TypeNumeric},
		{Name: "tag", Type: table.TypeText},
	}
	ds, err := table.NewDataset("scores", cols, []map[string]string{
		{"score": "2", "tag": "first-two"},
		{"score": "1", "tag": "one"},
		{"score": "2", "tag": "second-two"},
		{"score": "3", "tag": "three"},
	})
	require.NoError(t, err)
	ix := NewIndex(ds)

	require.NoError(t, ix.SetSort(&browse.Sort{Column: "score", Direction: browse.SortAsc}))
	rows := ix.OrderedRows()
	assert.Equal(t, "one", rows[0]["tag"].Raw)
	assert.Equal(t, "first-two", rows[1]["tag"].Raw)
	assert.Equal(t, "second-two", rows[2]["tag"].Raw)
	assert.Equal(t, "three", rows[3]["tag"].Raw)

	// ties keep original row order in descending direction too
	require.NoError(t, ix.SetSort(&browse.Sort{Column: "score", Direction: browse.SortDesc}))
	rows = ix.OrderedRows()
	assert.Equal(t, "three", rows[0]["tag"].Raw)
	assert.Equal(t, "first-two", rows[1]["tag"].Raw)
	assert.Equal(t, "second-two", rows[2]["tag"].Raw)
	assert.Equal(t, "one", rows[3]["tag"].Raw)
}

func TestSetSort_NullsFirst(t *testing.T) {
	cols := []table.Column{{Name: "v", Type: table.TypeNumeric}}
	ds, err := table.NewDataset("nums", cols, []map[string]string{
		{"v": "2"}, {"v": ""}, {"v": "1"},
	})
	require.NoError(t, err)
	ix := NewIndex(ds)

	require.NoError(t, ix.SetSort(&browse.Sort{Column: "v", Direction: browse.SortAsc}))
	rows := ix.OrderedRows()
	assert.True(t, rows[0]["v"].Null)
	assert.Equal(t, "1", rows[1]["v"].Raw)
	assert.Equal(t, "2", rows[2]["v"].Raw)
}

func TestSetPage_MovesCursorWithoutInvalidating(t *testing.T) {
	ix := NewIndex(browseDataset(t, 30))
	v0 := ix.Version()

	ix.SetPage(3)
	assert.Equal(t, 3, ix.State().Page)
	assert.Equal(t, v0, ix.Version())

	ix.SetPage(-1)
	assert.Equal(t, 0, ix.State().Page)
}

func TestViewChange_ResetsPageCursor(t *testing.T) {
	ix := NewIndex(browseDataset(t, 30))

	ix.Page(2, 5)
	assert.Equal(t, 2, ix.State().Page)

	ix.SetSearch("a")
	assert.Equal(t, 0, ix.State().Page)
}

func TestVersion_IncrementsOnlyOnViewChanges(t *testing.T) {
	ix := NewIndex(browseDataset(t, 10))
	v0 := ix.Version()

	// pure navigation never invalidates
	ix.Page(0, 5)
	ix.Page(1, 5)
	assert.Equal(t, v0, ix.Version())

	ix.SetSearch("b")
	assert.Greater(t, ix.Version(), v0)

	// setting the same term again is a no-op
	v1 := ix.Version()
	ix.SetSearch("b")
	assert.Equal(t, v1, ix.Version())
}

func TestSearchAndFilterCompose(t *testing.T) {
	ds := browseDataset(t, 12)
	ix := NewIndex(ds)

	require.NoError(t, ix.SetFilter(&browse.Filter{Column: "category", Op: browse.OpNotEquals, Value: "C"}))
	before := ix.MatchCount()
	assert.Equal(t, 8, before)

	// narrow further with a search over the remaining rows
	ix.SetSearch(ds.Rows[0]["day"].Raw)
	assert.LessOrEqual(t, ix.MatchCount(), before)
	assert.GreaterOrEqual(t, ix.MatchCount(), 1)
}

func TestRebase_KeepsViewResetsCursor(t *testing.T) {
	ds := browseDataset(t, 12)
	ix := NewIndex(ds)
	require.NoError(t, ix.SetFilter(&browse.Filter{Column: "category", Op: browse.OpEquals, Value: "A"}))
	ix.Page(1, 2)

	ix.Rebase(ds.WithRows(ds.Rows[:6]))

	state := ix.State()
	require.NotNil(t, state.Filter)
	assert.Equal(t, "A", state.Filter.Value)
	assert.Equal(t, 0, state.Page)
	assert.Equal(t, 2, ix.MatchCount())
}
