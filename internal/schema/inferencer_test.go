package schema

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chartlab/domain/core"
	"chartlab/domain/table"
)

func rowsFrom(columnNames []string, cells [][]string) []map[string]string {
	rows := make([]map[string]string, 0, len(cells))
	for _, cell := range cells {
		row := make(map[string]string, len(columnNames))
		for i, name := range columnNames {
			row[name] = cell[i]
		}
		rows = append(rows, row)
	}
	return rows
}

func TestInferColumns_TypesPerColumn(t *testing.T) {
	names := []string{"date", "sales", "category", "note"}
	rows := rowsFrom(names, [][]string{
		{"2024-01-01", "100.5", "A", "first delivery went fine"},
		{"2024-01-02", "98", "B", "customer asked for invoice copy"},
		{"2024-01-03", "1,250", "A", "weather delay on route nine"},
		{"2024-01-04", "77.25", "C", "nothing to report"},
		{"2024-01-05", "83", "B", "driver swapped at depot"},
		{"2024-01-06", "91.4", "A", "pallet count off by one"},
		{"2024-01-07", "120", "C", "left at loading dock"},
		{"2024-01-08", "64.75", "B", "signed by front desk"},
	})

	cols, err := NewDefault().InferColumns(names, rows)
	require.NoError(t, err)
	require.Len(t, cols, 4)

	byName := make(map[string]table.Column, len(cols))
	for _, c := range cols {
		byName[c.Name] = c
	}

	assert.Equal(t, table.TypeDatetime, byName["date"].Type)
	assert.Equal(t, table.TypeNumeric, byName["sales"].Type)
	assert.Equal(t, table.TypeCategorical, byName["category"].Type)
	assert.Equal(t, table.TypeText, byName["note"].Type)

	assert.Equal(t, 3, byName["category"].Cardinality)
	assert.Equal(t, 0, byName["sales"].NullCount)
}

func TestInferColumns_ColumnOrderMatchesHeader(t *testing.T) {
	names := []string{"b", "a", "c"}
	rows := rowsFrom(names, [][]string{{"1", "2", "3"}})

	cols, err := NewDefault().InferColumns(names, rows)
	require.NoError(t, err)

	got := make([]string, len(cols))
	for i, c := range cols {
		got[i] = c.Name
	}
	assert.Equal(t, names, got)
}

func TestInferColumns_NumericToleratesSparseNoise(t *testing.T) {
	// 19 of 20 non-null values parse -> 0.95 >= 0.90 threshold
	names := []string{"v"}
	cells := make([][]string, 0, 20)
	for i := 0; i < 19; i++ {
		cells = append(cells, []string{fmt.Sprintf("%d.5", i)})
	}
	cells = append(cells, []string{"n/a"})

	cols, err := NewDefault().InferColumns(names, rowsFrom(names, cells))
	require.NoError(t, err)
	assert.Equal(t, table.TypeNumeric, cols[0].Type)
}

func TestInferColumns_AllNullIsTextWithZeroCardinality(t *testing.T) {
	names := []string{"empty"}
	rows := rowsFrom(names, [][]string{{""}, {"   "}, {""}})

	cols, err := NewDefault().InferColumns(names, rows)
	require.NoError(t, err)

	assert.Equal(t, table.TypeText, cols[0].Type)
	assert.Equal(t, 0, cols[0].Cardinality)
	assert.Equal(t, 3, cols[0].NullCount)
}

func TestInferColumns_SingleDistinctValueIsCategorical(t *testing.T) {
	names := []string{"status"}
	rows := rowsFrom(names, [][]string{{"open"}, {"open"}, {"open"}, {"open"}})

	cols, err := NewDefault().InferColumns(names, rows)
	require.NoError(t, err)

	// cardinality 1 over 4 rows: ratio 0.25 < 0.5 and 1 <= 50
	assert.Equal(t, table.TypeCategorical, cols[0].Type)
	assert.Equal(t, 1, cols[0].Cardinality)
}

func TestInferColumns_HighCardinalityStringsAreText(t *testing.T) {
	names := []string{"id"}
	cells := make([][]string, 0, 10)
	for i := 0; i < 10; i++ {
		cells = append(cells, []string{fmt.Sprintf("user-%c", 'a'+i)})
	}

	cols, err := NewDefault().InferColumns(names, rowsFrom(names, cells))
	require.NoError(t, err)

	// every value distinct: ratio 1.0 fails the categorical gate
	assert.Equal(t, table.TypeText, cols[0].Type)
}

func TestInferColumns_EmptyRowStore(t *testing.T) {
	_, err := NewDefault().InferColumns([]string{"a"}, nil)
	assert.ErrorIs(t, err, core.ErrEmptyRowStore)

	_, err = NewDefault().InferColumns(nil, []map[string]string{{"a": "1"}})
	assert.ErrorIs(t, err, core.ErrEmptyRowStore)
}

func TestInferColumns_InconsistentRowsFail(t *testing.T) {
	names := []string{"a", "b"}

	// row with a different value count than the header
	rows := []map[string]string{
		{"a": "1", "b": "2"},
		{"a": "1"},
	}
	_, err := NewDefault().InferColumns(names, rows)
	assert.ErrorIs(t, err, core.ErrInconsistentColumn)
	assert.True(t, core.IsSchemaError(err))

	// row with the right count but a wrong column carries the detail
	rows = []map[string]string{
		{"a": "1", "b": "2"},
		{"a": "1", "c": "3"},
	}
	_, err = NewDefault().InferColumns(names, rows)
	require.True(t, core.IsSchemaError(err))

	var schemaErr *core.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, 1, schemaErr.Row)
	assert.Equal(t, "b", schemaErr.Column)
}

func TestInferColumns_DatetimeBeatsTextNotNumeric(t *testing.T) {
	// "2006/01/02" style values do not parse as numbers, so the datetime rule
	// picks them up after the numeric rule declines.
	names := []string{"when"}
	rows := rowsFrom(names, [][]string{{"2024/05/01"}, {"2024/05/02"}, {"2024/05/03"}})

	cols, err := NewDefault().InferColumns(names, rows)
	require.NoError(t, err)
	assert.Equal(t, table.TypeDatetime, cols[0].Type)
}

func TestClassify_SampleSizeStridesLargeStores(t *testing.T) {
	inf := New(Config{
		NumericThreshold:          0.90,
		DatetimeThreshold:         0.90,
		CategoricalMaxRatio:       0.5,
		CategoricalMaxCardinality: 50,
		SampleSize:                10,
	})

	names := []string{"v"}
	cells := make([][]string, 0, 1000)
	for i := 0; i < 1000; i++ {
		cells = append(cells, []string{fmt.Sprintf("%d", i)})
	}

	cols, err := inf.InferColumns(names, rowsFrom(names, cells))
	require.NoError(t, err)
	// classification consults at most SampleSize values but cardinality
	// still reflects the whole store
	assert.Equal(t, table.TypeNumeric, cols[0].Type)
	assert.Equal(t, 1000, cols[0].Cardinality)
}
