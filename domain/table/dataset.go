package table

import (
	"chartlab/domain/core"
)

// Dataset is an ordered sequence of Columns plus a row store. A Dataset is
// produced once per load and treated as immutable; cleaning produces a new
// Dataset, never an in-place mutation.
type Dataset struct {
	ID      core.DatasetID `json:"id"`
	Name    string         `json:"name"`
	Columns []Column       `json:"columns"`
	Rows    []Row          `json:"rows"`
}

// NewDataset builds a typed Dataset from inferred columns and raw string
// rows. Every raw row must carry exactly the inferred column set.
func NewDataset(name string, columns []Column, rawRows []map[string]string) (*Dataset, error) {
	if len(columns) == 0 || len(rawRows) == 0 {
		return nil, core.ErrEmptyRowStore
	}

	rows := make([]Row, len(rawRows))
	for i, raw := range rawRows {
		row := make(Row, len(columns))
		for _, col := range columns {
			cell, ok := raw[col.Name]
			if !ok {
				return nil, core.NewSchemaError(col.Name, i, "missing value for column")
			}
			row[col.Name] = NewValue(cell, col.Type)
		}
		rows[i] = row
	}

	return &Dataset{
		ID:      core.DatasetID(core.NewID()),
		Name:    name,
		Columns: columns,
		Rows:    rows,
	}, nil
}

// WithRows derives a new Dataset sharing column descriptors but holding a
// different row store. Used by cleaning to produce the cleaned variant.
func (d *Dataset) WithRows(rows []Row) *Dataset {
	return &Dataset{
		ID:      core.DatasetID(core.NewID()),
		Name:    d.Name,
		Columns: d.Columns,
		Rows:    rows,
	}
}

// RowCount returns the number of rows
func (d *Dataset) RowCount() int {
	return len(d.Rows)
}

// Column looks up a column descriptor by name
func (d *Dataset) Column(name string) (Column, bool) {
	for _, c := range d.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// ColumnNames returns the ordered column names
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}

// NumericValues extracts the non-null numeric values of a column together
// with their original row indices.
func (d *Dataset) NumericValues(name string) (values []float64, rowIndices []int, err error) {
	col, ok := d.Column(name)
	if !ok {
		return nil, nil, core.NewColumnNotFoundError(name)
	}
	if col.Type != TypeNumeric {
		return nil, nil, core.ErrNonNumericColumn
	}
	for i, row := range d.Rows {
		v := row[name]
		if v.Null {
			continue
		}
		values = append(values, v.Num)
		rowIndices = append(rowIndices, i)
	}
	return values, rowIndices, nil
}
