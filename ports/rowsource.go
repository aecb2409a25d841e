package ports

import "context"

// RawTable is the shape the ingestion collaborator hands to the core: a list
// of column names plus rows mapping column name to raw string value. The
// core does not parse file formats itself.
type RawTable struct {
	Name        string
	ColumnNames []string
	Rows        []map[string]string
}

// RowSource supplies raw tabular data for a session load. Implementations
// own all file I/O and format concerns; Read blocks until the full table is
// available or fails with an explicit error.
type RowSource interface {
	Read(ctx context.Context) (*RawTable, error)
}
