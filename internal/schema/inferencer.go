// Package schema classifies column types from raw string values. The
// inferencer is a pure ranked-rule evaluator: numeric, then datetime, then
// categorical, then text.
package schema

import (
	"fmt"

	"chartlab/domain/core"
	"chartlab/domain/table"
)

// Config defines the inference thresholds. The stated defaults are tunable
// policy, not fixed law.
type Config struct {
	// NumericThreshold is the fraction of non-null values that must parse
	// as numbers for a column to classify numeric
	NumericThreshold float64
	// DatetimeThreshold is the same gate for datetime parsing
	DatetimeThreshold float64
	// CategoricalMaxRatio caps cardinality/rowCount for categorical columns
	CategoricalMaxRatio float64
	// CategoricalMaxCardinality caps the absolute distinct-value count
	CategoricalMaxCardinality int
	// SampleSize bounds how many rows the parse-rate checks examine;
	// 0 means all rows
	SampleSize int
}

// DefaultConfig returns the standard thresholds
func DefaultConfig() Config {
	return Config{
		NumericThreshold:          0.90,
		DatetimeThreshold:         0.90,
		CategoricalMaxRatio:       0.5,
		CategoricalMaxCardinality: 50,
		SampleSize:                1000,
	}
}

// Inferencer classifies columns. Pure function of the input rows; no side
// effects.
type Inferencer struct {
	cfg Config
}

// New creates an inferencer with the given config
func New(cfg Config) *Inferencer {
	return &Inferencer{cfg: cfg}
}

// NewDefault creates an inferencer with default thresholds
func NewDefault() *Inferencer {
	return New(DefaultConfig())
}

// InferColumns produces one Column descriptor per input field. It fails
// with a schema error only if the row store is empty or columns are
// inconsistent across rows.
func (inf *Inferencer) InferColumns(columnNames []string, rows []map[string]string) ([]table.Column, error) {
	if len(columnNames) == 0 || len(rows) == 0 {
		return nil, core.ErrEmptyRowStore
	}

	for i, row := range rows {
		if len(row) != len(columnNames) {
			return nil, fmt.Errorf("%w: row %d has %d values, header has %d columns",
				core.ErrInconsistentColumn, i, len(row), len(columnNames))
		}
		for _, name := range columnNames {
			if _, ok := row[name]; !ok {
				return nil, core.NewSchemaError(name, i, "missing value for column")
			}
		}
	}

	columns := make([]table.Column, len(columnNames))
	for i, name := range columnNames {
		columns[i] = inf.inferColumn(name, rows)
	}
	return columns, nil
}

// inferColumn classifies a single column from its raw values
func (inf *Inferencer) inferColumn(name string, rows []map[string]string) table.Column {
	distinct := make(map[string]struct{})
	nullCount := 0
	for _, row := range rows {
		raw := row[name]
		if table.IsNullRaw(raw) {
			nullCount++
			continue
		}
		distinct[raw] = struct{}{}
	}

	col := table.Column{
		Name:        name,
		Cardinality: len(distinct),
		NullCount:   nullCount,
	}

	// An all-null column classifies as text with cardinality 0
	if nullCount == len(rows) {
		col.Type = table.TypeText
		return col
	}

	sample := inf.sampleValues(name, rows)
	col.Type = inf.classify(sample, col.Cardinality, len(rows))
	return col
}

// classify applies the ranked rules to a non-null value sample
func (inf *Inferencer) classify(sample []string, cardinality, rowCount int) table.ColumnType {
	numericOK, datetimeOK := 0, 0
	for _, raw := range sample {
		if _, ok := table.ParseNumeric(raw); ok {
			numericOK++
		}
		if _, ok := table.ParseDatetime(raw); ok {
			datetimeOK++
		}
	}

	total := float64(len(sample))
	if total > 0 && float64(numericOK)/total >= inf.cfg.NumericThreshold {
		return table.TypeNumeric
	}
	if total > 0 && float64(datetimeOK)/total >= inf.cfg.DatetimeThreshold {
		return table.TypeDatetime
	}

	ratio := float64(cardinality) / float64(rowCount)
	if ratio < inf.cfg.CategoricalMaxRatio && cardinality <= inf.cfg.CategoricalMaxCardinality {
		return table.TypeCategorical
	}
	return table.TypeText
}

// sampleValues collects non-null raw values, evenly strided across the row
// store when it exceeds the sample size.
func (inf *Inferencer) sampleValues(name string, rows []map[string]string) []string {
	limit := inf.cfg.SampleSize
	if limit <= 0 || limit > len(rows) {
		limit = len(rows)
	}

	stride := len(rows) / limit
	if stride < 1 {
		stride = 1
	}

	values := make([]string, 0, limit)
	for i := 0; i < len(rows) && len(values) < limit; i += stride {
		raw := rows[i][name]
		if table.IsNullRaw(raw) {
			continue
		}
		values = append(values, raw)
	}
	return values
}
