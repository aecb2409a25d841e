// Package outlier detects anomalous numeric values per column and produces
// a cleaned dataset variant plus an auditable report. The original dataset
// is never mutated.
package outlier

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"chartlab/domain/cleaning"
	"chartlab/domain/core"
	"chartlab/domain/table"
)

// Cleaner runs outlier detection over one numeric column at a time
type Cleaner struct {
	policy cleaning.Policy
}

// New creates a cleaner with the given policy
func New(policy cleaning.Policy) *Cleaner {
	return &Cleaner{policy: policy}
}

// NewDefault creates a cleaner with the default policy (k=1.5, z=3.0)
func NewDefault() *Cleaner {
	return New(cleaning.DefaultPolicy())
}

// Clean detects outliers in the named numeric column and applies the chosen
// action, returning the cleaned dataset variant and the report. "No
// outliers found" is a valid non-error outcome.
func (c *Cleaner) Clean(ds *table.Dataset, column string, method cleaning.Method, action cleaning.Action) (*table.Dataset, *cleaning.Report, error) {
	switch action {
	case cleaning.ActionFlagOnly, cleaning.ActionRemove, cleaning.ActionClip:
	default:
		return nil, nil, fmt.Errorf("%w: unknown action %q", core.ErrUnsupportedCleaning, action)
	}

	values, rowIndices, err := ds.NumericValues(column)
	if err != nil {
		return nil, nil, err
	}

	var bounds cleaning.Bounds
	degenerate := false
	switch method {
	case cleaning.MethodIQR:
		bounds, degenerate, err = c.iqrBounds(values)
	case cleaning.MethodZScore:
		bounds, degenerate = c.zscoreBounds(values)
	default:
		return nil, nil, fmt.Errorf("%w: unknown method %q", core.ErrUnsupportedCleaning, method)
	}
	if err != nil {
		return nil, nil, err
	}

	report := &cleaning.Report{
		Column:      column,
		Method:      method,
		Action:      action,
		Bounds:      bounds,
		RowsChecked: len(values),
		Policy:      c.policy,
	}

	// Degenerate input (IQR = 0 or stddev = 0) flags nothing; not an error
	if !degenerate {
		for i, v := range values {
			if !bounds.Contains(v) {
				report.FlaggedRows = append(report.FlaggedRows, rowIndices[i])
			}
		}
	}

	cleaned := c.apply(ds, column, report)
	return cleaned, report, nil
}

// iqrBounds computes [Q1 - k*IQR, Q3 + k*IQR] with quartiles taken as the
// medians of the lower and upper halves. Fewer than two values have no
// spread to measure, so they are degenerate like a zero IQR; quartiles of a
// length-1 slice come back NaN and must never leak into the bounds.
func (c *Cleaner) iqrBounds(values []float64) (cleaning.Bounds, bool, error) {
	if len(values) < 2 {
		return cleaning.Bounds{}, true, nil
	}
	quartiles, err := stats.Quartile(values)
	if err != nil {
		return cleaning.Bounds{}, false, fmt.Errorf("computing quartiles: %w", err)
	}
	iqr := quartiles.Q3 - quartiles.Q1
	if iqr == 0 || math.IsNaN(iqr) {
		return cleaning.Bounds{Lower: quartiles.Q1, Upper: quartiles.Q3}, true, nil
	}
	return cleaning.Bounds{
		Lower: quartiles.Q1 - c.policy.IQRMultiplier*iqr,
		Upper: quartiles.Q3 + c.policy.IQRMultiplier*iqr,
	}, false, nil
}

// zscoreBounds computes [mean - t*stddev, mean + t*stddev]
func (c *Cleaner) zscoreBounds(values []float64) (cleaning.Bounds, bool) {
	if len(values) == 0 {
		return cleaning.Bounds{}, true
	}
	mean, stddev := stat.MeanStdDev(values, nil)
	if stddev == 0 || math.IsNaN(stddev) {
		return cleaning.Bounds{Lower: mean, Upper: mean}, true
	}
	return cleaning.Bounds{
		Lower: mean - c.policy.ZScoreThreshold*stddev,
		Upper: mean + c.policy.ZScoreThreshold*stddev,
	}, false
}

// apply builds the cleaned dataset variant for the report's action
func (c *Cleaner) apply(ds *table.Dataset, column string, report *cleaning.Report) *table.Dataset {
	switch report.Action {
	case cleaning.ActionRemove:
		rows := make([]table.Row, 0, ds.RowCount()-report.FlaggedCount())
		flagged := make(map[int]struct{}, report.FlaggedCount())
		for _, idx := range report.FlaggedRows {
			flagged[idx] = struct{}{}
		}
		for i, row := range ds.Rows {
			if _, drop := flagged[i]; drop {
				continue
			}
			rows = append(rows, row)
		}
		return ds.WithRows(rows)

	case cleaning.ActionClip:
		rows := make([]table.Row, len(ds.Rows))
		copy(rows, ds.Rows)
		for _, idx := range report.FlaggedRows {
			clipped := make(table.Row, len(rows[idx]))
			for name, v := range rows[idx] {
				clipped[name] = v
			}
			clipped[column] = table.NumericValue(report.Bounds.Clamp(rows[idx][column].Num))
			rows[idx] = clipped
		}
		return ds.WithRows(rows)

	default: // flag-only retains every row
		return ds.WithRows(ds.Rows)
	}
}
