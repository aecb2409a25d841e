// Package cleaning defines the outlier detection vocabulary: methods,
// actions, tunable policy, and the CleaningReport attached to a cleaned
// dataset for audit and undo.
package cleaning

// Method selects the outlier detection algorithm. The caller chooses the
// method explicitly; z-score is an alternative policy, not a fallback.
type Method string

const (
	MethodIQR    Method = "iqr"
	MethodZScore Method = "zscore"
)

// Action selects what happens to flagged rows
type Action string

const (
	// ActionFlagOnly reports outliers but retains them in the data.
	// Default, to avoid silent data loss.
	ActionFlagOnly Action = "flag-only"
	// ActionRemove drops flagged rows from the cleaned dataset
	ActionRemove Action = "remove"
	// ActionClip clamps flagged values to the nearest bound
	ActionClip Action = "clip"
)

// Policy holds the tunable detection parameters
type Policy struct {
	IQRMultiplier   float64 `json:"iqr_multiplier"`
	ZScoreThreshold float64 `json:"zscore_threshold"`
}

// DefaultPolicy returns the standard multipliers
func DefaultPolicy() Policy {
	return Policy{
		IQRMultiplier:   1.5,
		ZScoreThreshold: 3.0,
	}
}

// Bounds are the computed acceptance limits; values outside are flagged
type Bounds struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Contains reports whether v lies within the bounds
func (b Bounds) Contains(v float64) bool {
	return v >= b.Lower && v <= b.Upper
}

// Clamp returns v clamped to the nearest bound
func (b Bounds) Clamp(v float64) float64 {
	if v < b.Lower {
		return b.Lower
	}
	if v > b.Upper {
		return b.Upper
	}
	return v
}

// Report records an outlier detection pass over one numeric column. It is
// attached to the cleaned Dataset and always retrievable for audit/undo.
type Report struct {
	Column      string `json:"column"`
	Method      Method `json:"method"`
	Action      Action `json:"action"`
	Bounds      Bounds `json:"bounds"`
	FlaggedRows []int  `json:"flagged_rows"` // original row indices, ascending
	RowsChecked int    `json:"rows_checked"` // non-null numeric values examined
	Policy      Policy `json:"policy"`
}

// FlaggedCount returns the number of flagged rows
func (r *Report) FlaggedCount() int {
	return len(r.FlaggedRows)
}

// IsFlagged reports whether a given original row index was flagged
func (r *Report) IsFlagged(rowIndex int) bool {
	for _, idx := range r.FlaggedRows {
		if idx == rowIndex {
			return true
		}
	}
	return false
}

// Equal compares two reports field by field. Re-running flag-only cleaning
// with identical parameters must yield an equal report.
func (r *Report) Equal(other *Report) bool {
	if other == nil {
		return false
	}
	if r.Column != other.Column || r.Method != other.Method || r.Action != other.Action {
		return false
	}
	if r.Bounds != other.Bounds || r.RowsChecked != other.RowsChecked || r.Policy != other.Policy {
		return false
	}
	if len(r.FlaggedRows) != len(other.FlaggedRows) {
		return false
	}
	for i, idx := range r.FlaggedRows {
		if other.FlaggedRows[i] != idx {
			return false
		}
	}
	return true
}
