// Package browse defines the view configuration applied to a dataset while
// browsing: search term, filter predicate, sort key, and pagination cursor.
package browse

// FilterOp is a single comparison operator
type FilterOp string

const (
	OpEquals      FilterOp = "eq"
	OpNotEquals   FilterOp = "neq"
	OpGreaterThan FilterOp = "gt"
	OpLessThan    FilterOp = "lt"
	OpContains    FilterOp = "contains"
)

// KnownOp reports whether op is a supported operator
func KnownOp(op FilterOp) bool {
	switch op {
	case OpEquals, OpNotEquals, OpGreaterThan, OpLessThan, OpContains:
		return true
	}
	return false
}

// Filter is a single column/operator/value comparison
type Filter struct {
	Column string   `json:"column"`
	Op     FilterOp `json:"op"`
	Value  string   `json:"value"`
}

// SortDirection orders a sorted view
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Sort orders the filtered row set by one column, with a deterministic
// tie-break by original row index.
type Sort struct {
	Column    string        `json:"column"`
	Direction SortDirection `json:"direction"`
}

// DefaultPageSize matches the original browsing window of 50 rows per page
const DefaultPageSize = 50

// ViewState is the current search/filter/sort/pagination configuration.
// Owned exclusively by the session and mutated only through its API.
type ViewState struct {
	Search   string  `json:"search,omitempty"`
	Filter   *Filter `json:"filter,omitempty"`
	Sort     *Sort   `json:"sort,omitempty"`
	Page     int     `json:"page"`
	PageSize int     `json:"page_size"`
}

// NewViewState returns the reset state used on load/reload
func NewViewState() ViewState {
	return ViewState{PageSize: DefaultPageSize}
}
