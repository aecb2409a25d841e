// Package view maintains an ordered, filterable, searchable window over a
// dataset. The filtered/sorted ordering is cached and recomputed at most
// once per view-state change — never per page request.
package view

import (
	"fmt"
	"sort"
	"strings"

	"chartlab/domain/browse"
	"chartlab/domain/core"
	"chartlab/domain/table"
)

// Index serves bounded pages of rows under the current view state
type Index struct {
	ds      *table.Dataset
	state   browse.ViewState
	version uint64
	order   []int // cached row ordering, valid while dirty is false
	dirty   bool
}

// NewIndex creates an index over a dataset with a reset view state
func NewIndex(ds *table.Dataset) *Index {
	return &Index{
		ds:    ds,
		state: browse.NewViewState(),
		dirty: true,
	}
}

// Rebase points the index at a different dataset (e.g. the cleaned variant)
// while keeping search/filter/sort; the page cursor resets to 0.
func (ix *Index) Rebase(ds *table.Dataset) {
	ix.ds = ds
	ix.invalidate()
}

// State returns a copy of the current view state
func (ix *Index) State() browse.ViewState {
	return ix.state
}

// Version increments on every invalidating change
func (ix *Index) Version() uint64 {
	return ix.version
}

// SetSearch updates the case-insensitive substring search term
func (ix *Index) SetSearch(term string) {
	if ix.state.Search == term {
		return
	}
	ix.state.Search = term
	ix.invalidate()
}

// SetFilter validates and applies a single column/operator/value predicate.
// A nil filter clears filtering.
func (ix *Index) SetFilter(f *browse.Filter) error {
	if f != nil {
		if err := ix.validateFilter(f); err != nil {
			return err
		}
	}
	ix.state.Filter = f
	ix.invalidate()
	return nil
}

// SetSort validates and applies a sort key. A nil sort restores original
// row order.
func (ix *Index) SetSort(s *browse.Sort) error {
	if s != nil {
		if _, ok := ix.ds.Column(s.Column); !ok {
			return core.NewFilterError(fmt.Sprintf("sort column %q does not exist", s.Column))
		}
		if s.Direction != browse.SortAsc && s.Direction != browse.SortDesc {
			return core.NewFilterError(fmt.Sprintf("unknown sort direction %q", s.Direction))
		}
	}
	ix.state.Sort = s
	ix.invalidate()
	return nil
}

// SetPage moves the page cursor without touching the cached ordering
func (ix *Index) SetPage(page int) {
	if page < 0 {
		page = 0
	}
	ix.state.Page = page
}

// SetPageSize changes the rows-per-page window
func (ix *Index) SetPageSize(size int) {
	if size <= 0 {
		size = browse.DefaultPageSize
	}
	ix.state.PageSize = size
}

// MatchCount returns the size of the filtered/searched set
func (ix *Index) MatchCount() int {
	ix.ensure()
	return len(ix.order)
}

// Page returns exactly the rows in [page*size, page*size+size) of the
// filtered/sorted set, fewer on the last page, and an empty slice (not an
// error) beyond the last page. The page cursor is preserved across pure
// navigation calls.
func (ix *Index) Page(page, size int) []table.Row {
	if page < 0 || size <= 0 {
		return nil
	}
	ix.ensure()
	ix.state.Page = page
	ix.state.PageSize = size

	start := page * size
	if start >= len(ix.order) {
		return []table.Row{}
	}
	end := start + size
	if end > len(ix.order) {
		end = len(ix.order)
	}
	rows := make([]table.Row, 0, end-start)
	for _, idx := range ix.order[start:end] {
		rows = append(rows, ix.ds.Rows[idx])
	}
	return rows
}

// OrderedRows returns the full filtered/sorted row set in view order
func (ix *Index) OrderedRows() []table.Row {
	ix.ensure()
	rows := make([]table.Row, len(ix.order))
	for i, idx := range ix.order {
		rows[i] = ix.ds.Rows[idx]
	}
	return rows
}

// invalidate marks the ordering stale and resets the cursor to page 0
func (ix *Index) invalidate() {
	ix.dirty = true
	ix.version++
	ix.state.Page = 0
}

// ensure recomputes the cached ordering in a single pass over the row store
func (ix *Index) ensure() {
	if !ix.dirty {
		return
	}

	search := strings.ToLower(strings.TrimSpace(ix.state.Search))
	order := make([]int, 0, len(ix.ds.Rows))
	for i, row := range ix.ds.Rows {
		if search != "" && !rowMatchesSearch(row, search) {
			continue
		}
		if ix.state.Filter != nil && !ix.rowMatchesFilter(row, ix.state.Filter) {
			continue
		}
		order = append(order, i)
	}

	if s := ix.state.Sort; s != nil {
		col, _ := ix.ds.Column(s.Column)
		desc := s.Direction == browse.SortDesc
		// SliceStable keeps equal keys in original relative order since the
		// unsorted slice is already in ascending row-index order
		sort.SliceStable(order, func(a, b int) bool {
			if desc {
				a, b = b, a
			}
			return lessValue(ix.ds.Rows[order[a]][col.Name], ix.ds.Rows[order[b]][col.Name], col.Type)
		})
	}

	ix.order = order
	ix.dirty = false
}

// validateFilter rejects predicates referencing a nonexistent column or a
// value of the wrong type for the column.
func (ix *Index) validateFilter(f *browse.Filter) error {
	col, ok := ix.ds.Column(f.Column)
	if !ok {
		return core.NewFilterError(fmt.Sprintf("filter column %q does not exist", f.Column))
	}
	if !browse.KnownOp(f.Op) {
		return core.NewFilterError(fmt.Sprintf("unknown operator %q", f.Op))
	}

	// Ordered comparisons and typed equality need a value the column's type
	// can parse; contains always works on the raw text.
	if f.Op == browse.OpContains {
		return nil
	}
	switch col.Type {
	case table.TypeNumeric:
		if _, ok := table.ParseNumeric(f.Value); !ok {
			return core.NewFilterError(fmt.Sprintf("value %q is not numeric for column %q", f.Value, f.Column))
		}
	case table.TypeDatetime:
		if _, ok := table.ParseDatetime(f.Value); !ok {
			return core.NewFilterError(fmt.Sprintf("value %q is not a datetime for column %q", f.Value, f.Column))
		}
	default:
		if f.Op == browse.OpGreaterThan || f.Op == browse.OpLessThan {
			return core.NewFilterError(fmt.Sprintf("ordered comparison requires a numeric or datetime column, %q is %s", f.Column, col.Type))
		}
	}
	return nil
}

// rowMatchesFilter evaluates the validated predicate against one row
func (ix *Index) rowMatchesFilter(row table.Row, f *browse.Filter) bool {
	col, _ := ix.ds.Column(f.Column)
	v := row[f.Column]

	switch f.Op {
	case browse.OpContains:
		return strings.Contains(strings.ToLower(v.Raw), strings.ToLower(f.Value))
	case browse.OpEquals, browse.OpNotEquals:
		eq := valueEquals(v, f.Value, col.Type)
		if f.Op == browse.OpNotEquals {
			return !eq
		}
		return eq
	case browse.OpGreaterThan, browse.OpLessThan:
		if v.Null {
			return false
		}
		switch col.Type {
		case table.TypeNumeric:
			target, _ := table.ParseNumeric(f.Value)
			if f.Op == browse.OpGreaterThan {
				return v.Num > target
			}
			return v.Num < target
		case table.TypeDatetime:
			target, _ := table.ParseDatetime(f.Value)
			if f.Op == browse.OpGreaterThan {
				return v.Time.After(target)
			}
			return v.Time.Before(target)
		}
	}
	return false
}

// valueEquals compares a cell against the filter value using the column type
func valueEquals(v table.Value, target string, colType table.ColumnType) bool {
	if v.Null {
		return table.IsNullRaw(target)
	}
	switch colType {
	case table.TypeNumeric:
		t, _ := table.ParseNumeric(target)
		return v.Num == t
	case table.TypeDatetime:
		t, _ := table.ParseDatetime(target)
		return v.Time.Equal(t)
	default:
		return v.Raw == target
	}
}

// rowMatchesSearch matches the lowered term against any text-representable
// field of the row
func rowMatchesSearch(row table.Row, loweredTerm string) bool {
	for _, v := range row {
		if v.Null {
			continue
		}
		if strings.Contains(strings.ToLower(v.Raw), loweredTerm) {
			return true
		}
	}
	return false
}

// lessValue orders two cells of the same column; nulls sort first
func lessValue(a, b table.Value, colType table.ColumnType) bool {
	if a.Null || b.Null {
		return a.Null && !b.Null
	}
	switch colType {
	case table.TypeNumeric:
		return a.Num < b.Num
	case table.TypeDatetime:
		return a.Time.Before(b.Time)
	default:
		return a.Raw < b.Raw
	}
}
