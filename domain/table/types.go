package table

import (
	"strconv"
	"strings"
	"time"
)

// ColumnType classifies the semantic type of a column
type ColumnType string

const (
	TypeNumeric     ColumnType = "numeric"
	TypeCategorical ColumnType = "categorical"
	TypeDatetime    ColumnType = "datetime"
	TypeText        ColumnType = "text"
)

// Column describes a single column in a dataset. Immutable once inferred
// for a given load; re-inferred only on reload.
type Column struct {
	Name        string     `json:"name"`
	Type        ColumnType `json:"type"`
	Cardinality int        `json:"cardinality"`
	NullCount   int        `json:"null_count"`
}

// Value is a typed cell with deterministic coercion. Raw always holds the
// original string representation; Num and Time are populated according to
// the owning column's type.
type Value struct {
	Raw  string    `json:"raw,omitempty"`
	Num  float64   `json:"num,omitempty"`
	Time time.Time `json:"time,omitempty"`
	Null bool      `json:"null,omitempty"`
}

// Row maps column name to value
type Row map[string]Value

// DatetimeLayouts is the fixed set of common formats tried during datetime
// parsing, in order.
var DatetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"02-01-2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// ParseDatetime attempts the fixed layout set in order
func ParseDatetime(s string) (time.Time, bool) {
	for _, layout := range DatetimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseNumeric parses an integer or floating-point literal, tolerating
// surrounding whitespace and thousands separators.
func ParseNumeric(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ",", "")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// IsNullRaw reports whether a raw cell counts as null
func IsNullRaw(s string) bool {
	return strings.TrimSpace(s) == ""
}

// NewValue coerces a raw string according to the column type
func NewValue(raw string, colType ColumnType) Value {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Value{Null: true}
	}
	v := Value{Raw: raw}
	switch colType {
	case TypeNumeric:
		if f, ok := ParseNumeric(raw); ok {
			v.Num = f
		} else {
			// Unparseable cell in a numeric column stays as raw text and is
			// treated as null for numeric operations
			v.Null = true
		}
	case TypeDatetime:
		if t, ok := ParseDatetime(raw); ok {
			v.Time = t
		} else {
			v.Null = true
		}
	}
	return v
}

// NumericValue creates a Value directly from a float64
func NumericValue(f float64) Value {
	return Value{Raw: strconv.FormatFloat(f, 'g', -1, 64), Num: f}
}
