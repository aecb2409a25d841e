package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Schema errors
	ErrSchema             = errors.New("invalid dataset schema")
	ErrEmptyRowStore      = fmt.Errorf("%w: empty row store", ErrSchema)
	ErrInconsistentColumn = fmt.Errorf("%w: inconsistent columns across rows", ErrSchema)

	// Session errors
	ErrNotLoaded = errors.New("no dataset loaded")

	// Browse errors
	ErrInvalidFilter = errors.New("invalid filter")

	// Cleaning errors
	ErrUnsupportedCleaning = errors.New("unsupported cleaning method")
	ErrColumnNotFound      = errors.New("column not found")
	ErrNonNumericColumn    = errors.New("column is not numeric")
)

// SchemaError carries enough detail (column name, offending row index) for
// the caller to report ingestion failures to the user. Row is -1 when the
// failure is not tied to a specific row.
type SchemaError struct {
	Column string
	Row    int
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Row >= 0 {
		return fmt.Sprintf("schema error in column %q at row %d: %s", e.Column, e.Row, e.Reason)
	}
	if e.Column != "" {
		return fmt.Sprintf("schema error in column %q: %s", e.Column, e.Reason)
	}
	return fmt.Sprintf("schema error: %s", e.Reason)
}

func (e *SchemaError) Unwrap() error {
	return ErrSchema
}

// NewSchemaError creates a SchemaError for a specific column and row
func NewSchemaError(column string, row int, reason string) error {
	return &SchemaError{Column: column, Row: row, Reason: reason}
}

// NewFilterError creates an InvalidFilter error with context
func NewFilterError(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidFilter, reason)
}

// NewColumnNotFoundError creates a column lookup failure with context
func NewColumnNotFoundError(column string) error {
	return fmt.Errorf("%w: %q", ErrColumnNotFound, column)
}

// Error checking helpers
func IsSchemaError(err error) bool {
	return errors.Is(err, ErrSchema)
}

func IsNotLoadedError(err error) bool {
	return errors.Is(err, ErrNotLoaded)
}

func IsInvalidFilterError(err error) bool {
	return errors.Is(err, ErrInvalidFilter)
}

func IsUnsupportedCleaningError(err error) bool {
	return errors.Is(err, ErrUnsupportedCleaning)
}
