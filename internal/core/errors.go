package core

import (
	"errors"
	"fmt"
)

var (
	// ErrDatasetNotFound is returned when no dataset is registered under a key.
	ErrDatasetNotFound = errors.New("dataset not found")

	// ErrEmptyWorkbook is wrapped by MalformedWorkbookError when the first
	// sheet has no used range.
	ErrEmptyWorkbook = errors.New("empty workbook")
)

// ConfigurationError reports an invalid mapping, schema or option.
// It is detected before any workbook work starts.
type ConfigurationError struct {
	Setting string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Setting, e.Reason)
}

// ConversionError reports a cell that could not be turned into its field's
// type during import. Row is the 1-based sheet row.
type ConversionError struct {
	Row    int
	Column string
	Field  string
	Value  string
	Err    error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("row %d, column %q (field %s): value %q: %v", e.Row, e.Column, e.Field, e.Value, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// MalformedWorkbookError reports input that is not a readable workbook or
// has nothing to read.
type MalformedWorkbookError struct {
	Err error
}

func (e *MalformedWorkbookError) Error() string {
	return fmt.Sprintf("malformed workbook: %v", e.Err)
}

func (e *MalformedWorkbookError) Unwrap() error { return e.Err }

// ValidationError reports an imported record that failed struct validation.
type ValidationError struct {
	Row int
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("row %d: validation failed: %v", e.Row, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func configErr(setting, format string, args ...any) error {
	return &ConfigurationError{Setting: setting, Reason: fmt.Sprintf(format, args...)}
}
