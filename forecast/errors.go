/*
errors.go - Centralized error types for the forecast engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  The core fails fast with a typed error and never hides a failure; the
  presentation layer decides how to display it.

ERROR CATEGORIES:
  1. NotFound     - No reference rows for the requested material/OEM
  2. Schema       - Required column missing or unparsable numeric field
  3. InvalidRange - Input outside its allowed range, rejected before simulating
  4. IOFailure    - Notification log could not be opened or appended

USAGE:
  if errors.Is(err, forecast.ErrNotFound) {
      // 404
  }

  var schemaErr *forecast.SchemaError
  if errors.As(err, &schemaErr) {
      fmt.Println(schemaErr.Column)
  }

SEE ALSO:
  - tables/loader.go: Produces SchemaError
  - store/csvlog/csvlog.go: Produces IOFailure
*/
package forecast

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound is returned when no reference rows match a lookup.
	ErrNotFound = errors.New("not found")

	// ErrSchema is returned when a reference table is malformed.
	ErrSchema = errors.New("schema error")

	// ErrInvalidRange is returned when an input is outside its allowed range.
	ErrInvalidRange = errors.New("invalid range")

	// ErrIOFailure is returned when the notification log cannot be written.
	// The caller may retry once; the core does not loop.
	ErrIOFailure = errors.New("io failure")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// NotFoundError names the lookup that matched nothing.
type NotFoundError struct {
	Kind       string // "yearly parameters", "reliability", "lead time", "material"
	MaterialID MaterialID
	OEM        OEM
	Year       int // set when a specific year was requested
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("%s not found for material %s", e.Kind, e.MaterialID)
	if e.OEM != "" {
		msg += fmt.Sprintf(" (oem %s)", e.OEM)
	}
	if e.Year != 0 {
		msg += fmt.Sprintf(" in year %d", e.Year)
	}
	return msg
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// SchemaError describes a missing column or an unparsable value.
// Row is 1-based including the header; zero means the header itself.
type SchemaError struct {
	Source string
	Column string
	Row    int
	Value  string
	Reason string
}

func (e *SchemaError) Error() string {
	msg := e.Source
	if e.Row > 0 {
		msg += fmt.Sprintf(" row %d", e.Row)
	}
	msg += ": " + e.Reason
	if e.Column != "" {
		msg += fmt.Sprintf(" %q", e.Column)
	}
	if e.Value != "" {
		msg += fmt.Sprintf(" (value %q)", e.Value)
	}
	return msg
}

func (e *SchemaError) Unwrap() error { return ErrSchema }

// InvalidRangeError names the offending field and its value.
type InvalidRangeError struct {
	Field string
	Value float64
	Want  string
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("%s = %v out of range: want %s", e.Field, e.Value, e.Want)
}

func (e *InvalidRangeError) Unwrap() error { return ErrInvalidRange }

// IOFailure wraps the underlying filesystem or database error.
type IOFailure struct {
	Op   string
	Path string
	Err  error
}

func (e *IOFailure) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOFailure) Unwrap() []error { return []error{ErrIOFailure, e.Err} }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates missing reference data.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidRange)
}

// IsRetryable returns true if the caller may retry the operation once.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrIOFailure)
}
