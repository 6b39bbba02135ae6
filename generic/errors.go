/*
errors.go - Centralized error types for the rules engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Domain packages wrap these errors with additional context.

ERROR CATEGORIES:
  1. Invariant errors - a value that must never exist (fatal to construction)
  2. Range errors - a caller passed an inverted date range (fatal to the call)
  3. Lookup errors - a referenced budget, group, category or currency is missing

  Business-rule failures (missing group, overlapping rules) are NOT errors:
  they are collected into a budget.Report so every problem surfaces at once.

USAGE:
  if errors.Is(err, generic.ErrInvalidRange) {
      // caller bug: end before begin
  }

SEE ALSO:
  - budget/rule.go: Returns InvariantError and RangeError
  - budget/validate.go: Non-fatal validation report
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvariantViolation is returned when a value cannot be constructed
	// because one of its structural invariants fails.
	ErrInvariantViolation = errors.New("invariant violation")

	// ErrInvalidRange is returned when a date range ends before it starts.
	ErrInvalidRange = errors.New("invalid range: end before begin")

	// ErrInvalidPeriod is returned for a recurrence period outside day/week/month/year.
	ErrInvalidPeriod = errors.New("invalid recurrence period")

	// ErrNegativeOccurrences signals a defect in occurrence counting. It is
	// never expected; seeing it means the counting formulas disagree.
	ErrNegativeOccurrences = errors.New("negative occurrence count")

	// ErrUnknownCurrency is returned when a currency code is not registered.
	ErrUnknownCurrency = errors.New("unknown currency")

	// ErrAutomaticCategory is returned when a rule-based computation is asked
	// of a category whose amount is derived elsewhere.
	ErrAutomaticCategory = errors.New("category is automatic")

	// ErrBudgetNotFound is returned when a referenced budget doesn't exist.
	ErrBudgetNotFound = errors.New("budget not found")

	// ErrGroupNotFound is returned when a referenced category group doesn't exist.
	ErrGroupNotFound = errors.New("category group not found")

	// ErrCategoryNotFound is returned when a referenced category doesn't exist.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrAlreadyExists is returned when an explicit ID is already taken.
	ErrAlreadyExists = errors.New("already exists")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvariantError names the field that broke construction.
type InvariantError struct {
	Field  string
	Reason string
	Err    error // optional cause, e.g. ErrUnknownCurrency
}

func (e *InvariantError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s: %s: %v", e.Field, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Unwrap exposes both the sentinel and the cause.
func (e *InvariantError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvariantViolation, e.Err}
	}
	return []error{ErrInvariantViolation}
}

// NewInvariantError is shorthand for a cause-less InvariantError.
func NewInvariantError(field, format string, args ...any) *InvariantError {
	return &InvariantError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// RangeError carries the offending bounds of an inverted range.
type RangeError struct {
	Begin CalendarDate
	End   CalendarDate
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("invalid range: end %s before begin %s", e.End, e.Begin)
}

func (e *RangeError) Unwrap() error {
	return ErrInvalidRange
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvariantViolation) ||
		errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrUnknownCurrency) ||
		errors.Is(err, ErrAutomaticCategory)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrBudgetNotFound) ||
		errors.Is(err, ErrGroupNotFound) ||
		errors.Is(err, ErrCategoryNotFound)
}
