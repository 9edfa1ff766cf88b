/*
errors.go - Centralized error types for the attendance engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers wrap these with additional context; the API layer maps them
  to HTTP status codes.

ERROR CATEGORIES:
  1. Input errors - Rejected synchronously before any state change
  2. Balance errors - Payout exceeds available balance
  3. Store errors - Persistence-level failures and write conflicts

NOT ERRORS:
  Sequence-order mismatches are warnings, never errors. They ride along
  in the reconciliation result and are persisted on the affected day.
  A stamp must never be blocked by a sequence problem.

SEE ALSO:
  - validator.go: Produces SequenceWarning values, not errors
  - tracker.go: Rejects InvalidInput before touching the entry log
*/
package attendance

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidInput is returned for structurally invalid requests:
	// missing correction reason, malformed timestamp, unknown entry type.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmployeeNotFound is returned when the directory has no such employee.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrEntryNotFound is returned when a referenced entry doesn't exist.
	ErrEntryNotFound = errors.New("entry not found")

	// ErrInsufficientBalance is returned when a payout exceeds the balance
	// available at commit time. No partial payout is ever recorded.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrConcurrentModification is returned when another writer holds the
	// per-employee section. Retryable; not a user-visible data error.
	ErrConcurrentModification = errors.New("concurrent modification detected")

	// ErrTrackingDisabled is returned when stamping for an employee whose
	// time tracking is switched off.
	ErrTrackingDisabled = errors.New("time tracking disabled for employee")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidInputError names the offending field so the caller can show
// the specific missing/invalid value.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Reason)
}

func (e *InvalidInputError) Unwrap() error { return ErrInvalidInput }

// InsufficientBalanceError provides details about a payout shortage.
type InsufficientBalanceError struct {
	EmployeeID EmployeeID
	Month      YearMonth
	Available  int // minutes
	Requested  int // minutes
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance for %s in %s: available %dm, requested %dm",
		e.EmployeeID, e.Month, e.Available, e.Requested)
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrInsufficientBalance }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsRetryable returns true if the error might succeed on retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrentModification)
}

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrTrackingDisabled)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrEntryNotFound)
}
