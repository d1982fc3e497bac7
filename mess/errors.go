/*
errors.go - Centralized error types for the engine

PURPOSE:
  All error values in one place for consistency and discoverability.
  Service packages wrap these with additional context; HTTP handlers map
  them to status codes via the classification helpers.

ERROR CATEGORIES:
  1. Validation errors - rejected before any record is written
  2. Gate outcomes    - deterministic refusals (deadline, already covered)
  3. Store errors     - persistence failures

USAGE:
  if errors.Is(err, mess.ErrDeadlinePassed) {
      // routine user-facing refusal, not a system fault
  }
*/
package mess

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidRange is returned when a leave or holiday range's "to" date
	// precedes its "from" date. Rejected before any record is written.
	ErrInvalidRange = errors.New("invalid range: to precedes from")

	// ErrDeadlinePassed is returned when the deadline gate denies a same-day
	// leave action. A user-facing refusal, not a system fault.
	ErrDeadlinePassed = errors.New("deadline passed")

	// ErrAlreadyCovered is returned when a requested leave is a no-op because
	// existing holiday or leave records already fully cover it. Benign, but
	// reported distinctly from success so callers can inform the user.
	ErrAlreadyCovered = errors.New("already covered by existing leave or holiday")

	// ErrNothingToCancel is returned when a cancellation targets a date with
	// no matching leave record.
	ErrNothingToCancel = errors.New("no leave to cancel")

	// ErrInvalidAmount is returned for a non-positive or over-due payment.
	ErrInvalidAmount = errors.New("invalid payment amount")

	// ErrPlanNotActive is returned when an operation requires an activated plan.
	ErrPlanNotActive = errors.New("plan not activated")

	// ErrNotFound is returned when a referenced record doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateRecord is returned when a batch write collides with an
	// existing (owner, date, scope) record. The store enforces this.
	ErrDuplicateRecord = errors.New("duplicate record")

	// ErrPartialBatch is returned when a multi-record batch cannot be applied
	// atomically. A correctly atomic store never surfaces this.
	ErrPartialBatch = errors.New("partial batch failure")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// DeadlineError reports which cutoff denied a same-day action.
type DeadlineError struct {
	Date  Date
	Scope MealScope
	Meal  Meal
	At    TimeOfDay
}

func (e *DeadlineError) Error() string {
	return fmt.Sprintf("deadline passed for %s on %s (%s cutoff %s)", e.Scope, e.Date, e.Meal, e.At)
}

func (e *DeadlineError) Unwrap() error { return ErrDeadlinePassed }

// AmountError reports why a payment amount was rejected.
type AmountError struct {
	Reason string
}

func (e *AmountError) Error() string { return "invalid payment amount: " + e.Reason }

func (e *AmountError) Unwrap() error { return ErrInvalidAmount }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is a routine, expected refusal
// caused by the caller's input or timing rather than a system fault.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrDeadlinePassed) ||
		errors.Is(err, ErrAlreadyCovered) ||
		errors.Is(err, ErrNothingToCancel) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrPlanNotActive) ||
		errors.Is(err, ErrDuplicateRecord)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
