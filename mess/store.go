/*
store.go - Persistence interfaces the engine consumes

PURPOSE:
  The engine is pure: it takes record snapshots as parameters and never
  touches storage directly. These interfaces are the contract between the
  service layer and the database.

ATOMIC BATCHES:
  CreateLeaves and DeleteLeaves take batches and must be all-or-nothing.
  Two operations depend on this:
    - range leave creation (one record per uncovered day/meal)
    - merged full-day cancellation (the lunch + dinner pair deleted together)
  Partial completion would leave one meal's leave dangling, which the
  reconciliation rules cannot represent.

SNAPSHOT READS:
  All reads are point-in-time snapshots with no isolation guarantee across
  the engine's own multi-step reads. Verdicts are recomputed from the latest
  snapshot on every evaluation, never cached across a mutation.

IMPLEMENTATIONS:
  - store/sqlite: production SQLite
  - mess/store:   in-memory, for tests
*/
package mess

import "context"

// =============================================================================
// RECORD STORE - Leave, holiday and plan persistence
// =============================================================================

// RecordStore persists the three input record streams.
type RecordStore interface {
	// ListLeaves returns every leave record owned by the student, ordered by date.
	ListLeaves(ctx context.Context, studentID string) ([]LeaveRecord, error)

	// ListHolidays returns every holiday declared for the mess, ordered by date.
	ListHolidays(ctx context.Context, messID string) ([]HolidayRecord, error)

	// GetPlan returns the student's plan. ErrNotFound if the student is unknown.
	GetPlan(ctx context.Context, studentID string) (Plan, error)

	// SavePlan creates or replaces a student's plan (activation and approved
	// plan changes only; plans are immutable between those events).
	SavePlan(ctx context.Context, plan Plan) error

	// CreateLeaves persists a batch of leave records atomically.
	CreateLeaves(ctx context.Context, records []LeaveRecord) error

	// DeleteLeaves removes a batch of leave records atomically, by ID.
	DeleteLeaves(ctx context.Context, studentID string, ids []string) error

	// CreateHolidays persists a batch of holiday records atomically.
	CreateHolidays(ctx context.Context, records []HolidayRecord) error

	// DeleteHoliday removes every holiday record for the mess on the date.
	DeleteHoliday(ctx context.Context, messID string, date Date) error
}

// =============================================================================
// PAYMENTS LEDGER
// =============================================================================

// PaymentStore records and lists payments per bill period.
type PaymentStore interface {
	ListPayments(ctx context.Context, studentID string, period Month) ([]Payment, error)
	RecordPayment(ctx context.Context, payment Payment) error
}

// =============================================================================
// SETTINGS
// =============================================================================

// SettingsStore supplies per-mess deadline and rate configuration.
type SettingsStore interface {
	GetMessSettings(ctx context.Context, messID string) (Settings, error)
	SaveMessSettings(ctx context.Context, settings Settings) error
}
