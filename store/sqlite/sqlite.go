/*
Package sqlite provides the SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements mess.RecordStore, mess.PaymentStore and mess.SettingsStore using
  SQLite. In production the same patterns apply to PostgreSQL - only minor
  SQL dialect differences.

ATOMIC BATCHES:
  CreateLeaves, DeleteLeaves and CreateHolidays run inside a database
  transaction. Either every record of a batch lands or none does, so a range
  application or a merged full-day cancellation can never leave one meal's
  record dangling.

KEY TABLES:
  leaves:        Per-meal leave records (never full_day rows; writes are
                 decomposed before they reach the store)
  holidays:      Mess-wide closures, any scope
  plans:         One row per student
  payments:      Per-period payment ledger
  mess_settings: Deadlines and per-meal rate

INDEXES:
  idx_unique_leave enforces at most one record per (student, date, scope);
  a colliding insert aborts the whole batch with ErrDuplicateRecord.

WAL MODE:
  SQLite is opened with WAL for better concurrency: multiple readers don't
  block, single writer at a time.

SEE ALSO:
  - mess/store.go: interface definitions
  - mess/store/memory.go: in-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/mess-engine/mess"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Leave records (meal granularity; cancellation is a delete)
	CREATE TABLE IF NOT EXISTS leaves (
		id TEXT PRIMARY KEY,
		student_id TEXT NOT NULL,
		date TEXT NOT NULL,
		scope TEXT NOT NULL,
		reason TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_leaves_student_date
		ON leaves(student_id, date);

	-- At most one record per (student, date, scope); a full_day application
	-- is stored as a lunch_only + dinner_only pair
	CREATE UNIQUE INDEX IF NOT EXISTS idx_unique_leave
		ON leaves(student_id, date, scope);

	-- Holidays (mess-wide closures)
	CREATE TABLE IF NOT EXISTS holidays (
		id TEXT PRIMARY KEY,
		mess_id TEXT NOT NULL,
		date TEXT NOT NULL,
		scope TEXT NOT NULL,
		label TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_holidays_mess_date
		ON holidays(mess_id, date);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_unique_holiday
		ON holidays(mess_id, date, scope);

	-- Plans (one per student; replaced on activation or approved change)
	CREATE TABLE IF NOT EXISTS plans (
		student_id TEXT PRIMARY KEY,
		mess_id TEXT NOT NULL,
		plan_type TEXT NOT NULL,
		activation_date TEXT,
		activation_meal TEXT
	);

	-- Payments (per bill period)
	CREATE TABLE IF NOT EXISTS payments (
		id TEXT PRIMARY KEY,
		student_id TEXT NOT NULL,
		period TEXT NOT NULL,
		amount TEXT NOT NULL,
		paid_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_payments_student_period
		ON payments(student_id, period);

	-- Mess settings (deadlines and rate)
	CREATE TABLE IF NOT EXISTS mess_settings (
		mess_id TEXT PRIMARY KEY,
		lunch_deadline TEXT NOT NULL,
		dinner_deadline TEXT NOT NULL,
		charge_per_meal TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// RECORD STORE - Leaves
// =============================================================================

func (s *Store) ListLeaves(ctx context.Context, studentID string) ([]mess.LeaveRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, student_id, date, scope, reason, created_at
		FROM leaves WHERE student_id = ? ORDER BY date`, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaves: %w", err)
	}
	defer rows.Close()

	var records []mess.LeaveRecord
	for rows.Next() {
		var r mess.LeaveRecord
		var date, scope, createdAt string
		if err := rows.Scan(&r.ID, &r.StudentID, &date, &scope, &r.Reason, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan leave: %w", err)
		}
		if r.Date, err = mess.ParseDate(date); err != nil {
			return nil, err
		}
		r.Scope = mess.MealScope(scope)
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *Store) CreateLeaves(ctx context.Context, records []mess.LeaveRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	for _, r := range records {
		_, err := sqlTx.ExecContext(ctx, `
			INSERT INTO leaves (id, student_id, date, scope, reason, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			r.ID, r.StudentID, r.Date.String(), string(r.Scope), r.Reason,
			r.CreatedAt.UTC().Format(time.RFC3339))
		if err != nil {
			if isUniqueConstraintError(err) {
				return mess.ErrDuplicateRecord
			}
			return fmt.Errorf("failed to insert leave: %w", err)
		}
	}
	return sqlTx.Commit()
}

func (s *Store) DeleteLeaves(ctx context.Context, studentID string, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	for _, id := range ids {
		res, err := sqlTx.ExecContext(ctx,
			`DELETE FROM leaves WHERE id = ? AND student_id = ?`, id, studentID)
		if err != nil {
			return fmt.Errorf("failed to delete leave: %w", err)
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			// Missing row aborts the whole batch; the pair stays intact.
			return mess.ErrNotFound
		}
	}
	return sqlTx.Commit()
}

// =============================================================================
// RECORD STORE - Holidays
// =============================================================================

func (s *Store) ListHolidays(ctx context.Context, messID string) ([]mess.HolidayRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, mess_id, date, scope, label
		FROM holidays WHERE mess_id = ? ORDER BY date`, messID)
	if err != nil {
		return nil, fmt.Errorf("failed to query holidays: %w", err)
	}
	defer rows.Close()

	var records []mess.HolidayRecord
	for rows.Next() {
		var r mess.HolidayRecord
		var date, scope string
		if err := rows.Scan(&r.ID, &r.MessID, &date, &scope, &r.Label); err != nil {
			return nil, fmt.Errorf("failed to scan holiday: %w", err)
		}
		if r.Date, err = mess.ParseDate(date); err != nil {
			return nil, err
		}
		r.Scope = mess.MealScope(scope)
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *Store) CreateHolidays(ctx context.Context, records []mess.HolidayRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	for _, r := range records {
		_, err := sqlTx.ExecContext(ctx, `
			INSERT INTO holidays (id, mess_id, date, scope, label)
			VALUES (?, ?, ?, ?, ?)`,
			r.ID, r.MessID, r.Date.String(), string(r.Scope), r.Label)
		if err != nil {
			if isUniqueConstraintError(err) {
				return mess.ErrDuplicateRecord
			}
			return fmt.Errorf("failed to insert holiday: %w", err)
		}
	}
	return sqlTx.Commit()
}

func (s *Store) DeleteHoliday(ctx context.Context, messID string, date mess.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM holidays WHERE mess_id = ? AND date = ?`, messID, date.String())
	if err != nil {
		return fmt.Errorf("failed to delete holiday: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return mess.ErrNotFound
	}
	return nil
}

// =============================================================================
// RECORD STORE - Plans
// =============================================================================

func (s *Store) GetPlan(ctx context.Context, studentID string) (mess.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT student_id, mess_id, plan_type, activation_date, activation_meal
		FROM plans WHERE student_id = ?`, studentID)

	var p mess.Plan
	var planType string
	var activationDate, activationMeal sql.NullString
	err := row.Scan(&p.StudentID, &p.MessID, &planType, &activationDate, &activationMeal)
	if err == sql.ErrNoRows {
		return mess.Plan{}, mess.ErrNotFound
	}
	if err != nil {
		return mess.Plan{}, fmt.Errorf("failed to scan plan: %w", err)
	}
	p.Type = mess.PlanType(planType)
	if activationDate.Valid && activationDate.String != "" {
		if p.ActivationDate, err = mess.ParseDate(activationDate.String); err != nil {
			return mess.Plan{}, err
		}
	}
	if activationMeal.Valid {
		p.ActivationMeal = mess.Meal(activationMeal.String)
	}
	return p, nil
}

func (s *Store) SavePlan(ctx context.Context, plan mess.Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	activationDate := ""
	if plan.Activated() {
		activationDate = plan.ActivationDate.String()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO plans (student_id, mess_id, plan_type, activation_date, activation_meal)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(student_id) DO UPDATE SET
			mess_id = excluded.mess_id,
			plan_type = excluded.plan_type,
			activation_date = excluded.activation_date,
			activation_meal = excluded.activation_meal`,
		plan.StudentID, plan.MessID, string(plan.Type), activationDate, string(plan.ActivationMeal))
	if err != nil {
		return fmt.Errorf("failed to save plan: %w", err)
	}
	return nil
}

// =============================================================================
// PAYMENTS
// =============================================================================

func (s *Store) ListPayments(ctx context.Context, studentID string, period mess.Month) ([]mess.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, student_id, period, amount, paid_at
		FROM payments WHERE student_id = ? AND period = ? ORDER BY paid_at`,
		studentID, period.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	var payments []mess.Payment
	for rows.Next() {
		var p mess.Payment
		var periodStr, amount, paidAt string
		if err := rows.Scan(&p.ID, &p.StudentID, &periodStr, &amount, &paidAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		if p.Period, err = mess.ParseMonth(periodStr); err != nil {
			return nil, err
		}
		if p.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("invalid payment amount %q: %w", amount, err)
		}
		p.PaidAt, _ = time.Parse(time.RFC3339, paidAt)
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (s *Store) RecordPayment(ctx context.Context, payment mess.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payments (id, student_id, period, amount, paid_at)
		VALUES (?, ?, ?, ?, ?)`,
		payment.ID, payment.StudentID, payment.Period.String(),
		payment.Amount.String(), payment.PaidAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to record payment: %w", err)
	}
	return nil
}

// =============================================================================
// SETTINGS
// =============================================================================

func (s *Store) GetMessSettings(ctx context.Context, messID string) (mess.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT mess_id, lunch_deadline, dinner_deadline, charge_per_meal
		FROM mess_settings WHERE mess_id = ?`, messID)

	var settings mess.Settings
	var lunch, dinner, charge string
	err := row.Scan(&settings.MessID, &lunch, &dinner, &charge)
	if err == sql.ErrNoRows {
		return mess.Settings{}, mess.ErrNotFound
	}
	if err != nil {
		return mess.Settings{}, fmt.Errorf("failed to scan settings: %w", err)
	}
	if settings.LunchDeadline, err = mess.ParseTimeOfDay(lunch); err != nil {
		return mess.Settings{}, err
	}
	if settings.DinnerDeadline, err = mess.ParseTimeOfDay(dinner); err != nil {
		return mess.Settings{}, err
	}
	if settings.ChargePerMeal, err = decimal.NewFromString(charge); err != nil {
		return mess.Settings{}, fmt.Errorf("invalid charge per meal %q: %w", charge, err)
	}
	return settings, nil
}

func (s *Store) SaveMessSettings(ctx context.Context, settings mess.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO mess_settings (mess_id, lunch_deadline, dinner_deadline, charge_per_meal)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(mess_id) DO UPDATE SET
			lunch_deadline = excluded.lunch_deadline,
			dinner_deadline = excluded.dinner_deadline,
			charge_per_meal = excluded.charge_per_meal`,
		settings.MessID, settings.LunchDeadline.String(), settings.DinnerDeadline.String(),
		settings.ChargePerMeal.String())
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
