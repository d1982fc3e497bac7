/*
Package mess provides the core types for the mess attendance and billing engine.

PURPOSE:
  This package contains the shared domain vocabulary for reconciling three
  independent, date-indexed record streams - meal-plan enrollment, per-student
  leave requests, and mess-wide holidays - into per-meal attendance verdicts
  and monthly billing figures.

KEY CONCEPTS IN THIS FILE (types.go):
  - Meal/MealScope: which meal(s) of a day a record covers, with set algebra
  - Plan: a student's subscribed coverage and its activation boundary
  - LeaveRecord/HolidayRecord: the raw date-indexed input streams
  - MealStatus/DayVerdict: the resolved attendance output
  - Payment/Settings: billing inputs

DESIGN PRINCIPLES:
  1. Purity: verdicts are derived, never stored; recomputed from snapshots
  2. Precision: money uses decimal.Decimal, never float64
  3. Meal granularity: leave is always stored per meal; full-day intent is
     decomposed on write and recomposed only for display

SEE ALSO:
  - time.go: Date and Month day-granular time types
  - errors.go: Sentinel errors and outcome classification
  - store.go: Persistence interfaces the engine consumes
*/
package mess

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MEALS AND SCOPES
// =============================================================================

// Meal identifies one of the two meals served per day.
type Meal string

const (
	MealLunch  Meal = "lunch"
	MealDinner Meal = "dinner"
)

// Meals lists both meals in serving order.
func Meals() []Meal { return []Meal{MealLunch, MealDinner} }

// MealScope describes which meals of a single day a record covers.
// ScopeNone is the zero/absence value used by classification results.
type MealScope string

const (
	ScopeNone       MealScope = "none"
	ScopeLunchOnly  MealScope = "lunch_only"
	ScopeDinnerOnly MealScope = "dinner_only"
	ScopeFullDay    MealScope = "full_day"
)

// ParseMealScope parses a wire value into a MealScope.
func ParseMealScope(s string) (MealScope, error) {
	switch MealScope(s) {
	case ScopeLunchOnly, ScopeDinnerOnly, ScopeFullDay, ScopeNone:
		return MealScope(s), nil
	}
	return ScopeNone, fmt.Errorf("invalid meal scope %q", s)
}

// Covers reports whether the scope includes the given meal.
func (s MealScope) Covers(m Meal) bool {
	switch s {
	case ScopeFullDay:
		return true
	case ScopeLunchOnly:
		return m == MealLunch
	case ScopeDinnerOnly:
		return m == MealDinner
	}
	return false
}

// IsZero reports whether the scope covers nothing.
func (s MealScope) IsZero() bool { return s == ScopeNone || s == "" }

// Meals returns the individual meals the scope covers.
func (s MealScope) Meals() []Meal {
	var meals []Meal
	for _, m := range Meals() {
		if s.Covers(m) {
			meals = append(meals, m)
		}
	}
	return meals
}

// scopeOf builds a MealScope from per-meal membership.
func scopeOf(lunch, dinner bool) MealScope {
	switch {
	case lunch && dinner:
		return ScopeFullDay
	case lunch:
		return ScopeLunchOnly
	case dinner:
		return ScopeDinnerOnly
	}
	return ScopeNone
}

// Union returns the scope covering every meal covered by either operand.
func (s MealScope) Union(o MealScope) MealScope {
	return scopeOf(s.Covers(MealLunch) || o.Covers(MealLunch),
		s.Covers(MealDinner) || o.Covers(MealDinner))
}

// Intersect returns the scope covering only meals covered by both operands.
func (s MealScope) Intersect(o MealScope) MealScope {
	return scopeOf(s.Covers(MealLunch) && o.Covers(MealLunch),
		s.Covers(MealDinner) && o.Covers(MealDinner))
}

// Minus returns the meals of s not covered by o.
// This is the coverage subtraction used when an applied leave overlaps an
// existing holiday or leave: only the uncovered meals get written.
func (s MealScope) Minus(o MealScope) MealScope {
	return scopeOf(s.Covers(MealLunch) && !o.Covers(MealLunch),
		s.Covers(MealDinner) && !o.Covers(MealDinner))
}

// CoversAll reports whether s covers every meal o covers.
func (s MealScope) CoversAll(o MealScope) bool {
	return o.Minus(s).IsZero()
}

// =============================================================================
// PLAN - A student's subscribed meal coverage
// =============================================================================

// PlanType is the subscribed coverage of a plan.
type PlanType string

const (
	PlanFullDay    PlanType = "full_day"
	PlanLunchOnly  PlanType = "lunch_only"
	PlanDinnerOnly PlanType = "dinner_only"
)

// Scope converts the plan type to its equivalent meal scope.
func (p PlanType) Scope() MealScope {
	switch p {
	case PlanFullDay:
		return ScopeFullDay
	case PlanLunchOnly:
		return ScopeLunchOnly
	case PlanDinnerOnly:
		return ScopeDinnerOnly
	}
	return ScopeNone
}

// Includes reports whether the plan covers the given meal at all.
func (p PlanType) Includes(m Meal) bool { return p.Scope().Covers(m) }

// Plan is a student's meal subscription. A zero ActivationDate means the plan
// was never activated; every verdict is then NotApplicable.
//
// ActivationMeal is only meaningful on ActivationDate itself: a plan activated
// "from dinner" leaves the lunch of its own activation day NotApplicable.
type Plan struct {
	StudentID      string
	MessID         string
	Type           PlanType
	ActivationDate Date
	ActivationMeal Meal
}

// Activated reports whether the plan ever started.
func (p Plan) Activated() bool { return !p.ActivationDate.IsZero() }

// =============================================================================
// RECORD STREAMS - The raw inputs
// =============================================================================

// LeaveRecord is a student-owned leave for one date.
// Leave is stored at meal granularity: a full-day application is decomposed
// into a lunch_only + dinner_only pair before it ever reaches the store, so a
// persisted Scope of ScopeFullDay should not occur (the classifier tolerates
// one anyway). Records are never mutated; cancellation is a delete.
type LeaveRecord struct {
	ID        string
	StudentID string
	Date      Date
	Scope     MealScope
	Reason    string
	CreatedAt time.Time
}

// HolidayRecord is an admin-declared mess-wide closure for one date.
// Shared by every student of the mess; not subject to any deadline.
type HolidayRecord struct {
	ID     string
	MessID string
	Date   Date
	Scope  MealScope
	Label  string
}

// =============================================================================
// VERDICTS - The derived outputs (never persisted)
// =============================================================================

// MealStatus is the resolved attendance status of one (date, meal) pair.
type MealStatus string

const (
	StatusNotApplicable MealStatus = "not_applicable"
	StatusHoliday       MealStatus = "holiday"
	StatusLeave         MealStatus = "leave"
	StatusPresent       MealStatus = "present"
)

// DayVerdict carries both meal verdicts of one day plus the input scopes that
// produced them, so callers can render a full month grid.
type DayVerdict struct {
	Date         Date
	Lunch        MealStatus
	Dinner       MealStatus
	LeaveScope   MealScope
	HolidayScope MealScope
	HolidayLabel string
}

// Status returns the verdict for one meal of the day.
func (d DayVerdict) Status(m Meal) MealStatus {
	if m == MealLunch {
		return d.Lunch
	}
	return d.Dinner
}

// MonthlySummary is the fold of a month of day verdicts.
// AttendancePercent is nil when no day was countable.
type MonthlySummary struct {
	PresentDays       int
	AbsentDays        int
	HolidayCount      int
	TotalMealsTaken   int
	AttendancePercent *int
}

// =============================================================================
// BILLING INPUTS
// =============================================================================

// Payment is one recorded payment against a bill period.
type Payment struct {
	ID        string
	StudentID string
	Period    Month
	Amount    decimal.Decimal
	PaidAt    time.Time
}

// Bill is the derived billing snapshot for one (student, period).
type Bill struct {
	StudentID   string
	Period      Month
	MealsTaken  int
	RatePerMeal decimal.Decimal
	TotalAmount decimal.Decimal
	PaidAmount  decimal.Decimal
	DueAmount   decimal.Decimal
}

// =============================================================================
// MESS SETTINGS - Deadlines and rate
// =============================================================================

// TimeOfDay is a wall-clock "HH:MM" cutoff.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q", s)
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q", s)
	}
	return TimeOfDay{Hour: h, Minute: m}, nil
}

// On anchors the cutoff on a calendar day, in the given location.
func (t TimeOfDay) On(d Date, loc *time.Location) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour, t.Minute, 0, 0, loc)
}

func (t TimeOfDay) String() string { return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute) }

// Settings holds the per-mess configuration the engine consumes.
type Settings struct {
	MessID         string
	LunchDeadline  TimeOfDay
	DinnerDeadline TimeOfDay
	ChargePerMeal  decimal.Decimal
}

// =============================================================================
// CLOCK - Injected time source
// =============================================================================

// Clock supplies wall-clock time. Injected rather than read directly so the
// deadline gate and calendar boundaries are testable with fixed times.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real time.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant. For tests.
type FixedClock struct{ T time.Time }

func (c FixedClock) Now() time.Time { return c.T }
