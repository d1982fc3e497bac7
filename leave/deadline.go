package leave

import (
	"fmt"
	"time"

	"github.com/warp/mess-engine/mess"
)

// =============================================================================
// DEADLINE GATE - Same-day cutoff enforcement
// =============================================================================

// Gate decides whether a leave action (filing OR cancellation - the gate is
// symmetric) is still permitted for a date. Past dates are always denied,
// future dates always allowed; for today each meal has an HH:MM cutoff and a
// full_day scope is blocked once either cutoff has passed.
//
// Deadlines only get stricter through the day: once Check denies at t1 it
// denies for every t2 > t1 on the same date.
type Gate struct {
	LunchDeadline  mess.TimeOfDay
	DinnerDeadline mess.TimeOfDay
}

// NewGate builds a gate from mess settings.
func NewGate(s mess.Settings) Gate {
	return Gate{LunchDeadline: s.LunchDeadline, DinnerDeadline: s.DinnerDeadline}
}

// Allowed reports whether the action is still permitted at the instant now.
func (g Gate) Allowed(date mess.Date, scope mess.MealScope, now time.Time) bool {
	today := mess.DateOf(now)
	if date.Before(today) {
		return false
	}
	if date.After(today) {
		return true
	}
	if scope.Covers(mess.MealLunch) && !now.Before(g.LunchDeadline.On(date, now.Location())) {
		return false
	}
	if scope.Covers(mess.MealDinner) && !now.Before(g.DinnerDeadline.On(date, now.Location())) {
		return false
	}
	return true
}

// Check is Allowed with a structured error naming the cutoff that denied.
func (g Gate) Check(date mess.Date, scope mess.MealScope, now time.Time) error {
	today := mess.DateOf(now)
	if date.Before(today) {
		return fmt.Errorf("%w: %s is in the past", mess.ErrDeadlinePassed, date)
	}
	if date.After(today) {
		return nil
	}
	if scope.Covers(mess.MealLunch) && !now.Before(g.LunchDeadline.On(date, now.Location())) {
		return &mess.DeadlineError{Date: date, Scope: scope, Meal: mess.MealLunch, At: g.LunchDeadline}
	}
	if scope.Covers(mess.MealDinner) && !now.Before(g.DinnerDeadline.On(date, now.Location())) {
		return &mess.DeadlineError{Date: date, Scope: scope, Meal: mess.MealDinner, At: g.DinnerDeadline}
	}
	return nil
}
