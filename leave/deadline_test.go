package leave_test

import (
	"errors"
	"testing"
	"time"

	"github.com/warp/mess-engine/leave"
	"github.com/warp/mess-engine/mess"
)

func testGate() leave.Gate {
	return leave.Gate{
		LunchDeadline:  mess.TimeOfDay{Hour: 10},
		DinnerDeadline: mess.TimeOfDay{Hour: 18},
	}
}

func at(day, hour, minute int) time.Time {
	return time.Date(2026, time.April, day, hour, minute, 0, 0, time.UTC)
}

// =============================================================================
// DATE BOUNDARIES
// =============================================================================

func TestGate_PastDateAlwaysDenied(t *testing.T) {
	g := testGate()
	if g.Allowed(date(4), mess.ScopeLunchOnly, at(5, 0, 1)) {
		t.Error("retroactive action should be denied even just after midnight")
	}
}

func TestGate_FutureDateAlwaysAllowed(t *testing.T) {
	g := testGate()
	if !g.Allowed(date(6), mess.ScopeFullDay, at(5, 23, 59)) {
		t.Error("future date should be allowed regardless of time")
	}
}

// =============================================================================
// SAME-DAY CUTOFFS
// =============================================================================

func TestGate_FullDayBlockedByEitherCutoff(t *testing.T) {
	// GIVEN: deadlines lunch=10:00, dinner=18:00; now 10:05 same day
	// WHEN: applying a full_day leave for today
	// THEN: denied because the lunch cutoff passed, even though dinner has not

	g := testGate()
	now := at(5, 10, 5)

	if g.Allowed(date(5), mess.ScopeFullDay, now) {
		t.Error("full_day should be blocked once the lunch cutoff passes")
	}
	err := g.Check(date(5), mess.ScopeFullDay, now)
	if !errors.Is(err, mess.ErrDeadlinePassed) {
		t.Fatalf("got %v, want ErrDeadlinePassed", err)
	}
}

func TestGate_DinnerStillOpenAfterLunchCutoff(t *testing.T) {
	g := testGate()
	now := at(5, 10, 5)

	if !g.Allowed(date(5), mess.ScopeDinnerOnly, now) {
		t.Error("dinner_only should still be allowed at 10:05")
	}
	if g.Allowed(date(5), mess.ScopeLunchOnly, now) {
		t.Error("lunch_only should be denied at 10:05")
	}
}

func TestGate_ExactCutoffIsDenied(t *testing.T) {
	g := testGate()
	if g.Allowed(date(5), mess.ScopeLunchOnly, at(5, 10, 0)) {
		t.Error("action at exactly the cutoff should be denied")
	}
	if !g.Allowed(date(5), mess.ScopeLunchOnly, at(5, 9, 59)) {
		t.Error("action one minute before the cutoff should be allowed")
	}
}

// =============================================================================
// MONOTONICITY - deadlines only get stricter through the day
// =============================================================================

func TestGate_Monotone(t *testing.T) {
	// If the gate denies at t1, it denies at every t2 > t1 on the same date.

	g := testGate()
	scopes := []mess.MealScope{mess.ScopeLunchOnly, mess.ScopeDinnerOnly, mess.ScopeFullDay}

	for _, scope := range scopes {
		denied := false
		for minutes := 0; minutes < 24*60; minutes += 7 {
			now := at(5, minutes/60, minutes%60)
			allowed := g.Allowed(date(5), scope, now)
			if denied && allowed {
				t.Fatalf("%s: re-allowed at %02d:%02d after an earlier denial",
					scope, minutes/60, minutes%60)
			}
			if !allowed {
				denied = true
			}
		}
	}
}
