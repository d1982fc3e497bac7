package leave

import "github.com/warp/mess-engine/mess"

// =============================================================================
// RANGE EXPANSION - From/to application to per-day scopes
// =============================================================================

// DayScope is one day of an expanded range application.
type DayScope struct {
	Date  mess.Date
	Scope mess.MealScope
}

// ExpandRange decomposes a from/to leave application into per-day scopes.
// The first day honors a possibly-partial start scope, the last day a
// possibly-partial end scope, and every day strictly between the bounds is
// always full_day. A single-day range takes the intersection of both bounds.
//
// Returns ErrInvalidRange when to precedes from. Scopes of ScopeNone default
// to full_day.
func ExpandRange(from, to mess.Date, startScope, endScope mess.MealScope) ([]DayScope, error) {
	if to.Before(from) {
		return nil, mess.ErrInvalidRange
	}
	if startScope.IsZero() {
		startScope = mess.ScopeFullDay
	}
	if endScope.IsZero() {
		endScope = mess.ScopeFullDay
	}

	if from.Equal(to) {
		return []DayScope{{Date: from, Scope: startScope.Intersect(endScope)}}, nil
	}

	var days []DayScope
	for d := from; d.BeforeOrEqual(to); d = d.AddDays(1) {
		scope := mess.ScopeFullDay
		switch {
		case d.Equal(from):
			scope = startScope
		case d.Equal(to):
			scope = endScope
		}
		days = append(days, DayScope{Date: d, Scope: scope})
	}
	return days, nil
}

// Uncovered subtracts existing holiday and leave coverage from a requested
// scope. A day already fully covered yields ScopeNone (skip, no duplicate
// record); a partially covered day yields only the uncovered meal(s).
func Uncovered(requested, holidayScope, leaveScope mess.MealScope) mess.MealScope {
	return requested.Minus(holidayScope.Union(leaveScope))
}

// StorageScopes decomposes a day scope into the meal-level scopes actually
// written to the store: full-day intent always becomes an independent
// lunch_only + dinner_only pair, never a stored full_day record.
func StorageScopes(scope mess.MealScope) []mess.MealScope {
	switch scope {
	case mess.ScopeFullDay:
		return []mess.MealScope{mess.ScopeLunchOnly, mess.ScopeDinnerOnly}
	case mess.ScopeLunchOnly, mess.ScopeDinnerOnly:
		return []mess.MealScope{scope}
	}
	return nil
}
