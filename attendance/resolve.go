/*
Package attendance resolves per-meal attendance verdicts and folds them into
monthly summaries.

PURPOSE:
  The decision core of the engine. Given a plan, a day's leave classification,
  a day's holiday classification, and the activation/today boundaries, decide
  whether each (date, meal) pair is Present, Leave, Holiday or NotApplicable.

PRECEDENCE (first match wins):
  1. Before activation, or after today        -> NotApplicable
  2. Activation-day lunch of a dinner start   -> NotApplicable
  3. Meal not included in the plan            -> NotApplicable
  4. Holiday scope covers the meal            -> Holiday
  5. Leave scope covers the meal              -> Leave
  6. Otherwise                                -> Present

  Holiday always dominates Leave: a day that is both a mess holiday and a
  requested leave is reported as Holiday and never counted as an absence.

SEE ALSO:
  - calendar.go: month enumeration and eligibility boundaries
  - aggregate.go: folding verdicts into MonthlySummary
*/
package attendance

import (
	"github.com/warp/mess-engine/mess"
)

// Resolve decides the verdict for a single (date, meal) pair.
func Resolve(plan mess.Plan, date mess.Date, meal mess.Meal, leaveScope, holidayScope mess.MealScope, today mess.Date) mess.MealStatus {
	if !Eligible(plan, date, today) {
		return mess.StatusNotApplicable
	}
	if date.Equal(plan.ActivationDate) && meal == mess.MealLunch && plan.ActivationMeal == mess.MealDinner {
		return mess.StatusNotApplicable
	}
	if !plan.Type.Includes(meal) {
		return mess.StatusNotApplicable
	}
	if holidayScope.Covers(meal) {
		return mess.StatusHoliday
	}
	if leaveScope.Covers(meal) {
		return mess.StatusLeave
	}
	return mess.StatusPresent
}

// ResolveDay resolves both meals of one day.
func ResolveDay(plan mess.Plan, date mess.Date, leaveScope, holidayScope mess.MealScope, today mess.Date) mess.DayVerdict {
	return mess.DayVerdict{
		Date:         date,
		Lunch:        Resolve(plan, date, mess.MealLunch, leaveScope, holidayScope, today),
		Dinner:       Resolve(plan, date, mess.MealDinner, leaveScope, holidayScope, today),
		LeaveScope:   leaveScope,
		HolidayScope: holidayScope,
	}
}

// ResolveMonth resolves every day of the month from raw record snapshots,
// producing the full grid callers render. Days outside the eligible window
// appear as NotApplicable rather than being omitted.
func ResolveMonth(plan mess.Plan, month mess.Month, leaves []mess.LeaveRecord, holidays []mess.HolidayRecord, today mess.Date) []mess.DayVerdict {
	leaveByDay := make(map[mess.Date]mess.MealScope)
	for _, l := range leaves {
		if month.Contains(l.Date) {
			leaveByDay[l.Date] = leaveByDay[l.Date].Union(l.Scope)
		}
	}
	holidayByDay := make(map[mess.Date]mess.MealScope)
	labelByDay := make(map[mess.Date]string)
	for _, h := range holidays {
		if month.Contains(h.Date) {
			holidayByDay[h.Date] = holidayByDay[h.Date].Union(h.Scope)
			if labelByDay[h.Date] == "" {
				labelByDay[h.Date] = h.Label
			}
		}
	}

	var verdicts []mess.DayVerdict
	for _, day := range Days(month) {
		v := ResolveDay(plan, day, leaveByDay[day], holidayByDay[day], today)
		v.HolidayLabel = labelByDay[day]
		verdicts = append(verdicts, v)
	}
	return verdicts
}
