package attendance

import "github.com/warp/mess-engine/mess"

// Days enumerates every calendar day of the month in order. The full month is
// always produced; ineligible days resolve to NotApplicable so callers can
// still render a complete grid.
func Days(month mess.Month) []mess.Date { return month.Days() }

// Eligible reports whether a day is inside the evaluation window:
// on/after plan activation and on/before today. A plan that was never
// activated has no eligible days.
func Eligible(plan mess.Plan, day, today mess.Date) bool {
	if !plan.Activated() {
		return false
	}
	return day.AfterOrEqual(plan.ActivationDate) && day.BeforeOrEqual(today)
}

// EligibleDays filters the month down to the evaluation window.
func EligibleDays(plan mess.Plan, month mess.Month, today mess.Date) []mess.Date {
	var days []mess.Date
	for _, d := range Days(month) {
		if Eligible(plan, d, today) {
			days = append(days, d)
		}
	}
	return days
}
