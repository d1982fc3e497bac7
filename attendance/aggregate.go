package attendance

import (
	"math"

	"github.com/warp/mess-engine/mess"
)

// Aggregate folds a month of day verdicts into summary counters.
//
// Day counting rules:
//   - A day with no applicable meal (all NotApplicable) is skipped entirely.
//   - A day whose applicable meals are all Holiday counts only toward
//     HolidayCount; holidays are billing-neutral and excluded from the
//     present/absent denominator.
//   - A counted day with any Leave meal is an absent day, even when the other
//     meal was attended. Billing stays meal-granular through TotalMealsTaken,
//     so the attended meal is still billed.
//   - Every other counted day is a present day.
//
// TotalMealsTaken counts individual Present meal verdicts, not days: a
// full-day present day contributes 2, a half-day present day contributes 1.
func Aggregate(verdicts []mess.DayVerdict) mess.MonthlySummary {
	var s mess.MonthlySummary

	for _, v := range verdicts {
		var applicable, holiday, leave, present int
		for _, m := range mess.Meals() {
			switch v.Status(m) {
			case mess.StatusNotApplicable:
				continue
			case mess.StatusHoliday:
				holiday++
			case mess.StatusLeave:
				leave++
			case mess.StatusPresent:
				present++
			}
			applicable++
		}
		s.TotalMealsTaken += present

		if applicable == 0 {
			continue
		}
		switch {
		case holiday == applicable:
			s.HolidayCount++
		case leave > 0:
			s.AbsentDays++
		default:
			s.PresentDays++
		}
	}

	if denom := s.PresentDays + s.AbsentDays; denom > 0 {
		pct := int(math.Round(float64(s.PresentDays) / float64(denom) * 100))
		s.AttendancePercent = &pct
	}
	return s
}
