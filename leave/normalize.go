/*
Package leave implements leave classification, range expansion, the same-day
deadline gate, and the apply/cancel service.

PURPOSE:
  Leave is always STORED at meal granularity: a full-day application is
  decomposed into an independent lunch_only + dinner_only pair before it
  reaches the store. For DISPLAY the reverse happens: a date holding both
  meal records is collapsed into one merged full-day entry whose single
  cancel action deletes both underlying records atomically.

KEY CONCEPTS:
  - Classify: per-day classification of a student's records (none/lunch/
    dinner/full_day), merging a lunch+dinner pair into full_day
  - View: tagged union of a single record vs. a merged full-day pair
  - ExpandRange: per-day decomposition of a from/to application, honoring
    partial start/end scopes
  - Gate: the HH:MM cutoff check for same-day filing and cancellation

SEE ALSO:
  - expand.go:   range expansion and coverage subtraction
  - deadline.go: the Gate
  - service.go:  apply/cancel with atomic store batches
*/
package leave

import (
	"sort"

	"github.com/warp/mess-engine/mess"
)

// =============================================================================
// CLASSIFICATION - Per-day merge of raw records
// =============================================================================

// Classify reduces one day's leave records to a canonical classification.
// An explicit full_day record wins; a co-occurring lunch_only + dinner_only
// pair merges to full_day; otherwise whichever single scope is present.
func Classify(dayRecords []mess.LeaveRecord) mess.MealScope {
	scope := mess.ScopeNone
	for _, r := range dayRecords {
		scope = scope.Union(r.Scope)
	}
	return scope
}

// GroupByDate buckets a student's records per day.
func GroupByDate(records []mess.LeaveRecord) map[mess.Date][]mess.LeaveRecord {
	byDay := make(map[mess.Date][]mess.LeaveRecord)
	for _, r := range records {
		byDay[r.Date] = append(byDay[r.Date], r)
	}
	return byDay
}

// =============================================================================
// VIEW - Tagged union for display and cancellation
// =============================================================================

// ViewKind discriminates the two presentation shapes of a day's leave.
type ViewKind string

const (
	// ViewSingle is one stored record presented as-is.
	ViewSingle ViewKind = "single"
	// ViewMergedFullDay is a lunch+dinner pair presented as one full-day
	// entry. Its cancel action deletes both records as one unit.
	ViewMergedFullDay ViewKind = "merged_full_day"
)

// View is the display shape of one day's leave. RecordIDs carries every
// underlying record the view's cancel action must delete together.
type View struct {
	Kind      ViewKind
	Date      mess.Date
	Scope     mess.MealScope
	RecordIDs []string
	Records   []mess.LeaveRecord
}

// Views collapses a student's records into per-day display entries, merging
// same-day lunch+dinner pairs into one full-day pseudo-record. The underlying
// records stay distinct and independently deletable; only the merged view's
// own cancel removes both.
func Views(records []mess.LeaveRecord) []View {
	byDay := GroupByDate(records)

	dates := make([]mess.Date, 0, len(byDay))
	for d := range byDay {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	var views []View
	for _, d := range dates {
		day := byDay[d]
		scope := Classify(day)

		ids := make([]string, 0, len(day))
		for _, r := range day {
			ids = append(ids, r.ID)
		}

		kind := ViewSingle
		if scope == mess.ScopeFullDay && len(day) > 1 {
			kind = ViewMergedFullDay
		}
		views = append(views, View{
			Kind:      kind,
			Date:      d,
			Scope:     scope,
			RecordIDs: ids,
			Records:   day,
		})
	}
	return views
}

// ViewAt returns the view for one date, if any leave exists there.
func ViewAt(records []mess.LeaveRecord, date mess.Date) (View, bool) {
	for _, v := range Views(records) {
		if v.Date.Equal(date) {
			return v, true
		}
	}
	return View{}, false
}
