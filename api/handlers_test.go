/*
handlers_test.go - HTTP-level tests for the API

Drives the full router with httptest over the in-memory store: settings and
plan setup, holiday declaration, leave application and cancellation, the
month grid, billing and payments.
*/
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/warp/mess-engine/mess"
	"github.com/warp/mess-engine/mess/store"
)

type fixture struct {
	router http.Handler
	store  *store.Memory
}

// newFixture wires a router over a fresh in-memory store with a fixed clock,
// one configured mess and one activated full-day plan.
func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()
	mem := store.NewMemory()
	h := NewHandler(mem, mess.FixedClock{T: now})
	f := &fixture{router: NewRouter(h), store: mem}

	f.do(t, http.MethodPut, "/api/messes/mess-1/settings", `{
		"lunch_deadline": "10:00",
		"dinner_deadline": "18:00",
		"charge_per_meal": "65"
	}`, http.StatusOK)
	f.do(t, http.MethodPut, "/api/students/stu-1/plan", `{
		"mess_id": "mess-1",
		"plan_type": "full_day",
		"activation_date": "2026-03-01"
	}`, http.StatusOK)
	return f
}

// do issues a request and decodes the JSON response body into a generic map.
func (f *fixture) do(t *testing.T, method, path, body string, wantStatus int) map[string]any {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	if rec.Code != wantStatus {
		t.Fatalf("%s %s: status %d, want %d; body: %s", method, path, rec.Code, wantStatus, rec.Body.String())
	}

	var resp map[string]any
	if rec.Body.Len() > 0 && strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "{") {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("%s %s: invalid JSON response: %v", method, path, err)
		}
	}
	return resp
}

// march 2026 helpers; the fixed clock in most tests is March 31 noon, so the
// whole month is in the observable past.
func endOfMarch() time.Time {
	return time.Date(2026, time.March, 31, 12, 0, 0, 0, time.UTC)
}

func TestAttendanceMonthFlow(t *testing.T) {
	// GIVEN: a full-day plan active since March 1, a holiday on the 10th and a
	// full-day leave on the 5th
	// WHEN: fetching the March attendance grid
	// THEN: counters reconcile and the grid marks each day correctly

	f := newFixture(t, endOfMarch())

	f.do(t, http.MethodPost, "/api/messes/mess-1/holidays", `{
		"from": "2026-03-10", "to": "2026-03-10", "label": "Holi"
	}`, http.StatusCreated)
	f.do(t, http.MethodPost, "/api/students/stu-1/leaves", `{
		"from": "2026-03-05", "to": "2026-03-05"
	}`, http.StatusCreated)

	resp := f.do(t, http.MethodGet, "/api/students/stu-1/attendance?month=2026-03", "", http.StatusOK)

	summary := resp["summary"].(map[string]any)
	if got := summary["present_days"].(float64); got != 29 {
		t.Errorf("present_days = %v, want 29", got)
	}
	if got := summary["absent_days"].(float64); got != 1 {
		t.Errorf("absent_days = %v, want 1", got)
	}
	if got := summary["holiday_count"].(float64); got != 1 {
		t.Errorf("holiday_count = %v, want 1", got)
	}
	// 31 days, minus 2 leave meals, minus 2 holiday meals.
	if got := summary["total_meals_taken"].(float64); got != 58 {
		t.Errorf("total_meals_taken = %v, want 58", got)
	}
	if got := summary["attendance_percent"].(float64); got != 97 {
		t.Errorf("attendance_percent = %v, want 97", got)
	}

	days := resp["days"].([]any)
	if len(days) != 31 {
		t.Fatalf("grid has %d days, want 31", len(days))
	}
	day5 := days[4].(map[string]any)
	if day5["lunch"] != "leave" || day5["dinner"] != "leave" {
		t.Errorf("day 5 = %v/%v, want leave/leave", day5["lunch"], day5["dinner"])
	}
	day10 := days[9].(map[string]any)
	if day10["lunch"] != "holiday" || day10["holiday_label"] != "Holi" {
		t.Errorf("day 10 = %v (label %v), want holiday (Holi)", day10["lunch"], day10["holiday_label"])
	}
}

func TestAttendanceBeforeActivation(t *testing.T) {
	f := newFixture(t, endOfMarch())

	resp := f.do(t, http.MethodGet, "/api/students/stu-1/attendance?month=2026-02", "", http.StatusOK)
	summary := resp["summary"].(map[string]any)
	if summary["attendance_percent"] != nil {
		t.Errorf("attendance_percent = %v, want null for a month with no countable day", summary["attendance_percent"])
	}
	days := resp["days"].([]any)
	day1 := days[0].(map[string]any)
	if day1["lunch"] != "not_applicable" {
		t.Errorf("pre-activation day lunch = %v, want not_applicable", day1["lunch"])
	}
}

func TestLeaveLifecycle(t *testing.T) {
	// Apply a full-day leave, observe the merged view, cancel it, and confirm
	// re-application then works again.

	now := time.Date(2026, time.March, 4, 8, 0, 0, 0, time.UTC)
	f := newFixture(t, now)

	resp := f.do(t, http.MethodPost, "/api/students/stu-1/leaves", `{
		"from": "2026-03-05", "to": "2026-03-05", "reason": "home visit"
	}`, http.StatusCreated)
	created := resp["created"].([]any)
	if len(created) != 1 {
		t.Fatalf("created %d views, want 1 merged view", len(created))
	}
	view := created[0].(map[string]any)
	if view["kind"] != "merged_full_day" || view["scope"] != "full_day" {
		t.Errorf("view = %v/%v, want merged_full_day/full_day", view["kind"], view["scope"])
	}
	if ids := view["record_ids"].([]any); len(ids) != 2 {
		t.Errorf("merged view carries %d record ids, want 2", len(ids))
	}

	// Second identical application is a benign no-op.
	resp = f.do(t, http.MethodPost, "/api/students/stu-1/leaves", `{
		"from": "2026-03-05", "to": "2026-03-05"
	}`, http.StatusOK)
	if resp["status"] != "already_covered" {
		t.Errorf("status = %v, want already_covered", resp["status"])
	}

	// Cancel removes both records of the merged pair.
	resp = f.do(t, http.MethodDelete, "/api/students/stu-1/leaves/2026-03-05", "", http.StatusOK)
	if deleted := resp["deleted"].([]any); len(deleted) != 2 {
		t.Errorf("deleted %d records, want 2", len(deleted))
	}

	f.do(t, http.MethodPost, "/api/students/stu-1/leaves", `{
		"from": "2026-03-05", "to": "2026-03-05"
	}`, http.StatusCreated)
}

func TestLeaveDeadlineRefusal(t *testing.T) {
	// At 10:05 the lunch cutoff has passed; a same-day full_day application is
	// refused with 400.

	now := time.Date(2026, time.March, 5, 10, 5, 0, 0, time.UTC)
	f := newFixture(t, now)

	f.do(t, http.MethodPost, "/api/students/stu-1/leaves", `{
		"from": "2026-03-05", "to": "2026-03-05"
	}`, http.StatusBadRequest)

	// dinner_only is still open.
	f.do(t, http.MethodPost, "/api/students/stu-1/leaves", `{
		"from": "2026-03-05", "to": "2026-03-05",
		"start_scope": "dinner_only", "end_scope": "dinner_only"
	}`, http.StatusCreated)
}

func TestCancelWithoutLeave(t *testing.T) {
	f := newFixture(t, endOfMarch())
	f.do(t, http.MethodDelete, "/api/students/stu-1/leaves/2026-04-05", "", http.StatusBadRequest)
}

func TestBillingFlow(t *testing.T) {
	// March: 31 days x 2 meals at 65. A partial payment reduces the due;
	// an overpayment is refused and recorded nowhere.

	f := newFixture(t, endOfMarch())

	resp := f.do(t, http.MethodGet, "/api/students/stu-1/bill?month=2026-03", "", http.StatusOK)
	if resp["meals_taken"].(float64) != 62 {
		t.Errorf("meals_taken = %v, want 62", resp["meals_taken"])
	}
	if resp["total_amount"] != "4030" {
		t.Errorf("total_amount = %v, want 4030", resp["total_amount"])
	}

	f.do(t, http.MethodPost, "/api/students/stu-1/payments", `{
		"period": "2026-03", "amount": "4000"
	}`, http.StatusCreated)

	resp = f.do(t, http.MethodGet, "/api/students/stu-1/bill?month=2026-03", "", http.StatusOK)
	if resp["due_amount"] != "30" {
		t.Errorf("due_amount = %v, want 30", resp["due_amount"])
	}

	f.do(t, http.MethodPost, "/api/students/stu-1/payments", `{
		"period": "2026-03", "amount": "31"
	}`, http.StatusBadRequest)

	resp = f.do(t, http.MethodGet, "/api/students/stu-1/bill?month=2026-03", "", http.StatusOK)
	if resp["due_amount"] != "30" {
		t.Errorf("due_amount after refused payment = %v, want 30", resp["due_amount"])
	}
}

func TestUnknownStudent(t *testing.T) {
	f := newFixture(t, endOfMarch())
	f.do(t, http.MethodGet, "/api/students/ghost/attendance?month=2026-03", "", http.StatusNotFound)
	f.do(t, http.MethodGet, "/api/students/ghost/plan", "", http.StatusNotFound)
}

func TestValidationErrors(t *testing.T) {
	f := newFixture(t, endOfMarch())

	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{"bad date format", http.MethodPost, "/api/students/stu-1/leaves", `{"from": "05-03-2026", "to": "2026-03-05"}`},
		{"bad scope", http.MethodPost, "/api/students/stu-1/leaves", `{"from": "2026-03-05", "to": "2026-03-05", "start_scope": "breakfast"}`},
		{"missing label", http.MethodPost, "/api/messes/mess-1/holidays", `{"from": "2026-03-10", "to": "2026-03-10"}`},
		{"bad month", http.MethodGet, "/api/students/stu-1/attendance?month=March", ""},
		{"bad deadline", http.MethodPut, "/api/messes/mess-1/settings", `{"lunch_deadline": "25:00", "dinner_deadline": "18:00", "charge_per_meal": "65"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.do(t, tt.method, tt.path, tt.body, http.StatusBadRequest)
		})
	}
}

func TestHolidayAdminFlow(t *testing.T) {
	f := newFixture(t, endOfMarch())

	f.do(t, http.MethodPost, "/api/messes/mess-1/holidays", `{
		"from": "2026-03-10", "to": "2026-03-11", "label": "Festival"
	}`, http.StatusCreated)

	req := httptest.NewRequest(http.MethodGet, "/api/messes/mess-1/holidays", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("list holidays: status %d", rec.Code)
	}
	var holidays []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &holidays); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(holidays) != 2 {
		t.Fatalf("%d holidays, want 2", len(holidays))
	}

	f.do(t, http.MethodDelete, "/api/messes/mess-1/holidays/2026-03-10", "", http.StatusOK)
	f.do(t, http.MethodDelete, "/api/messes/mess-1/holidays/2026-03-10", "", http.StatusNotFound)
}

func TestPlanChangeMidMonth(t *testing.T) {
	// Switching to lunch_only on March 16 halves the countable meals from
	// that day onward; earlier days keep both meals counted.

	f := newFixture(t, endOfMarch())

	f.do(t, http.MethodPut, "/api/students/stu-1/plan", fmt.Sprintf(`{
		"mess_id": "mess-1",
		"plan_type": "lunch_only",
		"activation_date": "%s"
	}`, "2026-03-16"), http.StatusOK)

	resp := f.do(t, http.MethodGet, "/api/students/stu-1/attendance?month=2026-03", "", http.StatusOK)
	summary := resp["summary"].(map[string]any)
	// Activation moved forward: March 1-15 is now before the plan, so only
	// 16 lunch-only days remain countable.
	if got := summary["total_meals_taken"].(float64); got != 16 {
		t.Errorf("total_meals_taken = %v, want 16", got)
	}
	days := resp["days"].([]any)
	day16 := days[15].(map[string]any)
	if day16["lunch"] != "present" || day16["dinner"] != "not_applicable" {
		t.Errorf("day 16 = %v/%v, want present/not_applicable", day16["lunch"], day16["dinner"])
	}
}
