/*
handlers.go - HTTP API handlers for the mess engine

PURPOSE:
  Exposes the reconciliation engine via REST. Handles HTTP request/response,
  JSON serialization and input validation, and delegates to the domain
  services. Verdicts are recomputed from the latest store snapshot on every
  request; nothing derived is cached.

ENDPOINTS:
  Attendance & billing:
    GET    /api/students/{id}/attendance?month=YYYY-MM  Month grid + summary
    GET    /api/students/{id}/bill?month=YYYY-MM        Bill snapshot
    POST   /api/students/{id}/payments                  Record a payment

  Leaves:
    GET    /api/students/{id}/leaves                    Per-day views
    POST   /api/students/{id}/leaves                    Apply range leave
    DELETE /api/students/{id}/leaves/{date}             Cancel (merged = both)

  Plans:
    GET    /api/students/{id}/plan
    PUT    /api/students/{id}/plan                      Activate / change

  Mess admin:
    GET    /api/messes/{id}/holidays
    POST   /api/messes/{id}/holidays                    Declare range
    DELETE /api/messes/{id}/holidays/{date}
    GET    /api/messes/{id}/settings
    PUT    /api/messes/{id}/settings

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: validation errors, invalid input, deadline refusals
  - 404: unknown student/record
  - 409: duplicate record conflicts
  - 500: internal errors
  An application fully covered by existing records returns 200 with status
  "already_covered" - a benign no-op, reported distinctly from a write.
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/warp/mess-engine/attendance"
	"github.com/warp/mess-engine/billing"
	"github.com/warp/mess-engine/holiday"
	"github.com/warp/mess-engine/leave"
	"github.com/warp/mess-engine/mess"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Records  mess.RecordStore
	Settings mess.SettingsStore
	Payments mess.PaymentStore
	Clock    mess.Clock

	Leaves   *leave.Service
	Holidays *holiday.Service
	Billing  *billing.Service

	validate *validator.Validate
}

// Stores bundles the three persistence interfaces a handler needs; the
// SQLite store satisfies all of them at once.
type Stores interface {
	mess.RecordStore
	mess.SettingsStore
	mess.PaymentStore
}

// NewHandler wires the services over one combined store.
func NewHandler(store Stores, clock mess.Clock) *Handler {
	return &Handler{
		Records:  store,
		Settings: store,
		Payments: store,
		Clock:    clock,
		Leaves:   leave.NewService(store, store, clock),
		Holidays: holiday.NewService(store),
		Billing:  billing.NewService(store, store, clock),
		validate: validator.New(),
	}
}

// =============================================================================
// ATTENDANCE & BILLING
// =============================================================================

// GetAttendance returns the full month grid plus its summary.
func (h *Handler) GetAttendance(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "id")
	month, err := mess.ParseMonth(r.URL.Query().Get("month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	verdicts, summary, err := h.monthVerdicts(r, studentID, month)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := AttendanceResponse{
		StudentID: studentID,
		Month:     month.String(),
		Summary:   toSummaryDTO(summary),
	}
	for _, v := range verdicts {
		resp.Days = append(resp.Days, toDayVerdictDTO(v))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetBill returns the current bill snapshot for a month.
func (h *Handler) GetBill(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "id")
	month, err := mess.ParseMonth(r.URL.Query().Get("month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	plan, err := h.Records.GetPlan(r.Context(), studentID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	_, summary, err := h.monthVerdicts(r, studentID, month)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	bill, err := h.Billing.BillFor(r.Context(), plan.MessID, studentID, month, summary.TotalMealsTaken)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBillDTO(bill))
}

// RecordPayment records a payment against the current due amount.
func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "id")

	var req RecordPaymentRequest
	if !h.decode(w, r, &req) {
		return
	}
	period, err := mess.ParseMonth(req.Period)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	plan, err := h.Records.GetPlan(r.Context(), studentID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	_, summary, err := h.monthVerdicts(r, studentID, period)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	payment, err := h.Billing.RecordPayment(r.Context(), plan.MessID, studentID, period, summary.TotalMealsTaken, amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, PaymentDTO{
		ID:     payment.ID,
		Period: payment.Period.String(),
		Amount: payment.Amount.String(),
		PaidAt: payment.PaidAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

// monthVerdicts recomputes the month grid from the latest snapshot.
func (h *Handler) monthVerdicts(r *http.Request, studentID string, month mess.Month) ([]mess.DayVerdict, mess.MonthlySummary, error) {
	ctx := r.Context()
	plan, err := h.Records.GetPlan(ctx, studentID)
	if err != nil {
		return nil, mess.MonthlySummary{}, err
	}
	leaves, err := h.Records.ListLeaves(ctx, studentID)
	if err != nil {
		return nil, mess.MonthlySummary{}, err
	}
	holidays, err := h.Records.ListHolidays(ctx, plan.MessID)
	if err != nil {
		return nil, mess.MonthlySummary{}, err
	}

	today := mess.DateOf(h.Clock.Now())
	verdicts := attendance.ResolveMonth(plan, month, leaves, holidays, today)
	return verdicts, attendance.Aggregate(verdicts), nil
}

// =============================================================================
// LEAVES
// =============================================================================

// ListLeaves returns the student's per-day leave views.
func (h *Handler) ListLeaves(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "id")
	records, err := h.Records.ListLeaves(r.Context(), studentID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	views := []LeaveViewDTO{}
	for _, v := range leave.Views(records) {
		views = append(views, toLeaveViewDTO(v))
	}
	writeJSON(w, http.StatusOK, views)
}

// ApplyLeave applies a range leave for the student.
func (h *Handler) ApplyLeave(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "id")

	var req ApplyLeaveRequest
	if !h.decode(w, r, &req) {
		return
	}
	from, err := mess.ParseDate(req.From)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	to, err := mess.ParseDate(req.To)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := h.Leaves.Apply(r.Context(), leave.ApplyInput{
		StudentID:  studentID,
		From:       from,
		To:         to,
		StartScope: mess.MealScope(req.StartScope),
		EndScope:   mess.MealScope(req.EndScope),
		Reason:     req.Reason,
	})
	if errors.Is(err, mess.ErrAlreadyCovered) {
		writeJSON(w, http.StatusOK, ApplyLeaveResponse{Status: "already_covered"})
		return
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := ApplyLeaveResponse{Status: "created"}
	for _, v := range leave.Views(result.Created) {
		resp.Created = append(resp.Created, toLeaveViewDTO(v))
	}
	for _, d := range result.Skipped {
		resp.Skipped = append(resp.Skipped, d.String())
	}
	writeJSON(w, http.StatusCreated, resp)
}

// CancelLeave cancels the student's leave on a date. A merged full-day entry
// has both underlying records removed together.
func (h *Handler) CancelLeave(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "id")
	date, err := mess.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := h.Leaves.Cancel(r.Context(), studentID, date)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "canceled",
		"deleted": result.Deleted,
	})
}

// =============================================================================
// PLANS
// =============================================================================

// GetPlan returns the student's plan.
func (h *Handler) GetPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := h.Records.GetPlan(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPlanDTO(plan))
}

// ActivatePlan activates or changes a student's plan. Plans are immutable
// between explicit activation actions.
func (h *Handler) ActivatePlan(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "id")

	var req ActivatePlanRequest
	if !h.decode(w, r, &req) {
		return
	}
	activationDate, err := mess.ParseDate(req.ActivationDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	meal := mess.Meal(req.ActivationMeal)
	if meal == "" {
		meal = mess.MealLunch
	}

	plan := mess.Plan{
		StudentID:      studentID,
		MessID:         req.MessID,
		Type:           mess.PlanType(req.PlanType),
		ActivationDate: activationDate,
		ActivationMeal: meal,
	}
	if err := h.Records.SavePlan(r.Context(), plan); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPlanDTO(plan))
}

// =============================================================================
// HOLIDAYS (admin)
// =============================================================================

// ListHolidays returns every declared holiday for a mess.
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	records, err := h.Records.ListHolidays(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := []HolidayDTO{}
	for _, rec := range records {
		dtos = append(dtos, toHolidayDTO(rec))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// DeclareHoliday declares a holiday range for a mess.
func (h *Handler) DeclareHoliday(w http.ResponseWriter, r *http.Request) {
	messID := chi.URLParam(r, "id")

	var req DeclareHolidayRequest
	if !h.decode(w, r, &req) {
		return
	}
	from, err := mess.ParseDate(req.From)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	to, err := mess.ParseDate(req.To)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	created, err := h.Holidays.Declare(r.Context(), holiday.DeclareInput{
		MessID:     messID,
		From:       from,
		To:         to,
		StartScope: mess.MealScope(req.StartScope),
		EndScope:   mess.MealScope(req.EndScope),
		Label:      req.Label,
	})
	if errors.Is(err, mess.ErrAlreadyCovered) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "already_covered"})
		return
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dtos := make([]HolidayDTO, 0, len(created))
	for _, rec := range created {
		dtos = append(dtos, toHolidayDTO(rec))
	}
	writeJSON(w, http.StatusCreated, dtos)
}

// RemoveHoliday deletes every holiday record for the mess on a date.
func (h *Handler) RemoveHoliday(w http.ResponseWriter, r *http.Request) {
	messID := chi.URLParam(r, "id")
	date, err := mess.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.Holidays.Remove(r.Context(), messID, date); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

// =============================================================================
// SETTINGS
// =============================================================================

// GetSettings returns the mess deadline/rate configuration.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Settings.GetMessSettings(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SettingsDTO{
		MessID:         settings.MessID,
		LunchDeadline:  settings.LunchDeadline.String(),
		DinnerDeadline: settings.DinnerDeadline.String(),
		ChargePerMeal:  settings.ChargePerMeal.String(),
	})
}

// SaveSettings replaces the mess deadline/rate configuration.
func (h *Handler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	messID := chi.URLParam(r, "id")

	var req SaveSettingsRequest
	if !h.decode(w, r, &req) {
		return
	}
	lunch, err := mess.ParseTimeOfDay(req.LunchDeadline)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	dinner, err := mess.ParseTimeOfDay(req.DinnerDeadline)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	charge, err := decimal.NewFromString(req.ChargePerMeal)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	settings := mess.Settings{
		MessID:         messID,
		LunchDeadline:  lunch,
		DinnerDeadline: dinner,
		ChargePerMeal:  charge,
	}
	if err := h.Settings.SaveMessSettings(r.Context(), settings); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

// =============================================================================
// HELPERS
// =============================================================================

// decode parses and validates a JSON request body. Writes the error response
// itself and returns false on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

// writeDomainError maps domain errors to HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case mess.IsNotFound(err):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, mess.ErrDuplicateRecord):
		writeError(w, http.StatusConflict, err)
	case mess.IsClientError(err):
		writeError(w, http.StatusBadRequest, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}
