/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Request types carry validator struct tags (go-playground/validator) and
  are validated in the handlers before any domain call. Dates are "2006-01-02",
  months "2006-01", scopes one of lunch_only/dinner_only/full_day.
*/
package api

import (
	"github.com/warp/mess-engine/leave"
	"github.com/warp/mess-engine/mess"
)

// =============================================================================
// ATTENDANCE
// =============================================================================

// DayVerdictDTO is one day of the month grid.
type DayVerdictDTO struct {
	Date         string `json:"date"`
	Lunch        string `json:"lunch"`
	Dinner       string `json:"dinner"`
	LeaveScope   string `json:"leave_scope,omitempty"`
	HolidayScope string `json:"holiday_scope,omitempty"`
	HolidayLabel string `json:"holiday_label,omitempty"`
}

// SummaryDTO is the month's aggregate counters. AttendancePercent is null
// when no day was countable.
type SummaryDTO struct {
	PresentDays       int  `json:"present_days"`
	AbsentDays        int  `json:"absent_days"`
	HolidayCount      int  `json:"holiday_count"`
	TotalMealsTaken   int  `json:"total_meals_taken"`
	AttendancePercent *int `json:"attendance_percent"`
}

// AttendanceResponse is the full month grid plus its summary.
type AttendanceResponse struct {
	StudentID string          `json:"student_id"`
	Month     string          `json:"month"`
	Days      []DayVerdictDTO `json:"days"`
	Summary   SummaryDTO      `json:"summary"`
}

func toDayVerdictDTO(v mess.DayVerdict) DayVerdictDTO {
	dto := DayVerdictDTO{
		Date:         v.Date.String(),
		Lunch:        string(v.Lunch),
		Dinner:       string(v.Dinner),
		HolidayLabel: v.HolidayLabel,
	}
	if !v.LeaveScope.IsZero() {
		dto.LeaveScope = string(v.LeaveScope)
	}
	if !v.HolidayScope.IsZero() {
		dto.HolidayScope = string(v.HolidayScope)
	}
	return dto
}

func toSummaryDTO(s mess.MonthlySummary) SummaryDTO {
	return SummaryDTO{
		PresentDays:       s.PresentDays,
		AbsentDays:        s.AbsentDays,
		HolidayCount:      s.HolidayCount,
		TotalMealsTaken:   s.TotalMealsTaken,
		AttendancePercent: s.AttendancePercent,
	}
}

// =============================================================================
// LEAVES
// =============================================================================

// ApplyLeaveRequest is a from/to leave application. Scopes default to
// full_day when omitted.
type ApplyLeaveRequest struct {
	From       string `json:"from" validate:"required,datetime=2006-01-02"`
	To         string `json:"to" validate:"required,datetime=2006-01-02"`
	StartScope string `json:"start_scope" validate:"omitempty,oneof=lunch_only dinner_only full_day"`
	EndScope   string `json:"end_scope" validate:"omitempty,oneof=lunch_only dinner_only full_day"`
	Reason     string `json:"reason" validate:"max=500"`
}

// LeaveViewDTO is one per-day display entry. A merged full-day entry carries
// both underlying record IDs; its cancel deletes both together.
type LeaveViewDTO struct {
	Kind      string   `json:"kind"`
	Date      string   `json:"date"`
	Scope     string   `json:"scope"`
	RecordIDs []string `json:"record_ids"`
}

// ApplyLeaveResponse reports what an application wrote and skipped.
type ApplyLeaveResponse struct {
	Status  string         `json:"status"`
	Created []LeaveViewDTO `json:"created,omitempty"`
	Skipped []string       `json:"skipped,omitempty"`
}

func toLeaveViewDTO(v leave.View) LeaveViewDTO {
	return LeaveViewDTO{
		Kind:      string(v.Kind),
		Date:      v.Date.String(),
		Scope:     string(v.Scope),
		RecordIDs: v.RecordIDs,
	}
}

// =============================================================================
// HOLIDAYS
// =============================================================================

// DeclareHolidayRequest declares a holiday range for a mess.
type DeclareHolidayRequest struct {
	From       string `json:"from" validate:"required,datetime=2006-01-02"`
	To         string `json:"to" validate:"required,datetime=2006-01-02"`
	StartScope string `json:"start_scope" validate:"omitempty,oneof=lunch_only dinner_only full_day"`
	EndScope   string `json:"end_scope" validate:"omitempty,oneof=lunch_only dinner_only full_day"`
	Label      string `json:"label" validate:"required,max=200"`
}

// HolidayDTO is one declared holiday record.
type HolidayDTO struct {
	ID    string `json:"id"`
	Date  string `json:"date"`
	Scope string `json:"scope"`
	Label string `json:"label"`
}

func toHolidayDTO(h mess.HolidayRecord) HolidayDTO {
	return HolidayDTO{ID: h.ID, Date: h.Date.String(), Scope: string(h.Scope), Label: h.Label}
}

// =============================================================================
// PLANS
// =============================================================================

// ActivatePlanRequest activates (or changes) a student's plan.
type ActivatePlanRequest struct {
	MessID         string `json:"mess_id" validate:"required"`
	PlanType       string `json:"plan_type" validate:"required,oneof=full_day lunch_only dinner_only"`
	ActivationDate string `json:"activation_date" validate:"required,datetime=2006-01-02"`
	ActivationMeal string `json:"activation_meal" validate:"omitempty,oneof=lunch dinner"`
}

// PlanDTO is a student's plan in API responses.
type PlanDTO struct {
	StudentID      string `json:"student_id"`
	MessID         string `json:"mess_id"`
	PlanType       string `json:"plan_type"`
	ActivationDate string `json:"activation_date,omitempty"`
	ActivationMeal string `json:"activation_meal,omitempty"`
}

func toPlanDTO(p mess.Plan) PlanDTO {
	dto := PlanDTO{
		StudentID:      p.StudentID,
		MessID:         p.MessID,
		PlanType:       string(p.Type),
		ActivationMeal: string(p.ActivationMeal),
	}
	if p.Activated() {
		dto.ActivationDate = p.ActivationDate.String()
	}
	return dto
}

// =============================================================================
// BILLING
// =============================================================================

// BillDTO is the derived billing snapshot for one (student, period).
type BillDTO struct {
	StudentID   string `json:"student_id"`
	Period      string `json:"period"`
	MealsTaken  int    `json:"meals_taken"`
	RatePerMeal string `json:"rate_per_meal"`
	TotalAmount string `json:"total_amount"`
	PaidAmount  string `json:"paid_amount"`
	DueAmount   string `json:"due_amount"`
}

func toBillDTO(b mess.Bill) BillDTO {
	return BillDTO{
		StudentID:   b.StudentID,
		Period:      b.Period.String(),
		MealsTaken:  b.MealsTaken,
		RatePerMeal: b.RatePerMeal.String(),
		TotalAmount: b.TotalAmount.String(),
		PaidAmount:  b.PaidAmount.String(),
		DueAmount:   b.DueAmount.String(),
	}
}

// RecordPaymentRequest records one payment against a bill period.
type RecordPaymentRequest struct {
	Period string `json:"period" validate:"required,datetime=2006-01"`
	Amount string `json:"amount" validate:"required"`
}

// PaymentDTO is one recorded payment.
type PaymentDTO struct {
	ID     string `json:"id"`
	Period string `json:"period"`
	Amount string `json:"amount"`
	PaidAt string `json:"paid_at"`
}

// =============================================================================
// SETTINGS
// =============================================================================

// SettingsDTO is the per-mess configuration.
type SettingsDTO struct {
	MessID         string `json:"mess_id"`
	LunchDeadline  string `json:"lunch_deadline"`
	DinnerDeadline string `json:"dinner_deadline"`
	ChargePerMeal  string `json:"charge_per_meal"`
}

// SaveSettingsRequest replaces the per-mess configuration.
type SaveSettingsRequest struct {
	LunchDeadline  string `json:"lunch_deadline" validate:"required,datetime=15:04"`
	DinnerDeadline string `json:"dinner_deadline" validate:"required,datetime=15:04"`
	ChargePerMeal  string `json:"charge_per_meal" validate:"required"`
}

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error string `json:"error"`
}
