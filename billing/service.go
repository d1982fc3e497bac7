package billing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/mess-engine/mess"
)

// Service computes bills and records payments. The caller supplies the
// period's counted meals (from the attendance aggregator); the service owns
// rate lookup, payment listing and payment validation.
type Service struct {
	Payments mess.PaymentStore
	Settings mess.SettingsStore
	Clock    mess.Clock
}

func NewService(payments mess.PaymentStore, settings mess.SettingsStore, clock mess.Clock) *Service {
	return &Service{Payments: payments, Settings: settings, Clock: clock}
}

// BillFor computes the current bill snapshot for one (student, period).
func (s *Service) BillFor(ctx context.Context, messID, studentID string, period mess.Month, mealsTaken int) (mess.Bill, error) {
	settings, err := s.Settings.GetMessSettings(ctx, messID)
	if err != nil {
		return mess.Bill{}, fmt.Errorf("load settings: %w", err)
	}
	payments, err := s.Payments.ListPayments(ctx, studentID, period)
	if err != nil {
		return mess.Bill{}, fmt.Errorf("load payments: %w", err)
	}
	return Compute(studentID, period, mealsTaken, settings.ChargePerMeal, payments), nil
}

// RecordPayment validates the amount against the period's current due and
// appends it to the ledger. Validation happens before the write, against a
// fresh bill snapshot.
func (s *Service) RecordPayment(ctx context.Context, messID, studentID string, period mess.Month, mealsTaken int, amount decimal.Decimal) (mess.Payment, error) {
	bill, err := s.BillFor(ctx, messID, studentID, period, mealsTaken)
	if err != nil {
		return mess.Payment{}, err
	}
	if err := ValidateAmount(amount, bill.DueAmount); err != nil {
		return mess.Payment{}, err
	}

	payment := mess.Payment{
		ID:        uuid.NewString(),
		StudentID: studentID,
		Period:    period,
		Amount:    amount,
		PaidAt:    s.Clock.Now(),
	}
	if err := s.Payments.RecordPayment(ctx, payment); err != nil {
		return mess.Payment{}, fmt.Errorf("record payment: %w", err)
	}
	return payment, nil
}
