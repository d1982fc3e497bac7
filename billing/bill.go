/*
Package billing turns a month of counted meals into a bill and records
payments against it.

PURPOSE:
  The billing unit is the MEAL, not the day: a full-day plan with a single
  lunch leave is billed for that day's dinner. The aggregator's
  TotalMealsTaken counter is the authoritative input; day-level present/
  absent counts are a display convenience only.

ARITHMETIC:
  totalAmount = mealsTaken x chargePerMeal  (flat rate, plan type irrelevant)
  paidAmount  = sum of recorded payments for the period
  dueAmount   = max(totalAmount - paidAmount, 0)

  Money uses decimal.Decimal throughout. Overpayment is not modeled as
  credit: a payment above the current due amount is rejected.
*/
package billing

import (
	"github.com/shopspring/decimal"

	"github.com/warp/mess-engine/mess"
)

// Compute derives the bill figures from counted meals, the per-meal rate and
// the period's recorded payments.
func Compute(studentID string, period mess.Month, mealsTaken int, chargePerMeal decimal.Decimal, payments []mess.Payment) mess.Bill {
	total := chargePerMeal.Mul(decimal.NewFromInt(int64(mealsTaken)))

	paid := decimal.Zero
	for _, p := range payments {
		paid = paid.Add(p.Amount)
	}

	due := total.Sub(paid)
	if due.IsNegative() {
		due = decimal.Zero
	}

	return mess.Bill{
		StudentID:   studentID,
		Period:      period,
		MealsTaken:  mealsTaken,
		RatePerMeal: chargePerMeal,
		TotalAmount: total,
		PaidAmount:  paid,
		DueAmount:   due,
	}
}

// ValidateAmount rejects non-positive amounts and amounts above the current
// due. Called before any write; a rejected payment is never partially applied.
func ValidateAmount(amount, due decimal.Decimal) error {
	if !amount.IsPositive() {
		return &mess.AmountError{Reason: "must be positive"}
	}
	if amount.GreaterThan(due) {
		return &mess.AmountError{Reason: "exceeds due amount"}
	}
	return nil
}
