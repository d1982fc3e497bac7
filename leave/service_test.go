package leave_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/mess-engine/leave"
	"github.com/warp/mess-engine/mess"
	"github.com/warp/mess-engine/mess/store"
)

const (
	testStudent = "student-1"
	testMess    = "mess-1"
)

func newFixture(t *testing.T, now time.Time) (*leave.Service, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, mem.SaveMessSettings(ctx, mess.Settings{
		MessID:         testMess,
		LunchDeadline:  mess.TimeOfDay{Hour: 10},
		DinnerDeadline: mess.TimeOfDay{Hour: 18},
		ChargePerMeal:  decimal.NewFromInt(65),
	}))
	require.NoError(t, mem.SavePlan(ctx, mess.Plan{
		StudentID:      testStudent,
		MessID:         testMess,
		Type:           mess.PlanFullDay,
		ActivationDate: mess.NewDate(2026, time.March, 1),
		ActivationMeal: mess.MealLunch,
	}))

	return leave.NewService(mem, mem, mess.FixedClock{T: now}), mem
}

// =============================================================================
// APPLY
// =============================================================================

func TestService_ApplyFullDayStoresMealPair(t *testing.T) {
	// GIVEN: an active full-day plan, request well before any cutoff
	// WHEN: applying a single full_day leave
	// THEN: two per-meal records are written, one lunch_only and one dinner_only

	svc, _ := newFixture(t, at(1, 8, 0))

	result, err := svc.Apply(context.Background(), leave.ApplyInput{
		StudentID: testStudent,
		From:      date(5),
		To:        date(5),
		Reason:    "going home",
	})
	require.NoError(t, err)

	require.Len(t, result.Created, 2)
	scopes := map[mess.MealScope]bool{}
	for _, r := range result.Created {
		assert.Equal(t, testStudent, r.StudentID)
		assert.True(t, r.Date.Equal(date(5)))
		assert.Equal(t, "going home", r.Reason)
		assert.NotEmpty(t, r.ID)
		scopes[r.Scope] = true
	}
	assert.True(t, scopes[mess.ScopeLunchOnly])
	assert.True(t, scopes[mess.ScopeDinnerOnly])
}

func TestService_ApplyRangeWithPartialEndpoints(t *testing.T) {
	// 5th from dinner through 7th until lunch: dinner / full day / lunch.

	svc, _ := newFixture(t, at(1, 8, 0))

	result, err := svc.Apply(context.Background(), leave.ApplyInput{
		StudentID:  testStudent,
		From:       date(5),
		To:         date(7),
		StartScope: mess.ScopeDinnerOnly,
		EndScope:   mess.ScopeLunchOnly,
	})
	require.NoError(t, err)
	require.Len(t, result.Created, 4)

	byDay := make(map[mess.Date]mess.MealScope)
	for _, r := range result.Created {
		byDay[r.Date] = byDay[r.Date].Union(r.Scope)
	}
	assert.Equal(t, mess.ScopeDinnerOnly, byDay[date(5)])
	assert.Equal(t, mess.ScopeFullDay, byDay[date(6)])
	assert.Equal(t, mess.ScopeLunchOnly, byDay[date(7)])
}

func TestService_ApplyIdempotent(t *testing.T) {
	// Re-applying the same leave is a benign no-op, not a duplicate write.

	svc, mem := newFixture(t, at(1, 8, 0))
	ctx := context.Background()

	in := leave.ApplyInput{StudentID: testStudent, From: date(5), To: date(5)}
	_, err := svc.Apply(ctx, in)
	require.NoError(t, err)

	_, err = svc.Apply(ctx, in)
	assert.ErrorIs(t, err, mess.ErrAlreadyCovered)

	records, err := mem.ListLeaves(ctx, testStudent)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestService_ApplySkipsHolidayMeals(t *testing.T) {
	// GIVEN: the 5th has a lunch_only holiday
	// WHEN: applying a full_day leave for the 5th
	// THEN: only a dinner_only record is written; lunch needs no leave

	svc, mem := newFixture(t, at(1, 8, 0))
	ctx := context.Background()

	require.NoError(t, mem.CreateHolidays(ctx, []mess.HolidayRecord{
		{ID: "h1", MessID: testMess, Date: date(5), Scope: mess.ScopeLunchOnly, Label: "Founders Day"},
	}))

	result, err := svc.Apply(ctx, leave.ApplyInput{
		StudentID: testStudent,
		From:      date(5),
		To:        date(5),
	})
	require.NoError(t, err)
	require.Len(t, result.Created, 1)
	assert.Equal(t, mess.ScopeDinnerOnly, result.Created[0].Scope)
}

func TestService_ApplyTopsUpPartialCoverage(t *testing.T) {
	// An existing lunch_only leave plus a new full_day request writes only the
	// missing dinner record.

	svc, _ := newFixture(t, at(1, 8, 0))
	ctx := context.Background()

	_, err := svc.Apply(ctx, leave.ApplyInput{
		StudentID:  testStudent,
		From:       date(5),
		To:         date(5),
		StartScope: mess.ScopeLunchOnly,
		EndScope:   mess.ScopeLunchOnly,
	})
	require.NoError(t, err)

	result, err := svc.Apply(ctx, leave.ApplyInput{
		StudentID: testStudent,
		From:      date(5),
		To:        date(5),
	})
	require.NoError(t, err)
	require.Len(t, result.Created, 1)
	assert.Equal(t, mess.ScopeDinnerOnly, result.Created[0].Scope)
}

func TestService_ApplyDeniedAfterCutoff(t *testing.T) {
	// Scenario: lunch cutoff 10:00 already passed at 10:05; a full_day request
	// for today is denied outright even though dinner is still open.

	svc, mem := newFixture(t, at(5, 10, 5))
	ctx := context.Background()

	_, err := svc.Apply(ctx, leave.ApplyInput{
		StudentID: testStudent,
		From:      date(5),
		To:        date(5),
	})
	assert.ErrorIs(t, err, mess.ErrDeadlinePassed)

	records, err := mem.ListLeaves(ctx, testStudent)
	require.NoError(t, err)
	assert.Empty(t, records, "a denied application must write nothing")
}

func TestService_ApplyDinnerOnlyStillOpen(t *testing.T) {
	svc, _ := newFixture(t, at(5, 10, 5))

	result, err := svc.Apply(context.Background(), leave.ApplyInput{
		StudentID:  testStudent,
		From:       date(5),
		To:         date(5),
		StartScope: mess.ScopeDinnerOnly,
		EndScope:   mess.ScopeDinnerOnly,
	})
	require.NoError(t, err)
	require.Len(t, result.Created, 1)
	assert.Equal(t, mess.ScopeDinnerOnly, result.Created[0].Scope)
}

func TestService_ApplyRejectsInactivePlan(t *testing.T) {
	svc, mem := newFixture(t, at(1, 8, 0))
	ctx := context.Background()

	require.NoError(t, mem.SavePlan(ctx, mess.Plan{
		StudentID: "student-2",
		MessID:    testMess,
		Type:      mess.PlanFullDay,
	}))

	_, err := svc.Apply(ctx, leave.ApplyInput{
		StudentID: "student-2",
		From:      date(5),
		To:        date(5),
	})
	assert.ErrorIs(t, err, mess.ErrPlanNotActive)
}

func TestService_ApplyInvalidRange(t *testing.T) {
	svc, _ := newFixture(t, at(1, 8, 0))

	_, err := svc.Apply(context.Background(), leave.ApplyInput{
		StudentID: testStudent,
		From:      date(6),
		To:        date(5),
	})
	assert.ErrorIs(t, err, mess.ErrInvalidRange)
}

// =============================================================================
// CANCEL
// =============================================================================

func TestService_CancelMergedFullDayDeletesPair(t *testing.T) {
	// GIVEN: a full_day leave stored as a lunch+dinner record pair
	// WHEN: cancelling the merged entry
	// THEN: both records are removed together

	svc, mem := newFixture(t, at(1, 8, 0))
	ctx := context.Background()

	_, err := svc.Apply(ctx, leave.ApplyInput{StudentID: testStudent, From: date(5), To: date(5)})
	require.NoError(t, err)

	result, err := svc.Cancel(ctx, testStudent, date(5))
	require.NoError(t, err)
	assert.Equal(t, leave.ViewMergedFullDay, result.View.Kind)
	assert.Len(t, result.Deleted, 2)

	records, err := mem.ListLeaves(ctx, testStudent)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestService_CancelSingleMeal(t *testing.T) {
	svc, mem := newFixture(t, at(1, 8, 0))
	ctx := context.Background()

	_, err := svc.Apply(ctx, leave.ApplyInput{
		StudentID:  testStudent,
		From:       date(5),
		To:         date(5),
		StartScope: mess.ScopeLunchOnly,
		EndScope:   mess.ScopeLunchOnly,
	})
	require.NoError(t, err)

	result, err := svc.Cancel(ctx, testStudent, date(5))
	require.NoError(t, err)
	assert.Equal(t, leave.ViewSingle, result.View.Kind)
	assert.Len(t, result.Deleted, 1)

	records, err := mem.ListLeaves(ctx, testStudent)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestService_CancelNothingThere(t *testing.T) {
	svc, _ := newFixture(t, at(1, 8, 0))

	_, err := svc.Cancel(context.Background(), testStudent, date(5))
	assert.ErrorIs(t, err, mess.ErrNothingToCancel)
}

func TestService_CancelGatedSymmetrically(t *testing.T) {
	// A leave filed in time cannot be un-filed once its cutoff passes.

	svc, mem := newFixture(t, at(1, 8, 0))
	ctx := context.Background()

	_, err := svc.Apply(ctx, leave.ApplyInput{StudentID: testStudent, From: date(5), To: date(5)})
	require.NoError(t, err)

	late := leave.NewService(mem, mem, mess.FixedClock{T: at(5, 10, 5)})
	_, err = late.Cancel(ctx, testStudent, date(5))
	assert.ErrorIs(t, err, mess.ErrDeadlinePassed)

	records, err := mem.ListLeaves(ctx, testStudent)
	require.NoError(t, err)
	assert.Len(t, records, 2, "a denied cancellation must delete nothing")
}
