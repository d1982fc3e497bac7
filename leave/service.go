/*
service.go - Leave application and cancellation with transactional guarantees

PURPOSE:
  Orchestrates the full apply/cancel lifecycle: range validation, deadline
  gating, coverage subtraction against the latest record snapshot, and a
  single atomic store batch per operation.

COMMIT-TIME REVALIDATION:
  The deadline gate is checked twice: once up front (fast refusal) and once
  more immediately before the store write. If the wall clock crosses a cutoff
  between check and commit, the stricter outcome (deny) wins.

ATOMICITY:
  A range application writes all of its records in one CreateLeaves batch;
  cancelling a merged full-day entry deletes the lunch+dinner pair in one
  DeleteLeaves batch. Partial completion cannot produce a dangling half-day.
*/
package leave

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/warp/mess-engine/mess"
)

// Service handles the leave request lifecycle.
type Service struct {
	Store    mess.RecordStore
	Settings mess.SettingsStore
	Clock    mess.Clock
}

func NewService(store mess.RecordStore, settings mess.SettingsStore, clock mess.Clock) *Service {
	return &Service{Store: store, Settings: settings, Clock: clock}
}

// =============================================================================
// APPLY - Range leave application
// =============================================================================

// ApplyInput is a from/to leave application. StartScope and EndScope allow a
// partial first or last day (e.g., "start from dinner"); ScopeNone defaults
// to full_day. A single-day application uses the intersection of both.
type ApplyInput struct {
	StudentID  string
	From       mess.Date
	To         mess.Date
	StartScope mess.MealScope
	EndScope   mess.MealScope
	Reason     string
}

// ApplyResult reports what an application actually wrote. Skipped lists days
// the request did not touch because existing leave or holiday already covered
// the requested meals.
type ApplyResult struct {
	Created []mess.LeaveRecord
	Skipped []mess.Date
}

// Apply validates, expands and persists a leave application.
//
// Errors: ErrInvalidRange before anything else; ErrPlanNotActive for a
// student whose plan never activated; ErrDeadlinePassed when any requested
// day is in the past or today's cutoff has gone; ErrAlreadyCovered when every
// requested meal is already covered (benign no-op, nothing written).
func (s *Service) Apply(ctx context.Context, in ApplyInput) (*ApplyResult, error) {
	days, err := ExpandRange(in.From, in.To, in.StartScope, in.EndScope)
	if err != nil {
		return nil, err
	}

	plan, err := s.Store.GetPlan(ctx, in.StudentID)
	if err != nil {
		return nil, fmt.Errorf("load plan: %w", err)
	}
	if !plan.Activated() {
		return nil, mess.ErrPlanNotActive
	}

	settings, err := s.Settings.GetMessSettings(ctx, plan.MessID)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	gate := NewGate(settings)

	now := s.Clock.Now()
	for _, d := range days {
		if err := gate.Check(d.Date, d.Scope, now); err != nil {
			return nil, err
		}
	}

	// Snapshot the existing streams and subtract coverage per day.
	existing, err := s.Store.ListLeaves(ctx, in.StudentID)
	if err != nil {
		return nil, fmt.Errorf("load leaves: %w", err)
	}
	holidays, err := s.Store.ListHolidays(ctx, plan.MessID)
	if err != nil {
		return nil, fmt.Errorf("load holidays: %w", err)
	}
	leaveByDay := make(map[mess.Date]mess.MealScope)
	for _, r := range existing {
		leaveByDay[r.Date] = leaveByDay[r.Date].Union(r.Scope)
	}
	holidayByDay := make(map[mess.Date]mess.MealScope)
	for _, h := range holidays {
		holidayByDay[h.Date] = holidayByDay[h.Date].Union(h.Scope)
	}

	result := &ApplyResult{}
	for _, d := range days {
		uncovered := Uncovered(d.Scope, holidayByDay[d.Date], leaveByDay[d.Date])
		if uncovered.IsZero() {
			result.Skipped = append(result.Skipped, d.Date)
			continue
		}
		for _, scope := range StorageScopes(uncovered) {
			result.Created = append(result.Created, mess.LeaveRecord{
				ID:        uuid.NewString(),
				StudentID: in.StudentID,
				Date:      d.Date,
				Scope:     scope,
				Reason:    in.Reason,
				CreatedAt: now,
			})
		}
	}
	if len(result.Created) == 0 {
		return nil, mess.ErrAlreadyCovered
	}

	// Re-validate at commit time: if the clock crossed a cutoff between the
	// first check and here, deny rather than write.
	commitNow := s.Clock.Now()
	for _, r := range result.Created {
		if err := gate.Check(r.Date, r.Scope, commitNow); err != nil {
			return nil, err
		}
	}

	if err := s.Store.CreateLeaves(ctx, result.Created); err != nil {
		return nil, fmt.Errorf("create leaves: %w", err)
	}
	return result, nil
}

// =============================================================================
// CANCEL - Single or merged full-day cancellation
// =============================================================================

// CancelResult reports which records a cancellation removed.
type CancelResult struct {
	View    View
	Deleted []string
}

// Cancel removes the student's leave on a date. A merged full-day entry has
// both underlying records deleted together in one atomic batch; partial
// failure cannot leave one meal's leave dangling.
//
// The gate applies symmetrically: a leave that could no longer be filed for
// lack of time can no longer be un-filed either.
func (s *Service) Cancel(ctx context.Context, studentID string, date mess.Date) (*CancelResult, error) {
	records, err := s.Store.ListLeaves(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("load leaves: %w", err)
	}
	view, ok := ViewAt(records, date)
	if !ok {
		return nil, mess.ErrNothingToCancel
	}

	plan, err := s.Store.GetPlan(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("load plan: %w", err)
	}
	settings, err := s.Settings.GetMessSettings(ctx, plan.MessID)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	gate := NewGate(settings)

	if err := gate.Check(view.Date, view.Scope, s.Clock.Now()); err != nil {
		return nil, err
	}
	// Commit-time revalidation, same rationale as Apply.
	if err := gate.Check(view.Date, view.Scope, s.Clock.Now()); err != nil {
		return nil, err
	}

	if err := s.Store.DeleteLeaves(ctx, studentID, view.RecordIDs); err != nil {
		return nil, fmt.Errorf("delete leaves: %w", err)
	}
	return &CancelResult{View: view, Deleted: view.RecordIDs}, nil
}
