// Package holiday implements admin-declared mess-wide closures.
// Holidays share the leave range-expansion rules but carry no deadline gate,
// and unlike leave they may be stored at full_day scope directly.
package holiday

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/warp/mess-engine/leave"
	"github.com/warp/mess-engine/mess"
)

// Service handles holiday declaration and removal. Admin only; callers are
// expected to have authorized the actor already.
type Service struct {
	Store mess.RecordStore
}

func NewService(store mess.RecordStore) *Service {
	return &Service{Store: store}
}

// DeclareInput is a from/to holiday declaration. Scopes default to full_day.
type DeclareInput struct {
	MessID     string
	From       mess.Date
	To         mess.Date
	StartScope mess.MealScope
	EndScope   mess.MealScope
	Label      string
}

// Declare expands the range per day and writes every not-yet-covered scope in
// one atomic batch. Days already fully covered by an existing holiday are
// skipped; partially covered days get only the uncovered meal(s).
func (s *Service) Declare(ctx context.Context, in DeclareInput) ([]mess.HolidayRecord, error) {
	days, err := leave.ExpandRange(in.From, in.To, in.StartScope, in.EndScope)
	if err != nil {
		return nil, err
	}

	existing, err := s.Store.ListHolidays(ctx, in.MessID)
	if err != nil {
		return nil, fmt.Errorf("load holidays: %w", err)
	}
	byDay := make(map[mess.Date]mess.MealScope)
	for _, h := range existing {
		byDay[h.Date] = byDay[h.Date].Union(h.Scope)
	}

	var created []mess.HolidayRecord
	for _, d := range days {
		uncovered := d.Scope.Minus(byDay[d.Date])
		if uncovered.IsZero() {
			continue
		}
		created = append(created, mess.HolidayRecord{
			ID:     uuid.NewString(),
			MessID: in.MessID,
			Date:   d.Date,
			Scope:  uncovered,
			Label:  in.Label,
		})
	}
	if len(created) == 0 {
		return nil, mess.ErrAlreadyCovered
	}

	if err := s.Store.CreateHolidays(ctx, created); err != nil {
		return nil, fmt.Errorf("create holidays: %w", err)
	}
	return created, nil
}

// Remove deletes every holiday record for the mess on the date.
func (s *Service) Remove(ctx context.Context, messID string, date mess.Date) error {
	return s.Store.DeleteHoliday(ctx, messID, date)
}
