// Package store provides the in-memory implementation of the persistence
// interfaces, for tests and development.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/mess-engine/mess"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory implements mess.RecordStore, mess.PaymentStore and
// mess.SettingsStore with mutex-guarded maps. Batch writes are checked in
// full before any mutation so they stay all-or-nothing.
type Memory struct {
	mu       sync.RWMutex
	leaves   map[string][]mess.LeaveRecord   // by student
	holidays map[string][]mess.HolidayRecord // by mess
	plans    map[string]mess.Plan            // by student
	payments map[paymentKey][]mess.Payment
	settings map[string]mess.Settings // by mess
}

type paymentKey struct {
	StudentID string
	Period    mess.Month
}

func NewMemory() *Memory {
	return &Memory{
		leaves:   make(map[string][]mess.LeaveRecord),
		holidays: make(map[string][]mess.HolidayRecord),
		plans:    make(map[string]mess.Plan),
		payments: make(map[paymentKey][]mess.Payment),
		settings: make(map[string]mess.Settings),
	}
}

// =============================================================================
// RECORD STORE
// =============================================================================

func (m *Memory) ListLeaves(_ context.Context, studentID string) ([]mess.LeaveRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]mess.LeaveRecord, len(m.leaves[studentID]))
	copy(result, m.leaves[studentID])
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

func (m *Memory) ListHolidays(_ context.Context, messID string) ([]mess.HolidayRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]mess.HolidayRecord, len(m.holidays[messID]))
	copy(result, m.holidays[messID])
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

func (m *Memory) GetPlan(_ context.Context, studentID string) (mess.Plan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	plan, ok := m.plans[studentID]
	if !ok {
		return mess.Plan{}, mess.ErrNotFound
	}
	return plan, nil
}

func (m *Memory) SavePlan(_ context.Context, plan mess.Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plans[plan.StudentID] = plan
	return nil
}

// CreateLeaves appends a batch atomically. The duplicate check over the whole
// batch runs before any record is written.
func (m *Memory) CreateLeaves(_ context.Context, records []mess.LeaveRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range records {
		for _, existing := range m.leaves[r.StudentID] {
			if existing.Date.Equal(r.Date) && existing.Scope == r.Scope {
				return mess.ErrDuplicateRecord
			}
		}
	}
	for _, r := range records {
		m.leaves[r.StudentID] = append(m.leaves[r.StudentID], r)
	}
	return nil
}

// DeleteLeaves removes a batch atomically: if any ID is missing, nothing is
// deleted.
func (m *Memory) DeleteLeaves(_ context.Context, studentID string, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	byID := make(map[string]bool, len(ids))
	for _, id := range ids {
		byID[id] = true
	}
	found := 0
	for _, r := range m.leaves[studentID] {
		if byID[r.ID] {
			found++
		}
	}
	if found != len(ids) {
		return mess.ErrNotFound
	}

	var kept []mess.LeaveRecord
	for _, r := range m.leaves[studentID] {
		if !byID[r.ID] {
			kept = append(kept, r)
		}
	}
	m.leaves[studentID] = kept
	return nil
}

func (m *Memory) CreateHolidays(_ context.Context, records []mess.HolidayRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range records {
		for _, existing := range m.holidays[r.MessID] {
			if existing.Date.Equal(r.Date) && existing.Scope == r.Scope {
				return mess.ErrDuplicateRecord
			}
		}
	}
	for _, r := range records {
		m.holidays[r.MessID] = append(m.holidays[r.MessID], r)
	}
	return nil
}

func (m *Memory) DeleteHoliday(_ context.Context, messID string, date mess.Date) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var kept []mess.HolidayRecord
	removed := false
	for _, r := range m.holidays[messID] {
		if r.Date.Equal(date) {
			removed = true
			continue
		}
		kept = append(kept, r)
	}
	if !removed {
		return mess.ErrNotFound
	}
	m.holidays[messID] = kept
	return nil
}

// =============================================================================
// PAYMENTS
// =============================================================================

func (m *Memory) ListPayments(_ context.Context, studentID string, period mess.Month) ([]mess.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	k := paymentKey{StudentID: studentID, Period: period}
	result := make([]mess.Payment, len(m.payments[k]))
	copy(result, m.payments[k])
	return result, nil
}

func (m *Memory) RecordPayment(_ context.Context, payment mess.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := paymentKey{StudentID: payment.StudentID, Period: payment.Period}
	m.payments[k] = append(m.payments[k], payment)
	return nil
}

// =============================================================================
// SETTINGS
// =============================================================================

func (m *Memory) GetMessSettings(_ context.Context, messID string) (mess.Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.settings[messID]
	if !ok {
		return mess.Settings{}, mess.ErrNotFound
	}
	return s, nil
}

func (m *Memory) SaveMessSettings(_ context.Context, settings mess.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[settings.MessID] = settings
	return nil
}
