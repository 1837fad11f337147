package memory

import (
	"context"
	"sync"

	"rollbook-service/internal/domain"
)

// AttendanceStore is an in-memory implementation of app.AttendanceStore.
// Days are sparse: only Present and Late entries exist.
type AttendanceStore struct {
	mu   sync.RWMutex
	days map[string]map[string]domain.Status
}

func NewAttendanceStore() *AttendanceStore {
	return &AttendanceStore{days: make(map[string]map[string]domain.Status)}
}

func (s *AttendanceStore) SetStatus(_ context.Context, date, studentID string, status domain.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	day, ok := s.days[date]
	if !ok {
		if status == domain.StatusAbsent {
			return nil
		}
		day = make(map[string]domain.Status)
		s.days[date] = day
	}
	if status == domain.StatusAbsent {
		delete(day, studentID)
		return nil
	}
	day[studentID] = status
	return nil
}

func (s *AttendanceStore) ResetDay(_ context.Context, date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.days[date] = make(map[string]domain.Status)
	return nil
}

func (s *AttendanceStore) GetDay(_ context.Context, date string) (map[string]domain.Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyDay(s.days[date]), nil
}

func (s *AttendanceStore) MergeDay(_ context.Context, date string, entries map[string]domain.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	day, ok := s.days[date]
	if !ok {
		day = make(map[string]domain.Status, len(entries))
		s.days[date] = day
	}
	for id, status := range entries {
		if status == domain.StatusAbsent {
			delete(day, id)
			continue
		}
		day[id] = status
	}
	return nil
}

func (s *AttendanceStore) AllDays(_ context.Context) (map[string]map[string]domain.Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]map[string]domain.Status, len(s.days))
	for date, day := range s.days {
		out[date] = copyDay(day)
	}
	return out, nil
}

func copyDay(day map[string]domain.Status) map[string]domain.Status {
	out := make(map[string]domain.Status, len(day))
	for id, status := range day {
		out[id] = status
	}
	return out
}
