package memory

import (
	"context"
	"sync"

	"rollbook-service/internal/domain"
)

// QuizLedger is an in-memory implementation of app.QuizLedger. One mutex
// guards both the day records and the totals, so the undo-then-apply sequence
// of ApplyDayResult is atomic by construction.
type QuizLedger struct {
	mu     sync.RWMutex
	days   map[string]domain.QuizDay
	totals map[string]int
}

func NewQuizLedger() *QuizLedger {
	return &QuizLedger{
		days:   make(map[string]domain.QuizDay),
		totals: make(map[string]int),
	}
}

func (l *QuizLedger) Day(_ context.Context, date string) (domain.QuizDay, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.days[date], nil
}

func (l *QuizLedger) ApplyDayResult(_ context.Context, date string, placements domain.QuizDay) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.applyLocked(date, placements)
	return nil
}

func (l *QuizLedger) ClearDay(_ context.Context, date string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.applyLocked(date, domain.QuizDay{})
	return nil
}

// applyLocked undoes the date's previous contributions, applies the new ones
// and overwrites the day record. Zero placements delete the record.
func (l *QuizLedger) applyLocked(date string, placements domain.QuizDay) {
	for id, pts := range l.days[date].Contributions() {
		l.totals[id] -= pts
		if l.totals[id] == 0 {
			delete(l.totals, id)
		}
	}
	for id, pts := range placements.Contributions() {
		l.totals[id] += pts
	}
	if placements.IsZero() {
		delete(l.days, date)
		return
	}
	l.days[date] = placements
}

func (l *QuizLedger) ResetAll(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	// Totals and day records go together; dropping only the totals would let
	// the next day edit subtract points that were never paid out.
	l.days = make(map[string]domain.QuizDay)
	l.totals = make(map[string]int)
	return nil
}

func (l *QuizLedger) Totals(_ context.Context) (map[string]int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string]int, len(l.totals))
	for id, pts := range l.totals {
		out[id] = pts
	}
	return out, nil
}

func (l *QuizLedger) SeedTotal(_ context.Context, studentID string, points int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if points == 0 {
		delete(l.totals, studentID)
		return nil
	}
	l.totals[studentID] = points
	return nil
}
