package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"rollbook-service/internal/domain"
)

// Roster is an in-memory implementation of app.Roster.
type Roster struct {
	mu       sync.RWMutex
	students map[string]domain.Student
}

func NewRoster() *Roster {
	return &Roster{students: make(map[string]domain.Student)}
}

func (r *Roster) List(_ context.Context) ([]domain.Student, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Student, 0, len(r.students))
	for _, s := range r.students {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *Roster) Get(_ context.Context, id string) (domain.Student, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.students[id]
	if !ok {
		return domain.Student{}, domain.ErrStudentNotFound
	}
	return s, nil
}

func (r *Roster) Create(_ context.Context, s domain.Student) (domain.Student, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.students[s.ID] = s
	return s, nil
}

func (r *Roster) CreateBatch(_ context.Context, students []domain.Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range students {
		if s.ID == "" {
			s.ID = uuid.NewString()
		}
		r.students[s.ID] = s
	}
	return nil
}

func (r *Roster) Update(_ context.Context, s domain.Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.students[s.ID]; !ok {
		return domain.ErrStudentNotFound
	}
	r.students[s.ID] = s
	return nil
}

func (r *Roster) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.students[id]; !ok {
		return domain.ErrStudentNotFound
	}
	delete(r.students, id)
	return nil
}
