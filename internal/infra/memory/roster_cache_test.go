package memory

import (
	"context"
	"testing"
	"time"

	"rollbook-service/internal/app"
	"rollbook-service/internal/domain"
)

type countingRoster struct {
	app.Roster
	lists int
}

func (r *countingRoster) List(ctx context.Context) ([]domain.Student, error) {
	r.lists++
	return r.Roster.List(ctx)
}

func TestRosterCacheServesRepeatLists(t *testing.T) {
	ctx := context.Background()
	inner := &countingRoster{Roster: NewRoster()}
	if _, err := inner.Create(ctx, domain.Student{Name: "Ann", Class: "7A"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	cache := NewRosterCache(inner, time.Minute)

	if _, err := cache.List(ctx); err != nil {
		t.Fatalf("list: %v", err)
	}
	if _, err := cache.List(ctx); err != nil {
		t.Fatalf("list 2: %v", err)
	}
	if inner.lists != 1 {
		t.Fatalf("backing store listed %d times, want 1", inner.lists)
	}
}

func TestRosterCacheInvalidatesOnMutation(t *testing.T) {
	ctx := context.Background()
	inner := &countingRoster{Roster: NewRoster()}
	cache := NewRosterCache(inner, time.Minute)

	if _, err := cache.List(ctx); err != nil {
		t.Fatalf("list: %v", err)
	}
	if _, err := cache.Create(ctx, domain.Student{Name: "New", Class: "7A"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	students, err := cache.List(ctx)
	if err != nil {
		t.Fatalf("list after create: %v", err)
	}
	if len(students) != 1 {
		t.Fatalf("stale snapshot served after mutation: %v", students)
	}
	if inner.lists != 2 {
		t.Fatalf("backing store listed %d times, want 2", inner.lists)
	}
}
