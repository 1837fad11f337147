package memory

import (
	"context"
	"testing"

	"rollbook-service/internal/domain"
)

// checkInvariant verifies totals equal the sum of every stored day's contributions.
func checkInvariant(t *testing.T, l *QuizLedger) {
	t.Helper()
	ctx := context.Background()
	totals, err := l.Totals(ctx)
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	want := make(map[string]int)
	l.mu.RLock()
	for _, day := range l.days {
		for id, pts := range day.Contributions() {
			want[id] += pts
		}
	}
	l.mu.RUnlock()
	if len(totals) != len(want) {
		t.Fatalf("totals %v diverged from day history %v", totals, want)
	}
	for id, pts := range want {
		if totals[id] != pts {
			t.Fatalf("total[%s] = %d, history says %d", id, totals[id], pts)
		}
	}
}

func TestApplyDayResultMaintainsInvariant(t *testing.T) {
	ctx := context.Background()
	ledger := NewQuizLedger()

	edits := []struct {
		date       string
		placements domain.QuizDay
	}{
		{"2024-07-01", domain.QuizDay{First: "a", Second: "b", Third: "c"}},
		{"2024-07-01", domain.QuizDay{First: "b"}},
		{"2024-07-02", domain.QuizDay{First: "a"}},
		{"2024-07-01", domain.QuizDay{First: "b"}}, // repeat, idempotent
		{"2024-07-02", domain.QuizDay{}},           // clears the day
	}
	for _, edit := range edits {
		if err := ledger.ApplyDayResult(ctx, edit.date, edit.placements); err != nil {
			t.Fatalf("apply %s: %v", edit.date, err)
		}
		checkInvariant(t, ledger)
	}

	totals, _ := ledger.Totals(ctx)
	if totals["b"] != 100 || totals["a"] != 0 || totals["c"] != 0 {
		t.Fatalf("totals = %v, want only b=100", totals)
	}
}

func TestClearDayRemovesRecordAndPoints(t *testing.T) {
	ctx := context.Background()
	ledger := NewQuizLedger()

	if err := ledger.ApplyDayResult(ctx, "2024-07-01", domain.QuizDay{First: "a"}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if err := ledger.ClearDay(ctx, "2024-07-01"); err != nil {
		t.Fatalf("clear: %v", err)
	}

	day, _ := ledger.Day(ctx, "2024-07-01")
	if !day.IsZero() {
		t.Fatalf("day survived clear: %+v", day)
	}
	totals, _ := ledger.Totals(ctx)
	if len(totals) != 0 {
		t.Fatalf("points survived clear: %v", totals)
	}
}

func TestResetAllClearsBothSides(t *testing.T) {
	ctx := context.Background()
	ledger := NewQuizLedger()

	_ = ledger.ApplyDayResult(ctx, "2024-07-01", domain.QuizDay{First: "a"})
	_ = ledger.ApplyDayResult(ctx, "2024-07-02", domain.QuizDay{First: "b"})
	if err := ledger.ResetAll(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}

	checkInvariant(t, ledger)
	totals, _ := ledger.Totals(ctx)
	if len(totals) != 0 {
		t.Fatalf("totals survived reset: %v", totals)
	}
	for _, date := range []string{"2024-07-01", "2024-07-02"} {
		day, _ := ledger.Day(ctx, date)
		if !day.IsZero() {
			t.Fatalf("day %s survived reset: %+v", date, day)
		}
	}
}

func TestSeedTotalBootstrapsImportedPoints(t *testing.T) {
	ctx := context.Background()
	ledger := NewQuizLedger()

	if err := ledger.SeedTotal(ctx, "a", 75); err != nil {
		t.Fatalf("seed: %v", err)
	}
	totals, _ := ledger.Totals(ctx)
	if totals["a"] != 75 {
		t.Fatalf("seeded total = %d, want 75", totals["a"])
	}
}
