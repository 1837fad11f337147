package app_test

import (
	"errors"
	"math/rand"
	"testing"

	"rollbook-service/internal/app"
	"rollbook-service/internal/domain"
)

func TestShuffleTeamsPartitionsEveryone(t *testing.T) {
	students := make([]domain.Student, 7)
	for i := range students {
		students[i] = domain.Student{ID: string(rune('a' + i))}
	}

	teams, err := app.ShuffleTeams(rand.New(rand.NewSource(1)), students, 3)
	if err != nil {
		t.Fatalf("shuffle: %v", err)
	}
	if len(teams) != 3 {
		t.Fatalf("teams = %d, want 3", len(teams))
	}

	seen := make(map[string]bool)
	for _, team := range teams {
		if len(team) < 2 || len(team) > 3 {
			t.Fatalf("uneven team size %d", len(team))
		}
		for _, s := range team {
			if seen[s.ID] {
				t.Fatalf("student %s dealt twice", s.ID)
			}
			seen[s.ID] = true
		}
	}
	if len(seen) != len(students) {
		t.Fatalf("dealt %d students, want %d", len(seen), len(students))
	}
}

func TestShuffleTeamsValidation(t *testing.T) {
	if _, err := app.ShuffleTeams(rand.New(rand.NewSource(1)), nil, 2); !errors.Is(err, domain.ErrNoEligibleStudents) {
		t.Fatalf("expected no-students error, got %v", err)
	}
	one := []domain.Student{{ID: "a"}}
	if _, err := app.ShuffleTeams(rand.New(rand.NewSource(1)), one, 2); !errors.Is(err, domain.ErrTooManyTeams) {
		t.Fatalf("expected too-many-teams error, got %v", err)
	}
}
