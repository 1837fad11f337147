package app

import (
	"math/rand"

	"rollbook-service/internal/domain"
)

// ShuffleTeams deals students into count teams at random. Team sizes differ by
// at most one; earlier teams absorb the remainder.
func ShuffleTeams(rnd *rand.Rand, students []domain.Student, count int) ([][]domain.Student, error) {
	if len(students) == 0 {
		return nil, domain.ErrNoEligibleStudents
	}
	if count < 1 || count > len(students) {
		return nil, domain.ErrTooManyTeams
	}

	shuffled := make([]domain.Student, len(students))
	copy(shuffled, students)
	rnd.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	teams := make([][]domain.Student, count)
	for i, student := range shuffled {
		teams[i%count] = append(teams[i%count], student)
	}
	return teams, nil
}
