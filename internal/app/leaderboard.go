package app

import (
	"sort"
	"time"

	"rollbook-service/internal/domain"
)

// BuildDailyBoard ranks students by one date's attendance points plus the
// cumulative quiz totals. Totals keyed by ids no longer on the roster are
// silently dropped, so deleted students never crash a board.
func BuildDailyBoard(date string, students []domain.Student, day map[string]domain.Status, totals map[string]int, now time.Time) domain.Board {
	rows := make([]domain.BoardRow, 0, len(students))
	for _, student := range students {
		status, ok := day[student.ID]
		if !ok {
			status = domain.StatusAbsent
		}
		rows = append(rows, domain.BoardRow{
			StudentID:        student.ID,
			Name:             student.Name,
			Class:            student.Class,
			Status:           status,
			AttendancePoints: status.Points(),
			QuizPoints:       totals[student.ID],
		})
	}
	return domain.Board{
		Mode:      domain.BoardDaily,
		Date:      date,
		Rows:      rankRows(rows),
		UpdatedAt: now,
	}
}

// BuildOverallBoard ranks students by attendance points summed over all dates
// plus the cumulative quiz totals.
func BuildOverallBoard(students []domain.Student, days map[string]map[string]domain.Status, totals map[string]int, now time.Time) domain.Board {
	attendance := make(map[string]int, len(students))
	for _, day := range days {
		for id, status := range day {
			attendance[id] += status.Points()
		}
	}
	rows := make([]domain.BoardRow, 0, len(students))
	for _, student := range students {
		rows = append(rows, domain.BoardRow{
			StudentID:        student.ID,
			Name:             student.Name,
			Class:            student.Class,
			AttendancePoints: attendance[student.ID],
			QuizPoints:       totals[student.ID],
		})
	}
	return domain.Board{
		Mode:      domain.BoardOverall,
		Rows:      rankRows(rows),
		UpdatedAt: now,
	}
}

// rankRows computes totals and sorts grand total descending. Ties order by
// name, then id, so recomputed boards always come out identical.
func rankRows(rows []domain.BoardRow) []domain.BoardRow {
	for i := range rows {
		rows[i].Total = rows[i].AttendancePoints + rows[i].QuizPoints
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Total != rows[j].Total {
			return rows[i].Total > rows[j].Total
		}
		if rows[i].Name != rows[j].Name {
			return rows[i].Name < rows[j].Name
		}
		return rows[i].StudentID < rows[j].StudentID
	})
	return rows
}
