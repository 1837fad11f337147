package app

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"rollbook-service/internal/domain"
)

// Importer merges bulk spreadsheet rows into the roster and the attendance
// store without duplicating students or double counting historical points.
type Importer struct {
	roster     Roster
	attendance AttendanceStore
	quiz       QuizLedger
}

func NewImporter(roster Roster, attendance AttendanceStore, quiz QuizLedger) *Importer {
	return &Importer{roster: roster, attendance: attendance, quiz: quiz}
}

// Named row fields; every other column whose name is a YYYY-MM-DD date carries
// a P/L status code for that date.
const (
	fieldName       = "name"
	fieldClass      = "class"
	fieldMobile     = "mobile"
	fieldQuizPoints = "quizPoints"
)

// Run processes rows in order: dedup against the roster, create missing
// students, then commit attendance merges one batch per date. Existing
// students matched by dedup key are not re-created, but their rows' date
// columns still land under the existing id.
//
// Creations commit as one batch before any attendance batch. Each date's
// batch merges into that date's map, so entries written by other sources
// stay untouched. Cancelling ctx stops further batches after the current
// one; the result reports how many date batches made it.
func (im *Importer) Run(ctx context.Context, rows []domain.ImportRow, progress func(done, total int)) (domain.ImportResult, error) {
	var result domain.ImportResult

	existing, err := im.roster.List(ctx)
	if err != nil {
		return result, fmt.Errorf("load roster: %w", err)
	}
	// One dedup snapshot for the whole run; rows created in this run join it
	// immediately so a re-listed person stays a duplicate.
	seen := make(map[string]string, len(existing))
	for _, s := range existing {
		seen[s.DedupKey()] = s.ID
	}

	var created []domain.Student
	seedPoints := make(map[string]int)
	staged := make(map[string]map[string]domain.Status)

	for i, row := range rows {
		name := strings.TrimSpace(row[fieldName])
		class := strings.TrimSpace(row[fieldClass])
		if name == "" || class == "" {
			result.Failed++
			report(progress, i+1, len(rows))
			continue
		}
		mobile := strings.TrimSpace(row[fieldMobile])
		student := domain.Student{Name: name, Class: class, Mobile: mobile}

		id, dup := seen[student.DedupKey()]
		if dup {
			result.Skipped++
		} else {
			student.ID = uuid.NewString()
			id = student.ID
			seen[student.DedupKey()] = id
			created = append(created, student)
			if pts, err := strconv.Atoi(strings.TrimSpace(row[fieldQuizPoints])); err == nil && pts > 0 {
				seedPoints[id] = pts
			}
			result.Created++
		}

		for column, value := range row {
			if !domain.IsDate(column) {
				continue
			}
			status, ok := domain.ParseStatusCode(value)
			if !ok {
				// Unknown codes mean absent for that date, not an error.
				continue
			}
			if staged[column] == nil {
				staged[column] = make(map[string]domain.Status)
			}
			staged[column][id] = status
		}
		report(progress, i+1, len(rows))
	}

	if len(created) > 0 {
		if err := im.roster.CreateBatch(ctx, created); err != nil {
			return result, fmt.Errorf("commit students: %w", err)
		}
	}
	for id, pts := range seedPoints {
		if err := im.quiz.SeedTotal(ctx, id, pts); err != nil {
			return result, fmt.Errorf("seed quiz points: %w", err)
		}
	}

	dates := make([]string, 0, len(staged))
	for date := range staged {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	result.DatesTotal = len(dates)

	var firstErr error
	for _, date := range dates {
		if err := ctx.Err(); err != nil {
			result.DatesFailed = result.DatesTotal - result.DatesCommitted
			return result, err
		}
		if err := im.attendance.MergeDay(ctx, date, staged[date]); err != nil {
			result.DatesFailed++
			if firstErr == nil {
				firstErr = fmt.Errorf("merge %s: %w", date, err)
			}
			continue
		}
		result.DatesCommitted++
	}
	return result, firstErr
}

func report(progress func(done, total int), done, total int) {
	if progress != nil {
		progress(done, total)
	}
}
