package app

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"

	"rollbook-service/internal/domain"
)

// Roster abstracts how students are stored (in-memory, Postgres, etc).
type Roster interface {
	List(ctx context.Context) ([]domain.Student, error)
	Get(ctx context.Context, id string) (domain.Student, error)
	Create(ctx context.Context, s domain.Student) (domain.Student, error)
	CreateBatch(ctx context.Context, students []domain.Student) error
	Update(ctx context.Context, s domain.Student) error
	Delete(ctx context.Context, id string) error
}

// AttendanceStore holds one sparse student→status map per date.
type AttendanceStore interface {
	SetStatus(ctx context.Context, date, studentID string, status domain.Status) error
	ResetDay(ctx context.Context, date string) error
	GetDay(ctx context.Context, date string) (map[string]domain.Status, error)
	MergeDay(ctx context.Context, date string, entries map[string]domain.Status) error
	AllDays(ctx context.Context) (map[string]map[string]domain.Status, error)
}

// QuizLedger owns per-date placements and the cumulative quiz point totals.
// ApplyDayResult must atomically undo the date's previous contributions and
// apply the new ones; a lost race surfaces domain.ErrConflict.
type QuizLedger interface {
	Day(ctx context.Context, date string) (domain.QuizDay, error)
	ApplyDayResult(ctx context.Context, date string, placements domain.QuizDay) error
	ClearDay(ctx context.Context, date string) error
	ResetAll(ctx context.Context) error
	Totals(ctx context.Context) (map[string]int, error)
	SeedTotal(ctx context.Context, studentID string, points int) error
}

// LedgerService contains the attendance and points use cases.
type LedgerService struct {
	roster     Roster
	attendance AttendanceStore
	quiz       QuizLedger
	hub        *boardHub
	rnd        *rand.Rand
	rndMu      sync.Mutex
	now        func() time.Time
}

func NewLedgerService(roster Roster, attendance AttendanceStore, quiz QuizLedger) *LedgerService {
	return &LedgerService{
		roster:     roster,
		attendance: attendance,
		quiz:       quiz,
		hub:        newBoardHub(),
		rnd:        rand.New(rand.NewSource(time.Now().UnixNano())),
		now:        time.Now,
	}
}

// Students returns the current roster snapshot.
func (s *LedgerService) Students(ctx context.Context) ([]domain.Student, error) {
	return s.roster.List(ctx)
}

// CreateStudent adds a roster entry. Name and class are required.
func (s *LedgerService) CreateStudent(ctx context.Context, student domain.Student) (domain.Student, error) {
	if student.Name == "" || student.Class == "" {
		return domain.Student{}, domain.ErrMissingField
	}
	return s.roster.Create(ctx, student)
}

// UpdateStudent edits an existing roster entry.
func (s *LedgerService) UpdateStudent(ctx context.Context, student domain.Student) error {
	if student.Name == "" || student.Class == "" {
		return domain.ErrMissingField
	}
	return s.roster.Update(ctx, student)
}

// DeleteStudent removes a student from the roster. Historical attendance and
// quiz entries under the id are left in place; boards simply stop projecting them.
func (s *LedgerService) DeleteStudent(ctx context.Context, id string) error {
	return s.roster.Delete(ctx, id)
}

// MarkAttendance overwrites one student's status for a date. StatusAbsent
// removes the entry, restoring the sparse default.
func (s *LedgerService) MarkAttendance(ctx context.Context, date, studentID string, status domain.Status) error {
	if !domain.IsDate(date) {
		return domain.ErrInvalidDate
	}
	switch status {
	case domain.StatusPresent, domain.StatusLate, domain.StatusAbsent:
	default:
		return domain.ErrInvalidStatus
	}
	if _, err := s.roster.Get(ctx, studentID); err != nil {
		return err
	}
	if err := s.attendance.SetStatus(ctx, date, studentID, status); err != nil {
		return err
	}
	s.broadcast(ctx, date)
	return nil
}

// ResetAttendanceDay replaces a date's map with an empty one; every student
// becomes absent for that date. The caller is expected to have confirmed.
func (s *LedgerService) ResetAttendanceDay(ctx context.Context, date string) error {
	if !domain.IsDate(date) {
		return domain.ErrInvalidDate
	}
	if err := s.attendance.ResetDay(ctx, date); err != nil {
		return err
	}
	s.broadcast(ctx, date)
	return nil
}

// AttendanceDay returns a date's status map, empty if nothing was recorded.
func (s *LedgerService) AttendanceDay(ctx context.Context, date string) (map[string]domain.Status, error) {
	if !domain.IsDate(date) {
		return nil, domain.ErrInvalidDate
	}
	return s.attendance.GetDay(ctx, date)
}

// EligibleStudents returns the roster members marked Present or Late on date,
// the pool offerable for quiz placements and team shuffles.
func (s *LedgerService) EligibleStudents(ctx context.Context, date string) ([]domain.Student, error) {
	if !domain.IsDate(date) {
		return nil, domain.ErrInvalidDate
	}
	students, err := s.roster.List(ctx)
	if err != nil {
		return nil, err
	}
	day, err := s.attendance.GetDay(ctx, date)
	if err != nil {
		return nil, err
	}
	eligible := make([]domain.Student, 0, len(day))
	for _, student := range students {
		switch day[student.ID] {
		case domain.StatusPresent, domain.StatusLate:
			eligible = append(eligible, student)
		}
	}
	return eligible, nil
}

// LogQuizResult records a date's placements and reconciles cumulative totals.
// Re-logging the same date first undoes the previous placements, so edits
// never double count.
func (s *LedgerService) LogQuizResult(ctx context.Context, date string, placements domain.QuizDay) error {
	if !domain.IsDate(date) {
		return domain.ErrInvalidDate
	}
	if placements.HasDuplicate() {
		return domain.ErrDuplicatePlacement
	}
	day, err := s.attendance.GetDay(ctx, date)
	if err != nil {
		return err
	}
	for _, id := range placements.Placed() {
		if _, err := s.roster.Get(ctx, id); err != nil {
			return err
		}
		switch day[id] {
		case domain.StatusPresent, domain.StatusLate:
		default:
			return domain.ErrNotEligible
		}
	}
	if err := s.quiz.ApplyDayResult(ctx, date, placements); err != nil {
		return err
	}
	s.broadcast(ctx, date)
	return nil
}

// QuizDayResult returns a date's placements, zero-valued if none were logged.
func (s *LedgerService) QuizDayResult(ctx context.Context, date string) (domain.QuizDay, error) {
	if !domain.IsDate(date) {
		return domain.QuizDay{}, domain.ErrInvalidDate
	}
	return s.quiz.Day(ctx, date)
}

// ResetQuizDay withdraws a date's placements and their point contributions.
func (s *LedgerService) ResetQuizDay(ctx context.Context, date string) error {
	if !domain.IsDate(date) {
		return domain.ErrInvalidDate
	}
	if err := s.quiz.ClearDay(ctx, date); err != nil {
		return err
	}
	s.broadcast(ctx, date)
	return nil
}

// ResetAllQuizPoints zeroes every total and clears every quiz day together.
// Clearing only the totals would let the next edit of any day resurrect stale
// points when it undoes placements that were never paid out.
func (s *LedgerService) ResetAllQuizPoints(ctx context.Context) error {
	if err := s.quiz.ResetAll(ctx); err != nil {
		return err
	}
	s.hub.broadcastAll(ctx, s.boardFor)
	return nil
}

// QuizTotals returns the cumulative quiz points per student id.
func (s *LedgerService) QuizTotals(ctx context.Context) (map[string]int, error) {
	return s.quiz.Totals(ctx)
}

// DailyBoard ranks the roster by one date's attendance points plus the
// cumulative quiz totals.
func (s *LedgerService) DailyBoard(ctx context.Context, date string) (domain.Board, error) {
	if !domain.IsDate(date) {
		return domain.Board{}, domain.ErrInvalidDate
	}
	students, err := s.roster.List(ctx)
	if err != nil {
		return domain.Board{}, err
	}
	day, err := s.attendance.GetDay(ctx, date)
	if err != nil {
		return domain.Board{}, err
	}
	totals, err := s.quiz.Totals(ctx)
	if err != nil {
		return domain.Board{}, err
	}
	return BuildDailyBoard(date, students, day, totals, s.now()), nil
}

// OverallBoard ranks the roster by attendance points summed across all dates
// plus the cumulative quiz totals.
func (s *LedgerService) OverallBoard(ctx context.Context) (domain.Board, error) {
	students, err := s.roster.List(ctx)
	if err != nil {
		return domain.Board{}, err
	}
	days, err := s.attendance.AllDays(ctx)
	if err != nil {
		return domain.Board{}, err
	}
	totals, err := s.quiz.Totals(ctx)
	if err != nil {
		return domain.Board{}, err
	}
	return BuildOverallBoard(students, days, totals, s.now()), nil
}

// TeamShuffle splits the date's Present/Late students into count random teams.
func (s *LedgerService) TeamShuffle(ctx context.Context, date string, count int) ([][]domain.Student, error) {
	eligible, err := s.EligibleStudents(ctx, date)
	if err != nil {
		return nil, err
	}
	s.rndMu.Lock()
	defer s.rndMu.Unlock()
	return ShuffleTeams(s.rnd, eligible, count)
}

// Subscribe returns a channel receiving board updates for the given mode and
// date ("" for overall). The caller must invoke cancel to avoid leaks.
func (s *LedgerService) Subscribe(ctx context.Context, mode, date string) (<-chan domain.Board, func(), error) {
	if mode != domain.BoardDaily && mode != domain.BoardOverall {
		return nil, nil, domain.ErrInvalidBoardMode
	}
	if mode == domain.BoardDaily && !domain.IsDate(date) {
		return nil, nil, domain.ErrInvalidDate
	}
	initial, err := s.boardFor(ctx, mode, date)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := s.hub.subscribe(mode, date)
	ch <- initial
	return ch, cancel, nil
}

func (s *LedgerService) boardFor(ctx context.Context, mode, date string) (domain.Board, error) {
	if mode == domain.BoardOverall {
		return s.OverallBoard(ctx)
	}
	return s.DailyBoard(ctx, date)
}

// broadcast recomputes and pushes the boards a mutation to date can affect.
func (s *LedgerService) broadcast(ctx context.Context, date string) {
	if err := s.hub.broadcastDate(ctx, date, s.boardFor); err != nil {
		log.Printf("board broadcast for %s failed: %v", date, err)
	}
}
