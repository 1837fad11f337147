package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"rollbook-service/internal/domain"
)

// Roster persists students in Postgres.
type Roster struct {
	pool *pgxpool.Pool
}

func NewRoster(pool *pgxpool.Pool) *Roster {
	return &Roster{pool: pool}
}

func (r *Roster) List(ctx context.Context) ([]domain.Student, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, class, mobile FROM students ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	defer rows.Close()

	var students []domain.Student
	for rows.Next() {
		var s domain.Student
		if err := rows.Scan(&s.ID, &s.Name, &s.Class, &s.Mobile); err != nil {
			return nil, fmt.Errorf("scan student: %w", err)
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

func (r *Roster) Get(ctx context.Context, id string) (domain.Student, error) {
	var s domain.Student
	err := r.pool.QueryRow(ctx, `SELECT id, name, class, mobile FROM students WHERE id=$1`, id).
		Scan(&s.ID, &s.Name, &s.Class, &s.Mobile)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Student{}, domain.ErrStudentNotFound
	}
	if err != nil {
		return domain.Student{}, fmt.Errorf("get student: %w", err)
	}
	return s, nil
}

func (r *Roster) Create(ctx context.Context, s domain.Student) (domain.Student, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO students (id, name, class, mobile) VALUES ($1, $2, $3, $4)`,
		s.ID, s.Name, s.Class, s.Mobile)
	if err != nil {
		return domain.Student{}, fmt.Errorf("create student: %w", err)
	}
	return s, nil
}

// CreateBatch inserts all students in one implicit transaction; either the
// whole import's creations land or none do.
func (r *Roster) CreateBatch(ctx context.Context, students []domain.Student) error {
	if len(students) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for i := range students {
		if students[i].ID == "" {
			students[i].ID = uuid.NewString()
		}
		batch.Queue(`INSERT INTO students (id, name, class, mobile) VALUES ($1, $2, $3, $4)`,
			students[i].ID, students[i].Name, students[i].Class, students[i].Mobile)
	}
	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range students {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("create students batch: %w", err)
		}
	}
	return nil
}

func (r *Roster) Update(ctx context.Context, s domain.Student) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE students SET name=$2, class=$3, mobile=$4 WHERE id=$1`,
		s.ID, s.Name, s.Class, s.Mobile)
	if err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrStudentNotFound
	}
	return nil
}

// Delete removes the roster entry only. Attendance and quiz records under the
// id stay behind; boards stop projecting them.
func (r *Roster) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM students WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrStudentNotFound
	}
	return nil
}
