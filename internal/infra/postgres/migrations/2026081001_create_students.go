package migrations

import (
	"context"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

const createStudentsSQL = `
CREATE TABLE IF NOT EXISTS students (
	id     TEXT PRIMARY KEY,
	name   TEXT NOT NULL,
	class  TEXT NOT NULL,
	mobile TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_students_name ON students (lower(name), mobile);
`

var Migrations = migrate.NewMigrations()

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.Exec(createStudentsSQL)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.Exec(`DROP TABLE IF EXISTS students`)
			return err
		},
	)
}
