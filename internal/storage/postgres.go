package storage

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JonMunkholm/roster/internal/core"
)

// DB is the subset of *pgxpool.Pool used by PostgresSource.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

const createStudentsTable = `
CREATE TABLE IF NOT EXISTS students (
	seq       BIGSERIAL,
	surname   TEXT NOT NULL DEFAULT '',
	full_name TEXT NOT NULL,
	rm        BIGINT PRIMARY KEY
)`

// PostgresSource keeps the roster in the students table. Row order is the
// insertion sequence.
type PostgresSource struct {
	db DB
}

// NewPostgresSource returns a source backed by db.
func NewPostgresSource(db DB) *PostgresSource {
	return &PostgresSource{db: db}
}

func (s *PostgresSource) Name() string {
	return "postgres:students"
}

// EnsureSchema creates the students table if it does not exist.
func (s *PostgresSource) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createStudentsTable); err != nil {
		return fmt.Errorf("create students table: %w", err)
	}
	return nil
}

func (s *PostgresSource) Load(ctx context.Context) ([]core.RawRow, error) {
	rows, err := s.db.Query(ctx, `SELECT surname, full_name, rm FROM students ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query students: %w", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.RawRow, error) {
		var (
			surname, name string
			rm            int64
		)
		if err := row.Scan(&surname, &name, &rm); err != nil {
			return core.RawRow{}, err
		}
		return core.RawRow{Surname: surname, FullName: name, ID: strconv.FormatInt(rm, 10)}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan students: %w", err)
	}
	return out, nil
}

// Save replaces the table contents in one transaction.
func (s *PostgresSource) Save(ctx context.Context, records []core.Student) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // No-op if already committed

	if _, err := tx.Exec(ctx, `DELETE FROM students`); err != nil {
		return fmt.Errorf("clear students: %w", err)
	}

	n, err := tx.CopyFrom(ctx,
		pgx.Identifier{"students"},
		[]string{"surname", "full_name", "rm"},
		pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
			r := records[i]
			return []any{r.Surname, r.FullName, r.ID}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copy students: %w", err)
	}
	if n != int64(len(records)) {
		return fmt.Errorf("copy students: wrote %d of %d rows", n, len(records))
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit students: %w", err)
	}
	return nil
}
