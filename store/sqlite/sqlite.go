/*
Package sqlite provides the SQLite-backed Record Store.

PURPOSE:
  Persists users, sessions, employees and both leave tables. Implements
  timeoff.RecordStore so the balance service reads its snapshot straight
  from here. No balance is ever stored: the tables hold only raw records.

KEY TABLES:
  users:        Login accounts (bcrypt hash, password_changed flag)
  sessions:     Server-side session rows behind the JWT cookie
  employees:    Employee master data; employee_id is the unique employee number
  annual_leave: Annual leave records
  sick_leave:   Sick leave records (+ medical_cert object key)

STORAGE FORMATS:
  Dates:      TEXT "YYYY-MM-DD"
  Timestamps: TEXT RFC3339 (UTC)
  Days used:  TEXT decimal, so half-days round-trip exactly

CONCURRENCY:
  Uses sync.RWMutex for thread-safety, and a single connection so that
  ":memory:" databases are shared by every query.

MIGRATION:
  Versioned SQL files under migrations/ are embedded and applied with
  goose on New().

USAGE:
  store, err := sqlite.New("./data/leave.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - timeoff/service.go: RecordStore consumer
  - generic/errors.go: Not-found and conflict errors returned here
*/
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/warp/leave-manager/generic"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store implements the Record Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate applies the embedded goose migrations.
func (s *Store) migrate(ctx context.Context) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.UpContext(ctx, s.db, "migrations")
}

// =============================================================================
// HELPERS
// =============================================================================

func formatDate(tp generic.TimePoint) string {
	return tp.String()
}

// ErrCorruptRow marks a stored value that no longer parses. It is a server
// fault, so the underlying parse error is flattened rather than wrapped.
var ErrCorruptRow = errors.New("corrupt row")

func parseDate(field, s string) (generic.TimePoint, error) {
	tp, err := generic.ParseDate(field, s)
	if err != nil {
		return generic.TimePoint{}, fmt.Errorf("%w: %v", ErrCorruptRow, err)
	}
	return tp, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func parseAmount(field, s string) (generic.Amount, error) {
	a, err := generic.ParseAmount(s, generic.UnitDays)
	if err != nil {
		return generic.Amount{}, fmt.Errorf("%w: %s: %v", ErrCorruptRow, field, err)
	}
	return a, nil
}

func isConstraintError(err error, code sqlite3.ErrNoExtended) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.ExtendedCode == code
}

func isUniqueConstraintError(err error) bool {
	return isConstraintError(err, sqlite3.ErrConstraintUnique)
}

func isForeignKeyError(err error) bool {
	return isConstraintError(err, sqlite3.ErrConstraintForeignKey)
}

// affectedOrNotFound turns a zero-row UPDATE/DELETE into notFound.
func affectedOrNotFound(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
