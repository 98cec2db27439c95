package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const currentVersion = 1

// timeLayout is fixed-width so stored timestamps sort lexicographically.
const timeLayout = "2006-01-02T15:04:05.000000Z"

type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now as the source of timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string, opts ...Option) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// One connection serializes writers and keeps :memory: databases alive.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory(opts ...Option) (*Store, error) {
	return New(":memory:", opts...)
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) stamp() string {
	return formatTime(s.now())
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(v string) time.Time {
	t, err := time.Parse(timeLayout, v)
	if err != nil {
		// Rows written by hand (sqlite shell, older exports) may use plain RFC3339.
		t, _ = time.Parse(time.RFC3339Nano, v)
	}
	return t
}

// withTx runs fn inside a transaction and commits only if fn succeeds.
func (s *Store) withTx(fn func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() // no-op after commit

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS sessions (
		id                   INTEGER PRIMARY KEY AUTOINCREMENT,
		work_minutes         INTEGER NOT NULL CHECK (work_minutes > 0),
		short_break_minutes  INTEGER NOT NULL CHECK (short_break_minutes > 0),
		long_break_minutes   INTEGER NOT NULL CHECK (long_break_minutes > 0),
		long_break_interval  INTEGER NOT NULL CHECK (long_break_interval > 0),
		completed_pomodoros  INTEGER NOT NULL DEFAULT 0 CHECK (completed_pomodoros >= 0),
		current_phase        TEXT NOT NULL DEFAULT 'idle'
		                     CHECK (current_phase IN ('idle', 'work', 'short_break', 'long_break')),
		phase_start_time     TEXT,
		is_active            INTEGER GENERATED ALWAYS AS (current_phase <> 'idle') VIRTUAL,
		created_at           TEXT NOT NULL,
		updated_at           TEXT NOT NULL,
		CHECK ((current_phase = 'idle') = (phase_start_time IS NULL))
	);

	CREATE TABLE IF NOT EXISTS phase_logs (
		id               INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id       INTEGER NOT NULL REFERENCES sessions(id),
		phase_type       TEXT NOT NULL CHECK (phase_type IN ('work', 'short_break', 'long_break')),
		duration_minutes INTEGER NOT NULL CHECK (duration_minutes > 0),
		started_at       TEXT NOT NULL,
		completed_at     TEXT,
		was_interrupted  INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_logs_session ON phase_logs(session_id, started_at);
	CREATE INDEX IF NOT EXISTS idx_logs_started ON phase_logs(started_at);

	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(ddl)
	return err
}
