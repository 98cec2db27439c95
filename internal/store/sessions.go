package store

import (
	"database/sql"
	"errors"
	"fmt"
)

const sessionColumns = `id, work_minutes, short_break_minutes, long_break_minutes, long_break_interval,
	completed_pomodoros, current_phase, phase_start_time, created_at, updated_at`

func (s *Store) CreateSession(cfg SessionConfig) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	now := s.stamp()
	res, err := s.db.Exec(
		`INSERT INTO sessions (work_minutes, short_break_minutes, long_break_minutes, long_break_interval, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		cfg.WorkMinutes, cfg.ShortBreakMinutes, cfg.LongBreakMinutes, cfg.LongBreakInterval, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetSession(id)
}

func (s *Store) GetSession(id int64) (*Session, error) {
	return getSession(s.db, id)
}

func getSession(q querier, id int64) (*Session, error) {
	sess, err := scanSession(q.QueryRow(`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Resource: "session", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get session %d: %w", id, err)
	}
	return sess, nil
}

// GetActiveSession returns the session with a phase in progress, or nil if none is running.
func (s *Store) GetActiveSession() (*Session, error) {
	sess, err := scanSession(s.db.QueryRow(
		`SELECT ` + sessionColumns + ` FROM sessions WHERE is_active = 1 ORDER BY updated_at DESC, id DESC LIMIT 1`,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get active session: %w", err)
	}
	return sess, nil
}

// ListSessions returns all sessions, most recently updated first.
func (s *Store) ListSessions() ([]Session, error) {
	rows, err := s.db.Query(`SELECT ` + sessionColumns + ` FROM sessions ORDER BY updated_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *sess)
	}
	return sessions, rows.Err()
}

// UpdateSessionConfig applies the non-nil fields of u. The running phase and the
// completed count are left alone; updated_at always advances.
func (s *Store) UpdateSessionConfig(id int64, u ConfigUpdate) (*Session, error) {
	err := s.withTx(func(tx *sql.Tx) error {
		sess, err := getSession(tx, id)
		if err != nil {
			return err
		}
		cfg := u.Apply(sess.SessionConfig)
		if err := cfg.Validate(); err != nil {
			return err
		}
		_, err = tx.Exec(
			`UPDATE sessions SET work_minutes = ?, short_break_minutes = ?, long_break_minutes = ?,
			 long_break_interval = ?, updated_at = ? WHERE id = ?`,
			cfg.WorkMinutes, cfg.ShortBreakMinutes, cfg.LongBreakMinutes, cfg.LongBreakInterval, s.stamp(), id,
		)
		if err != nil {
			return fmt.Errorf("update session %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetSession(id)
}

// StartPhase opens a log entry for phase and moves the session into it, atomically.
// Starting while another phase runs is rejected so no entry is ever orphaned.
func (s *Store) StartPhase(id int64, phase Phase) (*Session, *PhaseLog, error) {
	if !phase.Startable() {
		return nil, nil, &ValidationError{Field: "phase_type", Message: "must be one of work, short_break, long_break"}
	}

	var logID int64
	err := s.withTx(func(tx *sql.Tx) error {
		sess, err := getSession(tx, id)
		if err != nil {
			return err
		}
		if sess.Running != nil {
			return &StateError{SessionID: id, Phase: sess.Running.Phase, Message: "a phase is already in progress"}
		}
		minutes, err := sess.DurationFor(phase)
		if err != nil {
			return err
		}

		now := s.stamp()
		res, err := tx.Exec(
			`INSERT INTO phase_logs (session_id, phase_type, duration_minutes, started_at, was_interrupted)
			 VALUES (?, ?, ?, ?, 0)`,
			id, string(phase), minutes, now,
		)
		if err != nil {
			return fmt.Errorf("insert phase log: %w", err)
		}
		logID, _ = res.LastInsertId()

		_, err = tx.Exec(
			`UPDATE sessions SET current_phase = ?, phase_start_time = ?, updated_at = ? WHERE id = ?`,
			string(phase), now, now, id,
		)
		if err != nil {
			return fmt.Errorf("update session %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	sess, err := s.GetSession(id)
	if err != nil {
		return nil, nil, err
	}
	entry, err := s.GetLog(logID)
	if err != nil {
		return nil, nil, err
	}
	return sess, entry, nil
}

// CompletePhase closes the most recent open log entry and returns the session to idle.
// A non-interrupted work phase increments completed_pomodoros.
func (s *Store) CompletePhase(id int64, interrupted bool) (*Session, *PhaseLog, error) {
	var logID int64
	err := s.withTx(func(tx *sql.Tx) error {
		sess, err := getSession(tx, id)
		if err != nil {
			return err
		}
		open, err := latestOpenLog(tx, id)
		if err != nil {
			return err
		}
		if open == nil {
			return &StateError{SessionID: id, Phase: sess.CurrentPhase(), Message: "no phase in progress"}
		}
		logID = open.ID

		now := s.stamp()
		_, err = tx.Exec(
			`UPDATE phase_logs SET completed_at = ?, was_interrupted = ? WHERE id = ?`,
			now, boolToInt(interrupted), open.ID,
		)
		if err != nil {
			return fmt.Errorf("close phase log %d: %w", open.ID, err)
		}

		increment := 0
		if open.Phase == PhaseWork && !interrupted {
			increment = 1
		}
		_, err = tx.Exec(
			`UPDATE sessions SET completed_pomodoros = completed_pomodoros + ?, current_phase = 'idle',
			 phase_start_time = NULL, updated_at = ? WHERE id = ?`,
			increment, now, id,
		)
		if err != nil {
			return fmt.Errorf("update session %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	sess, err := s.GetSession(id)
	if err != nil {
		return nil, nil, err
	}
	entry, err := s.GetLog(logID)
	if err != nil {
		return nil, nil, err
	}
	return sess, entry, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*Session, error) {
	sess := &Session{}
	var phase, createdAt, updatedAt string
	var phaseStart sql.NullString

	err := row.Scan(
		&sess.ID, &sess.WorkMinutes, &sess.ShortBreakMinutes, &sess.LongBreakMinutes, &sess.LongBreakInterval,
		&sess.CompletedPomodoros, &phase, &phaseStart, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	if Phase(phase) != PhaseIdle && phaseStart.Valid {
		sess.Running = &Running{Phase: Phase(phase), StartedAt: parseTime(phaseStart.String)}
	}
	sess.CreatedAt = parseTime(createdAt)
	sess.UpdatedAt = parseTime(updatedAt)
	return sess, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
