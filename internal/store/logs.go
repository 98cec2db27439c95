package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const logColumns = `id, session_id, phase_type, duration_minutes, started_at, completed_at, was_interrupted`

func (s *Store) GetLog(id int64) (*PhaseLog, error) {
	l, err := scanLog(s.db.QueryRow(`SELECT `+logColumns+` FROM phase_logs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Resource: "phase log", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get phase log %d: %w", id, err)
	}
	return l, nil
}

// LatestLog returns the most recently started log entry of a session, or nil if it has none.
func (s *Store) LatestLog(sessionID int64) (*PhaseLog, error) {
	l, err := scanLog(s.db.QueryRow(
		`SELECT `+logColumns+` FROM phase_logs WHERE session_id = ?
		 ORDER BY started_at DESC, id DESC LIMIT 1`, sessionID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest phase log: %w", err)
	}
	return l, nil
}

// OpenLog returns the in-progress log entry of a session, or nil.
func (s *Store) OpenLog(sessionID int64) (*PhaseLog, error) {
	return latestOpenLog(s.db, sessionID)
}

func latestOpenLog(q querier, sessionID int64) (*PhaseLog, error) {
	l, err := scanLog(q.QueryRow(
		`SELECT `+logColumns+` FROM phase_logs WHERE session_id = ? AND completed_at IS NULL
		 ORDER BY started_at DESC, id DESC LIMIT 1`, sessionID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open phase log: %w", err)
	}
	return l, nil
}

// SessionLogs returns every log entry of a session, newest first.
func (s *Store) SessionLogs(sessionID int64) ([]PhaseLog, error) {
	return s.queryLogs(
		`SELECT `+logColumns+` FROM phase_logs WHERE session_id = ? ORDER BY started_at DESC, id DESC`,
		sessionID,
	)
}

// LogsBetween returns entries with from <= started_at < to, oldest first.
func (s *Store) LogsBetween(from, to time.Time) ([]PhaseLog, error) {
	return s.queryLogs(
		`SELECT `+logColumns+` FROM phase_logs WHERE started_at >= ? AND started_at < ?
		 ORDER BY started_at ASC, id ASC`,
		formatTime(from), formatTime(to),
	)
}

// DailySummary folds the entries started in [from, to) into one row per calendar
// day of from's location. Days without entries are omitted.
func (s *Store) DailySummary(from, to time.Time) ([]DailySummary, error) {
	logs, err := s.LogsBetween(from, to)
	if err != nil {
		return nil, fmt.Errorf("daily summary: %w", err)
	}

	loc := from.Location()
	var summaries []DailySummary
	index := make(map[string]int)
	for _, l := range logs {
		day := l.StartedAt.In(loc).Format("2006-01-02")
		i, ok := index[day]
		if !ok {
			summaries = append(summaries, DailySummary{Date: day})
			i = len(summaries) - 1
			index[day] = i
		}
		ds := &summaries[i]
		ds.LogCount++
		if l.WasInterrupted {
			ds.InterruptedCount++
		}
		if l.Phase == PhaseWork {
			ds.WorkMinutes += l.DurationMinutes
			if !l.WasInterrupted {
				ds.CompletedPomodoros++
			}
		} else if l.Phase.IsBreak() {
			ds.BreakMinutes += l.DurationMinutes
		}
	}
	return summaries, nil
}

func (s *Store) queryLogs(query string, args ...any) ([]PhaseLog, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list phase logs: %w", err)
	}
	defer rows.Close()

	var logs []PhaseLog
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, *l)
	}
	return logs, rows.Err()
}

func scanLog(row rowScanner) (*PhaseLog, error) {
	l := &PhaseLog{}
	var phase, startedAt string
	var completedAt sql.NullString
	var interrupted int

	err := row.Scan(&l.ID, &l.SessionID, &phase, &l.DurationMinutes, &startedAt, &completedAt, &interrupted)
	if err != nil {
		return nil, err
	}
	l.Phase = Phase(phase)
	l.StartedAt = parseTime(startedAt)
	if completedAt.Valid {
		t := parseTime(completedAt.String)
		l.CompletedAt = &t
	}
	l.WasInterrupted = interrupted == 1
	return l, nil
}
