package store

import (
	"database/sql"
	"fmt"
)

// SessionStats folds the phase log of one session. Interrupted entries count
// toward work and break time since they record planned exposure.
func (s *Store) SessionStats(sessionID int64) (*SessionStats, error) {
	if _, err := s.GetSession(sessionID); err != nil {
		return nil, err
	}

	st := &SessionStats{SessionID: sessionID}
	var last sql.NullString
	err := s.db.QueryRow(`
		SELECT
			COALESCE(SUM(CASE WHEN phase_type = 'work' AND was_interrupted = 0 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN phase_type = 'work' THEN duration_minutes ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN phase_type IN ('short_break', 'long_break') THEN duration_minutes ELSE 0 END), 0),
			COUNT(*),
			COALESCE(SUM(was_interrupted), 0),
			MAX(started_at)
		FROM phase_logs
		WHERE session_id = ?`, sessionID,
	).Scan(&st.TotalCompletedPomodoros, &st.TotalWorkMinutes, &st.TotalBreakMinutes,
		&st.TotalLogs, &st.InterruptedLogs, &last)
	if err != nil {
		return nil, fmt.Errorf("session stats %d: %w", sessionID, err)
	}

	st.CompletionRate = completionRate(st.TotalLogs, st.InterruptedLogs)
	if last.Valid {
		t := parseTime(last.String)
		st.LastActivity = &t
	}
	return st, nil
}

func completionRate(total, interrupted int) float64 {
	if total == 0 {
		return 0
	}
	return float64(total-interrupted) / float64(total) * 100
}
