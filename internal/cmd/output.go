package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/sadopc/tomato/internal/store"
)

const displayTime = "2006-01-02 15:04:05"

type jsonSession struct {
	ID                 int64   `json:"id"`
	WorkMinutes        int     `json:"work_minutes"`
	ShortBreakMinutes  int     `json:"short_break_minutes"`
	LongBreakMinutes   int     `json:"long_break_minutes"`
	LongBreakInterval  int     `json:"long_break_interval"`
	CompletedPomodoros int     `json:"completed_pomodoros"`
	CurrentPhase       string  `json:"current_phase"`
	PhaseStartTime     *string `json:"phase_start_time"`
	IsActive           bool    `json:"is_active"`
	CreatedAt          string  `json:"created_at"`
	UpdatedAt          string  `json:"updated_at"`
}

type jsonLog struct {
	ID              int64   `json:"id"`
	SessionID       int64   `json:"session_id"`
	PhaseType       string  `json:"phase_type"`
	DurationMinutes int     `json:"duration_minutes"`
	StartedAt       string  `json:"started_at"`
	CompletedAt     *string `json:"completed_at"`
	WasInterrupted  bool    `json:"was_interrupted"`
}

type jsonStats struct {
	SessionID               int64   `json:"session_id"`
	TotalCompletedPomodoros int     `json:"total_completed_pomodoros"`
	TotalWorkMinutes        int     `json:"total_work_minutes"`
	TotalBreakMinutes       int     `json:"total_break_minutes"`
	TotalLogs               int     `json:"total_logs"`
	InterruptedLogs         int     `json:"interrupted_logs"`
	CompletionRate          float64 `json:"completion_rate"`
	LastActivity            *string `json:"last_activity"`
}

func toJSONSession(s *store.Session) jsonSession {
	return jsonSession{
		ID:                 s.ID,
		WorkMinutes:        s.WorkMinutes,
		ShortBreakMinutes:  s.ShortBreakMinutes,
		LongBreakMinutes:   s.LongBreakMinutes,
		LongBreakInterval:  s.LongBreakInterval,
		CompletedPomodoros: s.CompletedPomodoros,
		CurrentPhase:       string(s.CurrentPhase()),
		PhaseStartTime:     optionalTime(s.PhaseStartTime()),
		IsActive:           s.IsActive(),
		CreatedAt:          s.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          s.UpdatedAt.Format(time.RFC3339),
	}
}

func toJSONLogs(logs []store.PhaseLog) []jsonLog {
	out := make([]jsonLog, 0, len(logs))
	for _, l := range logs {
		out = append(out, jsonLog{
			ID:              l.ID,
			SessionID:       l.SessionID,
			PhaseType:       string(l.Phase),
			DurationMinutes: l.DurationMinutes,
			StartedAt:       l.StartedAt.Format(time.RFC3339),
			CompletedAt:     optionalTime(l.CompletedAt),
			WasInterrupted:  l.WasInterrupted,
		})
	}
	return out
}

func toJSONStats(s *store.SessionStats) jsonStats {
	return jsonStats{
		SessionID:               s.SessionID,
		TotalCompletedPomodoros: s.TotalCompletedPomodoros,
		TotalWorkMinutes:        s.TotalWorkMinutes,
		TotalBreakMinutes:       s.TotalBreakMinutes,
		TotalLogs:               s.TotalLogs,
		InterruptedLogs:         s.InterruptedLogs,
		CompletionRate:          s.CompletionRate,
		LastActivity:            optionalTime(s.LastActivity),
	}
}

func optionalTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.Format(time.RFC3339)
	return &v
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func printSession(w io.Writer, s *store.Session, loc *time.Location) {
	fmt.Fprintf(w, "Session %d\n", s.ID)
	fmt.Fprintln(w, strings.Repeat("─", 40))
	fmt.Fprintf(w, "Phase:       %s\n", phaseLabel(s.CurrentPhase()))
	if start := s.PhaseStartTime(); start != nil {
		fmt.Fprintf(w, "Started:     %s\n", start.In(loc).Format(displayTime))
	}
	fmt.Fprintf(w, "Completed:   %d pomodoros\n", s.CompletedPomodoros)
	fmt.Fprintf(w, "Work:        %d min\n", s.WorkMinutes)
	fmt.Fprintf(w, "Short break: %d min\n", s.ShortBreakMinutes)
	fmt.Fprintf(w, "Long break:  %d min (every %d)\n", s.LongBreakMinutes, s.LongBreakInterval)
}

func printLogs(w io.Writer, logs []store.PhaseLog, loc *time.Location) {
	if len(logs) == 0 {
		fmt.Fprintln(w, "No entries")
		return
	}
	fmt.Fprintf(w, "%-6s %-8s %-12s %-20s %-20s %s\n", "ID", "SESSION", "PHASE", "STARTED", "COMPLETED", "MIN")
	for _, l := range logs {
		completed := "running"
		if !l.Open() {
			completed = l.CompletedAt.In(loc).Format(displayTime)
			if l.WasInterrupted {
				completed += " (x)"
			}
		}
		fmt.Fprintf(w, "%-6d %-8d %-12s %-20s %-20s %d\n",
			l.ID, l.SessionID, l.Phase, l.StartedAt.In(loc).Format(displayTime), completed, l.DurationMinutes)
	}
}

func phaseLabel(p store.Phase) string {
	switch p {
	case store.PhaseWork:
		return "Work"
	case store.PhaseShortBreak:
		return "Short break"
	case store.PhaseLongBreak:
		return "Long break"
	default:
		return "Idle"
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, &store.ValidationError{Field: "id", Message: fmt.Sprintf("%q is not a session id", s)}
	}
	return id, nil
}
