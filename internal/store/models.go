package store

import "time"

// Phase is one timed interval of a session, or idle between phases.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseWork       Phase = "work"
	PhaseShortBreak Phase = "short_break"
	PhaseLongBreak  Phase = "long_break"
)

// Phases lists the phases that can be started, in display order.
var Phases = []Phase{PhaseWork, PhaseShortBreak, PhaseLongBreak}

// Startable reports whether p names a phase that can be started.
func (p Phase) Startable() bool {
	switch p {
	case PhaseWork, PhaseShortBreak, PhaseLongBreak:
		return true
	}
	return false
}

// IsBreak reports whether p is a short or long break.
func (p Phase) IsBreak() bool {
	return p == PhaseShortBreak || p == PhaseLongBreak
}

// ParsePhase converts user input into a startable phase.
func ParsePhase(s string) (Phase, error) {
	p := Phase(s)
	if !p.Startable() {
		return "", &ValidationError{Field: "phase_type", Message: "must be one of work, short_break, long_break"}
	}
	return p, nil
}

// Running describes the phase a session is currently in.
type Running struct {
	Phase     Phase
	StartedAt time.Time
}

type Session struct {
	ID int64
	SessionConfig
	CompletedPomodoros int
	Running            *Running // nil while idle
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// CurrentPhase returns the running phase, or PhaseIdle.
func (s *Session) CurrentPhase() Phase {
	if s.Running == nil {
		return PhaseIdle
	}
	return s.Running.Phase
}

func (s *Session) IsActive() bool { return s.Running != nil }

// PhaseStartTime returns nil while idle.
func (s *Session) PhaseStartTime() *time.Time {
	if s.Running == nil {
		return nil
	}
	t := s.Running.StartedAt
	return &t
}

// SessionConfig holds the configurable durations of a session, in minutes.
type SessionConfig struct {
	WorkMinutes       int
	ShortBreakMinutes int
	LongBreakMinutes  int
	LongBreakInterval int
}

// DurationFor returns the planned minutes for phase p.
func (c SessionConfig) DurationFor(p Phase) (int, error) {
	switch p {
	case PhaseWork:
		return c.WorkMinutes, nil
	case PhaseShortBreak:
		return c.ShortBreakMinutes, nil
	case PhaseLongBreak:
		return c.LongBreakMinutes, nil
	}
	return 0, &ValidationError{Field: "phase_type", Message: "no duration for phase " + string(p)}
}

func (c SessionConfig) Validate() error {
	fields := []struct {
		name  string
		value int
	}{
		{"work_minutes", c.WorkMinutes},
		{"short_break_minutes", c.ShortBreakMinutes},
		{"long_break_minutes", c.LongBreakMinutes},
		{"long_break_interval", c.LongBreakInterval},
	}
	for _, f := range fields {
		if f.value <= 0 {
			return &ValidationError{Field: f.name, Message: "must be a positive integer"}
		}
	}
	return nil
}

// ConfigUpdate is a partial SessionConfig; nil fields are left unchanged.
type ConfigUpdate struct {
	WorkMinutes       *int
	ShortBreakMinutes *int
	LongBreakMinutes  *int
	LongBreakInterval *int
}

// Apply returns c with every non-nil field of u applied.
func (u ConfigUpdate) Apply(c SessionConfig) SessionConfig {
	if u.WorkMinutes != nil {
		c.WorkMinutes = *u.WorkMinutes
	}
	if u.ShortBreakMinutes != nil {
		c.ShortBreakMinutes = *u.ShortBreakMinutes
	}
	if u.LongBreakMinutes != nil {
		c.LongBreakMinutes = *u.LongBreakMinutes
	}
	if u.LongBreakInterval != nil {
		c.LongBreakInterval = *u.LongBreakInterval
	}
	return c
}

// PhaseLog is one attempted phase. It is immutable once CompletedAt is set.
type PhaseLog struct {
	ID              int64
	SessionID       int64
	Phase           Phase
	DurationMinutes int // planned, copied from the session at start
	StartedAt       time.Time
	CompletedAt     *time.Time
	WasInterrupted  bool
}

// Open reports whether the phase is still in progress.
func (l *PhaseLog) Open() bool { return l.CompletedAt == nil }

// SessionStats is the fold of a session's phase logs.
type SessionStats struct {
	SessionID               int64
	TotalCompletedPomodoros int
	TotalWorkMinutes        int
	TotalBreakMinutes       int
	TotalLogs               int
	InterruptedLogs         int
	CompletionRate          float64 // percent, 0 when there are no logs
	LastActivity            *time.Time
}

// DailySummary aggregates the phase logs started on one calendar day.
type DailySummary struct {
	Date               string `json:"date"`
	WorkMinutes        int    `json:"work_minutes"`
	BreakMinutes       int    `json:"break_minutes"`
	CompletedPomodoros int    `json:"completed_pomodoros"`
	InterruptedCount   int    `json:"interrupted_count"`
	LogCount           int    `json:"log_count"`
}

type Setting struct {
	Key   string
	Value string
}
