// Package pomodoro is the focus-timer phase engine. It moves a session between
// idle and its timed phases, recommends the next phase, and exposes the
// statistics and daily views of the phase log.
package pomodoro

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sadopc/tomato/internal/logging"
	"github.com/sadopc/tomato/internal/store"
)

// DateLayout is the calendar-day format accepted by DailyLogs.
const DateLayout = "2006-01-02"

// Engine serializes writers per session. Reads go straight to the store and
// see the last committed state.
type Engine struct {
	store *store.Store
	log   *logging.Logger
	loc   *time.Location

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

type Option func(*Engine)

// WithLogger sets the logger for phase transitions. The default discards output.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithLocation sets the zone that defines calendar days for DailyLogs.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) { e.loc = loc }
}

func New(s *store.Store, opts ...Option) *Engine {
	e := &Engine{
		store: s,
		log:   logging.NopLogger(),
		loc:   time.Local,
		locks: make(map[int64]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Store exposes the underlying store for callers that need settings access.
func (e *Engine) Store() *store.Store { return e.store }

// Location returns the zone used for calendar-day queries.
func (e *Engine) Location() *time.Location { return e.loc }

func (e *Engine) sessionLock(id int64) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[id]
	if !ok {
		l = &sync.Mutex{}
		e.locks[id] = l
	}
	return l
}

// CreateSession stores a new idle session with cfg.
func (e *Engine) CreateSession(cfg store.SessionConfig) (*store.Session, error) {
	sess, err := e.store.CreateSession(cfg)
	if err != nil {
		e.log.Warn("create session failed", "error", err)
		return nil, err
	}
	e.log.WithSession(sess.ID).Info("session created",
		"work_minutes", cfg.WorkMinutes,
		"short_break_minutes", cfg.ShortBreakMinutes,
		"long_break_minutes", cfg.LongBreakMinutes,
		"long_break_interval", cfg.LongBreakInterval,
	)
	return sess, nil
}

func (e *Engine) GetSession(id int64) (*store.Session, error) {
	return e.store.GetSession(id)
}

func (e *Engine) ListSessions() ([]store.Session, error) {
	return e.store.ListSessions()
}

// CurrentSession resolves the session the CLI and TUI act on: the one stored in
// the current_session setting, else the active session, else a new session
// created with defaults. The resolved id is remembered.
func (e *Engine) CurrentSession(defaults store.SessionConfig) (*store.Session, error) {
	id, ok, err := e.store.CurrentSession()
	if err != nil {
		return nil, err
	}
	if ok {
		sess, err := e.store.GetSession(id)
		if err == nil {
			return sess, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		e.log.WithSession(id).Warn("current session missing, resolving another")
	}

	sess, err := e.store.GetActiveSession()
	if err != nil {
		return nil, err
	}
	if sess == nil {
		if sess, err = e.CreateSession(defaults); err != nil {
			return nil, err
		}
	}
	if err := e.store.SetCurrentSession(sess.ID); err != nil {
		return nil, fmt.Errorf("remember current session: %w", err)
	}
	return sess, nil
}

// UseSession makes id the current session.
func (e *Engine) UseSession(id int64) (*store.Session, error) {
	sess, err := e.store.GetSession(id)
	if err != nil {
		return nil, err
	}
	if err := e.store.SetCurrentSession(id); err != nil {
		return nil, err
	}
	return sess, nil
}

// GetActiveSession returns the session with a running phase, or nil.
func (e *Engine) GetActiveSession() (*store.Session, error) {
	return e.store.GetActiveSession()
}

// UpdateSessionConfig changes the durations and interval of a session. The
// running phase, its planned duration and the completed count are untouched.
func (e *Engine) UpdateSessionConfig(id int64, u store.ConfigUpdate) (*store.Session, error) {
	l := e.sessionLock(id)
	l.Lock()
	defer l.Unlock()

	sess, err := e.store.UpdateSessionConfig(id, u)
	if err != nil {
		e.log.WithSession(id).Warn("update session config failed", "error", err)
		return nil, err
	}
	e.log.WithSession(id).Info("session config updated",
		"work_minutes", sess.WorkMinutes,
		"short_break_minutes", sess.ShortBreakMinutes,
		"long_break_minutes", sess.LongBreakMinutes,
		"long_break_interval", sess.LongBreakInterval,
	)
	return sess, nil
}

// StartPhase opens a new phase on an idle session.
func (e *Engine) StartPhase(id int64, phase store.Phase) (*store.Session, error) {
	l := e.sessionLock(id)
	l.Lock()
	defer l.Unlock()

	log := e.log.WithSession(id)
	sess, entry, err := e.store.StartPhase(id, phase)
	if err != nil {
		log.Warn("start phase failed", "phase", string(phase), "error", err)
		return nil, err
	}
	log.Info("phase started",
		"phase", string(entry.Phase),
		"log_id", entry.ID,
		"planned_minutes", entry.DurationMinutes,
	)
	return sess, nil
}

// CompletePhase closes the running phase and returns the session to idle.
func (e *Engine) CompletePhase(id int64, interrupted bool) (*store.Session, error) {
	l := e.sessionLock(id)
	l.Lock()
	defer l.Unlock()

	log := e.log.WithSession(id)
	sess, entry, err := e.store.CompletePhase(id, interrupted)
	if err != nil {
		log.Warn("complete phase failed", "interrupted", interrupted, "error", err)
		return nil, err
	}
	log.Info("phase completed",
		"phase", string(entry.Phase),
		"log_id", entry.ID,
		"interrupted", interrupted,
		"completed_pomodoros", sess.CompletedPomodoros,
	)
	return sess, nil
}

// NextPhaseType recommends the phase to start next for a session.
func (e *Engine) NextPhaseType(id int64) (store.Phase, error) {
	sess, err := e.store.GetSession(id)
	if err != nil {
		return "", err
	}
	last, err := e.store.LatestLog(id)
	if err != nil {
		return "", err
	}
	lastPhase := store.PhaseIdle
	if last != nil {
		lastPhase = last.Phase
	}
	return NextPhase(sess.CompletedPomodoros, sess.LongBreakInterval, lastPhase), nil
}

func (e *Engine) SessionStats(id int64) (*store.SessionStats, error) {
	return e.store.SessionStats(id)
}

// SessionLogs returns a session's log entries, newest first.
func (e *Engine) SessionLogs(id int64) ([]store.PhaseLog, error) {
	if _, err := e.store.GetSession(id); err != nil {
		return nil, err
	}
	return e.store.SessionLogs(id)
}

// DailyLogs returns the entries started on date (YYYY-MM-DD) in the engine's
// location, oldest first.
func (e *Engine) DailyLogs(date string) ([]store.PhaseLog, error) {
	day, err := ParseDate(date, e.loc)
	if err != nil {
		return nil, err
	}
	return e.store.LogsBetween(day, day.AddDate(0, 0, 1))
}

// DailySummary returns one row per day with activity in the `days` days ending today.
func (e *Engine) DailySummary(today time.Time, days int) ([]store.DailySummary, error) {
	if days <= 0 {
		return nil, &store.ValidationError{Field: "days", Message: "must be a positive integer"}
	}
	end := StartOfDay(today.In(e.loc)).AddDate(0, 0, 1)
	return e.store.DailySummary(end.AddDate(0, 0, -days), end)
}

// ParseDate parses a YYYY-MM-DD string as midnight in loc.
func ParseDate(date string, loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return time.Time{}, &store.ValidationError{Field: "date", Message: "must be formatted YYYY-MM-DD"}
	}
	return day, nil
}

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
