package tui

import (
	"time"

	"github.com/sadopc/tomato/internal/store"
)

// countdown tracks the running phase of a session. It is derived from the
// open log entry, so the planned duration is the one the phase started with
// even if the session configuration changed since.
type countdown struct {
	phase     store.Phase
	startedAt time.Time
	planned   time.Duration
}

func newCountdown(open *store.PhaseLog) countdown {
	if open == nil || !open.Open() {
		return countdown{phase: store.PhaseIdle}
	}
	return countdown{
		phase:     open.Phase,
		startedAt: open.StartedAt,
		planned:   time.Duration(open.DurationMinutes) * time.Minute,
	}
}

func (c countdown) running() bool {
	return c.phase != "" && c.phase != store.PhaseIdle
}

func (c countdown) elapsed(now time.Time) time.Duration {
	if !c.running() {
		return 0
	}
	if d := now.Sub(c.startedAt); d > 0 {
		return d
	}
	return 0
}

// remaining is negative once the phase runs past its planned duration.
func (c countdown) remaining(now time.Time) time.Duration {
	if !c.running() {
		return 0
	}
	return c.planned - c.elapsed(now)
}

func (c countdown) expired(now time.Time) bool {
	return c.running() && c.remaining(now) <= 0
}

// progress is the elapsed share of the planned duration, clamped to [0, 1].
func (c countdown) progress(now time.Time) float64 {
	if !c.running() || c.planned <= 0 {
		return 0
	}
	p := float64(c.elapsed(now)) / float64(c.planned)
	if p > 1 {
		return 1
	}
	return p
}
