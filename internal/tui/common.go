package tui

import (
	"fmt"
	"time"

	"github.com/sadopc/tomato/internal/config"
	"github.com/sadopc/tomato/internal/store"
)

// viewState represents the currently active view.
type viewState int

const (
	viewTimer viewState = iota
	viewToday
	viewSessions
	viewReports
	viewSettings
)

var viewNames = []string{"Timer", "Today", "Sessions", "Reports", "Settings"}

// --- Messages ---

type phaseStartedMsg struct {
	session *store.Session
	phase   store.Phase
}

type phaseCompletedMsg struct {
	session     *store.Session
	interrupted bool
}

// phaseFailedMsg reports a start or completion the engine rejected. The timer
// view reloads from the store since its state may be stale.
type phaseFailedMsg struct {
	status statusMsg
}

// sessionSelectedMsg switches every view to another session.
type sessionSelectedMsg struct {
	id int64
}

// sessionUpdatedMsg reports a configuration change of the current session.
type sessionUpdatedMsg struct {
	session *store.Session
}

// ConfigChangedMsg carries a reloaded configuration into a running program.
type ConfigChangedMsg struct {
	Config *config.Config
}

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type exportDoneMsg struct {
	path  string
	count int
}

func errStatus(prefix string, err error) statusMsg {
	return statusMsg{text: fmt.Sprintf("%s: %v", prefix, err), isError: true}
}

// --- Helpers ---

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatMinutes(m int) string {
	if m < 60 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh%02dm", m/60, m%60)
}

func formatHours(minutes int) string {
	return fmt.Sprintf("%.1fh", float64(minutes)/60)
}

func phaseTitle(p store.Phase) string {
	switch p {
	case store.PhaseWork:
		return "WORK"
	case store.PhaseShortBreak:
		return "SHORT BREAK"
	case store.PhaseLongBreak:
		return "LONG BREAK"
	default:
		return "IDLE"
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
