package pomodoro

import "github.com/sadopc/tomato/internal/store"

// NextPhase recommends the phase to start after last, the phase of the most
// recent log entry (PhaseIdle when the session has no history). completed is
// the session's current completed_pomodoros, which already includes the work
// phase that just finished.
func NextPhase(completed, longBreakInterval int, last store.Phase) store.Phase {
	if last != store.PhaseWork {
		return store.PhaseWork
	}
	if longBreakInterval > 0 && completed%longBreakInterval == 0 {
		return store.PhaseLongBreak
	}
	return store.PhaseShortBreak
}
