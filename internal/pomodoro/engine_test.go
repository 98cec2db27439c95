package pomodoro

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sadopc/tomato/internal/logging"
	"github.com/sadopc/tomato/internal/store"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)}
	s, err := store.NewMemory(store.WithClock(clock.Now))
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	opts = append([]Option{WithLocation(time.UTC)}, opts...)
	return New(s, opts...), clock
}

var defaultConfig = store.SessionConfig{WorkMinutes: 25, ShortBreakMinutes: 5, LongBreakMinutes: 15, LongBreakInterval: 4}

func mustCreate(t *testing.T, e *Engine) *store.Session {
	t.Helper()
	sess, err := e.CreateSession(defaultConfig)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return sess
}

// runPhase starts and completes one phase.
func runPhase(t *testing.T, e *Engine, id int64, phase store.Phase, interrupted bool) *store.Session {
	t.Helper()
	if _, err := e.StartPhase(id, phase); err != nil {
		t.Fatalf("start %s: %v", phase, err)
	}
	sess, err := e.CompletePhase(id, interrupted)
	if err != nil {
		t.Fatalf("complete %s: %v", phase, err)
	}
	return sess
}

// ============================================================
// Phase transitions
// ============================================================

func TestStartAndComplete(t *testing.T) {
	e, _ := newTestEngine(t)
	sess := mustCreate(t, e)

	started, err := e.StartPhase(sess.ID, store.PhaseWork)
	if err != nil {
		t.Fatal(err)
	}
	if started.CurrentPhase() != store.PhaseWork || !started.IsActive() || started.PhaseStartTime() == nil {
		t.Fatalf("unexpected running session: %+v", started)
	}

	active, err := e.GetActiveSession()
	if err != nil {
		t.Fatal(err)
	}
	if active == nil || active.ID != sess.ID {
		t.Fatalf("expected session %d active, got %+v", sess.ID, active)
	}

	done, err := e.CompletePhase(sess.ID, false)
	if err != nil {
		t.Fatal(err)
	}
	if done.CurrentPhase() != store.PhaseIdle || done.IsActive() || done.PhaseStartTime() != nil {
		t.Fatalf("session should be idle: %+v", done)
	}
	if done.CompletedPomodoros != 1 {
		t.Errorf("CompletedPomodoros = %d, want 1", done.CompletedPomodoros)
	}

	active, err = e.GetActiveSession()
	if err != nil {
		t.Fatal(err)
	}
	if active != nil {
		t.Errorf("no session should be active, got %d", active.ID)
	}
}

func TestStartWhileRunning(t *testing.T) {
	e, _ := newTestEngine(t)
	sess := mustCreate(t, e)

	if _, err := e.StartPhase(sess.ID, store.PhaseWork); err != nil {
		t.Fatal(err)
	}
	_, err := e.StartPhase(sess.ID, store.PhaseShortBreak)
	if !errors.Is(err, store.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}

	logs, err := e.SessionLogs(sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(logs) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(logs))
	}
}

func TestCompleteWhileIdle(t *testing.T) {
	e, _ := newTestEngine(t)
	sess := mustCreate(t, e)

	_, err := e.CompletePhase(sess.ID, false)
	if !errors.Is(err, store.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestEngineErrors(t *testing.T) {
	e, _ := newTestEngine(t)
	sess := mustCreate(t, e)

	if _, err := e.StartPhase(999, store.PhaseWork); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("StartPhase unknown session: %v", err)
	}
	if _, err := e.CompletePhase(999, false); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("CompletePhase unknown session: %v", err)
	}
	if _, err := e.NextPhaseType(999); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("NextPhaseType unknown session: %v", err)
	}
	if _, err := e.SessionStats(999); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("SessionStats unknown session: %v", err)
	}
	if _, err := e.SessionLogs(999); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("SessionLogs unknown session: %v", err)
	}
	if _, err := e.StartPhase(sess.ID, store.PhaseIdle); !errors.Is(err, store.ErrValidation) {
		t.Errorf("StartPhase idle: %v", err)
	}
	if _, err := e.CreateSession(store.SessionConfig{WorkMinutes: 0, ShortBreakMinutes: 5, LongBreakMinutes: 15, LongBreakInterval: 4}); !errors.Is(err, store.ErrValidation) {
		t.Errorf("CreateSession zero work: %v", err)
	}
	if _, err := e.UpdateSessionConfig(sess.ID, store.ConfigUpdate{LongBreakInterval: intPtr(0)}); !errors.Is(err, store.ErrValidation) {
		t.Errorf("UpdateSessionConfig zero interval: %v", err)
	}
}

func TestConcurrentStart(t *testing.T) {
	e, _ := newTestEngine(t)
	sess := mustCreate(t, e)

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.StartPhase(sess.ID, store.PhaseWork)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		case !errors.Is(err, store.ErrInvalidState):
			t.Errorf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one start to succeed, got %d", succeeded)
	}

	logs, err := e.SessionLogs(sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	open := 0
	for _, l := range logs {
		if l.Open() {
			open++
		}
	}
	if len(logs) != 1 || open != 1 {
		t.Fatalf("expected one open entry, got %d entries (%d open)", len(logs), open)
	}
}

func TestUpdateConfigKeepsRunningDuration(t *testing.T) {
	e, _ := newTestEngine(t)
	sess := mustCreate(t, e)

	if _, err := e.StartPhase(sess.ID, store.PhaseWork); err != nil {
		t.Fatal(err)
	}
	updated, err := e.UpdateSessionConfig(sess.ID, store.ConfigUpdate{WorkMinutes: intPtr(50)})
	if err != nil {
		t.Fatal(err)
	}
	if updated.WorkMinutes != 50 || updated.CurrentPhase() != store.PhaseWork {
		t.Fatalf("unexpected session after update: %+v", updated)
	}

	logs, _ := e.SessionLogs(sess.ID)
	if logs[0].DurationMinutes != 25 {
		t.Errorf("running entry duration = %d, want 25", logs[0].DurationMinutes)
	}

	if _, err := e.CompletePhase(sess.ID, false); err != nil {
		t.Fatal(err)
	}
	if _, err := e.StartPhase(sess.ID, store.PhaseWork); err != nil {
		t.Fatal(err)
	}
	logs, _ = e.SessionLogs(sess.ID)
	if logs[0].DurationMinutes != 50 {
		t.Errorf("new entry duration = %d, want 50", logs[0].DurationMinutes)
	}
}

// ============================================================
// Next phase recommendation
// ============================================================

func TestNextPhaseTypeCycle(t *testing.T) {
	e, _ := newTestEngine(t)
	sess := mustCreate(t, e)

	next, err := e.NextPhaseType(sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	if next != store.PhaseWork {
		t.Fatalf("fresh session: got %s, want work", next)
	}

	for i := 1; i <= 8; i++ {
		runPhase(t, e, sess.ID, store.PhaseWork, false)

		want := store.PhaseShortBreak
		if i%4 == 0 {
			want = store.PhaseLongBreak
		}
		next, err := e.NextPhaseType(sess.ID)
		if err != nil {
			t.Fatal(err)
		}
		if next != want {
			t.Fatalf("after work #%d: got %s, want %s", i, next, want)
		}

		runPhase(t, e, sess.ID, next, false)
		if next, _ := e.NextPhaseType(sess.ID); next != store.PhaseWork {
			t.Fatalf("after break #%d: got %s, want work", i, next)
		}
	}

	got, _ := e.GetSession(sess.ID)
	if got.CompletedPomodoros != 8 {
		t.Errorf("CompletedPomodoros = %d, want 8", got.CompletedPomodoros)
	}
}

func TestNextPhaseTypeAfterInterruption(t *testing.T) {
	e, _ := newTestEngine(t)
	sess := mustCreate(t, e)

	runPhase(t, e, sess.ID, store.PhaseWork, false)
	runPhase(t, e, sess.ID, store.PhaseShortBreak, false)
	runPhase(t, e, sess.ID, store.PhaseWork, true)

	// One completed pomodoro, last phase work: 1 % 4 != 0.
	next, err := e.NextPhaseType(sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	if next != store.PhaseShortBreak {
		t.Fatalf("got %s, want short_break", next)
	}
}

func TestNextPhaseTypeDeterministic(t *testing.T) {
	e, _ := newTestEngine(t)
	sess := mustCreate(t, e)
	runPhase(t, e, sess.ID, store.PhaseWork, false)

	first, err := e.NextPhaseType(sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		if got, _ := e.NextPhaseType(sess.ID); got != first {
			t.Fatalf("call %d: got %s, want %s", i, got, first)
		}
	}
}

// ============================================================
// Stats and daily logs
// ============================================================

func TestSessionStatsExample(t *testing.T) {
	e, _ := newTestEngine(t)
	sess := mustCreate(t, e)

	runPhase(t, e, sess.ID, store.PhaseWork, false)
	if _, err := e.UpdateSessionConfig(sess.ID, store.ConfigUpdate{WorkMinutes: intPtr(15)}); err != nil {
		t.Fatal(err)
	}
	runPhase(t, e, sess.ID, store.PhaseWork, true)

	stats, err := e.SessionStats(sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalCompletedPomodoros != 1 {
		t.Errorf("TotalCompletedPomodoros = %d, want 1", stats.TotalCompletedPomodoros)
	}
	if stats.TotalWorkMinutes != 40 {
		t.Errorf("TotalWorkMinutes = %d, want 40", stats.TotalWorkMinutes)
	}
	if stats.CompletionRate != 50 {
		t.Errorf("CompletionRate = %v, want 50", stats.CompletionRate)
	}
	if stats.LastActivity == nil {
		t.Error("LastActivity should be set")
	}
}

func TestSessionStatsEmpty(t *testing.T) {
	e, _ := newTestEngine(t)
	sess := mustCreate(t, e)

	stats, err := e.SessionStats(sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalLogs != 0 || stats.CompletionRate != 0 || stats.LastActivity != nil {
		t.Fatalf("unexpected stats for empty session: %+v", stats)
	}
}

func TestDailyLogs(t *testing.T) {
	e, clock := newTestEngine(t)
	sess := mustCreate(t, e)

	runPhase(t, e, sess.ID, store.PhaseWork, false)
	runPhase(t, e, sess.ID, store.PhaseShortBreak, false)

	clock.Advance(24 * time.Hour)
	runPhase(t, e, sess.ID, store.PhaseWork, false)

	day1, err := e.DailyLogs("2024-01-15")
	if err != nil {
		t.Fatal(err)
	}
	if len(day1) != 2 {
		t.Fatalf("expected 2 entries on 2024-01-15, got %d", len(day1))
	}
	if day1[0].Phase != store.PhaseWork || day1[1].Phase != store.PhaseShortBreak {
		t.Errorf("entries out of order: %s, %s", day1[0].Phase, day1[1].Phase)
	}

	day2, err := e.DailyLogs("2024-01-16")
	if err != nil {
		t.Fatal(err)
	}
	if len(day2) != 1 {
		t.Fatalf("expected 1 entry on 2024-01-16, got %d", len(day2))
	}

	empty, err := e.DailyLogs("2023-12-31")
	if err != nil {
		t.Fatal(err)
	}
	if len(empty) != 0 {
		t.Errorf("expected no entries, got %d", len(empty))
	}
}

func TestDailyLogsInvalidDate(t *testing.T) {
	e, _ := newTestEngine(t)
	for _, d := range []string{"", "2024-13-01", "15/01/2024", "yesterday"} {
		if _, err := e.DailyLogs(d); !errors.Is(err, store.ErrValidation) {
			t.Errorf("DailyLogs(%q): expected ErrValidation, got %v", d, err)
		}
	}
}

func TestDailySummary(t *testing.T) {
	e, clock := newTestEngine(t)
	sess := mustCreate(t, e)

	runPhase(t, e, sess.ID, store.PhaseWork, false)
	clock.Advance(24 * time.Hour)
	runPhase(t, e, sess.ID, store.PhaseWork, true)

	today := time.Date(2024, 1, 16, 12, 0, 0, 0, time.UTC)
	rows, err := e.DailySummary(today, 7)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 days, got %d", len(rows))
	}
	if rows[0].CompletedPomodoros != 1 || rows[1].InterruptedCount != 1 {
		t.Errorf("unexpected rows: %+v", rows)
	}

	rows, err = e.DailySummary(today, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected only today, got %d rows", len(rows))
	}

	if _, err := e.DailySummary(today, 0); !errors.Is(err, store.ErrValidation) {
		t.Errorf("zero days: expected ErrValidation, got %v", err)
	}
}

// ============================================================
// Current session
// ============================================================

func TestCurrentSessionCreatesDefault(t *testing.T) {
	e, _ := newTestEngine(t)

	sess, err := e.CurrentSession(defaultConfig)
	if err != nil {
		t.Fatal(err)
	}
	if sess.WorkMinutes != 25 {
		t.Errorf("WorkMinutes = %d, want 25", sess.WorkMinutes)
	}

	again, err := e.CurrentSession(store.SessionConfig{WorkMinutes: 50, ShortBreakMinutes: 10, LongBreakMinutes: 30, LongBreakInterval: 2})
	if err != nil {
		t.Fatal(err)
	}
	if again.ID != sess.ID {
		t.Errorf("expected the remembered session %d, got %d", sess.ID, again.ID)
	}

	all, _ := e.ListSessions()
	if len(all) != 1 {
		t.Errorf("expected 1 session, got %d", len(all))
	}
}

func TestCurrentSessionPrefersActive(t *testing.T) {
	e, _ := newTestEngine(t)
	mustCreate(t, e)
	second := mustCreate(t, e)
	if _, err := e.StartPhase(second.ID, store.PhaseWork); err != nil {
		t.Fatal(err)
	}

	sess, err := e.CurrentSession(defaultConfig)
	if err != nil {
		t.Fatal(err)
	}
	if sess.ID != second.ID {
		t.Errorf("expected active session %d, got %d", second.ID, sess.ID)
	}
}

func TestUseSession(t *testing.T) {
	e, _ := newTestEngine(t)
	first := mustCreate(t, e)
	mustCreate(t, e)

	if _, err := e.UseSession(first.ID); err != nil {
		t.Fatal(err)
	}
	sess, err := e.CurrentSession(defaultConfig)
	if err != nil {
		t.Fatal(err)
	}
	if sess.ID != first.ID {
		t.Errorf("expected session %d, got %d", first.ID, sess.ID)
	}

	if _, err := e.UseSession(999); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("UseSession unknown: expected ErrNotFound, got %v", err)
	}
}

func TestTransitionsAreLogged(t *testing.T) {
	var buf bytes.Buffer
	e, _ := newTestEngine(t, WithLogger(logging.New(&buf, logging.LevelInfo)))
	sess := mustCreate(t, e)

	runPhase(t, e, sess.ID, store.PhaseWork, false)
	e.StartPhase(999, store.PhaseWork)

	out := buf.String()
	for _, want := range []string{`"msg":"phase started"`, `"msg":"phase completed"`, `"msg":"start phase failed"`, `"level":"WARN"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s:\n%s", want, out)
		}
	}
}

func intPtr(v int) *int { return &v }
