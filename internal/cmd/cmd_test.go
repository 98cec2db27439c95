package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/sadopc/tomato/internal/store"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// executeCommand runs a cobra command with args and returns captured output
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err = root.Execute()
	return buf.String(), err
}

// resetFlags restores every flag to its default. Flag values live in package
// variables and survive between Execute calls.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// setupTestEnvironment points config, database and log at a temp directory.
func setupTestEnvironment(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Chdir(dir)

	viper.Reset()
	viper.Set("database.path", filepath.Join(dir, "tomato.db"))
	viper.Set("logging.file", filepath.Join(dir, "tomato.log"))
	viper.Set("timezone", "UTC")

	t.Cleanup(func() {
		viper.Reset()
		resetFlags(rootCmd)
		sessionFlag = 0
	})
	return dir
}

// run executes args and resets flags afterwards so the next call starts clean.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	defer resetFlags(rootCmd)
	return executeCommand(rootCmd, args...)
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	if err != nil {
		t.Fatalf("%s failed: %v\nOutput: %s", strings.Join(args, " "), err, out)
	}
	return out
}

func decode[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	return v
}

func TestRootCommand(t *testing.T) {
	if rootCmd.Use != "tomato" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "tomato")
	}

	expectedCmds := []string{"session", "start", "complete", "next", "stats", "logs", "report", "export", "config"}
	cmdMap := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		cmdMap[cmd.Name()] = true
	}
	for _, expected := range expectedCmds {
		if !cmdMap[expected] {
			t.Errorf("expected subcommand %q not found", expected)
		}
	}
}

// ============================================================
// Sessions
// ============================================================

func TestSessionCreateAndShow(t *testing.T) {
	setupTestEnvironment(t)

	created := decode[jsonSession](t, mustRun(t, "session", "create", "--work", "50", "--json"))
	if created.WorkMinutes != 50 || created.ShortBreakMinutes != 5 || created.LongBreakInterval != 4 {
		t.Fatalf("unexpected session: %+v", created)
	}
	if created.CurrentPhase != "idle" || created.IsActive || created.PhaseStartTime != nil {
		t.Fatalf("new session should be idle: %+v", created)
	}

	shown := decode[jsonSession](t, mustRun(t, "session", "show", "--json"))
	if shown.ID != created.ID {
		t.Fatalf("show returned session %d, want the new current session %d", shown.ID, created.ID)
	}
}

func TestSessionCreateRejectsInvalid(t *testing.T) {
	setupTestEnvironment(t)

	_, err := run(t, "session", "create", "--work", "0")
	if !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSessionConfigPartialUpdate(t *testing.T) {
	setupTestEnvironment(t)
	mustRun(t, "session", "create")

	sess := decode[jsonSession](t, mustRun(t, "session", "config", "--short", "10", "--json"))
	if sess.ShortBreakMinutes != 10 {
		t.Errorf("ShortBreakMinutes = %d, want 10", sess.ShortBreakMinutes)
	}
	if sess.WorkMinutes != 25 || sess.LongBreakMinutes != 15 || sess.LongBreakInterval != 4 {
		t.Errorf("untouched fields changed: %+v", sess)
	}
}

func TestSessionListAndUse(t *testing.T) {
	setupTestEnvironment(t)
	first := decode[jsonSession](t, mustRun(t, "session", "create", "--json"))
	mustRun(t, "session", "create")

	list := decode[[]jsonSession](t, mustRun(t, "session", "list", "--json"))
	if len(list) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(list))
	}

	mustRun(t, "session", "use", strconv.FormatInt(first.ID, 10))
	shown := decode[jsonSession](t, mustRun(t, "session", "show", "--json"))
	if shown.ID != first.ID {
		t.Fatalf("current session = %d, want %d", shown.ID, first.ID)
	}

	out := mustRun(t, "session", "list")
	if !strings.Contains(out, "*") {
		t.Errorf("list should mark the current session:\n%s", out)
	}

	if _, err := run(t, "session", "use", "99"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("use of unknown session: %v", err)
	}
	if _, err := run(t, "session", "use", "abc"); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("use with bad id: %v", err)
	}
}

func TestSessionActive(t *testing.T) {
	setupTestEnvironment(t)
	mustRun(t, "session", "create")

	if out := mustRun(t, "session", "active"); !strings.Contains(out, "No active session") {
		t.Fatalf("unexpected output: %s", out)
	}

	mustRun(t, "start")
	active := decode[jsonSession](t, mustRun(t, "session", "active", "--json"))
	if !active.IsActive || active.CurrentPhase != "work" {
		t.Fatalf("unexpected active session: %+v", active)
	}
}

// ============================================================
// Phases
// ============================================================

func TestStartCompleteFlow(t *testing.T) {
	setupTestEnvironment(t)

	out := mustRun(t, "start")
	if !strings.Contains(out, "Started Work (25 min)") {
		t.Fatalf("unexpected start output: %s", out)
	}

	if _, err := run(t, "start"); !errors.Is(err, store.ErrInvalidState) {
		t.Fatalf("second start should fail with invalid state, got %v", err)
	}

	out = mustRun(t, "complete")
	if !strings.Contains(out, "Completed phase") || !strings.Contains(out, "(1 pomodoros)") {
		t.Fatalf("unexpected complete output: %s", out)
	}
	if !strings.Contains(out, "Next: Short break") {
		t.Fatalf("complete should recommend a short break: %s", out)
	}

	if out := strings.TrimSpace(mustRun(t, "next")); out != "short_break" {
		t.Fatalf("next = %q, want short_break", out)
	}
}

func TestStartExplicitPhase(t *testing.T) {
	setupTestEnvironment(t)

	sess := decode[jsonSession](t, mustRun(t, "start", "long_break", "--json"))
	if sess.CurrentPhase != "long_break" || sess.PhaseStartTime == nil {
		t.Fatalf("unexpected session: %+v", sess)
	}

	mustRun(t, "complete")
	if _, err := run(t, "start", "idle"); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("starting idle should be a validation error, got %v", err)
	}
}

func TestCompleteInterrupted(t *testing.T) {
	setupTestEnvironment(t)
	mustRun(t, "start")

	sess := decode[jsonSession](t, mustRun(t, "complete", "-x", "--json"))
	if sess.CompletedPomodoros != 0 || sess.CurrentPhase != "idle" {
		t.Fatalf("interrupted work must not count: %+v", sess)
	}
}

func TestCompleteWhenIdle(t *testing.T) {
	setupTestEnvironment(t)

	if _, err := run(t, "complete"); !errors.Is(err, store.ErrInvalidState) {
		t.Fatalf("complete on idle session: %v", err)
	}
}

func TestUnknownSessionFlag(t *testing.T) {
	setupTestEnvironment(t)

	if _, err := run(t, "start", "--session", "42"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

// ============================================================
// Stats, logs and reports
// ============================================================

func TestStatsJSON(t *testing.T) {
	setupTestEnvironment(t)

	empty := decode[jsonStats](t, mustRun(t, "stats", "--json"))
	if empty.TotalLogs != 0 || empty.CompletionRate != 0 || empty.LastActivity != nil {
		t.Fatalf("unexpected empty stats: %+v", empty)
	}

	mustRun(t, "start")
	mustRun(t, "complete")

	stats := decode[jsonStats](t, mustRun(t, "stats", "--json"))
	if stats.TotalCompletedPomodoros != 1 || stats.TotalLogs != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.TotalWorkMinutes != 25 || stats.CompletionRate != 100 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if stats.LastActivity == nil {
		t.Fatal("last activity should be set")
	}
}

func TestLogs(t *testing.T) {
	setupTestEnvironment(t)
	mustRun(t, "start")

	logs := decode[[]jsonLog](t, mustRun(t, "logs", "--json"))
	if len(logs) != 1 || logs[0].PhaseType != "work" || logs[0].CompletedAt != nil {
		t.Fatalf("unexpected logs: %+v", logs)
	}

	if out := mustRun(t, "logs", "--date", "2000-01-01"); !strings.Contains(out, "No entries") {
		t.Fatalf("past day should be empty: %s", out)
	}
	if _, err := run(t, "logs", "--date", "01/02/2000"); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("bad date should be a validation error, got %v", err)
	}

	all := decode[[]jsonLog](t, mustRun(t, "logs", "--all", "--json"))
	if len(all) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(all))
	}
}

func TestReport(t *testing.T) {
	setupTestEnvironment(t)

	if out := mustRun(t, "report"); !strings.Contains(out, "No activity") {
		t.Fatalf("unexpected report: %s", out)
	}

	mustRun(t, "start")
	mustRun(t, "complete")

	rows := decode[[]store.DailySummary](t, mustRun(t, "report", "--json"))
	if len(rows) != 1 || rows[0].CompletedPomodoros != 1 || rows[0].LogCount != 1 {
		t.Fatalf("unexpected report rows: %+v", rows)
	}

	if _, err := run(t, "report", "--days", "0"); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("zero days should be rejected, got %v", err)
	}
}

// ============================================================
// Export
// ============================================================

func TestExport(t *testing.T) {
	dir := setupTestEnvironment(t)
	mustRun(t, "start")
	mustRun(t, "complete")

	path := filepath.Join(dir, "out.json")
	out := mustRun(t, "export", "-f", "json", "-o", path)
	if !strings.Contains(out, "Exported 1 entries") {
		t.Fatalf("unexpected output: %s", out)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.Contains(string(data), `"stats"`) {
		t.Errorf("session export should include stats:\n%s", data)
	}

	csvPath := filepath.Join(dir, "out.csv")
	mustRun(t, "export", "-o", csvPath)
	if _, err := os.Stat(csvPath); err != nil {
		t.Fatalf("csv export missing: %v", err)
	}

	if _, err := run(t, "export", "-f", "xml", "-o", filepath.Join(dir, "out.xml")); err == nil {
		t.Fatal("unknown format should fail")
	}
}

// ============================================================
// Config
// ============================================================

func TestConfigPathAndInit(t *testing.T) {
	dir := setupTestEnvironment(t)
	want := filepath.Join(dir, "config", "tomato", "config.yaml")

	if out := strings.TrimSpace(mustRun(t, "config", "path")); out != want {
		t.Fatalf("config path = %q, want %q", out, want)
	}

	mustRun(t, "config", "init")
	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("config init did not write a file: %v", err)
	}
	if !strings.Contains(string(data), "work_minutes: 25") {
		t.Errorf("unexpected config file:\n%s", data)
	}

	if _, err := run(t, "config", "init"); err == nil {
		t.Fatal("second init should refuse to overwrite")
	}
}

func TestConfigShow(t *testing.T) {
	setupTestEnvironment(t)

	out := mustRun(t, "config", "show")
	if !strings.Contains(out, "timezone: UTC") || !strings.Contains(out, "long_break_interval: 4") {
		t.Fatalf("unexpected config output:\n%s", out)
	}
}

func TestParseID(t *testing.T) {
	if id, err := parseID("7"); err != nil || id != 7 {
		t.Fatalf("parseID(7) = %d, %v", id, err)
	}
	for _, bad := range []string{"0", "-1", "x"} {
		if _, err := parseID(bad); !errors.Is(err, store.ErrValidation) {
			t.Errorf("parseID(%q) should be a validation error", bad)
		}
	}
}
