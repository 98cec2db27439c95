package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/sadopc/tomato/internal/pomodoro"
	"github.com/sadopc/tomato/internal/store"
	"github.com/spf13/cobra"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show phase log entries",
	Long: `Show the phase log entries started on a calendar day (default today) in
the configured timezone, oldest first. With --all, show every entry of
the current session instead, newest first.`,
	Args: cobra.NoArgs,
	RunE: runLogs,
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize work and breaks per day",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

var (
	logsDate string
	logsAll  bool
	logsJSON bool

	reportDays int
	reportJSON bool
)

func init() {
	logsCmd.Flags().StringVarP(&logsDate, "date", "d", "", "calendar day as YYYY-MM-DD (default today)")
	logsCmd.Flags().BoolVar(&logsAll, "all", false, "show every entry of the session")
	logsCmd.Flags().BoolVar(&logsJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(logsCmd)

	reportCmd.Flags().IntVar(&reportDays, "days", 7, "number of days ending today")
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(reportCmd)
}

// selectLogs returns the entries chosen by the --date and --all flags.
func selectLogs(e *env, date string, all bool) ([]store.PhaseLog, error) {
	if all {
		sess, err := e.session()
		if err != nil {
			return nil, err
		}
		return e.engine.SessionLogs(sess.ID)
	}
	if date == "" {
		date = time.Now().In(e.engine.Location()).Format(pomodoro.DateLayout)
	}
	return e.engine.DailyLogs(date)
}

func runLogs(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	logs, err := selectLogs(e, logsDate, logsAll)
	if err != nil {
		return err
	}
	if logsJSON {
		return printJSON(cmd.OutOrStdout(), toJSONLogs(logs))
	}
	printLogs(cmd.OutOrStdout(), logs, e.engine.Location())
	return nil
}

func runReport(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	rows, err := e.engine.DailySummary(time.Now(), reportDays)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if reportJSON {
		if rows == nil {
			rows = []store.DailySummary{}
		}
		return printJSON(w, rows)
	}

	fmt.Fprintf(w, "LAST %d DAYS\n", reportDays)
	fmt.Fprintln(w, strings.Repeat("─", 52))
	if len(rows) == 0 {
		fmt.Fprintln(w, "No activity")
		return nil
	}
	fmt.Fprintf(w, "%-12s %-10s %-10s %-10s %s\n", "DATE", "POMODOROS", "WORK", "BREAK", "INTERRUPTED")
	var pomodoros, work, brk int
	for _, r := range rows {
		fmt.Fprintf(w, "%-12s %-10d %-10s %-10s %d\n",
			r.Date, r.CompletedPomodoros, minutes(r.WorkMinutes), minutes(r.BreakMinutes), r.InterruptedCount)
		pomodoros += r.CompletedPomodoros
		work += r.WorkMinutes
		brk += r.BreakMinutes
	}
	fmt.Fprintln(w, strings.Repeat("─", 52))
	fmt.Fprintf(w, "%-12s %-10d %-10s %s\n", "Total", pomodoros, minutes(work), minutes(brk))
	return nil
}

func minutes(m int) string {
	if m < 60 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh%02dm", m/60, m%60)
}
