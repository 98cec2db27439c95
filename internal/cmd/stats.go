package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats [id]",
	Short: "Show statistics for a session",
	Long: `Display aggregate statistics for a session:

- Completed pomodoros
- Planned work and break minutes
- Completion rate (share of entries not interrupted)
- Time of the last phase start`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStats,
}

var statsJSON bool

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Output statistics as JSON")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	sess, err := e.sessionArg(args)
	if err != nil {
		return err
	}
	stats, err := e.engine.SessionStats(sess.ID)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if statsJSON {
		return printJSON(w, toJSONStats(stats))
	}

	fmt.Fprintln(w, "SESSION STATS")
	fmt.Fprintln(w, strings.Repeat("─", 40))
	fmt.Fprintf(w, "Session:          %d\n", stats.SessionID)
	fmt.Fprintf(w, "Pomodoros:        %d\n", stats.TotalCompletedPomodoros)
	fmt.Fprintf(w, "Work minutes:     %d\n", stats.TotalWorkMinutes)
	fmt.Fprintf(w, "Break minutes:    %d\n", stats.TotalBreakMinutes)
	fmt.Fprintf(w, "Entries:          %d (%d interrupted)\n", stats.TotalLogs, stats.InterruptedLogs)
	fmt.Fprintf(w, "Completion rate:  %.1f%%\n", stats.CompletionRate)
	if stats.LastActivity != nil {
		fmt.Fprintf(w, "Last activity:    %s\n", stats.LastActivity.In(e.engine.Location()).Format(displayTime))
	} else {
		fmt.Fprintln(w, "Last activity:    never")
	}
	return nil
}
