package cmd

import (
	"fmt"

	"github.com/sadopc/tomato/internal/store"
	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:       "start [work|short_break|long_break]",
	Short:     "Start a phase on the current session",
	Long:      `Start a phase on the current session. Without an argument the recommended next phase is started.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: phaseNames(),
	RunE:      runStart,
}

func phaseNames() []string {
	names := make([]string, 0, len(store.Phases))
	for _, p := range store.Phases {
		names = append(names, string(p))
	}
	return names
}

var completeCmd = &cobra.Command{
	Use:   "complete",
	Short: "Complete the running phase",
	Long: `Complete the running phase and return the session to idle. A work phase
completed without --interrupted counts as a finished pomodoro.`,
	Args: cobra.NoArgs,
	RunE: runComplete,
}

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Show the recommended next phase",
	Args:  cobra.NoArgs,
	RunE:  runNext,
}

var (
	phaseJSON   bool
	interrupted bool
)

func init() {
	completeCmd.Flags().BoolVarP(&interrupted, "interrupted", "x", false, "mark the phase as interrupted")

	for _, c := range []*cobra.Command{startCmd, completeCmd, nextCmd} {
		c.Flags().BoolVar(&phaseJSON, "json", false, "output as JSON")
		rootCmd.AddCommand(c)
	}
}

func runStart(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	sess, err := e.session()
	if err != nil {
		return err
	}

	var phase store.Phase
	if len(args) == 1 {
		if phase, err = store.ParsePhase(args[0]); err != nil {
			return err
		}
	} else if phase, err = e.engine.NextPhaseType(sess.ID); err != nil {
		return err
	}

	sess, err = e.engine.StartPhase(sess.ID, phase)
	if err != nil {
		return err
	}
	if phaseJSON {
		return printJSON(cmd.OutOrStdout(), toJSONSession(sess))
	}
	minutes, _ := sess.DurationFor(phase)
	fmt.Fprintf(cmd.OutOrStdout(), "Started %s (%d min) on session %d\n", phaseLabel(phase), minutes, sess.ID)
	return nil
}

func runComplete(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	sess, err := e.session()
	if err != nil {
		return err
	}
	sess, err = e.engine.CompletePhase(sess.ID, interrupted)
	if err != nil {
		return err
	}
	if phaseJSON {
		return printJSON(cmd.OutOrStdout(), toJSONSession(sess))
	}

	next, err := e.engine.NextPhaseType(sess.ID)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	verb := "Completed"
	if interrupted {
		verb = "Interrupted"
	}
	fmt.Fprintf(w, "%s phase on session %d (%d pomodoros)\n", verb, sess.ID, sess.CompletedPomodoros)
	fmt.Fprintf(w, "Next: %s\n", phaseLabel(next))
	return nil
}

func runNext(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	sess, err := e.session()
	if err != nil {
		return err
	}
	next, err := e.engine.NextPhaseType(sess.ID)
	if err != nil {
		return err
	}
	if phaseJSON {
		return printJSON(cmd.OutOrStdout(), map[string]any{"session_id": sess.ID, "next_phase": string(next)})
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(next))
	return nil
}
