package cmd

import (
	"fmt"

	"github.com/sadopc/tomato/internal/store"
	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Create, inspect and configure sessions",
}

var sessionCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new session",
	Long: `Create a new idle session. Durations not given on the command line come
from the defaults section of the config file. The new session becomes the
current session unless --use=false.`,
	Args: cobra.NoArgs,
	RunE: runSessionCreate,
}

var sessionConfigCmd = &cobra.Command{
	Use:   "config [id]",
	Short: "Change the durations or long-break interval of a session",
	Long: `Change any subset of a session's durations and long-break interval.
A running phase keeps the duration it was started with.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSessionConfig,
}

var sessionActiveCmd = &cobra.Command{
	Use:   "active",
	Short: "Show the session with a running phase",
	Args:  cobra.NoArgs,
	RunE:  runSessionActive,
}

var sessionShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a session (default: the current session)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSessionShow,
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all sessions, most recently updated first",
	Args:  cobra.NoArgs,
	RunE:  runSessionList,
}

var sessionUseCmd = &cobra.Command{
	Use:   "use <id>",
	Short: "Make a session the current session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionUse,
}

var (
	sessionJSON bool
	sessionUse  bool

	durWork     int
	durShort    int
	durLong     int
	durInterval int
)

func init() {
	for _, c := range []*cobra.Command{sessionCreateCmd, sessionConfigCmd} {
		c.Flags().IntVar(&durWork, "work", 0, "work phase minutes")
		c.Flags().IntVar(&durShort, "short", 0, "short break minutes")
		c.Flags().IntVar(&durLong, "long", 0, "long break minutes")
		c.Flags().IntVar(&durInterval, "interval", 0, "work phases between long breaks")
	}
	sessionCreateCmd.Flags().BoolVar(&sessionUse, "use", true, "make the new session current")

	for _, c := range []*cobra.Command{sessionCreateCmd, sessionConfigCmd, sessionActiveCmd, sessionShowCmd, sessionListCmd, sessionUseCmd} {
		c.Flags().BoolVar(&sessionJSON, "json", false, "output as JSON")
		sessionCmd.AddCommand(c)
	}
	rootCmd.AddCommand(sessionCmd)
}

// configUpdateFromFlags collects only the duration flags set on cmd.
func configUpdateFromFlags(cmd *cobra.Command) store.ConfigUpdate {
	var u store.ConfigUpdate
	if cmd.Flags().Changed("work") {
		u.WorkMinutes = &durWork
	}
	if cmd.Flags().Changed("short") {
		u.ShortBreakMinutes = &durShort
	}
	if cmd.Flags().Changed("long") {
		u.LongBreakMinutes = &durLong
	}
	if cmd.Flags().Changed("interval") {
		u.LongBreakInterval = &durInterval
	}
	return u
}

func runSessionCreate(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	cfg := configUpdateFromFlags(cmd).Apply(e.cfg.Defaults.SessionConfig())
	sess, err := e.engine.CreateSession(cfg)
	if err != nil {
		return err
	}
	if sessionUse {
		if _, err := e.engine.UseSession(sess.ID); err != nil {
			return err
		}
	}
	return outputSession(cmd, e, sess)
}

func runSessionConfig(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	sess, err := e.sessionArg(args)
	if err != nil {
		return err
	}
	sess, err = e.engine.UpdateSessionConfig(sess.ID, configUpdateFromFlags(cmd))
	if err != nil {
		return err
	}
	return outputSession(cmd, e, sess)
}

func runSessionActive(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	sess, err := e.engine.GetActiveSession()
	if err != nil {
		return err
	}
	if sess == nil {
		if sessionJSON {
			return printJSON(cmd.OutOrStdout(), nil)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No active session")
		return nil
	}
	return outputSession(cmd, e, sess)
}

func runSessionShow(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	sess, err := e.sessionArg(args)
	if err != nil {
		return err
	}
	return outputSession(cmd, e, sess)
}

func runSessionList(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	sessions, err := e.engine.ListSessions()
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if sessionJSON {
		out := make([]jsonSession, 0, len(sessions))
		for i := range sessions {
			out = append(out, toJSONSession(&sessions[i]))
		}
		return printJSON(w, out)
	}

	if len(sessions) == 0 {
		fmt.Fprintln(w, "No sessions")
		return nil
	}
	current, _, _ := e.store.CurrentSession()
	fmt.Fprintf(w, "  %-6s %-12s %-5s %-14s %s\n", "ID", "PHASE", "DONE", "CONFIG", "UPDATED")
	for _, s := range sessions {
		marker := " "
		if s.ID == current {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %-6d %-12s %-5d %-14s %s\n",
			marker, s.ID, s.CurrentPhase(), s.CompletedPomodoros,
			fmt.Sprintf("%d/%d/%d x%d", s.WorkMinutes, s.ShortBreakMinutes, s.LongBreakMinutes, s.LongBreakInterval),
			s.UpdatedAt.In(e.engine.Location()).Format(displayTime))
	}
	return nil
}

func runSessionUse(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	sess, err := e.engine.UseSession(id)
	if err != nil {
		return err
	}
	return outputSession(cmd, e, sess)
}

func outputSession(cmd *cobra.Command, e *env, sess *store.Session) error {
	if sessionJSON {
		return printJSON(cmd.OutOrStdout(), toJSONSession(sess))
	}
	printSession(cmd.OutOrStdout(), sess, e.engine.Location())
	return nil
}
