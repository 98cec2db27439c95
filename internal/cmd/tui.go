package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
	"github.com/sadopc/tomato/internal/config"
	"github.com/sadopc/tomato/internal/tui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func runTUI(cmd *cobra.Command, args []string) error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	sess, err := env.session()
	if err != nil {
		return err
	}

	app := tui.NewApp(env.engine, env.cfg, sess.ID)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if viper.ConfigFileUsed() != "" {
		viper.OnConfigChange(func(ev fsnotify.Event) {
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				return
			}
			cfg, err := config.Load()
			if err != nil {
				env.log.Warn("config reload rejected", "file", ev.Name, "error", err)
				return
			}
			env.log.Info("config reloaded", "file", ev.Name)
			p.Send(tui.ConfigChangedMsg{Config: cfg})
		})
		viper.WatchConfig()
	}

	env.log.WithSession(sess.ID).Debug("starting tui")
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
