package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sadopc/tomato/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View tomato configuration",
	Long: `View tomato configuration.

Without arguments, displays the effective configuration. Every key can also
be set through the environment, e.g. TOMATO_DEFAULTS_WORK_MINUTES=50.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at ~/.config/tomato/config.yaml with all available options.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()

	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Fprintf(w, "# Config file: %s\n", used)
	} else {
		fmt.Fprintln(w, "# Config file: (none - using defaults)")
	}

	data, err := yaml.Marshal(configDocument(cfg))
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	_, err = w.Write(data)
	return err
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := config.ConfigFile()
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(configDocument(config.Default()))
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created config file: %s\n", path)
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Fprintln(cmd.OutOrStdout(), used)
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), config.ConfigFile())
	return nil
}

// configDocument mirrors the config file layout for YAML output.
func configDocument(cfg *config.Config) map[string]any {
	return map[string]any{
		"database": map[string]any{
			"path": cfg.Database.Path,
		},
		"defaults": map[string]any{
			"work_minutes":        cfg.Defaults.WorkMinutes,
			"short_break_minutes": cfg.Defaults.ShortBreakMinutes,
			"long_break_minutes":  cfg.Defaults.LongBreakMinutes,
			"long_break_interval": cfg.Defaults.LongBreakInterval,
		},
		"timezone": cfg.Timezone,
		"logging": map[string]any{
			"level": cfg.Logging.Level,
			"file":  cfg.Logging.File,
		},
		"tui": map[string]any{
			"auto_complete":   cfg.TUI.AutoComplete,
			"auto_start_next": cfg.TUI.AutoStartNext,
		},
	}
}
