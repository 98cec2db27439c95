package cmd

import (
	"strings"

	"github.com/sadopc/tomato/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "tomato",
	Short: "Pomodoro focus timer",
	Long: `Tomato runs focus sessions that alternate work phases with short and
long breaks, records every phase in a local SQLite log, and reports
statistics per session and per day.

Without a subcommand it opens the interactive timer.`,
	SilenceUsage: true,
	RunE:         runTUI,
}

var sessionFlag int64

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/tomato/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))

	rootCmd.PersistentFlags().Int64VarP(&sessionFlag, "session", "s", 0, "session id (default is the current session)")
}

func initConfig() {
	// Defaults first so they apply without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("TOMATO")
	// TOMATO_DEFAULTS_WORK_MINUTES for defaults.work_minutes
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// A missing config file is fine
	_ = viper.ReadInConfig()
}
