package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/sadopc/tomato/internal/export"
	"github.com/sadopc/tomato/internal/store"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export phase log entries to CSV, JSON or YAML",
	Long: `Export phase log entries to a file. By default every entry of the
current session is exported; --date limits the export to one calendar day.
JSON and YAML exports include the session statistics.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

var (
	exportFormat string
	exportOutput string
	exportDate   string
)

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", export.FormatCSV,
		"output format ("+strings.Join(export.Formats, ", ")+")")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default tomato-<timestamp>.<format>)")
	exportCmd.Flags().StringVarP(&exportDate, "date", "d", "", "only entries started on this day (YYYY-MM-DD)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	logs, err := selectLogs(e, exportDate, exportDate == "")
	if err != nil {
		return err
	}

	var stats *store.SessionStats
	if exportDate == "" {
		sess, err := e.session()
		if err != nil {
			return err
		}
		if stats, err = e.engine.SessionStats(sess.ID); err != nil {
			return err
		}
	}

	path := exportOutput
	if path == "" {
		path = "tomato-" + time.Now().Format("20060102-150405") + export.Extension(exportFormat)
	}
	if err := export.Write(exportFormat, logs, stats, e.engine.Location(), path); err != nil {
		return err
	}
	e.log.Info("exported phase logs", "format", exportFormat, "path", path, "count", len(logs))
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entries to %s\n", len(logs), path)
	return nil
}
