// Package export writes phase logs to files for use outside tomato.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/sadopc/tomato/internal/store"
)

// Supported export formats
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Formats lists the formats accepted by Write, in picker order.
var Formats = []string{FormatCSV, FormatJSON, FormatYAML}

// Write exports logs in the given format. stats is optional and ignored by CSV.
// Timestamps are written in loc, or UTC when loc is nil.
func Write(format string, logs []store.PhaseLog, stats *store.SessionStats, loc *time.Location, path string) error {
	switch strings.ToLower(format) {
	case FormatCSV:
		return ToCSV(logs, loc, path)
	case FormatJSON:
		return ToJSON(logs, stats, loc, path)
	case FormatYAML, "yml":
		return ToYAML(logs, stats, loc, path)
	default:
		return fmt.Errorf("unknown export format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
}

// Extension returns the file extension for format, including the dot.
func Extension(format string) string {
	if strings.ToLower(format) == "yml" {
		return ".yaml"
	}
	return "." + strings.ToLower(format)
}

type document struct {
	ExportedAt string     `json:"exported_at" yaml:"exported_at"`
	Count      int        `json:"count" yaml:"count"`
	Stats      *statsDoc  `json:"stats,omitempty" yaml:"stats,omitempty"`
	Entries    []entryDoc `json:"entries" yaml:"entries"`
}

type statsDoc struct {
	SessionID               int64   `json:"session_id" yaml:"session_id"`
	TotalCompletedPomodoros int     `json:"total_completed_pomodoros" yaml:"total_completed_pomodoros"`
	TotalWorkMinutes        int     `json:"total_work_minutes" yaml:"total_work_minutes"`
	TotalBreakMinutes       int     `json:"total_break_minutes" yaml:"total_break_minutes"`
	TotalLogs               int     `json:"total_logs" yaml:"total_logs"`
	InterruptedLogs         int     `json:"interrupted_logs" yaml:"interrupted_logs"`
	CompletionRate          float64 `json:"completion_rate" yaml:"completion_rate"`
	LastActivity            string  `json:"last_activity,omitempty" yaml:"last_activity,omitempty"`
}

type entryDoc struct {
	ID              int64  `json:"id" yaml:"id"`
	SessionID       int64  `json:"session_id" yaml:"session_id"`
	Phase           string `json:"phase_type" yaml:"phase_type"`
	DurationMinutes int    `json:"duration_minutes" yaml:"duration_minutes"`
	StartedAt       string `json:"started_at" yaml:"started_at"`
	CompletedAt     string `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	ElapsedSec      int64  `json:"elapsed_seconds" yaml:"elapsed_seconds"`
	Elapsed         string `json:"elapsed" yaml:"elapsed"`
	WasInterrupted  bool   `json:"was_interrupted" yaml:"was_interrupted"`
}

func newDocument(logs []store.PhaseLog, stats *store.SessionStats, loc *time.Location) document {
	doc := document{
		ExportedAt: formatTime(time.Now(), loc),
		Count:      len(logs),
	}
	if stats != nil {
		doc.Stats = &statsDoc{
			SessionID:               stats.SessionID,
			TotalCompletedPomodoros: stats.TotalCompletedPomodoros,
			TotalWorkMinutes:        stats.TotalWorkMinutes,
			TotalBreakMinutes:       stats.TotalBreakMinutes,
			TotalLogs:               stats.TotalLogs,
			InterruptedLogs:         stats.InterruptedLogs,
			CompletionRate:          stats.CompletionRate,
		}
		if stats.LastActivity != nil {
			doc.Stats.LastActivity = formatTime(*stats.LastActivity, loc)
		}
	}
	for _, l := range logs {
		elapsed := elapsedSeconds(l)
		doc.Entries = append(doc.Entries, entryDoc{
			ID:              l.ID,
			SessionID:       l.SessionID,
			Phase:           string(l.Phase),
			DurationMinutes: l.DurationMinutes,
			StartedAt:       formatTime(l.StartedAt, loc),
			CompletedAt:     formatOptional(l.CompletedAt, loc),
			ElapsedSec:      elapsed,
			Elapsed:         formatDuration(elapsed),
			WasInterrupted:  l.WasInterrupted,
		})
	}
	return doc
}

// elapsedSeconds is the wall time between start and completion; 0 while open.
func elapsedSeconds(l store.PhaseLog) int64 {
	if l.CompletedAt == nil {
		return 0
	}
	return int64(l.CompletedAt.Sub(l.StartedAt) / time.Second)
}

func formatTime(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(time.RFC3339)
}

func formatOptional(t *time.Time, loc *time.Location) string {
	if t == nil {
		return ""
	}
	return formatTime(*t, loc)
}

func formatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
