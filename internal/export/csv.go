package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sadopc/tomato/internal/store"
)

var csvHeader = []string{"ID", "Session", "Phase", "Planned (min)", "Start", "End", "Elapsed", "Interrupted"}

func ToCSV(logs []store.PhaseLog, loc *time.Location, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for _, l := range logs {
		elapsed := ""
		if l.CompletedAt != nil {
			elapsed = formatDuration(elapsedSeconds(l))
		}
		row := []string{
			strconv.FormatInt(l.ID, 10),
			strconv.FormatInt(l.SessionID, 10),
			string(l.Phase),
			strconv.Itoa(l.DurationMinutes),
			formatTime(l.StartedAt, loc),
			formatOptional(l.CompletedAt, loc),
			elapsed,
			strconv.FormatBool(l.WasInterrupted),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
