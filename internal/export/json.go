package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/tomato/internal/store"
)

func ToJSON(logs []store.PhaseLog, stats *store.SessionStats, loc *time.Location, path string) error {
	data, err := json.MarshalIndent(newDocument(logs, stats, loc), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
