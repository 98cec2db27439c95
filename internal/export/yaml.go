package export

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sadopc/tomato/internal/store"
)

func ToYAML(logs []store.PhaseLog, stats *store.SessionStats, loc *time.Location, path string) error {
	data, err := yaml.Marshal(newDocument(logs, stats, loc))
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write yaml file: %w", err)
	}
	return nil
}
