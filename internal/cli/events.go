package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"longdoc-trainer/internal/jobs"
)

// writeEventLog writes a run's sequenced events to path as JSON lines,
// one event per line, for scripting and post-mortem inspection.
func writeEventLog(path string, events []jobs.Event) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open event log: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, event := range events {
		if err := enc.Encode(event); err != nil {
			return fmt.Errorf("write event log: %w", err)
		}
	}
	return nil
}
