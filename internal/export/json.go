package export

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/afero"

	"github.com/sadopc/sleepreset/internal/store"
)

type jsonExport struct {
	ExportedAt string      `json:"exported_at"`
	Count      int         `json:"count"`
	Events     []jsonEvent `json:"events"`
}

type jsonEvent struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	DurationSec int64  `json:"duration_seconds"`
	Duration    string `json:"duration"`
	Source      string `json:"source"`
	Notes       string `json:"notes,omitempty"`
}

func ToJSON(fs afero.Fs, events []store.Event, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(events),
	}

	for _, e := range events {
		secs := durationSeconds(e)
		export.Events = append(export.Events, jsonEvent{
			ID:          e.ID,
			Title:       e.Title,
			StartTime:   e.StartTime.Local().Format(time.RFC3339),
			EndTime:     e.EndTime.Local().Format(time.RFC3339),
			DurationSec: secs,
			Duration:    formatDuration(secs),
			Source:      e.Source,
			Notes:       e.Notes,
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
