package export

import (
	"fmt"
	"time"

	"github.com/spf13/afero"

	"github.com/sadopc/sleepreset/internal/ics"
	"github.com/sadopc/sleepreset/internal/planner"
	"github.com/sadopc/sleepreset/internal/store"
)

func ToICS(fs afero.Fs, events []store.Event, path string) error {
	pe := make([]planner.Event, 0, len(events))
	for _, e := range events {
		pe = append(pe, planner.Event{ID: e.ID, Title: e.Title, Start: e.StartTime, End: e.EndTime})
	}

	body := ics.Encode(pe, time.Now())
	if err := afero.WriteFile(fs, path, []byte(body), 0o644); err != nil {
		return fmt.Errorf("write ics file: %w", err)
	}
	return nil
}

// Formats lists the values accepted by Write.
var Formats = []string{"csv", "json", "ics"}

// Write dispatches on format.
func Write(fs afero.Fs, format string, events []store.Event, path string) error {
	switch format {
	case "csv":
		return ToCSV(fs, events, path)
	case "json":
		return ToJSON(fs, events, path)
	case "ics":
		return ToICS(fs, events, path)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}
