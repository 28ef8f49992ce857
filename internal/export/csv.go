package export

import (
	"encoding/csv"
	"fmt"
	"time"

	"github.com/spf13/afero"

	"github.com/sadopc/sleepreset/internal/store"
)

var csvHeader = []string{"ID", "Title", "Start", "End", "Duration (s)", "Duration", "Source", "Notes"}

func ToCSV(fs afero.Fs, events []store.Event, path string) error {
	f, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for _, e := range events {
		secs := durationSeconds(e)
		row := []string{
			e.ID,
			e.Title,
			e.StartTime.Local().Format(time.RFC3339),
			e.EndTime.Local().Format(time.RFC3339),
			fmt.Sprintf("%d", secs),
			formatDuration(secs),
			e.Source,
			e.Notes,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func durationSeconds(e store.Event) int64 {
	d := e.EndTime.Sub(e.StartTime)
	if d < 0 {
		return 0
	}
	return int64(d / time.Second)
}

func formatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
