package tui

import (
	"fmt"
	"time"

	"github.com/sadopc/sleepreset/internal/planner"
	"github.com/sadopc/sleepreset/internal/store"
)

// viewState represents the currently active view.
type viewState int

const (
	viewSleep viewState = iota
	viewCalendar
	viewSearch
	viewSettings
	viewProfile
)

var viewNames = []string{"Sleep", "Calendar", "Search", "Settings", "Profile"}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
}

type eventCreatedMsg struct {
	event planner.Event
}

type prefsSavedMsg struct {
	prefs store.Preferences
}

// --- Helpers ---

func errStatus(prefix string, err error) statusMsg {
	return statusMsg{text: fmt.Sprintf("%s: %v", prefix, err), isError: true}
}

func formatClock(t time.Time) string {
	return t.Format("15:04")
}

func formatDay(t time.Time) string {
	return t.Format("Mon Jan 02")
}

// formatSpan renders a duration as "7h30m" / "45m".
func formatSpan(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	if m == 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dh%02dm", h, m)
}

func clampGoal(h float64) float64 {
	if h < store.MinSleepGoal {
		return store.MinSleepGoal
	}
	if h > store.MaxSleepGoal {
		return store.MaxSleepGoal
	}
	return h
}
