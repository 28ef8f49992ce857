package planner

import "time"

// Event is a read-only snapshot of one calendar item.
type Event struct {
	ID    string
	Title string
	Start time.Time
	End   time.Time
}

// Duration returns the length of the event.
func (e Event) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// WellFormed reports whether the event ends no earlier than it starts.
func (e Event) WellFormed() bool {
	return !e.End.Before(e.Start)
}
