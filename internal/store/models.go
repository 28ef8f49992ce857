package store

import "time"

// SourceLocal marks events created on this machine rather than imported.
const SourceLocal = "local"

type Event struct {
	ID        string
	Title     string
	StartTime time.Time
	EndTime   time.Time
	Notes     string
	Source    string
	CreatedAt time.Time
}

type Setting struct {
	Key   string
	Value string
}

// EventFilter is used to filter events in queries.
type EventFilter struct {
	From   *time.Time // inclusive
	To     *time.Time // exclusive
	Source string
	Query  string // case-insensitive substring of title
	Limit  int
}
