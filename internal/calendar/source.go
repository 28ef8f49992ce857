// Package calendar is the event source the planner reads from.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sadopc/sleepreset/internal/planner"
	"github.com/sadopc/sleepreset/internal/store"
)

// DefaultEventDuration is used when an event is created without a length.
const DefaultEventDuration = time.Hour

var ErrEmptyTitle = errors.New("event title is empty")

// Source supplies event snapshots and accepts new events.
type Source interface {
	FetchEvents(ctx context.Context, start, end time.Time) ([]planner.Event, error)
	CreateEvent(ctx context.Context, title string, start time.Time, duration time.Duration) (planner.Event, error)
}

// Searcher is implemented by sources that can match events by text.
type Searcher interface {
	SearchEvents(ctx context.Context, query string, start, end time.Time) ([]planner.Event, error)
}

// StoreSource is a Source backed by the local SQLite store.
type StoreSource struct {
	store *store.Store
}

func NewStoreSource(s *store.Store) *StoreSource {
	return &StoreSource{store: s}
}

// FetchEvents returns events starting in [start, end), ordered by start.
func (s *StoreSource) FetchEvents(ctx context.Context, start, end time.Time) ([]planner.Event, error) {
	return s.list(ctx, store.EventFilter{From: &start, To: &end})
}

func (s *StoreSource) SearchEvents(ctx context.Context, query string, start, end time.Time) ([]planner.Event, error) {
	return s.list(ctx, store.EventFilter{From: &start, To: &end, Query: query})
}

func (s *StoreSource) list(ctx context.Context, f store.EventFilter) ([]planner.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := s.store.ListEvents(f)
	if err != nil {
		return nil, fmt.Errorf("fetch events: %w", err)
	}
	events := make([]planner.Event, 0, len(rows))
	for _, r := range rows {
		events = append(events, toPlanner(r))
	}
	return events, nil
}

// CreateEvent saves a new local event. A non-positive duration falls back
// to DefaultEventDuration.
func (s *StoreSource) CreateEvent(ctx context.Context, title string, start time.Time, duration time.Duration) (planner.Event, error) {
	if err := ctx.Err(); err != nil {
		return planner.Event{}, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return planner.Event{}, ErrEmptyTitle
	}
	if duration <= 0 {
		duration = DefaultEventDuration
	}

	row, err := s.store.CreateEvent(store.Event{
		Title:     title,
		StartTime: start,
		EndTime:   start.Add(duration),
		Source:    store.SourceLocal,
	})
	if err != nil {
		return planner.Event{}, fmt.Errorf("create event: %w", err)
	}
	return toPlanner(*row), nil
}

func toPlanner(e store.Event) planner.Event {
	return planner.Event{
		ID:    e.ID,
		Title: e.Title,
		Start: e.StartTime,
		End:   e.EndTime,
	}
}
