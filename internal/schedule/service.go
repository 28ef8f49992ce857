// Package schedule ties the event source, the stored preferences and the
// planner together. The TUI and the CLI only talk to a Service.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/sadopc/sleepreset/internal/calendar"
	"github.com/sadopc/sleepreset/internal/config"
	"github.com/sadopc/sleepreset/internal/ics"
	"github.com/sadopc/sleepreset/internal/planner"
	"github.com/sadopc/sleepreset/internal/store"
)

// DefaultWindow is how far ahead a snapshot reaches.
const DefaultWindow = 30 * 24 * time.Hour

const untitled = "Untitled"

// Service is safe for concurrent use.
type Service struct {
	store   *store.Store
	source  calendar.Source
	fetcher *ics.Fetcher

	loc    *time.Location
	window time.Duration
	now    func() time.Time

	mu       sync.RWMutex
	snapshot []planner.Event
}

type Option func(*Service)

// WithSource replaces the store-backed event source.
func WithSource(src calendar.Source) Option {
	return func(s *Service) { s.source = src }
}

// WithClock injects the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithWindow(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.window = d
		}
	}
}

// WithFetcher enables Refresh for subscriptions.
func WithFetcher(f *ics.Fetcher) Option {
	return func(s *Service) { s.fetcher = f }
}

func New(st *store.Store, opts ...Option) *Service {
	s := &Service{
		store:  st,
		source: calendar.NewStoreSource(st),
		loc:    time.Local,
		window: DefaultWindow,
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) Now() time.Time { return s.now().In(s.loc) }

func (s *Service) Location() *time.Location { return s.loc }

func (s *Service) Window() time.Duration { return s.window }

// Snapshot refetches the events in [now, now+window).
func (s *Service) Snapshot(ctx context.Context) ([]planner.Event, error) {
	now := s.Now()
	events, err := s.source.FetchEvents(ctx, now, now.Add(s.window))
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.snapshot = events
	s.mu.Unlock()
	slog.Debug("snapshot refreshed", "event_count", len(events))
	return events, nil
}

// Events returns the last snapshot without refetching.
func (s *Service) Events() []planner.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]planner.Event, len(s.snapshot))
	copy(out, s.snapshot)
	return out
}

func (s *Service) Preferences() (store.Preferences, error) {
	return s.store.LoadPreferences()
}

func (s *Service) SavePreferences(p store.Preferences) error {
	return s.store.SavePreferences(p)
}

// PlanningConfig is the planner configuration for the saved preferences.
func (s *Service) PlanningConfig() (planner.Config, error) {
	p, err := s.store.LoadPreferences()
	if err != nil {
		return planner.Config{}, err
	}
	return p.PlanningConfig(s.loc), nil
}

// Recommend refetches the snapshot and computes tonight's bedtime.
func (s *Service) Recommend(ctx context.Context) (planner.Recommendation, error) {
	cfg, err := s.PlanningConfig()
	if err != nil {
		return planner.Recommendation{}, err
	}
	events, err := s.Snapshot(ctx)
	if err != nil {
		return planner.Recommendation{}, err
	}
	return planner.Compute(events, s.Now(), cfg)
}

// RecommendWith computes with cfg over the current snapshot.
func (s *Service) RecommendWith(cfg planner.Config) (planner.Recommendation, error) {
	return planner.Compute(s.Events(), s.Now(), cfg)
}

// Outlook computes one recommendation per evening starting today. Events
// are fetched from local midnight so tonight's evening sees the whole day.
func (s *Service) Outlook(ctx context.Context, nights int) ([]planner.Night, error) {
	cfg, err := s.PlanningConfig()
	if err != nil {
		return nil, err
	}
	return s.OutlookWith(ctx, nights, cfg)
}

// OutlookWith is Outlook with an explicit planning config.
func (s *Service) OutlookWith(ctx context.Context, nights int, cfg planner.Config) ([]planner.Night, error) {
	now := s.Now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	to := now.Add(s.window)
	if horizon := from.AddDate(0, 0, nights+1).Add(s.window); horizon.After(to) {
		to = horizon
	}
	events, err := s.source.FetchEvents(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return planner.Outlook(events, now, nights, cfg)
}

// CreateEvent saves a new event and refetches the snapshot.
func (s *Service) CreateEvent(ctx context.Context, title string, start time.Time, d time.Duration) (planner.Event, error) {
	ev, err := s.source.CreateEvent(ctx, title, start, d)
	if err != nil {
		return planner.Event{}, err
	}
	slog.Info("event created", "event_id", ev.ID, "start", ev.Start.Format(time.RFC3339))
	if _, err := s.Snapshot(ctx); err != nil {
		return ev, fmt.Errorf("refetch after create: %w", err)
	}
	return ev, nil
}

// Search matches titles case-insensitively inside the window.
func (s *Service) Search(ctx context.Context, query string) ([]planner.Event, error) {
	now := s.Now()
	end := now.Add(s.window)
	if sr, ok := s.source.(calendar.Searcher); ok {
		return sr.SearchEvents(ctx, query, now, end)
	}

	events, err := s.source.FetchEvents(ctx, now, end)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		return events, nil
	}
	out := events[:0]
	for _, e := range events {
		if store.TitleMatches(e.Title, query) {
			out = append(out, e)
		}
	}
	return out, nil
}

// ImportICS parses body, expands recurrences into the window and replaces
// every stored event of sourceID with the result. It returns the number of
// events stored.
func (s *Service) ImportICS(ctx context.Context, sourceID string, body []byte) (int, error) {
	sourceID = strings.TrimSpace(sourceID)
	if sourceID == "" {
		return 0, errors.New("import: empty source id")
	}
	if sourceID == store.SourceLocal {
		return 0, fmt.Errorf("import: source id %q is reserved", sourceID)
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	parsed, err := ics.Parse(body)
	if err != nil {
		return 0, fmt.Errorf("import %s: %w", sourceID, err)
	}

	now := s.Now()
	occ, err := ics.Expand(parsed, ics.ExpandOptions{
		From:     now,
		To:       now.Add(s.window),
		Location: s.loc,
	})
	if err != nil {
		return 0, fmt.Errorf("import %s: %w", sourceID, err)
	}

	rows := make([]store.Event, 0, len(occ))
	for _, o := range occ {
		title := strings.TrimSpace(o.Summary)
		if title == "" {
			title = untitled
		}
		rows = append(rows, store.Event{
			ID:        sourceID + ":" + o.ID,
			Title:     title,
			StartTime: o.Start,
			EndTime:   o.End,
			Notes:     o.Description,
		})
	}

	if err := s.store.ReplaceSource(sourceID, rows); err != nil {
		return 0, fmt.Errorf("import %s: %w", sourceID, err)
	}
	slog.Info("ics imported", "source", sourceID, "vevents", len(parsed), "event_count", len(rows))

	if _, err := s.Snapshot(ctx); err != nil {
		return len(rows), fmt.Errorf("refetch after import: %w", err)
	}
	return len(rows), nil
}

// ImportLocation loads an ICS file or URL and imports it under sourceID.
func (s *Service) ImportLocation(ctx context.Context, sourceID, location string) (int, error) {
	if s.fetcher == nil {
		return 0, errors.New("import: no fetcher configured")
	}
	res, err := s.fetcher.Load(ctx, location)
	if err != nil {
		return 0, err
	}
	return s.ImportICS(ctx, sourceID, res.Body)
}

// Refresh re-imports every subscription. A failing feed does not stop the
// others; all failures are returned joined.
func (s *Service) Refresh(ctx context.Context, subs []config.Subscription) error {
	var errs []error
	for _, sub := range subs {
		if _, err := s.ImportLocation(ctx, sub.ID, sub.URL); err != nil {
			slog.Warn("subscription refresh failed", "source", sub.ID, "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", sub.ID, err))
		}
	}
	return errors.Join(errs...)
}

// StoredEvents returns every stored event, past ones included, for export.
func (s *Service) StoredEvents() ([]store.Event, error) {
	return s.store.ListEvents(store.EventFilter{})
}
