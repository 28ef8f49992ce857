package calendar

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sadopc/sleepreset/internal/store"
)

func newTestSource(t *testing.T) (*StoreSource, *store.Store) {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return NewStoreSource(s), s
}

var base = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

func TestCreateAndFetch(t *testing.T) {
	src, _ := newTestSource(t)
	ctx := context.Background()

	created, err := src.CreateEvent(ctx, "  Standup ", base, 15*time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if created.Title != "Standup" {
		t.Fatalf("title should be trimmed, got %q", created.Title)
	}
	if created.Duration() != 15*time.Minute {
		t.Fatalf("duration = %v", created.Duration())
	}

	events, err := src.FetchEvents(ctx, base.Add(-time.Hour), base.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].ID != created.ID {
		t.Fatalf("fetch did not return created event: %+v", events)
	}
}

func TestCreateEventDefaultDuration(t *testing.T) {
	src, _ := newTestSource(t)
	e, err := src.CreateEvent(context.Background(), "Call", base, 0)
	if err != nil {
		t.Fatal(err)
	}
	if e.Duration() != DefaultEventDuration {
		t.Fatalf("duration = %v, want %v", e.Duration(), DefaultEventDuration)
	}
}

func TestCreateEventEmptyTitle(t *testing.T) {
	src, s := newTestSource(t)
	_, err := src.CreateEvent(context.Background(), "   ", base, time.Hour)
	if !errors.Is(err, ErrEmptyTitle) {
		t.Fatalf("expected ErrEmptyTitle, got %v", err)
	}
	if n, _ := s.CountEvents(); n != 0 {
		t.Fatal("nothing should be stored")
	}
}

func TestFetchEventsWindow(t *testing.T) {
	src, _ := newTestSource(t)
	ctx := context.Background()
	src.CreateEvent(ctx, "yesterday", base.Add(-24*time.Hour), time.Hour)
	src.CreateEvent(ctx, "today", base, time.Hour)
	src.CreateEvent(ctx, "next month", base.Add(31*24*time.Hour), time.Hour)

	events, err := src.FetchEvents(ctx, base, base.Add(30*24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].Title != "today" {
		t.Fatalf("unexpected window contents: %+v", events)
	}
}

func TestSearchEvents(t *testing.T) {
	src, _ := newTestSource(t)
	ctx := context.Background()
	src.CreateEvent(ctx, "Yoga class", base, time.Hour)
	src.CreateEvent(ctx, "Dentist", base.Add(time.Hour), time.Hour)

	events, err := src.SearchEvents(ctx, "yoga", base, base.Add(24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].Title != "Yoga class" {
		t.Fatalf("unexpected search result: %+v", events)
	}
}

func TestSearchEventsUnicodeTitle(t *testing.T) {
	src, _ := newTestSource(t)
	ctx := context.Background()
	src.CreateEvent(ctx, "École meeting", base, time.Hour)
	src.CreateEvent(ctx, "Standup", base.Add(time.Hour), time.Hour)

	for _, q := range []string{"école", "ÉCOLE MEET"} {
		events, err := src.SearchEvents(ctx, q, base, base.Add(24*time.Hour))
		if err != nil {
			t.Fatal(err)
		}
		if len(events) != 1 || events[0].Title != "École meeting" {
			t.Fatalf("search %q: %+v", q, events)
		}
	}
	events, _ := src.SearchEvents(ctx, "%", base, base.Add(24*time.Hour))
	if len(events) != 0 {
		t.Fatalf("%% should be literal, got %+v", events)
	}
}

func TestCanceledContext(t *testing.T) {
	src, _ := newTestSource(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := src.FetchEvents(ctx, base, base.Add(time.Hour)); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, err := src.CreateEvent(ctx, "x", base, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
