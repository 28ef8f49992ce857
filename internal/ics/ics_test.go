package ics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/sadopc/sleepreset/internal/planner"
)

func calendar(lines ...string) []byte {
	all := append([]string{"BEGIN:VCALENDAR", "VERSION:2.0", "PRODID:-//test//EN"}, lines...)
	all = append(all, "END:VCALENDAR", "")
	return []byte(strings.Join(all, "\r\n"))
}

var sampleFeed = calendar(
	"BEGIN:VEVENT",
	"UID:gym@test",
	"SUMMARY:Gym",
	"DTSTART:20250311T043000Z",
	"DTEND:20250311T053000Z",
	"END:VEVENT",
	"BEGIN:VEVENT",
	"UID:holiday@test",
	"SUMMARY:Holiday",
	"DTSTART;VALUE=DATE:20250312",
	"END:VEVENT",
	"BEGIN:VEVENT",
	"SUMMARY:No uid",
	"DTSTART:20250313T090000Z",
	"END:VEVENT",
	"BEGIN:VEVENT",
	"UID:standup@test",
	"SUMMARY:Standup",
	"DTSTART:20250303T070000Z",
	"DTEND:20250303T080000Z",
	"RRULE:FREQ=DAILY;COUNT=5",
	"EXDATE:20250305T070000Z",
	"END:VEVENT",
	"BEGIN:VEVENT",
	"UID:standup@test",
	"SUMMARY:Standup (moved)",
	"RECURRENCE-ID:20250304T070000Z",
	"DTSTART:20250304T090000Z",
	"DTEND:20250304T100000Z",
	"END:VEVENT",
)

func TestParse(t *testing.T) {
	events, err := Parse(sampleFeed)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(events) != 4 {
		t.Fatalf("expected 4 events (uid-less one skipped), got %d", len(events))
	}

	gym := events[0]
	if gym.UID != "gym@test" || gym.Summary != "Gym" || gym.AllDay {
		t.Fatalf("unexpected gym event: %+v", gym)
	}
	if !gym.Start.Equal(time.Date(2025, 3, 11, 4, 30, 0, 0, time.UTC)) {
		t.Fatalf("gym start = %v", gym.Start)
	}
	if gym.End.Sub(gym.Start) != time.Hour {
		t.Fatalf("gym duration = %v", gym.End.Sub(gym.Start))
	}

	holiday := events[1]
	if !holiday.AllDay {
		t.Fatal("holiday should be all-day")
	}
	if got := holiday.Start.Format("20060102"); got != "20250312" {
		t.Fatalf("holiday date = %s", got)
	}
	if holiday.End.Sub(holiday.Start) != 24*time.Hour {
		t.Fatalf("all-day event without DTEND should last a day, got %v", holiday.End.Sub(holiday.Start))
	}

	standup := events[2]
	if standup.RawRRule == "" || len(standup.ExDates) != 1 || standup.IsOverride() {
		t.Fatalf("unexpected recurring master: %+v", standup)
	}
	if !events[3].IsOverride() {
		t.Fatal("RECURRENCE-ID event should be an override")
	}
}

func TestParseEmpty(t *testing.T) {
	if _, err := Parse([]byte("  \r\n")); !errors.Is(err, ErrEmptyBody) {
		t.Fatalf("expected ErrEmptyBody, got %v", err)
	}
}

func TestExpand(t *testing.T) {
	events, err := Parse(sampleFeed)
	if err != nil {
		t.Fatal(err)
	}

	occ, err := Expand(events, ExpandOptions{
		From:     time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		To:       time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		Location: time.UTC,
	})
	if err != nil {
		t.Fatal(err)
	}

	var standups []Occurrence
	for _, o := range occ {
		if o.UID == "standup@test" {
			standups = append(standups, o)
		}
	}
	// COUNT=5 minus one EXDATE.
	if len(standups) != 4 {
		t.Fatalf("expected 4 standups, got %d: %+v", len(standups), standups)
	}

	ids := make(map[string]bool)
	for _, o := range occ {
		if ids[o.ID] {
			t.Fatalf("duplicate occurrence id %s", o.ID)
		}
		ids[o.ID] = true
	}

	var moved *Occurrence
	for i := range standups {
		if standups[i].ID == "standup@test/20250304T070000Z" {
			moved = &standups[i]
		}
		if standups[i].Start.Day() == 5 {
			t.Fatal("excluded date should not be expanded")
		}
	}
	if moved == nil {
		t.Fatal("override instance missing")
	}
	if moved.Summary != "Standup (moved)" || moved.Start.Hour() != 9 {
		t.Fatalf("override not applied: %+v", moved)
	}
}

func TestExpandWindow(t *testing.T) {
	events, err := Parse(sampleFeed)
	if err != nil {
		t.Fatal(err)
	}
	occ, err := Expand(events, ExpandOptions{
		From: time.Date(2025, 3, 6, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatal(err)
	}
	// Standups on the 6th and 7th; gym on the 11th is outside [From, To).
	if len(occ) != 2 {
		t.Fatalf("expected 2 occurrences, got %d: %+v", len(occ), occ)
	}
}

func TestExpandBadWindow(t *testing.T) {
	now := time.Now()
	if _, err := Expand(nil, ExpandOptions{From: now, To: now.Add(-time.Hour)}); err == nil {
		t.Fatal("expected error for inverted window")
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	start := time.Date(2025, 3, 11, 6, 0, 0, 0, time.UTC)
	in := []planner.Event{
		{ID: "a", Title: "Flight", Start: start, End: start.Add(2 * time.Hour)},
		{ID: "b", Title: "Lunch", Start: start.Add(6 * time.Hour), End: start.Add(7 * time.Hour)},
	}

	body := Encode(in, start)
	if !strings.Contains(body, "PRODID:"+ProductID) {
		t.Fatal("missing PRODID")
	}

	out, err := Parse([]byte(body))
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != len(in) {
		t.Fatalf("round trip lost events: %d", len(out))
	}
	for i := range in {
		if out[i].UID != in[i].ID || out[i].Summary != in[i].Title {
			t.Fatalf("event %d mismatch: %+v", i, out[i])
		}
		if !out[i].Start.Equal(in[i].Start) || !out[i].End.Equal(in[i].End) {
			t.Fatalf("event %d times mismatch: %v-%v", i, out[i].Start, out[i].End)
		}
	}
}

func TestFetcherLocalFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "/feeds/work.ics", sampleFeed, 0o600)

	res, err := NewFetcher(fs, "").Load(context.Background(), "/feeds/work.ics")
	if err != nil {
		t.Fatal(err)
	}
	if string(res.Body) != string(sampleFeed) || res.FromCache {
		t.Fatal("unexpected local result")
	}

	if _, err := NewFetcher(fs, "").Load(context.Background(), "/feeds/missing.ics"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestFetcherRemoteCache(t *testing.T) {
	var hits atomic.Int32
	var fail atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if fail.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if r.Header.Get("If-None-Match") == `"v1"` {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		w.Write(sampleFeed)
	}))
	defer srv.Close()

	f := NewFetcher(afero.NewMemMapFs(), "/cache")
	ctx := context.Background()

	first, err := f.Load(ctx, srv.URL+"/cal.ics?token=secret")
	if err != nil {
		t.Fatal(err)
	}
	if first.FromCache || len(first.Body) == 0 {
		t.Fatal("first fetch should hit the network")
	}

	second, err := f.Load(ctx, srv.URL+"/cal.ics?token=secret")
	if err != nil {
		t.Fatal(err)
	}
	if !second.FromCache || string(second.Body) != string(sampleFeed) {
		t.Fatal("304 should be served from cache")
	}

	fail.Store(true)
	third, err := f.Load(ctx, srv.URL+"/cal.ics?token=secret")
	if err != nil {
		t.Fatalf("server error with cache should fall back: %v", err)
	}
	if !third.FromCache {
		t.Fatal("expected cached body on server error")
	}
	if hits.Load() != 3 {
		t.Fatalf("expected 3 requests, got %d", hits.Load())
	}
}

func TestFetcherRemoteTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(sampleFeed)
	}))
	defer srv.Close()

	fs := afero.NewMemMapFs()
	f := NewFetcher(fs, "/cache")
	f.maxBody = int64(len(sampleFeed)) - 1

	if _, err := f.Load(context.Background(), srv.URL); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
	if ok, _ := afero.DirExists(fs, f.cachePath(srv.URL)); ok {
		t.Fatal("oversized body must not be cached")
	}

	// Exactly at the limit is fine.
	f.maxBody = int64(len(sampleFeed))
	res, err := f.Load(context.Background(), srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Body) != len(sampleFeed) {
		t.Fatalf("body length = %d", len(res.Body))
	}
}

func TestFetcherRemoteErrorNoCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	if _, err := NewFetcher(afero.NewMemMapFs(), "").Load(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error for 404 without cache")
	}
}

func TestRedactURL(t *testing.T) {
	got := redactURL("https://calendar.example.com/private/abc.ics?token=xyz")
	if strings.Contains(got, "token") || strings.Contains(got, "private") {
		t.Fatalf("url not redacted: %s", got)
	}
	if !strings.HasPrefix(got, "https://calendar.example.com") {
		t.Fatalf("host dropped: %s", got)
	}
}

func TestIsRemote(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"https://x/y.ics", true},
		{"HTTP://x/y.ics", true},
		{"webcal://x/y.ics", true},
		{"/home/me/cal.ics", false},
		{"cal.ics", false},
	}
	for _, tt := range tests {
		if got := IsRemote(tt.in); got != tt.want {
			t.Errorf("IsRemote(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
