package schedule

import (
	"context"
	"testing"

	"github.com/spf13/afero"

	"github.com/sadopc/sleepreset/internal/config"
	"github.com/sadopc/sleepreset/internal/ics"
	"github.com/sadopc/sleepreset/internal/planner"
)

func TestNewWatcherBadSpec(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := NewWatcher(svc, "whenever", nil); err == nil {
		t.Fatal("expected error for bad cron spec")
	}
}

func TestWatcherRunOnce(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "/feeds/work.ics", dailyStandup, 0o600)
	svc, _ := newTestService(t, WithFetcher(ics.NewFetcher(fs, "")))

	w, err := NewWatcher(svc, config.DefaultRefresh, []config.Subscription{{ID: "work", URL: "/feeds/work.ics"}})
	if err != nil {
		t.Fatal(err)
	}

	var got []planner.Recommendation
	w.OnUpdate = func(r planner.Recommendation) { got = append(got, r) }
	w.RunOnce(context.Background())

	if len(got) != 1 {
		t.Fatalf("OnUpdate called %d times", len(got))
	}
	ev, ok := got[0].NextEvent()
	if !ok || ev.Title != "Standup" {
		t.Fatalf("expected Standup, got %+v", ev)
	}
}

func TestWatcherStartStop(t *testing.T) {
	svc, _ := newTestService(t)
	w, err := NewWatcher(svc, "@every 1h", nil)
	if err != nil {
		t.Fatal(err)
	}
	w.Start()
	<-w.Stop().Done()
}
