package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/sadopc/sleepreset/internal/config"
	"github.com/sadopc/sleepreset/internal/planner"
)

// Watcher re-imports subscriptions on a cron schedule and logs the
// recommendation after each run.
type Watcher struct {
	svc  *Service
	subs []config.Subscription
	cron *cron.Cron

	// OnUpdate, when set, receives the recommendation after every run.
	OnUpdate func(planner.Recommendation)
}

// NewWatcher schedules the refresh job with a standard five-field spec.
func NewWatcher(svc *Service, spec string, subs []config.Subscription) (*Watcher, error) {
	w := &Watcher{
		svc:  svc,
		subs: subs,
		cron: cron.New(cron.WithLocation(svc.Location())),
	}
	if _, err := w.cron.AddFunc(spec, func() { w.RunOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("schedule %q: %w", spec, err)
	}
	return w, nil
}

// RunOnce refreshes every subscription and recomputes the recommendation.
func (w *Watcher) RunOnce(ctx context.Context) {
	start := time.Now()
	if err := w.svc.Refresh(ctx, w.subs); err != nil {
		slog.Warn("refresh finished with errors", "err", err)
	}

	rec, err := w.svc.Recommend(ctx)
	if err != nil {
		slog.Error("recommend failed", "err", err)
		return
	}
	attrs := []any{
		"bedtime", rec.Bedtime.Format(time.RFC3339),
		"wake", rec.WakeTime.Format(time.RFC3339),
		"source", rec.Source.String(),
		"took_ms", time.Since(start).Milliseconds(),
	}
	if ev, ok := rec.NextEvent(); ok {
		attrs = append(attrs, "next_event", ev.Title)
	}
	slog.Info("recommendation updated", attrs...)

	if w.OnUpdate != nil {
		w.OnUpdate(rec)
	}
}

// Start runs the schedule in the background.
func (w *Watcher) Start() {
	w.cron.Start()
}

// Stop halts the schedule. The returned context is done once a running
// job has finished.
func (w *Watcher) Stop() context.Context {
	return w.cron.Stop()
}

// Next is the next scheduled run, zero before Start.
func (w *Watcher) Next() time.Time {
	entries := w.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}
