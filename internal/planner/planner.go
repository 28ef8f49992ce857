// Package planner derives a wake time and a bedtime from a snapshot of
// calendar events. Everything here is a pure function of its inputs.
package planner

import "time"

// WakeSource tells where a recommended wake time came from.
type WakeSource int

const (
	WakeDefault WakeSource = iota
	WakeFromEvent
)

func (s WakeSource) String() string {
	if s == WakeFromEvent {
		return "event"
	}
	return "default"
}

// Recommendation is the result of Compute.
type Recommendation struct {
	next    Event
	hasNext bool

	WakeTime time.Time
	Bedtime  time.Time
	Source   WakeSource
}

// NextEvent returns the event the wake time was anchored to, if any.
func (r Recommendation) NextEvent() (Event, bool) {
	return r.next, r.hasNext
}

// SleepDuration is the time between bedtime and wake time.
func (r Recommendation) SleepDuration() time.Duration {
	return r.WakeTime.Sub(r.Bedtime)
}

// NextEvent picks the earliest event starting strictly after now whose
// local start hour lies in the workday range. Malformed events
// (End before Start) are skipped. Ties go to the first in input order.
func NextEvent(events []Event, now time.Time, cfg Config) (Event, bool) {
	loc := cfg.location()

	var best Event
	found := false
	for _, ev := range events {
		if !ev.WellFormed() || !ev.Start.After(now) {
			continue
		}
		if !cfg.inWorkday(ev.Start.In(loc).Hour()) {
			continue
		}
		if !found || ev.Start.Before(best.Start) {
			best = ev
			found = true
		}
	}
	return best, found
}

// WakeTime returns the wake instant for an optional anchor event. With an
// event it is the start minus the wake buffer, unclamped; without one it
// is the default wake time on the civil day after now.
func WakeTime(next Event, ok bool, now time.Time, cfg Config) time.Time {
	if ok {
		return next.Start.Add(-minutes(cfg.WakeBufferMinutes))
	}
	return DefaultWake(now, cfg)
}

// DefaultWake returns DefaultWakeHour:DefaultWakeMinute on the day after
// now, in the config location.
func DefaultWake(now time.Time, cfg Config) time.Time {
	local := now.In(cfg.location())
	return time.Date(local.Year(), local.Month(), local.Day()+1,
		cfg.DefaultWakeHour, cfg.DefaultWakeMinute, 0, 0, local.Location())
}

// Bedtime subtracts the sleep goal from the wake time.
func Bedtime(wake time.Time, sleepGoalHours float64) time.Time {
	return wake.Add(-hours(sleepGoalHours))
}

// Compute runs selection, wake derivation and bedtime derivation.
func Compute(events []Event, now time.Time, cfg Config) (Recommendation, error) {
	if err := cfg.Validate(); err != nil {
		return Recommendation{}, err
	}

	next, ok := NextEvent(events, now, cfg)
	wake := WakeTime(next, ok, now, cfg)

	rec := Recommendation{
		next:     next,
		hasNext:  ok,
		WakeTime: wake,
		Bedtime:  Bedtime(wake, cfg.SleepGoalHours),
		Source:   WakeDefault,
	}
	if ok {
		rec.Source = WakeFromEvent
	}
	return rec, nil
}

func minutes(m float64) time.Duration {
	return time.Duration(m * float64(time.Minute))
}

func hours(h float64) time.Duration {
	return time.Duration(h * float64(time.Hour))
}
