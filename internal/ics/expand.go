package ics

import (
	"errors"
	"log/slog"
	"time"

	"github.com/teambition/rrule-go"
)

const defaultMaxOccurrences = 1000

// Occurrence is one concrete instance of a VEVENT.
type Occurrence struct {
	// ID is unique per instance: the UID for single events, UID plus the
	// instance start for recurring ones.
	ID          string
	UID         string
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	AllDay      bool
}

// ExpandOptions bounds recurrence expansion.
type ExpandOptions struct {
	// Occurrences starting in [From, To) are kept.
	From time.Time
	To   time.Time

	// Location the results are converted to. Nil means time.Local.
	Location *time.Location

	// MaxPerEvent caps a single RRULE. Zero means defaultMaxOccurrences.
	MaxPerEvent int
}

// Expand turns parsed VEVENTs into occurrences inside the window,
// applying RRULE, EXDATE and RECURRENCE-ID overrides.
func Expand(events []VEvent, opts ExpandOptions) ([]Occurrence, error) {
	if opts.To.Before(opts.From) {
		return nil, errors.New("expand: window end is before start")
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.MaxPerEvent <= 0 {
		opts.MaxPerEvent = defaultMaxOccurrences
	}

	overrides := make(map[string][]VEvent)
	for _, ev := range events {
		if ev.IsOverride() {
			overrides[ev.UID] = append(overrides[ev.UID], ev)
		}
	}

	var out []Occurrence
	for _, ev := range events {
		if ev.IsOverride() {
			continue
		}
		if ev.RawRRule == "" {
			out = appendInWindow(out, ev, ev.Start, ev.End, overrides[ev.UID], false, opts)
			continue
		}
		out = expandRecurring(out, ev, overrides[ev.UID], opts)
	}
	return out, nil
}

func expandRecurring(out []Occurrence, ev VEvent, overrides []VEvent, opts ExpandOptions) []Occurrence {
	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		slog.Warn("ics: bad RRULE", "uid", ev.UID, "rrule", ev.RawRRule, "err", err)
		return out
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	// An instance that started before From can still be moved into the
	// window by an override, so search from one event length earlier.
	dur := ev.End.Sub(ev.Start)
	from := opts.From.Add(-dur).In(ev.Start.Location())
	to := opts.To.In(ev.Start.Location())

	starts := set.Between(from, to, true)
	if len(starts) > opts.MaxPerEvent {
		slog.Warn("ics: truncated recurrence", "uid", ev.UID, "cap", opts.MaxPerEvent)
		starts = starts[:opts.MaxPerEvent]
	}

	for _, s := range starts {
		out = appendInWindow(out, ev, s, s.Add(dur), overrides, true, opts)
	}
	return out
}

func appendInWindow(out []Occurrence, ev VEvent, start, end time.Time, overrides []VEvent, recurring bool, opts ExpandOptions) []Occurrence {
	id := ev.UID
	if recurring {
		id = ev.UID + "/" + start.UTC().Format("20060102T150405Z")
	}

	if o, ok := findOverride(overrides, start); ok {
		ev = o
		start, end = o.Start, o.End
	}

	if start.Before(opts.From) || !start.Before(opts.To) {
		return out
	}

	return append(out, Occurrence{
		ID:          id,
		UID:         ev.UID,
		Summary:     ev.Summary,
		Description: ev.Description,
		Start:       start.In(opts.Location),
		End:         end.In(opts.Location),
		AllDay:      ev.AllDay,
	})
}

func findOverride(overrides []VEvent, start time.Time) (VEvent, bool) {
	for _, o := range overrides {
		if o.Recurrence != nil && o.Recurrence.Equal(start) {
			return o, true
		}
	}
	return VEvent{}, false
}
