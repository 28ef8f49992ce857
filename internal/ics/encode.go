package ics

import (
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/sadopc/sleepreset/internal/planner"
)

// ProductID is written to PRODID on exported calendars.
const ProductID = "-//sleepreset//sleepreset//EN"

// Encode renders events as a published VCALENDAR. stamp is used for DTSTAMP.
func Encode(events []planner.Event, stamp time.Time) string {
	cal := ical.NewCalendar()
	cal.SetProductId(ProductID)
	cal.SetMethod(ical.MethodPublish)

	for _, e := range events {
		ev := cal.AddEvent(e.ID)
		ev.SetDtStampTime(stamp.UTC())
		ev.SetSummary(e.Title)
		ev.SetStartAt(e.Start.UTC())
		ev.SetEndAt(e.End.UTC())
	}
	return cal.Serialize()
}
