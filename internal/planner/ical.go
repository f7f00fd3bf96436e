package planner

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
)

const localTimestamp = "20060102T150405"

// lineBreaks folds bare CR and CRLF into LF so TEXT escaping yields \n.
var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// Encode serializes events into an RFC 5545 calendar document with CRLF line
// endings. Properties are written in the order they are set.
func Encode(events []Event) string {
	cal := &ics.Calendar{}
	cal.SetVersion("2.0")
	cal.SetProductId(ProductID)
	cal.SetCalscale("GREGORIAN")
	cal.SetMethod(ics.MethodPublish)
	cal.SetXWRCalName(CalendarName)

	for _, ev := range events {
		vev := cal.AddEvent(ev.UID)
		setStart(vev, ev.Start)
		vev.AddProperty(ics.ComponentPropertyDuration, formatDuration(ev.Duration))
		vev.SetSummary(text(ev.Summary))
		vev.SetDescription(text(ev.Description))
		if ev.Alarm != "" {
			alarm := vev.AddAlarm()
			alarm.SetAction(ics.ActionDisplay)
			alarm.SetTrigger("PT0S")
			alarm.SetProperty(ics.ComponentPropertyDescription, text(ev.Alarm))
		}
	}
	return cal.Serialize(ics.WithNewLineWindows)
}

// setStart writes DTSTART in UTC form or as local time with a TZID parameter.
func setStart(vev *ics.VEvent, t time.Time) {
	if t.Location() == time.UTC {
		vev.SetStartAt(t)
		return
	}
	vev.SetProperty(ics.ComponentPropertyDtStart, t.Format(localTimestamp), ics.WithTZID(t.Location().String()))
}

// text escapes a TEXT value; the library only escapes values tagged VALUE=TEXT.
func text(s string) string {
	return ics.ToText(lineBreaks.Replace(s))
}

// formatDuration renders a non-negative duration as an RFC 5545 dur-time.
func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "PT0S"
	}
	var b strings.Builder
	b.WriteString("PT")
	if h := d / time.Hour; h > 0 {
		fmt.Fprintf(&b, "%dH", h)
		d -= h * time.Hour
	}
	if m := d / time.Minute; m > 0 {
		fmt.Fprintf(&b, "%dM", m)
		d -= m * time.Minute
	}
	if s := d / time.Second; s > 0 {
		fmt.Fprintf(&b, "%dS", s)
	}
	return b.String()
}
