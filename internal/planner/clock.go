package planner

import (
	"strconv"
	"strings"
	"time"

	// Embedded tz database so zone lookups behave the same on hosts without one.
	_ "time/tzdata"
)

// Fallbacks used when household or rule data cannot be parsed.
const (
	DefaultTimezone   = "America/Los_Angeles"
	DefaultDinnerTime = "18:00"
	DefaultRemindTime = "10:00"
)

// Clock is a local time of day.
type Clock struct {
	Hour   int
	Minute int
}

// String formats c as HH:MM.
func (c Clock) String() string {
	return twoDigits(c.Hour) + ":" + twoDigits(c.Minute)
}

// On returns the instant at c on the calendar day of date, in loc.
func (c Clock) On(date time.Time, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), c.Hour, c.Minute, 0, 0, loc)
}

// ParseClock parses an HH:MM string with 00 <= HH <= 23 and 00 <= MM <= 59.
func ParseClock(s string) (Clock, bool) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || hh == "" || mm == "" || len(hh) > 2 || len(mm) > 2 {
		return Clock{}, false
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return Clock{}, false
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return Clock{}, false
	}
	return Clock{Hour: h, Minute: m}, true
}

// ClockOr parses s and returns fallback when s is malformed.
func ClockOr(s, fallback string) Clock {
	if c, ok := ParseClock(s); ok {
		return c
	}
	c, _ := ParseClock(fallback)
	return c
}

// ResolveLocation loads the IANA zone name, falling back to DefaultTimezone.
// Empty names and "Local" count as invalid: the result must not depend on the host.
func ResolveLocation(name string) *time.Location {
	name = strings.TrimSpace(name)
	if name != "" && name != "Local" {
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func twoDigits(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
