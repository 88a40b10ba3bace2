package stats

import (
	"fmt"
	"time"
)

const (
	DefaultUTCOffsetHours = 9
	dayKeyLayout          = "2006-01-02"
)

// Window is a half-open interval [Start, End).
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Calendar computes Monday-based weeks and calendar days in one fixed zone.
// Every window the stats code builds comes from the same Calendar.
type Calendar struct {
	loc *time.Location
}

func NewCalendar(loc *time.Location) Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return Calendar{loc: loc}
}

// NewFixedOffsetCalendar returns a calendar in UTC+offsetHours.
func NewFixedOffsetCalendar(offsetHours int) Calendar {
	if offsetHours == 0 {
		return NewCalendar(time.UTC)
	}
	name := fmt.Sprintf("UTC%+d", offsetHours)
	if offsetHours == 9 {
		name = "JST"
	}
	return NewCalendar(time.FixedZone(name, offsetHours*60*60))
}

func (c Calendar) Location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

// StartOfWeek returns Monday 00:00 of the week containing t.
func (c Calendar) StartOfWeek(t time.Time) time.Time {
	loc := c.Location()
	t = t.In(loc)
	weekday := int(t.Weekday()) // Sunday = 0
	shift := 1 - weekday
	if weekday == 0 {
		shift = -6
	}
	return time.Date(t.Year(), t.Month(), t.Day()+shift, 0, 0, 0, 0, loc)
}

func (c Calendar) EndOfWeek(t time.Time) time.Time {
	return c.StartOfWeek(t).AddDate(0, 0, 7)
}

func (c Calendar) WeekOf(t time.Time) Window {
	start := c.StartOfWeek(t)
	return Window{
		Start: start,
		End:   start.AddDate(0, 0, 7),
	}
}

func (c Calendar) ThisWeek(now time.Time) Window {
	return c.WeekOf(now)
}

func (c Calendar) LastWeek(now time.Time) Window {
	start := c.StartOfWeek(now)
	return Window{
		Start: start.AddDate(0, 0, -7),
		End:   start,
	}
}

// Weeks returns n consecutive weeks ending with the week containing now,
// oldest first.
func (c Calendar) Weeks(now time.Time, n int) []Window {
	if n <= 0 {
		return nil
	}
	current := c.StartOfWeek(now)
	windows := make([]Window, 0, n)
	for i := n - 1; i >= 0; i-- {
		start := current.AddDate(0, 0, -7*i)
		windows = append(windows, Window{
			Start: start,
			End:   start.AddDate(0, 0, 7),
		})
	}
	return windows
}

func (c Calendar) DayKey(t time.Time) string {
	return t.In(c.Location()).Format(dayKeyLayout)
}

// ParseDay reads a YYYY-MM-DD day in the calendar's zone.
func (c Calendar) ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(dayKeyLayout, s, c.Location())
}
