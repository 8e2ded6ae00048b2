// Package availability models a counselor's weekly recurring schedule: slot
// normalization, canonical ordering, identity keys, weekday derivation from a
// calendar date, and the counselor-side staging list.
package availability

import (
	"fmt"
	"strings"
	"time"
)

// Weekday is the recurrence key of a slot: 0 = Sunday … 6 = Saturday.
type Weekday int

const (
	Sunday Weekday = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

// InvalidWeekday marks a dayOfWeek that could not be coerced to an integer.
const InvalidWeekday Weekday = -1

// DateLayout is the calendar date format exchanged with the backend.
const DateLayout = "2006-01-02"

// Valid reports whether d is within [Sunday, Saturday].
func (d Weekday) Valid() bool {
	return d >= Sunday && d <= Saturday
}

// Name returns the full English day name, or "Day N" outside the range.
func (d Weekday) Name() string {
	if !d.Valid() {
		return fmt.Sprintf("Day %d", int(d))
	}
	return time.Weekday(d).String()
}

// ShortName returns the three-letter day name used in compact listings.
func (d Weekday) ShortName() string {
	if !d.Valid() {
		return fmt.Sprintf("Day %d", int(d))
	}
	return time.Weekday(d).String()[:3]
}

// DayOfWeekFromDate interprets date (YYYY-MM-DD) as local midnight and returns
// its weekday. The counselor staging flow and the patient availability lookup
// both go through here so they agree on which weekday a date falls on.
func DayOfWeekFromDate(date string) (Weekday, error) {
	return DayOfWeekFromDateIn(date, time.Local)
}

// DayOfWeekFromDateIn is DayOfWeekFromDate with an explicit location.
func DayOfWeekFromDateIn(date string, loc *time.Location) (Weekday, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(date), loc)
	if err != nil {
		return InvalidWeekday, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return Weekday(t.Weekday()), nil
}

// Today returns the current local date formatted as YYYY-MM-DD.
func Today(now time.Time) string {
	return now.In(time.Local).Format(DateLayout)
}

// NextDateForWeekday returns the first date on or after from (local) that falls
// on day, formatted as YYYY-MM-DD. Used to pre-fill the staging form when a
// counselor clicks "add" on a given weekday column.
func NextDateForWeekday(from time.Time, day Weekday) string {
	from = from.In(time.Local)
	diff := int(day) - int(from.Weekday())
	if diff < 0 {
		diff += 7
	}
	return from.AddDate(0, 0, diff).Format(DateLayout)
}
