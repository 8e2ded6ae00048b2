package availability

import (
	"fmt"
	"regexp"
	"strconv"
)

// The backend renders LocalTime values as "HH:MM" or "HH:MM:SS"; both are
// accepted and seconds are ignored.
var timeOfDayPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::\d{2})?$`)

// ParseTimeToMinutes converts "H:MM" or "HH:MM" to minutes since midnight.
// ok is false for anything else (missing colon, empty or non-numeric parts);
// callers treat that as invalid and sort or filter it last.
func ParseTimeToMinutes(t string) (minutes int, ok bool) {
	m := timeOfDayPattern.FindStringSubmatch(t)
	if m == nil {
		return 0, false
	}
	hh, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	mm, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, false
	}
	return hh*60 + mm, true
}

// FormatTime12h renders "14:05" as "2:05 PM". Unparseable input comes back unchanged.
func FormatTime12h(t string) string {
	minutes, ok := ParseTimeToMinutes(t)
	if !ok {
		return t
	}
	h, m := minutes/60, minutes%60
	suffix := "AM"
	if h >= 12 {
		suffix = "PM"
	}
	h12 := h % 12
	if h12 == 0 {
		h12 = 12
	}
	return fmt.Sprintf("%d:%02d %s", h12, m, suffix)
}
