package availability

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Slot is one weekly recurring window [StartTime, EndTime) for a counselor.
type Slot struct {
	DayOfWeek Weekday `json:"dayOfWeek"`
	StartTime string  `json:"startTime"`
	EndTime   string  `json:"endTime"`
}

// RawSlot is a slot exactly as it arrived on the wire. Fields stay untyped so
// that a malformed entry (say, "dayOfWeek": "monday") decodes fine and is
// discarded by normalization instead of failing the whole list.
type RawSlot struct {
	DayOfWeek json.RawMessage `json:"dayOfWeek,omitempty"`
	StartTime json.RawMessage `json:"startTime,omitempty"`
	EndTime   json.RawMessage `json:"endTime,omitempty"`
}

// Raw converts a typed slot back into its wire form.
func (s Slot) Raw() RawSlot {
	start, _ := json.Marshal(s.StartTime)
	end, _ := json.Marshal(s.EndTime)
	return RawSlot{
		DayOfWeek: json.RawMessage(strconv.Itoa(int(s.DayOfWeek))),
		StartTime: start,
		EndTime:   end,
	}
}

// Key returns the slot's identity, see SlotKey.
func (s Slot) Key() string { return SlotKey(s) }

// String renders the slot for listings, e.g. "Wednesday 2:00 PM - 5:00 PM".
func (s Slot) String() string {
	return fmt.Sprintf("%s %s - %s", s.DayOfWeek.Name(), FormatTime12h(s.StartTime), FormatTime12h(s.EndTime))
}

// SlotKey is the composite identity "<dayOfWeek>|<startTime>|<endTime>". Two
// slots are the same real-world slot iff their keys match exactly; overlapping
// ranges are not detected.
func SlotKey(s Slot) string {
	return fmt.Sprintf("%d|%s|%s", int(s.DayOfWeek), s.StartTime, s.EndTime)
}

// NormalizeSlot coerces the weekday to a number and the times to strings. It
// does not range-check: an uncoercible weekday becomes InvalidWeekday and a
// missing time becomes "undefined"; SortSlots filters those downstream.
func NormalizeSlot(raw RawSlot) Slot {
	return Slot{
		DayOfWeek: coerceWeekday(raw.DayOfWeek),
		StartTime: coerceString(raw.StartTime),
		EndTime:   coerceString(raw.EndTime),
	}
}

// SortSlots normalizes every element, drops slots whose weekday is not an
// integer in [0,6], and sorts by (weekday, start minutes). The sort is stable.
func SortSlots(raw []RawSlot) []Slot {
	slots := make([]Slot, 0, len(raw))
	for _, r := range raw {
		slots = append(slots, NormalizeSlot(r))
	}
	return SortNormalized(slots)
}

// SortNormalized applies the SortSlots filter and ordering to typed slots.
// The input is not modified.
func SortNormalized(slots []Slot) []Slot {
	out := make([]Slot, 0, len(slots))
	for _, s := range slots {
		if s.DayOfWeek.Valid() {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return slotLess(out[i], out[j])
	})
	return out
}

// slotLess orders by weekday, then by start minutes; unparseable start times
// sort after every parseable one of the same day.
func slotLess(a, b Slot) bool {
	if a.DayOfWeek != b.DayOfWeek {
		return a.DayOfWeek < b.DayOfWeek
	}
	am, aok := ParseTimeToMinutes(a.StartTime)
	bm, bok := ParseTimeToMinutes(b.StartTime)
	switch {
	case aok && bok:
		return am < bm
	case aok != bok:
		return aok
	default:
		return false
	}
}

// FindSlotsForDate returns the canonical-order subset of slots that fall on the
// weekday of date. No match, or an unparseable date, yields an empty slice:
// "no availability that day" is a normal state.
func FindSlotsForDate(slots []Slot, date string) []Slot {
	day, err := DayOfWeekFromDate(date)
	if err != nil {
		return []Slot{}
	}
	return SlotsOn(slots, day)
}

// SlotsOn returns the canonical-order subset of slots on day.
func SlotsOn(slots []Slot, day Weekday) []Slot {
	matched := make([]Slot, 0, len(slots))
	for _, s := range slots {
		if s.DayOfWeek == day {
			matched = append(matched, s)
		}
	}
	return SortNormalized(matched)
}

// IsAvailableOn reports whether any slot falls on day.
func IsAvailableOn(slots []Slot, day Weekday) bool {
	for _, s := range slots {
		if s.DayOfWeek == day {
			return true
		}
	}
	return false
}

func coerceWeekday(raw json.RawMessage) Weekday {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return InvalidWeekday
	}

	var v any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return InvalidWeekday
	}

	var text string
	switch x := v.(type) {
	case json.Number:
		text = x.String()
	case string:
		text = strings.TrimSpace(x)
	default:
		return InvalidWeekday
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return InvalidWeekday
	}
	if f < math.MinInt32 || f > math.MaxInt32 {
		return InvalidWeekday
	}
	return Weekday(int(f))
}

func coerceString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "undefined"
	}
	if bytes.Equal(raw, []byte("null")) {
		return "null"
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
