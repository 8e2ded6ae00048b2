package availability

import "strings"

// SlotDraft is the counselor's locally staged copy of their weekly schedule.
// The backend only accepts whole-list replacement, so edits accumulate here
// and Slots() is what gets sent on save. A SlotDraft is page-local and not
// safe for concurrent use.
type SlotDraft struct {
	slots []Slot
}

// NewSlotDraft builds a draft from the backend's current list.
func NewSlotDraft(raw []RawSlot) *SlotDraft {
	d := &SlotDraft{}
	d.Reset(raw)
	return d
}

// Reset discards staged edits and reloads from raw.
func (d *SlotDraft) Reset(raw []RawSlot) {
	d.slots = SortSlots(raw)
}

// Add stages a slot for the weekday of date. Checks run in order: required
// fields, time range, date, duplicate. A range error is reported before the
// duplicate check ever runs.
func (d *SlotDraft) Add(date, start, end string) (Slot, error) {
	date, start, end = strings.TrimSpace(date), strings.TrimSpace(start), strings.TrimSpace(end)
	switch {
	case date == "":
		return Slot{}, ErrMissingDate
	case start == "":
		return Slot{}, ErrMissingStart
	case end == "":
		return Slot{}, ErrMissingEnd
	}
	if err := validateRange(start, end); err != nil {
		return Slot{}, err
	}

	day, err := DayOfWeekFromDate(date)
	if err != nil {
		return Slot{}, err
	}

	slot := Slot{DayOfWeek: day, StartTime: start, EndTime: end}
	if err := d.insert(slot); err != nil {
		return Slot{}, err
	}
	return slot, nil
}

// AddSlot stages an already-typed slot with the same range and duplicate rules.
func (d *SlotDraft) AddSlot(s Slot) error {
	if err := validateRange(s.StartTime, s.EndTime); err != nil {
		return err
	}
	if !s.DayOfWeek.Valid() {
		return ErrInvalidWeekday
	}
	return d.insert(s)
}

// Remove drops the slot with the given key. It reports whether one was removed.
func (d *SlotDraft) Remove(key string) bool {
	for i, s := range d.slots {
		if SlotKey(s) == key {
			d.slots = append(d.slots[:i:i], d.slots[i+1:]...)
			return true
		}
	}
	return false
}

// Contains reports whether a slot with key is staged.
func (d *SlotDraft) Contains(key string) bool {
	for _, s := range d.slots {
		if SlotKey(s) == key {
			return true
		}
	}
	return false
}

// Slots returns a copy of the staged list in canonical order.
func (d *SlotDraft) Slots() []Slot {
	out := make([]Slot, len(d.slots))
	copy(out, d.slots)
	return out
}

// Len returns the number of staged slots.
func (d *SlotDraft) Len() int { return len(d.slots) }

// ByDay groups the staged slots into the seven weekday columns.
func (d *SlotDraft) ByDay() [7][]Slot {
	var week [7][]Slot
	for _, s := range d.slots {
		week[s.DayOfWeek] = append(week[s.DayOfWeek], s)
	}
	return week
}

func (d *SlotDraft) insert(s Slot) error {
	if d.Contains(SlotKey(s)) {
		return ErrDuplicateSlot
	}
	d.slots = SortNormalized(append(d.Slots(), s))
	return nil
}

func validateRange(start, end string) error {
	s, sok := ParseTimeToMinutes(start)
	e, eok := ParseTimeToMinutes(end)
	if !sok || !eok || s >= e {
		return ErrInvalidRange
	}
	return nil
}
