package availability

import "errors"

var (
	// ErrInvalidDate is returned when a calendar date is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date")

	// ErrMissingDate is returned when a slot is staged without a date.
	ErrMissingDate = errors.New("select a date")

	// ErrMissingStart is returned when a slot is staged without a start time.
	ErrMissingStart = errors.New("select a start time")

	// ErrMissingEnd is returned when a slot is staged without an end time.
	ErrMissingEnd = errors.New("select an end time")

	// ErrInvalidRange is returned when start >= end or either time is malformed.
	ErrInvalidRange = errors.New("end time must be after start time")

	// ErrInvalidWeekday is returned when a slot's dayOfWeek is outside 0..6.
	ErrInvalidWeekday = errors.New("dayOfWeek must be 0..6")

	// ErrDuplicateSlot is returned when the staging list already holds the slot.
	ErrDuplicateSlot = errors.New("this slot is already added")
)
