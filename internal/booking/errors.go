package booking

import "errors"

var (
	ErrNoCounselor         = errors.New("choose a counselor")
	ErrNoDate              = errors.New("choose a date")
	ErrNoTime              = errors.New("choose a time")
	ErrBadTime             = errors.New("enter time as HH:MM")
	ErrSubmitInFlight      = errors.New("a booking request is already in progress")
	ErrAlreadyCanceled     = errors.New("appointment is already canceled")
	ErrUnknownCounselor    = errors.New("counselor not found")
	ErrNoSuchSlot          = errors.New("no such suggested slot")
	ErrAppointmentNotFound = errors.New("appointment not found")
)
