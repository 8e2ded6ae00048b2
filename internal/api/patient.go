package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/wolfman30/mindcare/internal/availability"
)

// ListCounselors returns the active counselors a patient can book with.
func (c *Client) ListCounselors(ctx context.Context) ([]Counselor, error) {
	var out []Counselor
	if err := c.Do(ctx, http.MethodGet, "/patient/counselors", nil, &out); err != nil {
		return nil, fmt.Errorf("list counselors: %w", err)
	}
	return out, nil
}

// CounselorAvailability returns the counselor's weekly slots in wire form,
// optionally filtered to one weekday. Callers normalize with
// availability.SortSlots.
func (c *Client) CounselorAvailability(ctx context.Context, counselorID int64, day *availability.Weekday) ([]availability.RawSlot, error) {
	path := fmt.Sprintf("/patient/counselors/%d/availability", counselorID)
	if day != nil {
		q := url.Values{}
		q.Set("dayOfWeek", strconv.Itoa(int(*day)))
		path += "?" + q.Encode()
	}
	var out []availability.RawSlot
	if err := c.Do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("get counselor availability: %w", err)
	}
	return out, nil
}

// ListAppointments returns the patient's own appointments.
func (c *Client) ListAppointments(ctx context.Context) ([]Appointment, error) {
	var out []Appointment
	if err := c.Do(ctx, http.MethodGet, "/patient/appointments", nil, &out); err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return out, nil
}

// BookAppointment creates an appointment. Conflicts and availability misses
// come back as *Error with the backend's message.
func (c *Client) BookAppointment(ctx context.Context, req BookingRequest) (*Appointment, error) {
	var out Appointment
	if err := c.Do(ctx, http.MethodPost, "/patient/appointments", req, &out); err != nil {
		return nil, fmt.Errorf("book appointment: %w", err)
	}
	return &out, nil
}

// CancelAppointment cancels one of the patient's appointments.
func (c *Client) CancelAppointment(ctx context.Context, id int64) (*Appointment, error) {
	var out Appointment
	path := fmt.Sprintf("/patient/appointments/%d/cancel", id)
	if err := c.Do(ctx, http.MethodPost, path, nil, &out); err != nil {
		return nil, fmt.Errorf("cancel appointment: %w", err)
	}
	return &out, nil
}

// MoodHistory returns the patient's mood entries, oldest first.
func (c *Client) MoodHistory(ctx context.Context) ([]MoodEntry, error) {
	var out []MoodEntry
	if err := c.Do(ctx, http.MethodGet, "/patient/mood", nil, &out); err != nil {
		return nil, fmt.Errorf("get mood history: %w", err)
	}
	return out, nil
}

// SaveMood upserts the mood entry for req.EntryDate.
func (c *Client) SaveMood(ctx context.Context, req MoodRequest) (*MoodEntry, error) {
	var out MoodEntry
	if err := c.Do(ctx, http.MethodPost, "/patient/mood", req, &out); err != nil {
		return nil, fmt.Errorf("save mood: %w", err)
	}
	return &out, nil
}
