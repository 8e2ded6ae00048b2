package api

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Error is a non-2xx response from the backend. Message is the envelope's
// "error" field, or "API error: <status>" when the body carries none.
type Error struct {
	Status  int
	Message string
	Body    string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(status int, body []byte) *Error {
	apiErr := &Error{
		Status:  status,
		Message: fmt.Sprintf("API error: %d", status),
		Body:    string(body),
	}
	var envelope struct {
		Error any `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return apiErr
	}
	if msg, ok := envelope.Error.(string); ok && msg != "" {
		apiErr.Message = msg
	}
	return apiErr
}

// IsStatus reports whether err is (or wraps) an *Error with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// Message returns the user-facing text of err: the backend's message for an
// *Error anywhere in the chain, otherwise err.Error().
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
