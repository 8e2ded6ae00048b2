package pages

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type loginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type registerForm struct {
	Name             string `validate:"max=100"`
	Email            string `validate:"required,email"`
	Password         string `validate:"required,max=72"`
	EmergencyContact string `validate:"max=200"`
}

type moodForm struct {
	Rating    int    `validate:"min=1,max=10"`
	Notes     string `validate:"max=500"`
	EntryDate string `validate:"omitempty,datetime=2006-01-02"`
}

type counselorForm struct {
	Name     string `validate:"max=100"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,max=72"`
}

type roleForm struct {
	Role string `validate:"required,oneof=patient counselor admin"`
}

type profileForm struct {
	Name             string `validate:"max=100"`
	Specialty        string `validate:"max=100"`
	EmergencyContact string `validate:"max=200"`
}

type statusFilterForm struct {
	Status string `validate:"oneof=all scheduled confirmed canceled"`
}

// validateForm checks v's tags and reports the first failure in words.
func validateForm(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	return errors.New(fieldMessage(verrs[0]))
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Field() {
	case "EmergencyContact":
		field = "emergency contact"
	case "EntryDate":
		field = "date"
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return "enter a valid email address"
	case "min", "max":
		if fe.Field() == "Rating" {
			return "rating must be between 1 and 10"
		}
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "datetime":
		return field + " must be YYYY-MM-DD"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	}
	return fmt.Sprintf("%s is invalid", field)
}

// parseRating reads a typed mood rating. A non-number becomes 0, which the
// form rejects.
func parseRating(v string) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0
	}
	return n
}
