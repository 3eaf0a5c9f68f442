// Package validation checks API request bodies and reports problems per field.
package validation

import (
	"strconv"
	"strings"

	ozzo "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// FieldError represents a validation error on a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// DateLayout is the format of calendar dates in requests and responses.
const DateLayout = "2006-01-02"

func required(errs []FieldError, field, value string) []FieldError {
	if strings.TrimSpace(value) == "" {
		errs = append(errs, FieldError{Field: field, Message: field + " is required"})
	}
	return errs
}

func maxLength(errs []FieldError, field, value string, n int) []FieldError {
	if len(strings.TrimSpace(value)) > n {
		errs = append(errs, FieldError{Field: field, Message: field + " must be at most " + strconv.Itoa(n) + " characters"})
	}
	return errs
}

func email(errs []FieldError, field, value string) []FieldError {
	value = strings.TrimSpace(value)
	if value == "" {
		return append(errs, FieldError{Field: field, Message: field + " is required"})
	}
	if err := ozzo.Validate(value, is.Email); err != nil {
		errs = append(errs, FieldError{Field: field, Message: field + " must be a valid email address"})
	}
	return errs
}
