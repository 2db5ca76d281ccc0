package dto

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError is a single failed field in a validation error response
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// HandleValidationError converts binding and validator errors into an ErrorDetail.
// Errors that are not validator errors (malformed JSON, wrong types) are reported as-is.
func HandleValidationError(err error) *ErrorDetail {
	detail := NewErrorDetail(ErrorCodeValidationFailed, "Invalid request data")

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return detail.WithDetails(err.Error())
	}

	fields := make([]FieldError, 0, len(validationErrs))
	for _, fe := range validationErrs {
		fields = append(fields, FieldError{
			Field:   lowerFirst(fe.Field()),
			Message: formatValidationError(fe),
		})
	}
	if len(fields) == 1 {
		detail = detail.WithField(fields[0].Field)
	}
	return detail.WithDetails(fields)
}

func formatValidationError(e validator.FieldError) string {
	field := lowerFirst(e.Field())
	switch e.Tag() {
	case "required":
		return field + " is required"
	case "min", "gte":
		return field + " must be at least " + e.Param()
	case "max", "lte":
		return field + " must be at most " + e.Param()
	case "email":
		return field + " must be a valid email address"
	case "oneof":
		return field + " must be one of: " + e.Param()
	default:
		return field + " validation failed: " + e.Tag()
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
