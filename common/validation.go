package common

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// RecordValidationResult holds the outcome for a single line of a parsed file
type RecordValidationResult struct {
	RowNumber int               `json:"row_number"`
	Valid     bool              `json:"valid"`
	Errors    []ValidationError `json:"errors,omitempty"`
}

// AddError adds a validation error to the result
func (r *RecordValidationResult) AddError(field, message string) {
	r.Valid = false
	r.Errors = append(r.Errors, ValidationError{
		Field:   field,
		Message: message,
	})
}

// ToJSON converts validation errors to JSON string
func (r *RecordValidationResult) ToJSON() string {
	if len(r.Errors) == 0 {
		return ""
	}
	data, _ := json.Marshal(r.Errors)
	return string(data)
}

// ValidateDelimiter checks that s is a single ASCII byte usable as a field separator.
// Quote characters, whitespace and NUL would collide with quoting or trimming, and a
// byte of 0x80 or above is only part of a UTF-8 character.
func ValidateDelimiter(s string) (byte, *ValidationError) {
	if len(s) != 1 {
		return 0, &ValidationError{
			Field:   "delimiter",
			Message: "delimiter must be exactly one character",
		}
	}
	switch d := s[0]; {
	case d >= 0x80:
		return 0, &ValidationError{
			Field:   "delimiter",
			Message: "delimiter must be an ASCII character",
		}
	case d == '"', d == '\'', d == ' ', d == '\t', d == '\r', d == '\n', d == 0:
		return 0, &ValidationError{
			Field:   "delimiter",
			Message: fmt.Sprintf("delimiter %q is not allowed", d),
		}
	default:
		return d, nil
	}
}

// ValidateRequired checks if a string field is not empty
func ValidateRequired(field, value string) *ValidationError {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("%s is required", field),
		}
	}
	return nil
}

// ValidateEnum checks if value is in allowed list
func ValidateEnum(field, value string, allowed []string) *ValidationError {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf("%s must be one of: %s", field, strings.Join(allowed, ", ")),
	}
}
