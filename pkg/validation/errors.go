package validation

import "fmt"

// ErrorCode constants for machine-readable violation identification.
const (
	CodeMissingField     = "missing_field"
	CodeTypeMismatch     = "type_mismatch"
	CodeLengthViolation  = "length_violation"
	CodePatternViolation = "pattern_violation"
	CodeRangeViolation   = "range_violation"
	CodeChoiceViolation  = "choice_violation"
)

// FieldError is a single violation of one rule by one field.
type FieldError struct {
	// Field is the payload key that failed.
	Field string `json:"field"`

	// Code is a machine-readable violation code.
	Code string `json:"code"`

	// Message is a human-readable description.
	Message string `json:"message"`

	// Received is the offending value (nil when the field was absent).
	Received any `json:"received,omitempty"`

	// Expected describes what would have passed.
	Expected string `json:"expected,omitempty"`
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Result is the outcome of validating one payload against one schema.
// All violations are collected; Valid is true iff the set is empty.
type Result struct {
	Valid  bool          `json:"valid"`
	Errors []*FieldError `json:"errors,omitempty"`
}

// AddError records a violation and marks the result invalid.
func (r *Result) AddError(err *FieldError) {
	r.Valid = false
	r.Errors = append(r.Errors, err)
}

// newMissingError builds a violation for an absent required field.
func newMissingError(field string) *FieldError {
	return &FieldError{
		Field:    field,
		Code:     CodeMissingField,
		Message:  "field is required",
		Expected: "present",
	}
}

// newTypeError builds a violation for a value of the wrong type.
func newTypeError(field, expected string, received any) *FieldError {
	return &FieldError{
		Field:    field,
		Code:     CodeTypeMismatch,
		Message:  fmt.Sprintf("value must be a valid %s", expected),
		Received: received,
		Expected: expected,
	}
}
