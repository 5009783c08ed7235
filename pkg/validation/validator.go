// Package validation evaluates request payloads against schema field rules.
// It judges payloads without mutating them and collects every violation so
// callers can report all problems at once.
package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mockwell/mockwell/pkg/endpoint"
)

// Validate evaluates payload against the schema's rules in declared order.
// A missing optional field skips its remaining checks; a missing required
// field records a single missing_field violation. Validation never
// short-circuits across fields.
func Validate(payload map[string]any, schema *endpoint.SchemaDef) *Result {
	result := &Result{Valid: true}
	if schema == nil {
		return result
	}

	for i := range schema.Fields {
		rule := &schema.Fields[i]

		value, present := payload[rule.FieldName]
		if !present {
			if rule.Required {
				result.AddError(newMissingError(rule.FieldName))
			}
			continue
		}
		if value == nil && !rule.Required {
			continue
		}

		validateField(rule, value, result)
	}

	return result
}

// validateField runs the type check and the type-conditional constraints for
// one present field. A type mismatch ends that field's checks; constraint
// violations accumulate.
func validateField(rule *endpoint.FieldValidation, value any, result *Result) {
	switch rule.FieldType {
	case endpoint.TypeString:
		s := stringify(value)
		validateStringConstraints(rule, s, result)

	case endpoint.TypeInt:
		n, ok := toInt(value)
		if !ok {
			result.AddError(newTypeError(rule.FieldName, "integer", value))
			return
		}
		validateNumericConstraints(rule, float64(n), value, result)

	case endpoint.TypeFloat:
		f, ok := toFloat(value)
		if !ok {
			result.AddError(newTypeError(rule.FieldName, "number", value))
			return
		}
		validateNumericConstraints(rule, f, value, result)

	case endpoint.TypeBool:
		if _, ok := toBool(value); !ok {
			result.AddError(newTypeError(rule.FieldName, "boolean", value))
			return
		}

	case endpoint.TypeEmail:
		s := stringify(value)
		if !IsEmail(s) {
			result.AddError(newTypeError(rule.FieldName, "email address", value))
			return
		}
	}

	validateChoices(rule, value, result)
}

// validateStringConstraints checks length, pattern, and choices for strings.
func validateStringConstraints(rule *endpoint.FieldValidation, value string, result *Result) {
	if rule.MinLength != nil && len(value) < *rule.MinLength {
		result.AddError(&FieldError{
			Field:    rule.FieldName,
			Code:     CodeLengthViolation,
			Message:  fmt.Sprintf("value must be at least %d characters", *rule.MinLength),
			Received: value,
			Expected: fmt.Sprintf(">= %d characters", *rule.MinLength),
		})
	}
	if rule.MaxLength != nil && len(value) > *rule.MaxLength {
		result.AddError(&FieldError{
			Field:    rule.FieldName,
			Code:     CodeLengthViolation,
			Message:  fmt.Sprintf("value must be at most %d characters", *rule.MaxLength),
			Received: value,
			Expected: fmt.Sprintf("<= %d characters", *rule.MaxLength),
		})
	}
	if rule.Pattern != "" {
		// Record validation guarantees the pattern compiles; a failure here
		// means the record was created outside the admin surface.
		matched, err := regexp.MatchString(rule.Pattern, value)
		if err != nil || !matched {
			result.AddError(&FieldError{
				Field:    rule.FieldName,
				Code:     CodePatternViolation,
				Message:  fmt.Sprintf("value does not match pattern %s", rule.Pattern),
				Received: value,
				Expected: rule.Pattern,
			})
		}
	}
}

// validateNumericConstraints checks the numeric range for int/float fields.
func validateNumericConstraints(rule *endpoint.FieldValidation, value float64, received any, result *Result) {
	if rule.MinValue != nil && value < *rule.MinValue {
		result.AddError(&FieldError{
			Field:    rule.FieldName,
			Code:     CodeRangeViolation,
			Message:  fmt.Sprintf("value must be at least %g", *rule.MinValue),
			Received: received,
			Expected: fmt.Sprintf(">= %g", *rule.MinValue),
		})
	}
	if rule.MaxValue != nil && value > *rule.MaxValue {
		result.AddError(&FieldError{
			Field:    rule.FieldName,
			Code:     CodeRangeViolation,
			Message:  fmt.Sprintf("value must be at most %g", *rule.MaxValue),
			Received: received,
			Expected: fmt.Sprintf("<= %g", *rule.MaxValue),
		})
	}
}

// validateChoices checks the exact-match allow-list, valid for any type.
func validateChoices(rule *endpoint.FieldValidation, value any, result *Result) {
	if len(rule.Choices) == 0 {
		return
	}
	s := stringify(value)
	for _, choice := range rule.Choices {
		if s == choice {
			return
		}
	}
	result.AddError(&FieldError{
		Field:    rule.FieldName,
		Code:     CodeChoiceViolation,
		Message:  fmt.Sprintf("value must be one of: %s", strings.Join(rule.Choices, ", ")),
		Received: value,
		Expected: strings.Join(rule.Choices, "|"),
	})
}

// stringify renders a payload value as its string form for string-typed
// comparisons. JSON numbers drop a trailing ".0" so 5 and 5.0 compare equal
// against a choices list of "5".
func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

// toInt coerces JSON numbers, Go ints, and numeric strings to an int64.
// Fractional values do not coerce.
func toInt(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		if v != float64(int64(v)) {
			return 0, false
		}
		return int64(v), true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// toFloat coerces JSON numbers, Go numerics, and numeric strings to float64.
func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// toBool coerces booleans and the usual string spellings.
func toBool(value any) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		switch strings.ToLower(v) {
		case "true", "1", "yes", "on":
			return true, true
		case "false", "0", "no", "off":
			return false, true
		}
	}
	return false, false
}
