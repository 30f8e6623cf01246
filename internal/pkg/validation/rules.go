package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// Validation rule patterns
var (
	EmailPattern = `^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`

	// DefaultRollNumberPattern matches roll numbers such as 21CSE045
	DefaultRollNumberPattern = `^[0-9]{2}[A-Z]{2,5}[0-9]{2,4}$`

	PasswordMinLength = 8

	NameMinLength = 2
	NameMaxLength = 100
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Email *regexp.Regexp
}{
	Email: regexp.MustCompile(EmailPattern),
}

// RollNumberValidator checks roll numbers against the configured pattern.
// Roll numbers are compared upper-cased and trimmed.
type RollNumberValidator struct {
	pattern *regexp.Regexp
}

// NewRollNumberValidator compiles pattern, falling back to the default when it is empty
func NewRollNumberValidator(pattern string) (*RollNumberValidator, error) {
	if strings.TrimSpace(pattern) == "" {
		pattern = DefaultRollNumberPattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid roll number pattern: %w", err)
	}
	return &RollNumberValidator{pattern: re}, nil
}

// Normalize returns the canonical form of a roll number
func (v *RollNumberValidator) Normalize(roll string) string {
	return strings.ToUpper(strings.TrimSpace(roll))
}

// Valid reports whether roll matches after normalisation
func (v *RollNumberValidator) Valid(roll string) bool {
	return v.pattern.MatchString(v.Normalize(roll))
}

// IsEmail reports whether email looks like an address after lower-casing
func IsEmail(email string) bool {
	return CompiledPatterns.Email.MatchString(strings.ToLower(strings.TrimSpace(email)))
}

// StringValidation validates a single string value
type StringValidation struct {
	Value    string
	MinLen   int
	MaxLen   int
	Required bool
	Pattern  *regexp.Regexp
}

// NewStringValidation creates a new string validation
func NewStringValidation(value string) *StringValidation {
	return &StringValidation{
		Value:    strings.TrimSpace(value),
		Required: true,
	}
}

// WithMinLength sets minimum length
func (v *StringValidation) WithMinLength(min int) *StringValidation {
	v.MinLen = min
	return v
}

// WithMaxLength sets maximum length
func (v *StringValidation) WithMaxLength(max int) *StringValidation {
	v.MaxLen = max
	return v
}

// WithPattern sets regex pattern
func (v *StringValidation) WithPattern(pattern *regexp.Regexp) *StringValidation {
	v.Pattern = pattern
	return v
}

// WithRequired sets if field is required
func (v *StringValidation) WithRequired(required bool) *StringValidation {
	v.Required = required
	return v
}

// Validate performs validation
func (v *StringValidation) Validate() bool {
	if v.Value == "" {
		return !v.Required
	}
	if v.MinLen > 0 && len(v.Value) < v.MinLen {
		return false
	}
	if v.MaxLen > 0 && len(v.Value) > v.MaxLen {
		return false
	}
	if v.Pattern != nil && !v.Pattern.MatchString(v.Value) {
		return false
	}
	return true
}

// FloatRange checks an optional number lies in [min, max]
func FloatRange(value *float64, min, max float64) bool {
	return value == nil || (*value >= min && *value <= max)
}

// NonNegative checks an optional count is not negative
func NonNegative(value *int) bool {
	return value == nil || *value >= 0
}
