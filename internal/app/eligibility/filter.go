package eligibility

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Predicate is a single filter axis over a candidate record.
// A nil Predicate matches everything.
type Predicate[T any] func(T) bool

// Apply keeps the items that satisfy every non-nil predicate. The input slice is
// not modified and the order of predicates does not affect the result.
func Apply[T any](items []T, preds ...Predicate[T]) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if Matches(item, preds...) {
			out = append(out, item)
		}
	}
	return out
}

// Matches reports whether item satisfies every non-nil predicate.
func Matches[T any](item T, preds ...Predicate[T]) bool {
	for _, p := range preds {
		if p != nil && !p(item) {
			return false
		}
	}
	return true
}

// EligibilityFilter selects eligible or not-eligible candidates.
type EligibilityFilter string

const (
	EligibilityAny         EligibilityFilter = ""
	EligibilityEligible    EligibilityFilter = "eligible"
	EligibilityNotEligible EligibilityFilter = "not-eligible"
)

// ParseEligibilityFilter accepts "", "all", "eligible" and "not-eligible".
func ParseEligibilityFilter(s string) (EligibilityFilter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return EligibilityAny, nil
	case "eligible":
		return EligibilityEligible, nil
	case "not-eligible", "not_eligible", "ineligible":
		return EligibilityNotEligible, nil
	}
	return EligibilityAny, fmt.Errorf("unknown eligibility filter %q", s)
}

// ByEligibility builds the eligibility axis. eval must itself be pure.
func ByEligibility[T any](f EligibilityFilter, eval func(T) Result) Predicate[T] {
	if f == EligibilityAny {
		return nil
	}
	want := f == EligibilityEligible
	return func(item T) bool {
		return eval(item).Eligible == want
	}
}

// RegistrationStatus is a student's membership state for one drive.
type RegistrationStatus string

const (
	StatusOptedIn       RegistrationStatus = "OPTED_IN"
	StatusOptedOut      RegistrationStatus = "OPTED_OUT"
	StatusNotRegistered RegistrationStatus = "NOT_REGISTERED"
	// StatusInconsistent marks a uid found in both membership sets.
	StatusInconsistent RegistrationStatus = "INCONSISTENT"
)

// StatusOf derives the registration status of uid from the two membership sets.
func StatusOf(uid string, applicants, optedOut []string) RegistrationStatus {
	in := Contains(applicants, uid)
	out := Contains(optedOut, uid)
	switch {
	case in && out:
		return StatusInconsistent
	case in:
		return StatusOptedIn
	case out:
		return StatusOptedOut
	}
	return StatusNotRegistered
}

// ParseRegistrationFilter accepts "", "all", "opted-in", "opted-out" and "not-registered".
func ParseRegistrationFilter(s string) (RegistrationStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return "", nil
	case "opted-in", "opted_in", "applied":
		return StatusOptedIn, nil
	case "opted-out", "opted_out", "declined":
		return StatusOptedOut, nil
	case "not-registered", "not_registered", "pending":
		return StatusNotRegistered, nil
	}
	return "", fmt.Errorf("unknown registration filter %q", s)
}

// ByRegistration builds the registration-status axis. An empty want is a no-op.
// Inconsistent memberships never match a concrete status.
func ByRegistration[T any](want RegistrationStatus, status func(T) RegistrationStatus) Predicate[T] {
	if want == "" {
		return nil
	}
	return func(item T) bool {
		return status(item) == want
	}
}

// ByField builds a categorical exact-match axis. An empty want is a no-op.
func ByField[T any](want string, get func(T) string) Predicate[T] {
	want = strings.TrimSpace(want)
	if want == "" {
		return nil
	}
	return func(item T) bool {
		return strings.TrimSpace(get(item)) == want
	}
}

// ByMinSalary keeps records whose salary string parses to at least min.
// A blank min is a no-op.
func ByMinSalary[T any](min string, salary func(T) string) Predicate[T] {
	if strings.TrimSpace(min) == "" {
		return nil
	}
	threshold := ParseSalary(min)
	return func(item T) bool {
		return ParseSalary(salary(item)) >= threshold
	}
}

var numericToken = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?|\.\d+`)

// ParseSalary extracts the first numeric token of a free-text salary such as
// "10 LPA" or "4.5 - 6 LPA". Digit-group commas are ignored. Absent or
// unparsable values yield 0.
func ParseSalary(s string) float64 {
	token := numericToken.FindString(s)
	if token == "" {
		return 0
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(token, ",", ""), 64)
	if err != nil {
		return 0
	}
	return v
}

// Contains reports whether set holds v.
func Contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
