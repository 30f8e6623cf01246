package apperrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestCustomError_UnwrapsToSentinel(t *testing.T) {
	err := NewValidationError("cgpa must be between 0 and 10")

	if !errors.Is(err, ErrValidationFailed) {
		t.Error("Expected validation error to unwrap to ErrValidationFailed")
	}
	if err.Error() != "cgpa must be between 0 and 10" {
		t.Errorf("Unexpected message: %s", err.Error())
	}

	wrapped := fmt.Errorf("update profile: %w", err)
	if got := MessageOf(wrapped); got != "cgpa must be between 0 and 10" {
		t.Errorf("Expected message through wrapping, got %q", got)
	}
}

func TestCustomError_FallbackMessages(t *testing.T) {
	if got := NewCustomError(ErrUserNotFound, "").Error(); got != ErrUserNotFound.Error() {
		t.Errorf("Expected sentinel message, got %q", got)
	}
	if got := (&CustomError{}).Error(); got != "unknown error" {
		t.Errorf("Expected unknown error, got %q", got)
	}
	if MessageOf(ErrUserNotFound) != "" {
		t.Error("Expected no message for plain sentinel")
	}
}

func TestIs_MatchesAnyOfList(t *testing.T) {
	err := fmt.Errorf("opt in: %w", ErrMembershipConflict)

	if !Is(err, ErrNotEligible, ErrRegistrationClosed, ErrMembershipConflict) {
		t.Error("Expected match against list")
	}
	if Is(err, ErrNotEligible, ErrRegistrationClosed) {
		t.Error("Expected no match")
	}
}
