package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenNotFound      = errors.New("token not found")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrAccountDisabled    = errors.New("account is disabled")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrInvalidEmail     = errors.New("invalid email")
	ErrInvalidPassword  = errors.New("invalid password")
	ErrBadRequest       = errors.New("bad request")

	// Remote store errors
	ErrStoreUnavailable = errors.New("document store unavailable")
	ErrRequestTimeout   = errors.New("request timed out")
)

// User errors
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailAlreadyExists  = errors.New("email already exists")
	ErrRollNumberExists    = errors.New("roll number already exists")
	ErrInvalidRollNumber   = errors.New("invalid roll number format")
	ErrInvalidStatusChange = errors.New("profile status change not allowed")
	ErrProfileNotVerified  = errors.New("profile is not verified")
	ErrProfileIncomplete   = errors.New("profile is incomplete")
	ErrRoleNotAssignable   = errors.New("role cannot be assigned by this user")
)

// Drive and training errors
var (
	ErrCompanyNotFound    = errors.New("company drive not found")
	ErrTrainingNotFound   = errors.New("training not found")
	ErrMembershipConflict = errors.New("student is already registered with the opposite decision")
	ErrNotEligible        = errors.New("student does not meet the eligibility criteria")
	ErrRegistrationClosed = errors.New("registration deadline has passed")
)

// Placement record and import errors
var (
	ErrRecordNotFound      = errors.New("placement record not found")
	ErrRecordAlreadyExists = errors.New("placement record already exists")
	ErrMissingColumns      = errors.New("spreadsheet is missing required columns")
	ErrUnsupportedFile     = errors.New("unsupported spreadsheet format")
	ErrBatchTooLarge       = errors.New("import batch exceeds the row limit")
)

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// NewValidationError wraps ErrValidationFailed with a user-facing message
func NewValidationError(message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
	}
}

// Is returns whether target matches any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// MessageOf returns the user-facing message of err if it carries one.
func MessageOf(err error) string {
	var ce *CustomError
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message
	}
	return ""
}
