package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/placementportal/internal/app/models/dto"
	"github.com/yigit/placementportal/internal/pkg/apperrors"
	"github.com/yigit/placementportal/internal/pkg/logger"
)

type errorMapping struct {
	target  error
	status  int
	code    dto.ErrorCode
	message string
}

// Order matters: specific sentinels come before the generic ones they may also wrap.
var errorMappings = []errorMapping{
	{apperrors.ErrRequestTimeout, http.StatusGatewayTimeout, dto.ErrorCodeTimeout, "Request timed out"},
	{context.DeadlineExceeded, http.StatusGatewayTimeout, dto.ErrorCodeTimeout, "Request timed out"},
	{apperrors.ErrStoreUnavailable, http.StatusServiceUnavailable, dto.ErrorCodeDatabaseError, "Storage is unavailable"},

	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials"},
	{apperrors.ErrAccountDisabled, http.StatusForbidden, dto.ErrorCodeAccountDisabled, "Account is disabled"},
	{apperrors.ErrTokenExpired, http.StatusUnauthorized, dto.ErrorCodeExpiredToken, "Token expired"},
	{apperrors.ErrTokenInvalid, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid token"},
	{apperrors.ErrTokenNotFound, http.StatusUnauthorized, dto.ErrorCodeTokenNotFound, "Token not found"},
	{apperrors.ErrTokenRevoked, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Token revoked"},

	{apperrors.ErrPermissionDenied, http.StatusForbidden, dto.ErrorCodeForbidden, "Permission denied"},
	{apperrors.ErrRoleNotAssignable, http.StatusForbidden, dto.ErrorCodeForbidden, "Role cannot be assigned"},
	{apperrors.ErrProfileNotVerified, http.StatusForbidden, dto.ErrorCodeForbidden, "Profile is not verified"},

	{apperrors.ErrMembershipConflict, http.StatusConflict, dto.ErrorCodeMembershipConflict, "Already registered with the opposite decision"},
	{apperrors.ErrNotEligible, http.StatusBadRequest, dto.ErrorCodeNotEligible, "Not eligible"},
	{apperrors.ErrRegistrationClosed, http.StatusBadRequest, dto.ErrorCodeRegistrationClosed, "Registration is closed"},
	{apperrors.ErrInvalidStatusChange, http.StatusConflict, dto.ErrorCodeInvalidStatus, "Profile status change not allowed"},
	{apperrors.ErrProfileIncomplete, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Profile is incomplete"},
	{apperrors.ErrMissingColumns, http.StatusBadRequest, dto.ErrorCodeMissingColumns, "Missing required columns"},
	{apperrors.ErrUnsupportedFile, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Unsupported file"},
	{apperrors.ErrBatchTooLarge, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Too many rows"},
	{apperrors.ErrInvalidRollNumber, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Invalid roll number"},
	{apperrors.ErrInvalidEmail, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Invalid email"},
	{apperrors.ErrInvalidPassword, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Invalid password"},
	{apperrors.ErrValidationFailed, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed"},
	{apperrors.ErrBadRequest, http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Bad request"},

	{apperrors.ErrEmailAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Email already exists"},
	{apperrors.ErrRollNumberExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Roll number already exists"},
	{apperrors.ErrRecordAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Placement record already exists"},
	{apperrors.ErrResourceAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "Resource already exists"},
	{apperrors.ErrConflict, http.StatusConflict, dto.ErrorCodeConflict, "Conflict"},

	{apperrors.ErrUserNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "User not found"},
	{apperrors.ErrCompanyNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Company drive not found"},
	{apperrors.ErrTrainingNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Training not found"},
	{apperrors.ErrRecordNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Placement record not found"},
	{apperrors.ErrResourceNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"},
}

// HandleAPIError handles common API errors and returns appropriate responses.
// A CustomError message replaces the generic message of its sentinel.
func HandleAPIError(c *gin.Context, err error) {
	status, detail := classify(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(c.Request.Context()).Error().Err(err).Str("path", c.Request.URL.Path).Int("status", status).Msg("Request failed")
	}
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
}

func classify(err error) (int, *dto.ErrorDetail) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		message := m.message
		if custom := apperrors.MessageOf(err); custom != "" {
			message = custom
		}
		detail := dto.NewErrorDetail(m.code, message)
		var ce *apperrors.CustomError
		if errors.As(err, &ce) && ce.Details != nil {
			detail = detail.WithDetails(ce.Details)
		}
		return m.status, detail
	}
	return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
}
