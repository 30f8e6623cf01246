package dto

import "github.com/yigit/placementportal/internal/app/models"

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken           string `json:"accessToken"`
	TokenType             string `json:"tokenType" example:"Bearer"`
	ExpiresIn             int64  `json:"expiresIn"`
	RefreshToken          string `json:"refreshToken,omitempty"`
	RefreshTokenExpiresIn int64  `json:"refreshTokenExpiresIn,omitempty"`
}

// RefreshTokenRequest carries a refresh token for refresh and logout
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// ChangePasswordRequest changes the signed-in user's password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8,max=72"`
}

// AuthResponse represents successful authentication response
type AuthResponse struct {
	Token TokenResponse       `json:"token"`
	User  *models.UserProfile `json:"user"`
}

// CapabilityResponse lists what the caller's role may do
type CapabilityResponse struct {
	CanManageUsers     bool   `json:"canManageUsers"`
	CanManageDrives    bool   `json:"canManageDrives"`
	CanManageTrainings bool   `json:"canManageTrainings"`
	CanManageRecords   bool   `json:"canManageRecords"`
	CanApprove         bool   `json:"canApprove"`
	CanImport          bool   `json:"canImport"`
	CanRegister        bool   `json:"canRegister"`
	Scope              string `json:"scope"`
}

// SessionResponse is the current-session view
type SessionResponse struct {
	UID          string              `json:"uid"`
	Email        string              `json:"email"`
	Role         string              `json:"role"`
	Department   string              `json:"department,omitempty"`
	Section      string              `json:"section,omitempty"`
	Capabilities CapabilityResponse  `json:"capabilities"`
	Profile      *models.UserProfile `json:"profile,omitempty"`
}
