package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	appauth "github.com/yigit/placementportal/internal/app/auth"
	"github.com/yigit/placementportal/internal/app/models"
	"github.com/yigit/placementportal/internal/app/models/dto"
	"github.com/yigit/placementportal/internal/app/repositories"
	"github.com/yigit/placementportal/internal/pkg/apperrors"
	"github.com/yigit/placementportal/internal/pkg/auth"
	"github.com/yigit/placementportal/internal/pkg/validation"
)

// AuthService is the identity provider: accounts, sign-in, refresh and sign-out
type AuthService struct {
	accountRepo *repositories.AccountRepository
	tokenRepo   *repositories.TokenRepository
	userRepo    *repositories.UserRepository
	jwtService  *auth.JWTService
	logger      zerolog.Logger
	now         Clock
}

// NewAuthService creates a new AuthService
func NewAuthService(
	accountRepo *repositories.AccountRepository,
	tokenRepo *repositories.TokenRepository,
	userRepo *repositories.UserRepository,
	jwtService *auth.JWTService,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		accountRepo: accountRepo,
		tokenRepo:   tokenRepo,
		userRepo:    userRepo,
		jwtService:  jwtService,
		logger:      logger,
		now:         systemClock,
	}
}

// CreateAccount registers credentials and returns the new uid. The store
// rejects a second account for the same email.
func (s *AuthService) CreateAccount(ctx context.Context, email, password string, role models.Role) (string, error) {
	if !validation.IsEmail(email) {
		return "", apperrors.ErrInvalidEmail
	}
	if len(password) < validation.PasswordMinLength {
		return "", fmt.Errorf("%w: password must be at least %d characters long", apperrors.ErrInvalidPassword, validation.PasswordMinLength)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("error hashing password: %w", err)
	}

	account := &models.Account{
		UID:          uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    s.now(),
	}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		return "", err
	}
	return account.UID, nil
}

// DeleteAccount removes credentials of a provisioning that failed half-way
func (s *AuthService) DeleteAccount(ctx context.Context, email string) error {
	return s.accountRepo.Delete(ctx, email)
}

// Login authenticates a user and issues a token pair
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	account, err := s.accountRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(account.PasswordHash, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if account.Disabled {
		return nil, apperrors.ErrAccountDisabled
	}

	profile, err := s.userRepo.GetByUID(ctx, account.UID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	token, err := s.issueTokens(ctx, profile)
	if err != nil {
		return nil, err
	}

	if err := s.accountRepo.TouchLogin(ctx, account.Email, s.now()); err != nil {
		s.logger.Warn().Err(err).Str("uid", account.UID).Msg("Failed to record last login")
	}

	s.logger.Info().Str("uid", account.UID).Str("role", string(profile.Role)).Msg("User signed in")
	return &dto.AuthResponse{Token: *token, User: profile}, nil
}

// RefreshToken exchanges a refresh token for a new token pair. The old
// refresh token is revoked.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	stored, err := s.tokenRepo.GetToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if stored.Revoked {
		return nil, apperrors.ErrTokenRevoked
	}
	if stored.ExpiresAt.Before(s.now()) {
		_ = s.tokenRepo.RevokeToken(ctx, refreshToken)
		return nil, apperrors.ErrTokenExpired
	}

	profile, err := s.userRepo.GetByUID(ctx, stored.UID)
	if err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}
	account, err := s.accountRepo.GetByEmail(ctx, profile.Email)
	if err != nil {
		return nil, err
	}
	if account.Disabled {
		return nil, apperrors.ErrAccountDisabled
	}

	if err := s.tokenRepo.RevokeToken(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("failed to revoke old token: %w", err)
	}
	return s.issueTokens(ctx, profile)
}

// Logout revokes a refresh token. Unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	err := s.tokenRepo.RevokeToken(ctx, refreshToken)
	if errors.Is(err, apperrors.ErrTokenNotFound) {
		return nil
	}
	return err
}

// ChangePassword replaces the caller's password and revokes their refresh tokens
func (s *AuthService) ChangePassword(ctx context.Context, session appauth.Session, req *dto.ChangePasswordRequest) error {
	account, err := s.accountRepo.GetByEmail(ctx, session.Email)
	if err != nil {
		return err
	}
	if account.UID != session.UID {
		return apperrors.ErrTokenInvalid
	}
	if !auth.CheckPassword(account.PasswordHash, req.CurrentPassword) {
		return apperrors.ErrInvalidCredentials
	}
	if len(req.NewPassword) < validation.PasswordMinLength {
		return fmt.Errorf("%w: password must be at least %d characters long", apperrors.ErrInvalidPassword, validation.PasswordMinLength)
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	if err := s.accountRepo.SetPasswordHash(ctx, account.Email, hash); err != nil {
		return err
	}
	return s.tokenRepo.RevokeAllUserTokens(ctx, account.UID)
}

// SetAccountDisabled blocks or restores sign-in for a visible user
func (s *AuthService) SetAccountDisabled(ctx context.Context, session appauth.Session, uid string, disabled bool) error {
	capability := session.Capability()
	if err := requireCapability(capability.CanManageUsers, "manage users"); err != nil {
		return err
	}
	profile, err := s.userRepo.GetByUID(ctx, uid)
	if err != nil {
		return err
	}
	if !capability.Visible(session, profile) || session.IsSelf(uid) {
		return apperrors.NewForbiddenError("you cannot change this account")
	}
	if err := s.accountRepo.SetDisabled(ctx, profile.Email, disabled); err != nil {
		return err
	}
	if disabled {
		return s.tokenRepo.RevokeAllUserTokens(ctx, uid)
	}
	return nil
}

// CurrentSession describes the caller and their capabilities
func (s *AuthService) CurrentSession(ctx context.Context, session appauth.Session) (*dto.SessionResponse, error) {
	profile, err := s.userRepo.GetByUID(ctx, session.UID)
	if err != nil {
		return nil, err
	}
	c := session.Capability()
	return &dto.SessionResponse{
		UID:        session.UID,
		Email:      session.Email,
		Role:       string(session.Role),
		Department: session.Department,
		Section:    session.Section,
		Capabilities: dto.CapabilityResponse{
			CanManageUsers:     c.CanManageUsers,
			CanManageDrives:    c.CanManageDrives,
			CanManageTrainings: c.CanManageTrainings,
			CanManageRecords:   c.CanManageRecords,
			CanApprove:         c.CanApprove,
			CanImport:          c.CanImport,
			CanRegister:        c.CanRegister,
			Scope:              string(c.Scope),
		},
		Profile: profile,
	}, nil
}

func (s *AuthService) issueTokens(ctx context.Context, profile *models.UserProfile) (*dto.TokenResponse, error) {
	pair, err := s.jwtService.GenerateTokenPair(profile)
	if err != nil {
		return nil, err
	}

	err = s.tokenRepo.CreateToken(ctx, &models.RefreshToken{
		Token:     pair.RefreshToken,
		UID:       profile.UID,
		ExpiresAt: pair.RefreshExpiresAt.UTC(),
		CreatedAt: s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &dto.TokenResponse{
		AccessToken:           pair.AccessToken,
		TokenType:             "Bearer",
		ExpiresIn:             int64(pair.ExpiresIn),
		RefreshToken:          pair.RefreshToken,
		RefreshTokenExpiresIn: int64(pair.RefreshExpiresIn),
	}, nil
}
