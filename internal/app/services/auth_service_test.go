package services

import (
	"context"
	"errors"
	"testing"

	"github.com/yigit/placementportal/internal/app/models"
	"github.com/yigit/placementportal/internal/app/models/dto"
	"github.com/yigit/placementportal/internal/pkg/apperrors"
)

func TestAuthService_LoginRefreshLogout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addStaff(t, "tpo@college.edu", models.RolePlacementHead, "", "")

	if _, err := f.auth.Login(ctx, &dto.LoginRequest{Email: "tpo@college.edu", Password: "wrong-password"}); !errors.Is(err, apperrors.ErrInvalidCredentials) {
		t.Fatalf("Expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := f.auth.Login(ctx, &dto.LoginRequest{Email: "nobody@college.edu", Password: "password123"}); !errors.Is(err, apperrors.ErrInvalidCredentials) {
		t.Fatalf("Expected unknown emails to look like bad credentials, got %v", err)
	}

	login, err := f.auth.Login(ctx, &dto.LoginRequest{Email: "tpo@college.edu", Password: "password123"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if login.User.Role != models.RolePlacementHead || login.Token.AccessToken == "" {
		t.Fatalf("Unexpected login response: %+v", login)
	}

	refreshed, err := f.auth.RefreshToken(ctx, login.Token.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshToken failed: %v", err)
	}
	if refreshed.RefreshToken == login.Token.RefreshToken {
		t.Errorf("Expected a rotated refresh token")
	}
	if _, err := f.auth.RefreshToken(ctx, login.Token.RefreshToken); !errors.Is(err, apperrors.ErrTokenRevoked) {
		t.Errorf("Expected the old refresh token to be revoked, got %v", err)
	}

	if err := f.auth.Logout(ctx, refreshed.RefreshToken); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if err := f.auth.Logout(ctx, "unknown-token"); err != nil {
		t.Errorf("Expected logout of an unknown token to be a no-op, got %v", err)
	}
	if _, err := f.auth.RefreshToken(ctx, refreshed.RefreshToken); !errors.Is(err, apperrors.ErrTokenRevoked) {
		t.Errorf("Expected a signed-out token to be revoked, got %v", err)
	}
}

func TestAuthService_ChangePasswordAndDisable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.addStaff(t, "cc@college.edu", models.RoleClassCoordinator, "CSE", "A")
	session := sessionOf(user)

	err := f.auth.ChangePassword(ctx, session, &dto.ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "new-password"})
	if !errors.Is(err, apperrors.ErrInvalidCredentials) {
		t.Fatalf("Expected the current password to be checked, got %v", err)
	}
	if err := f.auth.ChangePassword(ctx, session, &dto.ChangePasswordRequest{CurrentPassword: "password123", NewPassword: "new-password"}); err != nil {
		t.Fatalf("ChangePassword failed: %v", err)
	}
	if _, err := f.auth.Login(ctx, &dto.LoginRequest{Email: "cc@college.edu", Password: "new-password"}); err != nil {
		t.Fatalf("Login with the new password failed: %v", err)
	}

	if err := f.auth.SetAccountDisabled(ctx, session, user.UID, true); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Errorf("Expected users not to disable themselves, got %v", err)
	}
	if err := f.auth.SetAccountDisabled(ctx, f.admin, user.UID, true); err != nil {
		t.Fatalf("SetAccountDisabled failed: %v", err)
	}
	if _, err := f.auth.Login(ctx, &dto.LoginRequest{Email: "cc@college.edu", Password: "new-password"}); !errors.Is(err, apperrors.ErrAccountDisabled) {
		t.Errorf("Expected ErrAccountDisabled, got %v", err)
	}

	current, err := f.auth.CurrentSession(ctx, session)
	if err != nil {
		t.Fatalf("CurrentSession failed: %v", err)
	}
	if current.Capabilities.Scope != "SECTION" || !current.Capabilities.CanApprove || current.Capabilities.CanManageDrives {
		t.Errorf("Unexpected capabilities: %+v", current.Capabilities)
	}
}
