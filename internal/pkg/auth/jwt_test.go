package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/yigit/placementportal/internal/app/models"
)

func newTestJWT(exp time.Duration) *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  exp,
		RefreshTokenExp: time.Hour,
		TokenIssuer:     "test",
	})
}

func TestJWTService_RoundTrip(t *testing.T) {
	svc := newTestJWT(time.Minute)
	profile := &models.UserProfile{UID: "u1", Email: "a@x.edu", Role: models.RoleClassCoordinator, Department: "CSE", Section: "A"}

	pair, err := svc.GenerateTokenPair(profile)
	if err != nil {
		t.Fatalf("GenerateTokenPair failed: %v", err)
	}
	if pair.RefreshToken == "" || pair.ExpiresIn != 60 {
		t.Errorf("Unexpected token pair: %+v", pair)
	}

	claims, err := svc.ValidateToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.UID != "u1" || claims.Role != "CLASS_COORDINATOR" || claims.Department != "CSE" || claims.Section != "A" {
		t.Errorf("Unexpected claims: %+v", claims)
	}
}

func TestJWTService_RejectsBadTokens(t *testing.T) {
	profile := &models.UserProfile{UID: "u1", Email: "a@x.edu", Role: models.RoleStudent}

	expired, err := newTestJWT(-time.Minute).GenerateTokenPair(profile)
	if err != nil {
		t.Fatalf("GenerateTokenPair failed: %v", err)
	}
	if _, err := newTestJWT(time.Minute).ValidateToken(expired.AccessToken); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("Expected ErrExpiredToken, got %v", err)
	}

	other := NewJWTService(JWTConfig{SecretKey: "other", AccessTokenExp: time.Minute, TokenIssuer: "test"})
	pair, _ := other.GenerateTokenPair(profile)
	if _, err := newTestJWT(time.Minute).ValidateToken(pair.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken for foreign signature, got %v", err)
	}

	if _, err := newTestJWT(time.Minute).ValidateToken(""); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken for empty token, got %v", err)
	}
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{"Bearer abc", "abc", false},
		{"abc", "abc", false},
		{"", "", true},
		{"Bearer ", "", true},
	}
	for _, tt := range tests {
		got, err := ExtractBearerToken(tt.header)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ExtractBearerToken(%q) = %q, %v", tt.header, got, err)
		}
	}
}

func TestGeneratePassword(t *testing.T) {
	p, err := GeneratePassword(12)
	if err != nil {
		t.Fatalf("GeneratePassword failed: %v", err)
	}
	if len(p) != 12 {
		t.Errorf("Expected 12 characters, got %d", len(p))
	}
}
