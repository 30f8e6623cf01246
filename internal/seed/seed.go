package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	appauth "github.com/yigit/placementportal/internal/app/auth"
	"github.com/yigit/placementportal/internal/app/models"
	"github.com/yigit/placementportal/internal/app/models/dto"
	"github.com/yigit/placementportal/internal/app/services"
	"github.com/yigit/placementportal/internal/config"
	"github.com/yigit/placementportal/internal/pkg/apperrors"
	"github.com/yigit/placementportal/internal/pkg/auth"
)

// systemSession provisions the first administrator
var systemSession = appauth.Session{UID: "system", Role: models.RoleAdmin}

// CreateDefaultAdmin provisions the configured administrator when no account
// exists for its email. Without a configured password one is generated and
// logged once.
func CreateDefaultAdmin(ctx context.Context, cfg *config.Config, userService *services.UserService, lgr zerolog.Logger) error {
	if cfg.Admin.Email == "" {
		lgr.Debug().Msg("No admin email configured, skipping admin seed")
		return nil
	}

	password := cfg.Admin.Password
	generated := false
	if password == "" {
		var err error
		if password, err = auth.GeneratePassword(16); err != nil {
			return fmt.Errorf("failed to generate admin password: %w", err)
		}
		generated = true
	}

	profile, err := userService.CreateUser(ctx, systemSession, &dto.CreateUserRequest{
		Email:       cfg.Admin.Email,
		DisplayName: cfg.Admin.Name,
		Role:        string(models.RoleAdmin),
		Password:    password,
	})
	if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
		lgr.Debug().Str("email", cfg.Admin.Email).Msg("Admin account already exists")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create admin account: %w", err)
	}

	event := lgr.Info().Str("uid", profile.UID).Str("email", profile.Email)
	if generated {
		event = lgr.Warn().Str("uid", profile.UID).Str("email", profile.Email).Str("password", password)
	}
	event.Msg("Default admin account created")
	return nil
}
