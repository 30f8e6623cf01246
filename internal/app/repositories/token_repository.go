package repositories

import (
	"context"

	"github.com/yigit/placementportal/internal/app/models"
	"github.com/yigit/placementportal/internal/docstore"
	"github.com/yigit/placementportal/internal/pkg/apperrors"
	"github.com/yigit/placementportal/internal/pkg/logger"
)

// TokenRepository stores refresh tokens keyed by their value
type TokenRepository struct {
	c collection[models.RefreshToken]
}

// NewTokenRepository creates a new TokenRepository
func NewTokenRepository(store docstore.Store) *TokenRepository {
	return &TokenRepository{c: collection[models.RefreshToken]{
		store:    store,
		name:     CollectionRefreshTokens,
		notFound: apperrors.ErrTokenNotFound,
		exists:   apperrors.ErrTokenInvalid,
	}}
}

// CreateToken stores a new refresh token
func (r *TokenRepository) CreateToken(ctx context.Context, token *models.RefreshToken) error {
	return r.c.create(ctx, token.Token, token)
}

// GetToken loads a refresh token by value
func (r *TokenRepository) GetToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	return r.c.get(ctx, token)
}

// RevokeToken marks one token as revoked
func (r *TokenRepository) RevokeToken(ctx context.Context, token string) error {
	return r.c.update(ctx, token, map[string]interface{}{"revoked": true})
}

// RevokeAllUserTokens revokes every live token of a user
func (r *TokenRepository) RevokeAllUserTokens(ctx context.Context, uid string) error {
	tokens, err := r.c.findBy(ctx, "uid", uid)
	if err != nil {
		return err
	}
	for _, t := range tokens {
		if t.Revoked {
			continue
		}
		if err := r.RevokeToken(ctx, t.Token); err != nil {
			logger.Error().Err(err).Str("uid", uid).Msg("Error revoking refresh token")
			return err
		}
	}
	return nil
}
