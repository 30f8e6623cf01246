package repositories

import (
	"context"
	"time"

	"github.com/yigit/placementportal/internal/app/models"
	"github.com/yigit/placementportal/internal/docstore"
	"github.com/yigit/placementportal/internal/pkg/apperrors"
)

// AccountRepository stores credentials keyed by normalised email
type AccountRepository struct {
	c collection[models.Account]
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(store docstore.Store) *AccountRepository {
	return &AccountRepository{c: collection[models.Account]{
		store:    store,
		name:     CollectionAccounts,
		notFound: apperrors.ErrUserNotFound,
		exists:   apperrors.ErrEmailAlreadyExists,
	}}
}

// Create inserts the account. A second account for the same email fails with
// ErrEmailAlreadyExists.
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	account.Email = models.NormalizeEmail(account.Email)
	return r.c.create(ctx, account.Email, account)
}

// GetByEmail loads the account of an email address
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.c.get(ctx, models.NormalizeEmail(email))
}

// SetPasswordHash replaces the stored password hash
func (r *AccountRepository) SetPasswordHash(ctx context.Context, email, hash string) error {
	return r.c.update(ctx, models.NormalizeEmail(email), map[string]interface{}{"passwordHash": hash})
}

// SetDisabled enables or disables sign-in
func (r *AccountRepository) SetDisabled(ctx context.Context, email string, disabled bool) error {
	return r.c.update(ctx, models.NormalizeEmail(email), map[string]interface{}{"disabled": disabled})
}

// TouchLogin records a successful sign-in
func (r *AccountRepository) TouchLogin(ctx context.Context, email string, at time.Time) error {
	return r.c.update(ctx, models.NormalizeEmail(email), map[string]interface{}{"lastLoginAt": at.UTC()})
}

// Delete removes an account. It is only used to roll back a failed provisioning.
func (r *AccountRepository) Delete(ctx context.Context, email string) error {
	return r.c.delete(ctx, models.NormalizeEmail(email))
}
