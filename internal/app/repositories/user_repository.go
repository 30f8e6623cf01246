package repositories

import (
	"context"

	"github.com/yigit/placementportal/internal/app/models"
	"github.com/yigit/placementportal/internal/docstore"
	"github.com/yigit/placementportal/internal/pkg/apperrors"
)

// UserRepository stores profiles keyed by uid
type UserRepository struct {
	c collection[models.UserProfile]
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(store docstore.Store) *UserRepository {
	return &UserRepository{c: collection[models.UserProfile]{
		store:    store,
		name:     CollectionUsers,
		notFound: apperrors.ErrUserNotFound,
		exists:   apperrors.ErrResourceAlreadyExists,
	}}
}

// Create inserts a profile under its uid
func (r *UserRepository) Create(ctx context.Context, profile *models.UserProfile) error {
	return r.c.create(ctx, profile.UID, profile)
}

// GetByUID loads one profile
func (r *UserRepository) GetByUID(ctx context.Context, uid string) (*models.UserProfile, error) {
	return r.c.get(ctx, uid)
}

// List returns every profile in creation order
func (r *UserRepository) List(ctx context.Context) ([]models.UserProfile, error) {
	return r.c.list(ctx)
}

// ListByRole returns the profiles of one role
func (r *UserRepository) ListByRole(ctx context.Context, role models.Role) ([]models.UserProfile, error) {
	return r.c.findBy(ctx, "role", string(role))
}

// FindByRollNumber returns profiles holding a roll number. Roll numbers are
// stored upper-cased.
func (r *UserRepository) FindByRollNumber(ctx context.Context, rollNumber string) ([]models.UserProfile, error) {
	return r.c.findBy(ctx, "rollNumber", rollNumber)
}

// Update merges fields into a profile
func (r *UserRepository) Update(ctx context.Context, uid string, fields map[string]interface{}) error {
	return r.c.update(ctx, uid, fields)
}
