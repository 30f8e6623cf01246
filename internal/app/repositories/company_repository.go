package repositories

import (
	"context"

	"github.com/yigit/placementportal/internal/app/models"
	"github.com/yigit/placementportal/internal/docstore"
	"github.com/yigit/placementportal/internal/pkg/apperrors"
)

// Membership set fields of a drive
const (
	fieldApplicants = "applicants"
	fieldOptedOut   = "optedOut"
)

// CompanyRepository stores drives
type CompanyRepository struct {
	c collection[models.Company]
}

// NewCompanyRepository creates a new CompanyRepository
func NewCompanyRepository(store docstore.Store) *CompanyRepository {
	return &CompanyRepository{c: collection[models.Company]{
		store:    store,
		name:     CollectionCompanies,
		notFound: apperrors.ErrCompanyNotFound,
		exists:   apperrors.ErrResourceAlreadyExists,
	}}
}

// Create inserts a drive under its id
func (r *CompanyRepository) Create(ctx context.Context, company *models.Company) error {
	return r.c.create(ctx, company.ID, company)
}

// GetByID loads one drive
func (r *CompanyRepository) GetByID(ctx context.Context, id string) (*models.Company, error) {
	return r.c.get(ctx, id)
}

// List returns every drive
func (r *CompanyRepository) List(ctx context.Context) ([]models.Company, error) {
	return r.c.list(ctx)
}

// Update merges fields into a drive. Callers never pass membership fields.
func (r *CompanyRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	delete(fields, fieldApplicants)
	delete(fields, fieldOptedOut)
	return r.c.update(ctx, id, fields)
}

// Delete removes a drive
func (r *CompanyRepository) Delete(ctx context.Context, id string) error {
	return r.c.delete(ctx, id)
}

// AddApplicant opts uid in. It is a no-op when uid already opted in and fails
// with ErrMembershipConflict when uid opted out.
func (r *CompanyRepository) AddApplicant(ctx context.Context, id, uid string) error {
	return r.c.addToSet(ctx, id, fieldApplicants, uid, fieldOptedOut)
}

// AddOptedOut opts uid out, symmetric to AddApplicant
func (r *CompanyRepository) AddOptedOut(ctx context.Context, id, uid string) error {
	return r.c.addToSet(ctx, id, fieldOptedOut, uid, fieldApplicants)
}
