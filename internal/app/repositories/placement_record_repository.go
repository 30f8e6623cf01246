package repositories

import (
	"context"

	"github.com/yigit/placementportal/internal/app/models"
	"github.com/yigit/placementportal/internal/docstore"
	"github.com/yigit/placementportal/internal/pkg/apperrors"
)

// PlacementRecordRepository stores the placement ledger
type PlacementRecordRepository struct {
	c collection[models.PlacementRecord]
}

// NewPlacementRecordRepository creates a new PlacementRecordRepository
func NewPlacementRecordRepository(store docstore.Store) *PlacementRecordRepository {
	return &PlacementRecordRepository{c: collection[models.PlacementRecord]{
		store:    store,
		name:     CollectionRecords,
		notFound: apperrors.ErrRecordNotFound,
		exists:   apperrors.ErrRecordAlreadyExists,
	}}
}

// Create inserts a record under its derived id, so the same placement cannot
// be recorded twice.
func (r *PlacementRecordRepository) Create(ctx context.Context, record *models.PlacementRecord) error {
	record.ID = models.RecordID(record.RollNumber, record.CompanyName, record.AcademicYear)
	return r.c.create(ctx, record.ID, record)
}

// GetByID loads one record
func (r *PlacementRecordRepository) GetByID(ctx context.Context, id string) (*models.PlacementRecord, error) {
	return r.c.get(ctx, id)
}

// List returns the whole ledger
func (r *PlacementRecordRepository) List(ctx context.Context) ([]models.PlacementRecord, error) {
	return r.c.list(ctx)
}

// Update merges fields into a record
func (r *PlacementRecordRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.c.update(ctx, id, fields)
}

// Delete removes a record
func (r *PlacementRecordRepository) Delete(ctx context.Context, id string) error {
	return r.c.delete(ctx, id)
}
