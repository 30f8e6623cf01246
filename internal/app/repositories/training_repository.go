package repositories

import (
	"context"

	"github.com/yigit/placementportal/internal/app/models"
	"github.com/yigit/placementportal/internal/docstore"
	"github.com/yigit/placementportal/internal/pkg/apperrors"
)

// TrainingRepository stores trainings
type TrainingRepository struct {
	c collection[models.Training]
}

// NewTrainingRepository creates a new TrainingRepository
func NewTrainingRepository(store docstore.Store) *TrainingRepository {
	return &TrainingRepository{c: collection[models.Training]{
		store:    store,
		name:     CollectionTrainings,
		notFound: apperrors.ErrTrainingNotFound,
		exists:   apperrors.ErrResourceAlreadyExists,
	}}
}

// Create inserts a training under its id
func (r *TrainingRepository) Create(ctx context.Context, training *models.Training) error {
	return r.c.create(ctx, training.ID, training)
}

// GetByID loads one training
func (r *TrainingRepository) GetByID(ctx context.Context, id string) (*models.Training, error) {
	return r.c.get(ctx, id)
}

// List returns every training
func (r *TrainingRepository) List(ctx context.Context) ([]models.Training, error) {
	return r.c.list(ctx)
}

// Update merges fields into a training
func (r *TrainingRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	delete(fields, "participants")
	return r.c.update(ctx, id, fields)
}

// Delete removes a training
func (r *TrainingRepository) Delete(ctx context.Context, id string) error {
	return r.c.delete(ctx, id)
}

// AddParticipant enrols uid; repeating it is a no-op
func (r *TrainingRepository) AddParticipant(ctx context.Context, id, uid string) error {
	return r.c.addToSet(ctx, id, "participants", uid)
}
