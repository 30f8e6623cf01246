package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yigit/placementportal/internal/docstore"
	"github.com/yigit/placementportal/internal/pkg/apperrors"
)

// Collection names
const (
	CollectionAccounts      = "accounts"
	CollectionRefreshTokens = "refresh_tokens"
	CollectionUsers         = "users"
	CollectionCompanies     = "companies"
	CollectionTrainings     = "trainings"
	CollectionRecords       = "placement_records"
)

// Repositories holds all the repository instances
type Repositories struct {
	AccountRepository         *AccountRepository
	TokenRepository           *TokenRepository
	UserRepository            *UserRepository
	CompanyRepository         *CompanyRepository
	TrainingRepository        *TrainingRepository
	PlacementRecordRepository *PlacementRecordRepository
}

// NewRepositories initializes all repositories over one store
func NewRepositories(store docstore.Store) *Repositories {
	return &Repositories{
		AccountRepository:         NewAccountRepository(store),
		TokenRepository:           NewTokenRepository(store),
		UserRepository:            NewUserRepository(store),
		CompanyRepository:         NewCompanyRepository(store),
		TrainingRepository:        NewTrainingRepository(store),
		PlacementRecordRepository: NewPlacementRecordRepository(store),
	}
}

// collection is a typed view over one document collection.
type collection[T any] struct {
	store    docstore.Store
	name     string
	notFound error
	exists   error
}

func (c collection[T]) create(ctx context.Context, id string, v *T) error {
	if _, err := c.store.Create(ctx, c.name, id, v); err != nil {
		return c.mapErr(err)
	}
	return nil
}

func (c collection[T]) get(ctx context.Context, id string) (*T, error) {
	doc, err := c.store.Get(ctx, c.name, id)
	if err != nil {
		return nil, c.mapErr(err)
	}
	var v T
	if err := docstore.Decode(*doc, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (c collection[T]) list(ctx context.Context) ([]T, error) {
	docs, err := c.store.List(ctx, c.name)
	if err != nil {
		return nil, c.mapErr(err)
	}
	return decodeAll[T](docs)
}

func (c collection[T]) findBy(ctx context.Context, field, value string) ([]T, error) {
	docs, err := c.store.FindBy(ctx, c.name, field, value)
	if err != nil {
		return nil, c.mapErr(err)
	}
	return decodeAll[T](docs)
}

// update stamps updatedAt unless the caller set it.
func (c collection[T]) update(ctx context.Context, id string, fields map[string]interface{}) error {
	if _, ok := fields["updatedAt"]; !ok {
		fields["updatedAt"] = time.Now().UTC()
	}
	if err := c.store.Update(ctx, c.name, id, fields); err != nil {
		return c.mapErr(err)
	}
	return nil
}

func (c collection[T]) delete(ctx context.Context, id string) error {
	if err := c.store.Delete(ctx, c.name, id); err != nil {
		return c.mapErr(err)
	}
	return nil
}

func (c collection[T]) addToSet(ctx context.Context, id, field, value string, exclusive ...string) error {
	if err := c.store.AddToSet(ctx, c.name, id, field, value, exclusive...); err != nil {
		return c.mapErr(err)
	}
	return nil
}

func (c collection[T]) mapErr(err error) error {
	return mapStoreError(err, c.notFound, c.exists)
}

func decodeAll[T any](docs []docstore.Document) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		var v T
		if err := docstore.Decode(doc, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// mapStoreError translates store errors into the application taxonomy while
// keeping the original in the chain.
func mapStoreError(err, notFound, exists error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", apperrors.ErrRequestTimeout, err)
	case errors.Is(err, docstore.ErrNotFound):
		return fmt.Errorf("%w: %w", notFound, err)
	case errors.Is(err, docstore.ErrAlreadyExists):
		return fmt.Errorf("%w: %w", exists, err)
	case errors.Is(err, docstore.ErrSetConflict):
		return fmt.Errorf("%w: %w", apperrors.ErrMembershipConflict, err)
	case errors.Is(err, docstore.ErrUnavailable):
		return fmt.Errorf("%w: %w", apperrors.ErrStoreUnavailable, err)
	default:
		return err
	}
}
