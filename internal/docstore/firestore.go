package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// createdField orders documents by insertion. It is stripped before documents
// leave the store.
const createdField = "__created"

// FirestoreConfig selects the project and credentials of a Firestore backend.
type FirestoreConfig struct {
	ProjectID       string
	CredentialsFile string
	CredentialsJSON string
}

// FirestoreStore maps collections onto top-level Firestore collections.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore initialises a Firebase app and opens its Firestore client.
func NewFirestoreStore(ctx context.Context, cfg FirestoreConfig) (*FirestoreStore, error) {
	var opts []option.ClientOption
	switch {
	case cfg.CredentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("error initializing Firestore client: %w", err)
	}
	return &FirestoreStore{client: client}, nil
}

func (s *FirestoreStore) Create(ctx context.Context, collection, id string, doc interface{}) (string, error) {
	fields, err := ToFields(doc)
	if err != nil {
		return "", err
	}
	if id == "" {
		id = uuid.NewString()
	}
	data := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		data[k] = v
	}
	data[createdField] = time.Now().UTC()

	if _, err := s.client.Collection(collection).Doc(id).Create(ctx, data); err != nil {
		return "", s.mapError("create document", collection, id, err)
	}
	return id, nil
}

func (s *FirestoreStore) Get(ctx context.Context, collection, id string) (*Document, error) {
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		return nil, s.mapError("get document", collection, id, err)
	}
	doc, _, err := snapshotDocument(snap)
	return doc, err
}

func (s *FirestoreStore) List(ctx context.Context, collection string) ([]Document, error) {
	return s.collect(ctx, collection, s.client.Collection(collection).Query)
}

func (s *FirestoreStore) FindBy(ctx context.Context, collection, field, value string) ([]Document, error) {
	q := s.client.Collection(collection).WherePath(firestore.FieldPath{field}, "==", value)
	return s.collect(ctx, collection, q)
}

// collect sorts client side so equality filters need no composite index.
func (s *FirestoreStore) collect(ctx context.Context, collection string, q firestore.Query) ([]Document, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	type item struct {
		doc     Document
		created time.Time
	}
	var items []item
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, s.mapError("list documents", collection, "", err)
		}
		doc, created, err := snapshotDocument(snap)
		if err != nil {
			return nil, err
		}
		items = append(items, item{doc: *doc, created: created})
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].created.Equal(items[j].created) {
			return items[i].doc.ID < items[j].doc.ID
		}
		return items[i].created.Before(items[j].created)
	})

	docs := make([]Document, 0, len(items))
	for _, it := range items {
		docs = append(docs, it.doc)
	}
	return docs, nil
}

func (s *FirestoreStore) Update(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		_, err := s.Get(ctx, collection, id)
		return err
	}
	normalised, err := roundTrip(fields)
	if err != nil {
		return err
	}
	updates := make([]firestore.Update, 0, len(normalised))
	for k, v := range normalised {
		updates = append(updates, firestore.Update{FieldPath: firestore.FieldPath{k}, Value: v})
	}
	if _, err := s.client.Collection(collection).Doc(id).Update(ctx, updates); err != nil {
		return s.mapError("update document", collection, id, err)
	}
	return nil
}

func (s *FirestoreStore) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.client.Collection(collection).Doc(id).Delete(ctx, firestore.Exists); err != nil {
		return s.mapError("delete document", collection, id, err)
	}
	return nil
}

// AddToSet reads and writes inside one Firestore transaction, which Firestore
// retries on contention.
func (s *FirestoreStore) AddToSet(ctx context.Context, collection, id, field, value string, exclusive ...string) error {
	ref := s.client.Collection(collection).Doc(id)
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		done, err := checkSetMembership(snap.Data(), field, value, exclusive)
		if err != nil || done {
			return err
		}
		return tx.Update(ref, []firestore.Update{
			{FieldPath: firestore.FieldPath{field}, Value: firestore.ArrayUnion(value)},
		})
	})
	if err != nil {
		if errors.Is(err, ErrSetConflict) {
			return err
		}
		return s.mapError("add to set", collection, id, err)
	}
	return nil
}

func (s *FirestoreStore) Ping(ctx context.Context) error {
	iter := s.client.Collection("_health").Limit(1).Documents(ctx)
	defer iter.Stop()
	if _, err := iter.Next(); err != nil && !errors.Is(err, iterator.Done) {
		return unavailable("ping", err)
	}
	return nil
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

func (s *FirestoreStore) mapError(op, collection, id string, err error) error {
	switch status.Code(err) {
	case codes.NotFound:
		return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	case codes.AlreadyExists:
		return fmt.Errorf("%w: %s/%s", ErrAlreadyExists, collection, id)
	}
	return unavailable(op, err)
}

func snapshotDocument(snap *firestore.DocumentSnapshot) (*Document, time.Time, error) {
	data := snap.Data()
	created, _ := data[createdField].(time.Time)
	delete(data, createdField)

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, created, fmt.Errorf("encode %s: %w", snap.Ref.ID, err)
	}
	return &Document{ID: snap.Ref.ID, Data: raw}, created, nil
}
