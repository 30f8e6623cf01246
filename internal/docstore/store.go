// Package docstore is the schemaless document collection the portal keeps its
// profiles, drives, trainings and ledger in. Documents are JSON objects keyed by
// a string id inside a named collection.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Store errors
var (
	ErrNotFound      = errors.New("document not found")
	ErrAlreadyExists = errors.New("document already exists")
	// ErrSetConflict is returned by AddToSet when the value is present in one
	// of the exclusive fields.
	ErrSetConflict = errors.New("value present in an exclusive set")
	// ErrUnavailable wraps transport and backend failures.
	ErrUnavailable = errors.New("document store unavailable")
)

// Document is a stored JSON object and its id.
type Document struct {
	ID   string
	Data json.RawMessage
}

// Store is the document-store abstraction shared by every backend.
type Store interface {
	// Create inserts doc under id. An empty id is replaced by a generated one.
	Create(ctx context.Context, collection, id string, doc interface{}) (string, error)
	Get(ctx context.Context, collection, id string) (*Document, error)
	List(ctx context.Context, collection string) ([]Document, error)
	// FindBy returns documents whose top-level field equals value.
	FindBy(ctx context.Context, collection, field, value string) ([]Document, error)
	// Update merges fields into the top level of an existing document.
	Update(ctx context.Context, collection, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, collection, id string) error
	// AddToSet atomically adds value to the string array field unless it is
	// already there. It fails with ErrSetConflict when value is held by any of
	// the exclusive array fields of the same document.
	AddToSet(ctx context.Context, collection, id, field, value string, exclusive ...string) error
	Ping(ctx context.Context) error
	Close() error
}

// Decode unmarshals a document into dst.
func Decode(doc Document, dst interface{}) error {
	if err := json.Unmarshal(doc.Data, dst); err != nil {
		return fmt.Errorf("decode %s: %w", doc.ID, err)
	}
	return nil
}

// ToFields converts a JSON-serialisable value into a field map.
func ToFields(v interface{}) (map[string]interface{}, error) {
	if m, ok := v.(map[string]interface{}); ok {
		return m, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	fields := map[string]interface{}{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("document must encode to a JSON object: %w", err)
	}
	return fields, nil
}

// stringSet reads a JSON array of strings out of a decoded field value.
func stringSet(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func containsString(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// checkSetMembership decides what AddToSet must do for an already loaded document.
// It returns done=true when value is already in field.
func checkSetMembership(fields map[string]interface{}, field, value string, exclusive []string) (done bool, err error) {
	for _, ex := range exclusive {
		if containsString(stringSet(fields[ex]), value) {
			return false, fmt.Errorf("%w: %s already holds %s", ErrSetConflict, ex, value)
		}
	}
	return containsString(stringSet(fields[field]), value), nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}
