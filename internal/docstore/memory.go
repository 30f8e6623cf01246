package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

type memoryEntry struct {
	seq    int64
	fields map[string]interface{}
}

// MemoryStore keeps collections in process memory. It is used for tests and
// single-node local development.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]*memoryEntry
	seq         int64
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]map[string]*memoryEntry)}
}

func (s *MemoryStore) Create(_ context.Context, collection, id string, doc interface{}) (string, error) {
	fields, err := ToFields(doc)
	if err != nil {
		return "", err
	}
	// Normalise through JSON so stored values look like any other backend's.
	fields, err = roundTrip(fields)
	if err != nil {
		return "", err
	}
	if id == "" {
		id = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	col, ok := s.collections[collection]
	if !ok {
		col = make(map[string]*memoryEntry)
		s.collections[collection] = col
	}
	if _, exists := col[id]; exists {
		return "", fmt.Errorf("%w: %s/%s", ErrAlreadyExists, collection, id)
	}
	s.seq++
	col[id] = &memoryEntry{seq: s.seq, fields: fields}
	return id, nil
}

func (s *MemoryStore) Get(_ context.Context, collection, id string) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.collections[collection][id]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	return toDocument(id, entry)
}

func (s *MemoryStore) List(_ context.Context, collection string) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(collection, func(map[string]interface{}) bool { return true })
}

func (s *MemoryStore) FindBy(_ context.Context, collection, field, value string) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(collection, func(fields map[string]interface{}) bool {
		v, ok := fields[field].(string)
		return ok && v == value
	})
}

func (s *MemoryStore) Update(_ context.Context, collection, id string, fields map[string]interface{}) error {
	normalised, err := roundTrip(fields)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.collections[collection][id]
	if !ok {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	for k, v := range normalised {
		entry.fields[k] = v
	}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[collection][id]; !ok {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	delete(s.collections[collection], id)
	return nil
}

func (s *MemoryStore) AddToSet(_ context.Context, collection, id, field, value string, exclusive ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.collections[collection][id]
	if !ok {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	done, err := checkSetMembership(entry.fields, field, value, exclusive)
	if err != nil || done {
		return err
	}
	current, _ := entry.fields[field].([]interface{})
	entry.fields[field] = append(append([]interface{}{}, current...), value)
	return nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) collect(collection string, keep func(map[string]interface{}) bool) ([]Document, error) {
	type item struct {
		id    string
		entry *memoryEntry
	}
	var items []item
	for id, entry := range s.collections[collection] {
		if keep(entry.fields) {
			items = append(items, item{id, entry})
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].entry.seq < items[j].entry.seq })

	docs := make([]Document, 0, len(items))
	for _, it := range items {
		doc, err := toDocument(it.id, it.entry)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, nil
}

func toDocument(id string, entry *memoryEntry) (*Document, error) {
	raw, err := json.Marshal(entry.fields)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", id, err)
	}
	return &Document{ID: id, Data: raw}, nil
}

func roundTrip(fields map[string]interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	out := map[string]interface{}{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return out, nil
}
