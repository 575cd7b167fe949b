// FILE: pkg/markers/markermemorystore.go

package markers

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// InMemoryCollection is a thread-safe, in-memory implementation of the Collection interface.
type InMemoryCollection struct {
	sync.RWMutex
	records map[string]MarkerRecord
	order   []string
}

// NewInMemoryCollection creates a new in-memory collection.
func NewInMemoryCollection() *InMemoryCollection {
	return &InMemoryCollection{
		records: make(map[string]MarkerRecord),
	}
}

// Seed stores a marker under its existing ID.
func (s *InMemoryCollection) Seed(m Marker) {
	s.Lock()
	defer s.Unlock()
	if _, ok := s.records[m.ID]; !ok {
		s.order = append(s.order, m.ID)
	}
	s.records[m.ID] = m.Record()
}

// Insert saves a record under a generated ID.
func (s *InMemoryCollection) Insert(ctx context.Context, rec MarkerRecord) (string, error) {
	s.Lock()
	defer s.Unlock()
	id := uuid.NewString()
	s.records[id] = rec
	s.order = append(s.order, id)
	return id, nil
}

// List returns all markers in insertion order.
func (s *InMemoryCollection) List(ctx context.Context) ([]Marker, error) {
	s.RLock()
	defer s.RUnlock()

	all := make([]Marker, 0, len(s.order))
	for _, id := range s.order {
		all = append(all, s.records[id].WithID(id))
	}
	return all, nil
}

// Delete removes a record by ID.
func (s *InMemoryCollection) Delete(ctx context.Context, id string) error {
	s.Lock()
	defer s.Unlock()
	if _, ok := s.records[id]; !ok {
		return fmt.Errorf("marker %s: %w", id, ErrNotFound)
	}
	delete(s.records, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

const memoryURLPrefix = "mem://"

// InMemoryBlobStore keeps objects in a map and hands out mem:// references.
type InMemoryBlobStore struct {
	sync.RWMutex
	objects map[string][]byte
}

// NewInMemoryBlobStore creates an empty blob store.
func NewInMemoryBlobStore() *InMemoryBlobStore {
	return &InMemoryBlobStore{
		objects: make(map[string][]byte),
	}
}

func (s *InMemoryBlobStore) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	s.Lock()
	defer s.Unlock()
	s.objects[key] = append([]byte(nil), data...)
	return nil
}

func (s *InMemoryBlobStore) DownloadURL(ctx context.Context, key string) (string, error) {
	s.RLock()
	defer s.RUnlock()
	if _, ok := s.objects[key]; !ok {
		return "", fmt.Errorf("object %s: %w", key, ErrNotFound)
	}
	return memoryURLPrefix + key, nil
}

func (s *InMemoryBlobStore) Delete(ctx context.Context, keyOrURL string) error {
	key := strings.TrimPrefix(keyOrURL, memoryURLPrefix)
	s.Lock()
	defer s.Unlock()
	if _, ok := s.objects[key]; !ok {
		return fmt.Errorf("object %s: %w", key, ErrNotFound)
	}
	delete(s.objects, key)
	return nil
}

// Fetch resolves a key or mem:// reference to the stored bytes.
func (s *InMemoryBlobStore) Fetch(ctx context.Context, keyOrURL string) ([]byte, error) {
	key := strings.TrimPrefix(keyOrURL, memoryURLPrefix)
	s.RLock()
	defer s.RUnlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %s: %w", key, ErrNotFound)
	}
	return append([]byte(nil), data...), nil
}

// Keys lists stored object keys in lexical order.
func (s *InMemoryBlobStore) Keys() []string {
	s.RLock()
	defer s.RUnlock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
