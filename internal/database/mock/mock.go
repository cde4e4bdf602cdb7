// Package mock provides an in-memory implementation of database.Store for testing.
package mock

import (
	"context"
	"sort"
	"sync"

	"github.com/kozaktomas/photo-faces/internal/database"
)

// MockStore is an in-memory database.Store with error injection and call counters.
type MockStore struct {
	mu      sync.RWMutex
	records map[string]database.ImageRecord

	// Error injection
	UpsertError error
	GetAllError error
	GetError    error
	ExistsError error
	CountError  error
	DeleteError error

	// Call tracking
	UpsertCalls  int
	DeleteCalls  [][]string
	ExistsCalled []string
}

// NewMockStore creates an empty mock store.
func NewMockStore() *MockStore {
	return &MockStore{records: make(map[string]database.ImageRecord)}
}

// AddRecord seeds a record without counting it as an Upsert call.
func (m *MockStore) AddRecord(record database.ImageRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record.Faces = database.CloneFaces(record.Faces)
	m.records[record.ImageURI] = record
}

// URIs returns the stored URIs sorted alphabetically.
func (m *MockStore) URIs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	uris := make([]string, 0, len(m.records))
	for uri := range m.records {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	return uris
}

// Upsert replaces the record with the same URI.
func (m *MockStore) Upsert(ctx context.Context, record database.ImageRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertCalls++
	if m.UpsertError != nil {
		return m.UpsertError
	}
	record.Faces = database.CloneFaces(record.Faces)
	if record.Faces == nil {
		record.Faces = []database.FaceEntry{}
	}
	m.records[record.ImageURI] = record
	return nil
}

// GetAll returns every record, newest first.
func (m *MockStore) GetAll(ctx context.Context) ([]database.ImageRecord, error) {
	if m.GetAllError != nil {
		return nil, m.GetAllError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	records := make([]database.ImageRecord, 0, len(m.records))
	for _, r := range m.records {
		r.Faces = database.CloneFaces(r.Faces)
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Timestamp != records[j].Timestamp {
			return records[i].Timestamp > records[j].Timestamp
		}
		return records[i].ImageURI < records[j].ImageURI
	})
	return records, nil
}

// Get retrieves a record by URI.
func (m *MockStore) Get(ctx context.Context, uri string) (*database.ImageRecord, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.records[uri]
	if !ok {
		return nil, nil
	}
	r.Faces = database.CloneFaces(r.Faces)
	return &r, nil
}

// Exists checks whether a record exists.
func (m *MockStore) Exists(ctx context.Context, uri string) (bool, error) {
	m.mu.Lock()
	m.ExistsCalled = append(m.ExistsCalled, uri)
	m.mu.Unlock()
	if m.ExistsError != nil {
		return false, m.ExistsError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.records[uri]
	return ok, nil
}

// Count returns the number of records.
func (m *MockStore) Count(ctx context.Context) (int, error) {
	if m.CountError != nil {
		return 0, m.CountError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records), nil
}

// DeleteByURIs removes the given URIs.
func (m *MockStore) DeleteByURIs(ctx context.Context, uris []string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteCalls = append(m.DeleteCalls, append([]string(nil), uris...))
	if m.DeleteError != nil {
		return 0, m.DeleteError
	}
	var n int64
	for _, uri := range uris {
		if _, ok := m.records[uri]; ok {
			delete(m.records, uri)
			n++
		}
	}
	return n, nil
}

// Close is a no-op.
func (m *MockStore) Close() error {
	return nil
}
