// ABOUTME: Mock Store implementation for testing
// ABOUTME: Allows tests to run without SQLite and to inject I/O failures

package store

import (
	"context"
	"sync"
)

// MockStore is an in-memory Store implementation for testing.
type MockStore struct {
	mu      sync.RWMutex
	buckets map[string][]byte

	// GetErr and PutErr, when set, are returned by the corresponding
	// operation to simulate persistence failures.
	GetErr error
	PutErr error
}

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		buckets: make(map[string][]byte),
	}
}

// Get returns the blob stored under bucket, or ErrNotFound.
func (m *MockStore) Get(ctx context.Context, bucket string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.GetErr != nil {
		return nil, m.GetErr
	}
	blob, ok := m.buckets[bucket]
	if !ok {
		return nil, ErrNotFound
	}
	// Make a copy to avoid external modification
	out := make([]byte, len(blob))
	copy(out, blob)
	return out, nil
}

// Put creates or replaces the blob stored under bucket.
func (m *MockStore) Put(ctx context.Context, bucket string, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.PutErr != nil {
		return m.PutErr
	}
	stored := make([]byte, len(blob))
	copy(stored, blob)
	m.buckets[bucket] = stored
	return nil
}

// Delete removes a bucket.
func (m *MockStore) Delete(ctx context.Context, bucket string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.buckets, bucket)
	return nil
}

// Close is a no-op for the mock.
func (m *MockStore) Close() error {
	return nil
}
