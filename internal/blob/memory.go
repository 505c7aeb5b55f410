package blob

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sort"
	"sync"
	"time"
)

type memoryObject struct {
	data        []byte
	contentType string
}

// MemoryStorage keeps objects in process memory. It backs local development
// and tests.
type MemoryStorage struct {
	mu      sync.Mutex
	baseURL string
	objects map[string]memoryObject
}

// NewMemoryStorage returns an empty MemoryStorage whose URLs start with baseURL.
func NewMemoryStorage(baseURL string) *MemoryStorage {
	if baseURL == "" {
		baseURL = "memory://objects"
	}
	return &MemoryStorage{baseURL: baseURL, objects: make(map[string]memoryObject)}
}

// Upload stores a copy of body under key.
func (m *MemoryStorage) Upload(_ context.Context, key string, body io.Reader, _ int64, contentType string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return unavailable("upload", key, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = memoryObject{data: data, contentType: contentType}
	return nil
}

// ReadURL returns a URL for key; the key must exist.
func (m *MemoryStorage) ReadURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.objects[key]; !ok {
		return "", fmt.Errorf("sign %s: %w", key, ErrNotExist)
	}
	expires := time.Now().Add(ttl).Unix()
	return fmt.Sprintf("%s/%s?expires=%d", m.baseURL, url.PathEscape(key), expires), nil
}

// Delete removes key.
func (m *MemoryStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.objects[key]; !ok {
		return fmt.Errorf("delete %s: %w", key, ErrNotExist)
	}
	delete(m.objects, key)
	return nil
}

// Has reports whether key is stored.
func (m *MemoryStorage) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}

// Keys lists stored keys in lexical order.
func (m *MemoryStorage) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Content returns the bytes stored under key.
func (m *MemoryStorage) Content(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[key]
	return obj.data, ok
}
