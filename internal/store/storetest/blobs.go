package storetest

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"socloud/internal/blob"
)

// ErrInjected is returned by Blobs for operations configured to fail.
var ErrInjected = errors.New("injected storage failure")

// Blobs wraps a MemoryStorage, recording deletions and failing on demand.
type Blobs struct {
	*blob.MemoryStorage

	mu         sync.Mutex
	Deleted    []string
	FailUpload bool
	FailDelete map[string]bool
}

// NewBlobs returns an empty Blobs.
func NewBlobs() *Blobs {
	return &Blobs{MemoryStorage: blob.NewMemoryStorage(""), FailDelete: map[string]bool{}}
}

// Put stores content under key directly, for seeding tests.
func (b *Blobs) Put(key, content string) {
	_ = b.MemoryStorage.Upload(context.Background(), key, strings.NewReader(content), int64(len(content)), "application/octet-stream")
}

func (b *Blobs) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	b.mu.Lock()
	fail := b.FailUpload
	b.mu.Unlock()
	if fail {
		return ErrInjected
	}
	return b.MemoryStorage.Upload(ctx, key, body, size, contentType)
}

func (b *Blobs) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	fail := b.FailDelete[key]
	b.mu.Unlock()
	if fail {
		return ErrInjected
	}
	if err := b.MemoryStorage.Delete(ctx, key); err != nil {
		return err
	}
	b.mu.Lock()
	b.Deleted = append(b.Deleted, key)
	b.mu.Unlock()
	return nil
}
