// Package blob adapts object storage backends (GCS, S3-compatible, in-memory)
// behind one small interface. A Storage is constructed once at startup and
// passed to everything that stores binary assets.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"socloud/internal/apperr"
)

// ErrNotExist indicates the requested object key is absent.
var ErrNotExist = errors.New("object does not exist")

// Storage is an object store keyed by slash-separated paths.
type Storage interface {
	// Upload streams body to key. size is the content length, or -1 when unknown.
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	// ReadURL issues a signed URL granting read access to key for ttl.
	ReadURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	// Delete removes key. A missing key yields an error wrapping ErrNotExist.
	Delete(ctx context.Context, key string) error
}

func unavailable(op, key string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", apperr.ErrStorageUnavailable, op, key, err)
}
