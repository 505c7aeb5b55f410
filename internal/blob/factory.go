package blob

import (
	"context"
	"fmt"
)

// Backend names a Storage implementation.
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendS3     Backend = "s3"
	BackendGCS    Backend = "gcs"
)

// Config selects and configures a backend.
type Config struct {
	Backend         Backend
	Bucket          string
	Prefix          string
	Region          string // S3 only
	Endpoint        string // S3 only
	CredentialsFile string // GCS only
}

// Open constructs the configured Storage.
func Open(ctx context.Context, cfg Config) (Storage, error) {
	switch cfg.Backend {
	case BackendMemory, "":
		return NewMemoryStorage(""), nil
	case BackendS3:
		return NewS3Storage(ctx, S3Config{
			Bucket:   cfg.Bucket,
			Region:   cfg.Region,
			Endpoint: cfg.Endpoint,
			Prefix:   cfg.Prefix,
		})
	case BackendGCS:
		return NewGCSStorage(ctx, GCSConfig{
			Bucket:          cfg.Bucket,
			Prefix:          cfg.Prefix,
			CredentialsFile: cfg.CredentialsFile,
		})
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Backend)
	}
}
