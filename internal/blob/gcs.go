package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSStorage implements Storage using Google Cloud Storage (including Firebase buckets).
type GCSStorage struct {
	client *storage.Client
	bucket string
	prefix string // Optional key prefix (e.g., "media/")
}

// GCSConfig holds configuration for GCSStorage.
type GCSConfig struct {
	Bucket          string
	Prefix          string
	CredentialsFile string // Service account JSON; ADC is used when empty
}

// NewGCSStorage creates a GCS-backed Storage.
func NewGCSStorage(ctx context.Context, cfg GCSConfig) (*GCSStorage, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("gcs bucket is required")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}

	return &GCSStorage{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
	}, nil
}

func (s *GCSStorage) object(key string) *storage.ObjectHandle {
	return s.client.Bucket(s.bucket).Object(s.prefix + key)
}

// Upload streams body into the bucket.
func (s *GCSStorage) Upload(ctx context.Context, key string, body io.Reader, _ int64, contentType string) error {
	w := s.object(key).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, body); err != nil {
		_ = w.Close()
		return unavailable("upload", key, err)
	}
	if err := w.Close(); err != nil {
		return unavailable("upload", key, err)
	}
	return nil
}

// ReadURL issues a V2 signed URL. Unlike V4, V2 accepts expiries past seven days.
func (s *GCSStorage) ReadURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	url, err := s.client.Bucket(s.bucket).SignedURL(s.prefix+key, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV2,
		Method:  http.MethodGet,
		Expires: time.Now().Add(ttl),
	})
	if err != nil {
		return "", unavailable("sign", key, err)
	}
	return url, nil
}

// Delete removes an object from the bucket.
func (s *GCSStorage) Delete(ctx context.Context, key string) error {
	err := s.object(key).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("delete %s: %w", key, ErrNotExist)
	}
	if err != nil {
		return unavailable("delete", key, err)
	}
	return nil
}

// Close closes the GCS client.
func (s *GCSStorage) Close() error {
	return s.client.Close()
}
