package blob

import (
	"context"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenDefaultsToMemory(t *testing.T) {
	s, err := Open(context.Background(), Config{})
	require.NoError(t, err)
	_, ok := s.(*MemoryStorage)
	assert.True(t, ok, "expected *MemoryStorage, got %T", s)
}

func TestOpenRejectsUnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), Config{Backend: "ftp"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported storage backend")
}

func TestOpenRequiresBucket(t *testing.T) {
	for _, backend := range []Backend{BackendS3, BackendGCS} {
		_, err := Open(context.Background(), Config{Backend: backend})
		require.Error(t, err, backend)
		assert.Contains(t, err.Error(), "bucket is required")
	}
}

func TestS3ReadURLPresignsWithCappedExpiry(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("AWS_ACCESS_KEY_ID", "test-access")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test-secret")
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(dir, "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(dir, "credentials"))
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")

	s, err := NewS3Storage(context.Background(), S3Config{
		Bucket:   "media",
		Region:   "eu-west-1",
		Endpoint: "http://localhost:9000",
		Prefix:   "dev/",
	})
	require.NoError(t, err)

	raw, err := s.ReadURL(context.Background(), "songs/1/a.mp3", 365*24*time.Hour)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.Equal(t, "/media/dev/songs/1/a.mp3", u.Path)
	assert.Equal(t, "604800", u.Query().Get("X-Amz-Expires"))
}
