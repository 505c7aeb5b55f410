// Package media keeps entity rows and their binary assets coherent: it
// uploads new blobs, issues their read URLs, and removes blobs that rows no
// longer reference.
package media

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"socloud/internal/apperr"
	"socloud/internal/blob"
	"socloud/internal/logging"
	"socloud/internal/models"
)

// DefaultURLTTL is the lifetime of read URLs stored on rows.
const DefaultURLTTL = 365 * 24 * time.Hour

const maxFilenameLength = 255

// Kind is the top-level storage folder of an entity type.
type Kind string

const (
	KindUsers   Kind = "users"
	KindArtists Kind = "artists"
	KindAlbums  Kind = "albums"
	KindSongs   Kind = "songs"
)

// Manager attaches, replaces and releases blobs on top of a blob.Storage.
type Manager struct {
	storage blob.Storage
	urlTTL  time.Duration
}

// NewManager returns a Manager. A non-positive urlTTL selects DefaultURLTTL.
func NewManager(storage blob.Storage, urlTTL time.Duration) *Manager {
	if urlTTL <= 0 {
		urlTTL = DefaultURLTTL
	}
	return &Manager{storage: storage, urlTTL: urlTTL}
}

// Key returns the storage key for a file owned by ownerID.
func Key(kind Kind, ownerID, filename string) string {
	return string(kind) + "/" + ownerID + "/" + SanitizeFilename(filename)
}

// SanitizeFilename reduces filename to a single safe path segment.
func SanitizeFilename(filename string) string {
	filename = strings.ReplaceAll(filename, "\\", "/")
	filename = filepath.Base(strings.TrimSpace(filename))

	for _, bad := range []string{"..", "/", "<", ">", ":", "\"", "|", "?", "*"} {
		filename = strings.ReplaceAll(filename, bad, "_")
	}
	if filename == "" || filename == "." || filename == "_" {
		return "upload"
	}

	if len(filename) > maxFilenameLength {
		ext := filepath.Ext(filename)
		if len(ext) > 16 {
			ext = ""
		}
		filename = filename[:maxFilenameLength-len(ext)] + ext
	}
	return filename
}

// Attach uploads up under the owner's folder and returns a reference to it.
// A nil upload returns a nil reference.
func (m *Manager) Attach(ctx context.Context, kind Kind, ownerID string, up *models.Upload) (*models.BlobRef, error) {
	if up == nil {
		return nil, nil
	}
	if up.Body == nil {
		return nil, fmt.Errorf("%w: upload has no content", apperr.ErrValidation)
	}

	key := Key(kind, ownerID, up.Filename)
	if err := m.storage.Upload(ctx, key, up.Body, up.Size, up.ContentType); err != nil {
		return nil, storageError("upload", key, err)
	}

	url, err := m.storage.ReadURL(ctx, key, m.urlTTL)
	if err != nil {
		return nil, storageError("sign", key, err)
	}
	return &models.BlobRef{Path: key, URL: url}, nil
}

// AttachAndCommit uploads up and calls commit with the new reference so the
// caller can point its freshly created row at it. When commit fails the blob
// is removed again. A nil upload skips both steps and returns a nil reference.
func (m *Manager) AttachAndCommit(ctx context.Context, kind Kind, ownerID string, up *models.Upload, commit func(*models.BlobRef) error) (*models.BlobRef, error) {
	ref, err := m.Attach(ctx, kind, ownerID, up)
	if err != nil || ref == nil {
		return nil, err
	}

	if err := commit(ref); err != nil {
		if relErr := m.Release(ctx, ref); relErr != nil {
			logging.WithContext(ctx).Warn().Err(relErr).Str("path", ref.Path).Msg("orphaned upload after failed create")
		}
		return nil, err
	}
	return ref, nil
}

// Replace uploads up, then calls commit with the new reference so the caller
// can point its row at it, and finally releases old. When commit fails the
// new blob is removed and old is left untouched. A failure to release old
// after a successful commit is logged and does not fail the replace.
func (m *Manager) Replace(ctx context.Context, kind Kind, ownerID string, old *models.BlobRef, up *models.Upload, commit func(*models.BlobRef) error) (*models.BlobRef, error) {
	next, err := m.Attach(ctx, kind, ownerID, up)
	if err != nil {
		return nil, err
	}

	samePath := old != nil && next != nil && old.Path == next.Path
	if err := commit(next); err != nil {
		if !samePath {
			if relErr := m.Release(ctx, next); relErr != nil {
				logging.WithContext(ctx).Warn().Err(relErr).Str("path", next.Path).Msg("orphaned upload after failed update")
			}
		}
		return nil, err
	}

	if !samePath {
		if err := m.Release(ctx, old); err != nil {
			logging.WithContext(ctx).Warn().Err(err).Str("path", old.Path).Msg("previous blob was not deleted")
		}
	}
	return next, nil
}

// Release deletes the blob behind ref. A nil ref and a missing object both succeed.
func (m *Manager) Release(ctx context.Context, ref *models.BlobRef) error {
	if ref == nil || ref.Path == "" {
		return nil
	}
	err := m.storage.Delete(ctx, ref.Path)
	if err == nil || errors.Is(err, blob.ErrNotExist) {
		return nil
	}
	return storageError("delete", ref.Path, err)
}

// ReleaseAll deletes refs in order and stops at the first failure.
func (m *Manager) ReleaseAll(ctx context.Context, refs []*models.BlobRef) error {
	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := m.Release(ctx, ref); err != nil {
			return err
		}
	}
	return nil
}

func storageError(op, key string, err error) error {
	if errors.Is(err, apperr.ErrStorageUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %s %s: %w", apperr.ErrStorageUnavailable, op, key, err)
}
