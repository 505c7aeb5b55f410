// Package store persists users, the artist/album/song catalog and playlists
// in Postgres. Rows carry blob references as path/url column pairs; the blobs
// themselves live in object storage and are managed by the services.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"socloud/internal/apperr"
	"socloud/internal/models"
)

var (
	// ErrNotFound signals a missing row.
	ErrNotFound = fmt.Errorf("record %w", apperr.ErrNotFound)
	// ErrConstraint signals a unique constraint violation.
	ErrConstraint = fmt.Errorf("unique constraint: %w", apperr.ErrDuplicate)
	// ErrReference signals a foreign key that does not resolve.
	ErrReference = fmt.Errorf("referenced record %w", apperr.ErrNotFound)
)

// Store provides persistence backed by Postgres.
type Store struct {
	db    *sql.DB
	newID func() string
}

// New sets up a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db, newID: uuid.NewString}
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	tx = nil
	return nil
}

// classify maps Postgres constraint failures onto the package sentinels.
func classify(op string, err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return ErrNotFound
	case isUniqueViolation(err):
		return ErrConstraint
	case isForeignKeyViolation(err):
		return ErrReference
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func blobArgs(ref *models.BlobRef) (sql.NullString, sql.NullString) {
	if ref == nil {
		return sql.NullString{}, sql.NullString{}
	}
	return sql.NullString{String: ref.Path, Valid: true}, sql.NullString{String: ref.URL, Valid: true}
}

func blobFromColumns(path, url sql.NullString) *models.BlobRef {
	if !path.Valid || path.String == "" {
		return nil
	}
	return &models.BlobRef{Path: path.String, URL: url.String}
}
