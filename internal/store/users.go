package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"socloud/internal/models"
)

const userColumns = `id, email, password_hash, first_name, last_name, role, picture_path, picture_url, created_at, updated_at`

// CreateUser inserts u with a fresh identifier. A taken email yields ErrConstraint.
func (s *Store) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	u.ID = s.newID()
	u.Email = strings.TrimSpace(strings.ToLower(u.Email))
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	picturePath, pictureURL := blobArgs(u.Picture)

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (id, email, password_hash, first_name, last_name, role, picture_path, picture_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`, u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName, string(u.Role), picturePath, pictureURL).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return models.User{}, classify("insert user", err)
	}
	return u, nil
}

// UserByID returns the user identified by id.
func (s *Store) UserByID(ctx context.Context, id string) (models.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, id)
	return scanUser(row)
}

// UserByEmail returns the user registered with email.
func (s *Store) UserByEmail(ctx context.Context, email string) (models.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1
	`, strings.TrimSpace(strings.ToLower(email)))
	return scanUser(row)
}

// ListUsers returns every user ordered by registration time.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

// UpdateUser overwrites the mutable columns of u.
func (s *Store) UpdateUser(ctx context.Context, u models.User) (models.User, error) {
	picturePath, pictureURL := blobArgs(u.Picture)

	err := s.db.QueryRowContext(ctx, `
		UPDATE users
		SET password_hash = $2, first_name = $3, last_name = $4, role = $5,
			picture_path = $6, picture_url = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`, u.ID, u.PasswordHash, u.FirstName, u.LastName, string(u.Role), picturePath, pictureURL).Scan(&u.UpdatedAt)
	if err != nil {
		return models.User{}, classify("update user", err)
	}
	return u, nil
}

// DeleteUser removes the user together with the playlists it owns.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM playlist_songs
			WHERE playlist_id IN (SELECT id FROM playlists WHERE user_id = $1)
		`, id); err != nil {
			return fmt.Errorf("delete playlist songs: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			DELETE FROM playlists
			WHERE user_id = $1
		`, id); err != nil {
			return fmt.Errorf("delete playlists: %w", err)
		}

		res, err := tx.ExecContext(ctx, `
			DELETE FROM users
			WHERE id = $1
		`, id)
		if err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return requireAffected(res)
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (models.User, error) {
	var (
		u                       models.User
		role                    string
		picturePath, pictureURL sql.NullString
	)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &role,
		&picturePath, &pictureURL, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return models.User{}, classify("scan user", err)
	}
	u.Role = models.Role(role)
	u.Picture = blobFromColumns(picturePath, pictureURL)
	return u, nil
}
