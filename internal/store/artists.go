package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"socloud/internal/models"
)

// CreateArtist inserts an artist without a picture.
func (s *Store) CreateArtist(ctx context.Context, fields models.ArtistFields) (models.Artist, error) {
	artist := models.Artist{
		ID:        s.newID(),
		Name:      strings.TrimSpace(fields.Name),
		Genre:     strings.TrimSpace(fields.Genre),
		Biography: fields.Biography,
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO artists (id, name, genre, biography)
		VALUES ($1, $2, $3, $4)
	`, artist.ID, artist.Name, artist.Genre, artist.Biography); err != nil {
		return models.Artist{}, classify("insert artist", err)
	}
	return artist, nil
}

// ArtistByID returns the artist with summaries of its albums.
func (s *Store) ArtistByID(ctx context.Context, id string) (models.Artist, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, genre, biography, picture_path, picture_url
		FROM artists
		WHERE id = $1
	`, id)
	artist, err := scanArtist(row)
	if err != nil {
		return models.Artist{}, err
	}

	summaries, err := s.albumSummaries(ctx, []string{artist.ID})
	if err != nil {
		return models.Artist{}, err
	}
	artist.Albums = summaries[artist.ID]
	return artist, nil
}

// ListArtists returns every artist with summaries of its albums.
func (s *Store) ListArtists(ctx context.Context) ([]models.Artist, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, genre, biography, picture_path, picture_url
		FROM artists
		ORDER BY name ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("select artists: %w", err)
	}
	defer rows.Close()

	var (
		artists []models.Artist
		ids     []string
	)
	for rows.Next() {
		artist, err := scanArtist(rows)
		if err != nil {
			return nil, err
		}
		artists = append(artists, artist)
		ids = append(ids, artist.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate artists: %w", err)
	}
	if len(artists) == 0 {
		return artists, nil
	}

	summaries, err := s.albumSummaries(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range artists {
		artists[i].Albums = summaries[artists[i].ID]
	}
	return artists, nil
}

// UpdateArtist overwrites the mutable columns of artist.
func (s *Store) UpdateArtist(ctx context.Context, artist models.Artist) (models.Artist, error) {
	picturePath, pictureURL := blobArgs(artist.Picture)

	res, err := s.db.ExecContext(ctx, `
		UPDATE artists
		SET name = $2, genre = $3, biography = $4, picture_path = $5, picture_url = $6
		WHERE id = $1
	`, artist.ID, strings.TrimSpace(artist.Name), strings.TrimSpace(artist.Genre), artist.Biography, picturePath, pictureURL)
	if err != nil {
		return models.Artist{}, classify("update artist", err)
	}
	if err := requireAffected(res); err != nil {
		return models.Artist{}, err
	}
	return artist, nil
}

// DeleteArtistTree removes the artist, its albums, their songs and every
// playlist link to those songs in one transaction.
func (s *Store) DeleteArtistTree(ctx context.Context, id string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM playlist_songs
			WHERE song_id IN (
				SELECT s.id FROM songs s JOIN albums a ON a.id = s.album_id WHERE a.artist_id = $1
			)
		`, id); err != nil {
			return fmt.Errorf("delete playlist songs: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			DELETE FROM songs
			WHERE album_id IN (SELECT id FROM albums WHERE artist_id = $1)
		`, id); err != nil {
			return fmt.Errorf("delete songs: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			DELETE FROM albums
			WHERE artist_id = $1
		`, id); err != nil {
			return fmt.Errorf("delete albums: %w", err)
		}

		res, err := tx.ExecContext(ctx, `
			DELETE FROM artists
			WHERE id = $1
		`, id)
		if err != nil {
			return fmt.Errorf("delete artist: %w", err)
		}
		return requireAffected(res)
	})
}

func (s *Store) albumSummaries(ctx context.Context, artistIDs []string) (map[string][]models.AlbumSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, album_name, artist_id
		FROM albums
		WHERE artist_id = ANY($1)
		ORDER BY album_name ASC, id ASC
	`, pq.Array(artistIDs))
	if err != nil {
		return nil, fmt.Errorf("select album summaries: %w", err)
	}
	defer rows.Close()

	summaries := make(map[string][]models.AlbumSummary, len(artistIDs))
	for rows.Next() {
		var (
			summary  models.AlbumSummary
			artistID string
		)
		if err := rows.Scan(&summary.ID, &summary.AlbumName, &artistID); err != nil {
			return nil, fmt.Errorf("scan album summary: %w", err)
		}
		summaries[artistID] = append(summaries[artistID], summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate album summaries: %w", err)
	}
	return summaries, nil
}

func scanArtist(row rowScanner) (models.Artist, error) {
	var (
		artist                  models.Artist
		picturePath, pictureURL sql.NullString
	)
	if err := row.Scan(&artist.ID, &artist.Name, &artist.Genre, &artist.Biography, &picturePath, &pictureURL); err != nil {
		return models.Artist{}, classify("scan artist", err)
	}
	artist.Picture = blobFromColumns(picturePath, pictureURL)
	return artist, nil
}
