package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"socloud/internal/models"
)

// CreateAlbum inserts an album for artistID. An unknown artist yields ErrReference.
func (s *Store) CreateAlbum(ctx context.Context, artistID, albumName string) (models.Album, error) {
	album := models.Album{
		ID:        s.newID(),
		AlbumName: strings.TrimSpace(albumName),
		ArtistID:  artistID,
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO albums (id, album_name, artist_id)
		VALUES ($1, $2, $3)
	`, album.ID, album.AlbumName, album.ArtistID); err != nil {
		return models.Album{}, classify("insert album", err)
	}
	return album, nil
}

// AlbumByID returns the album with its artist populated.
func (s *Store) AlbumByID(ctx context.Context, id string) (models.Album, error) {
	var (
		album                       models.Album
		artist                      models.Artist
		albumPicPath, albumPicURL   sql.NullString
		artistPicPath, artistPicURL sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT al.id, al.album_name, al.artist_id, al.picture_path, al.picture_url,
			ar.id, ar.name, ar.genre, ar.biography, ar.picture_path, ar.picture_url
		FROM albums al
		JOIN artists ar ON ar.id = al.artist_id
		WHERE al.id = $1
	`, id).Scan(&album.ID, &album.AlbumName, &album.ArtistID, &albumPicPath, &albumPicURL,
		&artist.ID, &artist.Name, &artist.Genre, &artist.Biography, &artistPicPath, &artistPicURL)
	if err != nil {
		return models.Album{}, classify("select album", err)
	}
	album.Picture = blobFromColumns(albumPicPath, albumPicURL)
	artist.Picture = blobFromColumns(artistPicPath, artistPicURL)
	album.Artist = &artist
	return album, nil
}

// ListAlbums returns every album.
func (s *Store) ListAlbums(ctx context.Context) ([]models.Album, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, album_name, artist_id, picture_path, picture_url
		FROM albums
		ORDER BY album_name ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("select albums: %w", err)
	}
	defer rows.Close()
	return scanAlbums(rows)
}

// AlbumsByArtist returns the albums owned by artistID.
func (s *Store) AlbumsByArtist(ctx context.Context, artistID string) ([]models.Album, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, album_name, artist_id, picture_path, picture_url
		FROM albums
		WHERE artist_id = $1
		ORDER BY album_name ASC, id ASC
	`, artistID)
	if err != nil {
		return nil, fmt.Errorf("select artist albums: %w", err)
	}
	defer rows.Close()
	return scanAlbums(rows)
}

// UpdateAlbum overwrites the mutable columns of album. Moving it to an
// unknown artist yields ErrReference.
func (s *Store) UpdateAlbum(ctx context.Context, album models.Album) (models.Album, error) {
	picturePath, pictureURL := blobArgs(album.Picture)

	res, err := s.db.ExecContext(ctx, `
		UPDATE albums
		SET album_name = $2, artist_id = $3, picture_path = $4, picture_url = $5
		WHERE id = $1
	`, album.ID, strings.TrimSpace(album.AlbumName), album.ArtistID, picturePath, pictureURL)
	if err != nil {
		return models.Album{}, classify("update album", err)
	}
	if err := requireAffected(res); err != nil {
		return models.Album{}, err
	}
	return album, nil
}

// DeleteAlbumTree removes the album, its songs and their playlist links in
// one transaction.
func (s *Store) DeleteAlbumTree(ctx context.Context, id string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM playlist_songs
			WHERE song_id IN (SELECT id FROM songs WHERE album_id = $1)
		`, id); err != nil {
			return fmt.Errorf("delete playlist songs: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			DELETE FROM songs
			WHERE album_id = $1
		`, id); err != nil {
			return fmt.Errorf("delete songs: %w", err)
		}

		res, err := tx.ExecContext(ctx, `
			DELETE FROM albums
			WHERE id = $1
		`, id)
		if err != nil {
			return fmt.Errorf("delete album: %w", err)
		}
		return requireAffected(res)
	})
}

func scanAlbums(rows *sql.Rows) ([]models.Album, error) {
	var albums []models.Album
	for rows.Next() {
		var (
			album                   models.Album
			picturePath, pictureURL sql.NullString
		)
		if err := rows.Scan(&album.ID, &album.AlbumName, &album.ArtistID, &picturePath, &pictureURL); err != nil {
			return nil, fmt.Errorf("scan album: %w", err)
		}
		album.Picture = blobFromColumns(picturePath, pictureURL)
		albums = append(albums, album)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate albums: %w", err)
	}
	return albums, nil
}
