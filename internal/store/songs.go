package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"socloud/internal/models"
)

const songWithAlbumSelect = `
		SELECT s.id, s.title, s.duration, s.album_id, s.audio_path, s.audio_url,
			al.id, al.album_name, al.artist_id, al.picture_path, al.picture_url,
			ar.id, ar.name, ar.genre, ar.biography, ar.picture_path, ar.picture_url
		FROM songs s
		JOIN albums al ON al.id = s.album_id
		JOIN artists ar ON ar.id = al.artist_id`

// CreateSong inserts a song for albumID. An unknown album yields ErrReference.
func (s *Store) CreateSong(ctx context.Context, albumID string, fields models.SongFields) (models.Song, error) {
	song := models.Song{
		ID:       s.newID(),
		Title:    strings.TrimSpace(fields.Title),
		Duration: fields.Duration,
		AlbumID:  albumID,
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO songs (id, title, duration, album_id)
		VALUES ($1, $2, $3, $4)
	`, song.ID, song.Title, song.Duration, song.AlbumID); err != nil {
		return models.Song{}, classify("insert song", err)
	}
	return song, nil
}

// SongByID returns the song with its album and the album's artist populated.
func (s *Store) SongByID(ctx context.Context, id string) (models.Song, error) {
	row := s.db.QueryRowContext(ctx, songWithAlbumSelect+`
		WHERE s.id = $1
	`, id)
	return scanSongWithAlbum(row)
}

// ListSongs returns every song with its album populated.
func (s *Store) ListSongs(ctx context.Context) ([]models.Song, error) {
	rows, err := s.db.QueryContext(ctx, songWithAlbumSelect+`
		ORDER BY s.title ASC, s.id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("select songs: %w", err)
	}
	defer rows.Close()

	var songs []models.Song
	for rows.Next() {
		song, err := scanSongWithAlbum(rows)
		if err != nil {
			return nil, err
		}
		songs = append(songs, song)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate songs: %w", err)
	}
	return songs, nil
}

// SongsByAlbums returns the songs of every album in albumIDs.
func (s *Store) SongsByAlbums(ctx context.Context, albumIDs []string) ([]models.Song, error) {
	if len(albumIDs) == 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, duration, album_id, audio_path, audio_url
		FROM songs
		WHERE album_id = ANY($1)
		ORDER BY album_id ASC, title ASC, id ASC
	`, pq.Array(albumIDs))
	if err != nil {
		return nil, fmt.Errorf("select album songs: %w", err)
	}
	defer rows.Close()

	var songs []models.Song
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, err
		}
		songs = append(songs, song)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate album songs: %w", err)
	}
	return songs, nil
}

// UpdateSong overwrites the mutable columns of song. Moving it to an unknown
// album yields ErrReference.
func (s *Store) UpdateSong(ctx context.Context, song models.Song) (models.Song, error) {
	audioPath, audioURL := blobArgs(song.Audio)

	res, err := s.db.ExecContext(ctx, `
		UPDATE songs
		SET title = $2, duration = $3, album_id = $4, audio_path = $5, audio_url = $6
		WHERE id = $1
	`, song.ID, strings.TrimSpace(song.Title), song.Duration, song.AlbumID, audioPath, audioURL)
	if err != nil {
		return models.Song{}, classify("update song", err)
	}
	if err := requireAffected(res); err != nil {
		return models.Song{}, err
	}
	return song, nil
}

// DeleteSong removes the song and its playlist links.
func (s *Store) DeleteSong(ctx context.Context, id string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM playlist_songs
			WHERE song_id = $1
		`, id); err != nil {
			return fmt.Errorf("delete playlist songs: %w", err)
		}

		res, err := tx.ExecContext(ctx, `
			DELETE FROM songs
			WHERE id = $1
		`, id)
		if err != nil {
			return fmt.Errorf("delete song: %w", err)
		}
		return requireAffected(res)
	})
}

func scanSong(row rowScanner) (models.Song, error) {
	var (
		song                models.Song
		audioPath, audioURL sql.NullString
	)
	if err := row.Scan(&song.ID, &song.Title, &song.Duration, &song.AlbumID, &audioPath, &audioURL); err != nil {
		return models.Song{}, classify("scan song", err)
	}
	song.Audio = blobFromColumns(audioPath, audioURL)
	return song, nil
}

func scanSongWithAlbum(row rowScanner) (models.Song, error) {
	var (
		song                        models.Song
		album                       models.Album
		artist                      models.Artist
		audioPath, audioURL         sql.NullString
		albumPicPath, albumPicURL   sql.NullString
		artistPicPath, artistPicURL sql.NullString
	)
	if err := row.Scan(&song.ID, &song.Title, &song.Duration, &song.AlbumID, &audioPath, &audioURL,
		&album.ID, &album.AlbumName, &album.ArtistID, &albumPicPath, &albumPicURL,
		&artist.ID, &artist.Name, &artist.Genre, &artist.Biography, &artistPicPath, &artistPicURL); err != nil {
		return models.Song{}, classify("scan song", err)
	}
	song.Audio = blobFromColumns(audioPath, audioURL)
	album.Picture = blobFromColumns(albumPicPath, albumPicURL)
	artist.Picture = blobFromColumns(artistPicPath, artistPicURL)
	album.Artist = &artist
	song.Album = &album
	return song, nil
}
