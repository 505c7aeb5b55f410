package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"socloud/internal/models"
)

// CreatePlaylist inserts an empty playlist owned by userID.
func (s *Store) CreatePlaylist(ctx context.Context, userID, title string) (models.Playlist, error) {
	playlist := models.Playlist{
		ID:     s.newID(),
		Title:  strings.TrimSpace(title),
		UserID: userID,
		Songs:  []models.Song{},
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO playlists (id, title, user_id)
		VALUES ($1, $2, $3)
	`, playlist.ID, playlist.Title, playlist.UserID); err != nil {
		return models.Playlist{}, classify("insert playlist", err)
	}
	return playlist, nil
}

// PlaylistByID returns the playlist with its songs.
func (s *Store) PlaylistByID(ctx context.Context, id string) (models.Playlist, error) {
	var playlist models.Playlist
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, user_id
		FROM playlists
		WHERE id = $1
	`, id).Scan(&playlist.ID, &playlist.Title, &playlist.UserID)
	if err != nil {
		return models.Playlist{}, classify("select playlist", err)
	}

	songs, err := s.playlistSongs(ctx, []string{playlist.ID})
	if err != nil {
		return models.Playlist{}, err
	}
	playlist.Songs = songs[playlist.ID]
	if playlist.Songs == nil {
		playlist.Songs = []models.Song{}
	}
	return playlist, nil
}

// PlaylistsByUser returns the playlists owned by userID with their songs.
func (s *Store) PlaylistsByUser(ctx context.Context, userID string) ([]models.Playlist, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, user_id
		FROM playlists
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list playlists: %w", err)
	}
	defer rows.Close()

	var (
		playlists []models.Playlist
		ids       []string
	)
	for rows.Next() {
		var playlist models.Playlist
		if err := rows.Scan(&playlist.ID, &playlist.Title, &playlist.UserID); err != nil {
			return nil, fmt.Errorf("scan playlist: %w", err)
		}
		playlists = append(playlists, playlist)
		ids = append(ids, playlist.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlists: %w", err)
	}
	if len(playlists) == 0 {
		return playlists, nil
	}

	songs, err := s.playlistSongs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range playlists {
		playlists[i].Songs = songs[playlists[i].ID]
		if playlists[i].Songs == nil {
			playlists[i].Songs = []models.Song{}
		}
	}
	return playlists, nil
}

// DeletePlaylist removes the playlist and its song links.
func (s *Store) DeletePlaylist(ctx context.Context, id string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM playlist_songs
			WHERE playlist_id = $1
		`, id); err != nil {
			return fmt.Errorf("delete playlist songs: %w", err)
		}

		res, err := tx.ExecContext(ctx, `
			DELETE FROM playlists
			WHERE id = $1
		`, id)
		if err != nil {
			return fmt.Errorf("delete playlist: %w", err)
		}
		return requireAffected(res)
	})
}

// AddPlaylistSong links songID into playlistID. A repeated pair yields
// ErrConstraint; an unknown playlist or song yields ErrReference.
func (s *Store) AddPlaylistSong(ctx context.Context, playlistID, songID string) error {
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO playlist_songs (playlist_id, song_id)
		VALUES ($1, $2)
	`, playlistID, songID); err != nil {
		return classify("insert playlist song", err)
	}
	return nil
}

// RemovePlaylistSong unlinks songID from playlistID.
func (s *Store) RemovePlaylistSong(ctx context.Context, playlistID, songID string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM playlist_songs
		WHERE playlist_id = $1 AND song_id = $2
	`, playlistID, songID)
	if err != nil {
		return fmt.Errorf("delete playlist song: %w", err)
	}
	return requireAffected(res)
}

func (s *Store) playlistSongs(ctx context.Context, playlistIDs []string) (map[string][]models.Song, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ps.playlist_id, s.id, s.title, s.duration, s.album_id, s.audio_path, s.audio_url
		FROM playlist_songs ps
		JOIN songs s ON s.id = ps.song_id
		WHERE ps.playlist_id = ANY($1)
		ORDER BY ps.added_at ASC, s.id ASC
	`, pq.Array(playlistIDs))
	if err != nil {
		return nil, fmt.Errorf("select playlist songs: %w", err)
	}
	defer rows.Close()

	songs := make(map[string][]models.Song, len(playlistIDs))
	for rows.Next() {
		var (
			playlistID          string
			song                models.Song
			audioPath, audioURL sql.NullString
		)
		if err := rows.Scan(&playlistID, &song.ID, &song.Title, &song.Duration, &song.AlbumID, &audioPath, &audioURL); err != nil {
			return nil, fmt.Errorf("scan playlist song: %w", err)
		}
		song.Audio = blobFromColumns(audioPath, audioURL)
		songs[playlistID] = append(songs[playlistID], song)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlist songs: %w", err)
	}
	return songs, nil
}
