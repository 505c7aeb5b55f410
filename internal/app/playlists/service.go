// Package playlists manages user-owned playlists and their song membership.
package playlists

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"socloud/internal/apperr"
	"socloud/internal/models"
	"socloud/internal/store"
)

// Store captures the persistence needs for playlist workflows.
type Store interface {
	CreatePlaylist(ctx context.Context, userID, title string) (models.Playlist, error)
	PlaylistByID(ctx context.Context, id string) (models.Playlist, error)
	PlaylistsByUser(ctx context.Context, userID string) ([]models.Playlist, error)
	DeletePlaylist(ctx context.Context, id string) error
	AddPlaylistSong(ctx context.Context, playlistID, songID string) error
	RemovePlaylistSong(ctx context.Context, playlistID, songID string) error
}

// Service coordinates playlist-related operations.
type Service interface {
	Create(ctx context.Context, userID, title string) (models.Playlist, error)
	ListByUser(ctx context.Context, userID string) ([]models.Playlist, error)
	Get(ctx context.Context, id string) (models.Playlist, error)
	Delete(ctx context.Context, id string) (models.Playlist, error)
	AddSong(ctx context.Context, playlistID, songID string) (models.Playlist, error)
	RemoveSong(ctx context.Context, playlistID, songID string) (models.Playlist, error)
}

type service struct {
	store Store
}

// New constructs a Service backed by the provided Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) Create(ctx context.Context, userID, title string) (models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return models.Playlist{}, err
	}
	if strings.TrimSpace(title) == "" {
		return models.Playlist{}, fmt.Errorf("%w: playlist title is required", apperr.ErrValidation)
	}
	return s.store.CreatePlaylist(ctx, userID, title)
}

func (s *service) ListByUser(ctx context.Context, userID string) ([]models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.PlaylistsByUser(ctx, userID)
}

func (s *service) Get(ctx context.Context, id string) (models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return models.Playlist{}, err
	}
	return s.store.PlaylistByID(ctx, id)
}

func (s *service) Delete(ctx context.Context, id string) (models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return models.Playlist{}, err
	}

	playlist, err := s.store.PlaylistByID(ctx, id)
	if err != nil {
		return models.Playlist{}, err
	}
	if err := s.store.DeletePlaylist(ctx, id); err != nil {
		return models.Playlist{}, err
	}
	return playlist, nil
}

func (s *service) AddSong(ctx context.Context, playlistID, songID string) (models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return models.Playlist{}, err
	}

	err := s.store.AddPlaylistSong(ctx, playlistID, songID)
	switch {
	case errors.Is(err, store.ErrConstraint):
		return models.Playlist{}, fmt.Errorf("%w: song is already in the playlist", apperr.ErrDuplicate)
	case errors.Is(err, store.ErrReference):
		return models.Playlist{}, fmt.Errorf("%w: playlist or song", apperr.ErrNotFound)
	case err != nil:
		return models.Playlist{}, err
	}
	return s.store.PlaylistByID(ctx, playlistID)
}

func (s *service) RemoveSong(ctx context.Context, playlistID, songID string) (models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return models.Playlist{}, err
	}
	if err := s.store.RemovePlaylistSong(ctx, playlistID, songID); err != nil {
		return models.Playlist{}, err
	}
	return s.store.PlaylistByID(ctx, playlistID)
}
