// Package songs implements the song lifecycle around its audio file.
package songs

import (
	"context"
	"fmt"
	"strings"

	"socloud/internal/apperr"
	"socloud/internal/logging"
	"socloud/internal/media"
	"socloud/internal/models"
)

// Store captures the persistence needs for song workflows.
type Store interface {
	CreateSong(ctx context.Context, albumID string, fields models.SongFields) (models.Song, error)
	SongByID(ctx context.Context, id string) (models.Song, error)
	ListSongs(ctx context.Context) ([]models.Song, error)
	UpdateSong(ctx context.Context, song models.Song) (models.Song, error)
	DeleteSong(ctx context.Context, id string) error
}

// Service coordinates song-related operations.
type Service interface {
	Create(ctx context.Context, albumID string, fields models.SongFields, audio *models.Upload) (models.Song, error)
	Get(ctx context.Context, id string) (models.Song, error)
	List(ctx context.Context) ([]models.Song, error)
	Update(ctx context.Context, id string, patch models.SongPatch, audio *models.Upload) (models.Song, error)
	Delete(ctx context.Context, id string) (models.Song, error)
}

type service struct {
	store Store
	media *media.Manager
}

// New constructs a Service backed by the provided Store and blob manager.
func New(store Store, mediaManager *media.Manager) Service {
	return &service{store: store, media: mediaManager}
}

func (s *service) Create(ctx context.Context, albumID string, fields models.SongFields, audio *models.Upload) (models.Song, error) {
	if err := ctx.Err(); err != nil {
		return models.Song{}, err
	}
	if err := validateFields(fields.Title, fields.Duration); err != nil {
		return models.Song{}, err
	}
	if albumID == "" {
		return models.Song{}, fmt.Errorf("%w: album id is required", apperr.ErrValidation)
	}

	song, err := s.store.CreateSong(ctx, albumID, fields)
	if err != nil {
		return models.Song{}, err
	}
	if audio == nil {
		return song, nil
	}

	var created models.Song
	_, err = s.media.AttachAndCommit(ctx, media.KindSongs, song.ID, audio, func(ref *models.BlobRef) error {
		song.Audio = ref
		var err error
		created, err = s.store.UpdateSong(ctx, song)
		return err
	})
	if err != nil {
		logging.WithContext(ctx).Warn().Err(err).Str("song_id", song.ID).Msg("song created without audio")
		return models.Song{}, err
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, id string) (models.Song, error) {
	if err := ctx.Err(); err != nil {
		return models.Song{}, err
	}
	return s.store.SongByID(ctx, id)
}

func (s *service) List(ctx context.Context) ([]models.Song, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListSongs(ctx)
}

func (s *service) Update(ctx context.Context, id string, patch models.SongPatch, audio *models.Upload) (models.Song, error) {
	if err := ctx.Err(); err != nil {
		return models.Song{}, err
	}

	song, err := s.store.SongByID(ctx, id)
	if err != nil {
		return models.Song{}, err
	}

	song.Title = patch.Title.Or(song.Title)
	song.Duration = patch.Duration.Or(song.Duration)
	if err := validateFields(song.Title, song.Duration); err != nil {
		return models.Song{}, err
	}
	if v, ok := patch.AlbumID.Get(); ok && v != song.AlbumID {
		if v == "" {
			return models.Song{}, fmt.Errorf("%w: album id is required", apperr.ErrValidation)
		}
		song.AlbumID = v
		song.Album = nil
	}

	if audio == nil {
		return s.store.UpdateSong(ctx, song)
	}

	var updated models.Song
	_, err = s.media.Replace(ctx, media.KindSongs, song.ID, song.Audio, audio, func(ref *models.BlobRef) error {
		song.Audio = ref
		var err error
		updated, err = s.store.UpdateSong(ctx, song)
		return err
	})
	if err != nil {
		return models.Song{}, err
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id string) (models.Song, error) {
	if err := ctx.Err(); err != nil {
		return models.Song{}, err
	}

	song, err := s.store.SongByID(ctx, id)
	if err != nil {
		return models.Song{}, err
	}
	if err := s.media.Release(ctx, song.Audio); err != nil {
		logging.WithContext(ctx).Warn().Err(err).Str("song_id", song.ID).Msg("song delete aborted")
		return models.Song{}, err
	}
	if err := s.store.DeleteSong(ctx, song.ID); err != nil {
		return models.Song{}, err
	}
	return song, nil
}

func validateFields(title string, duration int) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: song title is required", apperr.ErrValidation)
	}
	if duration < 0 {
		return fmt.Errorf("%w: duration must not be negative", apperr.ErrValidation)
	}
	return nil
}
