// Package artists implements the artist lifecycle. Deleting an artist removes
// its albums and their songs along with every blob they reference.
package artists

import (
	"context"
	"fmt"
	"strings"

	"socloud/internal/apperr"
	"socloud/internal/logging"
	"socloud/internal/media"
	"socloud/internal/models"
)

// Store captures the persistence needs for artist workflows.
type Store interface {
	CreateArtist(ctx context.Context, fields models.ArtistFields) (models.Artist, error)
	ArtistByID(ctx context.Context, id string) (models.Artist, error)
	ListArtists(ctx context.Context) ([]models.Artist, error)
	UpdateArtist(ctx context.Context, artist models.Artist) (models.Artist, error)
	AlbumsByArtist(ctx context.Context, artistID string) ([]models.Album, error)
	SongsByAlbums(ctx context.Context, albumIDs []string) ([]models.Song, error)
	DeleteArtistTree(ctx context.Context, id string) error
}

// Service provides artist-centric operations.
type Service interface {
	Create(ctx context.Context, fields models.ArtistFields, picture *models.Upload) (models.Artist, error)
	Get(ctx context.Context, id string) (models.Artist, error)
	List(ctx context.Context) ([]models.Artist, error)
	Update(ctx context.Context, id string, patch models.ArtistPatch, picture *models.Upload) (models.Artist, error)
	Delete(ctx context.Context, id string) (models.Artist, error)
}

type service struct {
	store Store
	media *media.Manager
}

// New constructs a Service backed by the provided Store and blob manager.
func New(store Store, mediaManager *media.Manager) Service {
	return &service{store: store, media: mediaManager}
}

func (s *service) Create(ctx context.Context, fields models.ArtistFields, picture *models.Upload) (models.Artist, error) {
	if err := ctx.Err(); err != nil {
		return models.Artist{}, err
	}
	if strings.TrimSpace(fields.Name) == "" {
		return models.Artist{}, fmt.Errorf("%w: artist name is required", apperr.ErrValidation)
	}

	artist, err := s.store.CreateArtist(ctx, fields)
	if err != nil {
		return models.Artist{}, err
	}
	if picture == nil {
		return artist, nil
	}

	var created models.Artist
	_, err = s.media.AttachAndCommit(ctx, media.KindArtists, artist.ID, picture, func(ref *models.BlobRef) error {
		artist.Picture = ref
		var err error
		created, err = s.store.UpdateArtist(ctx, artist)
		return err
	})
	if err != nil {
		logging.WithContext(ctx).Warn().Err(err).Str("artist_id", artist.ID).Msg("artist created without picture")
		return models.Artist{}, err
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, id string) (models.Artist, error) {
	if err := ctx.Err(); err != nil {
		return models.Artist{}, err
	}
	return s.store.ArtistByID(ctx, id)
}

func (s *service) List(ctx context.Context) ([]models.Artist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListArtists(ctx)
}

func (s *service) Update(ctx context.Context, id string, patch models.ArtistPatch, picture *models.Upload) (models.Artist, error) {
	if err := ctx.Err(); err != nil {
		return models.Artist{}, err
	}

	artist, err := s.store.ArtistByID(ctx, id)
	if err != nil {
		return models.Artist{}, err
	}

	if v, ok := patch.Name.Get(); ok {
		if strings.TrimSpace(v) == "" {
			return models.Artist{}, fmt.Errorf("%w: artist name is required", apperr.ErrValidation)
		}
		artist.Name = v
	}
	artist.Genre = patch.Genre.Or(artist.Genre)
	artist.Biography = patch.Biography.Or(artist.Biography)

	if picture == nil {
		return s.store.UpdateArtist(ctx, artist)
	}

	var updated models.Artist
	_, err = s.media.Replace(ctx, media.KindArtists, artist.ID, artist.Picture, picture, func(ref *models.BlobRef) error {
		artist.Picture = ref
		var err error
		updated, err = s.store.UpdateArtist(ctx, artist)
		return err
	})
	if err != nil {
		return models.Artist{}, err
	}
	return updated, nil
}

// Delete removes every song audio file, then every album picture, then the
// artist picture. Rows are only deleted once all of those are gone.
func (s *service) Delete(ctx context.Context, id string) (models.Artist, error) {
	if err := ctx.Err(); err != nil {
		return models.Artist{}, err
	}

	artist, err := s.store.ArtistByID(ctx, id)
	if err != nil {
		return models.Artist{}, err
	}

	albums, err := s.store.AlbumsByArtist(ctx, artist.ID)
	if err != nil {
		return models.Artist{}, err
	}
	albumIDs := make([]string, 0, len(albums))
	for _, album := range albums {
		albumIDs = append(albumIDs, album.ID)
	}
	songs, err := s.store.SongsByAlbums(ctx, albumIDs)
	if err != nil {
		return models.Artist{}, err
	}

	refs := make([]*models.BlobRef, 0, len(songs)+len(albums)+1)
	for _, song := range songs {
		refs = append(refs, song.Audio)
	}
	for _, album := range albums {
		refs = append(refs, album.Picture)
	}
	refs = append(refs, artist.Picture)

	if err := s.media.ReleaseAll(ctx, refs); err != nil {
		logging.WithContext(ctx).Warn().Err(err).Str("artist_id", artist.ID).Msg("artist delete aborted")
		return models.Artist{}, err
	}
	if err := s.store.DeleteArtistTree(ctx, artist.ID); err != nil {
		return models.Artist{}, err
	}

	logging.WithContext(ctx).Info().
		Str("artist_id", artist.ID).
		Int("albums", len(albums)).
		Int("songs", len(songs)).
		Msg("artist deleted")
	return artist, nil
}
