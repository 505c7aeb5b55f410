// Package albums implements the album lifecycle. Deleting an album removes
// its songs and their audio files.
package albums

import (
	"context"
	"fmt"
	"strings"

	"socloud/internal/apperr"
	"socloud/internal/logging"
	"socloud/internal/media"
	"socloud/internal/models"
)

// Store captures the persistence needs for album workflows.
type Store interface {
	CreateAlbum(ctx context.Context, artistID, albumName string) (models.Album, error)
	AlbumByID(ctx context.Context, id string) (models.Album, error)
	ListAlbums(ctx context.Context) ([]models.Album, error)
	UpdateAlbum(ctx context.Context, album models.Album) (models.Album, error)
	SongsByAlbums(ctx context.Context, albumIDs []string) ([]models.Song, error)
	DeleteAlbumTree(ctx context.Context, id string) error
}

// Service coordinates album-related operations.
type Service interface {
	Create(ctx context.Context, artistID, albumName string, picture *models.Upload) (models.Album, error)
	Get(ctx context.Context, id string) (models.Album, error)
	List(ctx context.Context) ([]models.Album, error)
	Update(ctx context.Context, id string, patch models.AlbumPatch, picture *models.Upload) (models.Album, error)
	Delete(ctx context.Context, id string) (models.Album, error)
}

type service struct {
	store Store
	media *media.Manager
}

// New constructs a Service backed by the provided Store and blob manager.
func New(store Store, mediaManager *media.Manager) Service {
	return &service{store: store, media: mediaManager}
}

func (s *service) Create(ctx context.Context, artistID, albumName string, picture *models.Upload) (models.Album, error) {
	if err := ctx.Err(); err != nil {
		return models.Album{}, err
	}
	if strings.TrimSpace(albumName) == "" {
		return models.Album{}, fmt.Errorf("%w: album name is required", apperr.ErrValidation)
	}
	if artistID == "" {
		return models.Album{}, fmt.Errorf("%w: artist id is required", apperr.ErrValidation)
	}

	album, err := s.store.CreateAlbum(ctx, artistID, albumName)
	if err != nil {
		return models.Album{}, err
	}
	if picture == nil {
		return album, nil
	}

	var created models.Album
	_, err = s.media.AttachAndCommit(ctx, media.KindAlbums, album.ID, picture, func(ref *models.BlobRef) error {
		album.Picture = ref
		var err error
		created, err = s.store.UpdateAlbum(ctx, album)
		return err
	})
	if err != nil {
		logging.WithContext(ctx).Warn().Err(err).Str("album_id", album.ID).Msg("album created without picture")
		return models.Album{}, err
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, id string) (models.Album, error) {
	if err := ctx.Err(); err != nil {
		return models.Album{}, err
	}

	album, err := s.store.AlbumByID(ctx, id)
	if err != nil {
		return models.Album{}, err
	}
	songs, err := s.store.SongsByAlbums(ctx, []string{album.ID})
	if err != nil {
		return models.Album{}, err
	}
	album.Songs = songs
	return album, nil
}

func (s *service) List(ctx context.Context) ([]models.Album, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	albums, err := s.store.ListAlbums(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(albums))
	for _, album := range albums {
		ids = append(ids, album.ID)
	}
	songs, err := s.store.SongsByAlbums(ctx, ids)
	if err != nil {
		return nil, err
	}

	byAlbum := make(map[string][]models.Song, len(albums))
	for _, song := range songs {
		byAlbum[song.AlbumID] = append(byAlbum[song.AlbumID], song)
	}
	for i := range albums {
		albums[i].Songs = byAlbum[albums[i].ID]
	}
	return albums, nil
}

func (s *service) Update(ctx context.Context, id string, patch models.AlbumPatch, picture *models.Upload) (models.Album, error) {
	if err := ctx.Err(); err != nil {
		return models.Album{}, err
	}

	album, err := s.store.AlbumByID(ctx, id)
	if err != nil {
		return models.Album{}, err
	}

	if v, ok := patch.AlbumName.Get(); ok {
		if strings.TrimSpace(v) == "" {
			return models.Album{}, fmt.Errorf("%w: album name is required", apperr.ErrValidation)
		}
		album.AlbumName = v
	}
	if v, ok := patch.ArtistID.Get(); ok && v != album.ArtistID {
		if v == "" {
			return models.Album{}, fmt.Errorf("%w: artist id is required", apperr.ErrValidation)
		}
		album.ArtistID = v
		album.Artist = nil
	}

	if picture == nil {
		return s.store.UpdateAlbum(ctx, album)
	}

	var updated models.Album
	_, err = s.media.Replace(ctx, media.KindAlbums, album.ID, album.Picture, picture, func(ref *models.BlobRef) error {
		album.Picture = ref
		var err error
		updated, err = s.store.UpdateAlbum(ctx, album)
		return err
	})
	if err != nil {
		return models.Album{}, err
	}
	return updated, nil
}

// Delete removes every song audio file and then the album picture before any
// row is deleted.
func (s *service) Delete(ctx context.Context, id string) (models.Album, error) {
	if err := ctx.Err(); err != nil {
		return models.Album{}, err
	}

	album, err := s.store.AlbumByID(ctx, id)
	if err != nil {
		return models.Album{}, err
	}
	songs, err := s.store.SongsByAlbums(ctx, []string{album.ID})
	if err != nil {
		return models.Album{}, err
	}

	refs := make([]*models.BlobRef, 0, len(songs)+1)
	for _, song := range songs {
		refs = append(refs, song.Audio)
	}
	refs = append(refs, album.Picture)

	if err := s.media.ReleaseAll(ctx, refs); err != nil {
		logging.WithContext(ctx).Warn().Err(err).Str("album_id", album.ID).Msg("album delete aborted")
		return models.Album{}, err
	}
	if err := s.store.DeleteAlbumTree(ctx, album.ID); err != nil {
		return models.Album{}, err
	}

	logging.WithContext(ctx).Info().Str("album_id", album.ID).Int("songs", len(songs)).Msg("album deleted")
	album.Songs = songs
	return album, nil
}
