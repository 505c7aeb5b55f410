package songs_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socloud/internal/app/songs"
	"socloud/internal/apperr"
	"socloud/internal/media"
	"socloud/internal/models"
	"socloud/internal/store/storetest"
)

func audio(name string) *models.Upload {
	return &models.Upload{Filename: name, ContentType: "audio/mpeg", Size: int64(len(name)), Body: strings.NewReader(name)}
}

func setup(t *testing.T) (songs.Service, *storetest.Catalog, *storetest.Blobs, models.Album) {
	t.Helper()
	ctx := context.Background()
	catalog := storetest.NewCatalog()
	artist, err := catalog.CreateArtist(ctx, models.ArtistFields{Name: "Massive Attack"})
	require.NoError(t, err)
	album, err := catalog.CreateAlbum(ctx, artist.ID, "Mezzanine")
	require.NoError(t, err)

	blobs := storetest.NewBlobs()
	return songs.New(catalog, media.NewManager(blobs, time.Hour)), catalog, blobs, album
}

func TestCreateWithAudio(t *testing.T) {
	svc, catalog, blobs, album := setup(t)

	song, err := svc.Create(context.Background(), album.ID, models.SongFields{Title: "Angel", Duration: 379}, audio("angel.mp3"))
	require.NoError(t, err)
	require.NotNil(t, song.Audio)
	assert.Equal(t, "songs/"+song.ID+"/angel.mp3", song.Audio.Path)
	assert.NotEmpty(t, song.Audio.URL)
	assert.True(t, blobs.Has(song.Audio.Path))
	assert.Equal(t, song.Audio, catalog.Songs[song.ID].Audio)
}

func TestCreatePatchFailureRemovesAudio(t *testing.T) {
	svc, catalog, blobs, album := setup(t)
	errDB := errors.New("db down")
	catalog.FailUpdate = errDB

	_, err := svc.Create(context.Background(), album.ID, models.SongFields{Title: "Angel", Duration: 379}, audio("angel.mp3"))
	assert.ErrorIs(t, err, errDB)
	assert.Empty(t, blobs.Keys())
}

func TestCreateValidation(t *testing.T) {
	svc, _, _, album := setup(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, album.ID, models.SongFields{Title: ""}, nil)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = svc.Create(ctx, album.ID, models.SongFields{Title: "x", Duration: -1}, nil)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = svc.Create(ctx, "missing", models.SongFields{Title: "x"}, nil)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestGetExpandsAlbumAndArtist(t *testing.T) {
	svc, _, _, album := setup(t)
	ctx := context.Background()

	song, err := svc.Create(ctx, album.ID, models.SongFields{Title: "Teardrop"}, nil)
	require.NoError(t, err)

	got, err := svc.Get(ctx, song.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Album)
	require.NotNil(t, got.Album.Artist)
	assert.Equal(t, "Mezzanine", got.Album.AlbumName)
	assert.Equal(t, "Massive Attack", got.Album.Artist.Name)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.NotNil(t, list[0].Album)
}

func TestUpdateReplacesAudio(t *testing.T) {
	svc, _, blobs, album := setup(t)
	ctx := context.Background()

	song, err := svc.Create(ctx, album.ID, models.SongFields{Title: "Angel", Duration: 10}, audio("v1.mp3"))
	require.NoError(t, err)

	updated, err := svc.Update(ctx, song.ID, models.SongPatch{Duration: models.Some(379)}, audio("v2.mp3"))
	require.NoError(t, err)
	assert.Equal(t, "Angel", updated.Title)
	assert.Equal(t, 379, updated.Duration)
	assert.Equal(t, []string{"songs/" + song.ID + "/v2.mp3"}, blobs.Keys())
	assert.Equal(t, []string{"songs/" + song.ID + "/v1.mp3"}, blobs.Deleted)
}

func TestUpdateSameFilenameKeepsBlob(t *testing.T) {
	svc, _, blobs, album := setup(t)
	ctx := context.Background()

	song, err := svc.Create(ctx, album.ID, models.SongFields{Title: "Angel"}, audio("angel.mp3"))
	require.NoError(t, err)

	_, err = svc.Update(ctx, song.ID, models.SongPatch{}, audio("angel.mp3"))
	require.NoError(t, err)
	assert.True(t, blobs.Has(song.Audio.Path))
	assert.Empty(t, blobs.Deleted)
}

func TestUpdateUploadFailureKeepsOldAudio(t *testing.T) {
	svc, catalog, blobs, album := setup(t)
	ctx := context.Background()

	song, err := svc.Create(ctx, album.ID, models.SongFields{Title: "Angel"}, audio("angel.mp3"))
	require.NoError(t, err)

	blobs.FailUpload = true
	_, err = svc.Update(ctx, song.ID, models.SongPatch{Title: models.Some("Angel (live)")}, audio("live.mp3"))
	assert.ErrorIs(t, err, apperr.ErrStorageUnavailable)
	assert.Equal(t, "Angel", catalog.Songs[song.ID].Title)
	assert.True(t, blobs.Has(song.Audio.Path))
}

func TestDelete(t *testing.T) {
	svc, catalog, blobs, album := setup(t)
	ctx := context.Background()

	song, err := svc.Create(ctx, album.ID, models.SongFields{Title: "Angel"}, audio("angel.mp3"))
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, song.ID)
	require.NoError(t, err)
	assert.Equal(t, song.ID, deleted.ID)
	assert.Empty(t, blobs.Keys())
	assert.Empty(t, catalog.Songs)

	_, err = svc.Delete(ctx, song.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDeleteAbortsOnBlobFailure(t *testing.T) {
	svc, catalog, blobs, album := setup(t)
	ctx := context.Background()

	song, err := svc.Create(ctx, album.ID, models.SongFields{Title: "Angel"}, audio("angel.mp3"))
	require.NoError(t, err)
	blobs.FailDelete[song.Audio.Path] = true

	_, err = svc.Delete(ctx, song.ID)
	assert.ErrorIs(t, err, apperr.ErrStorageUnavailable)
	assert.Contains(t, catalog.Songs, song.ID)
}
