package albums_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socloud/internal/app/albums"
	"socloud/internal/apperr"
	"socloud/internal/media"
	"socloud/internal/models"
	"socloud/internal/store/storetest"
)

func file(name string) *models.Upload {
	return &models.Upload{Filename: name, ContentType: "image/png", Size: int64(len(name)), Body: strings.NewReader(name)}
}

func setup(t *testing.T) (albums.Service, *storetest.Catalog, *storetest.Blobs, models.Artist) {
	t.Helper()
	catalog := storetest.NewCatalog()
	blobs := storetest.NewBlobs()
	artist, err := catalog.CreateArtist(context.Background(), models.ArtistFields{Name: "Portishead"})
	require.NoError(t, err)
	return albums.New(catalog, media.NewManager(blobs, time.Hour)), catalog, blobs, artist
}

func TestCreateUnknownArtist(t *testing.T) {
	svc, catalog, blobs, _ := setup(t)

	_, err := svc.Create(context.Background(), "missing", "Dummy", file("c.png"))
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Empty(t, catalog.Albums)
	assert.Empty(t, blobs.Keys())
}

func TestCreatePatchFailureRemovesPicture(t *testing.T) {
	svc, catalog, blobs, artist := setup(t)
	errDB := errors.New("db down")
	catalog.FailUpdate = errDB

	_, err := svc.Create(context.Background(), artist.ID, "Dummy", file("c.png"))
	assert.ErrorIs(t, err, errDB)
	assert.Empty(t, blobs.Keys())
}

func TestCreateValidation(t *testing.T) {
	svc, _, _, artist := setup(t)

	_, err := svc.Create(context.Background(), artist.ID, "", nil)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = svc.Create(context.Background(), "", "Dummy", nil)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestGetExpandsArtistAndSongs(t *testing.T) {
	svc, catalog, _, artist := setup(t)
	ctx := context.Background()

	album, err := svc.Create(ctx, artist.ID, "Dummy", nil)
	require.NoError(t, err)
	_, err = catalog.CreateSong(ctx, album.ID, models.SongFields{Title: "Glory Box", Duration: 306})
	require.NoError(t, err)

	got, err := svc.Get(ctx, album.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Artist)
	assert.Equal(t, "Portishead", got.Artist.Name)
	require.Len(t, got.Songs, 1)
	assert.Equal(t, "Glory Box", got.Songs[0].Title)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Len(t, list[0].Songs, 1)
}

func TestUpdateMovesAlbumAndReplacesPicture(t *testing.T) {
	svc, catalog, blobs, artist := setup(t)
	ctx := context.Background()

	other, err := catalog.CreateArtist(ctx, models.ArtistFields{Name: "Beth Gibbons"})
	require.NoError(t, err)
	album, err := svc.Create(ctx, artist.ID, "Dummy", file("old.png"))
	require.NoError(t, err)

	updated, err := svc.Update(ctx, album.ID, models.AlbumPatch{ArtistID: models.Some(other.ID)}, file("new.png"))
	require.NoError(t, err)
	assert.Equal(t, other.ID, updated.ArtistID)
	assert.Equal(t, "Dummy", updated.AlbumName)
	assert.Equal(t, []string{"albums/" + album.ID + "/new.png"}, blobs.Keys())

	_, err = svc.Update(ctx, album.ID, models.AlbumPatch{ArtistID: models.Some("missing")}, file("newer.png"))
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, []string{"albums/" + album.ID + "/new.png"}, blobs.Keys())
}

func TestDeleteRemovesSongsFirst(t *testing.T) {
	svc, catalog, blobs, artist := setup(t)
	ctx := context.Background()

	album, err := svc.Create(ctx, artist.ID, "Dummy", file("cover.png"))
	require.NoError(t, err)
	for _, title := range []string{"Mysterons", "Sour Times"} {
		song, err := catalog.CreateSong(ctx, album.ID, models.SongFields{Title: title})
		require.NoError(t, err)
		key := media.Key(media.KindSongs, song.ID, title+".mp3")
		blobs.Put(key, title)
		song.Audio = &models.BlobRef{Path: key}
		_, err = catalog.UpdateSong(ctx, song)
		require.NoError(t, err)
	}

	deleted, err := svc.Delete(ctx, album.ID)
	require.NoError(t, err)
	assert.Len(t, deleted.Songs, 2)
	require.Len(t, blobs.Deleted, 3)
	assert.True(t, strings.HasPrefix(blobs.Deleted[0], "songs/"))
	assert.True(t, strings.HasPrefix(blobs.Deleted[1], "songs/"))
	assert.Equal(t, "albums/"+album.ID+"/cover.png", blobs.Deleted[2])
	assert.Empty(t, catalog.Songs)
	assert.Empty(t, catalog.Albums)
	assert.Contains(t, catalog.Artists, artist.ID)
}

func TestDeleteAbortsOnSongBlobFailure(t *testing.T) {
	svc, catalog, blobs, artist := setup(t)
	ctx := context.Background()

	album, err := svc.Create(ctx, artist.ID, "Dummy", file("cover.png"))
	require.NoError(t, err)
	song, err := catalog.CreateSong(ctx, album.ID, models.SongFields{Title: "Roads"})
	require.NoError(t, err)
	song.Audio = &models.BlobRef{Path: "songs/" + song.ID + "/roads.mp3"}
	_, err = catalog.UpdateSong(ctx, song)
	require.NoError(t, err)
	blobs.Put(song.Audio.Path, "roads")
	blobs.FailDelete[song.Audio.Path] = true

	_, err = svc.Delete(ctx, album.ID)
	assert.ErrorIs(t, err, apperr.ErrStorageUnavailable)
	assert.Contains(t, catalog.Albums, album.ID)
	assert.True(t, blobs.Has("albums/"+album.ID+"/cover.png"))
	assert.Empty(t, catalog.Deletions)
}
