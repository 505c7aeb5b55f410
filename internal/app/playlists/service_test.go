package playlists

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socloud/internal/apperr"
	"socloud/internal/models"
	"socloud/internal/store"
)

type fakeStore struct {
	nextID    int
	playlists map[string]models.Playlist
	songs     map[string]models.Song
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		playlists: map[string]models.Playlist{},
		songs:     map[string]models.Song{"s1": {ID: "s1", Title: "Angel"}, "s2": {ID: "s2", Title: "Teardrop"}},
	}
}

func (f *fakeStore) CreatePlaylist(_ context.Context, userID, title string) (models.Playlist, error) {
	f.nextID++
	p := models.Playlist{ID: fmt.Sprintf("p%d", f.nextID), Title: title, UserID: userID, Songs: []models.Song{}}
	f.playlists[p.ID] = p
	return p, nil
}

func (f *fakeStore) PlaylistByID(_ context.Context, id string) (models.Playlist, error) {
	p, ok := f.playlists[id]
	if !ok {
		return models.Playlist{}, store.ErrNotFound
	}
	return p, nil
}

func (f *fakeStore) PlaylistsByUser(_ context.Context, userID string) ([]models.Playlist, error) {
	var out []models.Playlist
	for _, p := range f.playlists {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) DeletePlaylist(_ context.Context, id string) error {
	if _, ok := f.playlists[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.playlists, id)
	return nil
}

func (f *fakeStore) AddPlaylistSong(_ context.Context, playlistID, songID string) error {
	p, ok := f.playlists[playlistID]
	song, songOK := f.songs[songID]
	if !ok || !songOK {
		return store.ErrReference
	}
	for _, existing := range p.Songs {
		if existing.ID == songID {
			return store.ErrConstraint
		}
	}
	p.Songs = append(p.Songs, song)
	f.playlists[playlistID] = p
	return nil
}

func (f *fakeStore) RemovePlaylistSong(_ context.Context, playlistID, songID string) error {
	p, ok := f.playlists[playlistID]
	if !ok {
		return store.ErrNotFound
	}
	for i, existing := range p.Songs {
		if existing.ID == songID {
			p.Songs = append(p.Songs[:i], p.Songs[i+1:]...)
			f.playlists[playlistID] = p
			return nil
		}
	}
	return store.ErrNotFound
}

func TestPlaylistMembership(t *testing.T) {
	svc := New(newFakeStore())
	ctx := context.Background()

	p, err := svc.Create(ctx, "u1", "Night drive")
	require.NoError(t, err)

	p, err = svc.AddSong(ctx, p.ID, "s1")
	require.NoError(t, err)
	require.Len(t, p.Songs, 1)

	_, err = svc.AddSong(ctx, p.ID, "s1")
	assert.ErrorIs(t, err, apperr.ErrDuplicate)

	_, err = svc.AddSong(ctx, p.ID, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	p, err = svc.RemoveSong(ctx, p.ID, "s1")
	require.NoError(t, err)
	assert.Empty(t, p.Songs)

	_, err = svc.RemoveSong(ctx, p.ID, "s1")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCreateRequiresTitle(t *testing.T) {
	svc := New(newFakeStore())
	_, err := svc.Create(context.Background(), "u1", "  ")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestListAndDelete(t *testing.T) {
	svc := New(newFakeStore())
	ctx := context.Background()

	a, err := svc.Create(ctx, "u1", "A")
	require.NoError(t, err)
	_, err = svc.Create(ctx, "u2", "B")
	require.NoError(t, err)

	mine, err := svc.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "A", mine[0].Title)

	deleted, err := svc.Delete(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, deleted.ID)

	_, err = svc.Get(ctx, a.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = svc.Delete(ctx, a.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
