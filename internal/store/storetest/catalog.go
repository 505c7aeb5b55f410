// Package storetest provides an in-memory catalog store with the same error
// contract as the Postgres store, for service tests.
package storetest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"socloud/internal/models"
	"socloud/internal/store"
)

// Catalog holds artists, albums and songs in maps. Row deletions are
// recorded in Deletions as "<kind>:<id>" in the order they happen. When
// FailUpdate is set, every Update* call returns it.
type Catalog struct {
	mu         sync.Mutex
	seq        int
	Artists    map[string]models.Artist
	Albums     map[string]models.Album
	Songs      map[string]models.Song
	Deletions  []string
	FailUpdate error
}

// NewCatalog returns an empty Catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		Artists: map[string]models.Artist{},
		Albums:  map[string]models.Album{},
		Songs:   map[string]models.Song{},
	}
}

func (c *Catalog) nextID(prefix string) string {
	c.seq++
	return fmt.Sprintf("%s%d", prefix, c.seq)
}

func (c *Catalog) CreateArtist(_ context.Context, fields models.ArtistFields) (models.Artist, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	artist := models.Artist{
		ID:        c.nextID("ar"),
		Name:      strings.TrimSpace(fields.Name),
		Genre:     strings.TrimSpace(fields.Genre),
		Biography: fields.Biography,
	}
	c.Artists[artist.ID] = artist
	return artist, nil
}

func (c *Catalog) ArtistByID(_ context.Context, id string) (models.Artist, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	artist, ok := c.Artists[id]
	if !ok {
		return models.Artist{}, store.ErrNotFound
	}
	artist.Albums = c.summaries(id)
	return artist, nil
}

func (c *Catalog) ListArtists(context.Context) ([]models.Artist, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []models.Artist
	for _, id := range sortedKeys(c.Artists) {
		artist := c.Artists[id]
		artist.Albums = c.summaries(id)
		out = append(out, artist)
	}
	return out, nil
}

func (c *Catalog) UpdateArtist(_ context.Context, artist models.Artist) (models.Artist, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.FailUpdate != nil {
		return models.Artist{}, c.FailUpdate
	}
	if _, ok := c.Artists[artist.ID]; !ok {
		return models.Artist{}, store.ErrNotFound
	}
	stored := artist
	stored.Albums = nil
	c.Artists[artist.ID] = stored
	return artist, nil
}

func (c *Catalog) AlbumsByArtist(_ context.Context, artistID string) ([]models.Album, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []models.Album
	for _, id := range sortedKeys(c.Albums) {
		if album := c.Albums[id]; album.ArtistID == artistID {
			out = append(out, album)
		}
	}
	return out, nil
}

func (c *Catalog) SongsByAlbums(_ context.Context, albumIDs []string) ([]models.Song, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.songsOf(albumIDs), nil
}

func (c *Catalog) DeleteArtistTree(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.Artists[id]; !ok {
		return store.ErrNotFound
	}
	for _, albumID := range sortedKeys(c.Albums) {
		if c.Albums[albumID].ArtistID == id {
			c.deleteAlbum(albumID)
		}
	}
	delete(c.Artists, id)
	c.Deletions = append(c.Deletions, "artist:"+id)
	return nil
}

func (c *Catalog) CreateAlbum(_ context.Context, artistID, albumName string) (models.Album, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.Artists[artistID]; !ok {
		return models.Album{}, store.ErrReference
	}
	album := models.Album{ID: c.nextID("al"), AlbumName: strings.TrimSpace(albumName), ArtistID: artistID}
	c.Albums[album.ID] = album
	return album, nil
}

func (c *Catalog) AlbumByID(_ context.Context, id string) (models.Album, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	album, ok := c.Albums[id]
	if !ok {
		return models.Album{}, store.ErrNotFound
	}
	artist := c.Artists[album.ArtistID]
	album.Artist = &artist
	return album, nil
}

func (c *Catalog) ListAlbums(context.Context) ([]models.Album, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []models.Album
	for _, id := range sortedKeys(c.Albums) {
		out = append(out, c.Albums[id])
	}
	return out, nil
}

func (c *Catalog) UpdateAlbum(_ context.Context, album models.Album) (models.Album, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.FailUpdate != nil {
		return models.Album{}, c.FailUpdate
	}
	if _, ok := c.Albums[album.ID]; !ok {
		return models.Album{}, store.ErrNotFound
	}
	if _, ok := c.Artists[album.ArtistID]; !ok {
		return models.Album{}, store.ErrReference
	}
	stored := album
	stored.Artist, stored.Songs = nil, nil
	c.Albums[album.ID] = stored
	return album, nil
}

func (c *Catalog) DeleteAlbumTree(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.Albums[id]; !ok {
		return store.ErrNotFound
	}
	c.deleteAlbum(id)
	return nil
}

func (c *Catalog) CreateSong(_ context.Context, albumID string, fields models.SongFields) (models.Song, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.Albums[albumID]; !ok {
		return models.Song{}, store.ErrReference
	}
	song := models.Song{ID: c.nextID("s"), Title: strings.TrimSpace(fields.Title), Duration: fields.Duration, AlbumID: albumID}
	c.Songs[song.ID] = song
	return song, nil
}

func (c *Catalog) SongByID(_ context.Context, id string) (models.Song, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	song, ok := c.Songs[id]
	if !ok {
		return models.Song{}, store.ErrNotFound
	}
	album := c.Albums[song.AlbumID]
	artist := c.Artists[album.ArtistID]
	album.Artist = &artist
	song.Album = &album
	return song, nil
}

func (c *Catalog) ListSongs(context.Context) ([]models.Song, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []models.Song
	for _, id := range sortedKeys(c.Songs) {
		song := c.Songs[id]
		album := c.Albums[song.AlbumID]
		song.Album = &album
		out = append(out, song)
	}
	return out, nil
}

func (c *Catalog) UpdateSong(_ context.Context, song models.Song) (models.Song, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.FailUpdate != nil {
		return models.Song{}, c.FailUpdate
	}
	if _, ok := c.Songs[song.ID]; !ok {
		return models.Song{}, store.ErrNotFound
	}
	if _, ok := c.Albums[song.AlbumID]; !ok {
		return models.Song{}, store.ErrReference
	}
	stored := song
	stored.Album = nil
	c.Songs[song.ID] = stored
	return song, nil
}

func (c *Catalog) DeleteSong(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.Songs[id]; !ok {
		return store.ErrNotFound
	}
	delete(c.Songs, id)
	c.Deletions = append(c.Deletions, "song:"+id)
	return nil
}

func (c *Catalog) deleteAlbum(id string) {
	for _, song := range c.songsOf([]string{id}) {
		delete(c.Songs, song.ID)
		c.Deletions = append(c.Deletions, "song:"+song.ID)
	}
	delete(c.Albums, id)
	c.Deletions = append(c.Deletions, "album:"+id)
}

func (c *Catalog) songsOf(albumIDs []string) []models.Song {
	wanted := make(map[string]bool, len(albumIDs))
	for _, id := range albumIDs {
		wanted[id] = true
	}
	var out []models.Song
	for _, id := range sortedKeys(c.Songs) {
		if song := c.Songs[id]; wanted[song.AlbumID] {
			out = append(out, song)
		}
	}
	return out
}

func (c *Catalog) summaries(artistID string) []models.AlbumSummary {
	var out []models.AlbumSummary
	for _, id := range sortedKeys(c.Albums) {
		if album := c.Albums[id]; album.ArtistID == artistID {
			out = append(out, models.AlbumSummary{ID: album.ID, AlbumName: album.AlbumName})
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
