// Package httpapi exposes the catalog, account and playlist workflows over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"socloud/internal/auth"
	"socloud/internal/models"
)

// UserService captures the account operations needed by the HTTP handlers.
type UserService interface {
	Register(ctx context.Context, reg models.Registration, picture *models.Upload) (models.Session, error)
	Login(ctx context.Context, email, password string) (models.Session, error)
	Get(ctx context.Context, userID string) (models.UserView, error)
	List(ctx context.Context) ([]models.UserView, error)
	Update(ctx context.Context, userID string, patch models.UserPatch, picture *models.Upload) (models.UserView, error)
	Delete(ctx context.Context, userID string) (models.UserView, error)
	SwitchRole(ctx context.Context, userID string) (models.UserView, error)
}

// ArtistService describes artist catalogue workflows.
type ArtistService interface {
	Create(ctx context.Context, fields models.ArtistFields, picture *models.Upload) (models.Artist, error)
	Get(ctx context.Context, id string) (models.Artist, error)
	List(ctx context.Context) ([]models.Artist, error)
	Update(ctx context.Context, id string, patch models.ArtistPatch, picture *models.Upload) (models.Artist, error)
	Delete(ctx context.Context, id string) (models.Artist, error)
}

// AlbumService exposes album-specific workflows.
type AlbumService interface {
	Create(ctx context.Context, artistID, albumName string, picture *models.Upload) (models.Album, error)
	Get(ctx context.Context, id string) (models.Album, error)
	List(ctx context.Context) ([]models.Album, error)
	Update(ctx context.Context, id string, patch models.AlbumPatch, picture *models.Upload) (models.Album, error)
	Delete(ctx context.Context, id string) (models.Album, error)
}

// SongService coordinates track-level operations.
type SongService interface {
	Create(ctx context.Context, albumID string, fields models.SongFields, audio *models.Upload) (models.Song, error)
	Get(ctx context.Context, id string) (models.Song, error)
	List(ctx context.Context) ([]models.Song, error)
	Update(ctx context.Context, id string, patch models.SongPatch, audio *models.Upload) (models.Song, error)
	Delete(ctx context.Context, id string) (models.Song, error)
}

// PlaylistService coordinates playlist-related operations.
type PlaylistService interface {
	Create(ctx context.Context, userID, title string) (models.Playlist, error)
	ListByUser(ctx context.Context, userID string) ([]models.Playlist, error)
	Get(ctx context.Context, id string) (models.Playlist, error)
	Delete(ctx context.Context, id string) (models.Playlist, error)
	AddSong(ctx context.Context, playlistID, songID string) (models.Playlist, error)
	RemoveSong(ctx context.Context, playlistID, songID string) (models.Playlist, error)
}

// Server wires HTTP handlers to the underlying services.
type Server struct {
	users     UserService
	artists   ArtistService
	albums    AlbumService
	songs     SongService
	playlists PlaylistService
	tokens    *auth.TokenManager
}

// New configures a Server. tokens verifies the bearer token of protected routes.
func New(
	users UserService,
	artists ArtistService,
	albums AlbumService,
	songs SongService,
	playlists PlaylistService,
	tokens *auth.TokenManager,
) *Server {
	return &Server{
		users:     users,
		artists:   artists,
		albums:    albums,
		songs:     songs,
		playlists: playlists,
		tokens:    tokens,
	}
}

// Routes exposes the HTTP handlers for accounts, the catalogue and playlists.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	member := s.requireRoles(models.RoleUser, models.RoleAdmin)
	admin := s.requireRoles(models.RoleAdmin)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Accounts
	mux.HandleFunc("POST /api/v1/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/v1/auth/login", s.handleLogin)
	mux.Handle("GET /api/v1/users/me", member(s.handleMe))
	mux.Handle("PATCH /api/v1/users/{userId}", member(s.handleUpdateUser))
	mux.Handle("DELETE /api/v1/users/{userId}", member(s.handleDeleteUser))
	mux.Handle("GET /api/v1/admin/users", admin(s.handleListUsers))
	mux.Handle("PATCH /api/v1/admin/users/{userId}/role", admin(s.handleSwitchRole))

	// Artists
	mux.Handle("POST /api/v1/artists", admin(s.handleCreateArtist))
	mux.Handle("GET /api/v1/artists", member(s.handleListArtists))
	mux.Handle("GET /api/v1/artists/{id}", member(s.handleGetArtist))
	mux.Handle("PATCH /api/v1/artists/{id}", admin(s.handleUpdateArtist))
	mux.Handle("DELETE /api/v1/artists/{id}", admin(s.handleDeleteArtist))

	// Albums
	mux.Handle("POST /api/v1/artists/{id}/albums", admin(s.handleCreateAlbum))
	mux.Handle("GET /api/v1/albums", member(s.handleListAlbums))
	mux.Handle("GET /api/v1/albums/{id}", member(s.handleGetAlbum))
	mux.Handle("PATCH /api/v1/albums/{id}", admin(s.handleUpdateAlbum))
	mux.Handle("DELETE /api/v1/albums/{id}", admin(s.handleDeleteAlbum))

	// Songs
	mux.Handle("POST /api/v1/albums/{id}/songs", admin(s.handleCreateSong))
	mux.Handle("GET /api/v1/songs", member(s.handleListSongs))
	mux.Handle("GET /api/v1/songs/{id}", member(s.handleGetSong))
	mux.Handle("PATCH /api/v1/songs/{id}", admin(s.handleUpdateSong))
	mux.Handle("DELETE /api/v1/songs/{id}", admin(s.handleDeleteSong))

	// Playlists
	mux.Handle("POST /api/v1/playlists", member(s.handleCreatePlaylist))
	mux.Handle("GET /api/v1/playlists", member(s.handleListPlaylists))
	mux.Handle("GET /api/v1/playlists/{id}", member(s.handleGetPlaylist))
	mux.Handle("DELETE /api/v1/playlists/{id}", member(s.handleDeletePlaylist))
	mux.Handle("POST /api/v1/playlists/{id}/songs/{songId}", member(s.handleAddPlaylistSong))
	mux.Handle("DELETE /api/v1/playlists/{id}/songs/{songId}", member(s.handleRemovePlaylistSong))

	return mux
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}
