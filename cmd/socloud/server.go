package main

import (
	"database/sql"
	"net/http"

	"socloud/internal/app/albums"
	"socloud/internal/app/artists"
	"socloud/internal/app/playlists"
	"socloud/internal/app/songs"
	"socloud/internal/app/users"
	"socloud/internal/auth"
	"socloud/internal/blob"
	"socloud/internal/config"
	"socloud/internal/http/middleware"
	"socloud/internal/httpapi"
	"socloud/internal/logging"
	"socloud/internal/media"
	"socloud/internal/store"
)

// application holds the wired services shared by the HTTP handler and bootstrap.
type application struct {
	users     users.Service
	artists   artists.Service
	albums    albums.Service
	songs     songs.Service
	playlists playlists.Service
	tokens    *auth.TokenManager
	store     *store.Store
}

func newApplication(cfg *config.Config, db *sql.DB, storage blob.Storage) *application {
	dataStore := store.New(db)
	mediaManager := media.NewManager(storage, cfg.Storage.SignedURLTTL)
	tokens := auth.NewTokenManager(cfg.Security.JWTSecret, cfg.Security.TokenTTL)

	return &application{
		users:     users.New(dataStore, mediaManager, tokens),
		artists:   artists.New(dataStore, mediaManager),
		albums:    albums.New(dataStore, mediaManager),
		songs:     songs.New(dataStore, mediaManager),
		playlists: playlists.New(dataStore),
		tokens:    tokens,
		store:     dataStore,
	}
}

func (a *application) handler(cfg *config.Config) http.Handler {
	api := httpapi.New(a.users, a.artists, a.albums, a.songs, a.playlists, a.tokens)

	mux := http.NewServeMux()
	mux.Handle("/", api.Routes())
	mux.HandleFunc("GET /ready", func(w http.ResponseWriter, r *http.Request) {
		if err := a.store.Ping(r.Context()); err != nil {
			logging.WithContext(r.Context()).Error().Err(err).Msg("readiness check failed")
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("OK"))
	})

	return middleware.Chain(mux,
		middleware.RequestLogging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)
}
