package httpapi

import (
	"net/http"

	"socloud/internal/auth"
	"socloud/internal/models"
)

func (s *Server) handleCreatePlaylist(w http.ResponseWriter, r *http.Request) {
	form, err := readForm(w, r, nil)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer form.Close()

	title, err := form.str("title")
	if err != nil {
		writeError(w, r, err)
		return
	}

	playlist, err := s.playlists.Create(r.Context(), claimsFrom(r).UserID(), title.Or(""))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, playlist)
}

func (s *Server) handleListPlaylists(w http.ResponseWriter, r *http.Request) {
	userID := claimsFrom(r).UserID()
	if requested := r.URL.Query().Get("userId"); requested != "" {
		userID = requested
	}
	if err := auth.AuthorizeSubject(claimsFrom(r), userID); err != nil {
		writeError(w, r, err)
		return
	}

	playlists, err := s.playlists.ListByUser(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, playlists)
}

func (s *Server) handleGetPlaylist(w http.ResponseWriter, r *http.Request) {
	playlist, ok := s.ownedPlaylist(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, playlist)
}

func (s *Server) handleDeletePlaylist(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.ownedPlaylist(w, r); !ok {
		return
	}

	playlist, err := s.playlists.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, playlist)
}

func (s *Server) handleAddPlaylistSong(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.ownedPlaylist(w, r); !ok {
		return
	}

	playlist, err := s.playlists.AddSong(r.Context(), r.PathValue("id"), r.PathValue("songId"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, playlist)
}

func (s *Server) handleRemovePlaylistSong(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.ownedPlaylist(w, r); !ok {
		return
	}

	playlist, err := s.playlists.RemoveSong(r.Context(), r.PathValue("id"), r.PathValue("songId"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, playlist)
}

// ownedPlaylist loads the playlist named by the path and checks that the
// caller owns it or is an admin. It writes the error response itself.
func (s *Server) ownedPlaylist(w http.ResponseWriter, r *http.Request) (models.Playlist, bool) {
	playlist, err := s.playlists.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return models.Playlist{}, false
	}
	if err := auth.AuthorizeSubject(claimsFrom(r), playlist.UserID); err != nil {
		writeError(w, r, err)
		return models.Playlist{}, false
	}
	return playlist, true
}
