package httpapi

import (
	"net/http"

	"socloud/internal/models"
)

// Artists

func (s *Server) handleCreateArtist(w http.ResponseWriter, r *http.Request) {
	form, err := readForm(w, r, picturePolicy)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer form.Close()

	var fields models.ArtistFields
	if err := form.bindStrings(map[string]*string{
		"name":      &fields.Name,
		"genre":     &fields.Genre,
		"biography": &fields.Biography,
	}); err != nil {
		writeError(w, r, err)
		return
	}

	artist, err := s.artists.Create(r.Context(), fields, form.upload())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, artist)
}

func (s *Server) handleListArtists(w http.ResponseWriter, r *http.Request) {
	artists, err := s.artists.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, artists)
}

func (s *Server) handleGetArtist(w http.ResponseWriter, r *http.Request) {
	artist, err := s.artists.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, artist)
}

func (s *Server) handleUpdateArtist(w http.ResponseWriter, r *http.Request) {
	form, err := readForm(w, r, picturePolicy)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer form.Close()

	var patch models.ArtistPatch
	if patch.Name, err = form.str("name"); err != nil {
		writeError(w, r, err)
		return
	}
	if patch.Genre, err = form.str("genre"); err != nil {
		writeError(w, r, err)
		return
	}
	if patch.Biography, err = form.str("biography"); err != nil {
		writeError(w, r, err)
		return
	}

	artist, err := s.artists.Update(r.Context(), r.PathValue("id"), patch, form.upload())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, artist)
}

func (s *Server) handleDeleteArtist(w http.ResponseWriter, r *http.Request) {
	artist, err := s.artists.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, artist)
}

// Albums

func (s *Server) handleCreateAlbum(w http.ResponseWriter, r *http.Request) {
	form, err := readForm(w, r, picturePolicy)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer form.Close()

	name, err := form.str("albumName")
	if err != nil {
		writeError(w, r, err)
		return
	}

	album, err := s.albums.Create(r.Context(), r.PathValue("id"), name.Or(""), form.upload())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, album)
}

func (s *Server) handleListAlbums(w http.ResponseWriter, r *http.Request) {
	albums, err := s.albums.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, albums)
}

func (s *Server) handleGetAlbum(w http.ResponseWriter, r *http.Request) {
	album, err := s.albums.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, album)
}

func (s *Server) handleUpdateAlbum(w http.ResponseWriter, r *http.Request) {
	form, err := readForm(w, r, picturePolicy)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer form.Close()

	var patch models.AlbumPatch
	if patch.AlbumName, err = form.str("albumName"); err != nil {
		writeError(w, r, err)
		return
	}
	if patch.ArtistID, err = form.str("artistId"); err != nil {
		writeError(w, r, err)
		return
	}

	album, err := s.albums.Update(r.Context(), r.PathValue("id"), patch, form.upload())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, album)
}

func (s *Server) handleDeleteAlbum(w http.ResponseWriter, r *http.Request) {
	album, err := s.albums.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, album)
}

// Songs

func (s *Server) handleCreateSong(w http.ResponseWriter, r *http.Request) {
	form, err := readForm(w, r, audioPolicy)
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
	duration, err := form.integer("duration")
	if err != nil {
		writeError(w, r, err)
		return
	}

	fields := models.SongFields{Title: title.Or(""), Duration: duration.Or(0)}
	song, err := s.songs.Create(r.Context(), r.PathValue("id"), fields, form.upload())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, song)
}

func (s *Server) handleListSongs(w http.ResponseWriter, r *http.Request) {
	songs, err := s.songs.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, songs)
}

func (s *Server) handleGetSong(w http.ResponseWriter, r *http.Request) {
	song, err := s.songs.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, song)
}

func (s *Server) handleUpdateSong(w http.ResponseWriter, r *http.Request) {
	form, err := readForm(w, r, audioPolicy)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer form.Close()

	var patch models.SongPatch
	if patch.Title, err = form.str("title"); err != nil {
		writeError(w, r, err)
		return
	}
	if patch.Duration, err = form.integer("duration"); err != nil {
		writeError(w, r, err)
		return
	}
	if patch.AlbumID, err = form.str("albumId"); err != nil {
		writeError(w, r, err)
		return
	}

	song, err := s.songs.Update(r.Context(), r.PathValue("id"), patch, form.upload())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, song)
}

func (s *Server) handleDeleteSong(w http.ResponseWriter, r *http.Request) {
	song, err := s.songs.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, song)
}
