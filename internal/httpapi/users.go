package httpapi

import (
	"net/http"

	"socloud/internal/auth"
	"socloud/internal/models"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	form, err := readForm(w, r, picturePolicy)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer form.Close()

	var reg models.Registration
	if err := form.bindStrings(map[string]*string{
		"email":     &reg.Email,
		"password":  &reg.Password,
		"firstName": &reg.FirstName,
		"lastName":  &reg.LastName,
	}); err != nil {
		writeError(w, r, err)
		return
	}

	session, err := s.users.Register(r.Context(), reg, form.upload())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, session)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	form, err := readForm(w, r, nil)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer form.Close()

	var email, password string
	if err := form.bindStrings(map[string]*string{"email": &email, "password": &password}); err != nil {
		writeError(w, r, err)
		return
	}

	session, err := s.users.Login(r.Context(), email, password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.Get(r.Context(), claimsFrom(r).UserID())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	if err := auth.AuthorizeSubject(claimsFrom(r), userID); err != nil {
		writeError(w, r, err)
		return
	}

	form, err := readForm(w, r, picturePolicy)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer form.Close()

	var patch models.UserPatch
	if patch.Password, err = form.str("password"); err != nil {
		writeError(w, r, err)
		return
	}
	if patch.FirstName, err = form.str("firstName"); err != nil {
		writeError(w, r, err)
		return
	}
	if patch.LastName, err = form.str("lastName"); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := s.users.Update(r.Context(), userID, patch, form.upload())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	if err := auth.AuthorizeSubject(claimsFrom(r), userID); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := s.users.Delete(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleSwitchRole(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.SwitchRole(r.Context(), r.PathValue("userId"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
