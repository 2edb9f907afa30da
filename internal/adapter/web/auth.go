package web

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/guillermoBallester/flaskr/internal/core/domain"
)

// flashMessage returns the user-facing text for a form validation error.
func flashMessage(err error, username string) string {
	switch {
	case errors.Is(err, domain.ErrTitleRequired):
		return "Title is required."
	case errors.Is(err, domain.ErrUsernameRequired):
		return "Username is required."
	case errors.Is(err, domain.ErrPasswordRequired):
		return "Password is required."
	case errors.Is(err, domain.ErrUserExists):
		return fmt.Sprintf("User %s is already registered.", username)
	case errors.Is(err, domain.ErrIncorrectUser):
		return "Incorrect username."
	case errors.Is(err, domain.ErrIncorrectPass):
		return "Incorrect password."
	default:
		return ""
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.render(w, r, "auth/register.html", pageData{})
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	username := r.PostForm.Get("username")
	_, err := s.auth.Register(r.Context(), username, r.PostForm.Get("password"))
	if err == nil {
		s.redirect(w, r, "/auth/login")
		return
	}

	msg := flashMessage(err, username)
	if msg == "" {
		s.serverError(w, r, err)
		return
	}
	SessionFromContext(r.Context()).Flash(msg)
	s.render(w, r, "auth/register.html", pageData{})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.render(w, r, "auth/login.html", pageData{})
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	user, err := s.auth.Login(r.Context(), r.PostForm.Get("username"), r.PostForm.Get("password"))
	if err == nil {
		SessionFromContext(r.Context()).Login(user.ID)
		s.redirect(w, r, "/")
		return
	}

	msg := flashMessage(err, "")
	if msg == "" {
		s.serverError(w, r, err)
		return
	}
	SessionFromContext(r.Context()).Flash(msg)
	s.render(w, r, "auth/login.html", pageData{})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	SessionFromContext(r.Context()).Clear()
	s.redirect(w, r, "/")
}
