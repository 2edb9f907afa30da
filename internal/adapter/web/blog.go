package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/guillermoBallester/flaskr/internal/core/domain"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	posts, err := s.blog.List(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.render(w, r, "blog/index.html", pageData{Posts: posts})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.render(w, r, "blog/create.html", pageData{})
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	user := CurrentUser(r.Context())
	_, err := s.blog.Create(r.Context(), user.ID, r.PostForm.Get("title"), r.PostForm.Get("body"))
	switch {
	case err == nil:
		s.redirect(w, r, "/")
	case errors.Is(err, domain.ErrTitleRequired):
		SessionFromContext(r.Context()).Flash(flashMessage(err, ""))
		s.render(w, r, "blog/create.html", pageData{Form: r.PostForm})
	default:
		s.serverError(w, r, err)
	}
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(w, r)
	if !ok {
		return
	}
	user := CurrentUser(r.Context())

	post, err := s.blog.Get(r.Context(), id, user.ID, true)
	if err != nil {
		s.postError(w, r, id, err)
		return
	}

	if r.Method != http.MethodPost {
		s.render(w, r, "blog/update.html", pageData{Post: post})
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	err = s.blog.Update(r.Context(), id, user.ID, r.PostForm.Get("title"), r.PostForm.Get("body"))
	switch {
	case err == nil:
		s.redirect(w, r, "/")
	case errors.Is(err, domain.ErrTitleRequired):
		SessionFromContext(r.Context()).Flash(flashMessage(err, ""))
		s.render(w, r, "blog/update.html", pageData{Post: post, Form: r.PostForm})
	default:
		s.postError(w, r, id, err)
	}
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(w, r)
	if !ok {
		return
	}
	user := CurrentUser(r.Context())

	if err := s.blog.Delete(r.Context(), id, user.ID); err != nil {
		s.postError(w, r, id, err)
		return
	}
	s.redirect(w, r, "/")
}

// postID reads the {id} route variable.
func postID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.NotFound(w, r)
		return 0, false
	}
	return id, true
}

// postError maps lookup failures to 404 and ownership failures to 403.
func (s *Server) postError(w http.ResponseWriter, r *http.Request, id int64, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, fmt.Sprintf("Post id %d doesn't exist.", id), http.StatusNotFound)
	case errors.Is(err, domain.ErrForbidden):
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
	default:
		s.serverError(w, r, err)
	}
}
