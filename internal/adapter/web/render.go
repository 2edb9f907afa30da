package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/guillermoBallester/flaskr/internal/core/domain"
)

//go:embed templates
var templateFS embed.FS

var pages = []string{
	"blog/index.html",
	"blog/create.html",
	"blog/update.html",
	"auth/register.html",
	"auth/login.html",
}

var funcs = template.FuncMap{
	"date": func(t time.Time) string { return t.Format("2006-01-02") },
}

// pageData is the value every template executes against.
type pageData struct {
	User    *domain.User
	Flashes []string
	Posts   []domain.Post
	Post    *domain.Post
	Form    url.Values
}

// parseTemplates builds one template set per page, each layered over base.html.
func parseTemplates() (map[string]*template.Template, error) {
	out := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		t, err := template.New(page).Funcs(funcs).ParseFS(templateFS, "templates/base.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}
		out[page] = t
	}
	return out, nil
}

// render writes a page. Pending flashes are consumed and the session cookie
// is saved before the body is written.
func (s *Server) render(w http.ResponseWriter, r *http.Request, page string, data pageData) {
	t, ok := s.templates[page]
	if !ok {
		s.serverError(w, r, fmt.Errorf("unknown template %q", page))
		return
	}

	sess := SessionFromContext(r.Context())
	data.User = CurrentUser(r.Context())
	data.Flashes = sess.popFlashes()

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		s.serverError(w, r, fmt.Errorf("executing template %s: %w", page, err))
		return
	}

	if err := s.sessions.save(w, sess); err != nil {
		s.serverError(w, r, fmt.Errorf("saving session: %w", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// redirect saves the session and sends a 302 to target.
func (s *Server) redirect(w http.ResponseWriter, r *http.Request, target string) {
	if err := s.sessions.save(w, SessionFromContext(r.Context())); err != nil {
		s.serverError(w, r, fmt.Errorf("saving session: %w", err))
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.ErrorContext(r.Context(), "request failed",
		slog.String("http.route", routeTemplate(r)),
		slog.String("error", err.Error()),
	)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
