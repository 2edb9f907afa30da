package web

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/guillermoBallester/flaskr/internal/core/domain"
	"github.com/guillermoBallester/flaskr/internal/core/port"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// BlogService is the subset of service.BlogService the handlers use.
type BlogService interface {
	List(ctx context.Context) ([]domain.Post, error)
	Get(ctx context.Context, id, userID int64, checkAuthor bool) (*domain.Post, error)
	Create(ctx context.Context, authorID int64, title, body string) (int64, error)
	Update(ctx context.Context, id, userID int64, title, body string) error
	Delete(ctx context.Context, id, userID int64) error
}

// AuthService is the subset of service.AuthService the handlers use.
type AuthService interface {
	Register(ctx context.Context, username, password string) (int64, error)
	Login(ctx context.Context, username, password string) (*domain.User, error)
	LoadUser(ctx context.Context, id int64) (*domain.User, error)
}

// Options configures a Server. Tracer and Instrumentation default to noops.
type Options struct {
	SecretKey       string
	Scoper          port.ConnScoper
	Logger          *slog.Logger
	Tracer          trace.Tracer
	Instrumentation port.Instrumentation
}

// Server serves the blog and auth pages.
type Server struct {
	blog      BlogService
	auth      AuthService
	scoper    port.ConnScoper
	sessions  *sessionStore
	templates map[string]*template.Template
	logger    *slog.Logger
	tracer    trace.Tracer
	inst      port.Instrumentation

	handler http.Handler
}

func NewServer(blog BlogService, auth AuthService, opts Options) (*Server, error) {
	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	if opts.SecretKey == "" {
		return nil, fmt.Errorf("secret key must not be empty")
	}

	s := &Server{
		blog:      blog,
		auth:      auth,
		scoper:    opts.Scoper,
		sessions:  newSessionStore(opts.SecretKey),
		templates: templates,
		logger:    opts.Logger,
		tracer:    opts.Tracer,
		inst:      opts.Instrumentation,
	}
	if s.scoper == nil {
		s.scoper = noScope{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.tracer == nil {
		s.tracer = noop.NewTracerProvider().Tracer("noop")
	}
	if s.inst == nil {
		s.inst = port.NoopInstrumentation{}
	}

	s.handler = recoveryMiddleware(s.routes(), s.logger)
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) routes() *mux.Router {
	router := mux.NewRouter()
	router.Use(s.instrument, s.scopeConn, s.loadSession)

	router.HandleFunc("/health", healthHandler).Methods("GET").Name("Health")

	router.HandleFunc("/", s.handleIndex).Methods("GET").Name("Index")
	router.HandleFunc("/create", s.loginRequired(s.handleCreate)).Methods("GET", "POST").Name("Create")
	router.HandleFunc("/{id:[0-9]+}/update", s.loginRequired(s.handleUpdate)).Methods("GET", "POST").Name("Update")
	router.HandleFunc("/{id:[0-9]+}/delete", s.loginRequired(s.handleDelete)).Methods("POST").Name("Delete")

	auth := router.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register", s.handleRegister).Methods("GET", "POST").Name("Register")
	auth.HandleFunc("/login", s.handleLogin).Methods("GET", "POST").Name("Login")
	auth.HandleFunc("/logout", s.handleLogout).Methods("GET").Name("Logout")

	return router
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type noScope struct{}

func (noScope) Scope(ctx context.Context) (context.Context, func()) { return ctx, func() {} }
