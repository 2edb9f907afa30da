package port

import (
	"context"

	"github.com/guillermoBallester/flaskr/internal/core/domain"
)

// PostStore persists blog posts. Lookups of missing rows return domain.ErrNotFound.
type PostStore interface {
	ListPosts(ctx context.Context) ([]domain.Post, error)
	GetPost(ctx context.Context, id int64) (*domain.Post, error)
	CreatePost(ctx context.Context, authorID int64, title, body string) (int64, error)
	UpdatePost(ctx context.Context, id int64, title, body string) error
	DeletePost(ctx context.Context, id int64) error
}

// UserStore persists users. CreateUser returns domain.ErrUserExists on a
// duplicate username.
type UserStore interface {
	CreateUser(ctx context.Context, username, passwordHash string) (int64, error)
	UserByUsername(ctx context.Context, username string) (*domain.User, error)
	UserByID(ctx context.Context, id int64) (*domain.User, error)
}

// Store is the full persistence surface used by the services.
type Store interface {
	PostStore
	UserStore
}

// ConnScoper binds one database connection to a unit of work. The returned
// context carries the scope; release must be called when the unit ends.
type ConnScoper interface {
	Scope(ctx context.Context) (scoped context.Context, release func())
}
