package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/guillermoBallester/flaskr/internal/core/domain"
)

type scopeKey struct{}

// Scope holds the single connection used by one unit of work. The connection
// is taken from the pool on first use and reused until Release.
type Scope struct {
	db *sql.DB

	mu       sync.Mutex
	conn     *sql.Conn
	released bool
}

func (db *DB) Scope(ctx context.Context) (context.Context, func()) {
	s := &Scope{db: db.sql}
	return context.WithValue(ctx, scopeKey{}, s), s.Release
}

func ScopeFromContext(ctx context.Context) *Scope {
	s, _ := ctx.Value(scopeKey{}).(*Scope)
	return s
}

func (s *Scope) Conn(ctx context.Context) (*sql.Conn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released {
		return nil, domain.ErrConnClosed
	}
	if s.conn == nil {
		conn, err := s.db.Conn(ctx)
		if err != nil {
			return nil, fmt.Errorf("acquiring connection: %w", err)
		}
		s.conn = conn
	}
	return s.conn, nil
}

func (s *Scope) Acquired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

func (s *Scope) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
	s.released = true
}
