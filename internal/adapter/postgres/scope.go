package postgres

import (
	"context"
	"fmt"
	"sync"

	"github.com/guillermoBallester/flaskr/internal/core/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type scopeKey struct{}

// Scope holds the single connection used by one unit of work (an HTTP
// request, an MCP tool call). The connection is acquired on first use and
// reused until Release.
type Scope struct {
	pool *pgxpool.Pool

	mu       sync.Mutex
	conn     *pgxpool.Conn
	released bool
}

// Scope starts a unit of work. release returns the connection to the pool;
// later use of the scope fails with domain.ErrConnClosed.
func (db *DB) Scope(ctx context.Context) (context.Context, func()) {
	s := &Scope{pool: db.pool}
	return context.WithValue(ctx, scopeKey{}, s), s.Release
}

// ScopeFromContext returns the scope bound to ctx, or nil.
func ScopeFromContext(ctx context.Context) *Scope {
	s, _ := ctx.Value(scopeKey{}).(*Scope)
	return s
}

// Conn returns the scope's connection, acquiring it on first call.
func (s *Scope) Conn(ctx context.Context) (*pgxpool.Conn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released {
		return nil, domain.ErrConnClosed
	}
	if s.conn == nil {
		conn, err := s.pool.Acquire(ctx)
		if err != nil {
			return nil, fmt.Errorf("acquiring connection: %w", err)
		}
		s.conn = conn
	}
	return s.conn, nil
}

// Acquired reports whether the scope currently holds a connection.
func (s *Scope) Acquired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

func (s *Scope) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		s.conn.Release()
		s.conn = nil
	}
	s.released = true
}
