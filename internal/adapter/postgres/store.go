package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/guillermoBallester/flaskr/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// querier is the subset shared by *pgxpool.Pool and *pgxpool.Conn.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DB implements the blog store, connection scoping and script sessions on PostgreSQL.
type DB struct {
	pool *pgxpool.Pool
}

func NewDB(pool *pgxpool.Pool) *DB {
	return &DB{pool: pool}
}

func (db *DB) Dialect() string { return "postgres" }

func (db *DB) Close() { db.pool.Close() }

// q returns the scoped connection when ctx carries a Scope, the pool otherwise.
func (db *DB) q(ctx context.Context) (querier, error) {
	s := ScopeFromContext(ctx)
	if s == nil {
		return db.pool, nil
	}
	conn, err := s.Conn(ctx)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func (db *DB) ListPosts(ctx context.Context) ([]domain.Post, error) {
	q, err := db.q(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := q.Query(ctx, queryListPosts)
	if err != nil {
		return nil, fmt.Errorf("querying posts: %w", err)
	}
	defer rows.Close()
	return rowsToPosts(rows)
}

func (db *DB) GetPost(ctx context.Context, id int64) (*domain.Post, error) {
	q, err := db.q(ctx)
	if err != nil {
		return nil, err
	}
	p, err := scanPost(q.QueryRow(ctx, queryGetPost, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying post: %w", err)
	}
	return p, nil
}

func (db *DB) CreatePost(ctx context.Context, authorID int64, title, body string) (int64, error) {
	q, err := db.q(ctx)
	if err != nil {
		return 0, err
	}
	var id int64
	if err := q.QueryRow(ctx, queryCreatePost, title, body, authorID).Scan(&id); err != nil {
		return 0, fmt.Errorf("inserting post: %w", err)
	}
	return id, nil
}

func (db *DB) UpdatePost(ctx context.Context, id int64, title, body string) error {
	return db.execOne(ctx, queryUpdatePost, title, body, id)
}

func (db *DB) DeletePost(ctx context.Context, id int64) error {
	return db.execOne(ctx, queryDeletePost, id)
}

// execOne runs a single-row write and maps zero affected rows to domain.ErrNotFound.
func (db *DB) execOne(ctx context.Context, sql string, args ...any) error {
	q, err := db.q(ctx)
	if err != nil {
		return err
	}
	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (db *DB) CreateUser(ctx context.Context, username, passwordHash string) (int64, error) {
	q, err := db.q(ctx)
	if err != nil {
		return 0, err
	}
	var id int64
	err = q.QueryRow(ctx, queryCreateUser, username, passwordHash).Scan(&id)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return 0, domain.ErrUserExists
	}
	if err != nil {
		return 0, fmt.Errorf("inserting user: %w", err)
	}
	return id, nil
}

func (db *DB) UserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return db.user(ctx, queryUserByUsername, username)
}

func (db *DB) UserByID(ctx context.Context, id int64) (*domain.User, error) {
	return db.user(ctx, queryUserByID, id)
}

func (db *DB) user(ctx context.Context, sql string, arg any) (*domain.User, error) {
	q, err := db.q(ctx)
	if err != nil {
		return nil, err
	}
	var u domain.User
	err = q.QueryRow(ctx, sql, arg).Scan(&u.ID, &u.Username, &u.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return &u, nil
}
