package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/guillermoBallester/flaskr/internal/core/domain"
)

const errDupEntry = 1062

// querier is the subset shared by *sql.DB and *sql.Conn.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DB implements the blog store, connection scoping and script sessions on MySQL.
type DB struct {
	sql *sql.DB
}

func NewDB(db *sql.DB) *DB {
	return &DB{sql: db}
}

func (db *DB) Dialect() string { return "mysql" }

func (db *DB) Close() { _ = db.sql.Close() }

func (db *DB) q(ctx context.Context) (querier, error) {
	s := ScopeFromContext(ctx)
	if s == nil {
		return db.sql, nil
	}
	conn, err := s.Conn(ctx)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(row scanner) (*domain.Post, error) {
	var p domain.Post
	if err := row.Scan(&p.ID, &p.Title, &p.Body, &p.Created, &p.AuthorID, &p.Username); err != nil {
		return nil, err
	}
	return &p, nil
}

func (db *DB) ListPosts(ctx context.Context) ([]domain.Post, error) {
	q, err := db.q(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := q.QueryContext(ctx, queryListPosts)
	if err != nil {
		return nil, fmt.Errorf("querying posts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []domain.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("reading post row: %w", err)
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return result, nil
}

func (db *DB) GetPost(ctx context.Context, id int64) (*domain.Post, error) {
	q, err := db.q(ctx)
	if err != nil {
		return nil, err
	}
	p, err := scanPost(q.QueryRowContext(ctx, queryGetPost, id))
	if errors.Is(err, sql.ErrNoRows) {
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
	res, err := q.ExecContext(ctx, queryCreatePost, title, body, authorID)
	if err != nil {
		return 0, fmt.Errorf("inserting post: %w", err)
	}
	return res.LastInsertId()
}

func (db *DB) UpdatePost(ctx context.Context, id int64, title, body string) error {
	return db.execOne(ctx, queryUpdatePost, title, body, id)
}

func (db *DB) DeletePost(ctx context.Context, id int64) error {
	return db.execOne(ctx, queryDeletePost, id)
}

func (db *DB) execOne(ctx context.Context, query string, args ...any) error {
	q, err := db.q(ctx)
	if err != nil {
		return err
	}
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (db *DB) CreateUser(ctx context.Context, username, passwordHash string) (int64, error) {
	q, err := db.q(ctx)
	if err != nil {
		return 0, err
	}
	res, err := q.ExecContext(ctx, queryCreateUser, username, passwordHash)
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == errDupEntry {
		return 0, domain.ErrUserExists
	}
	if err != nil {
		return 0, fmt.Errorf("inserting user: %w", err)
	}
	return res.LastInsertId()
}

func (db *DB) UserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return db.user(ctx, queryUserByUsername, username)
}

func (db *DB) UserByID(ctx context.Context, id int64) (*domain.User, error) {
	return db.user(ctx, queryUserByID, id)
}

func (db *DB) user(ctx context.Context, query string, arg any) (*domain.User, error) {
	q, err := db.q(ctx)
	if err != nil {
		return nil, err
	}
	var u domain.User
	err = q.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Username, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return &u, nil
}
