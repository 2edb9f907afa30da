package postgres

import (
	"fmt"

	"github.com/guillermoBallester/flaskr/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// scanPost reads the id, title, body, created, author_id, username projection.
func scanPost(row pgx.Row) (*domain.Post, error) {
	var p domain.Post
	if err := row.Scan(&p.ID, &p.Title, &p.Body, &p.Created, &p.AuthorID, &p.Username); err != nil {
		return nil, err
	}
	return &p, nil
}

// rowsToPosts drains rows into posts.
func rowsToPosts(rows pgx.Rows) ([]domain.Post, error) {
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
