package domain

import (
	"errors"
	"fmt"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

var ErrParseFailed = errors.New("failed to parse SQL")

// splitPG splits a script with PostgreSQL's own scanner, so semicolons inside
// string literals, dollar-quoted bodies and comments never end a statement.
func splitPG(text string) ([]located, error) {
	stmts, err := pg_query.SplitWithScanner(text, true)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseFailed, err)
	}

	out := make([]located, 0, len(stmts))
	offset := 0
	for _, stmt := range stmts {
		if stmt == "" {
			continue
		}
		line := 1
		if idx := strings.Index(text[offset:], stmt); idx >= 0 {
			end := offset + idx + len(stmt)
			line += strings.Count(text[:end], "\n")
			offset = end
		}
		out = append(out, located{line: line, text: stmt})
	}
	return out, nil
}
