// Package schema ships the SQL scripts that initialize the blog database.
package schema

import (
	"embed"
	"fmt"
	"io"
	"os"
)

//go:embed postgres.sql mysql.sql
var files embed.FS

// Open returns the schema script for a dialect ("postgres" or "mysql"). A
// non-empty path overrides the embedded script.
func Open(dialect, path string) (io.ReadCloser, error) {
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening schema file: %w", err)
		}
		return f, nil
	}

	switch dialect {
	case "postgres", "mysql":
	default:
		return nil, fmt.Errorf("no schema for dialect %q", dialect)
	}
	f, err := files.Open(dialect + ".sql")
	if err != nil {
		return nil, fmt.Errorf("opening embedded schema: %w", err)
	}
	return f, nil
}
