package port

import "context"

// AuditEntry describes one write made against the database, either a script
// statement or a blog mutation.
type AuditEntry struct {
	Source     string // "script", "blog.create", "blog.update", "blog.delete"
	UserID     int64  // acting user; 0 for scripts
	PostID     int64
	Line       int // 1-based script line; 0 for blog writes
	SQL        string
	DurationMS int64
	Err        error
}

// Auditor records database writes.
type Auditor interface {
	Record(ctx context.Context, entry AuditEntry)
	Close() error
}

// NoopAuditor discards every entry.
type NoopAuditor struct{}

func (NoopAuditor) Record(context.Context, AuditEntry) {}
func (NoopAuditor) Close() error                       { return nil }
