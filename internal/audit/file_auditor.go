package audit

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"

	"github.com/guillermoBallester/flaskr/internal/core/port"
	"go.opentelemetry.io/otel/trace"
)

// record is one NDJSON line of the audit log.
type record struct {
	Time       string  `json:"ts"`
	Source     string  `json:"source"`
	UserID     int64   `json:"user_id,omitempty"`
	PostID     int64   `json:"post_id,omitempty"`
	Line       int     `json:"line,omitempty"`
	SQL        string  `json:"sql,omitempty"`
	DurationMS int64   `json:"duration_ms"`
	TraceID    string  `json:"trace_id,omitempty"`
	Error      *string `json:"error"`
}

// FileAuditor appends one JSON object per write to an underlying stream.
// It is safe for concurrent use by request handlers.
type FileAuditor struct {
	mu  sync.Mutex
	w   io.WriteCloser
	enc *json.Encoder
	now func() time.Time
}

// NewFileAuditor opens path for appending, creating it if needed.
func NewFileAuditor(path string) (*FileAuditor, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return NewWriterAuditor(f), nil
}

// NewWriterAuditor writes records to w. Close closes w.
func NewWriterAuditor(w io.WriteCloser) *FileAuditor {
	return &FileAuditor{w: w, enc: json.NewEncoder(w), now: time.Now}
}

func (a *FileAuditor) Record(ctx context.Context, entry port.AuditEntry) {
	rec := record{
		Time:       a.now().UTC().Format(time.RFC3339Nano),
		Source:     entry.Source,
		UserID:     entry.UserID,
		PostID:     entry.PostID,
		Line:       entry.Line,
		SQL:        entry.SQL,
		DurationMS: entry.DurationMS,
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		rec.TraceID = sc.TraceID().String()
	}
	if entry.Err != nil {
		msg := entry.Err.Error()
		rec.Error = &msg
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	// Audit I/O failures never fail the write being audited.
	_ = a.enc.Encode(rec)
}

func (a *FileAuditor) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.w.Close()
}
