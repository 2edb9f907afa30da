package mcp

import (
	"log/slog"

	"github.com/guillermoBallester/flaskr/internal/core/port"
	"github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel/trace"
)

// NewServer creates an MCPServer exposing the blog tools, with logging,
// tracing and metric hooks around every tool call.
func NewServer(version string, posts PostReader, scoper port.ConnScoper, logger *slog.Logger, tracer trace.Tracer, inst port.Instrumentation) *server.MCPServer {
	s := server.NewMCPServer(
		serverName,
		version,
		server.WithHooks(ToolCallHooks(logger, tracer, inst)),
		server.WithToolCapabilities(true),
	)

	RegisterTools(s, posts, scoper, logger)

	return s
}
