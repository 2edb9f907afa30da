package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/guillermoBallester/flaskr/internal/adapter/mcp"
	"github.com/guillermoBallester/flaskr/internal/config"
	"github.com/guillermoBallester/flaskr/internal/core/service"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

func runMCP(ctx context.Context, overrides config.Overrides, stdin io.Reader, stdout io.Writer) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	a, err := setup(ctx, overrides)
	if err != nil {
		return err
	}
	defer a.close()

	blog := service.NewBlogService(a.db, a.auditor, a.logger, a.tracer)
	mcpServer := mcp.NewServer(version, blog, a.db, a.logger, a.tracer, a.inst)

	stdioServer := mcpserver.NewStdioServer(mcpServer)

	a.logger.Info("serving MCP over stdio", slog.String("version", version))
	if err := stdioServer.Listen(ctx, stdin, stdout); err != nil {
		return fmt.Errorf("stdio server: %w", err)
	}

	a.logger.Info("shutdown complete")
	return nil
}
