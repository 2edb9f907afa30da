package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/guillermoBallester/flaskr/internal/adapter/web"
	"github.com/guillermoBallester/flaskr/internal/config"
	"github.com/guillermoBallester/flaskr/internal/core/service"
)

const shutdownTimeout = 10 * time.Second

func runServe(ctx context.Context, overrides config.Overrides) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	a, err := setup(ctx, overrides)
	if err != nil {
		return err
	}
	defer a.close()

	a.logger.Info("starting flaskr",
		slog.String("version", version),
		slog.String("log_level", a.cfg.LogLevel.String()),
		slog.String("http_addr", a.cfg.HTTPAddr),
	)
	if a.cfg.SecretKey == "dev" {
		a.logger.Warn("SECRET_KEY is the development default; sessions can be forged")
	}

	blog := service.NewBlogService(a.db, a.auditor, a.logger, a.tracer)
	auth := service.NewAuthService(a.db, a.logger)

	handler, err := web.NewServer(blog, auth, web.Options{
		SecretKey:       a.cfg.SecretKey,
		Scoper:          a.db,
		Logger:          a.logger,
		Tracer:          a.tracer,
		Instrumentation: a.inst,
	})
	if err != nil {
		return fmt.Errorf("building web server: %w", err)
	}

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("serving HTTP", slog.String("addr", a.cfg.HTTPAddr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		a.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}
