package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/guillermoBallester/flaskr/internal/adapter/mysql"
	"github.com/guillermoBallester/flaskr/internal/adapter/postgres"
	"github.com/guillermoBallester/flaskr/internal/audit"
	"github.com/guillermoBallester/flaskr/internal/config"
	"github.com/guillermoBallester/flaskr/internal/core/port"
	"github.com/guillermoBallester/flaskr/internal/telemetry"
	"go.opentelemetry.io/otel/trace"
)

// backend is a connected database adapter.
type backend interface {
	port.Store
	port.ConnScoper
	OpenScript(ctx context.Context) (port.ScriptSession, error)
	Dialect() string
	Close()
}

// app holds the process-wide dependencies shared by every subcommand.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	tracer  trace.Tracer
	inst    port.Instrumentation
	auditor port.Auditor
	db      backend

	closers []func()
}

// setup loads configuration and connects telemetry, audit, and the database.
// The caller must call close.
func setup(ctx context.Context, overrides config.Overrides) (*app, error) {
	cfg, err := config.Load(overrides)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	// Logs go to stderr; stdout is reserved for the MCP stdio transport.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	a := &app{
		cfg:     cfg,
		logger:  logger,
		tracer:  telemetry.NoopTracer(),
		inst:    port.NoopInstrumentation{},
		auditor: port.NoopAuditor{},
	}

	if cfg.OTelEnabled {
		provider, err := telemetry.Init(ctx, version)
		if err != nil {
			return nil, fmt.Errorf("initializing telemetry: %w", err)
		}
		a.closers = append(a.closers, func() {
			if err := provider.Shutdown(context.Background()); err != nil {
				logger.Error("telemetry shutdown", slog.String("error", err.Error()))
			}
		})
		a.tracer = provider.Tracer()
		a.inst = telemetry.NewInstruments()
		logger.Info("opentelemetry enabled")
	}

	if cfg.AuditLog != "" {
		fa, err := audit.NewFileAuditor(cfg.AuditLog)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("opening audit log: %w", err)
		}
		a.auditor = fa
		a.closers = append(a.closers, func() { _ = fa.Close() })
		logger.Info("audit log enabled", slog.String("path", cfg.AuditLog))
	}

	db, err := openBackend(ctx, cfg)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("connecting to database %s: %w", redactDSN(cfg.DatabaseURL), err)
	}
	a.db = db
	a.closers = append(a.closers, db.Close)

	logger.Info("database connected",
		slog.String("db.system", db.Dialect()),
		slog.String("database_url", redactDSN(cfg.DatabaseURL)),
		slog.Int("pool_max_conns", int(cfg.PoolMaxConns)),
	)
	return a, nil
}

// close releases resources in reverse order of acquisition.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// openBackend connects the adapter matching the DATABASE_URL scheme.
func openBackend(ctx context.Context, cfg *config.Config) (backend, error) {
	dialect, err := cfg.Dialect()
	if err != nil {
		return nil, err
	}

	switch dialect {
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, postgres.PoolSettings{
			MaxConns:        cfg.PoolMaxConns,
			MinConns:        cfg.PoolMinConns,
			MaxConnLifetime: cfg.PoolMaxConnLifetime,
		})
		if err != nil {
			return nil, err
		}
		return postgres.NewDB(pool), nil
	case "mysql":
		db, err := mysql.Open(ctx, cfg.DatabaseURL, mysql.PoolSettings{
			MaxConns:        cfg.PoolMaxConns,
			MinConns:        cfg.PoolMinConns,
			MaxConnLifetime: cfg.PoolMaxConnLifetime,
		})
		if err != nil {
			return nil, err
		}
		return mysql.NewDB(db), nil
	default:
		return nil, errors.New("unsupported dialect " + dialect)
	}
}
