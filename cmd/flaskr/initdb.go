package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/guillermoBallester/flaskr/internal/config"
	"github.com/guillermoBallester/flaskr/internal/core/port"
	"github.com/guillermoBallester/flaskr/internal/core/service"
	"github.com/guillermoBallester/flaskr/internal/schema"
)

// scriptOpener is the part of a backend init-db needs.
type scriptOpener interface {
	OpenScript(ctx context.Context) (port.ScriptSession, error)
	Dialect() string
}

func runInitDB(ctx context.Context, overrides config.Overrides, out io.Writer) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	a, err := setup(ctx, overrides)
	if err != nil {
		return err
	}
	defer a.close()

	scripts := service.NewScriptService(a.cfg.ScriptSplit, a.cfg.ScriptCommit, a.auditor, a.logger, a.tracer, a.inst)
	return initDB(ctx, a.db, scripts, a.cfg.SchemaFile, a.logger, out)
}

// initDB runs the schema script on one dedicated connection. A statement
// failure stops the script and is logged; the command still reports success,
// leaving earlier statements committed.
func initDB(ctx context.Context, db scriptOpener, scripts *service.ScriptService, schemaFile string, logger *slog.Logger, out io.Writer) error {
	f, err := schema.Open(db.Dialect(), schemaFile)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	sess, err := db.OpenScript(ctx)
	if err != nil {
		return fmt.Errorf("opening script connection: %w", err)
	}
	defer func() {
		if err := sess.Close(ctx); err != nil {
			logger.Error("closing script connection", slog.String("error", err.Error()))
		}
	}()

	report, err := scripts.Run(ctx, sess, f)
	if err != nil {
		return fmt.Errorf("running schema script: %w", err)
	}

	if report.Aborted {
		logger.Warn("schema script stopped early",
			slog.Int("executed", report.Executed),
			slog.String("error", report.Failed.Error()),
		)
	} else {
		logger.Info("schema script finished",
			slog.Int("executed", report.Executed),
			slog.Int("commits", report.Commits),
		)
	}

	fmt.Fprintln(out, "Initialized the database.")
	return nil
}
