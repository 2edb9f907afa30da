package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/guillermoBallester/flaskr/internal/core/domain"
	"github.com/guillermoBallester/flaskr/internal/core/port"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// ScriptReport summarizes one script run.
type ScriptReport struct {
	Steps    int
	Executed int
	Commits  int
	Aborted  bool
	Failed   *domain.StatementError
}

// ScriptService replays SQL scripts statement by statement against a caller-owned connection.
type ScriptService struct {
	mode    domain.SplitMode
	policy  domain.CommitPolicy
	auditor port.Auditor
	logger  *slog.Logger
	tracer  trace.Tracer
	inst    port.Instrumentation
}

func NewScriptService(mode domain.SplitMode, policy domain.CommitPolicy, auditor port.Auditor, logger *slog.Logger, tracer trace.Tracer, inst port.Instrumentation) *ScriptService {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("noop")
	}
	if inst == nil {
		inst = port.NoopInstrumentation{}
	}
	if auditor == nil {
		auditor = port.NoopAuditor{}
	}
	return &ScriptService{
		mode:    mode,
		policy:  policy,
		auditor: auditor,
		logger:  logger,
		tracer:  tracer,
		inst:    inst,
	}
}

// Run reads the whole script from r and executes it against conn.
//
// Read, decode and commit errors are returned. A failing statement is not: it
// is logged, stops the run, and is reported in ScriptReport.Failed. Work
// committed before the failure stays committed.
func (s *ScriptService) Run(ctx context.Context, conn port.ScriptConn, r io.Reader) (*ScriptReport, error) {
	ctx, span := s.tracer.Start(ctx, "ScriptService.Run",
		trace.WithAttributes(
			attribute.String("db.operation.name", "script"),
			attribute.String("flaskr.script.split", string(s.mode)),
			attribute.String("flaskr.script.commit", string(s.policy)),
		),
	)
	defer span.End()

	data, err := io.ReadAll(r)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("reading script: %w", err)
	}

	steps, err := domain.PlanScript(data, s.mode, s.policy)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("planning script: %w", err)
	}

	report := &ScriptReport{Steps: len(steps)}
	for _, step := range steps {
		if step.Statement != "" {
			if err := s.exec(ctx, conn, step, report.Executed+1); err != nil {
				report.Aborted = true
				report.Failed = err
				s.logger.ErrorContext(ctx, "error during execute statement",
					slog.String("db.statement", step.Statement),
					slog.Int("script.line", step.Line),
					slog.String("error.message", err.Err.Error()),
				)
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				break
			}
			report.Executed++
		}

		if step.Commit {
			if err := conn.Commit(ctx); err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return report, fmt.Errorf("committing after line %d: %w", step.Line, err)
			}
			report.Commits++
		}
	}

	span.SetAttributes(
		attribute.Int("flaskr.script.executed", report.Executed),
		attribute.Bool("flaskr.script.aborted", report.Aborted),
	)
	s.logger.InfoContext(ctx, "script finished",
		slog.Int("executed", report.Executed),
		slog.Int("commits", report.Commits),
		slog.Bool("aborted", report.Aborted),
	)
	return report, nil
}

func (s *ScriptService) exec(ctx context.Context, conn port.ScriptConn, step domain.Step, index int) *domain.StatementError {
	ctx, span := s.tracer.Start(ctx, "ScriptService.exec",
		trace.WithAttributes(
			attribute.String("db.statement", step.Statement),
			attribute.Int("flaskr.script.line", step.Line),
		),
	)
	defer span.End()

	start := time.Now()
	err := conn.Exec(ctx, step.Statement)
	durationMS := time.Since(start).Milliseconds()

	s.inst.RecordStatementDuration(ctx, float64(durationMS))
	s.auditor.Record(ctx, port.AuditEntry{
		Source:     "script",
		Line:       step.Line,
		SQL:        step.Statement,
		DurationMS: durationMS,
		Err:        err,
	})

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.inst.IncrementStatementErrors(ctx)
		return &domain.StatementError{Index: index, Line: step.Line, Statement: step.Statement, Err: err}
	}

	s.inst.IncrementStatementCount(ctx)
	s.logger.DebugContext(ctx, "statement executed",
		slog.String("db.statement", step.Statement),
		slog.Int64("duration_ms", durationMS),
	)
	return nil
}
