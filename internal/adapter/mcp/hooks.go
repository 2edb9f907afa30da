package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/guillermoBallester/flaskr/internal/core/port"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// inflight tracks one tool call between its before and after hooks.
type inflight struct {
	tool  string
	start time.Time
	span  trace.Span
}

// ToolCallHooks logs every tool call, wraps it in a span and records its
// duration. A nil tracer or inst disables that part.
func ToolCallHooks(logger *slog.Logger, tracer trace.Tracer, inst port.Instrumentation) *server.Hooks {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("noop")
	}
	if inst == nil {
		inst = port.NoopInstrumentation{}
	}

	var calls sync.Map // request id -> *inflight

	finish := func(ctx context.Context, id any, failure error) {
		v, ok := calls.LoadAndDelete(id)
		if !ok {
			return
		}
		call := v.(*inflight)
		elapsed := time.Since(call.start)

		attrs := []slog.Attr{
			slog.String("rpc.method", string(mcp.MethodToolsCall)),
			slog.String("mcp.tool.name", call.tool),
			slog.Int64("duration_ms", elapsed.Milliseconds()),
		}
		level := slog.LevelInfo
		if failure != nil {
			level = slog.LevelError
			attrs = append(attrs, slog.String("error", failure.Error()))
			call.span.RecordError(failure)
			call.span.SetStatus(codes.Error, failure.Error())
		}
		logger.LogAttrs(ctx, level, "tool call", attrs...)

		inst.RecordToolDuration(ctx, float64(elapsed.Milliseconds()))
		call.span.End()
	}

	hooks := &server.Hooks{}

	hooks.AddBeforeCallTool(func(ctx context.Context, id any, req *mcp.CallToolRequest) {
		_, span := tracer.Start(ctx, "mcp.tools/call "+req.Params.Name,
			trace.WithAttributes(attribute.String("mcp.tool.name", req.Params.Name)),
		)
		calls.Store(id, &inflight{tool: req.Params.Name, start: time.Now(), span: span})
	})

	hooks.AddAfterCallTool(func(ctx context.Context, id any, req *mcp.CallToolRequest, result any) {
		var failure error
		if r, ok := result.(*mcp.CallToolResult); ok && r.IsError {
			failure = fmt.Errorf("tool %s returned error", req.Params.Name)
		}
		finish(ctx, id, failure)
	})

	hooks.AddOnError(func(ctx context.Context, id any, method mcp.MCPMethod, message any, err error) {
		if method != mcp.MethodToolsCall {
			return
		}
		finish(ctx, id, err)
	})

	return hooks
}
