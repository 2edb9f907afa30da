package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "github.com/guillermoBallester/flaskr"

// Instruments holds pre-created OTel metric instruments.
type Instruments struct {
	StatementCount    metric.Int64Counter
	StatementDuration metric.Float64Histogram
	StatementErrors   metric.Int64Counter
	RequestDuration   metric.Float64Histogram
	ToolDuration      metric.Float64Histogram
}

// NewInstruments creates metric instruments from the global MeterProvider.
func NewInstruments() *Instruments {
	meter := otel.Meter(meterName)
	return newInstrumentsFromMeter(meter)
}

// NoopInstruments returns instruments that record nothing.
func NoopInstruments() *Instruments {
	meter := noop.NewMeterProvider().Meter(meterName)
	return newInstrumentsFromMeter(meter)
}

func newInstrumentsFromMeter(meter metric.Meter) *Instruments {
	// OTel SDK returns noop instruments on error; safe to discard.
	statementCount, _ := meter.Int64Counter("flaskr.script.statement.count",
		metric.WithDescription("Total number of script statements executed"),
	)
	statementDuration, _ := meter.Float64Histogram("flaskr.script.statement.duration",
		metric.WithDescription("Script statement execution duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	statementErrors, _ := meter.Int64Counter("flaskr.script.statement.errors",
		metric.WithDescription("Total number of failed script statements"),
	)
	requestDuration, _ := meter.Float64Histogram("flaskr.http.request.duration",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	toolDuration, _ := meter.Float64Histogram("flaskr.mcp.tool.duration",
		metric.WithDescription("MCP tool call duration in milliseconds"),
		metric.WithUnit("ms"),
	)

	return &Instruments{
		StatementCount:    statementCount,
		StatementDuration: statementDuration,
		StatementErrors:   statementErrors,
		RequestDuration:   requestDuration,
		ToolDuration:      toolDuration,
	}
}

func (i *Instruments) RecordStatementDuration(ctx context.Context, ms float64) {
	i.StatementDuration.Record(ctx, ms)
}

func (i *Instruments) IncrementStatementCount(ctx context.Context) {
	i.StatementCount.Add(ctx, 1)
}

func (i *Instruments) IncrementStatementErrors(ctx context.Context) {
	i.StatementErrors.Add(ctx, 1)
}

func (i *Instruments) RecordRequestDuration(ctx context.Context, route string, status int, ms float64) {
	i.RequestDuration.Record(ctx, ms, metric.WithAttributes(
		attribute.String("http.route", route),
		attribute.Int("http.response.status_code", status),
	))
}

func (i *Instruments) RecordToolDuration(ctx context.Context, ms float64) {
	i.ToolDuration.Record(ctx, ms)
}
