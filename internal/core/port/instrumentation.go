package port

import "context"

// Instrumentation records application-level metrics.
type Instrumentation interface {
	RecordStatementDuration(ctx context.Context, ms float64)
	IncrementStatementCount(ctx context.Context)
	IncrementStatementErrors(ctx context.Context)
	RecordRequestDuration(ctx context.Context, route string, status int, ms float64)
	RecordToolDuration(ctx context.Context, ms float64)
}

// NoopInstrumentation discards all metrics.
type NoopInstrumentation struct{}

func (NoopInstrumentation) RecordStatementDuration(context.Context, float64)            {}
func (NoopInstrumentation) IncrementStatementCount(context.Context)                     {}
func (NoopInstrumentation) IncrementStatementErrors(context.Context)                    {}
func (NoopInstrumentation) RecordRequestDuration(context.Context, string, int, float64) {}
func (NoopInstrumentation) RecordToolDuration(context.Context, float64)                 {}
