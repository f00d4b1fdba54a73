package port

import "context"

// Instrumentation records application-level metrics.
type Instrumentation interface {
	RecordValidationDuration(ctx context.Context, ms float64)
	IncrementValidationCount(ctx context.Context)
	IncrementRejectionCount(ctx context.Context)
	RecordToolDuration(ctx context.Context, ms float64)
}

// NoopInstrumentation discards all metrics.
type NoopInstrumentation struct{}

func (NoopInstrumentation) RecordValidationDuration(context.Context, float64) {}
func (NoopInstrumentation) IncrementValidationCount(context.Context)          {}
func (NoopInstrumentation) IncrementRejectionCount(context.Context)           {}
func (NoopInstrumentation) RecordToolDuration(context.Context, float64)       {}
