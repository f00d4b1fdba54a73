package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "github.com/sqlward/sqlward"

// Instruments holds pre-created OTel metric instruments.
type Instruments struct {
	ValidationCount    metric.Int64Counter
	ValidationDuration metric.Float64Histogram
	RejectionCount     metric.Int64Counter
	ToolDuration       metric.Float64Histogram
}

// NewInstruments creates metric instruments from the global MeterProvider.
// Returns nil-safe instruments: if creation fails, noop instruments are used.
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
	validationCount, _ := meter.Int64Counter("sqlward.validation.count",
		metric.WithDescription("Total number of queries that passed validation"),
	)
	validationDuration, _ := meter.Float64Histogram("sqlward.validation.duration",
		metric.WithDescription("Validation pipeline duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	rejectionCount, _ := meter.Int64Counter("sqlward.validation.rejected",
		metric.WithDescription("Total number of queries rejected by validation"),
	)
	toolDuration, _ := meter.Float64Histogram("sqlward.tool.duration",
		metric.WithDescription("MCP tool call duration in milliseconds"),
		metric.WithUnit("ms"),
	)

	return &Instruments{
		ValidationCount:    validationCount,
		ValidationDuration: validationDuration,
		RejectionCount:     rejectionCount,
		ToolDuration:       toolDuration,
	}
}

func (i *Instruments) RecordValidationDuration(ctx context.Context, ms float64) {
	i.ValidationDuration.Record(ctx, ms)
}

func (i *Instruments) IncrementValidationCount(ctx context.Context) {
	i.ValidationCount.Add(ctx, 1)
}

func (i *Instruments) IncrementRejectionCount(ctx context.Context) {
	i.RejectionCount.Add(ctx, 1)
}

func (i *Instruments) RecordToolDuration(ctx context.Context, ms float64) {
	i.ToolDuration.Record(ctx, ms)
}
