package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sqlward/sqlward/internal/core/domain"
	"github.com/sqlward/sqlward/internal/core/port"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// ErrValidationFailed marks errors caused by the query itself rather
// than by infrastructure. Callers may surface these verbatim.
var ErrValidationFailed = errors.New("query failed validation")

type toolNameKey struct{}

// WithToolName returns a context carrying the MCP tool name for audit logging.
func WithToolName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, toolNameKey{}, name)
}

func toolNameFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(toolNameKey{}).(string); ok {
		return v
	}
	return ""
}

// ValidationService orchestrates schema lookup (infrastructure) and the
// validation pipeline (domain), adding logging, audit and telemetry.
type ValidationService struct {
	validator *domain.Validator
	schemas   port.SchemaProvider
	auditor   port.ValidationAuditor
	logger    *slog.Logger
	tracer    trace.Tracer
	inst      port.Instrumentation
}

func NewValidationService(validator *domain.Validator, schemas port.SchemaProvider, auditor port.ValidationAuditor, logger *slog.Logger, tracer trace.Tracer, inst port.Instrumentation) *ValidationService {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("noop")
	}
	if inst == nil {
		inst = port.NoopInstrumentation{}
	}
	return &ValidationService{
		validator: validator,
		schemas:   schemas,
		auditor:   auditor,
		logger:    logger,
		tracer:    tracer,
		inst:      inst,
	}
}

// Validate fetches the schema and runs the full pipeline against sql.
// The returned result carries the verdict; the error return is reserved
// for infrastructure failures (schema lookup), never for invalid SQL.
func (s *ValidationService) Validate(ctx context.Context, sql string) (domain.ValidationResult, error) {
	ctx, span := s.tracer.Start(ctx, "ValidationService.Validate",
		trace.WithAttributes(
			attribute.String("db.operation.name", "validate"),
			attribute.String("db.statement", sql),
		),
	)
	defer span.End()

	schema, err := s.schemas.Schema(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return domain.ValidationResult{}, fmt.Errorf("loading schema: %w", err)
	}

	start := time.Now()
	result := s.validator.Validate(sql, schema)
	durationMS := time.Since(start).Milliseconds()

	s.inst.RecordValidationDuration(ctx, float64(durationMS))

	entry := port.AuditEntry{
		Tool:       toolNameFromCtx(ctx),
		SQL:        sql,
		Valid:      result.IsValid,
		ErrorCount: len(result.Errors),
		DurationMS: durationMS,
	}
	if primary := result.PrimaryError(); primary != nil {
		entry.ErrorType = string(primary.Type)
	}
	s.auditor.Record(ctx, entry)

	if !result.IsValid {
		primary := result.PrimaryError()
		s.logger.WarnContext(ctx, "query rejected",
			slog.String("db.statement", sql),
			slog.String("error.type", entry.ErrorType),
			slog.String("error.message", primary.Message),
			slog.Int("error.count", len(result.Errors)),
		)
		span.SetStatus(codes.Error, primary.Message)
		span.SetAttributes(attribute.String("validation.error_type", entry.ErrorType))
		s.inst.IncrementRejectionCount(ctx)
		return result, nil
	}

	s.inst.IncrementValidationCount(ctx)
	span.SetAttributes(attribute.Int("validation.warnings", len(result.Warnings)))
	return result, nil
}

// Normalize validates sql and returns its canonical rendering. Invalid
// queries yield an error describing the highest-priority finding, so the
// caller never receives a normalized form of a rejected query.
func (s *ValidationService) Normalize(ctx context.Context, sql string) (string, error) {
	result, err := s.Validate(ctx, sql)
	if err != nil {
		return "", err
	}
	if !result.IsValid {
		primary := result.PrimaryError()
		return "", fmt.Errorf("%w (%s): %s", ErrValidationFailed, primary.Type, primary.Message)
	}
	return result.NormalizedSQL, nil
}

// Schema exposes the active SchemaContext for the describe_schema tool.
func (s *ValidationService) Schema(ctx context.Context) (domain.SchemaContext, error) {
	return s.schemas.Schema(ctx)
}
