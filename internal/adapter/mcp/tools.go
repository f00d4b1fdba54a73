// Package mcp exposes the validation service as MCP tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sqlward/sqlward/internal/core/service"
)

// Server metadata
const serverName = "sqlward"

// Tool descriptions
const (
	descValidateSQL = "Validate a SELECT query against the configured table before running it anywhere. " +
		"Checks security (dangerous keywords, statement stacking, length), PostgreSQL syntax, " +
		"and that every referenced column exists in the table. " +
		"Returns a JSON verdict with errors, warnings, fuzzy column suggestions for likely typos, " +
		"and a normalized form of the query when it is valid. " +
		"Call this on any generated or user-supplied SQL before execution."

	descValidateSQLParam = "The SELECT query to validate"

	descNormalizeSQL = "Validate a SELECT query and return its canonical single-line rendering " +
		"with standardized whitespace and keyword casing. " +
		"Fails with the highest-priority validation error if the query is invalid, " +
		"so the output is always safe to cache, compare, or deduplicate."

	descNormalizeSQLParam = "The SELECT query to normalize"

	descDescribeSchema = "Describe the single table queries are validated against: its name and its columns with types. " +
		"Use this to learn which columns exist before writing a query, " +
		"or to interpret missing-column suggestions from validate_sql."
)

func RegisterTools(s *server.MCPServer, validation *service.ValidationService, logger *slog.Logger) {
	s.AddTool(
		mcp.NewTool("validate_sql",
			mcp.WithDescription(descValidateSQL),
			mcp.WithString("sql",
				mcp.Required(),
				mcp.Description(descValidateSQLParam),
			),
		),
		validateSQLHandler(validation, logger),
	)

	s.AddTool(
		mcp.NewTool("normalize_sql",
			mcp.WithDescription(descNormalizeSQL),
			mcp.WithString("sql",
				mcp.Required(),
				mcp.Description(descNormalizeSQLParam),
			),
		),
		normalizeSQLHandler(validation, logger),
	)

	s.AddTool(
		mcp.NewTool("describe_schema",
			mcp.WithDescription(descDescribeSchema),
		),
		describeSchemaHandler(validation, logger),
	)
}

func validateSQLHandler(validation *service.ValidationService, logger *slog.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sql, ok := request.GetArguments()["sql"].(string)
		if !ok || sql == "" {
			return mcp.NewToolResultError("sql is required"), nil
		}

		ctx = service.WithToolName(ctx, "validate_sql")
		result, err := validation.Validate(ctx, sql)
		if err != nil {
			return mcp.NewToolResultError(sanitizeError(logger, err, "validate query")), nil
		}

		data, err := json.Marshal(result)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}

		return mcp.NewToolResultText(string(data)), nil
	}
}

func normalizeSQLHandler(validation *service.ValidationService, logger *slog.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sql, ok := request.GetArguments()["sql"].(string)
		if !ok || sql == "" {
			return mcp.NewToolResultError("sql is required"), nil
		}

		ctx = service.WithToolName(ctx, "normalize_sql")
		normalized, err := validation.Normalize(ctx, sql)
		if err != nil {
			return mcp.NewToolResultError(sanitizeError(logger, err, "normalize query")), nil
		}

		return mcp.NewToolResultText(normalized), nil
	}
}

func describeSchemaHandler(validation *service.ValidationService, logger *slog.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		schema, err := validation.Schema(ctx)
		if err != nil {
			return mcp.NewToolResultError(sanitizeError(logger, err, "describe schema")), nil
		}

		data, err := json.Marshal(schema)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}

		return mcp.NewToolResultText(string(data)), nil
	}
}

// sanitizeError maps internal errors to client-safe messages. Validation
// verdicts pass through verbatim; infrastructure failures are logged in
// full and replaced with a generic message so connection strings and
// catalog details never reach the client.
func sanitizeError(logger *slog.Logger, err error, op string) string {
	if errors.Is(err, service.ErrValidationFailed) {
		return err.Error()
	}

	logger.Error("tool error",
		slog.String("operation", op),
		slog.String("error.message", err.Error()),
	)
	return fmt.Sprintf("internal error while trying to %s: check server logs", op)
}
