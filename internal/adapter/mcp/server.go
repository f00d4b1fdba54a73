package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"
	"github.com/sqlward/sqlward/internal/core/port"
	"github.com/sqlward/sqlward/internal/core/service"
	"go.opentelemetry.io/otel/trace"
)

// NewServer creates an MCPServer with the validation tools and
// logging/telemetry hooks registered.
func NewServer(version string, validation *service.ValidationService, logger *slog.Logger, tracer trace.Tracer, inst port.Instrumentation) *server.MCPServer {
	s := server.NewMCPServer(
		serverName,
		version,
		server.WithToolCapabilities(true),
		server.WithHooks(ToolCallHooks(logger, tracer, inst)),
	)

	RegisterTools(s, validation, logger)

	return s
}
