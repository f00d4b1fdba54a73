package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/sqlward/sqlward/internal/adapter/mcp"
	"github.com/sqlward/sqlward/internal/adapter/postgres"
	"github.com/sqlward/sqlward/internal/adapter/rules"
	"github.com/sqlward/sqlward/internal/audit"
	"github.com/sqlward/sqlward/internal/config"
	"github.com/sqlward/sqlward/internal/core/domain"
	"github.com/sqlward/sqlward/internal/core/port"
	"github.com/sqlward/sqlward/internal/core/service"
	"github.com/sqlward/sqlward/internal/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	overrides, err := parseFlags(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Logs go to stderr — stdout is reserved for the MCP stdio transport.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	logger.Info("starting sqlward",
		slog.String("version", version),
		slog.String("log_level", cfg.LogLevel.String()),
		slog.String("transport", cfg.Transport),
		slog.Int("max_query_length", cfg.MaxQueryLength),
		slog.Float64("similarity_threshold", cfg.SimilarityThreshold),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Telemetry (optional).
	var tracer trace.Tracer
	var inst port.Instrumentation
	if cfg.OTelEnabled {
		provider, err := telemetry.Init(ctx, "sqlward", version)
		if err != nil {
			return fmt.Errorf("initializing telemetry: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := provider.Shutdown(shutdownCtx); err != nil {
				logger.Error("telemetry shutdown", slog.String("error.message", err.Error()))
			}
		}()
		tracer = otel.Tracer("sqlward")
		inst = telemetry.NewInstruments()
		logger.Info("telemetry enabled")
	}

	// Schema source: live database table or YAML file.
	var schemas port.SchemaProvider
	if cfg.DatabaseURL != "" {
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, postgres.PoolConfig{
			MaxConns:        cfg.PoolMaxConns,
			MinConns:        cfg.PoolMinConns,
			MaxConnLifetime: cfg.PoolMaxConnLifetime,
		})
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer pool.Close()

		logger.Info("database pool connected",
			slog.String("db.system", "postgresql"),
			slog.String("db.url", redactDSN(cfg.DatabaseURL)),
			slog.String("db.table", cfg.TableName),
		)
		schemas = postgres.NewSchemaProvider(pool, cfg.SchemaName, cfg.TableName)
	} else {
		provider, err := rules.NewFileSchemaProvider(cfg.SchemaFile)
		if err != nil {
			return fmt.Errorf("loading schema file: %w", err)
		}
		logger.Info("schema file loaded", slog.String("file", cfg.SchemaFile))
		schemas = provider
	}

	// Validator config: defaults, env/flag settings, then the rules file.
	guardCfg := domain.DefaultConfig()
	guardCfg.MaxQueryLength = cfg.MaxQueryLength
	guardCfg.SimilarityThreshold = cfg.SimilarityThreshold
	if cfg.RulesFile != "" {
		r, err := rules.LoadFromFile(cfg.RulesFile)
		if err != nil {
			return fmt.Errorf("loading rules: %w", err)
		}
		guardCfg = r.Apply(guardCfg)
		logger.Info("rules loaded", slog.String("file", cfg.RulesFile))
	}

	// Audit log (optional).
	var auditor port.ValidationAuditor = audit.NoopAuditor{}
	if cfg.AuditLog != "" {
		fileAuditor, err := audit.NewFileAuditor(cfg.AuditLog)
		if err != nil {
			return fmt.Errorf("opening audit log: %w", err)
		}
		defer func() { _ = fileAuditor.Close() }()
		auditor = fileAuditor
		logger.Info("audit log enabled", slog.String("file", cfg.AuditLog))
	}

	// Domain and services.
	validator := domain.NewValidator(guardCfg)
	validationSvc := service.NewValidationService(validator, schemas, auditor, logger, tracer, inst)

	// MCP server with tool handlers.
	mcpServer := mcp.NewServer(version, validationSvc, logger, tracer, inst)

	if cfg.Transport == "http" {
		return serveHTTP(ctx, cfg, mcpServer, logger)
	}
	return serveStdio(ctx, mcpServer, logger)
}

func serveStdio(ctx context.Context, mcpServer *mcpserver.MCPServer, logger *slog.Logger) error {
	stdioServer := mcpserver.NewStdioServer(mcpServer)

	logger.Info("serving MCP over stdio")
	if err := stdioServer.Listen(ctx, os.Stdin, os.Stdout); err != nil {
		return fmt.Errorf("stdio server: %w", err)
	}

	logger.Info("shutdown complete")
	return nil
}

func serveHTTP(ctx context.Context, cfg *config.Config, mcpServer *mcpserver.MCPServer, logger *slog.Logger) error {
	streamable := mcpserver.NewStreamableHTTPServer(mcpServer)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.Handle("/mcp", bearerAuthMiddleware(streamable, cfg.HTTPBearerToken))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           recoveryMiddleware(mux, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving MCP over HTTP", slog.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}

	logger.Info("shutdown complete")
	return nil
}

// parseFlags parses CLI arguments into config overrides. Only flags the
// user actually set end up non-nil.
func parseFlags(args []string) (config.Overrides, error) {
	fs := flag.NewFlagSet("sqlward", flag.ContinueOnError)

	databaseURL := fs.String("database-url", "", "Postgres connection string (overrides DATABASE_URL)")
	schemaName := fs.String("schema", "", "Postgres schema of the target table (default public)")
	tableName := fs.String("table", "", "table to validate queries against (overrides TABLE_NAME)")
	schemaFile := fs.String("schema-file", "", "YAML schema file, used instead of a live database")
	rulesFile := fs.String("rules-file", "", "YAML rules file overriding validation defaults")
	maxQueryLength := fs.Int("max-query-length", 0, "maximum accepted query length in bytes")
	similarityThreshold := fs.Float64("similarity-threshold", 0, "minimum similarity ratio for column suggestions (0..1)")
	logLevel := fs.String("log-level", "", "log level: debug, info, warn, error")
	transport := fs.String("transport", "", `transport: "stdio" or "http"`)
	httpAddr := fs.String("http-addr", "", "listen address for the HTTP transport")
	httpBearerToken := fs.String("http-bearer-token", "", "bearer token required by the HTTP transport")
	otelEnabled := fs.Bool("otel", false, "enable OpenTelemetry tracing and metrics")
	auditLog := fs.String("audit-log", "", "path to NDJSON audit log file")
	poolMaxConns := fs.Int("pool-max-conns", 0, "maximum pool connections")
	poolMinConns := fs.Int("pool-min-conns", -1, "minimum pool connections")
	poolMaxConnLifetime := fs.Duration("pool-max-conn-lifetime", 0, "maximum connection lifetime")

	if err := fs.Parse(args); err != nil {
		return config.Overrides{}, err
	}

	var o config.Overrides
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "database-url":
			o.DatabaseURL = databaseURL
		case "schema":
			o.SchemaName = schemaName
		case "table":
			o.TableName = tableName
		case "schema-file":
			o.SchemaFile = schemaFile
		case "rules-file":
			o.RulesFile = rulesFile
		case "max-query-length":
			o.MaxQueryLength = maxQueryLength
		case "similarity-threshold":
			o.SimilarityThreshold = similarityThreshold
		case "log-level":
			o.LogLevel = logLevel
		case "transport":
			o.Transport = transport
		case "http-addr":
			o.HTTPAddr = httpAddr
		case "http-bearer-token":
			o.HTTPBearerToken = httpBearerToken
		case "otel":
			o.OTelEnabled = *otelEnabled
		case "audit-log":
			o.AuditLog = *auditLog
		case "pool-max-conns":
			v := int32(*poolMaxConns)
			o.PoolMaxConns = &v
		case "pool-min-conns":
			v := int32(*poolMinConns)
			o.PoolMinConns = &v
		case "pool-max-conn-lifetime":
			o.PoolMaxConnLifetime = poolMaxConnLifetime
		}
	})

	return o, nil
}

// redactDSN masks the password in a connection string for logging.
func redactDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "***"
	}
	if _, has := u.User.Password(); has {
		u.User = url.UserPassword(u.User.Username(), "***")
	}
	return u.String()
}
