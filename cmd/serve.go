package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/supercal/internal/calendar"
	"github.com/teemow/supercal/internal/google"
	"github.com/teemow/supercal/internal/instrumentation"
	"github.com/teemow/supercal/internal/llm"
	"github.com/teemow/supercal/internal/server"
	"github.com/teemow/supercal/internal/tools/calendar_tools"
)

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: true)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

func newServeCmd() *cobra.Command {
	var (
		debugMode      bool
		transport      string
		httpAddr       string
		modelName      string
		timezone       string
		maxTurns       int
		metricsEnabled bool
		metricsAddr    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the calendar agent server",
		Long: `Start the calendar agent server.

Supports multiple transport types:
  - http: Chat API streaming agent progress over Server-Sent Events (default)
  - stdio: MCP server exposing the calendar tools to AI assistants

Authentication:
  HTTP clients either send a Google OAuth Bearer token per request, or the
  server uses the token stored by 'supercal auth'. The stdio transport always
  uses the stored token.

Model access requires GOOGLE_API_KEY or GEMINI_API_KEY.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			metricsConfig := MetricsConfig{
				Enabled: metricsEnabled,
				Addr:    metricsAddr,
			}
			return runServe(transport, debugMode, httpAddr, modelName, timezone, maxTurns, metricsConfig)
		},
	}

	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&transport, "transport", "http", "Transport type: http or stdio")
	cmd.Flags().StringVar(&httpAddr, "addr", ":8000", "HTTP server address (for http transport). Can also use SUPERCAL_ADDR env var.")
	cmd.Flags().StringVar(&modelName, "model", "", "Language model to use (default: "+llm.DefaultGeminiModel+"). Can also use GEMINI_MODEL env var.")
	cmd.Flags().StringVar(&timezone, "timezone", "", "Reference timezone for get_current_time (default: "+calendar_tools.DefaultTimezone+"). Can also use SUPERCAL_TIMEZONE env var.")
	cmd.Flags().IntVar(&maxTurns, "max-turns", 0, "Maximum agent loop turns per chat request (default: 20). Can also use SUPERCAL_MAX_TURNS env var.")
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9090", "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

func runServe(transport string, debugMode bool, httpAddr, modelName, timezone string, maxTurns int, metricsConfig MetricsConfig) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if debugMode {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	// Environment fallbacks for flag defaults
	if httpAddr == "" || httpAddr == ":8000" {
		if addr := os.Getenv("SUPERCAL_ADDR"); addr != "" {
			httpAddr = addr
		}
	}
	if modelName == "" {
		modelName = os.Getenv("GEMINI_MODEL")
	}
	if modelName == "" {
		modelName = llm.DefaultGeminiModel
	}
	if timezone == "" {
		timezone = os.Getenv("SUPERCAL_TIMEZONE")
	}
	if maxTurns == 0 {
		if v := os.Getenv("SUPERCAL_MAX_TURNS"); v != "" {
			if _, err := fmt.Sscanf(v, "%d", &maxTurns); err != nil {
				log.Printf("Warning: invalid SUPERCAL_MAX_TURNS value %q, using default", v)
			}
		}
	}
	if !metricsConfig.Enabled && os.Getenv("METRICS_ENABLED") == "true" {
		metricsConfig.Enabled = true
	}
	if metricsConfig.Addr == "" || metricsConfig.Addr == ":9090" {
		if addr := os.Getenv("METRICS_ADDR"); addr != "" {
			metricsConfig.Addr = addr
		}
	}

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			if transport != "stdio" {
				log.Printf("Error during instrumentation shutdown: %v", err)
			}
		}
	}()

	// Start metrics server if enabled and not in stdio mode
	var metricsServer *server.MetricsServer
	if transport != "stdio" && metricsConfig.Enabled && provider.Enabled() {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    metricsConfig.Addr,
			Enabled:                 true,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}

		// Use ready channel to confirm metrics server started successfully
		metricsReady := make(chan struct{})
		metricsErr := make(chan error, 1)
		go func() {
			if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && !errors.Is(err, http.ErrServerClosed) {
				metricsErr <- err
			}
			close(metricsErr)
		}()

		select {
		case <-metricsReady:
			log.Printf("Metrics server started on %s", metricsServer.Addr())
		case err := <-metricsErr:
			return fmt.Errorf("metrics server failed to start: %w", err)
		case <-time.After(5 * time.Second):
			return fmt.Errorf("metrics server startup timed out")
		}
	}

	// Create the shared language model client
	model, err := llm.NewGemini(shutdownCtx, modelName)
	if err != nil {
		return fmt.Errorf("failed to create language model client: %w", err)
	}
	defer func() { _ = model.Close() }()

	serverContext, err := server.NewServerContext(shutdownCtx, model, provider, server.Config{
		ModelName: modelName,
		Timezone:  timezone,
		MaxTurns:  maxTurns,
	})
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}

	defer func() {
		// Shutdown metrics server first
		if metricsServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				log.Printf("Error during metrics server shutdown: %v", err)
			}
		}
		if err := serverContext.Shutdown(); err != nil {
			if transport != "stdio" {
				log.Printf("Error during server context shutdown: %v", err)
			}
		}
	}()

	switch transport {
	case "http":
		return runHTTPServer(shutdownCtx, serverContext, httpAddr)
	case "stdio":
		return runStdioServer(shutdownCtx, serverContext)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: http, stdio)", transport)
	}
}

func runHTTPServer(ctx context.Context, sc *server.ServerContext, addr string) error {
	health := server.NewHealthChecker(sc)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           sc.Routes(health),
		ReadHeaderTimeout: 10 * time.Second,
		// No WriteTimeout: chat streams stay open for the whole agent run
		IdleTimeout: 120 * time.Second,
	}

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		log.Printf("Starting supercal server on %s", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverDone <- err
		}
	}()

	select {
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("server stopped with error: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Println("Shutting down server...")
		health.SetReady(false)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	}
}

func runStdioServer(ctx context.Context, sc *server.ServerContext) error {
	fileTokens := google.NewFileTokenProvider()
	if !fileTokens.HasToken() {
		return fmt.Errorf("no stored token; run 'supercal auth' first")
	}

	ts, err := fileTokens.TokenSource(ctx)
	if err != nil {
		return fmt.Errorf("failed to build token source: %w", err)
	}

	client, err := calendar.NewClient(ctx, ts)
	if err != nil {
		return fmt.Errorf("failed to create calendar client: %w", err)
	}

	mcpSrv := mcpserver.NewMCPServer("supercal", version,
		mcpserver.WithToolCapabilities(true),
	)

	toolset := calendar_tools.New(client, calendar_tools.WithLocation(sc.Location()))
	if err := calendar_tools.RegisterMCPTools(mcpSrv, toolset); err != nil {
		return fmt.Errorf("failed to register calendar tools: %w", err)
	}

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err = <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}
