package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/scribe/internal/config"
	httpAdapter "github.com/aretw0/scribe/pkg/adapters/http"
	"github.com/aretw0/scribe/pkg/adapters/mcp"
	"github.com/aretw0/scribe/pkg/domain"
	"github.com/aretw0/scribe/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 5 * time.Second

// NewServerHandler builds the HTTP API with metrics, run trails and event
// streams wired into every flow. The returned App must be closed by the caller.
func NewServerHandler(cfg config.Config, logger *slog.Logger, hooks ...domain.LifecycleHooks) (http.Handler, *App, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := observability.NewMetrics(reg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to register metrics: %w", err)
	}
	streams := httpAdapter.NewStreamManager(logger)
	trail := observability.NewTrail()

	hooks = append([]domain.LifecycleHooks{metrics.Hooks(), trail.Hooks(), streams.Hooks()}, hooks...)
	app, err := NewApp(cfg, logger, hooks...)
	if err != nil {
		return nil, nil, err
	}

	handler := httpAdapter.NewHandler(app.Catalog,
		httpAdapter.WithStreams(streams),
		httpAdapter.WithTrail(trail),
		httpAdapter.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
		httpAdapter.WithLogger(logger),
	)
	return handler, app, nil
}

// Serve runs the HTTP API on addr until ctx is cancelled, then shuts down
// gracefully.
func Serve(ctx context.Context, cfg config.Config, logger *slog.Logger, addr string, hooks ...domain.LifecycleHooks) error {
	handler, app, err := NewServerHandler(cfg, logger, hooks...)
	if err != nil {
		return err
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Starting Scribe Server", "address", srv.Addr, "flows", app.Catalog.Names())
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		logger.Info("Start shutdown...")

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Graceful shutdown did not complete", "timeout", shutdownTimeout, "error", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("error killing server: %w", err)
			}
		}
		logger.Info("Scribe Server stopped gracefully")
		return nil
	}
}

// MCP transports.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

// ServeMCP exposes the flows as MCP tools over the given transport.
func ServeMCP(ctx context.Context, app *App, transport string, port int) error {
	srv := mcp.NewServer(app.Catalog, mcp.WithLogger(app.Logger))

	switch transport {
	case TransportStdio:
		app.Logger.Info("Starting Scribe MCP Server (Stdio)...")
		return srv.ServeStdio()
	case TransportSSE:
		app.Logger.Info("Starting Scribe MCP Server (SSE)", "port", port)
		if err := srv.ServeSSE(ctx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		app.Logger.Info("MCP Server stopped gracefully")
		return nil
	default:
		return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
	}
}
