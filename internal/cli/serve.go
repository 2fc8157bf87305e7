package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	httpAdapter "github.com/aretw0/genie/pkg/adapters/http"
	"github.com/aretw0/genie/pkg/adapters/mcp"
)

const shutdownTimeout = 5 * time.Second

// RunServe serves the HTTP API until ctx is cancelled, then shuts down gracefully.
func RunServe(ctx context.Context, deps *Deps, addr string) error {
	mgr := deps.NewManager()
	defer mgr.CloseAll()

	handler, err := httpAdapter.NewHandler(mgr,
		httpAdapter.WithLogger(deps.Logger),
		httpAdapter.WithMetricsHandler(deps.Metrics.Handler()),
	)
	if err != nil {
		return fmt.Errorf("failed to build http handler: %w", err)
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		deps.Logger.Info("starting genie server", "addr", srv.Addr, "script", deps.Engine.Name)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		deps.Logger.Info("shutdown started")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			deps.Logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "error", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("error killing server: %w", err)
			}
		}
		deps.Logger.Info("genie server stopped gracefully")
		return nil
	}
}

// RunMCP serves the MCP tools over stdio or SSE.
func RunMCP(ctx context.Context, deps *Deps, transport string, port int) error {
	mgr := deps.NewManager()
	defer mgr.CloseAll()

	srv := mcp.NewServer(mgr, mcp.WithLogger(deps.Logger))
	switch transport {
	case "stdio":
		deps.Logger.Info("starting genie MCP server (stdio)")
		return srv.ServeStdio()
	case "sse":
		deps.Logger.Info("starting genie MCP server (SSE)", "port", port)
		if err := srv.ServeSSE(ctx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	default:
		return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
	}
}
