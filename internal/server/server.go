package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/rolesplit/internal/shared"
	"github.com/desertthunder/rolesplit/internal/spreadsheet"
	"github.com/desertthunder/rolesplit/internal/tasks"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
// Common middleware includes logging, rate limiting and panic recovery.
type Middleware func(http.Handler) http.Handler

// Handler defines the interface for HTTP request handlers in the split service.
// Implementations handle specific endpoints (upload, health).
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
// Implementations register handlers, apply middleware, and configure the HTTP server.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// Splitter runs one spreadsheet through classification and export.
type Splitter interface {
	Run(ctx context.Context, progress chan<- tasks.ProgressUpdate, data []byte, format spreadsheet.Format) (*tasks.SplitResult, error)
}

const shutdownTimeout = 5 * time.Second

// New builds the router for the split service with the standard middleware stack.
func New(cfg shared.ServerConfig, splitter Splitter, logger *log.Logger) *BasicRouter {
	router := NewBasicRouter()
	router.Use(Recoverer(logger), RequestLogger(logger))
	if cfg.RateLimit > 0 {
		router.Use(RateLimit(cfg.RateLimit, cfg.Burst))
	}

	router.Handle(http.MethodGet, "/health", HealthHandler())
	router.Handler(NewExtractHandler(splitter, cfg.MaxUploadMB<<20, logger))
	return router
}

// ListenAndServe serves router on the configured address until ctx is cancelled, then shuts down gracefully.
func ListenAndServe(ctx context.Context, cfg shared.ServerConfig, router http.Handler, logger *log.Logger) error {
	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
		close(serverErrors)
	}()

	select {
	case err, ok := <-serverErrors:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("error shutting down server", "error", err)
		return err
	}
	logger.Info("server stopped")
	return nil
}
