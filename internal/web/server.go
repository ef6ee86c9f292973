package web

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	charmlog "github.com/charmbracelet/log"

	"github.com/hpungsan/flow/internal/config"
	"github.com/hpungsan/flow/internal/logging"
	"github.com/hpungsan/flow/internal/ops"
)

// NewServer creates and configures the HTTP server for the task API.
func NewServer(db *sql.DB, cfg *config.Config, parser *ops.Parser, logger *charmlog.Logger, bind string, port int) *http.Server {
	h := &Handlers{
		db:     db,
		cfg:    cfg,
		parser: parser,
	}

	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", bind, port),
		Handler:           newHandler(h, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func newHandler(h *Handlers, logger *charmlog.Logger) http.Handler {
	mux := http.NewServeMux()

	// Routes using Go 1.22+ pattern syntax
	mux.HandleFunc("POST /api/parse", h.HandleParse)
	mux.HandleFunc("GET /api/tasks", h.HandleList)
	mux.HandleFunc("POST /api/tasks", h.HandleCreate)
	mux.HandleFunc("POST /api/tasks/purge", h.HandlePurge)
	mux.HandleFunc("GET /api/tasks/{id}", h.HandleDetail)
	mux.HandleFunc("POST /api/tasks/{id}/complete", h.HandleComplete)
	mux.HandleFunc("DELETE /api/tasks/{id}", h.HandleDelete)

	return securityHeaders(requestLogger(logger, mux))
}

// securityHeaders adds security-related HTTP headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// requestLogger attaches logger to each request context and logs one line
// per request once the handler returns.
func requestLogger(logger *charmlog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r.WithContext(logging.WithLogger(r.Context(), logger)))

		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start).Round(time.Microsecond),
		)
	})
}

// Run starts the HTTP server and shuts it down gracefully when ctx is
// cancelled or the process receives SIGINT/SIGTERM.
func Run(ctx context.Context, srv *http.Server, logger *charmlog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.Info("flow API listening", "addr", "http://"+srv.Addr)

	if strings.HasPrefix(srv.Addr, "0.0.0.0") || strings.HasPrefix(srv.Addr, "[::]") || strings.HasPrefix(srv.Addr, ":") {
		logger.Warn("server is binding to all interfaces and may be accessible from the network")
	}

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
