// Package server assembles the HTTP application: handlers, middleware and
// the server lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/iudanet/portfolio/internal/content"
	"github.com/iudanet/portfolio/internal/render"
	"github.com/iudanet/portfolio/internal/server/handlers"
	"github.com/iudanet/portfolio/internal/server/middleware"
	"github.com/iudanet/portfolio/internal/server/storage"
	"github.com/iudanet/portfolio/internal/server/web"
)

const (
	// ShutdownTimeout bounds graceful shutdown
	ShutdownTimeout = 10 * time.Second

	readHeaderTimeout = 5 * time.Second
	readTimeout       = 30 * time.Second
	writeTimeout      = 60 * time.Second
	idleTimeout       = 120 * time.Second
)

// Options configures a Server
type Options struct {
	Logger  *slog.Logger
	Content *content.Service
	Users   storage.UserStorage
	Tokens  storage.TokenStorage
	// Objects serves /files; nil when uploads live on an external host
	Objects storage.ObjectReader
	// PDF renders /resume.pdf; nil disables rendering
	PDF            render.PDFRenderer
	Addr           string
	BaseURL        string
	Version        string
	JWT            handlers.JWTConfig
	LoginPerMinute int
}

// Server is the portfolio HTTP server.
type Server struct {
	httpServer *http.Server
	limiter    *middleware.RateLimiter
	logger     *slog.Logger
	jwtConfig  handlers.JWTConfig
}

// New wires handlers and middleware. Call Run to serve.
func New(opts Options) (*Server, error) {
	pages, err := web.New()
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	s := &Server{
		logger:    opts.Logger,
		jwtConfig: opts.JWT,
		limiter:   middleware.NewRateLimiter(opts.LoginPerMinute, time.Minute, opts.Logger),
	}

	authHandler := handlers.NewAuthHandler(opts.Logger, opts.Users, opts.Tokens, opts.JWT)
	secureCookie := strings.HasPrefix(opts.BaseURL, "https://")

	h := Handlers{
		Public:   handlers.NewPublicHandler(opts.Logger, opts.Content, pages, opts.PDF, opts.Objects),
		Auth:     authHandler,
		AdminAPI: handlers.NewAdminAPIHandler(opts.Logger, opts.Content),
		Admin:    handlers.NewAdminPages(opts.Logger, opts.Content, authHandler, pages, opts.JWT, secureCookie),
		Health: handlers.NewHealthHandler(opts.Logger, opts.Version, func() string {
			return string(opts.Content.Snapshot().Status)
		}),
	}

	var handler http.Handler = NewRouter(h, guardsFor(s))
	handler = middleware.LoggingWithSkip(opts.Logger, []string{"/api/v1/health"})(handler)
	handler = middleware.RecoveryMiddleware(opts.Logger)(handler)

	s.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ErrorLog:          slog.NewLogLogger(opts.Logger.Handler(), slog.LevelWarn),
	}

	return s, nil
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves until ctx is canceled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	defer s.limiter.Stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.InfoContext(ctx, "http server listening", slog.String("addr", s.httpServer.Addr))
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.logger.InfoContext(ctx, "shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
