package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/wonny/folio/pkg/config"
	"github.com/wonny/folio/pkg/logger"
)

// Server serves the valuation API.
// Request contexts derive from a server context that Shutdown cancels, so
// computations and websocket streams still running after the grace period stop
// their price fetches.
// ⭐ SSOT: API 서버 설정은 이 파일에서만
type Server struct {
	httpServer *http.Server
	logger     *logger.Logger
	config     *config.Config

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new API server
func New(cfg *config.Config, log *logger.Logger, router http.Handler) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		httpServer: &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 2 * time.Minute, // 종목 수에 비례해 가격 조회가 길어짐
			IdleTimeout:  60 * time.Second,
			BaseContext:  func(net.Listener) context.Context { return ctx },
		},
		logger: log.Component("api"),
		config: cfg,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Handler exposes the root handler (httptest)
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start listens on the configured port and serves until Shutdown
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return s.Serve(ln)
}

// Serve serves on ln until Shutdown
func (s *Server) Serve(ln net.Listener) error {
	s.logger.WithFields(map[string]interface{}{
		"addr":      ln.Addr().String(),
		"env":       s.config.Env,
		"source":    s.config.Pricing.Source,
		"benchmark": s.config.Pricing.BenchmarkSymbol,
	}).Info("Starting API server")

	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests until ctx expires, then cancels whatever
// is still computing (including hijacked websocket streams)
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server")
	defer s.cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}
