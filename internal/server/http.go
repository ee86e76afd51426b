// Package server runs the HTTP server behind a pluggable security layer.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/coursedesk/coursedesk-server/internal/logger"
	"github.com/coursedesk/coursedesk-server/internal/model"
)

// HTTP serves an http.Handler on a listener produced by a SecurityLayer.
type HTTP struct {
	addr    string
	handler http.Handler
	logger  *logger.Logger

	mu        sync.Mutex
	srv       *http.Server
	boundAddr string
}

var _ model.Server = (*HTTP)(nil)

func NewHTTP(addr string, handler http.Handler, logger *logger.Logger) *HTTP {
	return &HTTP{
		addr:    addr,
		handler: handler,
		logger:  logger,
	}
}

// Start listens and serves until Stop is called. It blocks; a clean
// shutdown returns nil.
func (s *HTTP) Start(securityLayer model.SecurityLayer) error {
	ln, err := securityLayer.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}

	s.mu.Lock()
	s.srv = &http.Server{Handler: s.handler}
	s.boundAddr = ln.Addr().String()
	srv := s.srv
	s.mu.Unlock()

	s.logger.Info("http server: listening", "addr", s.boundAddr)

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}

// Stop shuts the server down gracefully, waiting for in-flight requests
// until the context expires.
func (s *HTTP) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.mu.Unlock()

	if srv == nil {
		return nil
	}

	s.logger.Info("http server: shutting down")
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

// Address returns the bound address once the server started, the configured
// address before that.
func (s *HTTP) Address() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.boundAddr != "" {
		return s.boundAddr
	}
	return s.addr
}
