// Package engine provides the core mock serving engine.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/mockwell/mockwell/pkg/logging"
)

// Server runs the HTTP listener serving both the mock surface and whatever
// additional routes (the admin API) are mounted on its mux.
type Server struct {
	addr       string
	log        *slog.Logger
	httpServer *http.Server

	mu        sync.Mutex
	running   bool
	startTime time.Time
}

// ServerOption is a functional option for configuring a Server.
type ServerOption func(*Server)

// WithLogger sets the operational logger for the server.
func WithLogger(log *slog.Logger) ServerOption {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// NewServer creates a Server listening on addr and serving handler.
func NewServer(addr string, handler http.Handler, opts ...ServerOption) *Server {
	s := &Server{
		addr: addr,
		log:  logging.Nop(),
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins serving and blocks until the listener stops. A graceful
// Shutdown makes Start return nil.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.startTime = time.Now()
	s.mu.Unlock()

	s.log.Info("server listening", "addr", s.addr)
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops the listener, waiting for in-flight requests up to the
// context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	s.log.Info("server shutting down")
	return s.httpServer.Shutdown(ctx)
}

// Uptime reports how long the server has been running, zero if not started.
func (s *Server) Uptime() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return 0
	}
	return time.Since(s.startTime)
}
