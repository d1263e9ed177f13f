// Package server runs the HTTP listener and stops it, together with the
// components registered on it, when the process is asked to exit.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// ShutdownFunc releases one component.
type ShutdownFunc func(ctx context.Context) error

type component struct {
	name string
	stop ShutdownFunc
}

// Options are the listener settings taken from config.
type Options struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Server is an http.Server plus an ordered list of components to close
// after it drains.
type Server struct {
	http    *http.Server
	grace   time.Duration
	log     *slog.Logger
	ready   chan struct{}
	boundMu sync.RWMutex
	bound   string

	mu         sync.Mutex
	components []component
}

// New returns a Server that will listen on opts.Port. Port 0 picks a free
// port, readable from Addr once Ready is closed.
func New(handler http.Handler, opts Options, logger *slog.Logger) *Server {
	idle := opts.IdleTimeout
	if idle == 0 {
		idle = 2 * opts.ReadTimeout
	}
	return &Server{
		http: &http.Server{
			Addr:              fmt.Sprintf(":%d", opts.Port),
			Handler:           handler,
			ReadTimeout:       opts.ReadTimeout,
			ReadHeaderTimeout: opts.ReadTimeout,
			WriteTimeout:      opts.WriteTimeout,
			IdleTimeout:       idle,
		},
		grace: opts.ShutdownTimeout,
		log:   logger,
		ready: make(chan struct{}),
	}
}

// OnShutdown registers a component. Components are stopped last-in
// first-out once the HTTP server has drained, so the store should be
// registered before anything that depends on it.
func (s *Server) OnShutdown(name string, fn ShutdownFunc) {
	s.mu.Lock()
	s.components = append(s.components, component{name: name, stop: fn})
	s.mu.Unlock()
}

// Run listens and serves until ctx is done, SIGINT or SIGTERM arrives, or
// the listener fails. Registered components are stopped in every case.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return errors.Join(fmt.Errorf("listen %s: %w", s.http.Addr, err), s.shutdown())
	}
	s.boundMu.Lock()
	s.bound = ln.Addr().String()
	s.boundMu.Unlock()
	close(s.ready)

	serveErr := make(chan error, 1)
	go func() {
		s.log.Info("server listening", "addr", s.Addr())
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return errors.Join(fmt.Errorf("serve: %w", err), s.shutdown())
	case <-ctx.Done():
		s.log.Info("shutdown requested", "cause", context.Cause(ctx))
		return s.shutdown()
	}
}

// Ready is closed once the listener is bound.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the bound address when listening, otherwise the configured one.
func (s *Server) Addr() string {
	s.boundMu.RLock()
	defer s.boundMu.RUnlock()
	if s.bound != "" {
		return s.bound
	}
	return s.http.Addr
}

// shutdown drains in-flight requests within the grace period, then stops
// every component. Component errors are joined; an HTTP drain timeout is
// logged but does not stop the components from closing.
func (s *Server) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.grace)
	defer cancel()

	s.http.SetKeepAlivesEnabled(false)
	if err := s.http.Shutdown(ctx); err != nil {
		s.log.Error("http drain incomplete", "error", err, "grace", s.grace)
	} else {
		s.log.Info("http server drained")
	}

	s.mu.Lock()
	components := append([]component(nil), s.components...)
	s.mu.Unlock()

	var errs []error
	for i := len(components) - 1; i >= 0; i-- {
		c := components[i]
		if err := c.stop(ctx); err != nil {
			s.log.Error("component shutdown failed", "component", c.name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", c.name, err))
			continue
		}
		s.log.Info("component stopped", "component", c.name)
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}
	s.log.Info("server stopped")
	return nil
}
