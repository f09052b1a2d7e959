// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Userdir Contributors

// Package httpapi exposes the user directory over HTTP. It owns routing,
// request decoding, actor resolution, and the mapping from domain error
// codes to HTTP statuses; all authorization and consistency rules live in
// the directory package.
package httpapi

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/samber/oops"

	"github.com/userdir/userdir/internal/directory"
	"github.com/userdir/userdir/internal/observability"
)

// TokenParser verifies a session token and returns the subject login.
type TokenParser interface {
	Parse(token string) (string, error)
}

// Server serves the directory API.
type Server struct {
	addr       string
	svc        *directory.Service
	tokens     TokenParser
	metrics    *observability.Metrics
	logger     *slog.Logger
	listener   net.Listener
	httpServer *http.Server
	running    atomic.Bool
}

// NewServer creates an API server. metrics may be nil.
func NewServer(addr string, svc *directory.Service, tokens TokenParser, metrics *observability.Metrics, logger *slog.Logger) (*Server, error) {
	if svc == nil {
		return nil, oops.Errorf("directory service is required")
	}
	if tokens == nil {
		return nil, oops.Errorf("token parser is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		addr:    addr,
		svc:     svc,
		tokens:  tokens,
		metrics: metrics,
		logger:  logger,
	}, nil
}

// Handler builds the full route table. Exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/login", s.route("auth_login", s.handleLogin))

	mux.Handle("POST /api/users", s.authed("users_create", s.handleCreateUser))
	mux.Handle("GET /api/users", s.authed("users_list", s.handleListActive))
	mux.Handle("GET /api/users/self", s.authed("users_self", s.handleSelf))
	mux.Handle("GET /api/users/older-than/{age}", s.authed("users_older_than", s.handleListOlderThan))
	mux.Handle("GET /api/users/{login}", s.authed("users_get", s.handleGetByLogin))
	mux.Handle("PUT /api/users/{login}", s.authed("users_update", s.handleUpdateUser))
	mux.Handle("PUT /api/users/{login}/password", s.authed("users_update_password", s.handleUpdatePassword))
	mux.Handle("PUT /api/users/{login}/login", s.authed("users_update_login", s.handleUpdateLogin))
	mux.Handle("DELETE /api/users/{login}", s.authed("users_delete", s.handleDeleteUser))
	mux.Handle("POST /api/users/{login}/restore", s.authed("users_restore", s.handleRestoreUser))

	return mux
}

// authed wraps a handler with actor resolution and instrumentation.
func (s *Server) authed(routeName string, h http.HandlerFunc) http.Handler {
	return s.withActor(http.HandlerFunc(s.route(routeName, h)))
}

// route instruments a handler with request metrics.
func (s *Server) route(routeName string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.metrics == nil {
			h(w, r)
			return
		}

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h(rec, r)

		s.metrics.RequestsTotal.
			WithLabelValues(routeName, strconv.Itoa(rec.status)).Inc()
		s.metrics.RequestDuration.
			WithLabelValues(routeName).Observe(time.Since(start).Seconds())
	}
}

// statusRecorder captures the response status for instrumentation.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Start begins serving the API. It returns an error channel that receives
// any error from the HTTP server after it starts; the channel is closed when
// the server stops gracefully.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Errorf("api server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.With("addr", s.addr).Wrap(err)
	}
	s.listener = listener

	httpSrv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.httpServer = httpSrv

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if serveErr := httpSrv.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			s.logger.Error("api server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	s.logger.Info("api server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Stop gracefully shuts down the API server.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.running.Store(true)
			return oops.With("operation", "shutdown_api_server").Wrap(err)
		}
	}

	s.logger.Info("api server stopped")
	return nil
}

// Addr returns the address the server is listening on, or "" if not running.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}
