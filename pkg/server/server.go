package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	appconfig "github.com/savaki/christine-bot/pkg/config"
)

// Health bodies served on GET / and GET /slack/events
const (
	RootBody   = "Backend is running ✅"
	EventsBody = "Slack events endpoint (GET) is alive"
)

// Drainer waits for in-flight dispatches to finish
type Drainer interface {
	Wait(ctx context.Context) error
}

// Server exposes the Slack webhook and the health endpoints
type Server struct {
	cfg      *appconfig.Config
	events   http.Handler
	drainer  Drainer
	logger   zerolog.Logger
	httpSrv  *http.Server
	listener net.Listener
}

// New creates a server. events handles POST /slack/events; drainer is
// waited on after the listener stops.
func New(cfg *appconfig.Config, events http.Handler, drainer Drainer, logger zerolog.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		events:  events,
		drainer: drainer,
		logger:  logger,
	}
	s.httpSrv = &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the routed handler wrapped in request logging
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		writeText(w, RootBody)
	})
	mux.HandleFunc("GET /slack/events", func(w http.ResponseWriter, r *http.Request) {
		writeText(w, EventsBody)
	})
	mux.Handle("POST /slack/events", s.events)
	mux.HandleFunc("GET /debug", s.handleDebug)

	return s.logRequests(mux)
}

// DebugInfo is the GET /debug payload. It reports which secrets are set,
// never their values.
type DebugInfo struct {
	appconfig.Secrets
	Provider string `json:"provider"`
}

// NewDebugInfo builds the debug payload for cfg
func NewDebugInfo(cfg *appconfig.Config) DebugInfo {
	return DebugInfo{
		Secrets:  cfg.Secrets(),
		Provider: cfg.Provider,
	}
}

func (s *Server) handleDebug(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(NewDebugInfo(s.cfg))
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Listen binds the configured address. Run calls it when needed; tests call
// it first to learn the bound port.
func (s *Server) Listen() (net.Addr, error) {
	ln, err := net.Listen("tcp", s.httpSrv.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", s.httpSrv.Addr, err)
	}
	s.listener = ln
	return ln.Addr(), nil
}

// Run serves until ctx is cancelled, then stops accepting requests and
// drains in-flight dispatches within SHUTDOWN_TIMEOUT
func (s *Server) Run(ctx context.Context) error {
	if s.listener == nil {
		if _, err := s.Listen(); err != nil {
			return err
		}
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.listener.Addr().String()).Msg("server started")
		errc <- s.httpSrv.Serve(s.listener)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	if s.drainer != nil {
		if err := s.drainer.Wait(shutdownCtx); err != nil {
			return fmt.Errorf("drain dispatches: %w", err)
		}
	}

	s.logger.Info().Msg("server stopped")
	return nil
}

func writeText(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, body)
}
