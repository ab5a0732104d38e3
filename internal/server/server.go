// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

// Package server exposes the interview session manager over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	parleyerr "github.com/parley-dev/parley/pkg/errors"
	"github.com/parley-dev/parley/pkg/health"
)

// Config holds HTTP server configuration.
type Config struct {
	ListenAddr      string
	CORSOrigins     []string
	SecureCookies   bool
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Server wraps a chi router with a huma API.
type Server struct {
	router      chi.Router
	api         huma.API
	cfg         Config
	services    *Services
	storeHealth *health.Tracker
	log         *slog.Logger
}

// New creates a Server with middleware, CORS and the health endpoint.
// Routes are registered when services are attached.
func New(cfg Config) (*Server, error) {
	if cfg.ListenAddr == "" {
		return nil, parleyerr.New(parleyerr.CodeServerStartFailure, "listen address is required")
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 60 * time.Second
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(corsMiddleware(cfg.CORSOrigins))

	humaConfig := huma.DefaultConfig("Parley", "0.1.0")
	humaConfig.Info.Description = "AI-driven interview session API"
	api := humachi.New(r, humaConfig)

	srv := &Server{
		router:      r,
		api:         api,
		cfg:         cfg,
		storeHealth: health.NewTracker(health.DefaultCooldown),
		log:         slog.Default(),
	}

	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Tags:        []string{"system"},
	}, srv.handleHealth)

	return srv, nil
}

// RegisterServices attaches the handler dependencies and registers all
// interview and voice routes.
func (s *Server) RegisterServices(svc *Services) {
	s.services = svc
	s.registerRoutes()
	s.registerVoiceRoutes()
}

// Handler returns the underlying http.Handler for testing.
func (s *Server) Handler() http.Handler {
	return s.router
}

// API returns the huma API for registering additional operations.
func (s *Server) API() huma.API {
	return s.api
}

// Start runs the HTTP server and blocks until the context is cancelled,
// then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return parleyerr.Wrapf(err, parleyerr.CodeServerStartFailure,
			"listening on %s", s.cfg.ListenAddr)
	}

	srv := &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return parleyerr.Wrap(err, parleyerr.CodeServerShutdownFailure, "shutting down")
	}

	return <-errCh
}

// healthBody is the JSON body of the health endpoint response.
type healthBody struct {
	Status      string         `json:"status" example:"ok" doc:"Service health"`
	Store       string         `json:"store" example:"ok" doc:"Session store reachability"`
	StoreHealth health.Metrics `json:"store_health" doc:"Cumulative session store health"`
}

type healthOutput struct {
	Body healthBody
}

func (s *Server) handleHealth(ctx context.Context, _ *struct{}) (*healthOutput, error) {
	out := &healthOutput{}
	out.Body.Status = "ok"
	out.Body.Store = "ok"

	if s.services != nil {
		if err := s.pingStore(ctx); err != nil {
			out.Body.Store = "unreachable"
		}
	}
	out.Body.StoreHealth = s.storeHealth.Metrics()
	return out, nil
}

// pingStore checks store reachability and feeds the health tracker.
func (s *Server) pingStore(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.services.Store().Ping(pingCtx); err != nil {
		s.storeHealth.RecordFailure()
		return err
	}
	s.storeHealth.RecordSuccess()
	return nil
}

func corsMiddleware(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
