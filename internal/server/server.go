// Package server exposes the aggregation pipeline over HTTP for the
// dashboard frontend, fronted by the response cache layer.
package server

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/devpulse/devpulse/internal/cachestore"
	"github.com/devpulse/devpulse/internal/config"
	"github.com/devpulse/devpulse/internal/gateway"
	"github.com/devpulse/devpulse/internal/httpcache"
	"github.com/devpulse/devpulse/internal/usecase"
)

// Server wires the guard, discovery, aggregation, and cache layers behind a
// chi router.
type Server struct {
	guard      *usecase.Guard
	discoverer *usecase.Discoverer
	aggregator *usecase.Aggregator
	store      cachestore.Store
	responder  *httpcache.Responder
	rules      config.CacheRules
	// fingerprint scopes cache keys per credential without embedding the
	// raw token anywhere.
	fingerprint string
	origins     []string
	logger      *zap.SugaredLogger
	httpServer  *http.Server
}

// New creates a Server around an authenticated gateway client.
func New(client gateway.Client, store cachestore.Store, rules config.CacheRules, credFingerprint string, origins []string, logger *zap.SugaredLogger) *Server {
	return &Server{
		guard:       usecase.NewGuard(client, logger),
		discoverer:  usecase.NewDiscoverer(client, logger),
		aggregator:  usecase.NewAggregator(client, logger),
		store:       store,
		responder:   httpcache.NewResponder(logger),
		rules:       rules,
		fingerprint: credFingerprint,
		origins:     origins,
		logger:      logger,
	}
}

// CredentialFingerprint derives a short, non-reversible cache-key scope from
// a credential.
func CredentialFingerprint(token string) string {
	sum := md5.Sum([]byte(token))
	return hex.EncodeToString(sum[:])[:12]
}

// Router assembles the HTTP routes and middleware.
func (s *Server) Router() chi.Router {
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "If-None-Match"},
		ExposedHeaders: []string{"ETag", "Cache-Control"},
	}))

	router.Get("/healthz", s.handleHealth)
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/repositories", s.handleRepositories)
		r.Get("/commits", s.handleCommits)
		r.Get("/summary", s.handleSummary)
	})
	return router
}

// Run starts the HTTP server on addr and blocks until it stops.
func (s *Server) Run(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	s.logger.Infow("starting HTTP server", "addr", addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server error: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ok")); err != nil {
		s.logger.Warnw("failed to write health response", "error", err)
	}
}
