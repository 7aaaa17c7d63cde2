package ui

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/devscout/github-leadgen/cfg"
	"github.com/devscout/github-leadgen/pkg/db"
	"github.com/devscout/github-leadgen/pkg/log"
)

// Server is the read-only HTTP surface over the crawl store. It never
// writes; recruiters browse leads here while the crawler runs elsewhere.
type Server struct {
	Logger log.Logger
	Config *cfg.Config
	Db     db.Connector
	server *http.Server
}

// NewServer creates a new API server
func NewServer(logger log.Logger, config *cfg.Config, connector db.Connector) (*Server, error) {
	return &Server{
		Logger: logger,
		Config: config,
		Db:     connector,
	}, nil
}

// Start initializes and starts the HTTP server
func (s *Server) Start() error {
	handler, err := NewHandler(s.Logger, s.Config, s.Db)
	if err != nil {
		return fmt.Errorf("failed to create API handler: %w", err)
	}

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	s.server = &http.Server{
		Addr:         s.Config.Api.ListenAddr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.Logger.Info(context.Background(), "Starting API server on %s", s.Config.Api.ListenAddr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		s.Logger.Info(ctx, "Shutting down API server")
		return s.server.Shutdown(ctx)
	}
	return nil
}
