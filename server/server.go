package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/docflow/docflow/config"
	"github.com/docflow/docflow/contract"
	"github.com/docflow/docflow/errors"
	"github.com/docflow/docflow/job"
)

// Server exposes the job manager and the contract registry over HTTP
type Server struct {
	cfg       *config.Config
	logger    *zap.SugaredLogger
	manager   *job.Manager
	contracts *contract.Store

	httpServer *http.Server
}

// NewServer wires an HTTP server over the given manager and contract
// store. Call Start to begin serving.
func NewServer(cfg *config.Config, manager *job.Manager, contracts *contract.Store, logger *zap.SugaredLogger) *Server {
	s := &Server{
		cfg:       cfg,
		logger:    logger.Named("server"),
		manager:   manager,
		contracts: contracts,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      s.routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // streaming endpoints manage their own deadlines
		IdleTimeout:  120 * time.Second,
	}

	return s
}

// Start begins serving and blocks until the listener closes
func (s *Server) Start() error {
	s.logger.Infow("HTTP server starting", "addr", s.httpServer.Addr)

	err := s.httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "http server")
	}
	return nil
}

// Shutdown drains in-flight requests until ctx expires
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Infow("HTTP server shutting down")
	return s.httpServer.Shutdown(ctx)
}
