// Package server defines the core Server struct that composes the app's main dependencies.
//
// It contains the initialization logic to spin up the HTTP server
// and handles graceful shutdowns
//
// It owns the lifecycle of:
//   - configuration
//   - logger + optional New Relic service wrapper
//   - http.Server
//
// The relay keeps no database, cache or worker: every request is handled
// on its own and nothing outlives it.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/deppfellow/call-relay/internal/config"
	"github.com/rs/zerolog"

	loggerPkg "github.com/deppfellow/call-relay/internal/logger"
)

// newRelicShutdownTimeout bounds how long Shutdown waits for the agent to flush.
const newRelicShutdownTimeout = 5 * time.Second

// Server is the application container that holds shared resources.
//
// It is not the HTTP server itself. It holds:
//   - the config
//   - the logger(s)
//   - an internal *http.Server used to listen and serve requests
type Server struct {
	// Config holds all environment/config values for the app.
	Config *config.Config

	// Logger is the application's main structured logger.
	Logger *zerolog.Logger

	// LoggerService optionally holds the New Relic application instance.
	// If New Relic is disabled, this may exist but contain nil nrApp.
	LoggerService *loggerPkg.LoggerService

	// StartedAt is reported as uptime by the status endpoint.
	StartedAt time.Time

	// httpServer is the standard library HTTP server instance.
	// It is configured in SetupHTTPServer and started in Start().
	httpServer *http.Server
}

// New constructs a Server.
//
// It does NOT start the HTTP server directly. That is done in SetupHTTPServer + Start.
// Missing Vapi credentials are only warned about: the call endpoint reports
// them per request.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) *Server {
	switch {
	case !cfg.Vapi.IsComplete():
		logger.Warn().
			Bool("private_key_set", cfg.Vapi.PrivateKey != "").
			Bool("assistant_id_set", cfg.Vapi.AssistantID != "").
			Bool("phone_number_id_set", cfg.Vapi.PhoneNumberID != "").
			Msg("vapi credentials incomplete, call requests will fail until configured")
	case cfg.Vapi.HasPublicKey():
		logger.Warn().Msg("VAPI_PRIVATE_KEY holds a public key (pk_), call requests will be rejected")
	}

	return &Server{
		Config:        cfg,
		Logger:        logger,
		LoggerService: loggerService,
		StartedAt:     time.Now(),
	}
}

// SetupHTTPServer configures the internal net/http server.
//
// The actual router/mux is passed in as handler.
func (s *Server) SetupHTTPServer(handler http.Handler) {
	s.httpServer = &http.Server{
		Addr:    ":" + s.Config.Server.Port,
		Handler: handler,

		// Config stores int values, interpreted here as seconds.
		ReadTimeout:  time.Duration(s.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.Config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.Config.Server.IdleTimeout) * time.Second,
	}
}

// Start runs the HTTP server.
//
// It requires SetupHTTPServer to be called first. It blocks until the server
// stops; http.ErrServerClosed after Shutdown is returned as is.
func (s *Server) Start() error {
	if s.httpServer == nil {
		return errors.New("HTTP server not initialized")
	}

	s.Logger.Info().
		Str("port", s.Config.Server.Port).
		Str("env", s.Config.Primary.Env).
		Msgf("server running at http://localhost:%s", s.Config.Server.Port)

	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server and its dependencies.
//
// It stops the HTTP server (finishing in-flight calls until ctx deadline)
// and flushes New Relic.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown HTTP server: %w", err)
		}
	}

	s.LoggerService.Shutdown(newRelicShutdownTimeout)

	return nil
}
