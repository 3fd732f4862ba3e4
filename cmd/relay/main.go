package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deppfellow/call-relay/internal/config"
	"github.com/deppfellow/call-relay/internal/handler"
	"github.com/deppfellow/call-relay/internal/logger"
	"github.com/deppfellow/call-relay/internal/middleware"
	"github.com/deppfellow/call-relay/internal/router"
	"github.com/deppfellow/call-relay/internal/server"
	"github.com/deppfellow/call-relay/internal/service"
	"github.com/deppfellow/call-relay/internal/vapi"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		bootstrap := zerolog.New(os.Stderr).With().Timestamp().Logger()
		bootstrap.Fatal().Err(err).Msg("failed to load config")
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	srv := server.New(cfg, &log, loggerService)

	// No client timeout: the relay waits as long as the upstream takes.
	vapiClient := vapi.NewClient(cfg.Vapi.BaseURL, nil, &log)

	services := service.NewServices(srv, vapiClient)
	handlers := handler.NewHandlers(srv, services)
	middlewares := middleware.NewMiddlewares(srv)

	r := router.NewRouter(srv, handlers, middlewares)
	srv.SetupHTTPServer(r)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
