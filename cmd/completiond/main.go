package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ncecere/completions"
	"github.com/ncecere/completions/internal/config"
	"github.com/ncecere/completions/internal/logging"
	"github.com/ncecere/completions/internal/server"
	"github.com/ncecere/completions/middleware"
	"github.com/ncecere/completions/registry"
	"github.com/ncecere/completions/transport"
)

// completiond serves POST /v1/completions. Requests are validated
// locally and forwarded to the configured OpenAI-compatible API.
//
// It expects:
//
//	OPENAI_API_KEY  - your OpenAI (or compatible) API key
//	OPENAI_BASE_URL - optional, for OpenAI-compatible endpoints
//	COMPLETIONS_ADDR - optional listen address, defaults to :8085
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(cfg.LogLevel)

	base, err := transport.NewHTTPTransport(cfg.ClientOptions())
	if err != nil {
		logger.Fatal().Err(err).Msg("transport init failed")
	}
	t := middleware.Wrap(base,
		middleware.RequestID(),
		middleware.Logging(middleware.LoggingOptions{Logger: logger}),
		middleware.Retry(middleware.RetryOptions{
			MaxAttempts:    cfg.MaxAttempts,
			InitialBackoff: cfg.InitialBackoff,
			MaxBackoff:     cfg.MaxBackoff,
		}),
	)

	client, err := completions.NewClient(t)
	if err != nil {
		logger.Fatal().Err(err).Msg("client init failed")
	}

	srv := server.New(client, registry.NewInMemoryRegistry(cfg.ModelAliases()), logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func() {
		<-ctx.Done()
		logger.Info().Msg("shutting down")
		if err := srv.App.Shutdown(); err != nil {
			logger.Error().Err(err).Msg("shutdown error")
		}
	}()

	logger.Info().Str("addr", cfg.Addr).Msg("listening")
	if err := srv.App.Listen(cfg.Addr); err != nil {
		logger.Fatal().Err(err).Msg("fiber listen error")
	}
}
