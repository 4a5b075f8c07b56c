package main

import (
	"context"
	"os"

	"github.com/evanhutnik/scout-service/internal/frontend"
	"github.com/evanhutnik/scout-service/internal/graceful"
	"github.com/evanhutnik/scout-service/internal/web"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const defaultEndpoint = "https://scout-api-560247360518.europe-central2.run.app"

func main() {
	baseLogger, _ := zap.NewProduction()
	defer baseLogger.Sync()
	logger := baseLogger.Sugar()

	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, assuming environment variables are set directly.")
	}

	endpoint := os.Getenv("scout_api_endpoint")
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	addr := os.Getenv("listen_address")
	if addr == "" {
		addr = ":8080"
	}

	api := frontend.NewClient(frontend.BaseUrlOption(endpoint))
	s, err := web.NewServer(api,
		web.MapsKeyOption(os.Getenv("maps_js_apikey")),
		web.LoggerOption(logger),
	)
	if err != nil {
		logger.Fatalw("Failed to build web server", "error", err.Error())
	}

	ctx, cancel := graceful.Context(context.Background(), logger)
	defer cancel()

	if err := s.Start(ctx, addr); err != nil {
		logger.Fatalw("Server stopped", "error", err.Error())
	}
}
