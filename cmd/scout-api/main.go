package main

import (
	"context"
	"os"

	"github.com/evanhutnik/scout-service/internal/graceful"
	"github.com/evanhutnik/scout-service/internal/scout"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	baseLogger, _ := zap.NewProduction()
	defer baseLogger.Sync()
	logger := baseLogger.Sugar()

	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, assuming environment variables are set directly.")
	}

	addr := os.Getenv("listen_address")
	if addr == "" {
		addr = ":8000"
	}

	ctx, cancel := graceful.Context(context.Background(), logger)
	defer cancel()

	s := scout.New(scout.LoggerOption(logger))
	if err := s.Start(ctx, addr); err != nil {
		logger.Fatalw("Server stopped", "error", err.Error())
	}
}
