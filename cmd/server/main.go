package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/preston-bernstein/nba-next-game-service/internal/config"
	"github.com/preston-bernstein/nba-next-game-service/internal/logging"
	"github.com/preston-bernstein/nba-next-game-service/internal/server"
)

const (
	appName    = "nba-next-game-service"
	appVersion = "dev"
)

func main() {
	if os.Getenv("SKIP_SERVER_RUN") == "1" {
		return
	}

	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.NewLogger(logging.Config{
		Level:   os.Getenv("LOG_LEVEL"),
		Format:  os.Getenv("LOG_FORMAT"),
		Service: appName,
		Version: appVersion,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, logger)
	srv.Run(ctx, stop)
}
