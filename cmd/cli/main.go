package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"libapp/internal/client/cli"
	"libapp/internal/client/config"
	"libapp/internal/logging"
)

func main() {
	cfg := config.LoadConfig()
	log := logging.NewTextLogger(os.Stderr, slog.LevelWarn)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := cli.NewApp(cfg, log)
	if err != nil {
		log.Error(ctx, "startup failed", "error", err)
		os.Exit(1)
	}

	app.Run(ctx)
}
