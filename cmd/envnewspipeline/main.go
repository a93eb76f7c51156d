package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"EnvNewsPipeline/internal/app"
	"EnvNewsPipeline/internal/config"
	"EnvNewsPipeline/internal/logging"
)

func main() {
	once := flag.Bool("once", false, "run a single pipeline pass and exit")
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Error("cannot build application", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *once {
		err = application.RunOnce(ctx)
	} else {
		err = application.Run(ctx)
	}

	if closeErr := application.Close(); closeErr != nil {
		logger.Warn("close database", "error", closeErr)
	}

	if err != nil {
		logger.Error("application stopped", "error", err)
		os.Exit(1)
	}
}
