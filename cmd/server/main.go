package main

import (
	"context"
	"os/signal"
	"syscall"

	"policygen/app"
	"policygen/config"
	"policygen/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.RunServer(ctx, cfg, log); err != nil {
		log.Fatal(err)
	}
}
