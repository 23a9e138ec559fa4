package main

import (
	"context"
	"os"
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

	rep, err := app.RunIndexing(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Error("indexing failed")
		stop()
		os.Exit(1)
	}
	if rep.Skipped {
		log.Warnf("no %v files in %s, store left unchanged", cfg.IndexExtensions, cfg.DataDir)
		return
	}
	log.WithFields(map[string]any{
		"files":     len(rep.Files),
		"chunks":    rep.Chunks,
		"embedder":  rep.Embedder,
		"dimension": rep.Dimension,
		"store":     cfg.StorePath,
	}).Info("indexing complete")
}
