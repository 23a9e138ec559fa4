package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"policygen/config"
	"policygen/database"
	healthCtrlImp "policygen/pkg/health/controllerImp"
	kbCtrlImp "policygen/pkg/kb/controllerImp"
	"policygen/pkg/kb/embedder"
	"policygen/pkg/kb/repository"
	"policygen/pkg/kb/repositoryImp"
	kbService "policygen/pkg/kb/service"
	"policygen/pkg/middleware"
	"policygen/pkg/pipeline"
	policyCtrlImp "policygen/pkg/policy/controllerImp"
	policyService "policygen/pkg/policy/service"
	"policygen/router"
)

// StaticDir holds the browser form served at /ui.
const StaticDir = "static"

// RunIndexing rebuilds the store under cfg.StorePath from cfg.DataDir.
func RunIndexing(ctx context.Context, cfg config.AppConfig, log logrus.FieldLogger) (kbService.IndexReport, error) {
	db, err := database.OpenStore(cfg.StorePath)
	if err != nil {
		return kbService.IndexReport{}, err
	}
	defer database.Close(db)

	kb, err := pipeline.NewKB(cfg, db, embedder.New(cfg), log)
	if err != nil {
		return kbService.IndexReport{}, err
	}
	return kb.Index(ctx, cfg.DataDir)
}

// NewServer wires the HTTP API. When the store or the pipeline cannot be
// initialized the error is logged and the API still starts, answering
// /generate_policy with 500.
func NewServer(ctx context.Context, cfg config.AppConfig, db *gorm.DB, dbErr error, log logrus.FieldLogger) *echo.Echo {
	var (
		policySvc policyService.PolicyService
		kbSvc     kbService.KBService
		generate  bool
		storeRepo repository.KBRepository
	)
	switch {
	case dbErr != nil:
		log.WithError(dbErr).Error("open store failed; pipeline not initialized")
	default:
		storeRepo = repositoryImp.New(db)
		p, err := pipeline.Build(ctx, cfg, db, log)
		if err != nil {
			log.WithError(err).Error("pipeline init failed")
			break
		}
		policySvc, kbSvc, generate = p.Policy, p.KB, p.GenerationEnabled
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLog(log))

	staticDir := ""
	if _, err := os.Stat(filepath.Join(StaticDir, "index.html")); err == nil {
		staticDir = StaticDir
	} else {
		log.Warnf("static UI not found: %v", err)
	}

	return router.New(
		e,
		policyCtrlImp.New(policySvc, log),
		kbCtrlImp.New(kbSvc),
		healthCtrlImp.NewHealthCtrl(storeRepo, policySvc != nil, generate),
		staticDir,
	)
}

// RunServer serves until ctx is cancelled, then shuts down gracefully.
func RunServer(ctx context.Context, cfg config.AppConfig, log logrus.FieldLogger) error {
	db, dbErr := database.OpenStore(cfg.StorePath)
	if dbErr == nil {
		defer database.Close(db)
	}
	e := NewServer(ctx, cfg, db, dbErr, log)

	errCh := make(chan error, 1)
	go func() {
		log.Infof("listening on :%s", cfg.Port)
		errCh <- e.Start(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
