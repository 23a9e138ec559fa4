package controllerImp

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"policygen/pkg/kb/repository"
)

var appStart = time.Now()

type HealthCtrl struct {
	repo              repository.KBRepository
	pipelineReady     bool
	generationEnabled bool
}

// NewHealthCtrl reports on the store plus the pipeline capabilities decided at
// startup. A nil repo means the store could not be opened.
func NewHealthCtrl(repo repository.KBRepository, pipelineReady, generationEnabled bool) *HealthCtrl {
	return &HealthCtrl{repo: repo, pipelineReady: pipelineReady, generationEnabled: generationEnabled}
}

func (h *HealthCtrl) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 800*time.Millisecond)
	defer cancel()

	dbOK := true
	dbErr := ""
	var docs int64
	if h.repo != nil {
		if err := h.repo.Ping(ctx); err != nil {
			dbOK = false
			dbErr = "ping: " + err.Error()
		} else if n, err := h.repo.Count(ctx); err != nil {
			dbOK = false
			dbErr = "count: " + err.Error()
		} else {
			docs = n
		}
	} else {
		dbOK = false
		dbErr = "store is not open"
	}

	allOK := dbOK && h.pipelineReady
	status := http.StatusOK
	if !allOK {
		status = http.StatusServiceUnavailable
	}

	type sub struct {
		OK  bool   `json:"ok"`
		Err string `json:"err,omitempty"`
	}

	resp := map[string]any{
		"status":     map[string]any{"ok": allOK},
		"uptime_sec": int(time.Since(appStart).Seconds()),
		"checks": map[string]any{
			"store":    sub{OK: dbOK, Err: dbErr},
			"pipeline": sub{OK: h.pipelineReady},
		},
		"documents":          docs,
		"generation_enabled": h.generationEnabled,
		"time":               time.Now().Format(time.RFC3339),
	}

	return c.JSON(status, resp)
}
