package router

import (
	"github.com/labstack/echo/v4"

	"policygen/pkg/middleware"
	policyCtrlImp "policygen/pkg/policy/controllerImp"
)

// New registers every route. staticDir holds the browser form; it is served
// at /ui and /static when non-empty.
func New(
	e *echo.Echo,
	policyCtrl interface {
		Welcome(echo.Context) error
		GeneratePolicy(echo.Context) error
	},
	kbCtrl interface {
		Search(echo.Context) error
		Stats(echo.Context) error
	},
	healthCtrl interface{ Health(echo.Context) error },
	staticDir string,
) *echo.Echo {
	e.GET("/", policyCtrl.Welcome)
	e.POST("/generate_policy", policyCtrl.GeneratePolicy, middleware.JSONSchema(policyCtrlImp.RequestSchema))

	e.GET("/health", healthCtrl.Health)

	kb := e.Group("/kb")
	kb.GET("/search", kbCtrl.Search)
	kb.GET("/stats", kbCtrl.Stats)

	if staticDir != "" {
		e.Static("/static", staticDir)
		e.File("/ui", staticDir+"/index.html")
	}
	return e
}
