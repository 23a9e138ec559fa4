package controllerImp

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"policygen/pkg/kb/service"
)

// upper bound for ?k= on the search endpoint
const maxK = 50

type KBCtrl struct {
	s service.KBService
}

func New(s service.KBService) *KBCtrl { return &KBCtrl{s: s} }

func (h *KBCtrl) Search(c echo.Context) error {
	if h.s == nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "knowledge base is not initialized."})
	}
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "q required"})
	}
	k := 0
	if v := c.QueryParam("k"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > maxK {
			return c.JSON(http.StatusBadRequest, echo.Map{"detail": "k must be an integer in [1, 50]"})
		}
		k = n
	}

	docs, err := h.s.Search(c.Request().Context(), q, k)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"query": q, "documents": docs})
}

func (h *KBCtrl) Stats(c echo.Context) error {
	if h.s == nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "knowledge base is not initialized."})
	}
	st, err := h.s.Stats(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": err.Error()})
	}
	return c.JSON(http.StatusOK, st)
}
