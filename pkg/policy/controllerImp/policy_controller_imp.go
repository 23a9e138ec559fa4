package controllerImp

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"policygen/entities"
	"policygen/pkg/middleware"
	"policygen/pkg/policy/service"
)

const WelcomeMessage = "Welcome to the Insurance Policy Generation Chatbot API"

// RequestSchema is enforced on POST /generate_policy bodies.
const RequestSchema = `{
  "type": "object",
  "required": ["query"],
  "properties": {
    "query": {"type": "string", "minLength": 1}
  }
}`

type PolicyCtrl struct {
	s   service.PolicyService
	log logrus.FieldLogger
}

// New accepts a nil service: the API then stays up and answers
// /generate_policy with 500.
func New(s service.PolicyService, log logrus.FieldLogger) *PolicyCtrl {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &PolicyCtrl{s: s, log: log.WithField("component", "policy-api")}
}

func (h *PolicyCtrl) Welcome(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"message": WelcomeMessage})
}

func (h *PolicyCtrl) GeneratePolicy(c echo.Context) error {
	if h.s == nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "RAG pipeline is not initialized."})
	}

	var req entities.PolicyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid json: " + err.Error()})
	}
	if strings.TrimSpace(req.Query) == "" {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"detail": []middleware.ValidationError{{
			Loc:  []string{"body", "query"},
			Msg:  "query must not be blank",
			Type: "string_too_short",
		}}})
	}

	resp, err := h.s.GeneratePolicy(c.Request().Context(), req.Query)
	if err != nil {
		h.log.WithError(err).WithField("request_id", middleware.RequestIDFrom(c)).Error("generate policy")
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": err.Error()})
	}
	return c.JSON(http.StatusOK, resp)
}
