package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	HeaderRequestID = "X-Request-Id"
	ctxRequestID    = "request_id"
)

// RequestID reuses an incoming X-Request-Id or mints one, and echoes it back.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(HeaderRequestID)
			if id == "" {
				id = uuid.NewString()
			}
			c.Set(ctxRequestID, id)
			c.Response().Header().Set(HeaderRequestID, id)
			return next(c)
		}
	}
}

func RequestIDFrom(c echo.Context) string {
	id, _ := c.Get(ctxRequestID).(string)
	return id
}
