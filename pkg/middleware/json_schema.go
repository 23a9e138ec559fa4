package middleware

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/xeipuuv/gojsonschema"
)

// maximum accepted JSON body
const maxBodyBytes = 1 << 20

// ValidationError is one entry of a 422 response's detail list.
type ValidationError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// JSONSchema rejects request bodies that do not satisfy schema with 422 and
// a {"detail": [...]} body. The body is restored for the next handler.
func JSONSchema(schema string) echo.MiddlewareFunc {
	loader := gojsonschema.NewStringLoader(schema)
	compiled, err := gojsonschema.NewSchema(loader)
	if err != nil {
		panic(fmt.Sprintf("middleware: invalid JSON schema: %v", err))
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBodyBytes+1))
			if err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"detail": "cannot read body: " + err.Error()})
			}
			if len(body) > maxBodyBytes {
				return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"detail": "request body too large"})
			}
			c.Request().Body = io.NopCloser(bytes.NewReader(body))

			res, err := compiled.Validate(gojsonschema.NewBytesLoader(body))
			if err != nil {
				return c.JSON(http.StatusUnprocessableEntity, echo.Map{"detail": []ValidationError{{
					Loc:  []string{"body"},
					Msg:  "invalid JSON: " + err.Error(),
					Type: "json_invalid",
				}}})
			}
			if !res.Valid() {
				details := make([]ValidationError, 0, len(res.Errors()))
				for _, e := range res.Errors() {
					loc := []string{"body"}
					if f := e.Field(); f != "" && f != "(root)" {
						loc = append(loc, f)
					}
					details = append(details, ValidationError{Loc: loc, Msg: e.Description(), Type: e.Type()})
				}
				return c.JSON(http.StatusUnprocessableEntity, echo.Map{"detail": details})
			}
			return next(c)
		}
	}
}
