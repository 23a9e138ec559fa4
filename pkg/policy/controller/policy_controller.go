package controller

import "github.com/labstack/echo/v4"

type PolicyController interface {
	Welcome(c echo.Context) error
	GeneratePolicy(c echo.Context) error
}
