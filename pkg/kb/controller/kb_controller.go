package controller

import "github.com/labstack/echo/v4"

type KBController interface {
	Search(c echo.Context) error
	Stats(c echo.Context) error
}
