package http

import (
	"github.com/labstack/echo/v4"

	xutil "FinChat/pkg/util"
)

// QueryInt reads an integer query parameter with a default.
func QueryInt(c echo.Context, name string, def int) int {
	return xutil.ParseIntDefault(c.QueryParam(name), def)
}
