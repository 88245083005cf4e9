package handlers

import (
	"net/http"

	"github.com/labstack/echo"
)

// HeartBeat answers health checks
func HeartBeat(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
