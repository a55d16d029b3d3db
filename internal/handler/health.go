// Package handler exposes the HTTP handlers: scrape job submission,
// sentiment batch runs and the report/dashboard surface.
package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health is a liveness endpoint for load balancers and monitoring.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
