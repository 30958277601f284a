// Package handler contains the HTTP handlers for the API server.
package handler

import (
	"net/http"

	"gatekeeper/internal/delivery/api/response"

	"github.com/labstack/echo/v4"
)

// Home answers the public root endpoint.
func Home(c echo.Context) error {
	return response.Message(c, http.StatusOK, "Service is running")
}

// HealthCheck reports that the process is serving requests.
func HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{"status": "ok"})
}
