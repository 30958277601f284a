// Package router maps the HTTP surface onto its handlers.
package router

import (
	"gatekeeper/internal/delivery/api/middleware"
	"gatekeeper/internal/delivery/api/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler    *handler.AuthHandler
	UserHandler    *handler.UserHandler
	AuthMiddleware *middleware.AuthMiddleware
}

// Register mounts the public routes, the /auth routes and the gated /user
// routes on e.
func Register(e *echo.Echo, params RouterParams) {
	e.GET("/", handler.Home)
	e.GET("/health", handler.HealthCheck)

	auth := e.Group("/auth")
	auth.POST("/register", params.AuthHandler.Register)
	auth.POST("/login", params.AuthHandler.Login)

	users := e.Group("/user", params.AuthMiddleware.Authenticate)
	users.GET("/:id", params.UserHandler.GetUser)
}
