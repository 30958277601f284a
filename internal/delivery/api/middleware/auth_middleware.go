package middleware

import (
	deliverycontext "gatekeeper/internal/delivery/context"
	"gatekeeper/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// AuthMiddlewareParams holds dependencies for AuthMiddleware, injected by Fx.
type AuthMiddlewareParams struct {
	fx.In

	Gate usecase.AccessGate
}

// AuthMiddleware puts the access gate in front of protected routes.
type AuthMiddleware struct {
	gate usecase.AccessGate
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(params AuthMiddlewareParams) *AuthMiddleware {
	return &AuthMiddleware{gate: params.Gate}
}

// Authenticate runs the access gate. Rejections go to the HTTP error handler
// and the protected handler never runs; on success the verified user ID is
// available through deliverycontext.GetUserID.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, err := m.gate.Authorize(c.Request().Context(), c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return err
		}

		deliverycontext.SetUserID(c, claims.UserID)

		return next(c)
	}
}
