package handler

import (
	"log/slog"
	"net/http"
	"time"

	"gatekeeper/internal/delivery/api/response"
	"gatekeeper/internal/domain/entity"
	"gatekeeper/internal/errors"
	"gatekeeper/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// UserHandlerParams holds dependencies for UserHandler, injected by Fx.
type UserHandlerParams struct {
	fx.In

	AuthUC usecase.AuthUsecase
	Logger *slog.Logger
}

// UserHandler serves the protected user resource.
type UserHandler struct {
	authUC usecase.AuthUsecase
	logger *slog.Logger
}

// NewUserHandler is the constructor for UserHandler
func NewUserHandler(params UserHandlerParams) *UserHandler {
	return &UserHandler{
		authUC: params.AuthUC,
		logger: params.Logger,
	}
}

// UserResponse is the public view of a user. It has no password field.
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserData wraps the user payload.
type UserData struct {
	User UserResponse `json:"user"`
}

func toUserResponse(user *entity.User) UserResponse {
	return UserResponse{
		ID:        user.ID.String(),
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}

// GetUser returns the user named by the :id path parameter.
func (h *UserHandler) GetUser(c echo.Context) error {
	user, err := h.authUC.GetUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, UserData{User: toUserResponse(user)})
}
