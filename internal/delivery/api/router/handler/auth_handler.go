package handler

import (
	"log/slog"
	"net/http"

	"gatekeeper/internal/delivery/api/response"
	domainerrors "gatekeeper/internal/domain/errors"
	"gatekeeper/internal/errors"
	"gatekeeper/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// AuthHandlerParams holds dependencies for AuthHandler, injected by Fx.
type AuthHandlerParams struct {
	fx.In

	AuthUC usecase.AuthUsecase
	Logger *slog.Logger
}

// AuthHandler holds dependencies for the registration and login handlers.
type AuthHandler struct {
	authUC usecase.AuthUsecase
	logger *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler
func NewAuthHandler(params AuthHandlerParams) *AuthHandler {
	return &AuthHandler{
		authUC: params.AuthUC,
		logger: params.Logger,
	}
}

// A body that cannot be read as the expected JSON object counts as missing
// input, the same as an empty one.
var errUndecodableBody = domainerrors.ErrValidationFailed.WithDetails("request body is not a valid JSON object")

// LoginData is the payload of a successful login.
type LoginData struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// Register handles the user registration request.
func (h *AuthHandler) Register(c echo.Context) error {
	var input usecase.RegisterInput
	if err := c.Bind(&input); err != nil {
		return errors.WithStack(errUndecodableBody)
	}

	if err := h.authUC.Register(c.Request().Context(), &input); err != nil {
		return errors.WithStack(err)
	}

	return response.Message(c, http.StatusCreated, "User created successfully")
}

// Login handles the user login request.
func (h *AuthHandler) Login(c echo.Context) error {
	var input usecase.LoginInput
	if err := c.Bind(&input); err != nil {
		return errors.WithStack(errUndecodableBody)
	}

	output, err := h.authUC.Login(c.Request().Context(), &input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, LoginData{
		Message: "Authentication successful",
		Token:   output.Token,
	})
}
