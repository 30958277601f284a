// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"gatekeeper/internal/domain/entity"
	"gatekeeper/internal/domain/service"
)

// --- Input DTOs ---

// RegisterInput defines the data required to register a new user.
type RegisterInput struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// LoginInput defines the data required for a user to log in.
type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// --- Output DTOs ---

// LoginOutput carries the bearer token issued on a successful login.
type LoginOutput struct {
	Token string
	User  *entity.User
}

// AuthUsecase defines registration, login and the protected user lookup.
// This is the contract that the delivery layer (e.g., API handlers) will depend on.
type AuthUsecase interface {
	Register(ctx context.Context, input *RegisterInput) error
	Login(ctx context.Context, input *LoginInput) (*LoginOutput, error)
	GetUser(ctx context.Context, id string) (*entity.User, error)
}

// AccessGate decides whether a request may reach a protected resource.
type AccessGate interface {
	// Authorize inspects the raw Authorization header value and returns the
	// verified claims, ErrAccessDenied when no token is present, or
	// ErrInvalidToken when the token does not verify.
	Authorize(ctx context.Context, authorizationHeader string) (*service.Claims, error)
}
