package impl

import (
	"context"
	"log/slog"
	"strings"

	deliverycontext "gatekeeper/internal/delivery/context"
	domainerrors "gatekeeper/internal/domain/errors"
	"gatekeeper/internal/domain/service"
	"gatekeeper/internal/usecase"

	"go.uber.org/fx"
)

type accessGate struct {
	tokenService service.TokenService
	logger       *slog.Logger
}

// AccessGateParams holds dependencies for the AccessGate, injected by Fx.
type AccessGateParams struct {
	fx.In

	TokenService service.TokenService
	Logger       *slog.Logger
}

// NewAccessGate is the constructor for the token guard in front of protected resources.
func NewAccessGate(params AccessGateParams) usecase.AccessGate {
	return &accessGate{
		tokenService: params.TokenService,
		logger:       params.Logger,
	}
}

// Authorize takes the token from the second space-separated segment of the
// header ("Bearer <token>"). A missing segment is an access denial; a token
// that fails verification is an invalid token.
func (gate *accessGate) Authorize(ctx context.Context, authorizationHeader string) (*service.Claims, error) {
	token := extractToken(authorizationHeader)
	if token == "" {
		return nil, domainerrors.ErrAccessDenied
	}

	claims, err := gate.tokenService.Verify(token)
	if err != nil {
		deliverycontext.GetLoggerOrDefault(ctx, gate.logger).Info("Rejected bearer token", slog.Any("error", err))

		return nil, domainerrors.ErrInvalidToken
	}

	return claims, nil
}

func extractToken(header string) string {
	parts := strings.Split(header, " ")
	if len(parts) < 2 {
		return ""
	}

	return parts[1]
}
