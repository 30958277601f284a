// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"

	deliverycontext "gatekeeper/internal/delivery/context"
	"gatekeeper/internal/domain/entity"
	domainerrors "gatekeeper/internal/domain/errors"
	"gatekeeper/internal/domain/repository"
	"gatekeeper/internal/domain/service"
	"gatekeeper/internal/errors"
	"gatekeeper/internal/usecase"
	"gatekeeper/internal/validation"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

// authService implements the AuthUsecase interface.
type authService struct {
	userRepo     repository.UserRepository
	hasher       service.PasswordHasher
	tokenService service.TokenService
	logger       *slog.Logger
}

// AuthServiceParams holds dependencies for AuthService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	UserRepo     repository.UserRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	Logger       *slog.Logger
}

// NewAuthService is the constructor for authService. It receives all dependencies as interfaces.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	return &authService{
		userRepo:     params.UserRepo,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		logger:       params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register validates the input, rejects known emails, hashes the password and
// persists the user. The store's uniqueness check is authoritative, so a
// concurrent registration of the same email still ends in ErrUserAlreadyExists.
func (srv *authService) Register(ctx context.Context, input *usecase.RegisterInput) error {
	if input == nil {
		return domainerrors.ErrValidationFailed
	}
	if err := validation.Struct(input); err != nil {
		srv.log(ctx).Debug("Registration input rejected", slog.Any("error", err))

		return err
	}

	srv.log(ctx).Info("Starting registration", slog.String("email", input.Email))

	existing, err := srv.userRepo.FindByEmail(ctx, input.Email)
	switch {
	case err == nil && existing != nil:
		srv.log(ctx).Warn("Email already registered", slog.String("email", input.Email))

		return domainerrors.ErrUserAlreadyExists.WrapMessage("email lookup found an existing user")
	case err != nil && !errors.Is(err, repository.ErrUserNotFound):
		srv.log(ctx).Error("Failed to look up email during registration", slog.Any("error", err))

		return errors.Wrap(err, "failed to look up email during registration")
	}

	hashedPassword, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during registration", slog.Any("error", err))

		return domainerrors.ErrPasswordHashFailed.WrapMessage("failed to hash password during registration")
	}

	newUser := &entity.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hashedPassword,
	}

	if err := srv.userRepo.Create(ctx, newUser); err != nil {
		if errors.Is(err, domainerrors.ErrUserAlreadyExists) {
			srv.log(ctx).Warn("Email registered concurrently", slog.String("email", input.Email))

			return errors.Wrap(err, "failed to create user during registration")
		}
		srv.log(ctx).Error("Failed to create user during registration", slog.Any("error", err))

		if _, ok := domainerrors.AsAppError(err); ok {
			return errors.Wrap(err, "failed to create user during registration")
		}

		return domainerrors.ErrUserCreationFailed.WrapMessage(err.Error())
	}

	srv.log(ctx).Debug("Registration completed", slog.Any("userID", newUser.ID))

	return nil
}

// Login verifies the credentials and issues a bearer token for the user.
func (srv *authService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	if input == nil {
		return nil, domainerrors.ErrValidationFailed
	}
	if err := validation.Struct(input); err != nil {
		srv.log(ctx).Debug("Login input rejected", slog.Any("error", err))

		return nil, err
	}

	user, err := srv.userRepo.FindByEmail(ctx, input.Email)
	if errors.Is(err, repository.ErrUserNotFound) {
		srv.log(ctx).Info("Login for unknown email", slog.String("email", input.Email))

		return nil, domainerrors.ErrUserNotFound.WrapMessage("no user with this email")
	}
	if err != nil {
		srv.log(ctx).Error("Failed to look up user during login", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to look up user during login")
	}

	if !srv.hasher.Check(input.Password, user.PasswordHash) {
		srv.log(ctx).Info("Login with wrong password", slog.Any("userID", user.ID))

		return nil, domainerrors.ErrInvalidCredentials.WrapMessage("password check failed")
	}

	token, err := srv.tokenService.Issue(user.ID)
	if err != nil {
		srv.log(ctx).Error("Failed to issue token", slog.Any("userID", user.ID), slog.Any("error", err))

		return nil, domainerrors.ErrTokenIssueFailed.WrapMessage("failed to issue token")
	}

	srv.log(ctx).Debug("Login completed", slog.Any("userID", user.ID))

	return &usecase.LoginOutput{
		Token: token,
		User:  user,
	}, nil
}

// GetUser loads the user behind a protected request. An id that is not a
// UUID cannot name a user, so it is reported as not found.
func (srv *authService) GetUser(ctx context.Context, id string) (*entity.User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, domainerrors.ErrUserNotFound.WrapMessage("malformed user id")
	}

	user, err := srv.userRepo.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, domainerrors.ErrUserNotFound.WrapMessage("no user with this id")
	}
	if err != nil {
		srv.log(ctx).Error("Failed to load user", slog.Any("userID", userID), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to load user")
	}

	return user, nil
}
