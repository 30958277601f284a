package main

import (
	"context"
	"log/slog"
	"os"

	"gatekeeper/config"
	"gatekeeper/internal/delivery"
	"gatekeeper/internal/delivery/api"
	"gatekeeper/internal/delivery/api/middleware"
	"gatekeeper/internal/delivery/api/router/handler"
	"gatekeeper/internal/domain/repository"
	"gatekeeper/internal/infra/auth"
	"gatekeeper/internal/infra/cache"
	logs "gatekeeper/internal/infra/log"
	"gatekeeper/internal/infra/persistence/memory"
	"gatekeeper/internal/infra/persistence/postgres"
	"gatekeeper/internal/usecase/impl"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Logger     *slog.Logger
	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		cache.NewRedisClient,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			newUserRepository,
		),
	)
}

type userRepositoryParams struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
	Redis  *redis.Client
}

// newUserRepository selects the configured user store and puts the Redis
// cache in front of it when one is configured.
func newUserRepository(params userRepositoryParams) (repository.UserRepository, error) {
	var repo repository.UserRepository

	switch params.Config.Persistence.Driver {
	case config.DriverMemory:
		params.Logger.Warn("Using the in-memory user store, users are lost on restart")
		repo = memory.NewUserRepository()
	default:
		db, err := postgres.New(postgres.Params{
			Lifecycle: params.Lifecycle,
			Config:    params.Config,
			Logger:    params.Logger,
		})
		if err != nil {
			return nil, err
		}
		repo = postgres.NewUserRepository(db)
	}

	if params.Redis != nil {
		repo = cache.NewCachedUserRepository(repo, params.Redis, params.Config.Redis.TTL, params.Logger)
	}

	return repo, nil
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewBcryptHasher,
			auth.NewJWTService,
		),
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewAuthService,
			impl.NewAccessGate,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewAuthMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewAuthHandler,
			handler.NewUserHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				api.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

// startServer serves once every OnStart hook (database ping, migrations,
// Redis ping) has succeeded.
func startServer(ctx context.Context, params startServerParams) {
	params.Append(fx.Hook{
		OnStart: func(context.Context) error {
			for _, delivery := range params.Deliveries {
				go func() {
					if err := delivery.Serve(ctx); err != nil {
						params.Logger.Error("Failed to start server", slog.Any("error", err))
						os.Exit(1)
					}
				}()
			}

			return nil
		},
	})
}
