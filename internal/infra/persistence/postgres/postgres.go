package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"gatekeeper/config"
	"gatekeeper/internal/domain/lifecycle"
	"gatekeeper/internal/errors"

	pgLib "github.com/slighter12/go-lib/database/postgres"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// New builds the GORM handle for the user store. Nothing touches the network
// until OnStart, which pings the server, applies pending migrations when
// persistence.migrate is set and starts the pool monitor.
func New(params Params) (*gorm.DB, error) {
	base, err := pgLib.New(params.Config.Postgres)
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}
	// Surface unique violations as gorm.ErrDuplicatedKey.
	base.Config.TranslateError = true

	db := base.Session(&gorm.Session{
		SkipDefaultTransaction: true,
		Logger:                 newGormSlogLogger(params.Logger, params.Config),
	})

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "postgres sql.DB handle")
	}

	monitor := newPoolMonitor(params.Logger, sqlDB)
	params.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return start(ctx, params, sqlDB, monitor)
		},
		OnStop: func(context.Context) error {
			monitor.Stop()

			return errors.WithStack(sqlDB.Close())
		},
	})

	return db, nil
}

func start(ctx context.Context, params Params, sqlDB *sql.DB, monitor *poolMonitor) error {
	ctx, cancel := context.WithTimeout(ctx, lifecycle.DefaultTimeout)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return errors.Wrap(err, "ping postgres")
	}

	if params.Config.Persistence.Migrate {
		if err := RunMigrations(ctx, sqlDB); err != nil {
			return err
		}
		params.Logger.Info("PostgreSQL schema is up to date")
	}

	monitor.Start()

	return nil
}
