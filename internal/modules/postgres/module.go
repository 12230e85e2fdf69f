package postgres

import (
	"context"
	"fmt"

	"smc_bot/internal/modules/config"
	postgres "smc_bot/internal/modules/postgres/service"
	"smc_bot/pkg/db"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("postgres",
		fx.Provide(
			func(ctx context.Context, cfg *config.Config) (*db.PgTxManager, error) {
				poolMaster, err := db.NewPool(ctx, db.PoolConfig{
					DSN: cfg.DB,
				})
				if err != nil {
					return nil, fmt.Errorf("failed to create poolMaster: %w", err)
				}

				err = poolMaster.Ping(ctx)
				if err != nil {
					return nil, err
				}

				return db.NewPgTxManager(poolMaster), nil
			},
			postgres.NewSignalArchive,
		),
		// схема поднимается на старте, отдельных миграций у бота нет
		fx.Invoke(func(lc fx.Lifecycle, m *db.PgTxManager) {
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					return postgres.Bootstrap(ctx, m)
				},
				OnStop: func(ctx context.Context) error {
					m.Close()
					return nil
				},
			})
		}),
	)
}
