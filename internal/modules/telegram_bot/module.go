package telegram

import (
	"context"

	"smc_bot/internal/modules/telegram_bot/service"
	"smc_bot/internal/modules/telegram_bot/service/pg"
	"smc_bot/internal/runner"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("telegram",
		// репозиторий подписчиков
		fx.Provide(
			pg.NewSubscriber,
		),

		fx.Provide(
			service.NewTelegram,
		),

		// адаптер: *service.Telegram -> runner.Broadcaster
		fx.Provide(
			func(t *service.Telegram) runner.Broadcaster {
				return t
			},
		),

		fx.Invoke(
			func(lc fx.Lifecycle, t *service.Telegram, ctx context.Context) {
				lc.Append(fx.Hook{
					OnStart: func(_ context.Context) error {
						return t.Start(ctx)
					},
					OnStop: func(ctx context.Context) error {
						t.Stop()
						return nil
					},
				})
			},
		),
	)
}
