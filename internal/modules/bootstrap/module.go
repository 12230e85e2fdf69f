package bootstrap

import (
	"context"

	binance "smc_bot/internal/modules/binance_ws/service"
	bootstrap "smc_bot/internal/modules/bootstrap/service"
	"smc_bot/pkg/logger"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("bootstrap",
		fx.Provide(
			bootstrap.NewWarmuper,
		),
		fx.Invoke(func(lc fx.Lifecycle, client *binance.Client, wu *bootstrap.Warmuper, ctx context.Context) {
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					// прогрев в фоне: стрим начинает работать сразу
					go func() {
						syms, err := client.TopPairs(ctx)
						if err != nil {
							logger.Warn("bootstrap: pairs: %v", err)
							return
						}
						wu.Warmup(ctx, syms)
					}()
					return nil
				},
			})
		}),
	)
}
