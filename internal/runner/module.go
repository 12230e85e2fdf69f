package runner

import (
	"context"

	"smc_bot/internal/market"
	binance "smc_bot/internal/modules/binance_ws/service"
	"smc_bot/internal/modules/config"
	postgres "smc_bot/internal/modules/postgres/service"
	siglog "smc_bot/internal/modules/siglog/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("runner",
		fx.Provide(
			func(cfg *config.Config) *market.Buffers { return market.NewBuffers(cfg.MaxCandles) },
			func(c *binance.Client) MarketStream { return c },
			func(w *siglog.Writer) SignalJournal { return w },
			func(a *postgres.SignalArchive) SignalArchiver { return a },
			NewManager,
		),
		fx.Invoke(func(lc fx.Lifecycle, m *Manager, b Broadcaster, ctx context.Context) {
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					m.SetBroadcaster(b)
					go m.Run(ctx)
					return nil
				},
			})
		}),
	)
}
