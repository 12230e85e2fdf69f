package binancews

import (
	binance "smc_bot/internal/modules/binance_ws/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("binance_ws",
		fx.Provide(
			binance.NewClient,
		),
	)
}
