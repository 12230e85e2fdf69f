package smc

import (
	"smc_bot/internal/modules/config"
	"smc_bot/internal/modules/smc/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("smc",
		fx.Provide(
			func(cfg *config.Config, htf service.ContextProvider) *service.Analyzer {
				return service.NewAnalyzer(cfg.SMC, htf)
			},
		),
	)
}
