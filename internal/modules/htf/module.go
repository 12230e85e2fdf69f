package htf

import (
	htf "smc_bot/internal/modules/htf/service"
	smc "smc_bot/internal/modules/smc/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("htf",
		fx.Provide(
			htf.NewProvider,
			func(p *htf.Provider) smc.ContextProvider { return p },
		),
	)
}
