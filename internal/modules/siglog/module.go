package siglog

import (
	siglog "smc_bot/internal/modules/siglog/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("siglog",
		fx.Provide(
			siglog.NewWriter,
		),
	)
}
