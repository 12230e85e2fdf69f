package main

import (
	"context"
	"log"

	binancews "smc_bot/internal/modules/binance_ws"
	"smc_bot/internal/modules/bootstrap"
	"smc_bot/internal/modules/config"
	"smc_bot/internal/modules/health"
	"smc_bot/internal/modules/htf"
	"smc_bot/internal/modules/postgres"
	"smc_bot/internal/modules/siglog"
	"smc_bot/internal/modules/smc"
	telegram "smc_bot/internal/modules/telegram_bot"
	"smc_bot/internal/runner"
	"smc_bot/pkg/logger"
	"smc_bot/pkg/tracing"

	"go.uber.org/fx"
)

func main() {
	if err := logger.Init(); err != nil {
		log.Fatal(err)
	}
	logger.SetServiceName("smc_bot")
	tracing.SetServiceName("smc_bot")

	app := fx.New(
		fx.Provide(
			func() context.Context {
				return context.Background()
			},
		),
		config.Module(),
		postgres.Module(),
		htf.Module(),
		smc.Module(),
		binancews.Module(),
		siglog.Module(),
		runner.Module(),
		bootstrap.Module(),
		health.Module(),
		telegram.Module(),
		fx.Invoke(func(lc fx.Lifecycle, cfg *config.Config) error {
			_, closeTracer, err := tracing.InitTracer(tracing.Config{
				Host: cfg.Jaeger.Host,
				Port: cfg.Jaeger.Port,
			})
			if err != nil {
				return err
			}
			lc.Append(fx.Hook{
				OnStop: func(context.Context) error {
					closeTracer()
					return nil
				},
			})
			return nil
		}),
	)
	app.Run()
}
