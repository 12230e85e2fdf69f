package service

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"smc_bot/internal/market"
	binance "smc_bot/internal/modules/binance_ws/service"
	"smc_bot/internal/modules/config"
	"smc_bot/pkg/logger"
)

// Warmuper — REST-прогрев буферов свечей перед стартом стрима,
// чтобы первые сигналы не ждали полного окна с WebSocket.
type Warmuper struct {
	client  *binance.Client
	buffers *market.Buffers
	cfg     *config.Config

	// ограничитель параллелизма, чтобы не словить rate limit
	sem chan struct{}
}

func NewWarmuper(client *binance.Client, buffers *market.Buffers, cfg *config.Config) *Warmuper {
	return &Warmuper{
		client:  client,
		buffers: buffers,
		cfg:     cfg,
		sem:     make(chan struct{}, 8),
	}
}

// Warmup — тянет историю по каждому символу и заливает в буферы.
// Ошибка одного символа не мешает остальным, его окно наполнит стрим.
func (w *Warmuper) Warmup(ctx context.Context, symbols []string) {
	if len(symbols) == 0 {
		return
	}

	need := w.cfg.MaxCandles
	if need > 200 {
		need = 200
	}

	var loaded atomic.Int64
	var wg sync.WaitGroup
	for _, sym := range symbols {
		wg.Add(1)
		// вселенная приходит в нижнем регистре под stream-URL,
		// REST и ключи буфера живут в верхнем
		go func(sym string) {
			defer wg.Done()
			w.sem <- struct{}{}
			defer func() { <-w.sem }()

			candles, err := w.client.GetCandles(ctx, sym, w.cfg.Timeframe, need)
			if err != nil {
				logger.Warn("warmup %s: %v", sym, err)
				return
			}
			for _, c := range candles {
				w.buffers.Update(sym, c)
			}
			loaded.Add(int64(len(candles)))
		}(strings.ToUpper(sym))
	}
	wg.Wait()

	logger.Info("warmup done: %d symbols, %d candles", len(symbols), loaded.Load())
}
