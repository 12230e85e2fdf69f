package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"

	"smc_bot/internal/models"
	"smc_bot/internal/modules/config"
	"smc_bot/pkg/logger"
)

// Provider — HTF-контекст по REST klines с коротким TTL-кэшем.
// Любая ошибка сети или парсинга даёт нейтральный контекст (fail-open),
// сам анализ из-за HTF никогда не падает.
type Provider struct {
	restURL    string
	klineLimit int
	ttl        time.Duration
	maxEntries int

	http *http.Client

	mu    sync.Mutex
	cache map[string]cacheEntry
}

type cacheEntry struct {
	ctx     models.HTFContext
	expires time.Time
}

func NewProvider(cfg *config.Config) *Provider {
	return &Provider{
		restURL:    cfg.Binance.RestURL,
		klineLimit: cfg.HTFKlineLimit,
		ttl:        cfg.HTFCacheTTL,
		maxEntries: cfg.HTFCacheMaxEntries,
		http:       &http.Client{Timeout: 8 * time.Second},
		cache:      make(map[string]cacheEntry),
	}
}

// Context — реализация smc.ContextProvider. Никогда не возвращает ошибку.
func (p *Provider) Context(symbol string) models.HTFContext {
	if ctx, ok := p.cached(symbol); ok {
		return ctx
	}

	hlc1h, err := p.fetchHLC(symbol, "1h")
	if err != nil {
		logger.Warn("htf: %s 1h klines: %v", symbol, err)
		return models.NeutralHTFContext()
	}
	hlc15m, err := p.fetchHLC(symbol, "15m")
	if err != nil {
		logger.Warn("htf: %s 15m klines: %v", symbol, err)
		return models.NeutralHTFContext()
	}
	if hlc1h.Empty() || hlc15m.Empty() {
		return models.NeutralHTFContext()
	}

	ctx := BuildContext(hlc1h, hlc15m)
	p.store(symbol, ctx)
	return ctx
}

func (p *Provider) cached(symbol string) (models.HTFContext, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	e, ok := p.cache[symbol]
	if !ok || time.Now().After(e.expires) {
		return models.HTFContext{}, false
	}
	return e.ctx, true
}

func (p *Provider) store(symbol string, ctx models.HTFContext) {
	p.mu.Lock()
	defer p.mu.Unlock()

	// кэш ограничен: при переполнении выкидываем протухшие,
	// если всё ещё тесно — не кэшируем, следующий вызов сходит в REST
	if len(p.cache) >= p.maxEntries {
		now := time.Now()
		for k, e := range p.cache {
			if now.After(e.expires) {
				delete(p.cache, k)
			}
		}
		if len(p.cache) >= p.maxEntries {
			return
		}
	}

	p.cache[symbol] = cacheEntry{ctx: ctx, expires: time.Now().Add(p.ttl)}
}

// fetchHLC — /fapi/v1/klines. Ряд klines у Binance смешанного типа:
// числа и строки в одном массиве, поэтому парсим в []any и
// вытаскиваем high/low/close по индексам 2..4, битые строки пропускаем.
func (p *Provider) fetchHLC(symbol, interval string) (HLC, error) {
	u := fmt.Sprintf("%s/fapi/v1/klines?symbol=%s&interval=%s&limit=%d",
		p.restURL, url.QueryEscape(symbol), url.QueryEscape(interval), p.klineLimit,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return HLC{}, errors.Wrap(err, "build klines request")
	}
	resp, err := p.http.Do(req)
	if err != nil {
		return HLC{}, errors.Wrap(err, "fetch klines")
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return HLC{}, errors.Wrap(err, "read klines body")
	}
	if resp.StatusCode/100 != 2 {
		return HLC{}, errors.Errorf("klines http %d: %s", resp.StatusCode, string(b))
	}

	var rows [][]any
	if err := sonic.Unmarshal(b, &rows); err != nil {
		return HLC{}, errors.Wrap(err, "decode klines")
	}

	return parseHLC(rows), nil
}

func parseHLC(rows [][]any) HLC {
	var out HLC
	for _, row := range rows {
		if len(row) < 5 {
			continue
		}
		h, ok1 := rowFloat(row[2])
		l, ok2 := rowFloat(row[3])
		c, ok3 := rowFloat(row[4])
		if !ok1 || !ok2 || !ok3 {
			continue
		}
		out.Highs = append(out.Highs, h)
		out.Lows = append(out.Lows, l)
		out.Closes = append(out.Closes, c)
	}
	return out
}

func rowFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	case float64:
		return t, true
	default:
		return 0, false
	}
}
