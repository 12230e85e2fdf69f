package runner

import (
	"context"
	"sync"
	"time"

	"github.com/opentracing/opentracing-go"

	"smc_bot/internal/market"
	"smc_bot/internal/models"
	"smc_bot/internal/modules/config"
	smc "smc_bot/internal/modules/smc/service"
	"smc_bot/pkg/logger"
)

const dispatchQueueSize = 64

// Broadcaster — рассылка принятого сигнала подписчикам.
type Broadcaster interface {
	Broadcast(ctx context.Context, res models.SignalResult)
}

// SignalArchiver — архив сигналов в postgres.
type SignalArchiver interface {
	Insert(ctx context.Context, res models.SignalResult) error
}

// SignalJournal — файловый JSONL-журнал.
type SignalJournal interface {
	Append(res models.SignalResult)
}

// MarketStream — источник kline-тиков. Блокируется до отмены ctx.
type MarketStream interface {
	Stream(ctx context.Context, out chan<- models.CandleTick)
}

// Status — снапшот состояния сканера для /status и health-проб.
type Status struct {
	Symbols     int
	SignalsSent int
	LastSignal  time.Time
	LastTick    time.Time
	StartedAt   time.Time
}

// Manager — событийный цикл сканера: тик → буфер → анализ закрытой
// свечи → fan-out. Потребители развязаны очередями, переполнение очереди
// дропает сигнал для этого потребителя, но не тормозит чтение стрима.
type Manager struct {
	cfg      *config.Config
	stream   MarketStream
	buffers  *market.Buffers
	analyzer *smc.Analyzer

	broadcaster Broadcaster
	journal     SignalJournal
	archive     SignalArchiver

	minTier models.Tier

	broadcastQ chan models.SignalResult
	journalQ   chan models.SignalResult
	archiveQ   chan models.SignalResult

	mu          sync.Mutex
	lastSignal  map[string]time.Time
	signalsSent int
	lastSentAt  time.Time
	lastTickAt  time.Time
	startedAt   time.Time
}

func NewManager(
	cfg *config.Config,
	stream MarketStream,
	buffers *market.Buffers,
	analyzer *smc.Analyzer,
	journal SignalJournal,
	archive SignalArchiver,
) *Manager {
	minTier, ok := models.ParseTier(cfg.MinTier)
	if !ok {
		logger.Warn("runner: unknown min_tier %q, falling back to B", cfg.MinTier)
		minTier = models.TierB
	}

	return &Manager{
		cfg:        cfg,
		stream:     stream,
		buffers:    buffers,
		analyzer:   analyzer,
		journal:    journal,
		archive:    archive,
		minTier:    minTier,
		broadcastQ: make(chan models.SignalResult, dispatchQueueSize),
		journalQ:   make(chan models.SignalResult, dispatchQueueSize),
		archiveQ:   make(chan models.SignalResult, dispatchQueueSize),
		lastSignal: make(map[string]time.Time),
	}
}

// SetBroadcaster — нотификатор подключается перед Run: его конструктору
// нужен сам Manager (для /status), поэтому в NewManager он не попадает.
func (m *Manager) SetBroadcaster(b Broadcaster) {
	m.broadcaster = b
}

// Run — блокируется до отмены ctx.
func (m *Manager) Run(ctx context.Context) {
	m.mu.Lock()
	m.startedAt = time.Now()
	m.mu.Unlock()

	go m.broadcastWorker(ctx)
	go m.journalWorker(ctx)
	go m.archiveWorker(ctx)

	ticks := make(chan models.CandleTick, 512)
	go m.stream.Stream(ctx, ticks)

	for {
		select {
		case <-ctx.Done():
			return
		case tick, ok := <-ticks:
			if !ok {
				return
			}
			m.onTick(ctx, tick)
		}
	}
}

func (m *Manager) onTick(ctx context.Context, tick models.CandleTick) {
	// буфер обновляет каждый kline, и открытый и закрытый
	m.buffers.Update(tick.Symbol, tick.Candle)

	m.mu.Lock()
	m.lastTickAt = time.Now()
	m.mu.Unlock()

	if !tick.Candle.Closed {
		return
	}
	if !m.cooldownPassed(tick.Symbol) {
		return
	}

	res, ok := m.analyzeSafe(ctx, tick.Symbol)
	if !ok {
		return
	}

	m.markSignal(tick.Symbol)
	logger.Info("runner: %s %s signal, tier %s score %d",
		res.Symbol, res.Side, res.Quality.Tier, res.Quality.Score)

	m.dispatch(res)
}

// analyzeSafe — паника внутри детекторов гасится и превращается
// в отсутствие сигнала по этому символу, сканер живёт дальше.
func (m *Manager) analyzeSafe(ctx context.Context, symbol string) (res models.SignalResult, ok bool) {
	defer func() {
		if p := recover(); p != nil {
			logger.Error("runner: %s analyze panic: %v", symbol, p)
			res, ok = models.SignalResult{}, false
		}
	}()

	span, _ := opentracing.StartSpanFromContext(ctx, "smc.analyze")
	span.SetTag("symbol", symbol)
	defer span.Finish()

	candles := m.buffers.Snapshot(symbol)
	res, ok = m.analyzer.Analyze(symbol, candles, m.minTier)
	span.SetTag("accepted", ok)
	return res, ok
}

func (m *Manager) cooldownPassed(symbol string) bool {
	cd := m.cfg.CooldownPerSymbol
	if cd <= 0 {
		return true
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	last, ok := m.lastSignal[symbol]
	return !ok || time.Since(last) >= cd
}

func (m *Manager) markSignal(symbol string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastSignal[symbol] = time.Now()
	m.signalsSent++
	m.lastSentAt = time.Now()
}

// dispatch — неблокирующий fan-out, медленный потребитель теряет
// свой экземпляр сигнала.
func (m *Manager) dispatch(res models.SignalResult) {
	select {
	case m.broadcastQ <- res:
	default:
		logger.Warn("runner: broadcast queue full, dropping %s", res.Symbol)
	}
	select {
	case m.journalQ <- res:
	default:
		logger.Warn("runner: journal queue full, dropping %s", res.Symbol)
	}
	select {
	case m.archiveQ <- res:
	default:
		logger.Warn("runner: archive queue full, dropping %s", res.Symbol)
	}
}

func (m *Manager) broadcastWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case res := <-m.broadcastQ:
			if m.broadcaster != nil {
				m.broadcaster.Broadcast(ctx, res)
			}
		}
	}
}

func (m *Manager) journalWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case res := <-m.journalQ:
			if m.journal != nil {
				m.journal.Append(res)
			}
		}
	}
}

func (m *Manager) archiveWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case res := <-m.archiveQ:
			if m.archive == nil {
				continue
			}
			if err := m.archive.Insert(ctx, res); err != nil {
				logger.Error("runner: archive: %v", err)
			}
		}
	}
}

// Status — для команды /status.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Status{
		Symbols:     len(m.buffers.Symbols()),
		SignalsSent: m.signalsSent,
		LastSignal:  m.lastSentAt,
		LastTick:    m.lastTickAt,
		StartedAt:   m.startedAt,
	}
}
