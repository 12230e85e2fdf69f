package market

import (
	"sync"

	"smc_bot/internal/models"
)

// Window — ограниченное окно свечей одного символа, отсортированное по
// OpenTime строго по возрастанию. Единственная мутация хвоста — замена
// in-progress свечи с тем же OpenTime. Сам Window не синхронизирован;
// конкурентный доступ идёт через Buffers.
type Window struct {
	max     int
	candles []models.Candle
}

func NewWindow(max int) *Window {
	if max < 1 {
		max = 1
	}
	return &Window{max: max, candles: make([]models.Candle, 0, max)}
}

// AppendOrReplace — добавить свечу либо заменить хвост, если OpenTime
// совпадает с текущим. Свечи из прошлого (OpenTime меньше хвоста)
// игнорируются: окно никогда не переписывает историю.
func (w *Window) AppendOrReplace(c models.Candle) {
	n := len(w.candles)
	if n > 0 {
		last := w.candles[n-1]
		if c.OpenTime.Equal(last.OpenTime) {
			w.candles[n-1] = c
			return
		}
		if c.OpenTime.Before(last.OpenTime) {
			return
		}
	}
	w.candles = append(w.candles, c)
	if len(w.candles) > w.max {
		// FIFO с головы
		w.candles = w.candles[len(w.candles)-w.max:]
	}
}

func (w *Window) Len() int { return len(w.candles) }

// Snapshot — копия содержимого; пайплайн работает только со снапшотом.
func (w *Window) Snapshot() []models.Candle {
	out := make([]models.Candle, len(w.candles))
	copy(out, w.candles)
	return out
}

// Buffers — окна по символам. Символы независимы, доступ конкурентный.
type Buffers struct {
	mu      sync.RWMutex
	max     int
	windows map[string]*Window
}

func NewBuffers(maxCandles int) *Buffers {
	return &Buffers{
		max:     maxCandles,
		windows: make(map[string]*Window),
	}
}

func (b *Buffers) Update(symbol string, c models.Candle) {
	b.mu.Lock()
	w, ok := b.windows[symbol]
	if !ok {
		w = NewWindow(b.max)
		b.windows[symbol] = w
	}
	w.AppendOrReplace(c)
	b.mu.Unlock()
}

// Snapshot копирует окно целиком под RLock: Update держит тот же мьютекс
// эксклюзивно, поэтому срез не мутирует под копированием.
func (b *Buffers) Snapshot(symbol string) []models.Candle {
	b.mu.RLock()
	defer b.mu.RUnlock()
	w, ok := b.windows[symbol]
	if !ok {
		return nil
	}
	return w.Snapshot()
}

func (b *Buffers) Len(symbol string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if w, ok := b.windows[symbol]; ok {
		return w.Len()
	}
	return 0
}

func (b *Buffers) Symbols() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, 0, len(b.windows))
	for s := range b.windows {
		out = append(out, s)
	}
	return out
}
