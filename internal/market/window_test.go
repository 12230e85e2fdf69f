package market

import (
	"sync"
	"testing"
	"time"

	"smc_bot/internal/models"
)

func candleAt(min int, close float64, closed bool) models.Candle {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return models.Candle{
		OpenTime:  base.Add(time.Duration(min) * time.Minute),
		CloseTime: base.Add(time.Duration(min+5) * time.Minute),
		Open:      close, High: close, Low: close, Close: close,
		Closed: closed,
	}
}

func TestWindowAppendOrReplaceTail(t *testing.T) {
	w := NewWindow(10)

	w.AppendOrReplace(candleAt(0, 100, true))
	w.AppendOrReplace(candleAt(5, 101, false))
	if w.Len() != 2 {
		t.Fatalf("want 2 candles, got %d", w.Len())
	}

	// та же OpenTime -> замена хвоста, не добавление
	w.AppendOrReplace(candleAt(5, 102, true))
	if w.Len() != 2 {
		t.Fatalf("replace grew window: %d", w.Len())
	}
	snap := w.Snapshot()
	if snap[1].Close != 102 || !snap[1].Closed {
		t.Errorf("tail not replaced: %+v", snap[1])
	}

	// свеча из прошлого игнорируется
	w.AppendOrReplace(candleAt(0, 999, true))
	snap = w.Snapshot()
	if snap[0].Close != 100 {
		t.Errorf("history rewritten: %+v", snap[0])
	}
}

func TestWindowFIFOEviction(t *testing.T) {
	w := NewWindow(3)
	for i := 0; i < 5; i++ {
		w.AppendOrReplace(candleAt(i*5, float64(100+i), true))
	}
	if w.Len() != 3 {
		t.Fatalf("want 3 after eviction, got %d", w.Len())
	}
	snap := w.Snapshot()
	if snap[0].Close != 102 || snap[2].Close != 104 {
		t.Errorf("wrong survivors after FIFO eviction: %v %v", snap[0].Close, snap[2].Close)
	}
}

func TestWindowSnapshotIsCopy(t *testing.T) {
	w := NewWindow(5)
	w.AppendOrReplace(candleAt(0, 100, true))
	snap := w.Snapshot()
	snap[0].Close = 1
	if w.Snapshot()[0].Close != 100 {
		t.Error("snapshot shares backing array with window")
	}
}

func TestBuffersPerSymbol(t *testing.T) {
	b := NewBuffers(10)
	b.Update("BTCUSDT", candleAt(0, 100, true))
	b.Update("ETHUSDT", candleAt(0, 2000, true))
	b.Update("BTCUSDT", candleAt(5, 101, true))

	if b.Len("BTCUSDT") != 2 || b.Len("ETHUSDT") != 1 {
		t.Errorf("per-symbol isolation broken: btc=%d eth=%d", b.Len("BTCUSDT"), b.Len("ETHUSDT"))
	}
	if b.Snapshot("XRPUSDT") != nil {
		t.Error("unknown symbol must return nil snapshot")
	}
	if len(b.Symbols()) != 2 {
		t.Errorf("want 2 symbols, got %v", b.Symbols())
	}
}

// Прогрев пишет в буфер одновременно с чтением из тикового цикла.
// Под -race тест ловит несинхронизированное копирование среза.
func TestBuffersConcurrentUpdateSnapshot(t *testing.T) {
	b := NewBuffers(50)
	const symbol = "BTCUSDT"
	const perWriter = 200

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				b.Update(symbol, candleAt(i*5, float64(100+i), true))
			}
		}()
	}
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				snap := b.Snapshot(symbol)
				for j := 1; j < len(snap); j++ {
					if !snap[j-1].OpenTime.Before(snap[j].OpenTime) {
						t.Errorf("snapshot out of order at %d: %v >= %v",
							j, snap[j-1].OpenTime, snap[j].OpenTime)
						return
					}
				}
				_ = b.Len(symbol)
			}
		}()
	}
	wg.Wait()

	if got := b.Len(symbol); got != 50 {
		t.Errorf("want full window after writers finish, got %d", got)
	}
}
