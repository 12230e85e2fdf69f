package service

import (
	"math"
	"reflect"
	"strings"
	"testing"

	"smc_bot/internal/models"
	"smc_bot/internal/modules/config"
)

type neutralHTF struct{}

func (neutralHTF) Context(string) models.HTFContext { return models.NeutralHTFContext() }

func newTestAnalyzer() *Analyzer {
	return NewAnalyzer(config.DefaultSMCConfig(), neutralHTF{})
}

func TestAnalyzeTooFewCandles(t *testing.T) {
	a := newTestAnalyzer()
	if _, ok := a.Analyze("BTCUSDT", flatWindow(10), models.TierB); ok {
		t.Error("10 candles below the minimum must not produce a signal")
	}
}

func TestAnalyzeMonotonicRamp(t *testing.T) {
	a := newTestAnalyzer()
	if _, ok := a.Analyze("BTCUSDT", rampWindow(40), models.TierB); ok {
		t.Error("monotonic ramp has no liquidity zones, no signal expected")
	}
}

func TestAnalyzeAcceptedLong(t *testing.T) {
	a := newTestAnalyzer()
	w := acceptedLongWindow()

	res, ok := a.Analyze("btcusdt", w, models.TierB)
	if !ok {
		t.Fatal("expected a signal on the crafted window")
	}

	if res.Symbol != "BTCUSDT" {
		t.Errorf("symbol = %q, want upper-cased BTCUSDT", res.Symbol)
	}
	if res.Side != models.SideLong {
		t.Fatalf("side = %s, want long", res.Side)
	}

	l := res.Levels
	if l.Entry < 100.60 || l.Entry > 101.25 {
		t.Errorf("entry = %v, must be inside the gap [100.60, 101.25]", l.Entry)
	}
	if l.SL >= l.Entry {
		t.Errorf("SL %v must be below entry %v", l.SL, l.Entry)
	}
	// TP2 строго 2R от entry
	risk := l.Entry - l.SL
	if d := math.Abs(l.TP2 - l.Entry - 2.0*risk); d/risk > 1e-9 {
		t.Errorf("TP2 = %v, want entry + 2*risk = %v", l.TP2, l.Entry+2.0*risk)
	}
	if l.SLPct != 1.5 {
		t.Errorf("slPct = %v, want clamped 1.5", l.SLPct)
	}

	if res.Quality.Tier == models.TierNone {
		t.Errorf("tier = %s, want B or better", res.Quality.Tier)
	}
	if !res.Quality.ShouldSend {
		t.Errorf("should_send = false, reasons = %v", res.Quality.Reasons)
	}
	if res.Message == "" {
		t.Error("message must be rendered for an accepted signal")
	}
	if !strings.Contains(res.Message, "BTCUSDT") || !strings.Contains(res.Message, "LONG") {
		t.Errorf("message missing symbol/side:\n%s", res.Message)
	}
	if !res.CreatedAt.Equal(w[len(w)-1].CloseTime) {
		t.Errorf("created_at = %v, want close time of the last candle", res.CreatedAt)
	}
}

// одинаковое окно — побитово одинаковый результат
func TestAnalyzeDeterministic(t *testing.T) {
	a := newTestAnalyzer()
	w := acceptedLongWindow()

	first, ok1 := a.Analyze("btcusdt", w, models.TierB)
	second, ok2 := a.Analyze("btcusdt", w, models.TierB)
	if !ok1 || !ok2 {
		t.Fatal("both runs must produce a signal")
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("results differ:\n%+v\n%+v", first, second)
	}
}

type shortOnlyHTF struct{}

func (shortOnlyHTF) Context(string) models.HTFContext {
	return models.HTFContext{
		Trend1h:    models.TrendDown,
		Pos1h:      models.PosPremium,
		Pos15m:     models.PosPremium,
		HTFOkLong:  false,
		HTFOkShort: true,
	}
}

// HTF против лонга — жёсткий фильтр, сетап отбрасывается
func TestAnalyzeHTFMisalignmentRejects(t *testing.T) {
	a := NewAnalyzer(config.DefaultSMCConfig(), shortOnlyHTF{})
	if _, ok := a.Analyze("btcusdt", acceptedLongWindow(), models.TierB); ok {
		t.Error("long setup against HTF context must be dropped")
	}
}

func TestAnalyzeNilProviderFallsBackToNeutral(t *testing.T) {
	a := NewAnalyzer(config.DefaultSMCConfig(), nil)
	res, ok := a.Analyze("btcusdt", acceptedLongWindow(), models.TierB)
	if !ok {
		t.Fatal("expected a signal with neutral HTF fallback")
	}
	if !res.HTF.HTFOkLong {
		t.Error("neutral context must allow long")
	}
}
