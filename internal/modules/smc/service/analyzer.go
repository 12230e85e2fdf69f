package service

import (
	"fmt"
	"math"
	"strings"

	"smc_bot/internal/models"
	"smc_bot/internal/modules/config"
)

// ContextProvider — внешний источник HTF-контекста. Обязан fail-open:
// на любой ошибке возвращать нейтральный контекст, не ошибку.
type ContextProvider interface {
	Context(symbol string) models.HTFContext
}

// Analyzer — последовательный fail-fast пайплайн:
// liquidity → sweep → displacement → FVG → levels → RR → HTF → tier.
// Чистая функция окна и HTF-снапшота, состояния между вызовами нет.
type Analyzer struct {
	cfg config.SMCConfig
	htf ContextProvider
}

func NewAnalyzer(cfg config.SMCConfig, htf ContextProvider) *Analyzer {
	return &Analyzer{cfg: cfg, htf: htf}
}

// Analyze — одна попытка найти сетап на снапшоте окна.
// ok=false — нормальный негативный результат, не ошибка.
func (a *Analyzer) Analyze(symbol string, candles []models.Candle, minTier models.Tier) (models.SignalResult, bool) {
	cfg := a.cfg

	if len(candles) < cfg.MinCandles {
		return models.SignalResult{}, false
	}

	// 1) зоны ликвидности в недавней истории
	zones := DetectLiquidityZones(candles, cfg.Lookback, cfg.TolerancePct)
	if zones.Empty() {
		return models.SignalResult{}, false
	}

	// 2) свип в последних свечах
	sweep, ok := DetectSweep(candles, zones, cfg.SweepCheckLastN)
	if !ok {
		return models.SignalResult{}, false
	}

	// 3) displacement после свипа
	disp, ok := DetectDisplacement(candles, sweep.Index, sweep.Side, cfg.DispLookAhead, cfg.DispBodyFactor)
	if !ok {
		return models.SignalResult{}, false
	}

	// 4) FVG вокруг displacement, направление должно совпасть со свипом
	fvg, ok := DetectFVG(candles, disp.Index, FVGParams{
		Radius:      cfg.FVGRadius,
		MinWidthPct: cfg.FVGMinWidthPct,
		MaxWidthPct: cfg.FVGMaxWidthPct,
		MaxDistPct:  cfg.FVGMaxDistPct,
	})
	if !ok {
		return models.SignalResult{}, false
	}
	if sweep.Side == models.SideLong && fvg.Direction != models.FVGBullish {
		return models.SignalResult{}, false
	}
	if sweep.Side == models.SideShort && fvg.Direction != models.FVGBearish {
		return models.SignalResult{}, false
	}

	// 5) уровни
	levels, ok := BuildLevels(sweep.Side, candles, sweep.Index, fvg, LevelParams{
		RRTP1:     cfg.RRTP1,
		RRTP2:     cfg.RRTP2,
		RRTP3:     cfg.RRTP3,
		ATRPeriod: cfg.ATRPeriod,
		SLBandMin: cfg.SLBandMin,
		SLBandMax: cfg.SLBandMax,
	})
	if !ok {
		return models.SignalResult{}, false
	}

	// 6) минимальный R:R по TP2
	risk := math.Abs(levels.Entry - levels.SL)
	if risk <= 0 {
		return models.SignalResult{}, false
	}
	goodRR := math.Abs(levels.TP2-levels.Entry)/risk >= cfg.GoodRRMin

	// 7) HTF-контекст (fail-open внутри провайдера)
	htfCtx := models.NeutralHTFContext()
	if a.htf != nil {
		htfCtx = a.htf.Context(symbol)
	}

	// 8) скоринг и гейт
	flags := SignalFlags{
		HasLiquidity:    true,
		HasSweep:        true,
		SweepQuality:    sweep.Quality,
		HasDisplacement: true,
		BOSConfirmed:    disp.BOSConfirmed,
		HasFVG:          true,
		FVGQuality:      fvg.QualityOK,
		GoodRR:          goodRR,
		HTFAlignment:    htfCtx.OkFor(sweep.Side),
	}
	quality := EvaluateQuality(flags, levels.SLPct, cfg.SLBandMin, cfg.SLBandMax, minTier)
	if !quality.ShouldSend {
		return models.SignalResult{}, false
	}

	res := models.SignalResult{
		Symbol:  strings.ToUpper(symbol),
		Side:    sweep.Side,
		Levels:  levels,
		Quality: quality,
		HTF:     htfCtx,
		// детерминированно от окна, не от wall clock
		CreatedAt: candles[len(candles)-1].CloseTime,
	}
	res.Message = renderMessage(res)

	return res, true
}

// renderMessage — компактный текст для брокаста.
func renderMessage(r models.SignalResult) string {
	emoji := "🟢"
	label := "LONG"
	if r.Side == models.SideShort {
		emoji = "🔴"
		label = "SHORT"
	}

	l := r.Levels
	posMultiple := 0.0
	if l.SLPct > 0 {
		posMultiple = 100.0 / l.SLPct
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s SMC SIGNAL — %s (%s)\n", emoji, r.Symbol, label)
	fmt.Fprintf(&b, "Entry : %.4f\n", l.Entry)
	fmt.Fprintf(&b, "SL    : %.4f (%.2f%%)\n", l.SL, l.SLPct)
	fmt.Fprintf(&b, "TP1   : %.4f\n", l.TP1)
	fmt.Fprintf(&b, "TP2   : %.4f\n", l.TP2)
	fmt.Fprintf(&b, "TP3   : %.4f\n", l.TP3)
	fmt.Fprintf(&b, "Model : Sweep → FVG Retest\n")
	fmt.Fprintf(&b, "Tier  : %s (score %d)\n", r.Quality.Tier, r.Quality.Score)
	fmt.Fprintf(&b, "Leverage : %.0fx–%.0fx\n", l.LeverageMin, l.LeverageMax)
	fmt.Fprintf(&b, "Sizing   : position ≈ %.1f × risk budget", posMultiple)
	return b.String()
}
