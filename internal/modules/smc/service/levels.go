package service

import (
	"math"

	"smc_bot/internal/models"
)

const fvgRangeEps = 1e-9

// LevelParams — настройки построения уровней.
type LevelParams struct {
	RRTP1     float64
	RRTP2     float64
	RRTP3     float64
	ATRPeriod int
	SLBandMin float64 // проценты
	SLBandMax float64 // проценты
}

// ATR — средний true range за period. Нужно period+1 свечей, иначе 0.
func ATR(candles []models.Candle, period int) float64 {
	n := len(candles)
	if period <= 0 || n < period+1 {
		return 0
	}

	sum := 0.0
	for i := n - period; i < n; i++ {
		c := candles[i]
		prevClose := candles[i-1].Close

		tr := c.High - c.Low
		if d := math.Abs(c.High - prevClose); d > tr {
			tr = d
		}
		if d := math.Abs(c.Low - prevClose); d > tr {
			tr = d
		}
		sum += tr
	}
	return sum / float64(period)
}

// BuildLevels — entry/SL/TP и рекомендация плеча.
//
// Entry — неглубокий ретест на 30% внутрь FVG со стороны текущей цены,
// но не дальше последнего close (не гонимся за ценой). Буфер стопа
// адаптивный: доля FVG, доля цены или половина ATR — что больше.
// SL% всегда приводится в здоровый диапазон [SLBandMin, SLBandMax].
func BuildLevels(
	side models.Side,
	candles []models.Candle,
	sweepIndex int,
	fvg models.FVGZone,
	p LevelParams,
) (models.LevelSet, bool) {
	n := len(candles)
	if n < 2 || sweepIndex < 0 || sweepIndex >= n {
		return models.LevelSet{}, false
	}

	lastClose := candles[n-1].Close

	fvgRange := fvg.High - fvg.Low
	if fvgRange < fvgRangeEps {
		fvgRange = fvgRangeEps
	}

	var entry float64
	if side == models.SideLong {
		entry = fvg.High - 0.3*fvgRange
		if lastClose < entry {
			entry = lastClose
		}
	} else {
		entry = fvg.Low + 0.3*fvgRange
		if lastClose > entry {
			entry = lastClose
		}
	}
	if entry == 0 || math.IsInf(entry, 0) || math.IsNaN(entry) {
		return models.LevelSet{}, false
	}

	atr := ATR(candles, p.ATRPeriod)

	buffer := 0.30 * fvgRange
	if m := 0.0035 * math.Abs(entry); m > buffer {
		buffer = m
	}
	if m := 0.5 * atr; m > buffer {
		buffer = m
	}

	var sl, risk float64
	if side == models.SideLong {
		sl = candles[sweepIndex].Low - buffer
		risk = entry - sl
	} else {
		sl = candles[sweepIndex].High + buffer
		risk = sl - entry
	}

	if risk <= 0 {
		risk = 0.0035 * math.Abs(entry)
		sl = stopFromRisk(side, entry, risk)
	}

	slPct := risk / math.Abs(entry) * 100.0

	// здоровый диапазон SL%: уже — расширяем, шире — зажимаем
	if slPct < p.SLBandMin {
		risk = p.SLBandMin / 100.0 * math.Abs(entry)
		sl = stopFromRisk(side, entry, risk)
		slPct = p.SLBandMin
	}
	if slPct > p.SLBandMax {
		risk = p.SLBandMax / 100.0 * math.Abs(entry)
		sl = stopFromRisk(side, entry, risk)
		slPct = p.SLBandMax
	}

	levels := models.LevelSet{
		Entry: entry,
		SL:    sl,
		SLPct: slPct,
	}
	if side == models.SideLong {
		levels.TP1 = entry + p.RRTP1*risk
		levels.TP2 = entry + p.RRTP2*risk
		levels.TP3 = entry + p.RRTP3*risk
	} else {
		levels.TP1 = entry - p.RRTP1*risk
		levels.TP2 = entry - p.RRTP2*risk
		levels.TP3 = entry - p.RRTP3*risk
	}

	levels.LeverageMin, levels.LeverageMax = RecommendLeverage(slPct)

	return levels, true
}

func stopFromRisk(side models.Side, entry, risk float64) float64 {
	if side == models.SideLong {
		return entry - risk
	}
	return entry + risk
}

// RecommendLeverage — ступенчатая рекомендация плеча от SL%:
// чем плотнее стоп, тем больше допустимое плечо.
func RecommendLeverage(slPct float64) (float64, float64) {
	switch {
	case slPct <= 0:
		return 1, 2
	case slPct <= 0.50:
		return 4, 7
	case slPct <= 0.80:
		return 3, 5
	case slPct <= 1.50:
		return 2, 3
	default:
		return 1, 2
	}
}
