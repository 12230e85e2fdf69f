package service

import "smc_bot/internal/models"

// пороги тренда на 1h
const (
	minKlinesForTrend = 20
	trendUpHighPct    = 1.01
	trendUpLowPct     = 1.005
	trendDownHighPct  = 0.99
	trendDownLowPct   = 0.995
)

// границы discount/premium внутри недавнего диапазона
const (
	rangeWindow = 60
	discountPos = 0.35
	premiumPos  = 0.65
)

// HLC — распарсенные ряды старшего таймфрейма, индексы синхронны.
type HLC struct {
	Highs  []float64
	Lows   []float64
	Closes []float64
}

func (s HLC) Empty() bool { return len(s.Closes) == 0 }

// DetectTrend — грубый тренд по прореженным свингам 1h.
// Шаг прореживания гасит микрошум, пороги отсекают дрейф.
func DetectTrend(hlc HLC) models.Trend {
	n := len(hlc.Highs)
	if n < minKlinesForTrend || len(hlc.Lows) != n {
		return models.TrendRange
	}

	step := n / 10
	if step < 2 {
		step = 2
	}

	var swingHighs, swingLows []float64
	for i := 0; i < n; i += step {
		swingHighs = append(swingHighs, hlc.Highs[i])
		swingLows = append(swingLows, hlc.Lows[i])
	}
	if len(swingHighs) < 3 || len(swingLows) < 3 {
		return models.TrendRange
	}

	firstH, lastH := swingHighs[0], swingHighs[len(swingHighs)-1]
	firstL, lastL := swingLows[0], swingLows[len(swingLows)-1]

	if lastH > firstH*trendUpHighPct && lastL > firstL*trendUpLowPct {
		return models.TrendUp
	}
	if lastH < firstH*trendDownHighPct && lastL < firstL*trendDownLowPct {
		return models.TrendDown
	}
	return models.TrendRange
}

// RangePosition — положение последнего close внутри диапазона
// последних rangeWindow баров. Вырожденный диапазон считается MID.
func RangePosition(hlc HLC) models.RangePos {
	n := len(hlc.Highs)
	if n < 5 || len(hlc.Closes) == 0 || len(hlc.Lows) != n {
		return models.PosMid
	}

	start := n - rangeWindow
	if start < 0 {
		start = 0
	}

	rangeHigh := hlc.Highs[start]
	rangeLow := hlc.Lows[start]
	for i := start + 1; i < n; i++ {
		if hlc.Highs[i] > rangeHigh {
			rangeHigh = hlc.Highs[i]
		}
		if hlc.Lows[i] < rangeLow {
			rangeLow = hlc.Lows[i]
		}
	}
	if rangeHigh <= rangeLow {
		return models.PosMid
	}

	price := hlc.Closes[len(hlc.Closes)-1]
	pos := (price - rangeLow) / (rangeHigh - rangeLow)

	switch {
	case pos <= discountPos:
		return models.PosDiscount
	case pos >= premiumPos:
		return models.PosPremium
	default:
		return models.PosMid
	}
}

// BuildContext — собирает контекст и консервативные правила выравнивания:
// лонг блокируют 1h DOWN либо двойной PREMIUM, шорт — зеркально.
func BuildContext(hlc1h, hlc15m HLC) models.HTFContext {
	trend := DetectTrend(hlc1h)
	pos1h := RangePosition(hlc1h)
	pos15m := RangePosition(hlc15m)

	okLong := true
	okShort := true

	if trend == models.TrendDown {
		okLong = false
	}
	if pos1h == models.PosPremium && pos15m == models.PosPremium {
		okLong = false
	}

	if trend == models.TrendUp {
		okShort = false
	}
	if pos1h == models.PosDiscount && pos15m == models.PosDiscount {
		okShort = false
	}

	return models.HTFContext{
		Trend1h:    trend,
		Pos1h:      pos1h,
		Pos15m:     pos15m,
		HTFOkLong:  okLong,
		HTFOkShort: okShort,
	}
}
