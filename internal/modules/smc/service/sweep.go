package service

import "smc_bot/internal/models"

// статистика нескольких свечей перед свипом
type sweepStats struct {
	avgRange     float64
	avgUpperWick float64
	avgLowerWick float64
	hasHistory   bool
}

func statsBefore(candles []models.Candle, index int) sweepStats {
	start := index - 5
	if start < 0 {
		start = 0
	}
	prev := candles[start:index]
	if len(prev) == 0 {
		return sweepStats{}
	}

	var sumRange, sumUp, sumLo float64
	for _, c := range prev {
		sumRange += c.Range()
		sumUp += c.UpperWick()
		sumLo += c.LowerWick()
	}
	n := float64(len(prev))
	return sweepStats{
		avgRange:     sumRange / n,
		avgUpperWick: sumUp / n,
		avgLowerWick: sumLo / n,
		hasHistory:   true,
	}
}

// DetectSweep — поиск свипа ликвидности в последних checkLastN свечах,
// от самой свежей к более старой. Сначала полный проход по LONG-условию
// (low < lower < close), затем по SHORT (high > upper > close).
// Возвращает не более одного события.
func DetectSweep(candles []models.Candle, zones models.LiquidityZones, checkLastN int) (models.SweepEvent, bool) {
	n := len(candles)
	if n < minCandlesForLiquidity {
		return models.SweepEvent{}, false
	}

	start := n - checkLastN
	if start < 0 {
		start = 0
	}

	if zones.HasLower {
		for i := n - 1; i >= start; i-- {
			c := candles[i]
			if !(c.Low < zones.Lower && zones.Lower < c.Close) {
				continue
			}
			if c.Range() <= 0 {
				continue
			}

			st := statsBefore(candles, i)
			return models.SweepEvent{
				Index:   i,
				Side:    models.SideLong,
				Level:   zones.Lower,
				Quality: qualityLong(c, st),
			}, true
		}
	}

	if zones.HasUpper {
		for i := n - 1; i >= start; i-- {
			c := candles[i]
			if !(c.High > zones.Upper && zones.Upper > c.Close) {
				continue
			}
			if c.Range() <= 0 {
				continue
			}

			st := statsBefore(candles, i)
			return models.SweepEvent{
				Index:   i,
				Side:    models.SideShort,
				Level:   zones.Upper,
				Quality: qualityShort(c, st),
			}, true
		}
	}

	return models.SweepEvent{}, false
}

func qualityLong(c models.Candle, st sweepStats) bool {
	if !st.hasHistory {
		return false
	}
	total := c.Range()
	wick := c.LowerWick()

	rangeOK := total > 1.5*st.avgRange
	wickRatioOK := wick/total >= 0.45
	bodyOK := c.Body() <= 0.7*total
	wickVsAvg := true
	if st.avgLowerWick > 0 {
		wickVsAvg = wick > 1.5*st.avgLowerWick
	}

	return rangeOK && wickRatioOK && wickVsAvg && bodyOK
}

func qualityShort(c models.Candle, st sweepStats) bool {
	if !st.hasHistory {
		return false
	}
	total := c.Range()
	wick := c.UpperWick()

	rangeOK := total > 1.5*st.avgRange
	wickRatioOK := wick/total >= 0.45
	bodyOK := c.Body() <= 0.7*total
	wickVsAvg := true
	if st.avgUpperWick > 0 {
		wickVsAvg = wick > 1.5*st.avgUpperWick
	}

	return rangeOK && wickRatioOK && wickVsAvg && bodyOK
}
