package service

import (
	"math"

	"smc_bot/internal/models"
)

// FVGParams — границы качества гэпа, доли от цены (0.008 = 0.8%).
type FVGParams struct {
	Radius      int
	MinWidthPct float64
	MaxWidthPct float64
	MaxDistPct  float64
}

// DetectFVG — классический трёхсвечный гэп вокруг displacement-свечи.
// Bullish: low[i+2] > high[i]; bearish: high[i+2] < low[i]. Из кандидатов
// каждого направления берётся тот, чья середина ближе к последнему close.
// При наличии обоих направлений бычий выигрывает, если медвежий не строго
// ближе (осознанно несимметрично, поведение исходной модели сохранено).
func DetectFVG(candles []models.Candle, centerIndex int, p FVGParams) (models.FVGZone, bool) {
	n := len(candles)
	if n < 3 || centerIndex < 0 || centerIndex >= n {
		return models.FVGZone{}, false
	}

	start := centerIndex - p.Radius
	if start < 0 {
		start = 0
	}
	lastStart := centerIndex + p.Radius
	if lastStart > n-3 {
		lastStart = n - 3
	}
	if start > lastStart {
		return models.FVGZone{}, false
	}

	lastClose := candles[n-1].Close

	var (
		bullDist = math.Inf(1)
		bearDist = math.Inf(1)
		hasBull  bool
		hasBear  bool
		bullLow, bullHigh float64
		bearLow, bearHigh float64
	)

	for i := start; i <= lastStart; i++ {
		c0 := candles[i]
		c2 := candles[i+2]

		if c2.Low > c0.High {
			mid := 0.5 * (c0.High + c2.Low)
			if mid > 0 {
				dist := math.Abs(lastClose - mid)
				if dist < bullDist {
					bullDist = dist
					bullLow, bullHigh = c0.High, c2.Low
					hasBull = true
				}
			}
		}

		if c2.High < c0.Low {
			mid := 0.5 * (c2.High + c0.Low)
			if mid > 0 {
				dist := math.Abs(lastClose - mid)
				if dist < bearDist {
					bearDist = dist
					bearLow, bearHigh = c2.High, c0.Low
					hasBear = true
				}
			}
		}
	}

	if !hasBull && !hasBear {
		return models.FVGZone{}, false
	}

	zone := models.FVGZone{}
	if hasBull && (!hasBear || bullDist <= bearDist) {
		zone.Direction = models.FVGBullish
		zone.Low, zone.High = bullLow, bullHigh
	} else {
		zone.Direction = models.FVGBearish
		zone.Low, zone.High = bearLow, bearHigh
	}

	if zone.High <= zone.Low {
		return models.FVGZone{}, false
	}

	mid := zone.Mid()
	if mid > 0 {
		widthPct := (zone.High - zone.Low) / mid
		distPct := math.Abs(lastClose-mid) / mid
		zone.QualityOK = widthPct >= p.MinWidthPct &&
			widthPct <= p.MaxWidthPct &&
			distPct <= p.MaxDistPct
	}

	return zone, true
}
