package service

import (
	"math"
	"sort"

	"smc_bot/internal/models"
)

// минимум свечей, чтобы пивоты вообще имели смысл
const minCandlesForLiquidity = 8

// пивот определяется по 2 свечам слева и справа
const pivotMargin = 2

type pivot struct {
	index int
	price float64
}

// pivotHigh — строгий локальный максимум high[i] против соседей i±margin.
func pivotHigh(candles []models.Candle, i, left, right int) bool {
	if i < left || i+right >= len(candles) {
		return false
	}
	h := candles[i].High
	for j := i - left; j <= i+right; j++ {
		if j == i {
			continue
		}
		if candles[j].High >= h {
			return false
		}
	}
	return true
}

func pivotLow(candles []models.Candle, i, left, right int) bool {
	if i < left || i+right >= len(candles) {
		return false
	}
	l := candles[i].Low
	for j := i - left; j <= i+right; j++ {
		if j == i {
			continue
		}
		if candles[j].Low <= l {
			return false
		}
	}
	return true
}

// findSwings — индексы свинг-хаёв и свинг-лоёв внутри сегмента.
func findSwings(candles []models.Candle, left, right int) (highs, lows []pivot) {
	for i := range candles {
		if pivotHigh(candles, i, left, right) {
			highs = append(highs, pivot{index: i, price: candles[i].High})
		}
		if pivotLow(candles, i, left, right) {
			lows = append(lows, pivot{index: i, price: candles[i].Low})
		}
	}
	return highs, lows
}

// clusterLevels — один проход слева направо по отсортированным ценам:
// кандидат попадает в текущий кластер, пока относительное отклонение от
// скользящего среднего кластера не превышает tolerancePct.
func clusterLevels(values []pivot, tolerancePct float64) [][]pivot {
	if len(values) == 0 {
		return nil
	}

	var clusters [][]pivot
	current := []pivot{values[0]}
	sum := values[0].price

	for _, v := range values[1:] {
		avg := sum / float64(len(current))
		relDiff := 0.0
		if avg != 0 {
			relDiff = math.Abs(v.price-avg) / avg
		}

		if relDiff <= tolerancePct {
			current = append(current, v)
			sum += v.price
		} else {
			clusters = append(clusters, current)
			current = []pivot{v}
			sum = v.price
		}
	}
	clusters = append(clusters, current)

	return clusters
}

func clusterMean(cl []pivot) float64 {
	sum := 0.0
	for _, p := range cl {
		sum += p.price
	}
	return sum / float64(len(cl))
}

// pickCluster — победитель: максимальное число участников, при равенстве —
// среднее ближе к последнему close (ликвидность у текущей цены важнее).
func pickCluster(clusters [][]pivot, lastClose float64) ([]pivot, bool) {
	best := -1
	bestDist := math.Inf(1)
	for i, cl := range clusters {
		if len(cl) < 2 {
			continue
		}
		dist := math.Abs(clusterMean(cl) - lastClose)
		if best == -1 || len(cl) > len(clusters[best]) ||
			(len(cl) == len(clusters[best]) && dist < bestDist) {
			best = i
			bestDist = dist
		}
	}
	if best == -1 {
		return nil, false
	}
	return clusters[best], true
}

// DetectLiquidityZones — equal highs / equal lows в последних lookback свечах.
func DetectLiquidityZones(candles []models.Candle, lookback int, tolerancePct float64) models.LiquidityZones {
	var zones models.LiquidityZones

	n := len(candles)
	if n < minCandlesForLiquidity {
		return zones
	}

	start := n - lookback
	if start < 0 {
		start = 0
	}
	segment := candles[start:]
	lastClose := candles[n-1].Close

	highs, lows := findSwings(segment, pivotMargin, pivotMargin)

	if len(highs) >= 2 {
		sorted := append([]pivot(nil), highs...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].price < sorted[j].price })
		if cl, ok := pickCluster(clusterLevels(sorted, tolerancePct), lastClose); ok {
			zones.HasUpper = true
			zones.Upper = clusterMean(cl)
		}
	}

	if len(lows) >= 2 {
		sorted := append([]pivot(nil), lows...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].price < sorted[j].price })
		if cl, ok := pickCluster(clusterLevels(sorted, tolerancePct), lastClose); ok {
			zones.HasLower = true
			zones.Lower = clusterMean(cl)
		}
	}

	return zones
}
