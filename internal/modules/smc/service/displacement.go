package service

import "smc_bot/internal/models"

// DetectDisplacement — импульсная свеча после свипа + minor BOS.
// Кандидат: тело по направлению side, body/range >= 0.60 и
// body >= bodyFactor * средний body до свипа. Из кандидатов берём
// самый крупный по телу; BOS подтверждается close за pre-sweep структуру.
func DetectDisplacement(
	candles []models.Candle,
	sweepIndex int,
	side models.Side,
	lookAhead int,
	bodyFactor float64,
) (models.DisplacementEvent, bool) {
	n := len(candles)

	// слишком близко к краям окна — структуру не посчитать
	if sweepIndex < 2 || sweepIndex >= n-1 {
		return models.DisplacementEvent{}, false
	}

	// средний body по <=5 свечам строго до свипа
	prevStart := sweepIndex - 5
	if prevStart < 0 {
		prevStart = 0
	}
	prev := candles[prevStart:sweepIndex]
	if len(prev) == 0 {
		return models.DisplacementEvent{}, false
	}
	var sumBody float64
	for _, c := range prev {
		sumBody += c.Body()
	}
	avgBody := sumBody / float64(len(prev))
	if avgBody <= 0 {
		return models.DisplacementEvent{}, false
	}

	// структура перед свипом, включая сам свип
	structStart := sweepIndex - 6
	if structStart < 0 {
		structStart = 0
	}
	preHigh := candles[structStart].High
	preLow := candles[structStart].Low
	for _, c := range candles[structStart : sweepIndex+1] {
		if c.High > preHigh {
			preHigh = c.High
		}
		if c.Low < preLow {
			preLow = c.Low
		}
	}

	if lookAhead < 1 {
		lookAhead = 1
	}
	end := sweepIndex + 1 + lookAhead
	if end > n {
		end = n
	}

	bestIdx := -1
	bestBody := 0.0
	bosOK := false

	for i := sweepIndex + 1; i < end; i++ {
		c := candles[i]
		total := c.Range()
		if total <= 0 {
			continue
		}

		if side == models.SideLong && !c.Bullish() {
			continue
		}
		if side == models.SideShort && !c.Bearish() {
			continue
		}

		body := c.Body()
		if body < bodyFactor*avgBody || body/total < 0.60 {
			continue
		}

		if body > bestBody {
			bestBody = body
			bestIdx = i
			if side == models.SideLong {
				bosOK = c.Close > preHigh
			} else {
				bosOK = c.Close < preLow
			}
		}
	}

	if bestIdx < 0 {
		return models.DisplacementEvent{}, false
	}
	return models.DisplacementEvent{Index: bestIdx, BOSConfirmed: bosOK}, true
}
