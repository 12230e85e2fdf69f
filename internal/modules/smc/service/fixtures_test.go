package service

import (
	"time"

	"smc_bot/internal/models"
)

// базовая «спокойная» свеча для фикстур
func baseCandle(i int) models.Candle {
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	return models.Candle{
		OpenTime:  base.Add(time.Duration(i) * 5 * time.Minute),
		CloseTime: base.Add(time.Duration(i+1) * 5 * time.Minute),
		Open:      100.3,
		High:      100.8,
		Low:       100.1,
		Close:     100.5,
		Volume:    1000,
		Closed:    true,
	}
}

func flatWindow(n int) []models.Candle {
	out := make([]models.Candle, n)
	for i := range out {
		out[i] = baseCandle(i)
	}
	return out
}

func setOHLC(c *models.Candle, o, h, l, cl float64) {
	c.Open, c.High, c.Low, c.Close = o, h, l, cl
}

// rampWindow — строго монотонный рост без повторных экстремумов.
func rampWindow(n int) []models.Candle {
	out := make([]models.Candle, n)
	for i := range out {
		c := baseCandle(i)
		step := float64(i)
		setOHLC(&c, 100+step, 100.6+step, 99.9+step, 100.4+step)
		out[i] = c
	}
	return out
}

// acceptedLongWindow — 40 свечей с полным лонг-сетапом:
// equal lows у 100.0 (индексы 28 и 31), свип на 36, displacement на 37,
// бычий FVG между 36 и 38, близкий последний close.
func acceptedLongWindow() []models.Candle {
	w := flatWindow(40)
	setOHLC(&w[28], 100.3, 100.8, 99.995, 100.5)
	setOHLC(&w[31], 100.3, 100.8, 100.005, 100.5)
	setOHLC(&w[36], 100.45, 100.60, 99.30, 100.52)
	setOHLC(&w[37], 100.50, 101.35, 100.45, 101.30)
	setOHLC(&w[38], 101.30, 101.60, 101.25, 101.55)
	setOHLC(&w[39], 101.50, 101.65, 101.30, 101.45)
	return w
}
