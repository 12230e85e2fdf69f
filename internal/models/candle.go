package models

import "time"

// Candle — одна закрытая или обновляющаяся свеча одного символа.
type Candle struct {
	OpenTime  time.Time
	CloseTime time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	Closed    bool
}

// Body — абсолютный размер тела свечи.
func (c Candle) Body() float64 {
	if c.Close >= c.Open {
		return c.Close - c.Open
	}
	return c.Open - c.Close
}

// Range — полный диапазон high-low.
func (c Candle) Range() float64 { return c.High - c.Low }

// UpperWick — верхний фитиль (от максимума до верха тела).
func (c Candle) UpperWick() float64 {
	top := c.Open
	if c.Close > top {
		top = c.Close
	}
	return c.High - top
}

// LowerWick — нижний фитиль (от низа тела до минимума).
func (c Candle) LowerWick() float64 {
	bot := c.Open
	if c.Close < bot {
		bot = c.Close
	}
	return bot - c.Low
}

func (c Candle) Bullish() bool { return c.Close > c.Open }
func (c Candle) Bearish() bool { return c.Close < c.Open }

// CandleTick — свеча из WS-потока вместе с символом и таймфреймом.
type CandleTick struct {
	Symbol       string
	TimeframeRaw string
	Candle       Candle
}
