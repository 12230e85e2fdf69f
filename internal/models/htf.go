package models

// Trend — грубый тренд на 1h.
type Trend string

const (
	TrendUp    Trend = "UP"
	TrendDown  Trend = "DOWN"
	TrendRange Trend = "RANGE"
)

// RangePos — положение цены внутри недавнего диапазона.
type RangePos string

const (
	PosDiscount RangePos = "DISCOUNT"
	PosPremium  RangePos = "PREMIUM"
	PosMid      RangePos = "MID"
)

// HTFContext — контекст старших таймфреймов для одного символа.
// Нейтральное значение (fail-open): RANGE / MID / MID / true / true.
type HTFContext struct {
	Trend1h    Trend    `json:"trend_1h"`
	Pos1h      RangePos `json:"pos_1h"`
	Pos15m     RangePos `json:"pos_15m"`
	HTFOkLong  bool     `json:"htf_ok_long"`
	HTFOkShort bool     `json:"htf_ok_short"`
}

// NeutralHTFContext — значение по умолчанию, когда HTF недоступен.
func NeutralHTFContext() HTFContext {
	return HTFContext{
		Trend1h:    TrendRange,
		Pos1h:      PosMid,
		Pos15m:     PosMid,
		HTFOkLong:  true,
		HTFOkShort: true,
	}
}

// OkFor — выравнивание HTF по направлению сетапа.
func (c HTFContext) OkFor(side Side) bool {
	if side == SideLong {
		return c.HTFOkLong
	}
	return c.HTFOkShort
}
