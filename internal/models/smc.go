package models

// Side — направление сетапа.
type Side string

const (
	SideNone  Side = ""
	SideLong  Side = "long"
	SideShort Side = "short"
)

// LiquidityZones — найденные уровни equal highs / equal lows.
// Ноль в поле означает «зоны нет» только вместе с Has*=false.
type LiquidityZones struct {
	HasUpper bool
	Upper    float64
	HasLower bool
	Lower    float64
}

func (z LiquidityZones) Empty() bool { return !z.HasUpper && !z.HasLower }

// SweepEvent — свеча, проколовшая уровень ликвидности и закрывшаяся обратно.
type SweepEvent struct {
	Index   int
	Side    Side
	Level   float64
	Quality bool
}

// DisplacementEvent — импульсная свеча после свипа.
type DisplacementEvent struct {
	Index        int
	BOSConfirmed bool
}

// FVGDirection — направление трёхсвечного гэпа.
type FVGDirection string

const (
	FVGBullish FVGDirection = "bullish"
	FVGBearish FVGDirection = "bearish"
)

// FVGZone — границы гэпа. Инвариант: High > Low когда зона есть.
type FVGZone struct {
	Low       float64
	High      float64
	Direction FVGDirection
	QualityOK bool
}

func (f FVGZone) Mid() float64 { return 0.5 * (f.Low + f.High) }

// LevelSet — торговые уровни сетапа. SLPct в процентах (0.35 == 0.35%).
type LevelSet struct {
	Entry       float64 `json:"entry"`
	SL          float64 `json:"sl"`
	TP1         float64 `json:"tp1"`
	TP2         float64 `json:"tp2"`
	TP3         float64 `json:"tp3"`
	SLPct       float64 `json:"sl_pct"`
	LeverageMin float64 `json:"leverage_min"`
	LeverageMax float64 `json:"leverage_max"`
}
