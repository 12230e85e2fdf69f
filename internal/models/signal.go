package models

import "time"

// Tier — дискретная оценка качества сетапа.
type Tier string

const (
	TierNone  Tier = "NONE"
	TierB     Tier = "B"
	TierA     Tier = "A"
	TierAPlus Tier = "A+"
)

// Rank — порядок тиров: NONE < B < A < A+.
func (t Tier) Rank() int {
	switch t {
	case TierB:
		return 1
	case TierA:
		return 2
	case TierAPlus:
		return 3
	default:
		return 0
	}
}

// ParseTier — нормализация пользовательского ввода (/mode).
func ParseTier(s string) (Tier, bool) {
	switch s {
	case "B", "b":
		return TierB, true
	case "A", "a":
		return TierA, true
	case "A+", "a+":
		return TierAPlus, true
	case "NONE", "none":
		return TierNone, true
	default:
		return TierNone, false
	}
}

// Причины жёсткого отказа в SignalQuality.Reasons.
const (
	RejectSweepQuality = "sweep_quality"
	RejectBOS          = "bos"
	RejectFVGQuality   = "fvg_quality"
	RejectRR           = "rr"
	RejectHTF          = "htf"
	RejectSLPct        = "sl_pct"
)

// SignalQuality — итог скоринга и жёстких фильтров.
type SignalQuality struct {
	Score      int      `json:"score"`
	Tier       Tier     `json:"tier"`
	ShouldSend bool     `json:"should_send"`
	Reasons    []string `json:"reasons,omitempty"`
}

// SignalResult — готовый сигнал. Создаётся один раз, дальше только читается.
type SignalResult struct {
	Symbol    string        `json:"symbol"`
	Side      Side          `json:"side"`
	Levels    LevelSet      `json:"levels"`
	Quality   SignalQuality `json:"quality"`
	HTF       HTFContext    `json:"htf"`
	Message   string        `json:"message"`
	CreatedAt time.Time     `json:"created_at"`
}
