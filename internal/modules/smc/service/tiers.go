package service

import "smc_bot/internal/models"

// SignalFlags — булевые признаки качества, собранные пайплайном.
type SignalFlags struct {
	HasLiquidity    bool
	HasSweep        bool
	SweepQuality    bool
	HasDisplacement bool
	BOSConfirmed    bool
	HasFVG          bool
	FVGQuality      bool
	GoodRR          bool
	HTFAlignment    bool
}

const maxScore = 150

// ScoreSignal — сумма фиксированных весов признаков + 10 за здоровый SL%.
func ScoreSignal(f SignalFlags, slPct, slBandMin, slBandMax float64) int {
	score := 0

	if f.HasLiquidity {
		score += 10
	}
	if f.HasSweep {
		score += 20
	}
	if f.SweepQuality {
		score += 10
	}
	if f.HasDisplacement {
		score += 20
	}
	if f.BOSConfirmed {
		score += 10
	}
	if f.HasFVG {
		score += 15
	}
	if f.FVGQuality {
		score += 10
	}
	if f.GoodRR {
		score += 10
	}
	if slPct >= slBandMin && slPct <= slBandMax {
		score += 10
	}
	if f.HTFAlignment {
		score += 15
	}

	if score > maxScore {
		score = maxScore
	}
	return score
}

// TierFromScore — монотонная лестница тиров.
func TierFromScore(score int) models.Tier {
	switch {
	case score >= 120:
		return models.TierAPlus
	case score >= 100:
		return models.TierA
	case score >= 80:
		return models.TierB
	default:
		return models.TierNone
	}
}

// EvaluateQuality — скоринг + жёсткие фильтры. Любой из пяти ключевых
// признаков false либо SL% вне диапазона — отказ независимо от score.
// minTier передаётся явным параметром.
func EvaluateQuality(f SignalFlags, slPct, slBandMin, slBandMax float64, minTier models.Tier) models.SignalQuality {
	score := ScoreSignal(f, slPct, slBandMin, slBandMax)
	tier := TierFromScore(score)

	var reasons []string
	if !f.SweepQuality {
		reasons = append(reasons, models.RejectSweepQuality)
	}
	if !f.BOSConfirmed {
		reasons = append(reasons, models.RejectBOS)
	}
	if !f.FVGQuality {
		reasons = append(reasons, models.RejectFVGQuality)
	}
	if !f.GoodRR {
		reasons = append(reasons, models.RejectRR)
	}
	if !f.HTFAlignment {
		reasons = append(reasons, models.RejectHTF)
	}
	if !(slPct >= slBandMin && slPct <= slBandMax) {
		reasons = append(reasons, models.RejectSLPct)
	}

	hardOK := len(reasons) == 0
	send := hardOK && tier.Rank() >= minTier.Rank()

	return models.SignalQuality{
		Score:      score,
		Tier:       tier,
		ShouldSend: send,
		Reasons:    reasons,
	}
}
