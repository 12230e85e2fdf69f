package service

import (
	"testing"

	"smc_bot/internal/models"
)

func allFlags() SignalFlags {
	return SignalFlags{
		HasLiquidity:    true,
		HasSweep:        true,
		SweepQuality:    true,
		HasDisplacement: true,
		BOSConfirmed:    true,
		HasFVG:          true,
		FVGQuality:      true,
		GoodRR:          true,
		HTFAlignment:    true,
	}
}

func TestScoreSignalFullHouse(t *testing.T) {
	if got := ScoreSignal(allFlags(), 1.0, 0.35, 1.5); got != 130 {
		t.Errorf("score = %d, want 130", got)
	}
	// SL% вне диапазона теряет свои 10
	if got := ScoreSignal(allFlags(), 2.0, 0.35, 1.5); got != 120 {
		t.Errorf("score = %d, want 120", got)
	}
	if got := ScoreSignal(SignalFlags{}, 2.0, 0.35, 1.5); got != 0 {
		t.Errorf("score = %d, want 0", got)
	}
}

func TestScoreSignalNeverExceedsMax(t *testing.T) {
	if got := ScoreSignal(allFlags(), 1.0, 0.35, 1.5); got > maxScore {
		t.Errorf("score %d exceeds %d", got, maxScore)
	}
}

func TestTierFromScoreLadder(t *testing.T) {
	cases := []struct {
		score int
		tier  models.Tier
	}{
		{0, models.TierNone},
		{79, models.TierNone},
		{80, models.TierB},
		{99, models.TierB},
		{100, models.TierA},
		{119, models.TierA},
		{120, models.TierAPlus},
		{150, models.TierAPlus},
	}
	for _, c := range cases {
		if got := TierFromScore(c.score); got != c.tier {
			t.Errorf("TierFromScore(%d) = %s, want %s", c.score, got, c.tier)
		}
	}

	// монотонность по всей шкале
	prev := TierFromScore(0)
	for s := 1; s <= maxScore; s++ {
		cur := TierFromScore(s)
		if cur.Rank() < prev.Rank() {
			t.Fatalf("tier drops at score %d: %s -> %s", s, prev, cur)
		}
		prev = cur
	}
}

// высокий score не спасает от жёсткого фильтра
func TestEvaluateQualityHardFilterBeatsScore(t *testing.T) {
	f := allFlags()
	f.SweepQuality = false

	q := EvaluateQuality(f, 1.0, 0.35, 1.5, models.TierB)
	if q.Score != 120 {
		t.Errorf("score = %d, want 120", q.Score)
	}
	if q.Tier != models.TierAPlus {
		t.Errorf("tier = %s, want A+", q.Tier)
	}
	if q.ShouldSend {
		t.Error("failed hard filter must not send")
	}
	if len(q.Reasons) != 1 || q.Reasons[0] != models.RejectSweepQuality {
		t.Errorf("reasons = %v, want [%s]", q.Reasons, models.RejectSweepQuality)
	}
}

func TestEvaluateQualityAccept(t *testing.T) {
	q := EvaluateQuality(allFlags(), 1.0, 0.35, 1.5, models.TierB)
	if !q.ShouldSend {
		t.Errorf("expected send, reasons = %v", q.Reasons)
	}
	if q.Tier != models.TierAPlus {
		t.Errorf("tier = %s, want A+", q.Tier)
	}
	if len(q.Reasons) != 0 {
		t.Errorf("reasons = %v, want empty", q.Reasons)
	}
}

func TestEvaluateQualityMinTier(t *testing.T) {
	// убираем веса ликвидности и свипа, жёсткие фильтры целы:
	// 130 - 10 - 20 = 100, tier A
	f := allFlags()
	f.HasLiquidity = false
	f.HasSweep = false

	q := EvaluateQuality(f, 1.0, 0.35, 1.5, models.TierAPlus)
	if q.Tier != models.TierA {
		t.Fatalf("tier = %s, want A", q.Tier)
	}
	if q.ShouldSend {
		t.Error("tier A must not pass min tier A+")
	}

	q = EvaluateQuality(f, 1.0, 0.35, 1.5, models.TierA)
	if !q.ShouldSend {
		t.Errorf("tier A must pass min tier A, reasons = %v", q.Reasons)
	}
}

func TestEvaluateQualitySLBandReject(t *testing.T) {
	q := EvaluateQuality(allFlags(), 1.6, 0.35, 1.5, models.TierB)
	if q.ShouldSend {
		t.Error("SL% above band must not send")
	}
	if len(q.Reasons) != 1 || q.Reasons[0] != models.RejectSLPct {
		t.Errorf("reasons = %v, want [%s]", q.Reasons, models.RejectSLPct)
	}

	// границы включительно
	if q := EvaluateQuality(allFlags(), 1.5, 0.35, 1.5, models.TierB); !q.ShouldSend {
		t.Errorf("slPct exactly at the upper bound must pass, reasons = %v", q.Reasons)
	}
	if q := EvaluateQuality(allFlags(), 0.35, 0.35, 1.5, models.TierB); !q.ShouldSend {
		t.Errorf("slPct exactly at the lower bound must pass, reasons = %v", q.Reasons)
	}
}
