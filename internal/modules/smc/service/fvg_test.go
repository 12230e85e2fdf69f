package service

import (
	"testing"

	"smc_bot/internal/models"
)

func defaultFVGParams() FVGParams {
	return FVGParams{
		Radius:      2,
		MinWidthPct: 0.0008,
		MaxWidthPct: 0.008,
		MaxDistPct:  0.006,
	}
}

func TestDetectFVGBullish(t *testing.T) {
	w := acceptedLongWindow()

	fvg, ok := DetectFVG(w, 37, defaultFVGParams())
	if !ok {
		t.Fatal("expected FVG")
	}
	if fvg.Direction != models.FVGBullish {
		t.Fatalf("direction = %s, want bullish", fvg.Direction)
	}
	// гэп между high[36] и low[38]
	if fvg.Low != 100.60 || fvg.High != 101.25 {
		t.Errorf("gap = [%v, %v], want [100.60, 101.25]", fvg.Low, fvg.High)
	}
	if fvg.High <= fvg.Low {
		t.Error("invariant high > low violated")
	}
	if !fvg.QualityOK {
		t.Error("gap width and distance are in bounds, quality must pass")
	}
}

func TestDetectFVGBearish(t *testing.T) {
	w := flatWindow(20)
	setOHLC(&w[15], 100.50, 100.80, 100.20, 100.30)
	setOHLC(&w[16], 100.20, 100.25, 99.70, 99.75)
	setOHLC(&w[17], 99.70, 99.78, 99.40, 99.45)
	setOHLC(&w[18], 99.45, 99.75, 99.30, 99.50)
	setOHLC(&w[19], 99.50, 99.80, 99.40, 99.75)

	fvg, ok := DetectFVG(w, 16, defaultFVGParams())
	if !ok {
		t.Fatal("expected bearish FVG")
	}
	if fvg.Direction != models.FVGBearish {
		t.Fatalf("direction = %s, want bearish", fvg.Direction)
	}
	// high[17] < low[15]: гэп [99.78, 100.20]
	if fvg.Low != 99.78 || fvg.High != 100.20 {
		t.Errorf("gap = [%v, %v], want [99.78, 100.20]", fvg.Low, fvg.High)
	}
}

func TestDetectFVGQualityBounds(t *testing.T) {
	// слишком широкий гэп: ~1.9% от цены
	w := flatWindow(20)
	setOHLC(&w[16], 100.3, 100.5, 100.1, 100.4)
	setOHLC(&w[17], 100.5, 102.0, 100.4, 101.9)
	// единственный гэп [100.5, 102.4]
	setOHLC(&w[18], 102.5, 102.9, 102.4, 102.7)
	setOHLC(&w[19], 102.6, 102.8, 101.9, 102.55)

	fvg, ok := DetectFVG(w, 17, defaultFVGParams())
	if !ok {
		t.Fatal("expected FVG")
	}
	if fvg.QualityOK {
		t.Error("2% wide gap must fail the width bound")
	}
}

func TestDetectFVGNone(t *testing.T) {
	if _, ok := DetectFVG(flatWindow(20), 10, defaultFVGParams()); ok {
		t.Error("flat window has no gaps")
	}
	if _, ok := DetectFVG(flatWindow(2), 0, defaultFVGParams()); ok {
		t.Error("need at least 3 candles")
	}
	if _, ok := DetectFVG(flatWindow(20), -1, defaultFVGParams()); ok {
		t.Error("negative center index")
	}
}

// бычий выигрывает, если медвежий не строго ближе к цене
func TestDetectFVGDirectionTieBreak(t *testing.T) {
	w := flatWindow(20)
	// бычий гэп: low[15] > high[13]
	setOHLC(&w[13], 100.3, 100.6, 100.1, 100.5)
	setOHLC(&w[14], 100.6, 101.2, 100.5, 101.1)
	setOHLC(&w[15], 101.3, 101.6, 100.9, 101.4)
	// медвежий гэп: high[17] < low[15]
	setOHLC(&w[16], 101.3, 101.5, 100.6, 100.7)
	setOHLC(&w[17], 100.6, 100.75, 100.3, 100.4)
	setOHLC(&w[18], 100.4, 100.8, 100.2, 100.6)
	setOHLC(&w[19], 100.6, 100.9, 100.4, 100.82)

	fvg, ok := DetectFVG(w, 15, defaultFVGParams())
	if !ok {
		t.Fatal("expected FVG")
	}
	// bull mid = (100.6+100.9)/2 = 100.75; bear mid = (100.75+100.9)/2 = 100.825
	// |100.82-100.825| < |100.82-100.75| — медвежий строго ближе
	if fvg.Direction != models.FVGBearish {
		t.Errorf("direction = %s, want bearish (strictly closer mid)", fvg.Direction)
	}
}
