package service

import (
	"testing"

	"smc_bot/internal/models"
)

func TestDetectDisplacementLongWithBOS(t *testing.T) {
	w := flatWindow(20)
	setOHLC(&w[10], 100.45, 100.60, 99.30, 100.52) // свип
	setOHLC(&w[11], 100.50, 101.35, 100.45, 101.30)

	disp, ok := DetectDisplacement(w, 10, models.SideLong, 2, 1.6)
	if !ok {
		t.Fatal("expected displacement")
	}
	if disp.Index != 11 {
		t.Errorf("index = %d, want 11", disp.Index)
	}
	// close 101.30 выше pre-sweep high 100.8
	if !disp.BOSConfirmed {
		t.Error("BOS must be confirmed")
	}
}

func TestDetectDisplacementNoBOS(t *testing.T) {
	w := flatWindow(20)
	setOHLC(&w[8], 100.3, 101.50, 100.1, 100.5) // задираем структуру
	setOHLC(&w[10], 100.45, 100.60, 99.30, 100.52)
	setOHLC(&w[11], 100.50, 101.35, 100.45, 101.30)

	disp, ok := DetectDisplacement(w, 10, models.SideLong, 2, 1.6)
	if !ok {
		t.Fatal("expected displacement")
	}
	if disp.BOSConfirmed {
		t.Error("close 101.30 does not break pre-high 101.50")
	}
}

func TestDetectDisplacementPicksLargestBody(t *testing.T) {
	w := flatWindow(20)
	setOHLC(&w[10], 100.45, 100.60, 99.30, 100.52)
	setOHLC(&w[11], 100.50, 101.10, 100.45, 101.05) // body 0.55
	setOHLC(&w[12], 100.55, 101.60, 100.50, 101.50) // body 0.95

	disp, ok := DetectDisplacement(w, 10, models.SideLong, 2, 1.6)
	if !ok {
		t.Fatal("expected displacement")
	}
	if disp.Index != 12 {
		t.Errorf("index = %d, want 12 (largest qualifying body)", disp.Index)
	}
}

func TestDetectDisplacementDirectionMustMatch(t *testing.T) {
	w := flatWindow(20)
	setOHLC(&w[10], 100.55, 101.70, 100.40, 100.48) // шорт-свип
	setOHLC(&w[11], 100.50, 101.35, 100.45, 101.30) // бычья — не подходит под шорт

	if _, ok := DetectDisplacement(w, 10, models.SideShort, 2, 1.6); ok {
		t.Error("bullish candle must not qualify as short displacement")
	}
}

func TestDetectDisplacementShort(t *testing.T) {
	w := flatWindow(20)
	setOHLC(&w[10], 100.55, 101.70, 100.40, 100.48)
	setOHLC(&w[11], 100.45, 100.50, 99.55, 99.60) // body 0.85, range 0.95

	disp, ok := DetectDisplacement(w, 10, models.SideShort, 2, 1.6)
	if !ok {
		t.Fatal("expected short displacement")
	}
	// close 99.60 ниже pre-sweep low 100.1
	if !disp.BOSConfirmed {
		t.Error("BOS must be confirmed for short")
	}
}

func TestDetectDisplacementRejectsWeakBodies(t *testing.T) {
	w := flatWindow(20)
	setOHLC(&w[10], 100.45, 100.60, 99.30, 100.52)
	// bodies после свипа остаются базовыми (0.2 < 1.6*0.2)

	if _, ok := DetectDisplacement(w, 10, models.SideLong, 2, 1.6); ok {
		t.Error("no impulsive candle, displacement must be absent")
	}
}

func TestDetectDisplacementEdgeGuards(t *testing.T) {
	w := flatWindow(20)
	if _, ok := DetectDisplacement(w, 1, models.SideLong, 2, 1.6); ok {
		t.Error("sweep too close to window head")
	}
	if _, ok := DetectDisplacement(w, 19, models.SideLong, 2, 1.6); ok {
		t.Error("sweep at the tail has no room for displacement")
	}
}
