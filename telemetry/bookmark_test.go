package telemetry

import "testing"

func hasBookmark(bookmarks []Bookmark, typ BookmarkType) bool {
	for _, bm := range bookmarks {
		if bm.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_EnergyDriftFiresOncePerCrossing(t *testing.T) {
	bd := NewBookmarkDetector(10, BookmarkThresholds{EnergyDrift: 0.01, MomentumDrift: 1})

	if bms := bd.Check(WindowStats{WindowEndTick: 60, EnergyDrift: 0.001}); hasBookmark(bms, BookmarkEnergyDrift) {
		t.Error("unexpected energy_drift bookmark below threshold")
	}
	if bms := bd.Check(WindowStats{WindowEndTick: 120, EnergyDrift: 0.02}); !hasBookmark(bms, BookmarkEnergyDrift) {
		t.Error("expected energy_drift bookmark on crossing")
	}
	if bms := bd.Check(WindowStats{WindowEndTick: 180, EnergyDrift: 0.03}); hasBookmark(bms, BookmarkEnergyDrift) {
		t.Error("expected no repeat while still above threshold")
	}
	bd.Check(WindowStats{WindowEndTick: 240, EnergyDrift: 0.005})
	if bms := bd.Check(WindowStats{WindowEndTick: 300, EnergyDrift: 0.02}); !hasBookmark(bms, BookmarkEnergyDrift) {
		t.Error("expected energy_drift bookmark after re-crossing")
	}
}

func TestBookmarkDetector_MomentumDrift(t *testing.T) {
	bd := NewBookmarkDetector(10, DefaultBookmarkThresholds())

	bms := bd.Check(WindowStats{WindowEndTick: 60, MomentumDrift: 1e-3})
	if !hasBookmark(bms, BookmarkMomentumDrift) {
		t.Error("expected momentum_drift bookmark")
	}
	if bms[0].Tick != 60 {
		t.Errorf("expected bookmark at tick 60, got %d", bms[0].Tick)
	}
}

func TestBookmarkDetector_DriftSpike(t *testing.T) {
	bd := NewBookmarkDetector(10, DefaultBookmarkThresholds())

	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{WindowEndTick: int64(i * 60), EnergyMean: -100, EnergyStd: 0.01})
	}

	bms := bd.Check(WindowStats{WindowEndTick: 300, EnergyMean: -100, EnergyStd: 0.5})
	if !hasBookmark(bms, BookmarkDriftSpike) {
		t.Error("expected drift_spike bookmark")
	}
}

func TestBookmarkDetector_Settled(t *testing.T) {
	bd := NewBookmarkDetector(10, DefaultBookmarkThresholds())

	var fired int
	for i := 0; i < 10; i++ {
		bms := bd.Check(WindowStats{WindowEndTick: int64(i * 60), EnergyMean: -100})
		if hasBookmark(bms, BookmarkSettled) {
			fired++
		}
	}
	if fired != 1 {
		t.Errorf("expected settled to fire exactly once, got %d", fired)
	}
}

func TestBookmarkDetector_SettledOncePerRun(t *testing.T) {
	bd := NewBookmarkDetector(10, DefaultBookmarkThresholds())

	// Two steady plateaus separated by a jump
	var firedAt []int
	for i := 0; i < 10; i++ {
		mean := -100.0
		if i >= 5 {
			mean = -50
		}
		bms := bd.Check(WindowStats{WindowEndTick: int64(i * 60), EnergyMean: mean})
		if hasBookmark(bms, BookmarkSettled) {
			firedAt = append(firedAt, i)
		}
	}
	if len(firedAt) != 1 || firedAt[0] != 4 {
		t.Errorf("expected settled once at window 4, fired at %v", firedAt)
	}
}

func TestBookmarkDetector_SmallHistoryClamped(t *testing.T) {
	bd := NewBookmarkDetector(1, DefaultBookmarkThresholds())
	if bd.historySize != 4 {
		t.Errorf("expected history size clamped to 4, got %d", bd.historySize)
	}
}
