package telemetry

import (
	"fmt"
	"log/slog"
	"math"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkEnergyDrift   BookmarkType = "energy_drift"
	BookmarkDriftSpike    BookmarkType = "drift_spike"
	BookmarkMomentumDrift BookmarkType = "momentum_drift"
	BookmarkSettled       BookmarkType = "settled"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `json:"type"`
	Tick        int64        `json:"tick"`
	Description string       `json:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkThresholds configures when drift bookmarks fire.
type BookmarkThresholds struct {
	EnergyDrift   float64 // relative energy drift since the run started
	MomentumDrift float64 // absolute momentum drift since the run started
}

// DefaultBookmarkThresholds returns thresholds suited to the default scenario.
func DefaultBookmarkThresholds() BookmarkThresholds {
	return BookmarkThresholds{EnergyDrift: 0.05, MomentumDrift: 1e-6}
}

// BookmarkDetector watches window stats for integration trouble.
// Threshold bookmarks fire once per crossing.
type BookmarkDetector struct {
	thresholds BookmarkThresholds

	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	energyTripped   bool
	momentumTripped bool
	settledWindows  int
	settledFired    bool
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int, thresholds BookmarkThresholds) *BookmarkDetector {
	if historySize < 4 {
		historySize = 4
	}
	return &BookmarkDetector{
		thresholds:  thresholds,
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if b := bd.checkEnergyDrift(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkMomentumDrift(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkDriftSpike(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkSettled(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

func (bd *BookmarkDetector) checkEnergyDrift(stats WindowStats) *Bookmark {
	over := stats.EnergyDrift > bd.thresholds.EnergyDrift
	defer func() { bd.energyTripped = over }()
	if !over || bd.energyTripped {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkEnergyDrift,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Energy drift %.4f exceeds %.4f", stats.EnergyDrift, bd.thresholds.EnergyDrift),
	}
}

func (bd *BookmarkDetector) checkMomentumDrift(stats WindowStats) *Bookmark {
	over := stats.MomentumDrift > bd.thresholds.MomentumDrift
	defer func() { bd.momentumTripped = over }()
	if !over || bd.momentumTripped {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkMomentumDrift,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Momentum drift %.3g exceeds %.3g", stats.MomentumDrift, bd.thresholds.MomentumDrift),
	}
}

// checkDriftSpike fires when the in-window energy spread is well above the
// rolling average, which usually means a close encounter.
func (bd *BookmarkDetector) checkDriftSpike(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total float64
	for _, h := range history {
		total += h.EnergyStd
	}
	avg := total / float64(len(history))
	if avg == 0 {
		return nil
	}

	if stats.EnergyStd > avg*4 {
		return &Bookmark{
			Type:        BookmarkDriftSpike,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Energy spread %.3g is %.1fx average (%.3g)", stats.EnergyStd, stats.EnergyStd/avg, avg),
		}
	}
	return nil
}

// checkSettled fires once after four consecutive windows with a near-constant mean energy.
func (bd *BookmarkDetector) checkSettled(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if bd.settledFired || len(history) == 0 {
		return nil
	}

	prev := history[(bd.historyIdx+bd.historySize-1)%bd.historySize]
	scale := math.Max(math.Abs(prev.EnergyMean), 1e-12)
	if math.Abs(stats.EnergyMean-prev.EnergyMean)/scale < 1e-4 {
		bd.settledWindows++
	} else {
		bd.settledWindows = 0
	}

	if bd.settledWindows == 4 {
		bd.settledFired = true
		return &Bookmark{
			Type:        BookmarkSettled,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Mean energy steady at %.4g over 4 windows", stats.EnergyMean),
		}
	}
	return nil
}
