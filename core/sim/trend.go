package sim

import (
	"math/rand"
	"time"
)

const (
	trendMinInterval = 10 * time.Minute
	trendMaxInterval = 30 * time.Minute
	trendTargetMin   = 0.92
	trendTargetMax   = 1.08
	trendSmoothing   = 0.3
)

// TrendState models slow demand drift for one project. Every 10-30 minutes
// a new target in [0.92, 1.08] is drawn and the stored trend moves 30% of
// the way toward it, so the trend wanders over tens of minutes without
// per-step jumps.
type TrendState struct {
	trend      float64
	nextChange time.Time

	rng *rand.Rand
}

// NewTrendState creates a consumption-trend cache drawing from rng.
func NewTrendState(rng *rand.Rand) *TrendState {
	return &TrendState{trend: 1.0, rng: rng}
}

// Factor returns the current trend multiplier, re-targeting when due.
func (t *TrendState) Factor(now time.Time) float64 {
	if !now.Before(t.nextChange) {
		interval := trendMinInterval +
			time.Duration(t.rng.Int63n(int64(trendMaxInterval-trendMinInterval)+1))
		t.nextChange = now.Add(interval)

		target := uniform(t.rng, trendTargetMin, trendTargetMax)
		t.trend = t.trend*(1-trendSmoothing) + target*trendSmoothing
	}
	return t.trend
}
