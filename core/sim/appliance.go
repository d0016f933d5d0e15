package sim

import (
	"math/rand"
	"time"
)

const (
	applianceCheckEvery  = 30 * time.Second
	applianceStartChance = 0.15
	applianceMinDuration = 60  // seconds
	applianceMaxDuration = 300 // seconds
)

// ApplianceState models transient load spikes (dryer, oven, an EV plugging
// in) for one project. Checks are rate limited to one per 30 seconds;
// between checks the active magnitude is returned without mutation.
type ApplianceState struct {
	active    bool
	endTime   time.Time
	magnitude float64
	lastCheck time.Time

	rng *rand.Rand
}

// NewApplianceState creates an appliance-event cache drawing from rng.
func NewApplianceState(rng *rand.Rand) *ApplianceState {
	return &ApplianceState{magnitude: 1.0, rng: rng}
}

// Factor returns the load multiplier contributed by appliance events.
func (a *ApplianceState) Factor(now time.Time) float64 {
	if !a.lastCheck.IsZero() && now.Sub(a.lastCheck) < applianceCheckEvery {
		if a.active && a.endTime.After(now) {
			return a.magnitude
		}
		return 1.0
	}
	a.lastCheck = now

	if a.active && a.endTime.Before(now) {
		a.active = false
	}

	if !a.active && a.rng.Float64() < applianceStartChance {
		duration := applianceMinDuration +
			a.rng.Intn(applianceMaxDuration-applianceMinDuration+1)
		a.active = true
		a.endTime = now.Add(time.Duration(duration) * time.Second)
		a.magnitude = a.drawMagnitude()
	}

	if a.active {
		return a.magnitude
	}
	return 1.0
}

// drawMagnitude samples the three-tier event size distribution: mostly small
// appliances, occasionally a major one, rarely an EV-class spike.
func (a *ApplianceState) drawMagnitude() float64 {
	r := a.rng.Float64()
	switch {
	case r < 0.7:
		return uniform(a.rng, 1.1, 1.3)
	case r < 0.95:
		return uniform(a.rng, 1.4, 1.8)
	default:
		return uniform(a.rng, 1.8, 2.5)
	}
}

// Active reports whether an event is currently running.
func (a *ApplianceState) Active() bool { return a.active }

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}
