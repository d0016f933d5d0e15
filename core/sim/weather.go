package sim

import (
	"math/rand"
	randv2 "math/rand/v2"
	"time"

	"gonum.org/v1/gonum/stat/distuv"
)

const (
	weatherMinRefresh  = 300 * time.Second
	weatherMaxRefresh  = 900 * time.Second
	weatherTransition  = 180 * time.Second
	weatherPatternMin  = 0.6
	weatherPatternMax  = 1.5
	weatherJitterFloor = 0.98
	weatherJitterSpan  = 0.04
)

// WeatherState models slowly drifting cloud cover for one project. A fresh
// target pattern is drawn at random 5-15 minute intervals from N(1.0, 0.2)
// clamped to [0.6, 1.5], and the stored pattern blends toward it over a
// 3 minute transition window. Owned by a single worker; not safe for
// concurrent use.
type WeatherState struct {
	lastUpdate  time.Time
	pattern     float64
	nextRefresh time.Duration

	dist distuv.Normal
	rng  *rand.Rand
}

// NewWeatherState creates a weather cache drawing from the given rng.
func NewWeatherState(rng *rand.Rand) *WeatherState {
	return &WeatherState{
		pattern: 1.0,
		dist: distuv.Normal{
			Mu:    1.0,
			Sigma: 0.2,
			Src:   randv2.NewPCG(rng.Uint64(), rng.Uint64()),
		},
		rng: rng,
	}
}

// Factor returns the current weather multiplier. Refreshes the stored
// pattern when the randomized interval has elapsed; every call layers an
// unpersisted jitter in [0.98, 1.02] on top.
func (w *WeatherState) Factor(now time.Time) float64 {
	if w.lastUpdate.IsZero() || now.Sub(w.lastUpdate) >= w.nextRefresh {
		target := w.dist.Rand()
		if target < weatherPatternMin {
			target = weatherPatternMin
		}
		if target > weatherPatternMax {
			target = weatherPatternMax
		}

		if w.lastUpdate.IsZero() {
			w.pattern = target
		} else {
			// Blend toward the new target proportionally to elapsed time,
			// capped at the transition window, so cloud cover never snaps.
			ratio := now.Sub(w.lastUpdate).Seconds() / weatherTransition.Seconds()
			if ratio > 1 {
				ratio = 1
			}
			w.pattern = w.pattern*(1-ratio) + target*ratio
		}
		w.lastUpdate = now
		w.nextRefresh = weatherMinRefresh +
			time.Duration(w.rng.Int63n(int64(weatherMaxRefresh-weatherMinRefresh)))
	}

	jitter := weatherJitterFloor + w.rng.Float64()*weatherJitterSpan
	return w.pattern * jitter
}

// Pattern exposes the stored pattern without jitter.
func (w *WeatherState) Pattern() float64 { return w.pattern }
