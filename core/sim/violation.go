package sim

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/gridpulse/dersim/core/model"
)

const (
	meterSmoothing    = 0.15
	violationLowBand  = 0.7 // VIOLATING reduction band, fraction of threshold
	violationHighBand = 0.9
	compliantLowBand  = 1.1 // COMPLIANT reduction band
	compliantHighBand = 1.3
)

// Oscillator drives the alternate generation strategy: instead of composing
// readings bottom-up it works backward from a target compliance outcome,
// flipping between COMPLIANT and VIOLATING on a fixed interval. The mode is
// shared by all workers, so all access goes through a mutex.
type Oscillator struct {
	mu         sync.Mutex
	interval   time.Duration
	violating  bool
	lastSwitch time.Time
	smoothed   map[string]float64 // per project, keeps traces continuous
}

// NewOscillator creates an oscillator flipping mode every interval.
func NewOscillator(interval time.Duration) *Oscillator {
	return &Oscillator{
		interval: interval,
		smoothed: make(map[string]float64),
	}
}

// Plan holds the back-solved values for one generation pass.
type Plan struct {
	Violating       bool
	TargetReduction float64            // kW the site pretends to shed
	PowerMeter      float64            // smoothed site meter reading, kW
	Outputs         map[string]float64 // per-DER output, kW
}

// Next flips the mode if the switch interval elapsed and back-solves the
// meter and per-DER outputs that produce the target compliance outcome for c.
// rng belongs to c's worker; drawing from it under the shared lock is safe
// because each worker passes its own source.
func (o *Oscillator) Next(now time.Time, c model.Controller, rng *rand.Rand) (Plan, error) {
	totalCap := c.TotalCapacity()
	if totalCap <= 0 {
		return Plan{}, fmt.Errorf("project %s: zero total DER capacity", c.ProjectID)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.lastSwitch.IsZero() {
		o.lastSwitch = now
	} else if now.Sub(o.lastSwitch) >= o.interval {
		o.violating = !o.violating
		o.lastSwitch = now
	}

	var reduction float64
	if o.violating {
		reduction = c.ContractThreshold * uniform(rng, violationLowBand, violationHighBand)
	} else {
		reduction = c.ContractThreshold * uniform(rng, compliantLowBand, compliantHighBand)
	}

	// Smooth 15% of the distance toward a fresh target each call so the
	// meter trace looks continuous rather than stepping with the mode.
	target := c.Baseline * uniform(rng, 0.80, 1.0)
	meter, ok := o.smoothed[c.ProjectID]
	if !ok {
		meter = target
	} else {
		meter += meterSmoothing * (target - meter)
	}
	o.smoothed[c.ProjectID] = meter
	meter = round2(meter)

	// reduction = baseline - (meter - totalOutput), solved for totalOutput.
	totalOutput := reduction + meter - c.Baseline
	if totalOutput < 0 {
		totalOutput = 0
	}

	outputs := make(map[string]float64, len(c.DERs))
	for _, d := range c.DERs {
		share := totalOutput * d.NameplateCapacity / totalCap
		share *= uniform(rng, 0.95, 1.05)
		if share < 0 {
			share = 0
		}
		if limit := d.NameplateCapacity * batteryOutputCap; share > limit {
			share = limit
		}
		outputs[d.ID] = round2(share)
	}

	return Plan{
		Violating:       o.violating,
		TargetReduction: round2(reduction),
		PowerMeter:      meter,
		Outputs:         outputs,
	}, nil
}

// Violating reports the current mode.
func (o *Oscillator) Violating() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.violating
}
