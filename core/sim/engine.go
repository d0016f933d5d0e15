package sim

import (
	"math/rand"
	"time"

	"github.com/gridpulse/dersim/core/model"
)

// Options selects the generation strategy for an engine.
type Options struct {
	// ViolationEnabled applies the static violation transform: DER output is
	// divided by Multiplier inside the meter calculation.
	ViolationEnabled bool
	Multiplier       float64
	// Oscillator, when set, replaces the forward composition entirely with
	// the timed COMPLIANT/VIOLATING back-solving strategy.
	Oscillator *Oscillator
}

// Engine generates telemetry for a single controller. It owns the
// controller's slow-state caches, reading history and random source, and is
// driven by exactly one worker; it is not safe for concurrent use.
type Engine struct {
	controller model.Controller
	weather    *WeatherState
	appliance  *ApplianceState
	trend      *TrendState
	history    *History
	rng        *rand.Rand
	opts       Options

	connectionStart string
}

// NewEngine creates an engine for c seeded with seed. Caches are created
// eagerly and live for the life of the engine.
func NewEngine(c model.Controller, seed int64, opts Options) *Engine {
	rng := rand.New(rand.NewSource(seed))
	return &Engine{
		controller:      c,
		weather:         NewWeatherState(rng),
		appliance:       NewApplianceState(rng),
		trend:           NewTrendState(rng),
		history:         NewHistory(),
		rng:             rng,
		opts:            opts,
		connectionStart: model.FormatTimestamp(time.Now()),
	}
}

// Controller returns the immutable controller definition.
func (e *Engine) Controller() model.Controller { return e.controller }

// History exposes the rolling reading window.
func (e *Engine) History() *History { return e.history }

// Generate produces one pass of readings for every DER of the controller at
// the given instant, records the pass's net consumption in the history, and
// returns both. Time is read once and threaded through all derived factors.
func (e *Engine) Generate(now time.Time) ([]model.DERReading, float64, error) {
	if e.opts.Oscillator != nil {
		return e.generateBackward(now)
	}
	return e.generateForward(now)
}

// generateForward is the bottom-up composition: factors, caches, per-DER
// output, then the meter.
func (e *Engine) generateForward(now time.Time) ([]model.DERReading, float64, error) {
	c := e.controller
	factors := FactorsAt(now, c.Location)

	weather := e.weather.Factor(now)
	trend := e.trend.Factor(now)
	appliance := e.appliance.Factor(now)
	noise := MeterNoise(now.Second(), now.Minute())

	readings := make([]model.DERReading, 0, len(c.DERs))
	var net float64
	for _, d := range c.DERs {
		var soc, output float64
		switch d.Type {
		case model.DERSolar:
			output = SolarOutput(d.NameplateCapacity, factors, weather, now)
		case model.DERBattery:
			soc = BatterySOC(d.ID, now)
			output = BatteryOutput(d.NameplateCapacity, soc, factors, now)
		case model.DEREV:
			output = EVOutput(d.NameplateCapacity, factors, now)
		}

		meter := PowerMeter(c.Baseline, output, factors.Usage, trend, appliance,
			noise, e.opts.Multiplier, e.opts.ViolationEnabled)

		r := e.reading(d, now, output, meter, soc)
		readings = append(readings, r)
		// Accumulated from the rounded wire values so the recorded net
		// matches what a consumer recomputes from the published records.
		net += r.PowerMeter - r.CurrentOutput
	}

	net = round2(net)
	e.history.Push(now, net)
	return readings, net, nil
}

// generateBackward derives readings from the oscillator's target compliance
// outcome instead of composing them bottom-up.
func (e *Engine) generateBackward(now time.Time) ([]model.DERReading, float64, error) {
	c := e.controller
	plan, err := e.opts.Oscillator.Next(now, c, e.rng)
	if err != nil {
		return nil, 0, err
	}

	// The site meter is split across the records by capacity share, the
	// last record absorbing the rounding remainder, so that summing
	// (power_meter_measurement - current_output) over the published records
	// reproduces the site-level consumption the plan targeted.
	totalCap := c.TotalCapacity()
	readings := make([]model.DERReading, 0, len(c.DERs))
	var net float64
	remaining := plan.PowerMeter
	for i, d := range c.DERs {
		var soc float64
		if d.Type == model.DERBattery {
			soc = BatterySOC(d.ID, now)
		}
		meter := round2(plan.PowerMeter * d.NameplateCapacity / totalCap)
		if i == len(c.DERs)-1 {
			meter = round2(remaining)
		}
		remaining -= meter

		r := e.reading(d, now, plan.Outputs[d.ID], meter, soc)
		readings = append(readings, r)
		net += r.PowerMeter - r.CurrentOutput
	}

	net = round2(net)
	e.history.Push(now, net)
	return readings, net, nil
}

func (e *Engine) reading(d model.DER, now time.Time, output, meter, soc float64) model.DERReading {
	c := e.controller
	return model.DERReading{
		DERID:             d.ID,
		IsOnline:          true,
		Timestamp:         model.FormatTimestamp(now),
		CurrentOutput:     round2(output),
		PowerMeter:        round2(meter),
		Baseline:          c.Baseline,
		ContractThreshold: c.ContractThreshold,
		Units:             "kW",
		ProjectID:         c.ProjectID,
		IsStandalone:      false,
		ConnectionStartAt: e.connectionStart,
		CurrentSOC:        int(soc + 0.5),
		Type:              d.Type,
		NameplateCapacity: d.NameplateCapacity,
	}
}
