package sim

import (
	"math"
	"strconv"
	"time"
)

const (
	batteryMinSOC    = 10.0 // deep-discharge protection floor, percent
	batteryMaxSOC    = 95.0
	batteryOutputCap = 0.8 // fraction of nameplate capacity
)

// SolarOutput computes instantaneous solar production in kW for a panel of
// the given nameplate capacity. Zero at night; otherwise capacity scaled by
// the solar availability factor, the weather pattern and a small
// second-granularity noise term.
func SolarOutput(capacity float64, f TemporalFactors, weather float64, now time.Time) float64 {
	if f.Solar <= 0 {
		return 0
	}
	noise := 0.97 + float64(now.Second()%6)/100
	out := capacity * f.Solar * weather * noise
	if out < 0 {
		out = 0
	}
	return round2(out)
}

// BatteryOutput computes instantaneous battery discharge in kW. Batteries
// below the deep-discharge floor produce nothing; above it the discharge
// rate rises with SOC and is capped at 80% of nameplate capacity.
func BatteryOutput(capacity, soc float64, f TemporalFactors, now time.Time) float64 {
	if soc < batteryMinSOC {
		return 0
	}
	socScale := 0.5 + soc/200 // 0.55 at SOC 10 up to 0.95 at SOC 100
	noise := 0.95 + float64(now.Minute()%10)/100
	out := capacity * f.Battery * socScale * noise
	if limit := capacity * batteryOutputCap; out > limit {
		out = limit
	}
	return round2(out)
}

// EVOutput computes instantaneous EV discharge in kW. Connectivity is a
// deterministic function of minute-of-day and calendar day, so the decision
// holds steady within a short polling window instead of flickering. EVs here
// are a discharge source only; the value is never negative.
func EVOutput(capacity float64, f TemporalFactors, now time.Time) float64 {
	minuteOfDay := int(f.TimeOfDay * 60)
	v := stableVariate(minuteOfDay + now.Day()*1440)
	if v >= f.EV {
		return 0
	}

	hour := now.Hour()
	var share float64
	if (hour >= 7 && hour <= 9) || (hour >= 17 && hour <= 20) {
		share = 0.15 + v*0.1 // 15-25% of capacity during peak bands
	} else {
		share = 0.05 + v*0.05 // 5-10% off peak
	}
	return round2(capacity * share)
}

// BatterySOC regenerates the state of charge for a battery DER at the given
// instant. The curve follows a daily cycle (charging overnight and from
// midday solar, discharging through both demand peaks) with a stable
// per-battery daily offset and a continuous minute-level wobble, clamped to
// [10, 95]. SOC is recomputed each pass; no energy accounting is modeled.
func BatterySOC(derID string, now time.Time) float64 {
	hour := now.Hour()
	var base float64
	switch {
	case hour < 6:
		base = 65 + float64(hour)*3 // slow overnight charge
	case hour < 9:
		base = 80 - float64(hour-6)*6 // morning peak discharge
	case hour < 15:
		base = 62 + float64(hour-9)*3 // midday charge from solar
	case hour < 21:
		base = 80 - float64(hour-15)*5 // evening peak discharge
	default:
		base = 50 + float64(hour-21)*3
	}

	daySeed := now.Day() + int(now.Month())*31
	offset := float64((derSeed(derID)+daySeed)%10) - 5
	wobble := float64(now.Minute())/60*6 - 3

	soc := base + offset + wobble
	if soc < batteryMinSOC {
		soc = batteryMinSOC
	}
	if soc > batteryMaxSOC {
		soc = batteryMaxSOC
	}
	return soc
}

// derSeed maps a DER id to a stable small integer. Numeric ids use their
// value; anything else falls back to a byte sum.
func derSeed(id string) int {
	if n, err := strconv.Atoi(id); err == nil {
		return n
	}
	var sum int
	for _, b := range []byte(id) {
		sum += int(b)
	}
	return sum
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
