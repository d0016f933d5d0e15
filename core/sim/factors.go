// Package sim implements the layered simulation engine that turns wall-clock
// time and slow-changing per-project state into believable power-meter and
// DER output values.
package sim

import "time"

// TemporalFactors are the dimensionless activity factors for one instant.
// They are derived purely from time and location; same inputs always yield
// the same factors.
type TemporalFactors struct {
	Usage     float64 // overall electricity usage factor
	Solar     float64 // solar generation potential, daily weather included
	EV        float64 // EV connection likelihood
	Battery   float64 // battery discharge propensity
	TimeOfDay float64 // decimal hour of day
	IsWeekend bool
}

// Hourly load curve for a March residential profile: overnight trough,
// morning peak around 07-08, evening peak around 18-19.
var baseUsageFactors = [24]float64{
	0.65, 0.55, 0.50, 0.45, 0.50, 0.70,
	0.85, 1.10, 1.20, 1.05, 0.85, 0.80,
	0.75, 0.70, 0.65, 0.70, 0.85, 1.05,
	1.20, 1.15, 1.00, 0.90, 0.80, 0.70,
}

// Weekend usage overrides: later, smaller morning peak and higher sustained
// midday usage.
var weekendUsageOverrides = map[int]float64{
	6: 0.70, 7: 0.80, 8: 0.90, 9: 1.00, 10: 1.05,
	11: 0.95, 12: 0.90, 13: 0.85, 14: 0.80, 15: 0.85, 16: 0.95,
}

// Solar availability for ~46°N in March: nothing outside 06-18, peak at noon.
var baseSolarFactors = [24]float64{
	0, 0, 0, 0, 0, 0,
	0.02, 0.15, 0.30, 0.45, 0.60, 0.70,
	0.75, 0.75, 0.65, 0.50, 0.35, 0.15,
	0.02, 0, 0, 0, 0, 0,
}

// EV connection likelihood by hour: high overnight, low during commute hours.
var evConnectionFactors = [24]float64{
	0.85, 0.90, 0.90, 0.90, 0.80, 0.70,
	0.50, 0.30, 0.20, 0.30, 0.35, 0.35,
	0.30, 0.30, 0.35, 0.35, 0.30, 0.25,
	0.30, 0.45, 0.60, 0.75, 0.80, 0.85,
}

// More home charging during the day on weekends.
var weekendEVOverrides = map[int]float64{
	9: 0.40, 10: 0.45, 11: 0.45, 12: 0.40, 13: 0.40, 14: 0.45,
	15: 0.45, 16: 0.40,
}

// Battery discharge propensity: peaks with the morning and evening load peaks,
// low while solar is producing.
var batteryDischargeFactors = [24]float64{
	0.15, 0.10, 0.05, 0.05, 0.10, 0.20,
	0.40, 0.55, 0.50, 0.30, 0.15, 0.10,
	0.05, 0.05, 0.10, 0.20, 0.35, 0.60,
	0.70, 0.65, 0.45, 0.35, 0.25, 0.20,
}

// Minor regional differences relative to the Fredericton reference.
var locationFactors = map[string]float64{
	"Fredericton": 1.00,
	"Saint John":  1.02,
	"Moncton":     0.98,
}

// FactorsAt computes the temporal factors for the given instant and location.
// The function is pure: it never mutates state and depends only on its inputs.
func FactorsAt(now time.Time, location string) TemporalFactors {
	hour := now.Hour()
	minute := now.Minute()
	isWeekend := now.Weekday() == time.Saturday || now.Weekday() == time.Sunday

	usage := usageTable(isWeekend)
	loc, ok := locationFactors[location]
	if !ok {
		loc = 1.0
	}

	usageFactor := usage[hour] * loc
	// Blend with the adjacent hour during the first and last 15 minutes so
	// hourly table steps never show up as jumps in the trace.
	if minute < 15 && hour > 0 {
		ratio := float64(15-minute) / 15
		usageFactor = usageFactor*(1-ratio) + usage[hour-1]*loc*ratio
	} else if minute > 45 {
		ratio := float64(minute-45) / 15
		usageFactor = usageFactor*(1-ratio) + usage[(hour+1)%24]*loc*ratio
	}

	solarFactor := baseSolarFactors[hour]
	if minute < 20 && hour > 0 && solarFactor > 0 {
		ratio := float64(20-minute) / 20
		solarFactor = solarFactor*(1-ratio) + baseSolarFactors[hour-1]*ratio
	} else if minute > 40 && solarFactor > 0 {
		ratio := float64(minute-40) / 20
		solarFactor = solarFactor*(1-ratio) + baseSolarFactors[(hour+1)%24]*ratio
	}

	ev := evConnectionFactors[hour]
	if isWeekend {
		if f, ok := weekendEVOverrides[hour]; ok {
			ev = f
		}
	}

	return TemporalFactors{
		Usage:     usageFactor,
		Solar:     solarFactor * DailyWeather(now),
		EV:        ev,
		Battery:   batteryDischargeFactors[hour],
		TimeOfDay: float64(hour) + float64(minute)/60.0,
		IsWeekend: isWeekend,
	}
}

func usageTable(weekend bool) [24]float64 {
	table := baseUsageFactors
	if weekend {
		for h, f := range weekendUsageOverrides {
			table[h] = f
		}
	}
	return table
}

// DailyWeather returns the day's qualitative weather bias in [0.7, 1.3],
// derived deterministically from the calendar date so the same day always
// reproduces the same bias without persisted state.
func DailyWeather(now time.Time) float64 {
	daySeed := now.Day() + int(now.Month())*31
	return 0.7 + float64(daySeed*9973%1000)/1000.0*0.6
}

// stableVariate hashes an integer seed into a uniform value in [0, 1).
// The same seed always yields the same variate, which keeps decisions like
// EV connectivity stable within a polling window.
func stableVariate(seed int) float64 {
	return float64(seed*9973%1000) / 1000.0
}
