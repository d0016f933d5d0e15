package sim

// PowerMeter composes the net meter reading for one DER from the baseline
// load, the active factors and the already-computed DER output.
//
// In violation mode the DER output is divided by the violation multiplier
// before subtraction, making DERs appear less effective and inflating net
// consumption above the contract threshold on purpose. The reported
// current_output stays the real value; only the meter is distorted.
func PowerMeter(baseline, derOutput, usage, trend, appliance, noise, multiplier float64, violate bool) float64 {
	adjusted := baseline * usage * trend * appliance

	effective := derOutput
	if violate && multiplier > 0 {
		effective = derOutput / multiplier
	}

	meter := adjusted*noise - effective
	if meter < 0 {
		meter = 0
	}
	return round2(meter)
}

// MeterNoise derives the bounded second/minute noise factor in [0.98, 1.02]
// for the meter reading at the given second and minute of the hour.
func MeterNoise(second, minute int) float64 {
	seed := second + minute*60
	return 0.98 + float64(seed*3%5)/100
}
