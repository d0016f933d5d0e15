package sim

import (
	"math"
	"testing"
	"time"
)

var (
	weekday = time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC) // Wednesday
	weekend = time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC) // Saturday
)

func at(day time.Time, hour, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, time.UTC)
}

func TestFactorsPure(t *testing.T) {
	now := at(weekday, 8, 30)
	a := FactorsAt(now, "Fredericton")
	b := FactorsAt(now, "Fredericton")
	if a != b {
		t.Fatalf("factors not deterministic: %+v vs %+v", a, b)
	}
}

func TestUsageBoundaryContinuity(t *testing.T) {
	var maxDelta float64
	for h := 0; h < 23; h++ {
		d := math.Abs(baseUsageFactors[h+1] - baseUsageFactors[h])
		if d > maxDelta {
			maxDelta = d
		}
	}

	for h := 1; h < 24; h++ {
		before := FactorsAt(at(weekday, h-1, 59), "Fredericton").Usage
		after := FactorsAt(at(weekday, h, 0), "Fredericton").Usage
		if jump := math.Abs(after - before); jump > maxDelta+1e-9 {
			t.Errorf("hour %d boundary jump %.4f exceeds max table delta %.4f",
				h, jump, maxDelta)
		}
	}
}

func TestWeekendOverrides(t *testing.T) {
	wd := FactorsAt(at(weekday, 8, 30), "Fredericton")
	we := FactorsAt(at(weekend, 8, 30), "Fredericton")
	if we.Usage >= wd.Usage {
		t.Errorf("weekend morning peak %.2f should be flatter than weekday %.2f",
			we.Usage, wd.Usage)
	}
	if !we.IsWeekend || wd.IsWeekend {
		t.Errorf("weekend flags wrong: %v %v", we.IsWeekend, wd.IsWeekend)
	}

	wdEV := FactorsAt(at(weekday, 12, 30), "Fredericton").EV
	weEV := FactorsAt(at(weekend, 12, 30), "Fredericton").EV
	if weEV <= wdEV {
		t.Errorf("weekend midday EV likelihood %.2f should exceed weekday %.2f", weEV, wdEV)
	}
}

func TestLocationFactor(t *testing.T) {
	fr := FactorsAt(at(weekday, 8, 30), "Fredericton").Usage
	sj := FactorsAt(at(weekday, 8, 30), "Saint John").Usage
	mo := FactorsAt(at(weekday, 8, 30), "Moncton").Usage
	unknown := FactorsAt(at(weekday, 8, 30), "Bathurst").Usage

	if math.Abs(sj-fr*1.02) > 1e-9 {
		t.Errorf("Saint John factor %.4f, want %.4f", sj, fr*1.02)
	}
	if math.Abs(mo-fr*0.98) > 1e-9 {
		t.Errorf("Moncton factor %.4f, want %.4f", mo, fr*0.98)
	}
	if unknown != fr {
		t.Errorf("unknown location should use the reference factor")
	}
}

func TestSolarFactorNightAndDay(t *testing.T) {
	if f := FactorsAt(at(weekday, 2, 30), "Fredericton"); f.Solar != 0 {
		t.Errorf("solar factor at night = %.3f, want 0", f.Solar)
	}
	noon := FactorsAt(at(weekday, 12, 30), "Fredericton")
	if noon.Solar <= 0 {
		t.Errorf("solar factor at noon = %.3f, want > 0", noon.Solar)
	}
	// Daily weather bounds the midday factor to 0.75 * [0.7, 1.3].
	if noon.Solar < 0.75*0.7-1e-9 || noon.Solar > 0.75*1.3+1e-9 {
		t.Errorf("noon solar %.3f outside weather-scaled band", noon.Solar)
	}
}

func TestDailyWeatherStableAndBounded(t *testing.T) {
	for day := 1; day <= 28; day++ {
		d := time.Date(2025, time.March, day, 10, 0, 0, 0, time.UTC)
		w := DailyWeather(d)
		if w < 0.7 || w > 1.3 {
			t.Fatalf("day %d weather %.3f outside [0.7, 1.3]", day, w)
		}
		if w != DailyWeather(d.Add(5*time.Hour)) {
			t.Fatalf("day %d weather not stable across the day", day)
		}
	}
}

func TestTimeOfDay(t *testing.T) {
	f := FactorsAt(at(weekday, 13, 30), "Fredericton")
	if f.TimeOfDay != 13.5 {
		t.Errorf("time of day = %.2f, want 13.5", f.TimeOfDay)
	}
}
