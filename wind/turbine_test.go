package wind

import (
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func testTurbine() Turbine {
	return Turbine{
		RotorDiameter:     77.0,
		HubHeight:         80.0,
		MeasurementHeight: 80.0,
		ShearExponent:     1.0 / 7.0,
		CutInSpeed:        4.0,
		RatedSpeed:        14.0,
		RatedPower:        1500.0,
		ControlMode:       CtrlPitch,
		CurveWS:           []float64{0, 4, 6, 8, 10, 12, 14, 25},
		CurveKW:           []float64{0, 50, 250, 600, 1100, 1400, 1500, 1500},
	}
}

func TestTurbinePowerCurve(t *testing.T) {
	tb := testTurbine()
	for _, test := range []struct {
		name string
		v    float64
		want float64
	}{
		{"below cut-in", 2.0, 0.0},
		{"between points", 5.0, 150.0},
		{"on a point", 8.0, 600.0},
		{"at rated", 14.0, 1500.0},
		{"beyond the curve", 30.0, 1500.0},
	} {
		got, ct := tb.Power(test.v, seaLevelAirDensity)
		if !scalar.EqualWithinAbsOrRel(got, test.want, 1e-12, 1e-12) {
			t.Errorf("%s: power at %v m/s = %v, want %v", test.name, test.v, got, test.want)
		}
		if test.want == 0.0 && ct != 0.0 {
			t.Errorf("%s: thrust coefficient = %v with no output", test.name, ct)
		}
		if test.want > 0.0 && (ct <= 0.0 || ct >= 1.2) {
			t.Errorf("%s: thrust coefficient = %v outside plausible range", test.name, ct)
		}
	}
}

func TestTurbinePowerDensityScaling(t *testing.T) {
	tb := testTurbine()
	full, _ := tb.Power(8.0, seaLevelAirDensity)
	half, _ := tb.Power(8.0, 0.5*seaLevelAirDensity)
	if !scalar.EqualWithinAbsOrRel(half, 0.5*full, 1e-12, 1e-12) {
		t.Errorf("half-density output = %v, want %v", half, 0.5*full)
	}
}

func TestTurbinePowerShearCorrection(t *testing.T) {
	tb := testTurbine()
	base, _ := tb.Power(8.0, seaLevelAirDensity)

	tb.MeasurementHeight = 40.0 // hub speed now exceeds the measured speed
	sheared, _ := tb.Power(8.0, seaLevelAirDensity)
	if sheared <= base {
		t.Errorf("output with shear correction = %v, want more than %v", sheared, base)
	}

	// A nonsense shear exponent falls back to 1/7.
	tb.ShearExponent = 3.0
	fallback, _ := tb.Power(8.0, seaLevelAirDensity)
	if !scalar.EqualWithinAbsOrRel(fallback, sheared, 1e-12, 1e-12) {
		t.Errorf("shear fallback output = %v, want %v", fallback, sheared)
	}
}

func TestTurbinePowerLosses(t *testing.T) {
	tb := testTurbine()
	tb.LossesPercent = 0.1
	tb.LossesAbsolute = 10.0
	got, _ := tb.Power(8.0, seaLevelAirDensity)
	if !scalar.EqualWithinAbsOrRel(got, 600.0*0.9-10.0, 1e-12, 1e-12) {
		t.Errorf("output with losses = %v, want %v", got, 600.0*0.9-10.0)
	}
}

func TestAirDensity(t *testing.T) {
	rho := AirDensity(1.0, 15.0)
	if !scalar.EqualWithinAbsOrRel(rho, 101325.0/(287.0*288.15), 1e-12, 1e-12) {
		t.Errorf("air density at 1 atm, 15 C = %v", rho)
	}
}

func TestAnnualOutputWeibull(t *testing.T) {
	tb := testTurbine()
	energy := tb.AnnualOutputWeibull(2.0, 7.0)
	if energy <= 0.0 {
		t.Fatalf("annual energy = %v, want positive", energy)
	}
	if max := hoursPerYear * tb.RatedPower; energy >= max {
		t.Errorf("annual energy = %v exceeds running at rated all year (%v)", energy, max)
	}

	// A better wind resource produces more energy.
	if more := tb.AnnualOutputWeibull(2.0, 8.0); more <= energy {
		t.Errorf("energy did not grow with the wind resource: %v <= %v", more, energy)
	}
}
