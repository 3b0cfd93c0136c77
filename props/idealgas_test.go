package props

import (
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestRoundTrip(t *testing.T) {
	co2 := CO2()
	testPts := [][2]float64{
		{305.15, 7700},
		{320.0, 25000},
		{823.15, 24213},
		{973.15, 8000},
		{260.0, 2000},
	}
	for i, pt := range testPts {
		base, err := co2.TP(pt[0], pt[1])
		if err != nil {
			t.Fatalf("case %v: TP: %v", i, err)
		}
		fromPH, err := co2.PH(base.Pres, base.Enth)
		if err != nil {
			t.Fatalf("case %v: PH: %v", i, err)
		}
		fromPS, err := co2.PS(base.Pres, base.Entr)
		if err != nil {
			t.Fatalf("case %v: PS: %v", i, err)
		}
		fromHS, err := co2.HS(base.Enth, base.Entr)
		if err != nil {
			t.Fatalf("case %v: HS: %v", i, err)
		}
		fromTD, err := co2.TD(base.Temp, base.Dens)
		if err != nil {
			t.Fatalf("case %v: TD: %v", i, err)
		}
		for _, got := range []State{fromPH, fromPS, fromHS, fromTD} {
			if !scalar.EqualWithinAbsOrRel(got.Temp, base.Temp, 1e-9, 1e-12) {
				t.Errorf("mismatch case %v. Found T %v, expected %v", i, got.Temp, base.Temp)
			}
			if !scalar.EqualWithinAbsOrRel(got.Pres, base.Pres, 1e-7, 1e-12) {
				t.Errorf("mismatch case %v. Found P %v, expected %v", i, got.Pres, base.Pres)
			}
			if !scalar.EqualWithinAbsOrRel(got.Enth, base.Enth, 1e-9, 1e-12) {
				t.Errorf("mismatch case %v. Found h %v, expected %v", i, got.Enth, base.Enth)
			}
		}
	}
}

func TestRangeErrors(t *testing.T) {
	co2 := CO2()
	if _, err := co2.TP(100, 8000); err == nil {
		t.Error("expected temperature range error")
	} else if perr, ok := err.(*Error); !ok || perr.Code != ErrTempRange {
		t.Errorf("wrong error: %v", err)
	}
	if _, err := co2.TP(400, -5); err == nil {
		t.Error("expected pressure range error")
	} else if perr, ok := err.(*Error); !ok || perr.Code != ErrPresRange {
		t.Errorf("wrong error: %v", err)
	}
}

func TestEntropyDirection(t *testing.T) {
	// Isentropic compression must heat the gas.
	co2 := CO2()
	in, _ := co2.TP(320, 8000)
	out, err := co2.PS(25000, in.Entr)
	if err != nil {
		t.Fatal(err)
	}
	if out.Temp <= in.Temp {
		t.Errorf("isentropic compression cooled the gas: %v -> %v K", in.Temp, out.Temp)
	}
	if out.Enth <= in.Enth {
		t.Errorf("isentropic compression lowered enthalpy: %v -> %v", in.Enth, out.Enth)
	}
}

func TestPseudocritical(t *testing.T) {
	// The fit should pass near the true critical point.
	p := PPseudocritical(tCritCO2)
	if p < 6000 || p > 9500 {
		t.Errorf("pseudocritical pressure at Tcrit unreasonable: %v kPa", p)
	}
	if PPseudocritical(320) <= p {
		t.Error("pseudocritical pressure should increase with temperature")
	}
}
