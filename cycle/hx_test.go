package cycle

import (
	"testing"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/adyreson/ssc/props"
)

func TestCalcHXRUAZeroDuty(t *testing.T) {
	fl := props.CO2()
	ua, minDT, err := calcHXRUA(fl, 10, 0.0, 1.0, 1.0, 350.0, 450.0, 20000.0, 20000.0, 8000.0, 8000.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ua != 0.0 {
		t.Errorf("ua = %v, want 0", ua)
	}
	if !scalar.EqualWithinAbsOrRel(minDT, 100.0, 1e-14, 1e-14) {
		t.Errorf("minDT = %v, want 100", minDT)
	}
}

func TestCalcHXRUAInputChecks(t *testing.T) {
	fl := props.CO2()
	for _, test := range []struct {
		name                     string
		qDot, TcIn, ThIn         float64
		PcIn, PcOut, PhIn, PhOut float64
		code                     int
	}{
		{"negative duty", -1.0, 350, 450, 20000, 20000, 8000, 8000, errHXNegQ},
		{"inlet cross", 10.0, 450, 350, 20000, 20000, 8000, 8000, errHXInletTemp},
		{"hot-side rise", 10.0, 350, 450, 20000, 20000, 8000, 8100, errHXHotDP},
		{"cold-side rise", 10.0, 350, 450, 20000, 20100, 8000, 8000, errHXColdDP},
	} {
		_, _, err := calcHXRUA(fl, 10, test.qDot, 1.0, 1.0, test.TcIn, test.ThIn,
			test.PcIn, test.PcOut, test.PhIn, test.PhOut)
		if Code(err) != test.code {
			t.Errorf("%s: code = %d, want %d", test.name, Code(err), test.code)
		}
	}
}

// With a calorically perfect fluid and balanced capacity rates the
// temperature difference is uniform, so the integrated conductance must equal
// Q/dT exactly regardless of the sub-exchanger count.
func TestCalcHXRUABalanced(t *testing.T) {
	fl := props.CO2()
	const (
		mDot = 1.0
		qDot = 20.4 // 20 K of enthalpy change at cp = 1.02
		tc   = 350.0
		th   = 450.0
	)
	for _, nSub := range []int{1, 10, 25} {
		ua, minDT, err := calcHXRUA(fl, nSub, qDot, mDot, mDot, tc, th, 20000.0, 20000.0, 8000.0, 8000.0)
		if err != nil {
			t.Fatalf("nSub=%d: unexpected error: %v", nSub, err)
		}
		wantDT := (th - tc) - qDot/1.02 // 80 K, uniform along the exchanger
		if !scalar.EqualWithinAbsOrRel(minDT, wantDT, 1e-9, 1e-9) {
			t.Errorf("nSub=%d: minDT = %v, want %v", nSub, minDT, wantDT)
		}
		if !scalar.EqualWithinAbsOrRel(ua, qDot/wantDT, 1e-9, 1e-9) {
			t.Errorf("nSub=%d: ua = %v, want %v", nSub, ua, qDot/wantDT)
		}
	}
}

func TestHXOffDesignScaling(t *testing.T) {
	hx := HeatExchanger{Design: HXDesign{
		DPDesign:   [2]float64{100.0, 50.0},
		MDotDesign: [2]float64{10.0, 10.0},
		UADesign:   500.0,
	}}

	dp := hx.PressureDrops([2]float64{10.0, 10.0})
	if !scalar.EqualWithinAbsOrRel(dp[0], 100.0, 1e-12, 1e-12) || !scalar.EqualWithinAbsOrRel(dp[1], 50.0, 1e-12, 1e-12) {
		t.Errorf("design-flow pressure drops = %v, want design values", dp)
	}
	ua := hx.Conductance([2]float64{10.0, 10.0})
	if !scalar.EqualWithinAbsOrRel(ua, 500.0, 1e-12, 1e-12) {
		t.Errorf("design-flow conductance = %v, want 500", ua)
	}

	// Half flow: dP scales with ratio^1.75, UA with ratio^0.8.
	dp = hx.PressureDrops([2]float64{5.0, 5.0})
	if dp[0] >= 100.0 || dp[1] >= 50.0 {
		t.Errorf("half-flow pressure drops did not shrink: %v", dp)
	}
	ua = hx.Conductance([2]float64{5.0, 5.0})
	if ua >= 500.0 {
		t.Errorf("half-flow conductance did not shrink: %v", ua)
	}
}
