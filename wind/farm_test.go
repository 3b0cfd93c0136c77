package wind

import (
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

var allModels = []Model{PatQuinlan, Park, EddyViscosity, PatQuinlanOld}

func testFarm(x, y []float64, model Model) *Farm {
	return &Farm{
		Turbine: testTurbine(),
		X:       x,
		Y:       y,
		Model:   model,
		TI:      10.0,
	}
}

// A lone turbine must produce exactly its standalone power-curve output, no
// matter which wake model is selected.
func TestFarmSingleTurbine(t *testing.T) {
	tb := testTurbine()
	want, wantCt := tb.Power(8.0, seaLevelAirDensity)

	for _, model := range allModels {
		f := testFarm([]float64{0}, []float64{0}, model)
		res, err := f.Evaluate(8.0, 0.0, seaLevelAirDensity)
		if err != nil {
			t.Fatalf("%v: %v", model, err)
		}
		if res.FarmPower != want || res.Power[0] != want {
			t.Errorf("%v: farm power = %v, want %v", model, res.FarmPower, want)
		}
		if res.Thrust[0] != wantCt {
			t.Errorf("%v: thrust = %v, want %v", model, res.Thrust[0], wantCt)
		}
		if res.Eff[0] != 100.0 {
			t.Errorf("%v: efficiency = %v, want 100", model, res.Eff[0])
		}
	}
}

// If the most upwind turbine makes no power, every turbine makes no power.
func TestFarmZeroUpwindPower(t *testing.T) {
	f := testFarm([]float64{0, 0, 0}, []float64{0, -500, -1000}, Park)
	res, err := f.Evaluate(2.0, 0.0, seaLevelAirDensity) // below cut-in
	if err != nil {
		t.Fatal(err)
	}
	if res.FarmPower != 0.0 {
		t.Errorf("farm power = %v, want 0", res.FarmPower)
	}
	for i, p := range res.Power {
		if p != 0.0 {
			t.Errorf("turbine %d power = %v, want 0", i, p)
		}
	}
}

// Two turbines directly in line with the wind: with a wind from the north,
// the turbine at y = -500 sits 500 m downwind of the one at the origin and
// must see a reduced wind speed under every model.
func TestFarmTwoInLine(t *testing.T) {
	tb := testTurbine()
	p0, _ := tb.Power(8.0, seaLevelAirDensity)

	for _, model := range allModels {
		f := testFarm([]float64{0, 0}, []float64{0, -500}, model)
		res, err := f.Evaluate(8.0, 0.0, seaLevelAirDensity)
		if err != nil {
			t.Fatalf("%v: %v", model, err)
		}
		if res.Power[0] != p0 {
			t.Errorf("%v: upwind power = %v, want standalone %v", model, res.Power[0], p0)
		}
		if res.Speed[1] >= 8.0 {
			t.Errorf("%v: downwind speed = %v, want below freestream", model, res.Speed[1])
		}
		if res.Power[1] > res.Power[0] {
			t.Errorf("%v: downwind power %v exceeds upwind %v", model, res.Power[1], res.Power[0])
		}
		if res.TI[1] < f.TI {
			t.Errorf("%v: downwind TI = %v fell below ambient %v", model, res.TI[1], f.TI)
		}
	}
}

// A turbine far to the side is outside every wake.
func TestFarmCrosswindOffset(t *testing.T) {
	tb := testTurbine()
	p0, _ := tb.Power(8.0, seaLevelAirDensity)

	// 2000 m crosswind at 100 m downwind: far outside the wake cone.
	f := testFarm([]float64{0, 2000}, []float64{0, -100}, Park)
	res, err := f.Evaluate(8.0, 0.0, seaLevelAirDensity)
	if err != nil {
		t.Fatal(err)
	}
	if !scalar.EqualWithinAbsOrRel(res.Power[1], p0, 1e-9, 1e-12) {
		t.Errorf("offset turbine power = %v, want standalone %v", res.Power[1], p0)
	}
}

// Permuting the input turbine order must not change any per-turbine output:
// the engine sorts by downwind distance and restores input order afterwards.
func TestFarmOrderInvariance(t *testing.T) {
	x := []float64{0, 200, -100, 50}
	y := []float64{0, -400, -800, -1300}
	perm := []int{3, 1, 0, 2}

	for _, model := range allModels {
		base, err := testFarm(x, y, model).Evaluate(8.0, 15.0, seaLevelAirDensity)
		if err != nil {
			t.Fatalf("%v: %v", model, err)
		}

		px := make([]float64, len(x))
		py := make([]float64, len(y))
		for i, id := range perm {
			px[i] = x[id]
			py[i] = y[id]
		}
		got, err := testFarm(px, py, model).Evaluate(8.0, 15.0, seaLevelAirDensity)
		if err != nil {
			t.Fatalf("%v permuted: %v", model, err)
		}

		if !scalar.EqualWithinAbsOrRel(got.FarmPower, base.FarmPower, 1e-12, 1e-12) {
			t.Errorf("%v: farm power changed with input order: %v != %v", model, got.FarmPower, base.FarmPower)
		}
		for i, id := range perm {
			if !scalar.EqualWithinAbsOrRel(got.Power[i], base.Power[id], 1e-12, 1e-12) {
				t.Errorf("%v: turbine %d power = %v, want %v", model, id, got.Power[i], base.Power[id])
			}
			if !scalar.EqualWithinAbsOrRel(got.Speed[i], base.Speed[id], 1e-12, 1e-12) {
				t.Errorf("%v: turbine %d speed = %v, want %v", model, id, got.Speed[i], base.Speed[id])
			}
			if !scalar.EqualWithinAbsOrRel(got.TI[i], base.TI[id], 1e-12, 1e-12) {
				t.Errorf("%v: turbine %d TI = %v, want %v", model, id, got.TI[i], base.TI[id])
			}
		}
	}
}

func TestFarmInputChecks(t *testing.T) {
	tooMany := make([]float64, MaxTurbines+1)
	for _, test := range []struct {
		name string
		x, y []float64
	}{
		{"no turbines", nil, nil},
		{"too many turbines", tooMany, tooMany},
		{"mismatched coordinates", []float64{0, 100}, []float64{0}},
	} {
		f := testFarm(test.x, test.y, Park)
		if _, err := f.Evaluate(8.0, 0.0, seaLevelAirDensity); err == nil {
			t.Errorf("%s: expected an error", test.name)
		}
	}
}

// The Park deficit decays as the wake cone expands: doubling the separation
// between two in-line turbines must raise the downwind turbine's speed.
func TestFarmParkSeparationDecay(t *testing.T) {
	near, err := testFarm([]float64{0, 0}, []float64{0, -400}, Park).Evaluate(8.0, 0.0, seaLevelAirDensity)
	if err != nil {
		t.Fatal(err)
	}
	far, err := testFarm([]float64{0, 0}, []float64{0, -800}, Park).Evaluate(8.0, 0.0, seaLevelAirDensity)
	if err != nil {
		t.Fatal(err)
	}
	if far.Speed[1] <= near.Speed[1] {
		t.Errorf("downwind speed at 800 m (%v) not above 400 m (%v)", far.Speed[1], near.Speed[1])
	}
}
