package wind

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Model selects the wake-propagation algorithm.
type Model int

const (
	PatQuinlan Model = iota // modified Pat Quinlan, multiplicative deficits
	Park                    // Park/WAsP, max deficit with lens overlap
	EddyViscosity           // simplified eddy-viscosity, marched deficit profiles
	PatQuinlanOld           // original Pat Quinlan pairwise sweep
)

func (m Model) String() string {
	switch m {
	case PatQuinlan:
		return "Pat Quinlan"
	case Park:
		return "Park"
	case EddyViscosity:
		return "Fast Eddy Viscosity"
	case PatQuinlanOld:
		return "Old Pat Quinlan"
	}
	return fmt.Sprintf("Model(%d)", int(m))
}

// MaxTurbines is the largest farm the wake models accept.
const MaxTurbines = 300

// DefaultWakeDecay is the Park wake expansion coefficient used when the farm
// does not set one.
const DefaultWakeDecay = 0.07

// Farm is a set of identical turbines at map coordinates, evaluated together
// so that upwind turbines shadow downwind ones. A Farm is not safe for
// concurrent Evaluate calls.
type Farm struct {
	Turbine Turbine
	X, Y    []float64 // east, north map coordinates, m

	Model     Model
	TI        float64 // ambient turbulence intensity, percent
	WakeDecay float64 // Park wake expansion coefficient; 0 means DefaultWakeDecay
}

// Result holds per-turbine outputs in the input coordinate order.
type Result struct {
	FarmPower float64   // kW
	Power     []float64 // kW
	Thrust    []float64 // thrust coefficient
	Eff       []float64 // percent of the most-upwind turbine's output
	Speed     []float64 // waked wind speed at the measurement height, m/s
	TI        []float64 // percent
}

// Evaluate computes farm output for one freestream wind speed (m/s at the
// measurement height), direction (degrees, 0 = from north), and air density
// (kg/m^3).
func (f *Farm) Evaluate(windSpeed, windDirDeg, airDensity float64) (*Result, error) {
	n := len(f.X)
	if n < 1 || n > MaxTurbines {
		return nil, fmt.Errorf("wind: farm has %d turbines, must be between 1 and %d", n, MaxTurbines)
	}
	if len(f.Y) != n {
		return nil, fmt.Errorf("wind: %d x coordinates but %d y coordinates", n, len(f.Y))
	}
	if len(f.Turbine.CurveWS) < 2 || len(f.Turbine.CurveWS) != len(f.Turbine.CurveKW) {
		return nil, fmt.Errorf("wind: power curve needs matching speed and output tables")
	}

	res := &Result{
		Power:  make([]float64, n),
		Thrust: make([]float64, n),
		Eff:    make([]float64, n),
		Speed:  make([]float64, n),
		TI:     make([]float64, n),
	}
	for i := 0; i < n; i++ {
		res.Speed[i] = windSpeed
		res.TI[i] = f.TI
	}

	p0, ct0 := f.Turbine.Power(windSpeed, airDensity)
	if n == 1 {
		res.Power[0] = p0
		res.Thrust[0] = ct0
		res.Eff[0] = firstEff(p0)
		res.FarmPower = p0
		return res, nil
	}
	if p0 <= 0.0 {
		// The most upwind turbine produces nothing, so nothing downwind
		// of it will either.
		return res, nil
	}

	// Downwind/crosswind coordinates, shifted so the minimum of each is
	// zero, in units of rotor radii.
	dw := make([]float64, n)
	cw := make([]float64, n)
	for i := 0; i < n; i++ {
		dw[i], cw[i] = downwindCrosswind(f.Y[i], f.X[i], windDirDeg)
	}
	dMin := floats.Min(dw)
	cMin := floats.Min(cw)
	radius := 0.5 * f.Turbine.RotorDiameter
	for i := 0; i < n; i++ {
		dw[i] = (dw[i] - dMin) / radius
		cw[i] = (cw[i] - cMin) / radius
	}

	// Work in upwind-to-downwind order, remembering the input ids.
	ord := make([]int, n)
	for i := range ord {
		ord[i] = i
	}
	sort.SliceStable(ord, func(a, b int) bool { return dw[ord[a]] < dw[ord[b]] })

	sdw := make([]float64, n)
	scw := make([]float64, n)
	for k, id := range ord {
		sdw[k] = dw[id]
		scw[k] = cw[id]
	}
	pw := make([]float64, n)
	th := make([]float64, n)
	eff := make([]float64, n)
	spd := make([]float64, n)
	ti := make([]float64, n)
	for i := 0; i < n; i++ {
		spd[i] = windSpeed
		ti[i] = f.TI
	}
	pw[0], th[0] = p0, ct0
	eff[0] = firstEff(p0)

	switch f.Model {
	case PatQuinlan:
		f.wakePatQuinlan(airDensity, sdw, scw, pw, th, eff, spd, ti)
	case Park:
		f.wakePark(airDensity, sdw, scw, pw, th, eff, spd)
	case EddyViscosity:
		f.wakeEddyViscosity(airDensity, sdw, scw, pw, th, eff, spd, ti)
	case PatQuinlanOld:
		f.wakePatQuinlanOld(airDensity, sdw, scw, pw, th, eff, spd, ti)
	default:
		return nil, fmt.Errorf("wind: unknown wake model %v", f.Model)
	}

	for k, id := range ord {
		res.Power[id] = pw[k]
		res.Thrust[id] = th[k]
		res.Eff[id] = eff[k]
		res.Speed[id] = spd[k]
		res.TI[id] = ti[k]
	}
	res.FarmPower = floats.Sum(pw)
	return res, nil
}

// downwindCrosswind rotates map (north, east) coordinates into axes aligned
// with the wind: downwind along the flow, crosswind orthogonal to it.
func downwindCrosswind(north, east, windDirDeg float64) (down, cross float64) {
	// Shift the direction so zero lies east on the unit circle instead of
	// north.
	rad := (windDirDeg + 90.0) * math.Pi / 180.0
	sin, cos := math.Sincos(rad)
	down = east*cos - north*sin
	cross = east*sin + north*cos
	return down, cross
}

func firstEff(p0 float64) float64 {
	if p0 < 1.0 {
		return 0.0
	}
	return 100.0
}

// downwindEff is the downwind efficiency relative to the most upwind
// turbine, in percent.
func downwindEff(p, p0 float64) float64 {
	if p0 < 0.0 {
		return 0.0
	}
	return 100.0 * (p + 0.0001) / (p0 + 0.0001)
}
