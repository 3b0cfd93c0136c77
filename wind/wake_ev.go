package wind

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Simplified eddy-viscosity wake model, after Ainslee (1988) and Anderson's
// 2009 simplified solution. Each turbine's centerline velocity deficit and
// wake half-width are marched downstream over fixed axial bins; downwind
// turbines interpolate into the rows of their upwind neighbors.
const (
	evMinDiam    = 2.0    // diameters, start of the marched wake profile
	evAxialRes   = 0.5    // diameters per axial bin
	evMaxDiam    = 50.0   // diameters, extent of the wake tables
	evMinDeficit = 0.0002 // marching stops once the deficit decays below this
	evMinThrust  = 0.02
	evScale      = 1.0
)

func evCols() int { return int(evMaxDiam/evAxialRes) + 1 }

// wakeEddyViscosity must walk the turbines strictly upwind-to-downwind: each
// turbine's wake profile is marched immediately after its own operating point
// is known, and every turbine downwind of it reads that profile. Slices are
// in upwind-to-downwind order. The loop starts at 0 to seed the first
// turbine's wake row.
func (f *Farm) wakeEddyViscosity(airDensity float64, dw, cw, pw, th, eff, spd, ti []float64) {
	n := len(dw)
	deficits := mat.NewDense(n, evCols(), nil)
	widths := mat.NewDense(n, evCols(), nil)
	radius := 0.5 * f.Turbine.RotorDiameter

	for i := 0; i < n; i++ {
		deficit := 0.0
		totalTI := ti[i]
		for j := 0; j < i; j++ {
			axialDiam := math.Abs(dw[i]-dw[j]) / 2.0
			radialDiam := math.Abs(cw[i]-cw[j]) / 2.0

			wakeRadius := f.evWakeWidth(widths, j, axialDiam)
			if wakeRadius <= 0.0 {
				continue
			}

			def := f.evWakeDeficit(deficits, widths, j, radialDiam, axialDiam)
			waked := spd[0] * (1.0 - def)
			deficit = math.Max(deficit, def)

			added := math.Max(0.0, (th[j]/7.0)*(1.0-0.4*math.Log(axialDiam)))
			partial := simpleIntersect(radialDiam*f.Turbine.RotorDiameter, radius, wakeRadius)
			totalTI = math.Max(totalTI, evTotalTI(ti[i], added, spd[0], waked, partial))
		}

		// The deficit is relative to the freestream, not the nearest wake.
		spd[i] = spd[0] * (1.0 - deficit)
		ti[i] = totalTI
		pw[i], th[i] = f.Turbine.Power(spd[i], airDensity)
		eff[i] = downwindEff(pw[i], pw[0])

		f.evFillWake(deficits, widths, i, spd[0], spd[i], pw[i], th[i], ti[i],
			math.Abs(dw[n-1]-dw[i])/2.0)
	}
}

// evWakeDeficit averages the Gaussian deficit profile of upwind turbine j
// across the downwind rotor disk, at a crosswind offset and axial distance in
// diameters.
func (f *Farm) evWakeDeficit(deficits, widths *mat.Dense, j int, radialDiam, axialDiam float64) float64 {
	centerline := f.evCenterlineDeficit(deficits, j, axialDiam)
	if centerline <= 0.0 {
		return 0.0
	}

	const steps = 25.0
	crossM := radialDiam * f.Turbine.RotorDiameter
	width := f.evWakeWidth(widths, j, axialDiam)
	radius := 0.5 * f.Turbine.RotorDiameter
	step := f.Turbine.RotorDiameter / steps

	total := 0.0
	for y := crossM - radius; y <= crossM+radius; y += step {
		total += centerline * math.Exp(-3.56*y*y/(width*width))
	}
	return total / (steps + 1.0)
}

// evWakeWidth interpolates turbine j's wake radius (meters) at an axial
// distance in diameters. Inside the near wake the initial width applies;
// past the end of the table the wake is gone.
func (f *Farm) evWakeWidth(widths *mat.Dense, j int, axialDiam float64) float64 {
	past := axialDiam - evMinDiam
	if past < 0.0 {
		return f.Turbine.RotorDiameter * widths.At(j, 0)
	}
	u := past / evAxialRes
	lo := int(u)
	hi := lo + 1
	u -= float64(lo)
	if hi >= evCols() {
		return 0.0
	}
	return f.Turbine.RotorDiameter *
		math.Max(1.0, widths.At(j, lo)*(1.0-u)+widths.At(j, hi)*u)
}

// evCenterlineDeficit interpolates turbine j's fractional centerline deficit
// at an axial distance in diameters.
func (f *Farm) evCenterlineDeficit(deficits *mat.Dense, j int, axialDiam float64) float64 {
	past := axialDiam - evMinDiam
	if past < 0.0 {
		return deficits.At(j, 0)
	}
	u := past / evAxialRes
	lo := int(u)
	hi := lo + 1
	u -= float64(lo)
	if hi >= evCols() {
		return 0.0
	}
	return deficits.At(j, lo)*(1.0-u) + deficits.At(j, hi)*u
}

// evTotalTI combines the ambient turbulence intensity with an upwind
// turbine's added turbulence, weighted by the fraction of the rotor inside
// the wake and by the ratio of freestream to waked wind speed.
func evTotalTI(ambient, added, u0, uWaked, partial float64) float64 {
	if uWaked <= 0.0 {
		return ambient
	}
	inWake := math.Sqrt(math.Max(0.0, ambient*ambient+added*added)) * u0 / uWaked
	return (1.0-partial)*ambient + partial*inWake
}

// evFilter is Ainslee's empirical filter F applied to the eddy viscosity in
// the developing near wake, as a function of axial distance in diameters.
func evFilter(x float64) float64 {
	switch {
	case x >= 5.5:
		return 1.0
	case x < 4.5:
		return 0.65 - math.Cbrt((4.5-x)/23.32)
	}
	return 0.65 + math.Cbrt((x-4.5)/23.32)
}

// evFillWake marches turbine i's centerline deficit and wake width downstream
// and stores them in the wake tables. Column 0 holds the near-wake initial
// condition at two diameters. The march stops once the deficit decays below
// evMinDeficit or distance passes the farthest downwind turbine
// (diamToFurthest, in diameters).
func (f *Farm) evFillWake(deficits, widths *mat.Dense, i int, uAmbient, uTurbine, power, thrustCoeff, ti, diamToFurthest float64) {
	if power <= 0.0 || thrustCoeff <= 0.0 {
		return // no wake; the table rows stay zero
	}
	ct := math.Min(0.999, thrustCoeff)
	ct = math.Max(evMinThrust, ct)
	ti = math.Min(ti, 50.0)

	const (
		vonKarman = 0.4   // Ainslee 1988
		k1        = 0.015 // Ainslee 1988, input parameters
	)

	// Initial centerline deficit at two rotor diameters downstream,
	// Ainslee (5), relative to the speed at the turbine.
	dm := math.Max(0.0, ct-0.05-(16.0*ct-0.5)*ti/1000.0)
	if dm <= 0.0 {
		return
	}
	uCenter := uTurbine - dm*uTurbine
	// Re-express relative to the freestream.
	dm = (uAmbient - uCenter) / uAmbient
	// Initial wake width, Ainslee (6), in rotor diameters.
	bw := math.Sqrt(3.56 * ct / (8.0 * dm * (1.0 - 0.5*dm)))

	u := make([]float64, evCols())
	u[0] = evScale * (1.0 - dm)
	deficits.Set(i, 0, dm)
	widths.Set(i, 0, bw)

	for j := 0; j < evCols()-1; j++ {
		x := evMinDiam + float64(j)*evAxialRes
		filt := evFilter(x)
		km := filt * vonKarman * vonKarman * ti / 100.0
		eddy := filt*k1*bw*(dm*evScale) + km

		dUdX := 16.0 * (u[j]*u[j]*u[j] - u[j]*u[j] - u[j] + 1.0) * eddy / (u[j] * ct)
		u[j+1] = u[j] + dUdX*evAxialRes

		dm = (evScale - u[j+1]) / evScale
		bw = math.Sqrt(3.56 * ct / (8.0 * dm * (1.0 - 0.5*dm)))

		deficits.Set(i, j+1, dm)
		widths.Set(i, j+1, bw)

		if dm <= evMinDeficit || x > diamToFurthest+evAxialRes || j >= evCols()-2 {
			break
		}
	}
}
