package wind

import "math"

// velDeltaPQ is the Pat Quinlan velocity deficit at a downwind turbine due
// to one upwind turbine, with distances in rotor radii. It also returns the
// downwind turbine's turbulence intensity with the upwind contribution folded
// in. The added turbulence depends only on the axial separation, not the
// crosswind offset, even when the upwind turbine is far to the side; farm
// outputs are validated against this behavior, so it stays.
func velDeltaPQ(crossRadii, axialRadii, thrustCoeff, ti float64) (deficit, newTI float64) {
	if crossRadii > 20.0 || ti <= 0.0 || axialRadii <= 0.0 || thrustCoeff <= 0.0 {
		return 0.0, ti
	}

	added := (thrustCoeff / 7.0) * (1.0 - 0.4*math.Log(2.0*axialRadii))
	newTI = math.Sqrt(added*added + ti*ti)

	aa := newTI * newTI * axialRadii * axialRadii
	exp := math.Max(-99.0, -crossRadii*crossRadii/(2.0*aa))
	deficit = (thrustCoeff / (4.0 * aa)) * math.Exp(exp)
	return math.Min(math.Max(deficit, 0.0), 1.0), newTI
}

// wakePatQuinlan applies the modified Pat Quinlan model: each turbine's speed
// is the freestream scaled by the product of (1 - deficit) over every upwind
// turbine. Slices are in upwind-to-downwind order; index 0 is already solved.
func (f *Farm) wakePatQuinlan(airDensity float64, dw, cw, pw, th, eff, spd, ti []float64) {
	for i := 1; i < len(dw); i++ {
		product := 1.0
		for j := 0; j < i; j++ {
			axial := math.Abs(dw[j] - dw[i])
			cross := math.Abs(cw[j] - cw[i])
			var deficit float64
			deficit, ti[i] = velDeltaPQ(cross, axial, th[j], ti[i])
			product *= 1.0 - deficit
		}
		spd[i] *= product
		pw[i], th[i] = f.Turbine.Power(spd[i], airDensity)
		eff[i] = downwindEff(pw[i], pw[0])
	}
}

// wakePatQuinlanOld is the original formulation: each upwind turbine sweeps
// over everything downwind of it, shaving the wind speed incrementally, and
// a turbine's output is fixed as soon as its nearest upwind neighbor has
// swept it (so farther upwind turbines still slow it, but its power no longer
// changes). The axial distance is signed here, unlike the modified model.
func (f *Farm) wakePatQuinlanOld(airDensity float64, dw, cw, pw, th, eff, spd, ti []float64) {
	n := len(dw)
	for i := 0; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			axial := dw[j] - dw[i]
			cross := math.Abs(cw[j] - cw[i])
			var deficit float64
			deficit, ti[j] = velDeltaPQ(cross, axial, th[i], ti[j])
			spd[j] *= 1.0 - deficit
			if j == i+1 {
				pw[j], th[j] = f.Turbine.Power(spd[j], airDensity)
				eff[j] = downwindEff(pw[j], pw[0])
			}
		}
	}
}
