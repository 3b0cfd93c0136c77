package wind

import "math"

// wakePark applies the Park model: each downwind turbine takes the largest
// single deficit among all upwind turbines, weighted by how much of its rotor
// the expanding wake cone covers. Slices are in upwind-to-downwind order;
// index 0 is already solved.
func (f *Farm) wakePark(airDensity float64, dw, cw, pw, th, eff, spd []float64) {
	radius := 0.5 * f.Turbine.RotorDiameter
	decay := f.WakeDecay
	if decay == 0.0 {
		decay = DefaultWakeDecay
	}

	for i := 1; i < len(dw); i++ {
		deficit := 0.0
		for j := 0; j < i; j++ {
			down := radius * math.Abs(dw[i]-dw[j])
			cross := radius * math.Abs(cw[i]-cw[j])
			deficit = math.Max(deficit, parkDeficit(cross, down, radius, radius, th[j], decay))
		}
		spd[i] *= 1.0 - deficit
		pw[i], th[i] = f.Turbine.Power(spd[i], airDensity)
		eff[i] = downwindEff(pw[i], pw[0])
	}
}

// parkDeficit is the fractional wind-speed deficit at a rotor of radius
// rDown, a crosswind offset and downwind distance (meters) behind a rotor of
// radius rUp with the given thrust coefficient. The wake cone grows linearly
// with the decay coefficient.
func parkDeficit(crossM, downM, rUp, rDown, thrustCoeff, decay float64) float64 {
	if thrustCoeff > 1.0 {
		return 0.0
	}
	rWake := rUp + decay*downM
	overlap := circleOverlap(crossM, rDown, rWake)
	return (1.0 - math.Sqrt(1.0-thrustCoeff)) * (rUp / rWake) * (rUp / rWake) *
		(overlap / (math.Pi * rDown * rDown))
}

// circleOverlap returns the area (not fraction) shared by two circles whose
// centers are d apart.
func circleOverlap(d, r1, r2 float64) float64 {
	if d < 0.0 || r1 < 0.0 || r2 < 0.0 {
		return 0.0
	}
	if d > r1+r2 {
		return 0.0
	}
	if r1 >= d+r2 {
		return math.Pi * r2 * r2 // circle 2 entirely inside circle 1
	}
	if r2 >= d+r1 {
		return math.Pi * r1 * r1
	}

	t1 := r1 * r1 * math.Acos((d*d+r1*r1-r2*r2)/(2.0*d*r1))
	t2 := r2 * r2 * math.Acos((d*d+r2*r2-r1*r1)/(2.0*d*r2))
	t3 := 0.5 * math.Sqrt((-d+r1+r2)*(d+r1-r2)*(d-r1+r2)*(d+r1+r2))
	return t1 + t2 - t3
}

// simpleIntersect returns the fraction (not area) of a rotor of radius
// rTurbine covered by a wake of radius rWake whose centerline passes d away.
func simpleIntersect(d, rTurbine, rWake float64) float64 {
	if d < 0.0 || rTurbine < 0.0 || rWake < 0.0 {
		return 0.0
	}
	if d > rTurbine+rWake {
		return 0.0
	}
	if rWake >= d+rTurbine {
		return 1.0 // rotor entirely inside the wake
	}
	return math.Min(1.0, math.Max(0.0, (rTurbine+rWake-d)/(2.0*rTurbine)))
}
