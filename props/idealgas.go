package props

import "math"

// CO2-like constants for the reference fluid.
const (
	gasConstCO2 = 0.188924 // kJ/kg-K
	cpCO2       = 1.02     // kJ/kg-K, treated as constant
	tCritCO2    = 304.1282 // K
	pCritCO2    = 7377.3   // kPa

	refTemp = 300.0  // K
	refPres = 1000.0 // kPa
	refEnth = 500.0  // kJ/kg at refTemp
	refEntr = 2.0    // kJ/kg-K at (refTemp, refPres)

	minTemp = 250.0
	maxTemp = 1500.0
	minPres = 1.0
	maxPres = 60000.0
)

// IdealGas is a calorically perfect reference fluid with CO2-like constants.
// Every lookup is a closed-form inverse of the others, so states round-trip
// exactly; it has no phase envelope and understates real-gas effects near the
// critical point, which is acceptable for solver verification and quick
// parametric studies.
type IdealGas struct{}

// CO2 returns the reference fluid.
func CO2() IdealGas { return IdealGas{} }

func (IdealGas) TCrit() float64 { return tCritCO2 }
func (IdealGas) PCrit() float64 { return pCritCO2 }

func (IdealGas) Limits() (float64, float64, float64, float64) {
	return minTemp, maxTemp, minPres, maxPres
}

func (g IdealGas) state(T, P float64, fn string) (State, error) {
	if T < minTemp || T > maxTemp || math.IsNaN(T) {
		return State{}, &Error{Code: ErrTempRange, Fn: fn, Msg: "temperature out of range"}
	}
	if P < minPres || P > maxPres || math.IsNaN(P) {
		return State{}, &Error{Code: ErrPresRange, Fn: fn, Msg: "pressure out of range"}
	}
	gamma := cpCO2 / (cpCO2 - gasConstCO2)
	return State{
		Temp:       T,
		Pres:       P,
		Enth:       refEnth + cpCO2*(T-refTemp),
		Entr:       refEntr + cpCO2*math.Log(T/refTemp) - gasConstCO2*math.Log(P/refPres),
		Dens:       P / (gasConstCO2 * T),
		SpeedSound: math.Sqrt(gamma * gasConstCO2 * 1000 * T),
	}, nil
}

func (g IdealGas) TP(T, P float64) (State, error) {
	return g.state(T, P, "TP")
}

func (g IdealGas) PH(P, h float64) (State, error) {
	T := refTemp + (h-refEnth)/cpCO2
	return g.state(T, P, "PH")
}

func (g IdealGas) PS(P, s float64) (State, error) {
	if P <= 0 {
		return State{}, &Error{Code: ErrPresRange, Fn: "PS", Msg: "pressure out of range"}
	}
	T := refTemp * math.Exp((s-refEntr+gasConstCO2*math.Log(P/refPres))/cpCO2)
	return g.state(T, P, "PS")
}

func (g IdealGas) HS(h, s float64) (State, error) {
	T := refTemp + (h-refEnth)/cpCO2
	if T <= 0 {
		return State{}, &Error{Code: ErrNoSolve, Fn: "HS", Msg: "no physical state"}
	}
	P := refPres * math.Exp((refEntr-s+cpCO2*math.Log(T/refTemp))/gasConstCO2)
	return g.state(T, P, "HS")
}

func (g IdealGas) TD(T, d float64) (State, error) {
	if d <= 0 {
		return State{}, &Error{Code: ErrNoSolve, Fn: "TD", Msg: "density must be positive"}
	}
	return g.state(T, d*gasConstCO2*T, "TD")
}
