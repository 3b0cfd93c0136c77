// Package props defines the fluid property interface consumed by the cycle
// solvers, and a closed-form reference fluid for testing and quick studies.
//
// Units everywhere: temperature K, pressure kPa, specific enthalpy kJ/kg,
// specific entropy kJ/kg-K, density kg/m^3, speed of sound m/s.
package props

import "fmt"

// State holds a fully resolved thermodynamic state.
type State struct {
	Temp       float64 // K
	Pres       float64 // kPa
	Enth       float64 // kJ/kg
	Entr       float64 // kJ/kg-K
	Dens       float64 // kg/m^3
	SpeedSound float64 // m/s
}

// Fluid is the property oracle. Each lookup resolves a state from the pair
// of independent properties named by the method. A non-nil error means the
// state is unusable; when the error is a *Error its Code distinguishes the
// failure mode.
type Fluid interface {
	TP(T, P float64) (State, error)
	PS(P, s float64) (State, error)
	PH(P, h float64) (State, error)
	HS(h, s float64) (State, error)
	TD(T, d float64) (State, error)

	TCrit() float64
	PCrit() float64

	// Limits reports the valid property window as (TMin, TMax, PMin, PMax).
	Limits() (float64, float64, float64, float64)
}

// Error is a coded property-routine failure.
type Error struct {
	Code int
	Fn   string
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("props: %s (code %d): %s", e.Fn, e.Code, e.Msg)
}

// Property error codes.
const (
	ErrTempRange = 1 // temperature outside the fluid's valid window
	ErrPresRange = 2 // pressure outside the fluid's valid window
	ErrNoSolve   = 3 // inverse lookup produced no physical state
)

// PPseudocritical returns the pseudocritical pressure [kPa] of CO2 at T [K],
// from a quadratic fit valid near the critical point. For T below the
// critical temperature the fit tracks the saturation line.
func PPseudocritical(T float64) float64 {
	return (0.191448*T+45.6661)*T - 24213.3
}
