package cycle

import "fmt"

// Error is a coded solver failure. Codes below 100 match the per-loop
// failure taxonomy of the design and off-design solvers; property-routine
// codes bubble up unchanged inside Cause.
type Error struct {
	Code  int
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cycle: code %d: %s: %v", e.Code, e.Msg, e.Cause)
	}
	return fmt.Sprintf("cycle: code %d: %s", e.Code, e.Msg)
}

func (e *Error) Unwrap() error { return e.Cause }

func codeErr(code int, msg string) *Error {
	return &Error{Code: code, Msg: msg}
}

func propErr(err error) *Error {
	return &Error{Code: errProps, Msg: "property routine failed", Cause: err}
}

// Code extracts the solver code from an error, or -1.
func Code(err error) int {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return -1
}

// Solver error codes. The per-loop codes identify which iteration failed.
const (
	errProps = 3 // property routine failure

	errHXNegQ         = 4  // negative heat transfer rate
	errHXInletTemp    = 5  // hot inlet colder than cold inlet
	errHXHotDP        = 6  // hot-side pressure rise
	errHXColdDP       = 7  // cold-side pressure rise
	errHXHotInletProp = 9  // hot-inlet property failure
	errSecondLaw      = 11 // internal temperature cross
	errHXHotProp      = 12 // hot-node property failure
	errHXColdProp     = 13 // cold-node property failure
	errHXNaNUA        = 14 // conductance integration produced NaN

	errCompSurge = 1 // flow coefficient below surge limit
	errCompRange = 2 // flow coefficient above map range

	errNoNetPower    = 25  // specific works cannot produce net power
	errTargetBracket = 26  // target not bracketed by inlet pressure sweep
	errNegMassFlow   = 29  // mass flow rate went negative
	errInnerNoConv   = 31  // inner temperature loop exhausted iterations
	errOuterNoConv   = 35  // outer temperature loop exhausted iterations
	errMassNoConv    = 42  // off-design mass-flow loop exhausted iterations
	errTargetNoConv  = 82  // target iteration exhausted
	errTargetNotMet  = 98  // no optimizer point reached the target
	errMaxOutput     = 99  // max-power probe found no feasible point
	errOptInfeasible = 111 // optimizer found no feasible point
	errTargetTooBig  = 123 // target above the maximum achievable output
)

// ErrorList collects failures from parameter sweeps.
type ErrorList []error

func (e ErrorList) Error() string {
	var str string
	for i, err := range e {
		if err != nil {
			str += fmt.Sprintf("  case %d: %s", i, err.Error())
		}
	}
	return str
}

func (e ErrorList) AllNil() bool {
	for _, err := range e {
		if err != nil {
			return false
		}
	}
	return true
}
