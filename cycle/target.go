package cycle

import "math"

// TargetODParams seeks the main compressor inlet pressure at which the cycle
// delivers a target net power output or primary heat exchanger duty, with the
// remaining off-design inputs held fixed.
type TargetODParams struct {
	TMCIn      float64 // K
	TTIn       float64 // K
	RecompFrac float64
	NMC        float64 // rpm
	NT         float64 // rpm
	NSubHXRs   int

	Target    float64 // kW
	TargetIsQ bool    // seek heat input instead of net power

	LowestPres  float64 // kPa, sweep lower bound
	HighestPres float64 // kPa, sweep upper bound
	FineSweep   bool    // 50 sweep intervals instead of 20

	Tol float64
}

// TargetOffDesign finds the compressor inlet pressure at which the finalized
// cycle delivers par.Target. Code 26 means the sweep never bracketed the
// target, code 82 that the iteration cap was exhausted.
func (c *Cycle) TargetOffDesign(par TargetODParams) error {
	_, err := c.targetOffDesignCore(par)
	return err
}

// targetOffDesignCore returns the off-design parameters of the converged
// point alongside the solution stored on the cycle.
func (c *Cycle) targetOffDesignCore(par TargetODParams) (OffDesignParams, error) {
	const maxIter = 100

	intervals := 20
	if par.FineSweep {
		intervals = 50
	}

	od := OffDesignParams{
		TMCIn:      par.TMCIn,
		TTIn:       par.TTIn,
		RecompFrac: par.RecompFrac,
		NMC:        par.NMC,
		NT:         par.NT,
		NSubHXRs:   par.NSubHXRs,
		Tol:        par.Tol,
	}

	pLow := par.LowestPres
	pHigh := math.Min(par.HighestPres, 12000.0)

	// Sweep the inlet pressure range for an interval bracketing the target.
	p0, step := pLow, (pHigh-pLow)/float64(intervals)
	leftResid := -1.0e12
	rightResid := 1.0e12
	lowerFound, upperFound := false, false
	for i := 0; i <= intervals; i++ {
		pGuess := p0 + float64(i)*step
		od.PMCIn = pGuess
		if err := c.offDesignCore(od); err != nil {
			continue
		}
		if c.odSolved.Pres[MCOut] > c.desPar.PHighLimit*1.2 {
			break // compressor outlet pressure is getting too big
		}
		value := c.odSolved.WDotNet
		if par.TargetIsQ {
			value = c.odSolved.QDotIn
		}
		resid := value - par.Target
		if resid >= 0.0 { // value is above target
			if resid < rightResid {
				pHigh = pGuess
				rightResid = resid
				upperFound = true
			}
		} else { // both residuals are negative here
			if resid > leftResid {
				pLow = pGuess
				leftResid = resid
				lowerFound = true
			}
		}
		if lowerFound && upperFound {
			break
		}
	}
	if !lowerFound || !upperFound {
		return od, codeErr(errTargetBracket, "inlet pressure sweep did not bracket the target")
	}

	// Secant iteration between the bounds, starting with bisection.
	pGuess := 0.5 * (pLow + pHigh)
	lastP := 1.0e12
	lastResid := 1.23
	retry := 0
	for iter := 1; iter <= maxIter; iter++ {
		od.PMCIn = pGuess
		if err := c.offDesignCore(od); err != nil {
			// pick a fresh guess strictly inside the current bounds
			retry++
			pGuess = pLow + (pHigh-pLow)*float64(retry%9+1)/10.0
			continue
		}

		value := c.odSolved.WDotNet
		if par.TargetIsQ {
			value = c.odSolved.QDotIn
		}
		resid := value - par.Target
		if resid >= 0.0 {
			if resid/par.Target <= par.Tol {
				return od, nil
			}
			pHigh = pGuess
		} else {
			if -resid/par.Target <= par.Tol {
				return od, nil
			}
			pLow = pGuess
		}
		if math.Abs(pHigh-pLow) < 0.1 { // interval is tiny; call it converged
			return od, nil
		}

		pSecant := pGuess - resid*(lastP-pGuess)/(lastResid-resid)
		lastP, lastResid = pGuess, resid
		pGuess = pSecant
		if pGuess <= pLow || pGuess >= pHigh { // secant overshot, use bisection
			pGuess = 0.5 * (pLow + pHigh)
		}
	}
	return od, codeErr(errTargetNoConv, "target iteration exceeded its cap")
}
