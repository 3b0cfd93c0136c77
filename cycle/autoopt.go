package cycle

import (
	"fmt"
	"math"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/adyreson/ssc/props"
	"github.com/adyreson/ssc/solver"
)

// AutoOptDesignParams drives the fully automatic design optimization: every
// free design variable is chosen internally, including whether the cycle runs
// recompression at all.
type AutoOptDesignParams struct {
	WDotNet float64 // kW
	TMCIn   float64 // K
	TTIn    float64 // K

	DPLT  [2]float64
	DPHT  [2]float64
	DPPC  [2]float64
	DPPHX [2]float64

	UARecTotal float64 // kW/K

	EtaMC float64
	EtaRC float64
	EtaT  float64

	NSubHXRs   int
	PHighLimit float64 // kPa
	NTurbine   float64 // rpm

	Tol    float64
	OptTol float64
}

// AutoOptDesign sweeps the compressor outlet pressure over a bounded window,
// optimizing both a recompression and a simple cycle at each candidate, and
// finalizes the best design found.
func (c *Cycle) AutoOptDesign(par AutoOptDesignParams) error {
	return c.autoOptDesignCore(&par)
}

func (c *Cycle) autoOptDesignCore(par *AutoOptDesignParams) error {
	opt := OptDesignParams{
		WDotNet:    par.WDotNet,
		TMCIn:      par.TMCIn,
		TTIn:       par.TTIn,
		DPLT:       par.DPLT,
		DPHT:       par.DPHT,
		DPPC:       par.DPPC,
		DPPHX:      par.DPPHX,
		UARecTotal: par.UARecTotal,
		EtaMC:      par.EtaMC,
		EtaRC:      par.EtaRC,
		EtaT:       par.EtaT,
		NSubHXRs:   par.NSubHXRs,
		PHighLimit: par.PHighLimit,
		NTurbine:   par.NTurbine,
		Tol:        par.Tol,
		OptTol:     par.OptTol,
	}

	bestEta := 0.0
	var bestDes DesignParams

	// tryBoth optimizes a recompression and a simple cycle with the outlet
	// pressure pinned at pHigh, and returns the better efficiency negated
	// for the minimizer.
	tryBoth := func(pHigh, prGuess float64) float64 {
		o := opt
		o.PMCOutGuess = pHigh
		o.FixedPMCOut = true
		o.PRMCGuess = prGuess
		o.FixedPRMC = false
		o.RecompFracGuess = 0.3
		o.FixedRecompFrac = false
		o.LTFracGuess = 0.5
		o.FixedLTFrac = false

		etaRC := 0.0
		if des, eta, err := c.optDesignCore(&o); err == nil {
			etaRC = eta
			if eta > bestEta {
				bestEta = eta
				bestDes = des
			}
		}

		o.RecompFracGuess = 0.0
		o.FixedRecompFrac = true
		o.LTFracGuess = 0.5
		o.FixedLTFrac = true

		etaS := 0.0
		if des, eta, err := c.optDesignCore(&o); err == nil {
			etaS = eta
			if eta > bestEta {
				bestEta = eta
				bestDes = des
			}
		}
		return -math.Max(etaRC, etaS)
	}

	solver.Fminbr(0.2*par.PHighLimit, par.PHighLimit, 1.0, func(pHigh float64) float64 {
		prGuess := 1.1
		if ppc := props.PPseudocritical(par.TMCIn); pHigh > ppc {
			prGuess = pHigh / ppc
		}
		return tryBoth(pHigh, prGuess)
	})

	// Re-check both configurations with the outlet pressure at the limit.
	prGuess := 2.0
	if bestEta > 0.0 {
		prGuess = bestDes.PMCOut / bestDes.PMCIn
	}
	tryBoth(par.PHighLimit, prGuess)

	if bestEta <= 0.0 {
		return codeErr(errOptInfeasible, "no feasible design in the pressure window")
	}
	if err := c.Design(bestDes); err != nil {
		return err
	}
	return c.FinalizeDesign()
}

// AutoOptHitEtaParams drives the outermost search: find the total recuperator
// conductance at which the auto-optimized design hits a target thermal
// efficiency.
type AutoOptHitEtaParams struct {
	WDotNet float64 // kW
	TMCIn   float64 // K
	TTIn    float64 // K

	DPLT  [2]float64
	DPHT  [2]float64
	DPPC  [2]float64
	DPPHX [2]float64

	EtaThermalTarget float64

	EtaMC float64
	EtaRC float64
	EtaT  float64

	NSubHXRs   int
	PHighLimit float64 // kPa
	NTurbine   float64 // rpm

	Tol    float64
	OptTol float64
}

// Bounds on the conductance-to-power ratio searched by AutoOptDesignHitEta.
const (
	uaNetPowerRatioMin = 1.0e-5 // kW/K per kW
	uaNetPowerRatioMax = 2.0
)

// AutoOptDesignHitEta iterates the total recuperator conductance until the
// auto-optimized design reaches the target thermal efficiency. Inputs that
// are merely unreasonable are reset and reported in the returned message
// string; inputs the model cannot work with return an error.
func (c *Cycle) AutoOptDesignHitEta(par AutoOptHitEtaParams) (string, error) {
	var msgs strings.Builder
	warn := func(format string, args ...interface{}) {
		fmt.Fprintf(&msgs, format+"\n", args...)
	}

	_, tMax, _, pMax := c.fl.Limits()

	// Compressor operation must stay out of the two-phase region.
	if par.TMCIn <= c.fl.TCrit() {
		warn("only single-phase operation is modeled: the compressor inlet temperature %g C must exceed the critical temperature %g C",
			par.TMCIn-273.15, c.fl.TCrit()-273.15)
		return msgs.String(), codeErr(-1, "compressor inlet below the critical temperature")
	}
	if tMCInMax := 70.0 + 273.15; par.TMCIn > tMCInMax {
		warn("the compressor inlet temperature %g C was reset to the maximum allowable %g C",
			par.TMCIn-273.15, tMCInMax-273.15)
		par.TMCIn = tMCInMax
	}
	if tTInMin := 300.0 + 273.15; par.TTIn < tTInMin {
		warn("the turbine inlet temperature %g C was reset to the minimum allowable %g C",
			par.TTIn-273.15, tTInMin-273.15)
		par.TTIn = tTInMin
	}
	if par.TTIn <= par.TMCIn {
		warn("the turbine inlet temperature %g C is colder than the compressor inlet temperature %g C",
			par.TTIn-273.15, par.TMCIn-273.15)
		return msgs.String(), codeErr(-1, "turbine inlet colder than compressor inlet")
	}
	if par.TTIn >= tMax {
		warn("the turbine inlet temperature %g C is hotter than the property code allows (%g C)",
			par.TTIn-273.15, tMax-273.15)
		return msgs.String(), codeErr(-1, "turbine inlet above the property limit")
	}

	clampEta := func(eta *float64, name string) {
		if *eta > 1.0 {
			warn("the %s efficiency %g was reset to the theoretical maximum 1.0", name, *eta)
			*eta = 1.0
		}
		if *eta < 0.1 {
			warn("the %s efficiency %g was raised to the internal limit 0.1 for solution stability", name, *eta)
			*eta = 0.1
		}
	}
	clampEta(&par.EtaMC, "main compressor")
	clampEta(&par.EtaRC, "recompressor")
	clampEta(&par.EtaT, "turbine")

	if par.PHighLimit >= pMax {
		warn("the upper pressure limit %g MPa was reset to the property code limit %g MPa",
			par.PHighLimit/1000.0, pMax/1000.0)
		par.PHighLimit = pMax
	}
	if pHighLimitMin := 10.0e3; par.PHighLimit <= pHighLimitMin {
		warn("the upper pressure limit %g MPa must exceed %g MPa for solution stability",
			par.PHighLimit/1000.0, pHighLimitMin/1000.0)
		return msgs.String(), codeErr(-1, "upper pressure limit too low")
	}

	if par.EtaThermalTarget <= 0.0 {
		warn("the target thermal efficiency %g must be greater than zero", par.EtaThermalTarget)
		return msgs.String(), codeErr(-1, "target efficiency not positive")
	}
	if etaCarnot := 1.0 - par.TMCIn/par.TTIn; par.EtaThermalTarget >= etaCarnot {
		warn("the target thermal efficiency %g must be less than the Carnot efficiency %g for these temperatures",
			par.EtaThermalTarget, etaCarnot)
		return msgs.String(), codeErr(-1, "target efficiency at or above Carnot")
	}

	auto := AutoOptDesignParams{
		WDotNet:    par.WDotNet,
		TMCIn:      par.TMCIn,
		TTIn:       par.TTIn,
		DPLT:       par.DPLT,
		DPHT:       par.DPHT,
		DPPC:       par.DPPC,
		DPPHX:      par.DPPHX,
		EtaMC:      par.EtaMC,
		EtaRC:      par.EtaRC,
		EtaT:       par.EtaT,
		NSubHXRs:   par.NSubHXRs,
		PHighLimit: par.PHighLimit,
		NTurbine:   par.NTurbine,
		Tol:        par.Tol,
		OptTol:     par.OptTol,
	}
	uaGuess := 0.1 * par.WDotNet
	auto.UARecTotal = uaGuess

	if err := c.autoOptDesignCore(&auto); err != nil {
		warn("cannot optimize the cycle with the current inputs")
		return msgs.String(), err
	}
	diff := c.desSolved.EtaThermal - par.EtaThermalTarget

	// False-position iteration on the conductance; until both bounds exist,
	// step geometrically and then jump to the ratio bounds.
	lowSet, highSet := false, false
	var xLow, yLow, xHigh, yHigh float64
	calls := 1
	for math.Abs(diff) > par.Tol {
		calls++
		if diff > 0.0 { // efficiency too high: conductance too large
			lowSet = true
			xLow = uaGuess
			yLow = diff
			switch {
			case highSet:
				uaGuess = -yHigh*(xLow-xHigh)/(yLow-yHigh) + xHigh
			case calls > 5:
				uaGuess = uaNetPowerRatioMin * par.WDotNet
			default:
				uaGuess *= 0.5
			}
			if xLow/par.WDotNet <= uaNetPowerRatioMin {
				warn("the target thermal efficiency %g is too small to reach with these inputs; the lowest achievable is roughly %g",
					par.EtaThermalTarget, c.desSolved.EtaThermal)
				return msgs.String(), codeErr(-1, "target efficiency below the achievable range")
			}
		} else {
			highSet = true
			xHigh = uaGuess
			yHigh = diff
			switch {
			case lowSet:
				uaGuess = -yHigh*(xLow-xHigh)/(yLow-yHigh) + xHigh
			case calls > 5:
				uaGuess = uaNetPowerRatioMax * par.WDotNet
			default:
				uaGuess *= 2.5
			}
			if xHigh/par.WDotNet >= uaNetPowerRatioMax {
				warn("the target thermal efficiency %g is too large to reach with these inputs; the highest achievable is roughly %g",
					par.EtaThermalTarget, c.desSolved.EtaThermal)
				return msgs.String(), codeErr(-1, "target efficiency above the achievable range")
			}
		}

		log.WithFields(log.Fields{
			"call":     calls,
			"ua_guess": uaGuess,
			"diff_eta": diff,
		}).Debug("hit-eta conductance iteration")

		auto.UARecTotal = uaGuess
		if err := c.autoOptDesignCore(&auto); err != nil {
			warn("cannot optimize the cycle with the current inputs")
			return msgs.String(), err
		}
		diff = c.desSolved.EtaThermal - par.EtaThermalTarget
	}

	log.WithFields(log.Fields{
		"calls":       calls,
		"ua_total":    auto.UARecTotal,
		"eta_thermal": c.desSolved.EtaThermal,
	}).Info("hit-eta search converged")
	return msgs.String(), nil
}
