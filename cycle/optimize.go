package cycle

import (
	"math"

	"gonum.org/v1/gonum/optimize"
)

// maximize runs a derivative-free simplex search of f starting at x0. The
// objective is responsible for rejecting points outside its feasible box by
// returning zero; callers read the best point out of the closure, so the
// optimizer's own status is not interesting.
func maximize(f func(x []float64) float64, x0 []float64, tol float64) {
	problem := optimize.Problem{
		Func: func(x []float64) float64 { return -f(x) },
	}
	settings := &optimize.Settings{
		Converger: &optimize.FunctionConverge{
			Absolute:   1.0e-10,
			Relative:   tol,
			Iterations: 100,
		},
	}
	optimize.Minimize(problem, x0, settings, &optimize.NelderMead{})
}

// OptODParams drives an off-design optimization. Each free variable carries a
// guess and a flag pinning it at the guess.
type OptODParams struct {
	TMCIn    float64 // K
	TTIn     float64 // K
	MaxW     bool    // maximize net power instead of thermal efficiency
	NSubHXRs int

	PMCInGuess      float64 // kPa
	FixedPMCIn      bool
	RecompFracGuess float64
	FixedRecompFrac bool
	NMCGuess        float64 // rpm
	FixedNMC        bool
	NTGuess         float64 // rpm
	FixedNT         bool

	Tol    float64
	OptTol float64
}

// OptimalOffDesign searches the free off-design inputs for the operating
// point maximizing net power or thermal efficiency, then re-solves the cycle
// there. Code 111 means no evaluated point was feasible.
func (c *Cycle) OptimalOffDesign(par OptODParams) error {
	return c.optimalOffDesignCore(&par)
}

func (c *Cycle) optimalOffDesignCore(par *OptODParams) error {
	od := OffDesignParams{
		TMCIn:    par.TMCIn,
		TTIn:     par.TTIn,
		NSubHXRs: par.NSubHXRs,
		Tol:      par.Tol,
	}

	best := 0.0
	var bestOD OffDesignParams
	objective := func(v []float64) float64 {
		i := 0
		if !par.FixedPMCIn {
			od.PMCIn = v[i]
			i++
			if od.PMCIn < 100.0 || od.PMCIn > c.desPar.PHighLimit {
				return 0.0
			}
		} else {
			od.PMCIn = par.PMCInGuess
		}
		if !par.FixedRecompFrac {
			od.RecompFrac = v[i]
			i++
			if od.RecompFrac > 1.0 {
				return 0.0
			}
		} else {
			od.RecompFrac = par.RecompFracGuess
		}
		if !par.FixedNMC {
			od.NMC = v[i]
			i++
			if od.NMC < 1.0 {
				return 0.0
			}
		} else {
			od.NMC = par.NMCGuess
		}
		if !par.FixedNT {
			od.NT = v[i]
			if od.NT < 1.0 {
				return 0.0
			}
		} else {
			od.NT = par.NTGuess
		}
		if od.NT <= 0.0 {
			od.NT = od.NMC // link turbine and compressor shafts
		}
		if od.RecompFrac < 0.0 {
			return 0.0
		}

		if err := c.offDesignCore(od); err != nil {
			return 0.0
		}
		value := c.odSolved.EtaThermal
		if par.MaxW {
			value = c.odSolved.WDotNet
		}
		value = c.penalizeOverpressure(value, c.odSolved.Pres[MCOut])
		if value > best {
			best = value
			bestOD = od
		}
		return value
	}

	x := make([]float64, 0, 4)
	if !par.FixedPMCIn {
		x = append(x, par.PMCInGuess)
	}
	if !par.FixedRecompFrac {
		x = append(x, par.RecompFracGuess)
	}
	if !par.FixedNMC {
		x = append(x, par.NMCGuess)
	}
	if !par.FixedNT {
		x = append(x, par.NTGuess)
	}

	if len(x) > 0 {
		maximize(objective, x, par.OptTol)
	} else {
		objective(nil)
	}
	if best <= 0.0 {
		return codeErr(errOptInfeasible, "no feasible off-design point found")
	}
	return c.offDesignCore(bestOD)
}

// penalizeOverpressure scales an objective value down in proportion to how
// far the compressor outlet pressure exceeds the design limit, steering the
// optimizer back inside without a hard wall.
func (c *Cycle) penalizeOverpressure(value, pMCOut float64) float64 {
	const penalty = 5.0
	lim := c.desPar.PHighLimit
	if pMCOut > lim {
		value *= 1.0 - penalty*math.Max(0.0, (pMCOut-lim)/lim)
	}
	return value
}

// OptDesignParams drives a design-point optimization. The main compressor
// inlet pressure is searched through the pressure ratio PRMC, and the total
// recuperator conductance is split between the two recuperators by LTFrac.
type OptDesignParams struct {
	WDotNet float64 // kW
	TMCIn   float64 // K
	TTIn    float64 // K

	DPLT  [2]float64
	DPHT  [2]float64
	DPPC  [2]float64
	DPPHX [2]float64

	UARecTotal float64 // kW/K, conductance shared by the two recuperators

	EtaMC float64
	EtaRC float64
	EtaT  float64

	NSubHXRs   int
	PHighLimit float64 // kPa
	NTurbine   float64 // rpm

	PMCOutGuess     float64 // kPa
	FixedPMCOut     bool
	PRMCGuess       float64
	FixedPRMC       bool
	RecompFracGuess float64
	FixedRecompFrac bool
	LTFracGuess     float64
	FixedLTFrac     bool

	Tol    float64
	OptTol float64
}

// OptDesign searches the free design variables for the maximum thermal
// efficiency, re-solves the best design, and finalizes it.
func (c *Cycle) OptDesign(par OptDesignParams) error {
	if _, _, err := c.optDesignCore(&par); err != nil {
		return err
	}
	return c.FinalizeDesign()
}

// optDesignCore returns the best design parameters found and their thermal
// efficiency; on success the cycle holds the re-solved design iterate.
func (c *Cycle) optDesignCore(par *OptDesignParams) (DesignParams, float64, error) {
	des := DesignParams{
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
		NTurbine:   par.NTurbine,
		PHighLimit: par.PHighLimit,
		Tol:        par.Tol,
	}

	bestEta := 0.0
	var bestDes DesignParams
	objective := func(v []float64) float64 {
		d := des
		i := 0
		if !par.FixedPMCOut {
			d.PMCOut = v[i]
			i++
			if d.PMCOut > par.PHighLimit || d.PMCOut < 100.0 {
				return 0.0
			}
		} else {
			d.PMCOut = par.PMCOutGuess
		}
		pr := par.PRMCGuess
		if !par.FixedPRMC {
			pr = v[i]
			i++
			if pr > 50.0 || pr < 1.0e-4 {
				return 0.0
			}
		}
		d.PMCIn = d.PMCOut / pr
		if d.PMCIn >= d.PMCOut {
			return 0.0
		}
		if d.PMCIn <= 100.0 {
			return 0.0
		}
		if !par.FixedRecompFrac {
			d.RecompFrac = v[i]
			i++
			if d.RecompFrac < 0.0 || d.RecompFrac > 1.0 {
				return 0.0
			}
		} else {
			d.RecompFrac = par.RecompFracGuess
		}
		lt := par.LTFracGuess
		if !par.FixedLTFrac {
			lt = v[i]
			if lt < 0.0 || lt > 1.0 {
				return 0.0
			}
		}
		d.UALT = par.UARecTotal * lt
		d.UAHT = par.UARecTotal * (1.0 - lt)

		if err := c.Design(d); err != nil {
			return 0.0
		}
		if c.etaThermalLast > bestEta {
			bestEta = c.etaThermalLast
			bestDes = d
		}
		return c.etaThermalLast
	}

	x := make([]float64, 0, 4)
	if !par.FixedPMCOut {
		x = append(x, par.PMCOutGuess)
	}
	if !par.FixedPRMC {
		x = append(x, par.PRMCGuess)
	}
	if !par.FixedRecompFrac {
		x = append(x, par.RecompFracGuess)
	}
	if !par.FixedLTFrac {
		x = append(x, par.LTFracGuess)
	}

	if len(x) > 0 {
		maximize(objective, x, par.OptTol)
	} else {
		objective(nil)
	}
	if bestEta <= 0.0 {
		return DesignParams{}, 0, codeErr(errOptInfeasible, "no feasible design point found")
	}
	if err := c.Design(bestDes); err != nil {
		return bestDes, bestEta, err
	}
	return bestDes, bestEta, nil
}

// OptTargetODParams drives the target-seeking optimization: hit a net power
// or heat duty target while the free shaft speeds and recompression fraction
// maximize thermal efficiency.
type OptTargetODParams struct {
	TMCIn float64 // K
	TTIn  float64 // K

	Target    float64 // kW
	TargetIsQ bool

	LowestPres  float64 // kPa
	HighestPres float64 // kPa
	FineSweep   bool

	RecompFracGuess float64
	FixedRecompFrac bool
	NMCGuess        float64 // rpm
	FixedNMC        bool
	NTGuess         float64 // rpm
	FixedNT         bool

	NSubHXRs int
	Tol      float64
	OptTol   float64
}

// getMaxOutputOD probes for the largest achievable output of the cycle by
// repeatedly maximizing net power from increasing inlet pressure guesses.
// The second success confirms the first was not an optimization near-miss.
func (c *Cycle) getMaxOutputOD(par OptTargetODParams) (float64, error) {
	opt := OptODParams{
		TMCIn:           par.TMCIn,
		TTIn:            par.TTIn,
		MaxW:            true,
		NSubHXRs:        par.NSubHXRs,
		RecompFracGuess: par.RecompFracGuess,
		FixedRecompFrac: par.FixedRecompFrac,
		NMCGuess:        par.NMCGuess * 1.25, // max power usually wants overspeed
		FixedNMC:        par.FixedNMC,
		NTGuess:         par.NTGuess,
		FixedNT:         par.FixedNT,
		Tol:             par.Tol,
		OptTol:          par.OptTol,
	}

	pLow := par.LowestPres
	pointFound := false
	for {
		opt.PMCInGuess = pLow
		opt.FixedPMCIn = false
		if err := c.optimalOffDesignCore(&opt); err == nil {
			od := c.odSolved
			opt.RecompFracGuess = od.MDotRC / od.MDotT
			opt.NMCGuess = od.NMC
			opt.NTGuess = od.NT
			pLow = od.Pres[MCIn]
			if pointFound {
				break
			}
			pointFound = true
		} else {
			pLow *= 1.1
		}
		if pLow > par.HighestPres {
			break
		}
	}
	if !pointFound {
		return 0, codeErr(errMaxOutput, "no feasible operating point in the pressure range")
	}
	if par.TargetIsQ {
		return c.odSolved.QDotIn, nil
	}
	return c.odSolved.WDotNet, nil
}

// OptimalTargetOffDesign verifies a net power target is achievable before
// seeking the most efficient operating point that hits it. When the target
// exceeds the achievable maximum it returns code 123 with the max-output
// operating point left on the cycle.
func (c *Cycle) OptimalTargetOffDesign(par OptTargetODParams) error {
	if !par.TargetIsQ { // the max-output probe is only meaningful for a power target
		biggest, err := c.getMaxOutputOD(par)
		if err != nil {
			return err
		}
		if biggest < par.Target {
			return codeErr(errTargetTooBig, "target exceeds the maximum achievable output")
		}
	}
	return c.OptimalTargetOffDesignNoCheck(par)
}

// OptimalTargetOffDesignNoCheck seeks the free inputs maximizing thermal
// efficiency subject to hitting the target, without probing achievability
// first. Code 98 means no evaluated point reached the target.
func (c *Cycle) OptimalTargetOffDesignNoCheck(par OptTargetODParams) error {
	tar := TargetODParams{
		TMCIn:       par.TMCIn,
		TTIn:        par.TTIn,
		NSubHXRs:    par.NSubHXRs,
		Target:      par.Target,
		TargetIsQ:   par.TargetIsQ,
		LowestPres:  par.LowestPres,
		HighestPres: par.HighestPres,
		FineSweep:   par.FineSweep,
		Tol:         par.Tol,
	}

	bestEta := 0.0
	var bestOD OffDesignParams
	objective := func(v []float64) float64 {
		t := tar
		i := 0
		if !par.FixedRecompFrac {
			t.RecompFrac = v[i]
			i++
			if t.RecompFrac > 1.0 {
				return 0.0
			}
		} else {
			t.RecompFrac = par.RecompFracGuess
		}
		if !par.FixedNMC {
			t.NMC = v[i]
			i++
			if t.NMC < 1.0 {
				return 0.0
			}
		} else {
			t.NMC = par.NMCGuess
		}
		if !par.FixedNT {
			t.NT = v[i]
			if t.NT < 1.0 {
				return 0.0
			}
		} else {
			t.NT = par.NTGuess
		}
		if t.NT <= 0.0 {
			t.NT = t.NMC
		}
		if t.RecompFrac < 0.0 {
			return 0.0
		}

		od, err := c.targetOffDesignCore(t)
		if err != nil {
			return 0.0
		}
		eta := c.penalizeOverpressure(c.odSolved.EtaThermal, c.odSolved.Pres[MCOut])
		if eta > bestEta {
			bestEta = eta
			bestOD = od
		}
		return eta
	}

	x := make([]float64, 0, 3)
	if !par.FixedRecompFrac {
		x = append(x, par.RecompFracGuess)
	}
	if !par.FixedNMC {
		x = append(x, par.NMCGuess)
	}
	if !par.FixedNT {
		x = append(x, par.NTGuess)
	}

	if len(x) > 0 {
		maximize(objective, x, par.OptTol)
	} else {
		objective(nil)
	}
	if bestEta <= 0.0 {
		return codeErr(errTargetNotMet, "no operating point reached the target")
	}
	return c.offDesignCore(bestOD)
}
