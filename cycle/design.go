package cycle

import (
	"math"

	"github.com/adyreson/ssc/props"
	"github.com/adyreson/ssc/solver"
)

const (
	designMaxIter = 500
	tempTolerance = 1.0e-6 // temperature differences below this are considered zero
	noRecupUA     = 1.0e-12
	minRecompFrac = 1.0e-12
)

// dropCold applies a cold-stream pressure drop downstream of pIn. Negative
// dp is a fraction of pIn, non-negative an absolute drop in kPa.
func dropCold(pIn, dp float64) float64 {
	if dp < 0.0 {
		return pIn - pIn*math.Abs(dp)
	}
	return pIn - dp
}

// riseHot back-calculates the upstream pressure of a hot-stream drop ending
// at pOut.
func riseHot(pOut, dp float64) float64 {
	if dp < 0.0 {
		return pOut / (1.0 - math.Abs(dp))
	}
	return pOut + dp
}

// Design solves the cycle at the given design parameters. On success the
// state points, mass flows, and performance metrics of the design iterate
// are stored; FinalizeDesign sizes the turbomachinery from them.
func (c *Cycle) Design(par DesignParams) error {
	c.desPar = par
	return c.designCore()
}

func (c *Cycle) designCore() error {
	fl := c.fl
	par := &c.desPar

	var mDotT, mDotMC, mDotRC, qDotLT, qDotHT, uaLTCalc, uaHTCalc float64

	c.temp[MCIn] = par.TMCIn
	c.pres[MCIn] = par.PMCIn
	c.pres[MCOut] = par.PMCOut
	c.temp[TurbineIn] = par.TTIn

	// Pressure drops fully define the pressures at all states.
	c.pres[LTRColdOut] = dropCold(c.pres[MCOut], par.DPLT[0])
	if par.UALT < noRecupUA {
		c.pres[LTRColdOut] = c.pres[MCOut]
	}
	c.pres[MixerOut] = c.pres[LTRColdOut] // no pressure drop in mixing valve
	c.pres[RCOut] = c.pres[LTRColdOut]
	c.pres[HTRColdOut] = dropCold(c.pres[MixerOut], par.DPHT[0])
	if par.UAHT < noRecupUA {
		c.pres[HTRColdOut] = c.pres[MixerOut]
	}
	c.pres[TurbineIn] = dropCold(c.pres[HTRColdOut], par.DPPHX[0])
	c.pres[LTRHotOut] = riseHot(c.pres[MCIn], par.DPPC[1])
	c.pres[HTRHotOut] = riseHot(c.pres[LTRHotOut], par.DPLT[1])
	if par.UALT < noRecupUA {
		c.pres[HTRHotOut] = c.pres[LTRHotOut]
	}
	c.pres[TurbineOut] = riseHot(c.pres[HTRHotOut], par.DPHT[1])
	if par.UAHT < noRecupUA {
		c.pres[TurbineOut] = c.pres[HTRHotOut]
	}

	// Equivalent isentropic efficiencies, if polytropic values were given.
	etaMC := par.EtaMC
	if par.EtaMC < 0.0 {
		var err error
		etaMC, err = isenEtaFromPolyEta(fl, c.temp[MCIn], c.pres[MCIn], c.pres[MCOut], math.Abs(par.EtaMC), true)
		if err != nil {
			return err
		}
	}
	etaT := par.EtaT
	if par.EtaT < 0.0 {
		var err error
		etaT, err = isenEtaFromPolyEta(fl, c.temp[TurbineIn], c.pres[TurbineIn], c.pres[TurbineOut], math.Abs(par.EtaT), false)
		if err != nil {
			return err
		}
	}

	// Main compressor and turbine outlet states and specific works.
	in, out, wMC, err := calcOutlet(fl, c.temp[MCIn], c.pres[MCIn], c.pres[MCOut], etaMC, true)
	if err != nil {
		return err
	}
	c.setNode(MCIn, in)
	c.setNode(MCOut, out)

	in, out, wT, err := calcOutlet(fl, c.temp[TurbineIn], c.pres[TurbineIn], c.pres[TurbineOut], etaT, false)
	if err != nil {
		return err
	}
	c.setNode(TurbineIn, in)
	c.setNode(TurbineOut, out)

	// Check that this cycle can produce power at all, probing the
	// recompressor from the compressor outlet temperature.
	wRC := 0.0
	if par.RecompFrac >= minRecompFrac {
		etaRC := par.EtaRC
		if par.EtaRC < 0.0 {
			etaRC, err = isenEtaFromPolyEta(fl, c.temp[MCOut], c.pres[LTRHotOut], c.pres[RCOut], math.Abs(par.EtaRC), true)
			if err != nil {
				return err
			}
		}
		_, _, wRC, err = calcOutlet(fl, c.temp[MCOut], c.pres[LTRHotOut], c.pres[RCOut], etaRC, true)
		if err != nil {
			return err
		}
	}
	if wMC+wRC+wT <= 0.0 {
		return codeErr(errNoNetPower, "positive net power is impossible with these parameters")
	}

	// Outer iteration on the high-temp recuperator hot outlet temperature,
	// matching UA_HT.
	t8 := solver.NewBracket(c.temp[MCOut], c.temp[TurbineOut], 0)
	if par.UAHT < noRecupUA { // no iteration necessary
		t8.Lo = c.temp[TurbineOut]
		t8.X = c.temp[TurbineOut]
		uaHTCalc = 0.0
	} else {
		t8.X = 0.5 * (t8.Lo + t8.Hi)
		// with T8 at the turbine outlet the calculated UA is zero
		t8.SeedLast(c.temp[TurbineOut], par.UAHT)
	}
	c.temp[HTRHotOut] = t8.X

	var minDTLT, minDTHT float64
	outerConverged := false
	for t8Iter := 0; t8Iter < designMaxIter; t8Iter++ {
		st, perr := fl.TP(c.temp[HTRHotOut], c.pres[HTRHotOut])
		if perr != nil {
			return propErr(perr)
		}
		c.setNode(HTRHotOut, st)

		// Inner iteration on the low-temp recuperator hot outlet
		// temperature, matching UA_LT.
		t9 := solver.NewBracket(c.temp[MCOut], c.temp[HTRHotOut], 0)
		if par.UALT < noRecupUA {
			t9.Lo = c.temp[HTRHotOut]
			t9.X = c.temp[HTRHotOut]
			uaLTCalc = 0.0
		} else {
			t9.X = 0.5 * (t9.Lo + t9.Hi)
			t9.SeedLast(c.temp[HTRHotOut], par.UALT)
		}
		c.temp[LTRHotOut] = t9.X

		innerConverged := false
		for t9Iter := 0; t9Iter < designMaxIter; t9Iter++ {
			// Recompressor outlet state and specific work at the current
			// LTR hot outlet temperature.
			if par.RecompFrac >= minRecompFrac {
				etaRC := par.EtaRC
				if par.EtaRC < 0.0 {
					etaRC, err = isenEtaFromPolyEta(fl, c.temp[LTRHotOut], c.pres[LTRHotOut], c.pres[RCOut], math.Abs(par.EtaRC), true)
					if err != nil {
						return err
					}
				}
				var rcIn, rcOut props.State
				rcIn, rcOut, wRC, err = calcOutlet(fl, c.temp[LTRHotOut], c.pres[LTRHotOut], c.pres[RCOut], etaRC, true)
				if err != nil {
					return err
				}
				c.setNode(LTRHotOut, rcIn)
				c.setNode(RCOut, rcOut)
			} else {
				wRC = 0.0 // the recompressor does not exist
				st, perr := fl.TP(c.temp[LTRHotOut], c.pres[LTRHotOut])
				if perr != nil {
					return propErr(perr)
				}
				c.setNode(LTRHotOut, st)
				c.setNode(RCOut, st) // state 10 tracks state 9
				c.pres[RCOut] = c.pres[LTRColdOut]
			}

			// The specific works determine the required mass flow rates.
			mDotT = c.massFlowForPower(wMC, wRC, wT)
			if mDotT < 0.0 {
				return codeErr(errNegMassFlow, "mass flow rate went negative")
			}
			mDotRC = mDotT * par.RecompFrac
			mDotMC = mDotT - mDotRC

			if par.UALT < noRecupUA {
				qDotLT = 0.0
			} else {
				qDotLT = mDotT * (c.enth[HTRHotOut] - c.enth[LTRHotOut])
			}

			var hxErr error
			uaLTCalc, minDTLT, hxErr = calcHXRUA(fl, par.NSubHXRs, qDotLT, mDotMC, mDotT,
				c.temp[MCOut], c.temp[HTRHotOut],
				c.pres[MCOut], c.pres[LTRColdOut], c.pres[HTRHotOut], c.pres[LTRHotOut])
			if hxErr != nil {
				if Code(hxErr) == errSecondLaw { // LTR hot outlet temperature is too low
					c.temp[LTRHotOut] = t9.NarrowLo()
					continue
				}
				return hxErr
			}

			resid := par.UALT - uaLTCalc
			if math.Abs(resid) < 1.0e-12 { // catches the no-LTR case
				innerConverged = true
				break
			}
			if resid < 0.0 {
				if math.Abs(resid)/par.UALT < par.Tol {
					innerConverged = true
					break
				}
			} else {
				if resid/par.UALT < par.Tol {
					innerConverged = true
					break
				}
				if minDTLT < tempTolerance { // pinched; a larger UA is unreachable
					innerConverged = true
					break
				}
			}
			c.temp[LTRHotOut] = t9.NextSecant(resid, resid < 0.0)
		}
		if !innerConverged {
			return codeErr(errInnerNoConv, "low-temp recuperator loop did not converge")
		}

		// State 3 follows from the energy balance on the LTR cold stream.
		st, perr = fl.PH(c.pres[LTRColdOut], c.enth[MCOut]+qDotLT/mDotMC)
		if perr != nil {
			return propErr(perr)
		}
		c.setNode(LTRColdOut, st)

		// Mixing valve.
		if par.RecompFrac >= minRecompFrac {
			h4 := (1.0-par.RecompFrac)*c.enth[LTRColdOut] + par.RecompFrac*c.enth[RCOut]
			st, perr = fl.PH(c.pres[MixerOut], h4)
			if perr != nil {
				return propErr(perr)
			}
			c.setNode(MixerOut, st)
		} else { // state 4 equals state 3
			c.setNode(MixerOut, c.node(LTRColdOut))
			c.pres[MixerOut] = c.pres[LTRColdOut]
		}

		// Second-law check at the HTR hot outlet.
		if c.temp[MixerOut] >= c.temp[HTRHotOut] {
			c.temp[HTRHotOut] = t8.NarrowLo()
			continue
		}

		if par.UAHT < noRecupUA {
			qDotHT = 0.0
		} else {
			qDotHT = mDotT * (c.enth[TurbineOut] - c.enth[HTRHotOut])
		}

		var hxErr error
		uaHTCalc, minDTHT, hxErr = calcHXRUA(fl, par.NSubHXRs, qDotHT, mDotT, mDotT,
			c.temp[MixerOut], c.temp[TurbineOut],
			c.pres[MixerOut], c.pres[HTRColdOut], c.pres[TurbineOut], c.pres[HTRHotOut])
		if hxErr != nil {
			if Code(hxErr) == errSecondLaw { // HTR hot outlet temperature is too low
				c.temp[HTRHotOut] = t8.NarrowLo()
				continue
			}
			return hxErr
		}

		resid := par.UAHT - uaHTCalc
		if math.Abs(resid) < 1.0e-12 { // catches the no-HTR case
			outerConverged = true
			break
		}
		if resid < 0.0 {
			if math.Abs(resid)/par.UAHT < par.Tol {
				outerConverged = true
				break
			}
		} else {
			if resid/par.UAHT < par.Tol {
				outerConverged = true
				break
			}
			if minDTHT < tempTolerance {
				outerConverged = true
				break
			}
		}
		c.temp[HTRHotOut] = t8.NextSecant(resid, resid < 0.0)
	}
	if !outerConverged {
		return codeErr(errOuterNoConv, "high-temp recuperator loop did not converge")
	}

	// State 5 follows from the energy balance on the HTR cold stream.
	st, perr := fl.PH(c.pres[HTRColdOut], c.enth[MixerOut]+qDotHT/mDotT)
	if perr != nil {
		return propErr(perr)
	}
	c.setNode(HTRColdOut, st)

	c.initLTDesign(qDotLT, uaLTCalc, minDTLT, mDotMC, mDotT)
	c.initHTDesign(qDotHT, uaHTCalc, minDTHT, mDotT)

	c.PHX.Design = HXDesign{
		DPDesign:   [2]float64{c.pres[HTRColdOut] - c.pres[TurbineIn], 0.0},
		MDotDesign: [2]float64{mDotT, 0.0},
		QDotDesign: mDotT * (c.enth[TurbineIn] - c.enth[HTRColdOut]),
		NSub:       par.NSubHXRs,
	}
	c.PC.Design = HXDesign{
		DPDesign:   [2]float64{0.0, c.pres[LTRHotOut] - c.pres[MCIn]},
		MDotDesign: [2]float64{0.0, mDotMC},
		QDotDesign: mDotMC * (c.enth[LTRHotOut] - c.enth[MCIn]),
		NSub:       par.NSubHXRs,
	}

	c.wDotNetLast = wMC*mDotMC + wRC*mDotRC + wT*mDotT
	c.etaThermalLast = c.wDotNetLast / c.PHX.Design.QDotDesign
	c.mDotMC = mDotMC
	c.mDotRC = mDotRC
	c.mDotT = mDotT
	return nil
}

// massFlowForPower returns the turbine mass flow required for the target net
// power given the specific works, per the cycle topology.
func (c *Cycle) massFlowForPower(wMC, wRC, wT float64) float64 {
	if c.desPar.Topology == TopologyBypass {
		return c.desPar.WDotNet / (wMC + wT)
	}
	f := c.desPar.RecompFrac
	return c.desPar.WDotNet / (wMC*(1.0-f) + wRC*f + wT)
}

func (c *Cycle) node(i int) props.State {
	return props.State{
		Temp: c.temp[i], Pres: c.pres[i], Enth: c.enth[i],
		Entr: c.entr[i], Dens: c.dens[i],
	}
}

func (c *Cycle) setNode(i int, st props.State) {
	c.temp[i] = st.Temp
	c.enth[i] = st.Enth
	c.entr[i] = st.Entr
	c.dens[i] = st.Dens
}

func (c *Cycle) initLTDesign(qDot, ua, minDT, mDotMC, mDotT float64) {
	cDotHot := mDotT * (c.enth[HTRHotOut] - c.enth[LTRHotOut]) / (c.temp[HTRHotOut] - c.temp[LTRHotOut])
	cDotCold := mDotMC * (c.enth[LTRColdOut] - c.enth[MCOut]) / (c.temp[LTRColdOut] - c.temp[MCOut])
	qDotMax := math.Min(cDotHot, cDotCold) * (c.temp[HTRHotOut] - c.temp[MCOut])
	c.LT.Design = HXDesign{
		DPDesign:   [2]float64{c.pres[MCOut] - c.pres[LTRColdOut], c.pres[HTRHotOut] - c.pres[LTRHotOut]},
		MDotDesign: [2]float64{mDotMC, mDotT},
		UADesign:   ua,
		QDotDesign: qDot,
		MinDT:      minDT,
		Eff:        qDot / qDotMax,
		NSub:       c.desPar.NSubHXRs,
	}
}

func (c *Cycle) initHTDesign(qDot, ua, minDT, mDotT float64) {
	cDotHot := mDotT * (c.enth[TurbineOut] - c.enth[HTRHotOut]) / (c.temp[TurbineOut] - c.temp[HTRHotOut])
	cDotCold := mDotT * (c.enth[HTRColdOut] - c.enth[MixerOut]) / (c.temp[HTRColdOut] - c.temp[MixerOut])
	qDotMax := math.Min(cDotHot, cDotCold) * (c.temp[TurbineOut] - c.temp[MixerOut])
	c.HT.Design = HXDesign{
		DPDesign:   [2]float64{c.pres[MixerOut] - c.pres[HTRColdOut], c.pres[TurbineOut] - c.pres[HTRHotOut]},
		MDotDesign: [2]float64{mDotT, mDotT},
		UADesign:   ua,
		QDotDesign: qDot,
		MinDT:      minDT,
		Eff:        qDot / qDotMax,
		NSub:       c.desPar.NSubHXRs,
	}
}

// FinalizeDesign sizes the turbomachinery from the last design solve and
// freezes the design point for off-design operation.
func (c *Cycle) FinalizeDesign() error {
	mc, err := sizeCompressor(c.fl, c.node(MCIn), c.node(MCOut), c.mDotMC)
	if err != nil {
		return err
	}
	c.MC = mc

	if c.desPar.RecompFrac > 0.01 {
		rc, err := sizeRecompressor(c.fl, c.node(LTRHotOut), c.node(RCOut), c.mDotRC)
		if err != nil {
			return err
		}
		c.RC = rc
	} else {
		c.RC = Recompressor{}
	}

	in, perr := c.fl.TD(c.temp[TurbineIn], c.dens[TurbineIn]) // for the inlet speed of sound
	if perr != nil {
		return propErr(perr)
	}
	t, err := sizeTurbine(c.fl, in, c.node(TurbineOut), c.mDotT, c.desPar.NTurbine, c.MC.NDesign)
	if err != nil {
		return err
	}
	c.T = t

	c.desSolved = &DesignSolved{
		Temp: c.temp, Pres: c.pres, Enth: c.enth, Entr: c.entr, Dens: c.dens,
		MDotMC:     c.mDotMC,
		MDotRC:     c.mDotRC,
		MDotT:      c.mDotT,
		RecompFrac: c.mDotRC / c.mDotT,
		UALTCalc:   c.LT.Design.UADesign,
		UAHTCalc:   c.HT.Design.UADesign,
		WDotNet:    c.wDotNetLast,
		EtaThermal: c.etaThermalLast,
	}
	return nil
}
