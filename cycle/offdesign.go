package cycle

import (
	"math"

	"github.com/adyreson/ssc/solver"
)

// OffDesign solves the finalized cycle at an off-design operating point. A
// non-positive turbine speed links the turbine to the compressor shaft.
func (c *Cycle) OffDesign(par OffDesignParams) error {
	if par.NT <= 0.0 {
		par.NT = par.NMC
	}
	return c.offDesignCore(par)
}

func (c *Cycle) offDesignCore(par OffDesignParams) error {
	const maxIter = 100
	fl := c.fl

	c.tempOD[MCIn] = par.TMCIn
	c.presOD[MCIn] = par.PMCIn
	c.tempOD[TurbineIn] = par.TTIn

	// The mass flow rate bracket comes from the compressor map: guess at the
	// design flow coefficient, cap at the map limit with margin.
	inlet, perr := fl.TP(c.tempOD[MCIn], c.presOD[MCIn])
	if perr != nil {
		return propErr(perr)
	}
	tipSpeed := c.MC.DRotor * 0.5 * par.NMC * radPerSecPerRPM
	partialPhi := inlet.Dens * c.MC.DRotor * c.MC.DRotor * tipSpeed
	mDotT := snlPhiDesign * partialPhi / (1.0 - par.RecompFrac)
	mDotMax := snlPhiMax * partialPhi * 1.2 / (1.0 - par.RecompFrac)

	mDot := solver.NewBracket(0.0, mDotMax, mDotT)
	firstPass := true

	var mDotMC, mDotRC float64
	massConverged := false
	for iter := 0; iter < maxIter; iter++ {
		mDotT = mDot.X
		mDotRC = mDotT * par.RecompFrac
		mDotMC = mDotT - mDotRC

		// Pressure rise through the main compressor.
		tOut, pOut, err := c.MC.OffDesign(fl, c.tempOD[MCIn], c.presOD[MCIn], mDotMC, par.NMC)
		if err != nil {
			switch Code(err) {
			case errCompSurge: // shaft speed cannot carry this flow
				mDot.NarrowHi()
				continue
			case errCompRange: // outlet pressure beyond property limits
				mDot.NarrowLo()
				continue
			}
			return err
		}
		c.tempOD[MCOut] = tOut
		c.presOD[MCOut] = pOut

		// Scaled heat exchanger pressure drops define the remaining pressures.
		dpLT := c.LT.PressureDrops([2]float64{mDotMC, mDotT})
		dpHT := c.HT.PressureDrops([2]float64{mDotT, mDotT})
		dpPHX := c.PHX.PressureDrops([2]float64{mDotT, 0.0})
		dpPC := c.PC.PressureDrops([2]float64{0.0, mDotMC})

		c.presOD[LTRColdOut] = c.presOD[MCOut] - dpLT[0]
		c.presOD[MixerOut] = c.presOD[LTRColdOut] // no pressure drop in mixing valve
		c.presOD[RCOut] = c.presOD[LTRColdOut]
		c.presOD[HTRColdOut] = c.presOD[MixerOut] - dpHT[0]
		c.presOD[TurbineIn] = c.presOD[HTRColdOut] - dpPHX[0]
		c.presOD[LTRHotOut] = c.presOD[MCIn] + dpPC[1]
		c.presOD[HTRHotOut] = c.presOD[LTRHotOut] + dpLT[1]
		c.presOD[TurbineOut] = c.presOD[HTRHotOut] + dpHT[1]

		// The turbine sets the allowable mass flow rate.
		mDotAllowed, tOut, err := c.T.OffDesign(fl, c.tempOD[TurbineIn], c.presOD[TurbineIn], c.presOD[TurbineOut], par.NT)
		if err != nil {
			return err
		}
		c.tempOD[TurbineOut] = tOut

		resid := mDotT - mDotAllowed
		if resid > 0.0 { // pressure rise too small, mass flow too big
			if resid/mDotT < par.Tol {
				massConverged = true
				break
			}
		} else {
			if -resid/mDotT < par.Tol {
				massConverged = true
				break
			}
		}
		if firstPass {
			mDot.Next(resid, resid < 0.0) // record, then bisect regardless
			mDot.X = 0.5 * (mDot.Lo + mDot.Hi)
			firstPass = false
		} else {
			mDot.NextSecant(resid, resid < 0.0)
		}
	}
	if !massConverged {
		return codeErr(errMassNoConv, "mass flow rate loop did not converge")
	}
	mDotT = mDot.X
	mDotRC = mDotT * par.RecompFrac
	mDotMC = mDotT - mDotRC

	// Fully define the known states.
	for _, i := range []int{MCIn, MCOut, TurbineIn, TurbineOut} {
		st, perr := fl.TP(c.tempOD[i], c.presOD[i])
		if perr != nil {
			return propErr(perr)
		}
		c.enthOD[i] = st.Enth
		c.entrOD[i] = st.Entr
		c.densOD[i] = st.Dens
	}

	// Recuperator conductances at the converged flow rates.
	uaLT := c.LT.Conductance([2]float64{mDotMC, mDotT})
	uaHT := c.HT.Conductance([2]float64{mDotT, mDotT})

	t8 := solver.NewBracket(c.tempOD[MCOut], c.tempOD[TurbineOut], 0)
	if uaHT < noRecupUA {
		t8.Lo = c.tempOD[TurbineOut]
		t8.X = c.tempOD[TurbineOut]
	} else {
		t8.X = 0.5 * (t8.Lo + t8.Hi)
		t8.SeedLast(c.tempOD[TurbineOut], uaHT)
	}
	c.tempOD[HTRHotOut] = t8.X

	var qDotLT, qDotHT float64
	outerConverged := false
	for t8Iter := 0; t8Iter < maxIter; t8Iter++ {
		st, perr := fl.TP(c.tempOD[HTRHotOut], c.presOD[HTRHotOut])
		if perr != nil {
			return propErr(perr)
		}
		c.enthOD[HTRHotOut] = st.Enth
		c.entrOD[HTRHotOut] = st.Entr
		c.densOD[HTRHotOut] = st.Dens

		t9 := solver.NewBracket(c.tempOD[MCOut], c.tempOD[HTRHotOut], 0)
		if uaLT < noRecupUA {
			t9.Lo = c.tempOD[HTRHotOut]
			t9.X = c.tempOD[HTRHotOut]
		} else {
			t9.X = 0.5 * (t9.Lo + t9.Hi)
			t9.SeedLast(c.tempOD[HTRHotOut], uaLT)
		}
		c.tempOD[LTRHotOut] = t9.X

		innerConverged := false
		for t9Iter := 0; t9Iter < maxIter; t9Iter++ {
			st, perr := fl.TP(c.tempOD[LTRHotOut], c.presOD[LTRHotOut])
			if perr != nil {
				return propErr(perr)
			}
			c.enthOD[LTRHotOut] = st.Enth
			c.entrOD[LTRHotOut] = st.Entr
			c.densOD[LTRHotOut] = st.Dens

			if par.RecompFrac >= minRecompFrac {
				tOut, err := c.RC.OffDesign(fl, c.tempOD[LTRHotOut], c.presOD[LTRHotOut], mDotRC, c.presOD[RCOut])
				if err != nil {
					return err
				}
				c.tempOD[RCOut] = tOut
				st, perr := fl.TP(c.tempOD[RCOut], c.presOD[RCOut])
				if perr != nil {
					return propErr(perr)
				}
				c.enthOD[RCOut] = st.Enth
				c.entrOD[RCOut] = st.Entr
				c.densOD[RCOut] = st.Dens
			} else {
				c.tempOD[RCOut] = c.tempOD[LTRHotOut]
				c.enthOD[RCOut] = c.enthOD[LTRHotOut]
				c.entrOD[RCOut] = c.entrOD[LTRHotOut]
				c.densOD[RCOut] = c.densOD[LTRHotOut]
			}

			if uaLT < noRecupUA {
				qDotLT = 0.0
			} else {
				qDotLT = mDotT * (c.enthOD[HTRHotOut] - c.enthOD[LTRHotOut])
			}

			uaLTCalc, minDTLT, hxErr := calcHXRUA(fl, par.NSubHXRs, qDotLT, mDotMC, mDotT,
				c.tempOD[MCOut], c.tempOD[HTRHotOut],
				c.presOD[MCOut], c.presOD[LTRColdOut], c.presOD[HTRHotOut], c.presOD[LTRHotOut])
			if hxErr != nil {
				if Code(hxErr) == errSecondLaw {
					c.tempOD[LTRHotOut] = t9.NarrowLo()
					continue
				}
				return hxErr
			}

			resid := uaLT - uaLTCalc
			if math.Abs(resid) < 1.0e-12 {
				innerConverged = true
				break
			}
			if resid < 0.0 {
				if math.Abs(resid)/uaLT < par.Tol {
					innerConverged = true
					break
				}
			} else {
				if resid/uaLT < par.Tol {
					innerConverged = true
					break
				}
				if minDTLT < tempTolerance {
					innerConverged = true
					break
				}
			}
			c.tempOD[LTRHotOut] = t9.NextSecant(resid, resid < 0.0)
		}
		if !innerConverged {
			return codeErr(errInnerNoConv, "low-temp recuperator loop did not converge")
		}

		// State 3 from the energy balance on the LTR cold stream.
		st3, perr := fl.PH(c.presOD[LTRColdOut], c.enthOD[MCOut]+qDotLT/mDotMC)
		if perr != nil {
			return propErr(perr)
		}
		c.tempOD[LTRColdOut] = st3.Temp
		c.enthOD[LTRColdOut] = st3.Enth
		c.entrOD[LTRColdOut] = st3.Entr
		c.densOD[LTRColdOut] = st3.Dens

		if par.RecompFrac >= minRecompFrac {
			h4 := (1.0-par.RecompFrac)*c.enthOD[LTRColdOut] + par.RecompFrac*c.enthOD[RCOut]
			st4, perr := fl.PH(c.presOD[MixerOut], h4)
			if perr != nil {
				return propErr(perr)
			}
			c.tempOD[MixerOut] = st4.Temp
			c.enthOD[MixerOut] = st4.Enth
			c.entrOD[MixerOut] = st4.Entr
			c.densOD[MixerOut] = st4.Dens
		} else {
			c.tempOD[MixerOut] = c.tempOD[LTRColdOut]
			c.enthOD[MixerOut] = c.enthOD[LTRColdOut]
			c.entrOD[MixerOut] = c.entrOD[LTRColdOut]
			c.densOD[MixerOut] = c.densOD[LTRColdOut]
		}

		if c.tempOD[MixerOut] >= c.tempOD[HTRHotOut] {
			c.tempOD[HTRHotOut] = t8.NarrowLo()
			continue
		}

		if uaHT < noRecupUA {
			qDotHT = 0.0
		} else {
			qDotHT = mDotT * (c.enthOD[TurbineOut] - c.enthOD[HTRHotOut])
		}

		uaHTCalc, minDTHT, hxErr := calcHXRUA(fl, par.NSubHXRs, qDotHT, mDotT, mDotT,
			c.tempOD[MixerOut], c.tempOD[TurbineOut],
			c.presOD[MixerOut], c.presOD[HTRColdOut], c.presOD[TurbineOut], c.presOD[HTRHotOut])
		if hxErr != nil {
			if Code(hxErr) == errSecondLaw {
				c.tempOD[HTRHotOut] = t8.NarrowLo()
				continue
			}
			return hxErr
		}

		resid := uaHT - uaHTCalc
		if math.Abs(resid) < 1.0e-12 {
			outerConverged = true
			break
		}
		if resid < 0.0 {
			if math.Abs(resid)/uaHT < par.Tol {
				outerConverged = true
				break
			}
		} else {
			if resid/uaHT < par.Tol {
				outerConverged = true
				break
			}
			if minDTHT < tempTolerance {
				outerConverged = true
				break
			}
		}
		c.tempOD[HTRHotOut] = t8.NextSecant(resid, resid < 0.0)
	}
	if !outerConverged {
		return codeErr(errOuterNoConv, "high-temp recuperator loop did not converge")
	}

	// State 5 from the energy balance on the HTR cold stream.
	st5, perr := fl.PH(c.presOD[HTRColdOut], c.enthOD[MixerOut]+qDotHT/mDotT)
	if perr != nil {
		return propErr(perr)
	}
	c.tempOD[HTRColdOut] = st5.Temp
	c.enthOD[HTRColdOut] = st5.Enth
	c.entrOD[HTRColdOut] = st5.Entr
	c.densOD[HTRColdOut] = st5.Dens

	wMC := c.enthOD[MCIn] - c.enthOD[MCOut]      // negative
	wT := c.enthOD[TurbineIn] - c.enthOD[TurbineOut] // positive
	wRC := 0.0
	if par.RecompFrac > 0.0 {
		wRC = c.enthOD[LTRHotOut] - c.enthOD[RCOut]
	}

	qDotIn := mDotT * (c.enthOD[TurbineIn] - c.enthOD[HTRColdOut])
	wDotNet := wMC*mDotMC + wRC*mDotRC + wT*mDotT

	c.odSolved = &OffDesignSolved{
		Temp: c.tempOD, Pres: c.presOD, Enth: c.enthOD, Entr: c.entrOD, Dens: c.densOD,
		MDotMC:     mDotMC,
		MDotRC:     mDotRC,
		MDotT:      mDotT,
		WDotNet:    wDotNet,
		QDotIn:     qDotIn,
		EtaThermal: wDotNet / qDotIn,
		NMC:        par.NMC,
		NT:         par.NT,
	}
	return nil
}
