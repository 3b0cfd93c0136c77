package cycle

import (
	"math"

	"github.com/adyreson/ssc/props"
)

// calcHXRUA integrates the conductance of a counterflow heat exchanger from
// its mass flow rates, inlet temperatures, and heat transfer rate, splitting
// it into nSub sub-exchangers with linear pressure and enthalpy profiles.
// Q_dot must be non-negative; a tiny Q_dot is treated as zero duty.
func calcHXRUA(fl props.Fluid, nSub int, qDot, mDotC, mDotH, TcIn, ThIn, PcIn, PcOut, PhIn, PhOut float64) (ua, minDT float64, err error) {
	switch {
	case qDot < 0.0:
		return 0, 0, codeErr(errHXNegQ, "negative heat transfer rate")
	case ThIn < TcIn:
		return 0, 0, codeErr(errHXInletTemp, "hot inlet colder than cold inlet")
	case PhIn < PhOut:
		return 0, 0, codeErr(errHXHotDP, "hot-side pressure rise")
	case PcIn < PcOut:
		return 0, 0, codeErr(errHXColdDP, "cold-side pressure rise")
	}
	if qDot <= 1.0e-14 { // assume zero duty
		return 0.0, ThIn - TcIn, nil
	}

	cIn, perr := fl.TP(TcIn, PcIn)
	if perr != nil {
		return 0, 0, propErr(perr)
	}
	hIn, perr := fl.TP(ThIn, PhIn)
	if perr != nil {
		return 0, 0, codeErr(errHXHotInletProp, "hot inlet state failed")
	}
	hcIn := cIn.Enth
	hhIn := hIn.Enth
	hcOut := hcIn + qDot/mDotC
	hhOut := hhIn - qDot/mDotH

	// Walk the nodes from the hot inlet (cold outlet) end.
	nNodes := nSub + 1
	var hhPrev, thPrev, hcPrev, tcPrev float64
	ua = 0.0
	minDT = ThIn
	for i := 0; i < nNodes; i++ {
		pc := PcOut + float64(i)*(PcIn-PcOut)/float64(nNodes-1)
		ph := PhIn - float64(i)*(PhIn-PhOut)/float64(nNodes-1)
		hc := hcOut + float64(i)*(hcIn-hcOut)/float64(nNodes-1)
		hh := hhIn - float64(i)*(hhIn-hhOut)/float64(nNodes-1)

		hNode, perr := fl.PH(ph, hh)
		if perr != nil {
			return 0, 0, codeErr(errHXHotProp, "hot node state failed")
		}
		cNode, perr := fl.PH(pc, hc)
		if perr != nil {
			return 0, 0, codeErr(errHXColdProp, "cold node state failed")
		}
		th := hNode.Temp
		tc := cNode.Temp

		if tc >= th {
			return 0, 0, codeErr(errSecondLaw, "temperature cross in heat exchanger")
		}
		minDT = math.Min(minDT, th-tc)

		if i > 0 {
			cDotH := mDotH * (hhPrev - hh) / (thPrev - th)
			cDotC := mDotC * (hcPrev - hc) / (tcPrev - tc)
			cDotMin := math.Min(cDotH, cDotC)
			cR := cDotMin / math.Max(cDotH, cDotC)
			eff := (qDot / float64(nSub)) / (cDotMin * (thPrev - tc))
			var ntu float64
			if cR != 1.0 {
				ntu = math.Log((1.0-eff*cR)/(1.0-eff)) / (1.0 - cR)
			} else {
				ntu = eff / (1.0 - eff)
			}
			ua += ntu * cDotMin
		}
		hhPrev, thPrev = hh, th
		hcPrev, tcPrev = hc, tc
	}

	if math.IsNaN(ua) {
		return 0, 0, codeErr(errHXNaNUA, "conductance integration produced NaN")
	}
	return ua, minDT, nil
}

// HXDesign captures a heat exchanger's design point for off-design scaling.
// Index 0 is the cold (high-pressure) stream, index 1 the hot stream.
type HXDesign struct {
	DPDesign   [2]float64 // kPa
	MDotDesign [2]float64 // kg/s
	UADesign   float64    // kW/K
	QDotDesign float64    // kW
	MinDT      float64    // K
	Eff        float64
	NSub       int
}

// HeatExchanger scales a designed exchanger to off-design flow rates.
type HeatExchanger struct {
	Design HXDesign
}

// PressureDrops returns the off-design pressure drop of each stream, scaled
// with the 1.75 power of the flow ratio.
func (h *HeatExchanger) PressureDrops(mDots [2]float64) [2]float64 {
	var dp [2]float64
	for i := range dp {
		dp[i] = h.Design.DPDesign[i] * math.Pow(mDots[i]/h.Design.MDotDesign[i], 1.75)
	}
	return dp
}

// Conductance returns the off-design UA, scaled with the 0.8 power of the
// average flow ratio.
func (h *HeatExchanger) Conductance(mDots [2]float64) float64 {
	ratio := 0.5 * (mDots[0]/h.Design.MDotDesign[0] + mDots[1]/h.Design.MDotDesign[1])
	return h.Design.UADesign * math.Pow(ratio, 0.8)
}
