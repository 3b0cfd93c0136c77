package cycle

import (
	"math"

	"github.com/adyreson/ssc/props"
)

// Shaft speed conversion factors and SNL map constants.
const (
	radPerSecPerRPM = 0.104719755
	rpmPerRadPerSec = 9.549296590

	snlPhiDesign = 0.02971 // design-point flow coefficient of the SNL compressor
	snlPhiMin    = 0.02    // surge limit
	snlPhiMax    = 0.05    // map range limit

	turbNuDesign = 0.7476 // ratio of tip speed to spouting velocity at design
)

// headCoeff evaluates the SNL dimensionless modified head curve.
func headCoeff(phi float64) float64 {
	return ((((-498626.0*phi)+53224.0)*phi-2505.0)*phi+54.6)*phi + 0.04049
}

// effCoeff evaluates the SNL dimensionless modified efficiency curve. The
// curve is normalized so 1.47528*effCoeff(snlPhiDesign) equals one.
func effCoeff(phi float64) float64 {
	return ((((-1.638e6*phi)+182725.0)*phi-8089.0)*phi+168.6)*phi - 0.7069
}

// calcOutlet resolves the outlet state of a compressor or turbine from its
// isentropic efficiency. isComp selects w = w_s/eta (compression, negative
// work) versus w = w_s*eta (expansion, positive work).
func calcOutlet(fl props.Fluid, TIn, PIn, POut, eta float64, isComp bool) (in, out props.State, w float64, err error) {
	in, err = fl.TP(TIn, PIn)
	if err != nil {
		return in, out, 0, propErr(err)
	}
	isen, err := fl.PS(POut, in.Entr)
	if err != nil {
		return in, out, 0, propErr(err)
	}
	ws := in.Enth - isen.Enth // negative for compression
	if isComp {
		w = ws / eta
	} else {
		w = ws * eta
	}
	out, err = fl.PH(POut, in.Enth-w)
	if err != nil {
		return in, out, 0, propErr(err)
	}
	return in, out, w, nil
}

// isenEtaFromPolyEta converts a polytropic efficiency into the equivalent
// isentropic efficiency for the compression or expansion from (TIn, PIn) to
// POut, integrating in 200 equal-pressure stages.
func isenEtaFromPolyEta(fl props.Fluid, TIn, PIn, POut, polyEta float64, isComp bool) (float64, error) {
	const nStages = 200

	in, err := fl.TP(TIn, PIn)
	if err != nil {
		return 0, propErr(err)
	}
	isen, err := fl.PS(POut, in.Entr)
	if err != nil {
		return 0, propErr(err)
	}

	p := PIn
	h := in.Enth
	s := in.Entr
	dP := (POut - PIn) / nStages
	for i := 0; i < nStages; i++ {
		p += dP
		stageIsen, err := fl.PS(p, s)
		if err != nil {
			return 0, propErr(err)
		}
		ws := h - stageIsen.Enth
		var w float64
		if isComp {
			w = ws / polyEta
		} else {
			w = ws * polyEta
		}
		h -= w
		st, err := fl.PH(p, h)
		if err != nil {
			return 0, propErr(err)
		}
		s = st.Entr
	}

	if isComp {
		return (isen.Enth - in.Enth) / (h - in.Enth), nil
	}
	return (h - in.Enth) / (isen.Enth - in.Enth), nil
}

// Compressor is a single-stage centrifugal compressor on the SNL map.
type Compressor struct {
	DRotor    float64 // m
	NDesign   float64 // rpm
	EtaDesign float64
	TipRatio  float64 // design tip speed over outlet speed of sound

	OD CompressorOD
}

// CompressorOD holds the state of the last off-design solve.
type CompressorOD struct {
	Phi      float64
	Eta      float64
	TipRatio float64
	Surge    bool
}

// sizeCompressor determines rotor diameter and design shaft speed from the
// design inlet/outlet states and mass flow, placing the design point at the
// map's design flow coefficient.
func sizeCompressor(fl props.Fluid, in, out props.State, mDot float64) (Compressor, error) {
	var c Compressor
	outFull, err := fl.TD(out.Temp, out.Dens) // for the outlet speed of sound
	if err != nil {
		return c, propErr(err)
	}
	isen, err := fl.PS(out.Pres, in.Entr)
	if err != nil {
		return c, propErr(err)
	}
	psiDesign := headCoeff(snlPhiDesign)

	wi := isen.Enth - in.Enth // positive isentropic specific work
	uTip := math.Sqrt(1000.0 * wi / psiDesign)
	c.DRotor = math.Sqrt(mDot / (snlPhiDesign * in.Dens * uTip))
	c.NDesign = (uTip * 2.0 / c.DRotor) * rpmPerRadPerSec
	c.TipRatio = uTip / outFull.SpeedSound
	c.EtaDesign = wi / (out.Enth - in.Enth)
	return c, nil
}

// OffDesign solves the compressor outlet for a given inlet state, mass flow
// rate, and shaft speed [rpm]. Code 1 marks operation below the surge limit
// or an infeasible inlet, code 2 a state beyond the map range.
func (c *Compressor) OffDesign(fl props.Fluid, TIn, PIn, mDot, N float64) (TOut, POut float64, err error) {
	in, perr := fl.TP(TIn, PIn)
	if perr != nil {
		return 0, 0, codeErr(errCompSurge, "compressor inlet state failed")
	}

	uTip := c.DRotor * 0.5 * N * radPerSecPerRPM
	phi := mDot / (in.Dens * uTip * c.DRotor * c.DRotor)
	if phi < snlPhiMin {
		c.OD.Surge = true
		phi = snlPhiMin
	} else {
		c.OD.Surge = false
	}

	phiStar := phi * math.Pow(N/c.NDesign, 0.2)
	psiStar := headCoeff(phiStar)
	etaStar := effCoeff(phiStar)
	psi := psiStar / math.Pow(c.NDesign/N, math.Pow(20.0*phiStar, 3.0))
	eta0 := etaStar * 1.47528 / math.Pow(c.NDesign/N, math.Pow(20.0*phiStar, 5.0))
	c.OD.Eta = math.Max(eta0*c.EtaDesign, 0.0)

	if psi <= 0.0 {
		return 0, 0, codeErr(errCompSurge, "head coefficient not positive")
	}

	dhs := psi * uTip * uTip * 0.001
	dh := dhs / c.OD.Eta
	isenOut, perr := fl.HS(in.Enth+dhs, in.Entr)
	if perr != nil {
		return 0, 0, codeErr(errCompRange, "compressor outlet pressure out of range")
	}
	POut = isenOut.Pres
	out, perr := fl.PH(POut, in.Enth+dh)
	if perr != nil {
		return 0, 0, codeErr(errCompRange, "compressor outlet state out of range")
	}

	c.OD.Phi = phi
	c.OD.TipRatio = uTip / out.SpeedSound
	return out.Temp, POut, nil
}

// Turbine is a single-stage radial turbine.
type Turbine struct {
	DRotor    float64 // m
	ANozzle   float64 // m^2 effective nozzle area
	NDesign   float64 // rpm
	EtaDesign float64
	NuDesign  float64
	TipRatio  float64

	OD TurbineOD
}

// TurbineOD holds the state of the last off-design solve.
type TurbineOD struct {
	Nu       float64
	Eta      float64
	TipRatio float64
	N        float64
}

// sizeTurbine determines rotor diameter, effective nozzle area, and design
// shaft speed. NDes <= 0 links the turbine to the compressor shaft at
// NCompLinked; code 7 when neither speed is available.
func sizeTurbine(fl props.Fluid, in, out props.State, mDot, NDes, NCompLinked float64) (Turbine, error) {
	var t Turbine
	if NDes <= 0.0 {
		t.NDesign = NCompLinked
		if t.NDesign <= 0.0 {
			return t, codeErr(7, "no design shaft speed available for turbine")
		}
	} else {
		t.NDesign = NDes
	}

	isen, err := fl.PS(out.Pres, in.Entr)
	if err != nil {
		return t, propErr(err)
	}

	t.NuDesign = turbNuDesign
	wi := in.Enth - isen.Enth // isentropic specific work
	cs := math.Sqrt(2.0 * wi * 1000.0)
	uTip := t.NuDesign * cs
	t.DRotor = uTip / (0.5 * t.NDesign * radPerSecPerRPM)
	t.ANozzle = mDot / (cs * in.Dens)
	t.TipRatio = uTip / in.SpeedSound
	t.EtaDesign = (in.Enth - out.Enth) / wi
	return t, nil
}

// OffDesign solves the allowable mass flow rate and outlet temperature for
// given inlet conditions, outlet pressure, and shaft speed [rpm].
func (t *Turbine) OffDesign(fl props.Fluid, TIn, PIn, POut, N float64) (mDot, TOut float64, err error) {
	in, perr := fl.TP(TIn, PIn)
	if perr != nil {
		return 0, 0, propErr(perr)
	}
	isen, perr := fl.PS(POut, in.Entr)
	if perr != nil {
		return 0, 0, propErr(perr)
	}

	cs := math.Sqrt(2.0 * (in.Enth - isen.Enth) * 1000.0)
	uTip := t.DRotor * 0.5 * N * radPerSecPerRPM
	t.OD.Nu = uTip / cs

	nu := t.OD.Nu
	eta0 := (((1.0626*nu-3.0874)*nu+1.3668)*nu+1.3567)*nu + 0.179921180
	eta0 = math.Max(eta0, 0.0)
	eta0 = math.Min(eta0, 1.0)
	t.OD.Eta = eta0 * t.EtaDesign

	hOut := in.Enth - t.OD.Eta*(in.Enth-isen.Enth)
	out, perr := fl.PH(POut, hOut)
	if perr != nil {
		return 0, 0, propErr(perr)
	}

	t.OD.TipRatio = uTip / in.SpeedSound
	t.OD.N = N
	return cs * t.ANozzle * in.Dens, out.Temp, nil
}
