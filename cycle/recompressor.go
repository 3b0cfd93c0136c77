package cycle

import (
	"math"

	"github.com/adyreson/ssc/props"
)

// Recompressor is a two-stage centrifugal compressor on the SNL map. The
// stage split is fixed at design by requiring both stages to run at the
// map's design flow coefficient.
type Recompressor struct {
	DRotor    float64 // m, first stage
	DRotor2   float64 // m, second stage
	NDesign   float64 // rpm
	EtaDesign float64 // stage efficiency at design

	OD RecompressorOD
}

// RecompressorOD holds the state of the last off-design solve.
type RecompressorOD struct {
	N        float64
	Eta      float64 // overall isentropic efficiency
	Phi      float64 // first-stage flow coefficient
	Phi2     float64
	TipRatio float64
	Surge    bool
}

// sizeRecompressor splits the design compression into two stages by
// iterating the interstage pressure until the second stage also runs at the
// design flow coefficient, averaging toward a consistent stage efficiency.
func sizeRecompressor(fl props.Fluid, in, out props.State, mDot float64) (Recompressor, error) {
	const (
		maxIter = 100
		tol     = 1.0e-8
	)
	var rc Recompressor

	isen, err := fl.PS(out.Pres, in.Entr)
	if err != nil {
		return rc, propErr(err)
	}
	etaDesign := (isen.Enth - in.Enth) / (out.Enth - in.Enth) // overall isentropic efficiency
	psiDesign := headCoeff(snlPhiDesign)

	lastResid := 0.0
	lastPInt := 1.0e12 // forces bisection on the first pass
	lo := in.Pres + 1.0e-6
	hi := out.Pres - 1.0e-6
	pInt := 0.5 * (lo + hi)
	etaStage := etaDesign

	var dRotor1, dRotor2, nDesign float64
	converged := false
	for i := 0; i < maxIter; i++ {
		// First stage sized at the design flow coefficient.
		stage1Isen, err := fl.PS(pInt, in.Entr)
		if err != nil {
			return rc, propErr(err)
		}
		wi := stage1Isen.Enth - in.Enth
		uTip1 := math.Sqrt(1000.0 * wi / psiDesign)
		dRotor1 = math.Sqrt(mDot / (snlPhiDesign * in.Dens * uTip1))
		nDesign = (uTip1 * 2.0 / dRotor1) * rpmPerRadPerSec
		hInt := in.Enth + wi/etaStage

		intState, err := fl.PH(pInt, hInt)
		if err != nil {
			return rc, propErr(err)
		}

		// Second stage shares the shaft; check its flow coefficient.
		stage2Isen, err := fl.PS(out.Pres, intState.Entr)
		if err != nil {
			return rc, propErr(err)
		}
		wi = stage2Isen.Enth - hInt
		uTip2 := math.Sqrt(1000.0 * wi / psiDesign)
		dRotor2 = 2.0 * uTip2 / (nDesign * radPerSecPerRPM)
		phi := mDot / (intState.Dens * uTip2 * dRotor2 * dRotor2)
		eta2Req := wi / (out.Enth - hInt)

		resid := snlPhiDesign - phi
		if math.Abs(resid) <= tol && math.Abs(etaStage-eta2Req) <= tol {
			converged = true
			break
		}
		if resid < 0.0 { // interstage pressure too high
			hi = pInt
		} else {
			lo = pInt
		}

		step := -resid * (lastPInt - pInt) / (lastResid - resid)
		pSecant := pInt + step
		lastPInt = pInt
		lastResid = resid
		switch {
		case pSecant <= lo || pSecant >= hi:
			pInt = 0.5 * (lo + hi)
		case math.Abs(step) > math.Abs(0.5*(hi-lo)): // take the smaller step
			pInt = 0.5 * (lo + hi)
		default:
			pInt = pSecant
		}

		etaStage = 0.5 * (etaStage + eta2Req)
	}
	if !converged {
		return rc, codeErr(1, "recompressor stage split did not converge")
	}

	rc.DRotor = dRotor1
	rc.DRotor2 = dRotor2
	rc.EtaDesign = etaStage
	rc.NDesign = nDesign
	return rc, nil
}

// stageRise evaluates one SNL stage at flow coefficient phi and speed N,
// returning the ideal enthalpy rise and stage efficiency.
func (r *Recompressor) stageRise(phi, uTip, N float64) (dhs, etaStage float64) {
	phiStar := phi * math.Pow(N/r.NDesign, 0.2)
	psiStar := headCoeff(phiStar)
	psi := psiStar / math.Pow(r.NDesign/N, math.Pow(20.0*phiStar, 3.0))
	dhs = psi * uTip * uTip * 0.001
	etaStar := effCoeff(phiStar)
	eta0 := etaStar * 1.47528 / math.Pow(r.NDesign/N, math.Pow(20.0*phiStar, 5))
	etaStage = math.Max(eta0*r.EtaDesign, 0.0)
	return dhs, etaStage
}

// OffDesign solves the outlet temperature and shaft speed that let the
// recompressor deliver mDot to POut, iterating the first-stage flow
// coefficient by secant. Surge reports either stage below the map limit.
func (r *Recompressor) OffDesign(fl props.Fluid, TIn, PIn, mDot, POut float64) (TOut float64, err error) {
	const (
		maxIter = 100
		relTol  = 1.0e-9
	)

	in, perr := fl.TP(TIn, PIn)
	if perr != nil {
		return 0, propErr(perr)
	}

	phi1 := snlPhiDesign
	firstPass := true
	var lastPhi1, lastResid float64
	var pOutCalc, hOut, n, phi2, uTip1, uTip2, ssndInt float64

	converged := false
	for i := 0; i < maxIter; i++ {
		uTip1 = mDot / (phi1 * in.Dens * r.DRotor * r.DRotor)
		n = (uTip1 * 2.0 / r.DRotor) * rpmPerRadPerSec
		dhs, etaStage1 := r.stageRise(phi1, uTip1, n)

		hInt := in.Enth + dhs/etaStage1
		stage1Isen, perr := fl.HS(in.Enth+dhs, in.Entr)
		if perr != nil {
			return 0, propErr(perr)
		}
		intState, perr := fl.PH(stage1Isen.Pres, hInt)
		if perr != nil {
			return 0, propErr(perr)
		}
		ssndInt = intState.SpeedSound

		uTip2 = r.DRotor2 * 0.5 * n * radPerSecPerRPM
		phi2 = mDot / (intState.Dens * uTip2 * r.DRotor2 * r.DRotor2)
		dhs, etaStage2 := r.stageRise(phi2, uTip2, n)

		hOut = hInt + dhs/etaStage2
		stage2Isen, perr := fl.HS(hInt+dhs, intState.Entr)
		if perr != nil {
			return 0, propErr(perr)
		}
		pOutCalc = stage2Isen.Pres

		resid := POut - pOutCalc
		if math.Abs(resid)/POut <= relTol {
			converged = true
			break
		}
		var next float64
		if firstPass {
			next = phi1 * 1.0001 // take a small step
			firstPass = false
		} else {
			next = phi1 - resid*(lastPhi1-phi1)/(lastResid-resid)
		}
		lastPhi1 = phi1
		lastResid = resid
		phi1 = next
	}
	if !converged {
		return 0, codeErr(1, "recompressor off-design did not converge")
	}

	out, perr := fl.PH(pOutCalc, hOut)
	if perr != nil {
		return 0, propErr(perr)
	}
	isen, perr := fl.PS(pOutCalc, in.Entr)
	if perr != nil {
		return 0, propErr(perr)
	}

	r.OD.N = n
	r.OD.Eta = (isen.Enth - in.Enth) / (hOut - in.Enth)
	r.OD.Phi = phi1
	r.OD.Phi2 = phi2
	r.OD.TipRatio = math.Max(uTip1/ssndInt, uTip2/out.SpeedSound)
	r.OD.Surge = phi1 < snlPhiMin || phi2 < snlPhiMin
	return out.Temp, nil
}
