package cycle

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/adyreson/ssc/props"
)

// finalizedCycle solves and finalizes the named preset.
func finalizedCycle(t *testing.T, name string) *Cycle {
	t.Helper()
	par, err := GetDesign(name)
	if err != nil {
		t.Fatal(err)
	}
	c := New(props.CO2())
	if err := c.Design(par); err != nil {
		t.Fatalf("design failed: %v", err)
	}
	if err := c.FinalizeDesign(); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	return c
}

// Running the off-design model at the design conditions and design shaft
// speeds must reproduce the design point closely: the turbomachinery maps are
// normalized so their design-point efficiency multipliers are one.
func TestOffDesignAtDesignPoint(t *testing.T) {
	c := finalizedCycle(t, Recomp10MWe)
	des := c.DesignSolved()

	err := c.OffDesign(OffDesignParams{
		TMCIn:      c.DesignParams().TMCIn,
		PMCIn:      c.DesignParams().PMCIn,
		TTIn:       c.DesignParams().TTIn,
		RecompFrac: des.RecompFrac,
		NMC:        c.MC.NDesign,
		NT:         c.T.NDesign,
		NSubHXRs:   c.DesignParams().NSubHXRs,
		Tol:        1e-6,
	})
	if err != nil {
		t.Fatalf("off-design at the design point failed: %v", err)
	}
	od := c.OffDesignSolved()

	if !scalar.EqualWithinAbsOrRel(od.MDotT, des.MDotT, 1e-9, 0.02) {
		t.Errorf("mass flow = %v, want ~%v", od.MDotT, des.MDotT)
	}
	if !scalar.EqualWithinAbsOrRel(od.WDotNet, des.WDotNet, 1e-9, 0.05) {
		t.Errorf("net power = %v, want ~%v", od.WDotNet, des.WDotNet)
	}
	if !scalar.EqualWithinAbsOrRel(od.EtaThermal, des.EtaThermal, 1e-9, 0.05) {
		t.Errorf("eta = %v, want ~%v", od.EtaThermal, des.EtaThermal)
	}
	if c.MC.OD.Surge {
		t.Error("main compressor reports surge at the design point")
	}
}

// Reduced inlet pressure lowers density, mass flow, and net power.
func TestOffDesignReducedInletPressure(t *testing.T) {
	c := finalizedCycle(t, Recomp10MWe)
	des := c.DesignSolved()
	base := OffDesignParams{
		TMCIn:      c.DesignParams().TMCIn,
		PMCIn:      c.DesignParams().PMCIn,
		TTIn:       c.DesignParams().TTIn,
		RecompFrac: des.RecompFrac,
		NMC:        c.MC.NDesign,
		NT:         c.T.NDesign,
		NSubHXRs:   c.DesignParams().NSubHXRs,
		Tol:        1e-6,
	}
	if err := c.OffDesign(base); err != nil {
		t.Fatalf("baseline solve failed: %v", err)
	}
	wBase := c.OffDesignSolved().WDotNet

	low := base
	low.PMCIn = 0.9 * base.PMCIn
	if err := c.OffDesign(low); err != nil {
		t.Fatalf("reduced-pressure solve failed: %v", err)
	}
	if w := c.OffDesignSolved().WDotNet; w >= wBase {
		t.Errorf("net power did not drop with inlet pressure: %v >= %v", w, wBase)
	}
}

func TestTargetOffDesignPower(t *testing.T) {
	c := finalizedCycle(t, Recomp10MWe)
	des := c.DesignSolved()

	target := 0.9 * des.WDotNet
	err := c.TargetOffDesign(TargetODParams{
		TMCIn:       c.DesignParams().TMCIn,
		TTIn:        c.DesignParams().TTIn,
		RecompFrac:  des.RecompFrac,
		NMC:         c.MC.NDesign,
		NT:          c.T.NDesign,
		NSubHXRs:    c.DesignParams().NSubHXRs,
		Target:      target,
		LowestPres:  5500.0,
		HighestPres: 8800.0,
		Tol:         1e-4,
	})
	if err != nil {
		t.Fatalf("target solve failed: %v", err)
	}
	got := c.OffDesignSolved().WDotNet
	if math.Abs(got-target)/target > 0.02 {
		t.Errorf("net power = %v, target %v", got, target)
	}
}

func TestTargetOffDesignNoBracket(t *testing.T) {
	c := finalizedCycle(t, Recomp10MWe)
	des := c.DesignSolved()

	// Ten times the design power is unreachable anywhere in the range.
	err := c.TargetOffDesign(TargetODParams{
		TMCIn:       c.DesignParams().TMCIn,
		TTIn:        c.DesignParams().TTIn,
		RecompFrac:  des.RecompFrac,
		NMC:         c.MC.NDesign,
		NT:          c.T.NDesign,
		NSubHXRs:    c.DesignParams().NSubHXRs,
		Target:      10.0 * des.WDotNet,
		LowestPres:  5500.0,
		HighestPres: 8800.0,
		Tol:         1e-4,
	})
	if Code(err) != errTargetBracket {
		t.Errorf("code = %d (%v), want %d", Code(err), err, errTargetBracket)
	}
}

// The optimizer starts from the supplied guesses, so the optimum can never be
// worse than the plain off-design solve at those guesses.
func TestOptimalOffDesignImproves(t *testing.T) {
	c := finalizedCycle(t, Recomp10MWe)
	c.desPar.PHighLimit = 30.0e3 // headroom so the overpressure penalty stays out of the comparison
	des := c.DesignSolved()
	base := OffDesignParams{
		TMCIn:      c.DesignParams().TMCIn,
		PMCIn:      c.DesignParams().PMCIn,
		TTIn:       c.DesignParams().TTIn,
		RecompFrac: des.RecompFrac,
		NMC:        c.MC.NDesign,
		NT:         c.T.NDesign,
		NSubHXRs:   c.DesignParams().NSubHXRs,
		Tol:        1e-6,
	}
	if err := c.OffDesign(base); err != nil {
		t.Fatalf("baseline solve failed: %v", err)
	}
	etaBase := c.OffDesignSolved().EtaThermal

	err := c.OptimalOffDesign(OptODParams{
		TMCIn:           base.TMCIn,
		TTIn:            base.TTIn,
		NSubHXRs:        base.NSubHXRs,
		PMCInGuess:      base.PMCIn,
		FixedPMCIn:      true,
		RecompFracGuess: base.RecompFrac,
		FixedRecompFrac: false,
		NMCGuess:        base.NMC,
		FixedNMC:        false,
		NTGuess:         base.NT,
		FixedNT:         true,
		Tol:             1e-6,
		OptTol:          1e-4,
	})
	if err != nil {
		t.Fatalf("optimal off-design failed: %v", err)
	}
	if eta := c.OffDesignSolved().EtaThermal; eta < etaBase-1e-9 {
		t.Errorf("optimized eta %v is worse than the starting point %v", eta, etaBase)
	}
}
