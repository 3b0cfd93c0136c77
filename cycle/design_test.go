package cycle

import (
	"testing"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/adyreson/ssc/props"
)

func TestDesignEnergyBalance(t *testing.T) {
	par, err := GetDesign(Recomp10MWe)
	if err != nil {
		t.Fatal(err)
	}
	c := New(props.CO2())
	if err := c.Design(par); err != nil {
		t.Fatalf("design failed: %v", err)
	}

	// The mass flow rate is chosen to hit the power target exactly.
	if !scalar.EqualWithinAbsOrRel(c.WDotNetLast(), par.WDotNet, 1e-6, 1e-8) {
		t.Errorf("W_dot_net = %v, want %v", c.WDotNetLast(), par.WDotNet)
	}
	if eta := c.EtaThermalLast(); eta <= 0.1 || eta >= 0.7 {
		t.Errorf("eta_thermal = %v outside plausible range", eta)
	}

	if err := c.FinalizeDesign(); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	sol := c.DesignSolved()

	// First law across the whole cycle: net work equals heat in minus heat
	// rejected in the precooler.
	qIn := sol.MDotT * (sol.Enth[TurbineIn] - sol.Enth[HTRColdOut])
	qOut := sol.MDotMC * (sol.Enth[LTRHotOut] - sol.Enth[MCIn])
	if !scalar.EqualWithinAbsOrRel(sol.WDotNet, qIn-qOut, 1e-3, 1e-6) {
		t.Errorf("first law violated: W = %v, Q_in - Q_out = %v", sol.WDotNet, qIn-qOut)
	}

	if !scalar.EqualWithinAbsOrRel(sol.RecompFrac, par.RecompFrac, 1e-12, 1e-12) {
		t.Errorf("recomp fraction = %v, want %v", sol.RecompFrac, par.RecompFrac)
	}
}

// Re-evaluating the conductance at the solved states must reproduce the
// requested UA within the solver tolerance, unless the exchanger pinched.
func TestDesignUAFixedPoint(t *testing.T) {
	par, err := GetDesign(Recomp10MWe)
	if err != nil {
		t.Fatal(err)
	}
	c := New(props.CO2())
	if err := c.Design(par); err != nil {
		t.Fatalf("design failed: %v", err)
	}

	for _, test := range []struct {
		name   string
		hx     *HeatExchanger
		uaWant float64
	}{
		{"LT", &c.LT, par.UALT},
		{"HT", &c.HT, par.UAHT},
	} {
		if test.hx.Design.MinDT < tempTolerance {
			continue // pinched; the requested UA was unreachable
		}
		if !scalar.EqualWithinAbsOrRel(test.hx.Design.UADesign, test.uaWant, 1e-9, 10*par.Tol) {
			t.Errorf("%s recuperator UA = %v, want %v", test.name, test.hx.Design.UADesign, test.uaWant)
		}
	}
}

func TestDesignZeroRecompression(t *testing.T) {
	par, err := GetDesign(Simple10MWe)
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
	sol := c.DesignSolved()

	if sol.MDotRC != 0.0 {
		t.Errorf("recompressor mass flow = %v, want 0", sol.MDotRC)
	}
	// Without recompression the mixer outlet is the LTR cold outlet.
	if sol.Temp[MixerOut] != sol.Temp[LTRColdOut] || sol.Enth[MixerOut] != sol.Enth[LTRColdOut] {
		t.Errorf("mixer outlet state diverged from LTR cold outlet with no recompression")
	}
	if sol.Temp[RCOut] != sol.Temp[LTRHotOut] {
		t.Errorf("recompressor outlet = %v, want pass-through of %v", sol.Temp[RCOut], sol.Temp[LTRHotOut])
	}
}

func TestDesignEtaMonotonicInTurbineInlet(t *testing.T) {
	par, err := GetDesign(Recomp10MWe)
	if err != nil {
		t.Fatal(err)
	}

	var etas []float64
	for _, tt := range []float64{550.0 + 273.15, 650.0 + 273.15, 750.0 + 273.15} {
		p := par
		p.TTIn = tt
		c := New(props.CO2())
		if err := c.Design(p); err != nil {
			t.Fatalf("design at T_t_in=%v failed: %v", tt, err)
		}
		etas = append(etas, c.EtaThermalLast())
	}
	for i := 1; i < len(etas); i++ {
		if etas[i] <= etas[i-1] {
			t.Errorf("eta did not increase with turbine inlet temperature: %v", etas)
		}
	}
}

func TestDesignNoNetPower(t *testing.T) {
	par, err := GetDesign(Recomp10MWe)
	if err != nil {
		t.Fatal(err)
	}
	// A tiny pressure ratio at a low turbine inlet temperature cannot
	// produce net power.
	par.PMCIn = 7700.0
	par.PMCOut = 7800.0
	par.TTIn = 580.0
	c := New(props.CO2())
	err = c.Design(par)
	if Code(err) != errNoNetPower {
		t.Errorf("code = %d (%v), want %d", Code(err), err, errNoNetPower)
	}
}

func TestGetDesignMissing(t *testing.T) {
	_, err := GetDesign("no_such_preset")
	if _, ok := err.(Missing); !ok {
		t.Errorf("error = %v, want Missing", err)
	}
}
