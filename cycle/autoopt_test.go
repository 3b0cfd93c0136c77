package cycle

import (
	"strings"
	"testing"

	"github.com/adyreson/ssc/props"
)

func hitEtaBase() AutoOptHitEtaParams {
	return AutoOptHitEtaParams{
		WDotNet:          10.0e3,
		TMCIn:            32.0 + 273.15,
		TTIn:             550.0 + 273.15,
		DPLT:             [2]float64{-0.005, -0.005},
		DPHT:             [2]float64{-0.005, -0.005},
		DPPC:             [2]float64{0.0, -0.005},
		DPPHX:            [2]float64{-0.005, 0.0},
		EtaThermalTarget: 0.40,
		EtaMC:            0.89,
		EtaRC:            0.89,
		EtaT:             0.93,
		NSubHXRs:         10,
		PHighLimit:       25.0e3,
		NTurbine:         -1.0,
		Tol:              1e-3,
		OptTol:           1e-3,
	}
}

func TestAutoOptDesignHitEtaValidation(t *testing.T) {
	for _, test := range []struct {
		name   string
		modify func(*AutoOptHitEtaParams)
		want   string // substring of the message text
	}{
		{
			"compressor inlet below critical",
			func(p *AutoOptHitEtaParams) { p.TMCIn = 300.0 },
			"critical temperature",
		},
		{
			"pressure limit too low",
			func(p *AutoOptHitEtaParams) { p.PHighLimit = 9.0e3 },
			"pressure limit",
		},
		{
			"target not positive",
			func(p *AutoOptHitEtaParams) { p.EtaThermalTarget = 0.0 },
			"greater than zero",
		},
		{
			"target at Carnot",
			func(p *AutoOptHitEtaParams) { p.EtaThermalTarget = 0.99 },
			"Carnot",
		},
	} {
		par := hitEtaBase()
		test.modify(&par)
		c := New(props.CO2())
		msgs, err := c.AutoOptDesignHitEta(par)
		if err == nil {
			t.Errorf("%s: expected an error", test.name)
			continue
		}
		if test.want != "" && !strings.Contains(msgs, test.want) {
			t.Errorf("%s: message %q does not mention %q", test.name, msgs, test.want)
		}
	}
}

// Unreasonable but workable inputs are reset with a message rather than
// rejected. Pair them with a fatal input so the solver itself never runs.
func TestAutoOptDesignHitEtaResets(t *testing.T) {
	par := hitEtaBase()
	par.TMCIn = 80.0 + 273.15 // above the 70 C ceiling: reset
	par.EtaT = 1.2            // clamped to 1.0
	par.EtaThermalTarget = 0.99

	c := New(props.CO2())
	msgs, err := c.AutoOptDesignHitEta(par)
	if err == nil {
		t.Fatal("expected the Carnot check to fail")
	}
	for _, want := range []string{"reset", "theoretical maximum", "Carnot"} {
		if !strings.Contains(msgs, want) {
			t.Errorf("message %q does not mention %q", msgs, want)
		}
	}
}

func TestAutoOptDesign(t *testing.T) {
	if testing.Short() {
		t.Skip("auto-optimization sweep is slow")
	}
	par, err := GetAutoOptDesign(Recomp10MWe)
	if err != nil {
		t.Fatal(err)
	}
	c := New(props.CO2())
	if err := c.AutoOptDesign(par); err != nil {
		t.Fatalf("auto-optimization failed: %v", err)
	}
	sol := c.DesignSolved()
	if sol == nil {
		t.Fatal("no finalized design after auto-optimization")
	}
	if sol.EtaThermal <= 0.0 || sol.EtaThermal >= 1.0 {
		t.Errorf("eta_thermal = %v outside (0, 1)", sol.EtaThermal)
	}
	if sol.Pres[MCOut] > par.PHighLimit+1e-6 {
		t.Errorf("outlet pressure %v exceeds the limit %v", sol.Pres[MCOut], par.PHighLimit)
	}
}
