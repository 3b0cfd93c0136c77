package cycle

import (
	"fmt"
	"sort"
)

// Named parameter presets. These are the normally-used starting points for
// studies; callers tweak the returned struct rather than building one from
// scratch.
const (
	Recomp10MWe = "recomp_10mwe"
	Simple10MWe = "simple_10mwe"
	Recomp50MWe = "recomp_50mwe"
)

var sortedPresets []string

func init() {
	sortedPresets = append(sortedPresets, Recomp10MWe)
	sortedPresets = append(sortedPresets, Simple10MWe)
	sortedPresets = append(sortedPresets, Recomp50MWe)

	sort.Strings(sortedPresets)
}

// Missing is returned when a preset name is not recognized.
type Missing struct {
	Prefix  string
	Options []string
}

func (m Missing) Error() string {
	return fmt.Sprintf("%s: acceptable options: %v", m.Prefix, m.Options)
}

// GetDesign returns the design parameters for a named preset.
func GetDesign(name string) (DesignParams, error) {
	base := DesignParams{
		WDotNet:    10.0e3,
		TMCIn:      32.0 + 273.15,
		TTIn:       550.0 + 273.15,
		PMCIn:      7700.0,
		PMCOut:     25.0e3,
		DPLT:       [2]float64{-0.005, -0.005},
		DPHT:       [2]float64{-0.005, -0.005},
		DPPC:       [2]float64{0.0, -0.005},
		DPPHX:      [2]float64{-0.005, 0.0},
		UALT:       500.0,
		UAHT:       500.0,
		RecompFrac: 0.25,
		EtaMC:      0.89,
		EtaRC:      0.89,
		EtaT:       0.93,
		NSubHXRs:   10,
		NTurbine:   -1.0, // shared shaft
		PHighLimit: 25.0e3,
		Tol:        1.0e-6,
	}

	switch name {
	default:
		return DesignParams{}, Missing{
			Prefix:  "design preset not found",
			Options: sortedPresets,
		}
	case Recomp10MWe:
		return base, nil
	case Simple10MWe:
		base.RecompFrac = 0.0
		base.UALT = 0.0
		base.UAHT = 1000.0
		return base, nil
	case Recomp50MWe:
		base.WDotNet = 50.0e3
		base.TTIn = 700.0 + 273.15
		base.UALT = 2500.0
		base.UAHT = 2500.0
		return base, nil
	}
}

// GetAutoOptDesign returns auto-optimization parameters matching a named
// design preset.
func GetAutoOptDesign(name string) (AutoOptDesignParams, error) {
	des, err := GetDesign(name)
	if err != nil {
		return AutoOptDesignParams{}, err
	}
	return AutoOptDesignParams{
		WDotNet:    des.WDotNet,
		TMCIn:      des.TMCIn,
		TTIn:       des.TTIn,
		DPLT:       des.DPLT,
		DPHT:       des.DPHT,
		DPPC:       des.DPPC,
		DPPHX:      des.DPPHX,
		UARecTotal: des.UALT + des.UAHT,
		EtaMC:      des.EtaMC,
		EtaRC:      des.EtaRC,
		EtaT:       des.EtaT,
		NSubHXRs:   des.NSubHXRs,
		PHighLimit: des.PHighLimit,
		NTurbine:   des.NTurbine,
		Tol:        des.Tol,
		OptTol:     1.0e-3,
	}, nil
}
