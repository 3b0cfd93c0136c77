// Command ssc runs supercritical-CO2 cycle solves and wind-farm wake
// evaluations described by an ini job file, writing results as CSV.
//
// A job file holds a [cycle] section, a [farm] section, or both:
//
//	[cycle]
//	preset = recomp_10mwe
//	mode   = design        ; design, auto_opt, hit_eta, off_design, target
//	t_t_in = 823.15
//
//	[farm]
//	model = park
//	x = 0, 0, 0
//	y = 0, -500, -1000
//	power_curve_ws = 0, 4, 8, 12, 14, 25
//	power_curve_kw = 0, 50, 600, 1400, 1500, 1500
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"

	"github.com/adyreson/ssc/cycle"
	"github.com/adyreson/ssc/props"
	"github.com/adyreson/ssc/wind"
)

func main() {
	var jobfile, outfile, plotfile string
	var verbose bool
	flag.StringVar(&jobfile, "j", "none", "ini job file describing the run")
	flag.StringVar(&outfile, "o", "", "CSV output file (default stdout)")
	flag.StringVar(&plotfile, "plot", "", "write a T-s diagram or farm profile png")
	flag.BoolVar(&verbose, "v", false, "debug logging")
	flag.Parse()

	if verbose {
		log.SetLevel(log.DebugLevel)
	}
	if jobfile == "none" {
		log.Fatal("no job file specified")
	}

	cfg, err := ini.Load(jobfile)
	if err != nil {
		log.WithError(err).Fatal("could not read the job file")
	}

	out := os.Stdout
	if outfile != "" {
		f, err := os.Create(outfile)
		if err != nil {
			log.WithError(err).Fatal("could not create the output file")
		}
		defer f.Close()
		out = f
	}

	ran := false
	if sec, err := cfg.GetSection("cycle"); err == nil {
		ran = true
		if err := runCycle(sec, out, plotfile); err != nil {
			log.WithError(err).Fatal("cycle run failed")
		}
	}
	if sec, err := cfg.GetSection("farm"); err == nil {
		ran = true
		if err := runFarm(sec, out, plotfile); err != nil {
			log.WithError(err).Fatal("farm run failed")
		}
	}
	if !ran {
		log.Fatal("job file has neither a [cycle] nor a [farm] section")
	}
}

// overrideFloat replaces *v with the key's value when the key is present.
func overrideFloat(sec *ini.Section, name string, v *float64) {
	if sec.HasKey(name) {
		*v = sec.Key(name).MustFloat64(*v)
	}
}

func runCycle(sec *ini.Section, out *os.File, plotfile string) error {
	preset := sec.Key("preset").MustString(cycle.Recomp10MWe)
	par, err := cycle.GetDesign(preset)
	if err != nil {
		return err
	}

	overrideFloat(sec, "w_dot_net", &par.WDotNet)
	overrideFloat(sec, "t_mc_in", &par.TMCIn)
	overrideFloat(sec, "t_t_in", &par.TTIn)
	overrideFloat(sec, "p_mc_in", &par.PMCIn)
	overrideFloat(sec, "p_mc_out", &par.PMCOut)
	overrideFloat(sec, "recomp_frac", &par.RecompFrac)
	overrideFloat(sec, "ua_lt", &par.UALT)
	overrideFloat(sec, "ua_ht", &par.UAHT)
	overrideFloat(sec, "p_high_limit", &par.PHighLimit)
	overrideFloat(sec, "tol", &par.Tol)

	c := cycle.New(props.CO2())
	mode := sec.Key("mode").MustString("design")
	log.WithFields(log.Fields{"preset": preset, "mode": mode}).Info("starting cycle run")

	switch mode {
	case "design":
		if err := c.Design(par); err != nil {
			return err
		}
		if err := c.FinalizeDesign(); err != nil {
			return err
		}

	case "auto_opt":
		auto, err := cycle.GetAutoOptDesign(preset)
		if err != nil {
			return err
		}
		auto.WDotNet = par.WDotNet
		auto.TMCIn = par.TMCIn
		auto.TTIn = par.TTIn
		auto.PHighLimit = par.PHighLimit
		overrideFloat(sec, "ua_rec_total", &auto.UARecTotal)
		if err := c.AutoOptDesign(auto); err != nil {
			return err
		}

	case "hit_eta":
		auto, err := cycle.GetAutoOptDesign(preset)
		if err != nil {
			return err
		}
		hp := cycle.AutoOptHitEtaParams{
			WDotNet:          par.WDotNet,
			TMCIn:            par.TMCIn,
			TTIn:             par.TTIn,
			DPLT:             auto.DPLT,
			DPHT:             auto.DPHT,
			DPPC:             auto.DPPC,
			DPPHX:            auto.DPPHX,
			EtaThermalTarget: sec.Key("eta_target").MustFloat64(0.4),
			EtaMC:            auto.EtaMC,
			EtaRC:            auto.EtaRC,
			EtaT:             auto.EtaT,
			NSubHXRs:         auto.NSubHXRs,
			PHighLimit:       par.PHighLimit,
			NTurbine:         auto.NTurbine,
			Tol:              auto.Tol,
			OptTol:           auto.OptTol,
		}
		warnings, err := c.AutoOptDesignHitEta(hp)
		if warnings != "" {
			log.Warn(strings.TrimSpace(warnings))
		}
		if err != nil {
			return err
		}

	case "off_design", "target":
		if err := c.Design(par); err != nil {
			return err
		}
		if err := c.FinalizeDesign(); err != nil {
			return err
		}
		des := c.DesignSolved()

		od := cycle.OffDesignParams{
			TMCIn:      par.TMCIn,
			PMCIn:      par.PMCIn,
			TTIn:       par.TTIn,
			RecompFrac: des.RecompFrac,
			NMC:        c.MC.NDesign,
			NT:         c.T.NDesign,
			NSubHXRs:   par.NSubHXRs,
			Tol:        par.Tol,
		}
		overrideFloat(sec, "od_t_mc_in", &od.TMCIn)
		overrideFloat(sec, "od_p_mc_in", &od.PMCIn)
		overrideFloat(sec, "od_t_t_in", &od.TTIn)
		overrideFloat(sec, "od_recomp_frac", &od.RecompFrac)
		overrideFloat(sec, "od_n_mc", &od.NMC)
		overrideFloat(sec, "od_n_t", &od.NT)

		if mode == "off_design" {
			if err := c.OffDesign(od); err != nil {
				return err
			}
		} else {
			tp := cycle.TargetODParams{
				TMCIn:       od.TMCIn,
				TTIn:        od.TTIn,
				RecompFrac:  od.RecompFrac,
				NMC:         od.NMC,
				NT:          od.NT,
				NSubHXRs:    od.NSubHXRs,
				Target:      sec.Key("target").MustFloat64(par.WDotNet),
				TargetIsQ:   sec.Key("target_is_q").MustBool(false),
				LowestPres:  sec.Key("lowest_pres").MustFloat64(0.5 * par.PMCIn),
				HighestPres: sec.Key("highest_pres").MustFloat64(par.PMCOut),
				FineSweep:   sec.Key("fine_sweep").MustBool(false),
				Tol:         od.Tol,
			}
			if err := c.TargetOffDesign(tp); err != nil {
				return err
			}
		}
		sol := c.OffDesignSolved()
		log.WithFields(log.Fields{
			"w_dot_net":   sol.WDotNet,
			"eta_thermal": sol.EtaThermal,
			"m_dot_t":     sol.MDotT,
			"p_mc_in":     sol.Pres[cycle.MCIn],
		}).Info("off-design point solved")
		if plotfile != "" {
			if err := plotTS(plotfile, sol.Entr, sol.Temp); err != nil {
				return err
			}
		}
		return writeStates(out, sol.Temp, sol.Pres, sol.Enth, sol.Entr, sol.Dens)

	default:
		return fmt.Errorf("unknown cycle mode %q", mode)
	}

	sol := c.DesignSolved()
	log.WithFields(log.Fields{
		"w_dot_net":   sol.WDotNet,
		"eta_thermal": sol.EtaThermal,
		"recomp_frac": sol.RecompFrac,
		"p_mc_out":    sol.Pres[cycle.MCOut],
	}).Info("design solved")
	if plotfile != "" {
		if err := plotTS(plotfile, sol.Entr, sol.Temp); err != nil {
			return err
		}
	}
	return writeStates(out, sol.Temp, sol.Pres, sol.Enth, sol.Entr, sol.Dens)
}

func runFarm(sec *ini.Section, out *os.File, plotfile string) error {
	tb := wind.Turbine{
		RotorDiameter:     sec.Key("rotor_diameter").MustFloat64(77.0),
		HubHeight:         sec.Key("hub_height").MustFloat64(80.0),
		MeasurementHeight: sec.Key("measurement_height").MustFloat64(80.0),
		ShearExponent:     sec.Key("shear_exponent").MustFloat64(1.0 / 7.0),
		CutInSpeed:        sec.Key("cut_in_speed").MustFloat64(4.0),
		RatedSpeed:        sec.Key("rated_speed").MustFloat64(14.0),
		RatedPower:        sec.Key("rated_power").MustFloat64(1500.0),
		LossesPercent:     sec.Key("losses_percent").MustFloat64(0.0),
		LossesAbsolute:    sec.Key("losses_absolute").MustFloat64(0.0),
		ControlMode:       sec.Key("control_mode").MustInt(wind.CtrlPitch),
		CurveWS:           sec.Key("power_curve_ws").Float64s(","),
		CurveKW:           sec.Key("power_curve_kw").Float64s(","),
	}

	model, err := parseModel(sec.Key("model").MustString("park"))
	if err != nil {
		return err
	}
	farm := &wind.Farm{
		Turbine:   tb,
		X:         sec.Key("x").Float64s(","),
		Y:         sec.Key("y").Float64s(","),
		Model:     model,
		TI:        sec.Key("turbulence_intensity").MustFloat64(10.0),
		WakeDecay: sec.Key("wake_decay").MustFloat64(0.0),
	}

	speed := sec.Key("wind_speed").MustFloat64(8.0)
	dir := sec.Key("wind_direction").MustFloat64(0.0)
	rho := wind.AirDensity(sec.Key("pressure_atm").MustFloat64(1.0),
		sec.Key("air_temp_c").MustFloat64(15.0))

	log.WithFields(log.Fields{
		"model":      model.String(),
		"turbines":   len(farm.X),
		"wind_speed": speed,
	}).Info("starting farm run")

	res, err := farm.Evaluate(speed, dir, rho)
	if err != nil {
		return err
	}
	log.WithField("farm_power", res.FarmPower).Info("farm evaluated")

	if plotfile != "" {
		if err := plotFarm(plotfile, res.Speed); err != nil {
			return err
		}
	}
	return writeFarm(out, res)
}

func parseModel(name string) (wind.Model, error) {
	switch strings.ToLower(name) {
	case "pat_quinlan":
		return wind.PatQuinlan, nil
	case "park":
		return wind.Park, nil
	case "eddy_viscosity":
		return wind.EddyViscosity, nil
	case "old_pat_quinlan":
		return wind.PatQuinlanOld, nil
	}
	return 0, fmt.Errorf("unknown wake model %q", name)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 10, 64)
}
