package main

import (
	"encoding/csv"
	"os"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/adyreson/ssc/cycle"
	"github.com/adyreson/ssc/wind"
)

// writeStates writes the ten cycle state points as a CSV table.
func writeStates(out *os.File, temp, pres, enth, entr, dens [cycle.NNodes]float64) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"node", "temp_K", "pres_kPa", "enth_kJ_kg", "entr_kJ_kgK", "dens_kg_m3"}); err != nil {
		return err
	}
	for i := 0; i < cycle.NNodes; i++ {
		rec := []string{
			cycle.NodeNames[i],
			formatFloat(temp[i]),
			formatFloat(pres[i]),
			formatFloat(enth[i]),
			formatFloat(entr[i]),
			formatFloat(dens[i]),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// writeFarm writes the per-turbine outputs as a CSV table.
func writeFarm(out *os.File, res *wind.Result) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"turbine", "power_kW", "thrust_coeff", "eff_pct", "speed_m_s", "ti_pct"}); err != nil {
		return err
	}
	for i := range res.Power {
		rec := []string{
			strconv.Itoa(i),
			formatFloat(res.Power[i]),
			formatFloat(res.Thrust[i]),
			formatFloat(res.Eff[i]),
			formatFloat(res.Speed[i]),
			formatFloat(res.TI[i]),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// plotTS draws the cycle state points on temperature-entropy axes.
func plotTS(file string, entr, temp [cycle.NNodes]float64) error {
	p := plot.New()
	p.Title.Text = "cycle state points"
	p.X.Label.Text = "entropy (kJ/kg-K)"
	p.Y.Label.Text = "temperature (K)"

	pts := make(plotter.XYs, cycle.NNodes)
	for i := range pts {
		pts[i].X = entr[i]
		pts[i].Y = temp[i]
	}
	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	p.Add(sc, plotter.NewGrid())
	return p.Save(6*vg.Inch, 4*vg.Inch, file)
}

// plotFarm draws the waked wind speed at each turbine.
func plotFarm(file string, speed []float64) error {
	p := plot.New()
	p.Title.Text = "waked wind speed by turbine"
	p.X.Label.Text = "turbine"
	p.Y.Label.Text = "wind speed (m/s)"

	pts := make(plotter.XYs, len(speed))
	for i := range pts {
		pts[i].X = float64(i)
		pts[i].Y = speed[i]
	}
	line, sc, err := plotter.NewLinePoints(pts)
	if err != nil {
		return err
	}
	p.Add(line, sc, plotter.NewGrid())
	return p.Save(6*vg.Inch, 4*vg.Inch, file)
}
