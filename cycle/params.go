package cycle

import "github.com/adyreson/ssc/props"

// State-point indices of the recompression cycle. The numbering follows the
// usual cycle diagram: main compressor inlet through recompressor outlet.
const (
	MCIn       = iota // main compressor inlet
	MCOut             // main compressor outlet
	LTRColdOut        // low-temp recuperator cold outlet
	MixerOut          // mixing valve outlet, high-temp recuperator cold inlet
	HTRColdOut        // high-temp recuperator cold outlet, PHX inlet
	TurbineIn         // turbine inlet
	TurbineOut        // turbine outlet, high-temp recuperator hot inlet
	HTRHotOut         // high-temp recuperator hot outlet
	LTRHotOut         // low-temp recuperator hot outlet, precooler inlet
	RCOut             // recompressor outlet

	NNodes
)

// NodeNames labels the state-point indices for reporting.
var NodeNames = [NNodes]string{
	MCIn:       "mc_in",
	MCOut:      "mc_out",
	LTRColdOut: "ltr_cold_out",
	MixerOut:   "mixer_out",
	HTRColdOut: "htr_cold_out",
	TurbineIn:  "turbine_in",
	TurbineOut: "turbine_out",
	HTRHotOut:  "htr_hot_out",
	LTRHotOut:  "ltr_hot_out",
	RCOut:      "rc_out",
}

// Topology selects the mass-flow weighting of the design solve. The standard
// cycle splits flow between the compressors; the turbine-bypass variant
// carries the full flow through the main compressor.
type Topology int

const (
	TopologyStandard Topology = iota
	TopologyBypass
)

// DesignParams fully specifies a design-point solve.
//
// Pressure-drop entries follow the two-stream convention: index 0 is the
// cold (high-pressure) stream, index 1 the hot stream. Negative values are
// fractional drops; non-negative values are absolute drops in kPa.
// Negative efficiencies are polytropic; non-negative are isentropic.
type DesignParams struct {
	WDotNet float64 // kW, target net power output
	TMCIn   float64 // K, main compressor inlet
	TTIn    float64 // K, turbine inlet
	PMCIn   float64 // kPa
	PMCOut  float64 // kPa

	DPLT  [2]float64
	DPHT  [2]float64
	DPPC  [2]float64 // precooler; only the hot side is used
	DPPHX [2]float64 // primary heat exchanger; only the cold side is used

	UALT float64 // kW/K, low-temp recuperator conductance
	UAHT float64 // kW/K, high-temp recuperator conductance

	RecompFrac float64
	EtaMC      float64
	EtaRC      float64
	EtaT       float64

	NSubHXRs   int
	NTurbine   float64 // rpm design turbine speed; <= 0 links to the compressor shaft
	PHighLimit float64 // kPa, maximum allowable pressure anywhere in the cycle
	Tol        float64

	Topology Topology
}

// DesignSolved is the fully resolved design point.
type DesignSolved struct {
	Temp [NNodes]float64
	Pres [NNodes]float64
	Enth [NNodes]float64
	Entr [NNodes]float64
	Dens [NNodes]float64

	MDotMC     float64
	MDotRC     float64
	MDotT      float64
	RecompFrac float64

	UALTCalc float64
	UAHTCalc float64

	WDotNet    float64 // kW
	EtaThermal float64
}

// OffDesignParams specifies one off-design operating point of a finalized
// design.
type OffDesignParams struct {
	TMCIn      float64 // K
	PMCIn      float64 // kPa
	TTIn       float64 // K
	RecompFrac float64
	NMC        float64 // rpm main compressor speed
	NT         float64 // rpm turbine speed; <= 0 links to the compressor shaft
	NSubHXRs   int
	Tol        float64
}

// OffDesignSolved is a resolved off-design operating point.
type OffDesignSolved struct {
	Temp [NNodes]float64
	Pres [NNodes]float64
	Enth [NNodes]float64
	Entr [NNodes]float64
	Dens [NNodes]float64

	MDotMC float64
	MDotRC float64
	MDotT  float64

	WDotNet    float64 // kW
	QDotIn     float64 // kW, primary heat exchanger duty
	EtaThermal float64

	NMC float64
	NT  float64
}

// Cycle is a recompression (or simple, at zero recompression fraction)
// closed Brayton cycle on the given working fluid.
type Cycle struct {
	fl     props.Fluid
	desPar DesignParams

	// last design iterate
	temp, pres, enth, entr, dens [NNodes]float64
	wDotNetLast, etaThermalLast  float64
	mDotMC, mDotRC, mDotT        float64

	LT, HT, PHX, PC HeatExchanger
	MC              Compressor
	RC              Recompressor
	T               Turbine

	desSolved *DesignSolved

	// last off-design iterate
	tempOD, presOD, enthOD, entrOD, densOD [NNodes]float64
	odSolved                               *OffDesignSolved
}

// New returns a cycle on fl with nothing solved yet.
func New(fl props.Fluid) *Cycle { return &Cycle{fl: fl} }

// Fluid returns the working fluid.
func (c *Cycle) Fluid() props.Fluid { return c.fl }

// EtaThermalLast returns the thermal efficiency of the last design solve.
func (c *Cycle) EtaThermalLast() float64 { return c.etaThermalLast }

// WDotNetLast returns the net power of the last design solve.
func (c *Cycle) WDotNetLast() float64 { return c.wDotNetLast }

// DesignParams returns the parameters of the last design solve.
func (c *Cycle) DesignParams() DesignParams { return c.desPar }

// DesignSolved returns the finalized design, or nil before FinalizeDesign.
func (c *Cycle) DesignSolved() *DesignSolved { return c.desSolved }

// OffDesignSolved returns the last off-design solution, or nil.
func (c *Cycle) OffDesignSolved() *OffDesignSolved { return c.odSolved }
