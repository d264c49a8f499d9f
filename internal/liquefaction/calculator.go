package liquefaction

import (
	"errors"
	"math"

	"github.com/alexiusacademia/goliq/internal/seismic"
)

// SiteParameters holds the inputs of the simplified procedure
type SiteParameters struct {
	Depth           float64 `json:"z_m" yaml:"z_m"`                       // z - depth of the layer (m)
	PeakGroundAccel float64 `json:"a_max" yaml:"a_max"`                   // a_max - surface acceleration (g)
	TotalStress     float64 `json:"estres_v_total" yaml:"estres_v_total"` // σv - total vertical stress (kPa)
	EffectiveStress float64 `json:"estres_v_ef" yaml:"estres_v_ef"`       // σ'v - effective vertical stress (kPa)
	Magnitude       float64 `json:"Mw" yaml:"Mw"`                         // Mw - moment magnitude
	BlowCount       float64 `json:"N1_60_cs" yaml:"N1_60_cs"`             // (N1)60cs - corrected SPT blow count
}

// SiteInput is the nullable form of SiteParameters read from documents
// where any field may be missing.
type SiteInput struct {
	Depth           *float64 `json:"z_m" yaml:"z_m"`
	PeakGroundAccel *float64 `json:"a_max" yaml:"a_max"`
	TotalStress     *float64 `json:"estres_v_total" yaml:"estres_v_total"`
	EffectiveStress *float64 `json:"estres_v_ef" yaml:"estres_v_ef"`
	Magnitude       *float64 `json:"Mw" yaml:"Mw"`
	BlowCount       *float64 `json:"N1_60_cs" yaml:"N1_60_cs"`
}

// Params converts the input, failing with InvalidInput on the first missing field.
func (in SiteInput) Params() (SiteParameters, error) {
	fields := []struct {
		key string
		v   *float64
	}{
		{"z_m", in.Depth},
		{"a_max", in.PeakGroundAccel},
		{"estres_v_total", in.TotalStress},
		{"estres_v_ef", in.EffectiveStress},
		{"Mw", in.Magnitude},
		{"N1_60_cs", in.BlowCount},
	}
	for _, f := range fields {
		if f.v == nil {
			return SiteParameters{}, failf(InvalidInput, f.key, "required field is missing")
		}
	}

	return SiteParameters{
		Depth:           *in.Depth,
		PeakGroundAccel: *in.PeakGroundAccel,
		TotalStress:     *in.TotalStress,
		EffectiveStress: *in.EffectiveStress,
		Magnitude:       *in.Magnitude,
		BlowCount:       *in.BlowCount,
	}, nil
}

// Input returns the nullable form with every field set.
func (p SiteParameters) Input() SiteInput {
	return SiteInput{
		Depth:           &p.Depth,
		PeakGroundAccel: &p.PeakGroundAccel,
		TotalStress:     &p.TotalStress,
		EffectiveStress: &p.EffectiveStress,
		Magnitude:       &p.Magnitude,
		BlowCount:       &p.BlowCount,
	}
}

// Factors holds every quantity of a successful evaluation
type Factors struct {
	// FS = CRR_adj / CSR
	SafetyFactor float64 `json:"safety_factor"`

	// Demand
	CSR float64 `json:"cyclic_stress_ratio"`
	Rd  float64 `json:"stress_reduction_factor"`

	// Resistance, CRR_adj = CRR_7.5 · MSF · K_sigma
	CRRAdjusted float64 `json:"adjusted_cyclic_resistance_ratio"`
	CRR75       float64 `json:"cyclic_resistance_ratio_7_5"`
	MSF         float64 `json:"magnitude_scaling_factor"`
	KSigma      float64 `json:"overburden_correction_factor"`
}

// Result is either a set of factors or a failure, never both.
type Result struct {
	Factors *Factors      `json:"factors,omitempty"`
	Failure *ComputeError `json:"failure,omitempty"`
}

// OK reports whether the factors were computed.
func (r Result) OK() bool {
	return r.Factors != nil
}

// SafetyFactor returns FS, or nil when the computation failed.
func (r Result) SafetyFactor() *float64 {
	if r.Factors == nil {
		return nil
	}
	fs := r.Factors.SafetyFactor
	return &fs
}

// Class returns the risk class of the safety factor.
func (r Result) Class() FSClass {
	return ClassifyFS(r.SafetyFactor())
}

// Calculate evaluates the Seed & Idriss simplified procedure.
func Calculate(p SiteParameters) (*Factors, error) {
	inputs := []struct {
		key string
		v   float64
	}{
		{"z_m", p.Depth},
		{"a_max", p.PeakGroundAccel},
		{"estres_v_total", p.TotalStress},
		{"estres_v_ef", p.EffectiveStress},
		{"Mw", p.Magnitude},
		{"N1_60_cs", p.BlowCount},
	}
	for _, in := range inputs {
		if !isFinite(in.v) {
			return nil, failf(InvalidInput, in.key, "value %v is not a finite number", in.v)
		}
	}

	if p.EffectiveStress <= 0 {
		return nil, failf(DomainError, "estres_v_ef", "effective vertical stress must be positive, got %.4g kPa", p.EffectiveStress)
	}

	f := &Factors{}

	// 1. Seismic demand
	f.Rd = seismic.StressReduction(p.Depth)
	if err := checkFinite("rd", f.Rd); err != nil {
		return nil, err
	}
	f.CSR = seismic.CyclicStressRatio(p.PeakGroundAccel, p.TotalStress, p.EffectiveStress, f.Rd)
	if err := checkFinite("CSR", f.CSR); err != nil {
		return nil, err
	}

	// 2. Resistance adjustments
	f.MSF = seismic.MagnitudeScaling(p.Magnitude)
	if err := checkFinite("MSF", f.MSF); err != nil {
		return nil, err
	}
	f.KSigma = seismic.OverburdenCorrection(p.EffectiveStress)
	if err := checkFinite("K_sigma", f.KSigma); err != nil {
		return nil, err
	}

	// 3. Resistance
	f.CRR75 = seismic.CRR75(p.BlowCount)
	if err := checkFinite("CRR_7.5", f.CRR75); err != nil {
		return nil, err
	}
	f.CRRAdjusted = f.CRR75 * f.MSF * f.KSigma
	if err := checkFinite("CRR_adj", f.CRRAdjusted); err != nil {
		return nil, err
	}

	// 4. Factor of safety
	f.SafetyFactor = f.CRRAdjusted / f.CSR
	if err := checkFinite("FS", f.SafetyFactor); err != nil {
		return nil, err
	}

	return f, nil
}

// Compute runs Calculate and folds any failure into the result.
func Compute(p SiteParameters) Result {
	f, err := Calculate(p)
	if err != nil {
		return Result{Failure: asComputeError(err)}
	}
	return Result{Factors: f}
}

// ComputeInput is Compute for nullable input.
func ComputeInput(in SiteInput) Result {
	p, err := in.Params()
	if err != nil {
		return Result{Failure: asComputeError(err)}
	}
	return Compute(p)
}

func asComputeError(err error) *ComputeError {
	var ce *ComputeError
	if errors.As(err, &ce) {
		return ce
	}
	return &ComputeError{Kind: NumericOverflow, Step: "unknown", Detail: err.Error()}
}

func checkFinite(step string, v float64) error {
	if !isFinite(v) {
		return failf(NumericOverflow, step, "computed value %v", v)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
