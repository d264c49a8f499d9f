package seismic

import "math"

// Simplified procedure constants (Seed & Idriss, with the
// Idriss & Boulanger 2014 magnitude and overburden relations)

const (
	AtmosphericPressure = 101.3 // Pa in kPa

	// Stress reduction factor (Liao & Whitman 1986)
	RdBreakDepth   = 9.15    // m, upper branch applies at or above this depth
	RdShallowA     = 1.0     // rd = A - B·z for z <= 9.15 m
	RdShallowB     = 0.00765 //
	RdDeepA        = 1.174   // rd = A - B·z for z > 9.15 m
	RdDeepB        = 0.0267  //
	CSRCoefficient = 0.65    // average to peak cyclic stress

	// Magnitude scaling factor
	MSFMin = 0.69 // lower bound

	// Overburden correction
	KSigmaCoefficient = 0.007
	KSigmaExponent    = 1.32
	KSigmaMax         = 1.1 // upper bound, no lower bound is applied

	// Cyclic resistance ratio for (N1)60cs
	DenseBlowCount = 37.0 // at or above: too dense to liquefy by this method
	DenseCRR       = 2.0  // sentinel CRR for dense soils

	// Unit conversion used by the classifier features
	KPaToPSF = 20.8854
)

// StressReduction returns the depth reduction factor rd.
// The linear form is unclamped and turns negative below ~44 m.
func StressReduction(depth float64) float64 {
	if depth <= RdBreakDepth {
		return RdShallowA - RdShallowB*depth
	}
	return RdDeepA - RdDeepB*depth
}

// CyclicStressRatio returns the seismic demand CSR.
// pga is already a fraction of g.
func CyclicStressRatio(pga, totalStress, effectiveStress, rd float64) float64 {
	return CSRCoefficient * pga * (totalStress / effectiveStress) * rd
}

// MagnitudeScaling returns MSF = 6.9·exp(-Mw/4) - 0.058, floored at 0.69.
func MagnitudeScaling(mw float64) float64 {
	msf := 6.9*math.Exp(-mw/4) - 0.058
	return math.Max(msf, MSFMin)
}

// OverburdenCorrection returns K_sigma for the effective vertical stress (kPa).
func OverburdenCorrection(effectiveStress float64) float64 {
	raw := 1 - KSigmaCoefficient*(math.Pow(effectiveStress/AtmosphericPressure, KSigmaExponent)-1)
	return capKSigma(raw)
}

func capKSigma(k float64) float64 {
	return math.Min(k, KSigmaMax)
}

// CRR75 returns the cyclic resistance ratio at Mw 7.5 for a clean-sand
// equivalent blow count.
func CRR75(n float64) float64 {
	if n >= DenseBlowCount {
		return DenseCRR
	}
	return math.Exp(n/14.1 +
		math.Pow(n/126, 2) -
		math.Pow(n/23.6, 3) +
		math.Pow(n/25.4, 4) -
		2.8)
}
