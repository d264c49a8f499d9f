package screening

import (
	"fmt"

	"github.com/alexiusacademia/goliq/internal/liquefaction"
	"github.com/alexiusacademia/goliq/internal/seismic"
)

// Classifier feature names, in model order
const (
	FeatureBlowCount       = "N1_60_cs"
	FeatureFinesContent    = "FC"
	FeatureMeanGrainSize   = "D50"
	FeaturePGA             = "a_max"
	FeatureEffectiveStress = "estres_v_ef" // psf
	FeatureMagnitude       = "Mw"
)

// FeatureNames lists the classifier features in the order the model expects.
var FeatureNames = []string{
	FeatureBlowCount,
	FeatureFinesContent,
	FeatureMeanGrainSize,
	FeaturePGA,
	FeatureEffectiveStress,
	FeatureMagnitude,
}

// Input holds everything both methods need. The site parameters feed the
// safety factor; fines content and grain size are used by the classifier only.
type Input struct {
	liquefaction.SiteInput `yaml:",inline"`

	FinesContent  *float64 `json:"FC" yaml:"FC"`   // % passing #200 sieve
	MeanGrainSize *float64 `json:"D50" yaml:"D50"` // mm
}

// InputFromLayer builds an input from a profile layer.
func InputFromLayer(l liquefaction.Layer) Input {
	return Input{SiteInput: l.SiteInput, FinesContent: l.FinesContent, MeanGrainSize: l.MeanGrainSize}
}

// Bound is an inclusive range accepted for a classifier feature
type Bound struct {
	Key      string
	Min, Max float64
	Unit     string
}

// Bounds are the ranges covered by the training data entry form. They apply
// to the classifier path only; the safety factor is computed regardless.
var Bounds = []Bound{
	{FeatureBlowCount, 1, 60, "blows"},
	{FeatureFinesContent, 0, 100, "%"},
	{FeatureMeanGrainSize, 0.01, 5, "mm"},
	{FeaturePGA, 0.01, 2, "g"},
	{FeatureEffectiveStress, 1, 1000, "kPa"},
	{FeatureMagnitude, 4, 10, ""},
}

func (in Input) value(key string) *float64 {
	switch key {
	case FeatureBlowCount:
		return in.BlowCount
	case FeatureFinesContent:
		return in.FinesContent
	case FeatureMeanGrainSize:
		return in.MeanGrainSize
	case FeaturePGA:
		return in.PeakGroundAccel
	case FeatureEffectiveStress:
		return in.EffectiveStress
	case FeatureMagnitude:
		return in.Magnitude
	}
	return nil
}

// Validate checks that every classifier feature is present and in range.
func (in Input) Validate() error {
	for _, b := range Bounds {
		v := in.value(b.Key)
		if v == nil {
			return fmt.Errorf("%s is required", b.Key)
		}
		if !(*v >= b.Min && *v <= b.Max) {
			return fmt.Errorf("%s = %g %s is outside %g to %g", b.Key, *v, b.Unit, b.Min, b.Max)
		}
	}
	return nil
}

// Features returns the raw classifier feature vector. Effective stress is
// converted from kPa to psf, the unit of the training data.
func (in Input) Features() ([]float64, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return []float64{
		*in.BlowCount,
		*in.FinesContent,
		*in.MeanGrainSize,
		*in.PeakGroundAccel,
		*in.EffectiveStress * seismic.KPaToPSF,
		*in.Magnitude,
	}, nil
}
