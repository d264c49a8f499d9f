package liquefaction

import (
	"fmt"
	"sort"
)

// Layer is one analysed point of a soil profile
type Layer struct {
	Name      string `json:"name,omitempty" yaml:"name,omitempty"`
	SiteInput `yaml:",inline"`

	// Classifier-only soil descriptors
	FinesContent  *float64 `json:"FC,omitempty" yaml:"FC,omitempty"`   // % passing #200 sieve
	MeanGrainSize *float64 `json:"D50,omitempty" yaml:"D50,omitempty"` // mm
}

// Label returns the layer name, or its depth when unnamed.
func (l Layer) Label() string {
	if l.Name != "" {
		return l.Name
	}
	if l.Depth != nil {
		return fmt.Sprintf("z = %.2f m", *l.Depth)
	}
	return "unnamed layer"
}

// Profile is a set of layers analysed for the same site
type Profile struct {
	Name        string  `json:"name,omitempty" yaml:"name,omitempty"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Layers      []Layer `json:"layers" yaml:"layers"`
}

// LayerResult pairs a layer with its evaluation
type LayerResult struct {
	Layer  Layer   `json:"layer"`
	Result Result  `json:"result"`
	Class  FSClass `json:"class"`
}

// ProfileResult holds the evaluation of every layer
type ProfileResult struct {
	Layers []LayerResult `json:"layers"`

	// Index into Layers of the lowest successful FS, -1 if none succeeded
	Critical int `json:"critical"`

	Liquefiable int `json:"liquefiable"` // layers with FS < 1.0
	Marginal    int `json:"marginal"`    // layers with 1.0 <= FS < 1.3
	Failed      int `json:"failed"`      // layers that could not be computed
}

// CriticalLayer returns the layer governing the profile.
func (r *ProfileResult) CriticalLayer() (LayerResult, bool) {
	if r.Critical < 0 || r.Critical >= len(r.Layers) {
		return LayerResult{}, false
	}
	return r.Layers[r.Critical], true
}

// Evaluate computes every layer, ordered by depth. Layers without a depth
// keep their relative order at the end.
func (p *Profile) Evaluate() (*ProfileResult, error) {
	if len(p.Layers) == 0 {
		return nil, fmt.Errorf("profile %q has no layers", p.Name)
	}

	layers := make([]Layer, len(p.Layers))
	copy(layers, p.Layers)
	sort.SliceStable(layers, func(i, j int) bool {
		a, b := layers[i].Depth, layers[j].Depth
		if a == nil || b == nil {
			return a != nil && b == nil
		}
		return *a < *b
	})

	result := &ProfileResult{Critical: -1}
	minFS := 0.0
	for _, layer := range layers {
		res := ComputeInput(layer.SiteInput)
		lr := LayerResult{Layer: layer, Result: res, Class: res.Class()}
		result.Layers = append(result.Layers, lr)

		switch lr.Class {
		case ClassLiquefiable:
			result.Liquefiable++
		case ClassMarginal:
			result.Marginal++
		case ClassError:
			result.Failed++
		}

		if res.OK() && (result.Critical < 0 || res.Factors.SafetyFactor < minFS) {
			minFS = res.Factors.SafetyFactor
			result.Critical = len(result.Layers) - 1
		}
	}

	return result, nil
}
