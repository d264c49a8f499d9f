package screening

import "github.com/alexiusacademia/goliq/internal/liquefaction"

// LayerRisk is the classifier outcome for one layer of a profile
type LayerRisk struct {
	Layer           string   `json:"layer"`
	Probability     *float64 `json:"probability,omitempty"`
	Risk            RiskTier `json:"risk"`
	ClassifierError string   `json:"classifier_error,omitempty"`
}

// ProfileRisks runs the classifier on every evaluated layer, using each
// layer's fines content and grain size. The result is in the order of
// res.Layers.
func (s *Assessor) ProfileRisks(res *liquefaction.ProfileResult) []LayerRisk {
	risks := make([]LayerRisk, len(res.Layers))
	for i, lr := range res.Layers {
		r := LayerRisk{Layer: lr.Layer.Label()}
		p, _, err := s.predict(InputFromLayer(lr.Layer))
		if err != nil {
			r.ClassifierError = err.Error()
		} else {
			r.Probability = &p
		}
		r.Risk = ClassifyProbability(r.Probability)
		risks[i] = r
	}
	return risks
}
