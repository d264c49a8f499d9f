package forest

import (
	"fmt"
	"math"
	"sort"
)

// Attribution is the contribution of one feature to a prediction
type Attribution struct {
	Feature      string  `json:"feature"`
	Value        float64 `json:"value"` // feature value as seen by the model
	Contribution float64 `json:"contribution"`
}

// Explanation decomposes a predicted class probability into a base value
// and per-feature contributions: Prediction = Base + Σ Contribution.
type Explanation struct {
	Class        int           `json:"class"`
	Base         float64       `json:"base_value"`
	Prediction   float64       `json:"prediction"`
	Attributions []Attribution `json:"attributions"` // in feature order
}

// Explain attributes the probability of class for x to the features by
// following each decision path and crediting the change in class
// probability at every split to the feature split on.
func (f *Forest) Explain(x []float64, class int) (*Explanation, error) {
	if err := f.checkInput(x); err != nil {
		return nil, err
	}
	if class < 0 || class >= f.Classes {
		return nil, fmt.Errorf("forest: class %d out of range", class)
	}

	contrib := make([]float64, len(f.Features))
	var base, pred float64

	for _, t := range f.Trees {
		path := t.path(x)
		base += t.Nodes[0].Value[class]
		for k := 1; k < len(path); k++ {
			parent, child := t.Nodes[path[k-1]], t.Nodes[path[k]]
			contrib[parent.Feature] += child.Value[class] - parent.Value[class]
		}
		pred += t.Nodes[path[len(path)-1]].Value[class]
	}

	n := float64(len(f.Trees))
	e := &Explanation{
		Class:      class,
		Base:       base / n,
		Prediction: pred / n,
	}
	for i, name := range f.Features {
		e.Attributions = append(e.Attributions, Attribution{
			Feature:      name,
			Value:        x[i],
			Contribution: contrib[i] / n,
		})
	}
	return e, nil
}

// Ranked returns the attributions ordered by decreasing magnitude.
func (e *Explanation) Ranked() []Attribution {
	ranked := make([]Attribution, len(e.Attributions))
	copy(ranked, e.Attributions)
	sort.SliceStable(ranked, func(i, j int) bool {
		return math.Abs(ranked[i].Contribution) > math.Abs(ranked[j].Contribution)
	})
	return ranked
}
