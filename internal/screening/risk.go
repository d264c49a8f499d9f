package screening

// RiskTier is the class of a predicted liquefaction probability
type RiskTier string

const (
	RiskError    RiskTier = "Error"
	RiskLow      RiskTier = "Low risk"
	RiskModerate RiskTier = "Moderate risk"
	RiskHigh     RiskTier = "High risk"
	RiskVeryHigh RiskTier = "Very high risk"
)

// Tier lower bounds
const (
	ModerateThreshold = 0.20
	HighThreshold     = 0.50
	VeryHighThreshold = 0.80
)

// ClassifyProbability maps a probability in [0, 1] to its tier. A nil
// probability means the prediction failed.
func ClassifyProbability(p *float64) RiskTier {
	if p == nil {
		return RiskError
	}
	switch {
	case *p >= VeryHighThreshold:
		return RiskVeryHigh
	case *p >= HighThreshold:
		return RiskHigh
	case *p >= ModerateThreshold:
		return RiskModerate
	default:
		return RiskLow
	}
}

// Interpretation returns the explanatory sentence shown next to the tier.
func (r RiskTier) Interpretation() string {
	switch r {
	case RiskVeryHigh, RiskHigh:
		return "The model is confident this scenario is dangerous, based on patterns from historical failure cases."
	case RiskModerate:
		return "The model is uncertain. The parameters match both failure and non-failure cases; caution is advised."
	case RiskLow:
		return "The model is confident this scenario is safe."
	default:
		return "The liquefaction probability could not be computed."
	}
}
