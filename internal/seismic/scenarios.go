package seismic

import "fmt"

// Scenario represents a design earthquake for liquefaction triggering
type Scenario struct {
	ID          string  `json:"id" yaml:"id"`
	Description string  `json:"description" yaml:"description"`
	PGA         float64 `json:"a_max" yaml:"a_max"` // Peak ground acceleration (g)
	Magnitude   float64 `json:"Mw" yaml:"Mw"`       // Moment magnitude
}

// MaxSweepScenarios bounds the scenarios of one magnitude sweep
const MaxSweepScenarios = 1000

// MagnitudeSweep builds scenarios at a fixed PGA for magnitudes from
// minMw to maxMw (inclusive) in steps of step.
func MagnitudeSweep(pga, minMw, maxMw, step float64) ([]Scenario, error) {
	if step <= 0 {
		return nil, fmt.Errorf("invalid magnitude step: %.2f", step)
	}
	if maxMw < minMw {
		return nil, fmt.Errorf("invalid magnitude range: %.2f to %.2f", minMw, maxMw)
	}

	steps := (maxMw-minMw)/step + 1e-9
	if !(steps+1 <= MaxSweepScenarios) {
		return nil, fmt.Errorf("magnitude sweep %.2f to %.2f by %g exceeds %d scenarios", minMw, maxMw, step, MaxSweepScenarios)
	}

	var scenarios []Scenario
	// integer stepping keeps the end point exact
	count := int(steps) + 1
	for i := 0; i < count; i++ {
		mw := minMw + float64(i)*step
		scenarios = append(scenarios, Scenario{
			ID:          fmt.Sprintf("%d", i+1),
			Description: fmt.Sprintf("Mw %.1f, a_max %.2fg", mw, pga),
			PGA:         pga,
			Magnitude:   mw,
		})
	}
	return scenarios, nil
}

// DefaultSweep is the magnitude range used when no scenario file is given
func DefaultSweep(pga float64) []Scenario {
	scenarios, _ := MagnitudeSweep(pga, 5.5, 8.5, 0.5)
	return scenarios
}

// Governing finds the scenario with the lowest value reported by eval.
// Scenarios for which eval reports ok=false are skipped.
func Governing(scenarios []Scenario, eval func(Scenario) (float64, bool)) (float64, Scenario, bool) {
	var minValue float64
	var governing Scenario
	found := false

	for _, s := range scenarios {
		v, ok := eval(s)
		if !ok {
			continue
		}
		if !found || v < minValue {
			minValue = v
			governing = s
			found = true
		}
	}

	return minValue, governing, found
}
