package liquefaction

import "github.com/alexiusacademia/goliq/internal/seismic"

// ScenarioResult is the evaluation of a site under one design earthquake
type ScenarioResult struct {
	Scenario seismic.Scenario `json:"scenario"`
	Result   Result           `json:"result"`
	Class    FSClass          `json:"class"`
}

// EnvelopeResult holds the evaluation of every scenario and the governing one
type EnvelopeResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Governing *ScenarioResult  `json:"governing,omitempty"` // lowest FS, nil if all failed
}

// Envelope evaluates the site under each scenario, replacing the PGA and
// magnitude of p with those of the scenario.
func Envelope(p SiteParameters, scenarios []seismic.Scenario) *EnvelopeResult {
	env := &EnvelopeResult{}
	results := make(map[string]Result, len(scenarios))

	for _, s := range scenarios {
		site := p
		site.PeakGroundAccel = s.PGA
		site.Magnitude = s.Magnitude

		res := Compute(site)
		results[s.ID] = res
		env.Scenarios = append(env.Scenarios, ScenarioResult{Scenario: s, Result: res, Class: res.Class()})
	}

	_, governing, ok := seismic.Governing(scenarios, func(s seismic.Scenario) (float64, bool) {
		res := results[s.ID]
		if !res.OK() {
			return 0, false
		}
		return res.Factors.SafetyFactor, true
	})
	if ok {
		for i := range env.Scenarios {
			if env.Scenarios[i].Scenario.ID == governing.ID {
				env.Governing = &env.Scenarios[i]
				break
			}
		}
	}

	return env
}
