package screening

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/alexiusacademia/goliq/internal/forest"
	"github.com/alexiusacademia/goliq/internal/liquefaction"
)

// ErrNoModel is returned when no classifier artifacts are loaded.
var ErrNoModel = errors.New("classifier artifacts not loaded")

// Artifacts is a trained classifier with its feature scaler
type Artifacts struct {
	Model  *forest.Forest
	Scaler *Scaler
}

// LoadArtifacts reads and cross-checks the classifier and scaler files.
func LoadArtifacts(modelPath, scalerPath string) (*Artifacts, error) {
	model, err := forest.Load(modelPath)
	if err != nil {
		return nil, err
	}
	scaler, err := LoadScaler(scalerPath)
	if err != nil {
		return nil, err
	}
	a := &Artifacts{Model: model, Scaler: scaler}
	if err := a.check(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Artifacts) check() error {
	if len(a.Model.Features) != len(FeatureNames) {
		return fmt.Errorf("screening: model has %d features, want %d", len(a.Model.Features), len(FeatureNames))
	}
	for i, name := range FeatureNames {
		if a.Model.Features[i] != name {
			return fmt.Errorf("screening: model feature %d is %q, want %q", i, a.Model.Features[i], name)
		}
		if len(a.Scaler.Features) > 0 && a.Scaler.Features[i] != name {
			return fmt.Errorf("screening: scaler feature %d is %q, want %q", i, a.Scaler.Features[i], name)
		}
	}
	if len(a.Scaler.Mean) != len(FeatureNames) {
		return fmt.Errorf("screening: scaler has %d columns, want %d", len(a.Scaler.Mean), len(FeatureNames))
	}
	return nil
}

// Assessment holds the outcome of both methods for one input. Either
// method may fail without affecting the other.
type Assessment struct {
	Input Input `json:"input"`

	// Classifier
	Probability     *float64            `json:"probability,omitempty"`
	Risk            RiskTier            `json:"risk"`
	Explanation     *forest.Explanation `json:"explanation,omitempty"`
	ClassifierError string              `json:"classifier_error,omitempty"`

	// Simplified procedure
	Traditional liquefaction.Result  `json:"traditional"`
	FSClass     liquefaction.FSClass `json:"fs_class"`
}

// Assessor runs the dual assessment. The artifacts can be swapped while
// assessments are running.
type Assessor struct {
	artifacts atomic.Pointer[Artifacts]
	logger    *slog.Logger
}

// NewAssessor creates an assessor. a may be nil, in which case only the
// safety factor is computed until artifacts are provided with Swap.
func NewAssessor(a *Artifacts, logger *slog.Logger) *Assessor {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Assessor{logger: logger}
	if a != nil {
		s.artifacts.Store(a)
	}
	return s
}

// Swap replaces the classifier artifacts.
func (s *Assessor) Swap(a *Artifacts) {
	s.artifacts.Store(a)
}

// Loaded reports whether classifier artifacts are available.
func (s *Assessor) Loaded() bool {
	return s.artifacts.Load() != nil
}

// Reload loads new artifacts from disk and swaps them in. On error the
// current artifacts stay active.
func (s *Assessor) Reload(modelPath, scalerPath string) error {
	a, err := LoadArtifacts(modelPath, scalerPath)
	if err != nil {
		return err
	}
	s.Swap(a)
	s.logger.Info("screening: artifacts loaded", "model", modelPath, "scaler", scalerPath, "trees", len(a.Model.Trees))
	return nil
}

// Assess evaluates both methods for in.
func (s *Assessor) Assess(in Input) *Assessment {
	a := &Assessment{Input: in}

	a.Traditional = liquefaction.ComputeInput(in.SiteInput)
	a.FSClass = a.Traditional.Class()
	if !a.Traditional.OK() {
		s.logger.Debug("screening: safety factor failed",
			"kind", a.Traditional.Failure.Kind, "step", a.Traditional.Failure.Step)
	}

	p, expl, err := s.predict(in)
	if err != nil {
		a.ClassifierError = err.Error()
		s.logger.Debug("screening: prediction failed", "err", err)
	} else {
		a.Probability = &p
		a.Explanation = expl
	}
	a.Risk = ClassifyProbability(a.Probability)

	return a
}

func (s *Assessor) predict(in Input) (float64, *forest.Explanation, error) {
	art := s.artifacts.Load()
	if art == nil {
		return 0, nil, ErrNoModel
	}

	raw, err := in.Features()
	if err != nil {
		return 0, nil, err
	}
	scaled, err := art.Scaler.Transform(raw)
	if err != nil {
		return 0, nil, err
	}

	proba, err := art.Model.PredictProba(scaled)
	if err != nil {
		return 0, nil, err
	}
	expl, err := art.Model.Explain(scaled, 1)
	if err != nil {
		return 0, nil, err
	}
	// report the values in the units of the training data, not standardised
	for i := range expl.Attributions {
		expl.Attributions[i].Value = raw[i]
	}

	return proba[1], expl, nil
}
