package screening

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexiusacademia/goliq/internal/liquefaction"
)

func f64(v float64) *float64 { return &v }

// defaultInput mirrors the default values of the entry form.
func defaultInput() Input {
	site := liquefaction.SiteParameters{
		Depth:           10,
		PeakGroundAccel: 0.4,
		TotalStress:     180,
		EffectiveStress: 100,
		Magnitude:       7.5,
		BlowCount:       15,
	}
	return Input{SiteInput: site.Input(), FinesContent: f64(10), MeanGrainSize: f64(0.25)}
}

func loadTestArtifacts(t *testing.T) *Artifacts {
	t.Helper()
	a, err := LoadArtifacts("testdata/model.json", "testdata/scaler.json")
	require.NoError(t, err)
	return a
}

func TestAssess_BothMethods(t *testing.T) {
	s := NewAssessor(loadTestArtifacts(t), nil)
	a := s.Assess(defaultInput())

	require.NotNil(t, a.Probability)
	assert.InDelta(t, 0.75, *a.Probability, 1e-12)
	assert.Equal(t, RiskHigh, a.Risk)
	assert.Empty(t, a.ClassifierError)

	require.NotNil(t, a.Explanation)
	assert.InDelta(t, 0.5, a.Explanation.Base, 1e-12)
	assert.InDelta(t, 0.25, a.Explanation.Attributions[0].Contribution, 1e-12)
	// values are reported in training units
	assert.InDelta(t, 2088.54, a.Explanation.Attributions[4].Value, 1e-9)
	assert.Equal(t, 15.0, a.Explanation.Attributions[0].Value)

	require.True(t, a.Traditional.OK())
	assert.InDelta(t, 0.367891, a.Traditional.Factors.SafetyFactor, 1e-6)
	assert.Equal(t, liquefaction.ClassLiquefiable, a.FSClass)
}

func TestAssess_DenseSoilLowRisk(t *testing.T) {
	s := NewAssessor(loadTestArtifacts(t), nil)
	in := defaultInput()
	in.BlowCount = f64(25)

	a := s.Assess(in)
	require.NotNil(t, a.Probability)
	assert.InDelta(t, 0.1, *a.Probability, 1e-12)
	assert.Equal(t, RiskLow, a.Risk)

	sum := a.Explanation.Base
	for _, attr := range a.Explanation.Attributions {
		sum += attr.Contribution
	}
	assert.InDelta(t, *a.Probability, sum, 1e-12)
	assert.Equal(t, FeatureBlowCount, a.Explanation.Ranked()[0].Feature)
}

func TestAssess_WithoutModel(t *testing.T) {
	s := NewAssessor(nil, nil)
	assert.False(t, s.Loaded())

	a := s.Assess(defaultInput())
	assert.Nil(t, a.Probability)
	assert.Equal(t, RiskError, a.Risk)
	assert.Equal(t, ErrNoModel.Error(), a.ClassifierError)
	assert.True(t, a.Traditional.OK())

	s.Swap(loadTestArtifacts(t))
	assert.True(t, s.Loaded())
	assert.NotNil(t, s.Assess(defaultInput()).Probability)
}

func TestAssess_MethodsFailIndependently(t *testing.T) {
	s := NewAssessor(loadTestArtifacts(t), nil)

	// the calculator fails, the classifier does not need depth
	in := defaultInput()
	in.Depth = nil
	a := s.Assess(in)
	assert.False(t, a.Traditional.OK())
	assert.Equal(t, liquefaction.ClassError, a.FSClass)
	assert.NotNil(t, a.Probability)

	// the classifier rejects an out-of-range value, the calculator does not
	in = defaultInput()
	in.FinesContent = nil
	a = s.Assess(in)
	assert.Nil(t, a.Probability)
	assert.Contains(t, a.ClassifierError, "FC")
	assert.True(t, a.Traditional.OK())
}

func TestLoadArtifacts_Mismatch(t *testing.T) {
	dir := t.TempDir()
	model, err := os.ReadFile("testdata/model.json")
	require.NoError(t, err)
	swapped := strings.Replace(string(model), `"FC", "D50"`, `"D50", "FC"`, 1)
	modelPath := filepath.Join(dir, "model.json")
	require.NoError(t, os.WriteFile(modelPath, []byte(swapped), 0o644))

	_, err = LoadArtifacts(modelPath, "testdata/scaler.json")
	assert.Error(t, err)

	_, err = LoadArtifacts("testdata/model.json", filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestAssessor_ReloadKeepsPreviousOnError(t *testing.T) {
	s := NewAssessor(loadTestArtifacts(t), nil)
	err := s.Reload("testdata/missing.json", "testdata/scaler.json")
	assert.Error(t, err)
	assert.True(t, s.Loaded())
}

// copyArtifacts places the test artifacts in a temporary directory.
func copyArtifacts(t *testing.T) (modelPath, scalerPath string) {
	t.Helper()
	dir := t.TempDir()
	modelPath = filepath.Join(dir, "model.json")
	scalerPath = filepath.Join(dir, "scaler.json")
	for src, dst := range map[string]string{"testdata/model.json": modelPath, "testdata/scaler.json": scalerPath} {
		data, err := os.ReadFile(src)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(dst, data, 0o644))
	}
	return modelPath, scalerPath
}

// watchUntilLoaded starts Watch on an empty assessor and calls save on
// every tick until the artifacts are loaded.
func watchUntilLoaded(t *testing.T, modelPath, scalerPath string, save func()) {
	t.Helper()
	s := NewAssessor(nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan error, 16)
	go func() {
		_ = s.Watch(ctx, modelPath, scalerPath, func(err error) { reloaded <- err })
	}()

	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for !s.Loaded() {
		select {
		case <-deadline:
			t.Fatal("artifacts were not reloaded")
		case <-reloaded:
		case <-tick.C:
			save()
		}
	}
}

func TestAssessor_Watch(t *testing.T) {
	modelPath, scalerPath := copyArtifacts(t)
	data, err := os.ReadFile(modelPath)
	require.NoError(t, err)

	watchUntilLoaded(t, modelPath, scalerPath, func() {
		require.NoError(t, os.WriteFile(modelPath, data, 0o644))
	})
}

func TestAssessor_WatchRenameOver(t *testing.T) {
	modelPath, scalerPath := copyArtifacts(t)
	data, err := os.ReadFile(modelPath)
	require.NoError(t, err)

	tmp := modelPath + ".tmp"
	watchUntilLoaded(t, modelPath, scalerPath, func() {
		require.NoError(t, os.WriteFile(tmp, data, 0o644))
		require.NoError(t, os.Rename(tmp, modelPath))
	})
}

func TestAssessor_WatchIgnoresOtherFiles(t *testing.T) {
	modelPath, scalerPath := copyArtifacts(t)
	s := NewAssessor(nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan error, 16)
	go func() {
		_ = s.Watch(ctx, modelPath, scalerPath, func(err error) { reloaded <- err })
	}()

	other := filepath.Join(filepath.Dir(modelPath), "notes.txt")
	deadline := time.After(500 * time.Millisecond)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case <-reloaded:
			t.Fatal("unrelated file triggered a reload")
		case <-tick.C:
			require.NoError(t, os.WriteFile(other, []byte("x"), 0o644))
		case <-deadline:
			assert.False(t, s.Loaded())
			return
		}
	}
}

func TestProfileRisks(t *testing.T) {
	in := defaultInput()
	bare := in.SiteInput
	profile := liquefaction.Profile{Layers: []liquefaction.Layer{
		{Name: "no descriptors", SiteInput: bare},
		{Name: "sand", SiteInput: in.SiteInput, FinesContent: in.FinesContent, MeanGrainSize: in.MeanGrainSize},
	}}
	res, err := profile.Evaluate()
	require.NoError(t, err)

	s := NewAssessor(loadTestArtifacts(t), nil)
	risks := s.ProfileRisks(res)
	require.Len(t, risks, 2)

	want := s.Assess(in)
	require.NotNil(t, want.Probability)
	assert.Equal(t, "sand", risks[1].Layer)
	require.NotNil(t, risks[1].Probability)
	assert.InDelta(t, *want.Probability, *risks[1].Probability, 1e-12)
	assert.Equal(t, want.Risk, risks[1].Risk)

	assert.Nil(t, risks[0].Probability)
	assert.Equal(t, RiskError, risks[0].Risk)
	assert.Contains(t, risks[0].ClassifierError, "FC")

	none := NewAssessor(nil, nil).ProfileRisks(res)
	assert.Equal(t, ErrNoModel.Error(), none[1].ClassifierError)
}
