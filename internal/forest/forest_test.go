package forest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoTrees = `{
  "features": ["a", "b"],
  "n_classes": 2,
  "trees": [
    {"nodes": [
      {"feature": 0, "threshold": 0.5, "left": 1, "right": 2, "value": [6, 4]},
      {"feature": -2, "threshold": 0, "left": -1, "right": -1, "value": [5, 1]},
      {"feature": -2, "threshold": 0, "left": -1, "right": -1, "value": [1, 3]}
    ]},
    {"nodes": [
      {"feature": 1, "threshold": 0.0, "left": 1, "right": 2, "value": [5, 5]},
      {"feature": 0, "threshold": -1.0, "left": 3, "right": 4, "value": [4, 2]},
      {"feature": -2, "threshold": 0, "left": -1, "right": -1, "value": [1, 3]},
      {"feature": -2, "threshold": 0, "left": -1, "right": -1, "value": [3, 0]},
      {"feature": -2, "threshold": 0, "left": -1, "right": -1, "value": [1, 2]}
    ]}
  ]
}`

func decode(t *testing.T, s string) *Forest {
	t.Helper()
	f, err := Decode(strings.NewReader(s))
	require.NoError(t, err)
	return f
}

func TestDecode_NormalisesValues(t *testing.T) {
	f := decode(t, twoTrees)
	assert.InDelta(t, 0.6, f.Trees[0].Nodes[0].Value[0], 1e-12)
	assert.InDelta(t, 0.4, f.Trees[0].Nodes[0].Value[1], 1e-12)
	assert.True(t, f.Trees[1].Nodes[4].IsLeaf())
}

func TestPredictProba(t *testing.T) {
	f := decode(t, twoTrees)

	p, err := f.PredictProba([]float64{1.0, -0.5})
	require.NoError(t, err)
	assert.InDelta(t, (0.75+2.0/3)/2, p[1], 1e-12)
	assert.InDelta(t, 1.0, p[0]+p[1], 1e-12)

	// threshold is inclusive on the left
	p, err = f.PredictProba([]float64{0.5, 0.0})
	require.NoError(t, err)
	assert.InDelta(t, (1.0/6+2.0/3)/2, p[1], 1e-12)

	_, err = f.PredictProba([]float64{1})
	assert.Error(t, err)
}

func TestExplain_SumsToPrediction(t *testing.T) {
	f := decode(t, twoTrees)
	x := []float64{1.0, -0.5}

	e, err := f.Explain(x, 1)
	require.NoError(t, err)

	assert.InDelta(t, 0.45, e.Base, 1e-12)
	require.Len(t, e.Attributions, 2)
	assert.Equal(t, "a", e.Attributions[0].Feature)
	assert.InDelta(t, (0.35+1.0/3)/2, e.Attributions[0].Contribution, 1e-12)
	assert.InDelta(t, -1.0/12, e.Attributions[1].Contribution, 1e-12)
	assert.Equal(t, -0.5, e.Attributions[1].Value)

	sum := e.Base
	for _, a := range e.Attributions {
		sum += a.Contribution
	}
	p, _ := f.PredictProba(x)
	assert.InDelta(t, p[1], sum, 1e-12)
	assert.InDelta(t, p[1], e.Prediction, 1e-12)

	ranked := e.Ranked()
	assert.Equal(t, "a", ranked[0].Feature)
	assert.Equal(t, "b", ranked[1].Feature)

	_, err = f.Explain(x, 2)
	assert.Error(t, err)
}

func TestDecode_Invalid(t *testing.T) {
	tests := map[string]string{
		"not json":      `{`,
		"no features":   `{"features": [], "n_classes": 2, "trees": [{"nodes": [{"left": -1, "right": -1, "value": [1, 1]}]}]}`,
		"one class":     `{"features": ["a"], "n_classes": 1, "trees": [{"nodes": [{"left": -1, "right": -1, "value": [1]}]}]}`,
		"no trees":      `{"features": ["a"], "n_classes": 2, "trees": []}`,
		"empty tree":    `{"features": ["a"], "n_classes": 2, "trees": [{"nodes": []}]}`,
		"value length":  `{"features": ["a"], "n_classes": 2, "trees": [{"nodes": [{"left": -1, "right": -1, "value": [1]}]}]}`,
		"bad feature":   `{"features": ["a"], "n_classes": 2, "trees": [{"nodes": [{"feature": 3, "left": 1, "right": 2, "value": [1, 1]}, {"left": -1, "right": -1, "value": [1, 0]}, {"left": -1, "right": -1, "value": [0, 1]}]}]}`,
		"cycle":         `{"features": ["a"], "n_classes": 2, "trees": [{"nodes": [{"feature": 0, "left": 0, "right": 1, "value": [1, 1]}, {"left": -1, "right": -1, "value": [0, 1]}]}]}`,
		"zero weights":  `{"features": ["a"], "n_classes": 2, "trees": [{"nodes": [{"left": -1, "right": -1, "value": [0, 0]}]}]}`,
		"negative":      `{"features": ["a"], "n_classes": 2, "trees": [{"nodes": [{"left": -1, "right": -1, "value": [-1, 2]}]}]}`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, []byte(twoTrees), 0o644))

	f, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, f.Trees, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
