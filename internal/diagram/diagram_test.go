package diagram

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexiusacademia/goliq/internal/forest"
	"github.com/alexiusacademia/goliq/internal/liquefaction"
)

func explanation() *forest.Explanation {
	return &forest.Explanation{
		Class:      1,
		Base:       0.45,
		Prediction: 0.70,
		Attributions: []forest.Attribution{
			{Feature: "N1_60_cs", Value: 12, Contribution: 0.30},
			{Feature: "FC", Value: 35, Contribution: -0.10},
			{Feature: "Mw", Value: 7.5, Contribution: 0.05},
		},
	}
}

func profileResult(t *testing.T) *liquefaction.ProfileResult {
	t.Helper()
	layer := func(name string, z, n float64) liquefaction.Layer {
		site := liquefaction.SiteParameters{
			Depth: z, PeakGroundAccel: 0.3, TotalStress: 18 * z,
			EffectiveStress: 18*z - 9.81*(z-1), Magnitude: 7.5, BlowCount: n,
		}
		return liquefaction.Layer{Name: name, SiteInput: site.Input()}
	}
	p := liquefaction.Profile{Name: "bh", Layers: []liquefaction.Layer{
		layer("fill", 2, 25), layer("loose", 5, 8), layer("dense", 9, 30),
	}}
	res, err := p.Evaluate()
	require.NoError(t, err)
	return res
}

func TestDrawAttributionWaterfall(t *testing.T) {
	out := DrawAttributionWaterfall(explanation())

	for _, want := range []string{"base value", "prediction", "N1_60_cs = 12", "FC = 35", "+0.3000", "-0.1000", "0.7000"} {
		assert.Contains(t, out, want)
	}
	// largest contribution first
	assert.Less(t, strings.Index(out, "N1_60_cs"), strings.Index(out, "FC ="))
	assert.Less(t, strings.Index(out, "FC ="), strings.Index(out, "Mw ="))
	assert.Contains(t, out, "░")
	assert.Contains(t, out, "█")
}

func TestDrawFSGauge(t *testing.T) {
	out := DrawFSGauge(0.8)
	assert.Contains(t, out, "FS = 0.800")
	assert.Contains(t, out, "▲")

	// off-scale values stay on the gauge
	assert.NotPanics(t, func() { DrawFSGauge(12) })
	assert.NotPanics(t, func() { DrawFSGauge(-1) })
}

func TestProfileGraph(t *testing.T) {
	out := ProfileGraph(profileResult(t))
	assert.Contains(t, out, "fill")
	assert.Contains(t, out, "dense")

	single := &liquefaction.ProfileResult{Critical: -1}
	assert.Empty(t, ProfileGraph(single))
}

func TestDrawSummaryBox(t *testing.T) {
	out := DrawSummaryBox("RESULT", []string{"FS = 0.368", "σ'v = 100 kPa"})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 6)
	for _, l := range lines {
		assert.Equal(t, width(lines[0]), width(l), l)
	}
}

func TestExportProfile(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"profile.png", "profile.svg", "nested/profile.pdf"} {
		path := filepath.Join(dir, name)
		require.NoError(t, ExportProfile(profileResult(t), path))
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}

	err := ExportProfile(&liquefaction.ProfileResult{Critical: -1}, filepath.Join(dir, "empty.png"))
	assert.Error(t, err)
}

func TestExportAttribution(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, ExportAttribution(explanation(), filepath.Join(dir, "attr")))
	_, err := os.Stat(filepath.Join(dir, "attr.png"))
	assert.NoError(t, err)

	assert.Error(t, ExportAttribution(&forest.Explanation{}, filepath.Join(dir, "none.png")))
}
