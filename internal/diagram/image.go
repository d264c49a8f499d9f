package diagram

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/alexiusacademia/goliq/internal/forest"
	"github.com/alexiusacademia/goliq/internal/liquefaction"
)

var (
	demandColor     = color.RGBA{R: 200, G: 30, B: 30, A: 255}
	resistanceColor = color.RGBA{R: 0, G: 100, B: 0, A: 255}
	fsColor         = color.RGBA{R: 0, G: 0, B: 139, A: 255}
	thresholdColor  = color.RGBA{R: 255, G: 165, B: 0, A: 255}
)

// ExportProfile exports FS, CSR and CRR against depth for a profile.
// Depth increases downward. Layers that could not be computed are left out.
func ExportProfile(res *liquefaction.ProfileResult, filename string) error {
	var fs, csr, crr plotter.XYs
	maxDepth := 0.0
	for _, lr := range res.Layers {
		f := lr.Result.Factors
		if f == nil || lr.Layer.Depth == nil {
			continue
		}
		z := *lr.Layer.Depth
		fs = append(fs, plotter.XY{X: f.SafetyFactor, Y: z})
		csr = append(csr, plotter.XY{X: f.CSR, Y: z})
		crr = append(crr, plotter.XY{X: f.CRRAdjusted, Y: z})
		maxDepth = max(maxDepth, z)
	}
	if len(fs) == 0 {
		return fmt.Errorf("diagram: no layer of the profile could be computed")
	}

	p := plot.New()
	p.Title.Text = "Liquefaction Triggering Profile"
	p.X.Label.Text = "FS, CSR, CRR"
	p.Y.Label.Text = "Depth (m)"
	p.Y.Scale = plot.InvertedScale{Normalizer: plot.LinearScale{}}
	p.Y.Min = 0
	p.Y.Max = maxDepth * 1.1
	p.X.Min = 0
	p.Legend.Top = true

	series := []struct {
		name  string
		pts   plotter.XYs
		color color.Color
		shape draw.GlyphDrawer
	}{
		{"FS", fs, fsColor, draw.CircleGlyph{}},
		{"CSR (demand)", csr, demandColor, draw.TriangleGlyph{}},
		{"CRR (resistance)", crr, resistanceColor, draw.SquareGlyph{}},
	}
	for _, s := range series {
		line, points, err := plotter.NewLinePoints(s.pts)
		if err != nil {
			return err
		}
		line.LineStyle.Width = vg.Points(2)
		line.LineStyle.Color = s.color
		points.GlyphStyle.Color = s.color
		points.GlyphStyle.Shape = s.shape
		points.GlyphStyle.Radius = vg.Points(3)
		p.Add(line, points)
		p.Legend.Add(s.name, line, points)
	}

	// Threshold reference lines
	for _, t := range []float64{liquefaction.FSLiquefiable, liquefaction.FSMarginal} {
		ref, err := plotter.NewLine(plotter.XYs{{X: t, Y: 0}, {X: t, Y: p.Y.Max}})
		if err != nil {
			return err
		}
		ref.LineStyle.Color = thresholdColor
		ref.LineStyle.Dashes = []vg.Length{vg.Points(3), vg.Points(3)}
		p.Add(ref)
	}

	// Mark the critical layer
	if critical, ok := res.CriticalLayer(); ok && critical.Layer.Depth != nil {
		pt := plotter.XY{X: critical.Result.Factors.SafetyFactor, Y: *critical.Layer.Depth}
		mark, err := plotter.NewScatter(plotter.XYs{pt})
		if err != nil {
			return err
		}
		mark.GlyphStyle.Color = demandColor
		mark.GlyphStyle.Radius = vg.Points(6)
		mark.GlyphStyle.Shape = draw.RingGlyph{}
		p.Add(mark)

		l, err := plotter.NewLabels(plotter.XYLabels{
			XYs:    []plotter.XY{pt},
			Labels: []string{fmt.Sprintf("  critical: %s", critical.Layer.Label())},
		})
		if err != nil {
			return err
		}
		p.Add(l)
	}

	return save(p, 6*vg.Inch, 8*vg.Inch, filename)
}

// ExportAttribution exports the feature attribution of an assessment as a
// horizontal bar chart, largest contribution on top.
func ExportAttribution(expl *forest.Explanation, filename string) error {
	ranked := expl.Ranked()
	if len(ranked) == 0 {
		return fmt.Errorf("diagram: explanation has no attributions")
	}

	// bar charts stack from the bottom
	n := len(ranked)
	raises := make(plotter.Values, n)
	lowers := make(plotter.Values, n)
	names := make([]string, n)
	for i, a := range ranked {
		j := n - 1 - i
		names[j] = fmt.Sprintf("%s = %g", a.Feature, a.Value)
		if a.Contribution >= 0 {
			raises[j] = a.Contribution
		} else {
			lowers[j] = a.Contribution
		}
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Feature Attribution (base %.3f → %.3f)", expl.Base, expl.Prediction)
	p.X.Label.Text = "Contribution to probability"

	barWidth := vg.Points(14)
	for _, s := range []struct {
		name   string
		values plotter.Values
		color  color.Color
	}{
		{"raises risk", raises, demandColor},
		{"lowers risk", lowers, resistanceColor},
	} {
		bars, err := plotter.NewBarChart(s.values, barWidth)
		if err != nil {
			return err
		}
		bars.Horizontal = true
		bars.Color = s.color
		bars.LineStyle.Width = 0
		p.Add(bars)
		p.Legend.Add(s.name, bars)
	}
	p.NominalY(names...)
	p.Add(plotter.NewGrid())

	return save(p, 8*vg.Inch, 5*vg.Inch, filename)
}

// save writes the plot in the format given by the file extension,
// defaulting to PNG.
func save(p *plot.Plot, width, height vg.Length, filename string) error {
	dir := filepath.Dir(filename)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png", ".svg", ".pdf":
		return p.Save(width, height, filename)
	default:
		return p.Save(width, height, filename+".png")
	}
}
