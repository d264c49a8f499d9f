package diagram

import (
	"fmt"
	"math"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/alexiusacademia/goliq/internal/forest"
	"github.com/alexiusacademia/goliq/internal/liquefaction"
)

// DrawAttributionWaterfall renders how each feature moves the prediction
// away from the base value, largest contribution first. Negative bars grow
// left of the axis, positive bars right.
func DrawAttributionWaterfall(expl *forest.Explanation) string {
	var sb strings.Builder

	halfWidth := 20
	ranked := expl.Ranked()

	maxAbs := 0.0
	labelWidth := len("prediction")
	labels := make([]string, len(ranked))
	for i, a := range ranked {
		maxAbs = math.Max(maxAbs, math.Abs(a.Contribution))
		labels[i] = fmt.Sprintf("%s = %g", a.Feature, a.Value)
		if len(labels[i]) > labelWidth {
			labelWidth = len(labels[i])
		}
	}
	scale := 0.0
	if maxAbs > 0 {
		scale = float64(halfWidth) / maxAbs
	}

	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  FEATURE ATTRIBUTION (class %d probability)\n", expl.Class))
	sb.WriteString("  ─────────────────────────────────────────\n\n")
	sb.WriteString(fmt.Sprintf("  %-*s %8.4f\n", labelWidth, "base value", expl.Base))

	running := expl.Base
	for i, a := range ranked {
		running += a.Contribution
		n := int(math.Round(math.Abs(a.Contribution) * scale))

		left := strings.Repeat(" ", halfWidth)
		right := ""
		if a.Contribution < 0 {
			left = strings.Repeat(" ", halfWidth-n) + strings.Repeat("░", n)
		} else {
			right = strings.Repeat("█", n)
		}
		sb.WriteString(fmt.Sprintf("  %-*s %+8.4f %s│%-*s → %.4f\n",
			labelWidth, labels[i], a.Contribution, left, halfWidth, right, running))
	}

	sb.WriteString(fmt.Sprintf("  %-*s %8.4f\n", labelWidth, "prediction", expl.Prediction))

	sb.WriteString("\n")
	sb.WriteString("  Legend:\n")
	sb.WriteString("  ███ = raises the probability of liquefaction\n")
	sb.WriteString("  ░░░ = lowers the probability of liquefaction\n")

	return sb.String()
}

// DrawFSGauge places a safety factor on a 0 to 2 scale with the
// liquefiable and marginal thresholds marked.
func DrawFSGauge(fs float64) string {
	var sb strings.Builder

	width := 40
	limit := 2.0
	pos := func(v float64) int {
		return int(math.Round(math.Min(v, limit) / limit * float64(width)))
	}

	line := []rune(strings.Repeat("─", width+1))
	line[pos(liquefaction.FSLiquefiable)] = '┼'
	line[pos(liquefaction.FSMarginal)] = '┼'
	marker := []rune(strings.Repeat(" ", width+1))
	marker[pos(math.Max(fs, 0))] = '▲'

	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  0%s1.0%s1.3%s2.0+\n",
		strings.Repeat(" ", pos(liquefaction.FSLiquefiable)-1),
		strings.Repeat(" ", pos(liquefaction.FSMarginal)-pos(liquefaction.FSLiquefiable)-3),
		strings.Repeat(" ", width-pos(liquefaction.FSMarginal)-3)))
	sb.WriteString(fmt.Sprintf("  %s\n", string(line)))
	sb.WriteString(fmt.Sprintf("  %s FS = %.3f\n", string(marker), fs))

	return sb.String()
}

// ProfileGraph plots the safety factor of each successful layer, shallow
// to deep, with the FS = 1 line for reference. It returns an empty string
// when fewer than two layers could be computed.
func ProfileGraph(res *liquefaction.ProfileResult) string {
	var fs, ref []float64
	var first, last string
	for _, lr := range res.Layers {
		if !lr.Result.OK() {
			continue
		}
		if first == "" {
			first = lr.Layer.Label()
		}
		last = lr.Layer.Label()
		fs = append(fs, lr.Result.Factors.SafetyFactor)
		ref = append(ref, liquefaction.FSLiquefiable)
	}
	if len(fs) < 2 {
		return ""
	}

	graph := asciigraph.PlotMany([][]float64{fs, ref},
		asciigraph.Height(12),
		asciigraph.Precision(2),
		asciigraph.Caption(fmt.Sprintf("FS by layer: %s → %s (flat line: FS = 1.0)", first, last)),
	)
	return "\n" + graph + "\n"
}

// DrawSummaryBox creates a summary box for results
func DrawSummaryBox(title string, lines []string) string {
	var sb strings.Builder

	maxLen := width(title)
	for _, line := range lines {
		maxLen = max(maxLen, width(line))
	}
	maxLen += 4

	pad := func(s string) string {
		return s + strings.Repeat(" ", maxLen-2-width(s))
	}

	border := strings.Repeat("═", maxLen)
	sb.WriteString(fmt.Sprintf("  ╔%s╗\n", border))
	sb.WriteString(fmt.Sprintf("  ║  %s║\n", pad(title)))
	sb.WriteString(fmt.Sprintf("  ╠%s╣\n", border))
	for _, line := range lines {
		sb.WriteString(fmt.Sprintf("  ║  %s║\n", pad(line)))
	}
	sb.WriteString(fmt.Sprintf("  ╚%s╝\n", border))

	return sb.String()
}

// width counts runes so labels such as σ'v line up
func width(s string) int {
	return len([]rune(s))
}
