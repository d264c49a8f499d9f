package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alexiusacademia/goliq/internal/diagram"
	"github.com/alexiusacademia/goliq/internal/screening"
	"github.com/alexiusacademia/goliq/internal/siteio"
)

var (
	profileFile   string
	profileChart  string
	profileXLSX   string
	profileGraph  bool
	profileModel  string
	profileScaler string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Evaluate every layer of a soil profile",
	Long: `Evaluate the factor of safety of every layer of a soil profile and find
the critical (lowest FS) layer.

The profile is a JSON or YAML document:

  name: Bridge abutment B-2
  layers:
    - name: loose sand
      z_m: 4
      a_max: 0.35
      estres_v_total: 72
      estres_v_ef: 52
      Mw: 7.0
      N1_60_cs: 9

Layers are reported shallow to deep. A layer that cannot be computed is
reported as failed and does not stop the others. When a model is
configured, each layer's FC and D50 feed the classifier and its
probability and risk tier are listed with the layer.

Examples:
  goliq profile -f borehole.yaml
  goliq profile -f borehole.yaml --graph -o profile.png --xlsx profile.xlsx`,
	Run: runProfile,
}

func init() {
	rootCmd.AddCommand(profileCmd)

	profileCmd.Flags().StringVarP(&profileFile, "file", "f", "", "Profile file (JSON or YAML)")
	profileCmd.Flags().BoolVarP(&profileGraph, "graph", "g", false, "Plot FS by layer in the terminal")
	profileCmd.Flags().StringVarP(&profileChart, "output", "o", "", "Export the depth chart (.png, .svg, .pdf)")
	profileCmd.Flags().StringVar(&profileXLSX, "xlsx", "", "Export the layer table to an XLSX workbook")
	profileCmd.Flags().StringVar(&profileModel, "model", "", "Classifier model file (overrides configuration)")
	profileCmd.Flags().StringVar(&profileScaler, "scaler", "", "Feature scaler file (overrides configuration)")

	profileCmd.MarkFlagRequired("file")
}

func runProfile(cmd *cobra.Command, args []string) {
	p, err := siteio.LoadProfile(profileFile)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	res, err := p.Evaluate()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	logger.Debug("profile: evaluated", "name", p.Name, "layers", len(res.Layers), "failed", res.Failed)

	var risks []screening.LayerRisk
	if assessor := newAssessor(profileModel, profileScaler); assessor.Loaded() {
		risks = assessor.ProfileRisks(res)
	}

	printHeader("SOIL PROFILE LIQUEFACTION ANALYSIS")
	fmt.Printf("  Profile: %s\n", p.Name)
	if p.Description != "" {
		fmt.Printf("  %s\n", p.Description)
	}
	fmt.Println()

	printSection("LAYERS:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if risks != nil {
		fmt.Fprintf(w, "  Layer\tz (m)\tCSR\tCRR adj\tFS\tClass\tP(liq)\tRisk\n")
		fmt.Fprintf(w, "  ─────\t─────\t───\t───────\t──\t─────\t──────\t────\n")
	} else {
		fmt.Fprintf(w, "  Layer\tz (m)\tCSR\tCRR adj\tFS\tClass\n")
		fmt.Fprintf(w, "  ─────\t─────\t───\t───────\t──\t─────\n")
	}
	for i, lr := range res.Layers {
		class := string(lr.Class)
		if lr.Result.Failure != nil {
			class = fmt.Sprintf("%s (%s)", lr.Class, lr.Result.Failure.Kind)
		}
		line := fmt.Sprintf("  %s\t%s\t-\t-\t-\t%s", lr.Layer.Label(), value(lr.Layer.Depth, "%.2f"), class)
		if f := lr.Result.Factors; f != nil {
			line = fmt.Sprintf("  %s\t%s\t%.4f\t%.4f\t%.3f\t%s",
				lr.Layer.Label(), value(lr.Layer.Depth, "%.2f"), f.CSR, f.CRRAdjusted, f.SafetyFactor, class)
		}
		if risks != nil {
			prob := "-"
			if pr := risks[i].Probability; pr != nil {
				prob = fmt.Sprintf("%.1f%%", *pr*100)
			}
			line += fmt.Sprintf("\t%s\t%s", prob, risks[i].Risk)
		}
		if i == res.Critical {
			line += " ← CRITICAL"
		}
		fmt.Fprintln(w, line)
	}
	w.Flush()
	fmt.Println()

	if profileGraph {
		if g := diagram.ProfileGraph(res); g != "" {
			fmt.Println(g)
		} else {
			fmt.Println("  Not enough computed layers to plot.")
			fmt.Println()
		}
	}

	printSection("RESULT:")
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Layers analysed:\t%d\n", len(res.Layers))
	fmt.Fprintf(w, "  Liquefiable:\t%d\n", res.Liquefiable)
	fmt.Fprintf(w, "  Marginal:\t%d\n", res.Marginal)
	fmt.Fprintf(w, "  Failed:\t%d\n", res.Failed)
	w.Flush()
	fmt.Println()

	if critical, ok := res.CriticalLayer(); ok {
		fmt.Printf("  ╔═══════════════════════════════════╗\n")
		fmt.Printf("  ║  CRITICAL LAYER: %s\n", critical.Layer.Label())
		fmt.Printf("  ║  FS = %.3f (%s)\n", critical.Result.Factors.SafetyFactor, critical.Class)
		fmt.Printf("  ╚═══════════════════════════════════╝\n")
	} else {
		fmt.Println("  No layer could be computed.")
	}
	fmt.Println()

	if profileChart != "" {
		if err := diagram.ExportProfile(res, profileChart); err != nil {
			fmt.Printf("Error exporting chart: %v\n", err)
		} else {
			fmt.Printf("Depth chart exported to: %s\n", profileChart)
		}
	}

	if profileXLSX != "" {
		if err := siteio.WriteProfile(profileXLSX, res, risks); err != nil {
			fmt.Printf("Error exporting workbook: %v\n", err)
		} else {
			fmt.Printf("Layer table exported to: %s\n", profileXLSX)
		}
	}
}
