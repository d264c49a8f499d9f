package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexiusacademia/goliq/internal/diagram"
	"github.com/alexiusacademia/goliq/internal/report"
	"github.com/alexiusacademia/goliq/internal/screening"
	"github.com/alexiusacademia/goliq/internal/siteio"
)

var (
	assessSite   siteFlags
	assessFile   string
	assessModel  string
	assessScaler string

	// Output options
	showWaterfall  bool
	attributionOut string
	assessPDF      string
)

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Assess a site with both the simplified procedure and the classifier",
	Long: `Assess the liquefaction potential of a site with two independent methods:

  1. Simplified procedure (Seed & Idriss) - factor of safety and class
  2. Random-forest classifier - probability of liquefaction, risk tier
     and the contribution of each feature

Either method may fail without affecting the other. The classifier is
skipped when no model is configured (see --model and --scaler, or the
model section of the configuration file).

Examples:
  # Default site with the configured model
  goliq assess

  # Site from a file, explicit model, attribution chart and PDF report
  goliq assess -f site.yaml --model model.json --scaler scaler.json \
      --diagram -o attribution.png --pdf report.pdf`,
	Run: runAssess,
}

func init() {
	rootCmd.AddCommand(assessCmd)

	addSiteFlags(assessCmd, &assessSite, true)
	assessCmd.Flags().StringVarP(&assessFile, "file", "f", "", "Read the site from a JSON or YAML file")
	assessCmd.Flags().StringVar(&assessModel, "model", "", "Classifier model file (overrides configuration)")
	assessCmd.Flags().StringVar(&assessScaler, "scaler", "", "Feature scaler file (overrides configuration)")

	assessCmd.Flags().BoolVarP(&showWaterfall, "diagram", "d", false, "Show the feature attribution diagram")
	assessCmd.Flags().StringVarP(&attributionOut, "output", "o", "", "Export the attribution chart (.png, .svg, .pdf)")
	assessCmd.Flags().StringVar(&assessPDF, "pdf", "", "Write a PDF report")
}

// newAssessor loads the classifier from the flags or the configuration.
// A missing or broken model leaves an assessor that only computes FS.
func newAssessor(modelPath, scalerPath string) *screening.Assessor {
	if modelPath == "" {
		modelPath = cfg.Model.Classifier
	}
	if scalerPath == "" {
		scalerPath = cfg.Model.Scaler
	}

	assessor := screening.NewAssessor(nil, logger)
	if modelPath == "" || scalerPath == "" {
		logger.Debug("classifier not configured")
		return assessor
	}
	if err := assessor.Reload(modelPath, scalerPath); err != nil {
		logger.Warn("classifier unavailable", "err", err)
	}
	return assessor
}

func runAssess(cmd *cobra.Command, args []string) {
	in := assessSite.input()
	if assessFile != "" {
		loaded, err := siteio.LoadInput(assessFile)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		in = loaded
	}

	a := newAssessor(assessModel, assessScaler).Assess(in)

	printHeader("LIQUEFACTION SCREENING ASSESSMENT")
	printSiteInput(in, true)
	printFactors(a.Traditional)
	printClassifier(a)

	fsLine := fmt.Sprintf("Factor of Safety: %s", value(a.Traditional.SafetyFactor(), "%.3f"))
	probLine := "Probability:      -"
	if a.Probability != nil {
		probLine = fmt.Sprintf("Probability:      %.1f%%", *a.Probability*100)
	}
	fmt.Print(diagram.DrawSummaryBox("ASSESSMENT SUMMARY", []string{
		fsLine,
		fmt.Sprintf("FS Class:         %s", a.FSClass),
		probLine,
		fmt.Sprintf("Risk Tier:        %s", a.Risk),
	}))
	fmt.Println()
	fmt.Printf("  %s\n", a.FSClass.Interpretation())
	fmt.Printf("  %s\n", a.Risk.Interpretation())
	fmt.Println()

	if showWaterfall && a.Explanation != nil {
		printSection("FEATURE ATTRIBUTION:")
		fmt.Println(diagram.DrawAttributionWaterfall(a.Explanation))
	}

	if attributionOut != "" {
		if a.Explanation == nil {
			fmt.Println("Error: no attribution to export, the classifier did not run")
		} else if err := diagram.ExportAttribution(a.Explanation, attributionOut); err != nil {
			fmt.Printf("Error exporting attribution chart: %v\n", err)
		} else {
			fmt.Printf("Attribution chart exported to: %s\n", attributionOut)
		}
	}

	if assessPDF != "" {
		meta := report.Meta{
			Title:   "Liquefaction Screening Report",
			Project: cfg.Report.Project,
			Author:  cfg.Report.Author,
			Date:    time.Now(),
		}
		if err := report.WriteFile(assessPDF, a, meta); err != nil {
			fmt.Printf("Error writing report: %v\n", err)
		} else {
			fmt.Printf("Report written to: %s\n", assessPDF)
		}
	}
}

func printClassifier(a *screening.Assessment) {
	printSection("MACHINE-LEARNING CLASSIFIER:")
	if a.ClassifierError != "" {
		fmt.Printf("  Prediction unavailable: %s\n", a.ClassifierError)
		fmt.Println()
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Probability of liquefaction:\t%.1f%%\n", *a.Probability*100)
	fmt.Fprintf(w, "  Risk tier:\t%s\n", a.Risk)
	w.Flush()
	fmt.Println()

	if a.Explanation == nil {
		return
	}
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Feature\tValue\tContribution\n")
	fmt.Fprintf(w, "  ───────\t─────\t────────────\n")
	for _, attr := range a.Explanation.Ranked() {
		fmt.Fprintf(w, "  %s\t%.3f\t%+.4f\n", attr.Feature, attr.Value, attr.Contribution)
	}
	w.Flush()
	fmt.Println()
}
