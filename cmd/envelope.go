package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alexiusacademia/goliq/internal/liquefaction"
	"github.com/alexiusacademia/goliq/internal/seismic"
	"github.com/alexiusacademia/goliq/internal/siteio"
)

var (
	envelopeSite      siteFlags
	envelopeFile      string
	envelopeScenarios string

	// Magnitude sweep
	sweepMin  float64
	sweepMax  float64
	sweepStep float64
)

var envelopeCmd = &cobra.Command{
	Use:   "envelope",
	Short: "Find the governing earthquake scenario for a site",
	Long: `Evaluate a site under several design earthquakes and report the
scenario with the lowest factor of safety.

Each scenario replaces the peak ground acceleration and magnitude of the
site. Scenarios are read from a file with --scenarios:

  scenarios:
    - id: OBE
      description: Operating basis earthquake
      a_max: 0.2
      Mw: 6.5
    - id: MCE
      a_max: 0.45
      Mw: 7.8

Without a file, the magnitude is swept at the site's a_max.

Examples:
  # Sweep Mw 5.5 to 8.5 at a_max = 0.4 g
  goliq envelope

  # Scenario file for a site file
  goliq envelope -f site.yaml -s scenarios.yaml

  # Custom sweep
  goliq envelope --pga 0.3 --min-mw 6 --max-mw 8 --step 0.25`,
	Run: runEnvelope,
}

func init() {
	rootCmd.AddCommand(envelopeCmd)

	addSiteFlags(envelopeCmd, &envelopeSite, false)
	envelopeCmd.Flags().StringVarP(&envelopeFile, "file", "f", "", "Read the site from a JSON or YAML file")
	envelopeCmd.Flags().StringVarP(&envelopeScenarios, "scenarios", "s", "", "Scenario file (JSON or YAML)")

	envelopeCmd.Flags().Float64Var(&sweepMin, "min-mw", 5.5, "Smallest magnitude of the sweep")
	envelopeCmd.Flags().Float64Var(&sweepMax, "max-mw", 8.5, "Largest magnitude of the sweep")
	envelopeCmd.Flags().Float64Var(&sweepStep, "step", 0.5, "Magnitude step of the sweep")
}

func runEnvelope(cmd *cobra.Command, args []string) {
	site := envelopeSite.params()
	if envelopeFile != "" {
		in, err := siteio.LoadInput(envelopeFile)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		if site, err = in.Params(); err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
	}

	var scenarios []seismic.Scenario
	var err error
	if envelopeScenarios != "" {
		scenarios, err = siteio.LoadScenarios(envelopeScenarios)
	} else {
		scenarios, err = seismic.MagnitudeSweep(site.PeakGroundAccel, sweepMin, sweepMax, sweepStep)
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	env := liquefaction.Envelope(site, scenarios)
	logger.Debug("envelope: evaluated", "scenarios", len(scenarios), "governed", env.Governing != nil)

	printHeader("EARTHQUAKE SCENARIO ENVELOPE")

	printSection("SITE:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Depth (z):\t%.2f m\n", site.Depth)
	fmt.Fprintf(w, "  Total Stress (σv):\t%.2f kPa\n", site.TotalStress)
	fmt.Fprintf(w, "  Effective Stress (σ'v):\t%.2f kPa\n", site.EffectiveStress)
	fmt.Fprintf(w, "  Blow Count ((N1)60cs):\t%.1f\n", site.BlowCount)
	w.Flush()
	fmt.Println()

	printSection("SCENARIOS:")
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  #\tScenario\ta_max (g)\tMw\tFS\tClass\n")
	fmt.Fprintf(w, "  ─\t────────\t─────────\t──\t──\t─────\n")
	for _, sr := range env.Scenarios {
		marker := ""
		if env.Governing != nil && sr.Scenario.ID == env.Governing.Scenario.ID {
			marker = " ← GOVERNS"
		}
		fmt.Fprintf(w, "  %s\t%s\t%.3f\t%.2f\t%s\t%s%s\n",
			sr.Scenario.ID, sr.Scenario.Description, sr.Scenario.PGA, sr.Scenario.Magnitude,
			value(sr.Result.SafetyFactor(), "%.3f"), sr.Class, marker)
	}
	w.Flush()
	fmt.Println()

	printSection("RESULT:")
	if env.Governing == nil {
		fmt.Println("  No scenario could be computed.")
		fmt.Println()
		return
	}
	g := env.Governing
	fmt.Printf("  Governing Scenario: %s (%s)\n", g.Scenario.ID, g.Scenario.Description)
	fmt.Println()
	fmt.Printf("  ╔═══════════════════════════════════╗\n")
	fmt.Printf("  ║  MINIMUM FS = %.3f  \n", g.Result.Factors.SafetyFactor)
	fmt.Printf("  ╚═══════════════════════════════════╝\n")
	fmt.Printf("  Class: %s\n", g.Class)
	fmt.Println()
}
