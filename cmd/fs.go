package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexiusacademia/goliq/internal/diagram"
	"github.com/alexiusacademia/goliq/internal/liquefaction"
	"github.com/alexiusacademia/goliq/internal/screening"
	"github.com/alexiusacademia/goliq/internal/siteio"
)

var (
	fsSite siteFlags
	fsFile string
)

var fsCmd = &cobra.Command{
	Use:   "fs",
	Short: "Calculate the factor of safety against liquefaction",
	Long: `Calculate the factor of safety (FS) against liquefaction using the
Seed & Idriss simplified procedure.

  FS = CRR7.5 · MSF · Kσ / CSR

The site can be given with flags or read from a JSON/YAML file with
--file. Values missing from the file are reported as a failed
calculation.

Classes:
  FS < 1.0        Liquefiable
  1.0 ≤ FS < 1.3  Marginal liquefaction
  FS ≥ 1.3        Not liquefiable

Examples:
  # Default site (z = 10 m, a_max = 0.4 g, Mw 7.5, (N1)60cs = 15)
  goliq fs

  # Dense sand under a moderate earthquake
  goliq fs --depth 6 --pga 0.25 --sv 110 --sv-eff 70 --mw 6.5 --n160 28

  # From a file
  goliq fs --file site.yaml`,
	Run: runFS,
}

func init() {
	rootCmd.AddCommand(fsCmd)

	addSiteFlags(fsCmd, &fsSite, false)
	fsCmd.Flags().StringVarP(&fsFile, "file", "f", "", "Read the site from a JSON or YAML file")
}

func runFS(cmd *cobra.Command, args []string) {
	in := screening.Input{SiteInput: fsSite.params().Input()}
	if fsFile != "" {
		loaded, err := siteio.LoadInput(fsFile)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		in = loaded
	}

	res := liquefaction.ComputeInput(in.SiteInput)
	logger.Debug("fs: calculated", "ok", res.OK(), "class", res.Class())

	printHeader("LIQUEFACTION FACTOR OF SAFETY")
	printSiteInput(in, false)
	printFactors(res)
	printFSResult(res)
}

func printFSResult(res liquefaction.Result) {
	class := res.Class()

	printSection("RESULT:")
	if res.OK() {
		fmt.Printf("  ╔═══════════════════════════════════╗\n")
		fmt.Printf("  ║  FACTOR OF SAFETY (FS) = %.3f  \n", res.Factors.SafetyFactor)
		fmt.Printf("  ╚═══════════════════════════════════╝\n")
		fmt.Println()
		fmt.Println(diagram.DrawFSGauge(res.Factors.SafetyFactor))
		fmt.Println()
	}
	fmt.Printf("  Class: %s\n", class)
	fmt.Printf("  %s\n", class.Interpretation())
	fmt.Println()
}
