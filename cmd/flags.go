package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alexiusacademia/goliq/internal/liquefaction"
	"github.com/alexiusacademia/goliq/internal/screening"
)

// siteFlags holds the site parameters entered on the command line
type siteFlags struct {
	depth           float64 // z (m)
	pga             float64 // a_max (g)
	totalStress     float64 // σv (kPa)
	effectiveStress float64 // σ'v (kPa)
	magnitude       float64 // Mw
	blowCount       float64 // (N1)60cs
	fines           float64 // FC (%)
	grainSize       float64 // D50 (mm)
}

// addSiteFlags registers the site flags on cmd. Defaults are a loose
// saturated sand at 10 m under a strong earthquake.
func addSiteFlags(cmd *cobra.Command, f *siteFlags, classifier bool) {
	cmd.Flags().Float64VarP(&f.depth, "depth", "z", 10, "Depth of the layer z (m)")
	cmd.Flags().Float64VarP(&f.pga, "pga", "a", 0.4, "Peak ground acceleration a_max (g)")
	cmd.Flags().Float64Var(&f.totalStress, "sv", 180, "Total vertical stress σv (kPa)")
	cmd.Flags().Float64Var(&f.effectiveStress, "sv-eff", 100, "Effective vertical stress σ'v (kPa)")
	cmd.Flags().Float64VarP(&f.magnitude, "mw", "m", 7.5, "Moment magnitude Mw")
	cmd.Flags().Float64VarP(&f.blowCount, "n160", "n", 15, "Corrected SPT blow count (N1)60cs")
	if classifier {
		cmd.Flags().Float64Var(&f.fines, "fc", 10, "Fines content FC (%)")
		cmd.Flags().Float64Var(&f.grainSize, "d50", 0.25, "Mean grain size D50 (mm)")
	}
}

func (f *siteFlags) params() liquefaction.SiteParameters {
	return liquefaction.SiteParameters{
		Depth:           f.depth,
		PeakGroundAccel: f.pga,
		TotalStress:     f.totalStress,
		EffectiveStress: f.effectiveStress,
		Magnitude:       f.magnitude,
		BlowCount:       f.blowCount,
	}
}

func (f *siteFlags) input() screening.Input {
	fc, d50 := f.fines, f.grainSize
	return screening.Input{
		SiteInput:     f.params().Input(),
		FinesContent:  &fc,
		MeanGrainSize: &d50,
	}
}

func printHeader(title string) {
	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Printf("          %s\n", title)
	fmt.Println("═══════════════════════════════════════════════════════════════")
	fmt.Println()
}

func printSection(title string) {
	fmt.Println(title)
	fmt.Println("───────────────────────────────────────────────────────────────")
}

func value(v *float64, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}

// printSiteInput prints the input parameters; the classifier-only
// descriptors are printed when withSoil is set.
func printSiteInput(in screening.Input, withSoil bool) {
	printSection("INPUT PARAMETERS:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Depth (z):\t%s m\n", value(in.Depth, "%.2f"))
	fmt.Fprintf(w, "  Peak Ground Accel (a_max):\t%s g\n", value(in.PeakGroundAccel, "%.3f"))
	fmt.Fprintf(w, "  Total Stress (σv):\t%s kPa\n", value(in.TotalStress, "%.2f"))
	fmt.Fprintf(w, "  Effective Stress (σ'v):\t%s kPa\n", value(in.EffectiveStress, "%.2f"))
	fmt.Fprintf(w, "  Magnitude (Mw):\t%s\n", value(in.Magnitude, "%.1f"))
	fmt.Fprintf(w, "  Blow Count ((N1)60cs):\t%s\n", value(in.BlowCount, "%.1f"))
	if withSoil {
		fmt.Fprintf(w, "  Fines Content (FC):\t%s %%\n", value(in.FinesContent, "%.1f"))
		fmt.Fprintf(w, "  Mean Grain Size (D50):\t%s mm\n", value(in.MeanGrainSize, "%.3f"))
	}
	w.Flush()
	fmt.Println()
}

// printFactors prints the factor breakdown of a successful result, or the
// failure.
func printFactors(res liquefaction.Result) {
	printSection("SIMPLIFIED PROCEDURE (Seed-Idriss):")
	if res.Failure != nil {
		fmt.Printf("  Calculation failed: %v\n", res.Failure)
		fmt.Println()
		return
	}

	f := res.Factors
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Stress Reduction (rd):\t%.4f\n", f.Rd)
	fmt.Fprintf(w, "  Cyclic Stress Ratio (CSR):\t%.4f\n", f.CSR)
	fmt.Fprintf(w, "  CRR for Mw 7.5 (CRR7.5):\t%.4f\n", f.CRR75)
	fmt.Fprintf(w, "  Magnitude Scaling (MSF):\t%.4f\n", f.MSF)
	fmt.Fprintf(w, "  Overburden Correction (Kσ):\t%.4f\n", f.KSigma)
	fmt.Fprintf(w, "  Adjusted CRR:\t%.4f\n", f.CRRAdjusted)
	w.Flush()
	fmt.Println()
}
