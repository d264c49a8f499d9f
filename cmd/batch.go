package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexiusacademia/goliq/internal/liquefaction"
	"github.com/alexiusacademia/goliq/internal/screening"
	"github.com/alexiusacademia/goliq/internal/siteio"
)

var (
	batchInput   string
	batchOutput  string
	batchWorkers int
	batchModel   string
	batchScaler  string
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Score every site of a CSV or XLSX table",
	Long: `Assess every row of a site table and write the results to a new table.

The first row of the input is a header. Recognised columns:

  id, z_m, a_max, estres_v_total, estres_v_ef, Mw, N1_60_cs, FC, D50

Empty cells are treated as missing values; the affected method fails for
that row only. The output repeats the inputs and adds the factor of
safety, its class and, when a model is configured, the probability and
risk tier.

Examples:
  goliq batch -i sites.csv -o results.csv
  goliq batch -i sites.xlsx -o results.xlsx --workers 8 --model model.json --scaler scaler.json`,
	Run: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVarP(&batchInput, "input", "i", "", "Site table (.csv or .xlsx)")
	batchCmd.Flags().StringVarP(&batchOutput, "output", "o", "", "Result table (.csv or .xlsx)")
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 0, "Concurrent assessments (default from configuration)")
	batchCmd.Flags().StringVar(&batchModel, "model", "", "Classifier model file (overrides configuration)")
	batchCmd.Flags().StringVar(&batchScaler, "scaler", "", "Feature scaler file (overrides configuration)")

	batchCmd.MarkFlagRequired("input")
	batchCmd.MarkFlagRequired("output")
}

func runBatch(cmd *cobra.Command, args []string) {
	rows, err := siteio.ReadRows(batchInput)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	workers := batchWorkers
	if workers <= 0 {
		workers = cfg.Batch.Workers
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	assessor := newAssessor(batchModel, batchScaler)
	inputs := make([]screening.Input, len(rows))
	for i, row := range rows {
		inputs[i] = row.Input
	}

	start := time.Now()
	results, err := assessor.AssessAll(ctx, inputs, workers)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	logger.Info("batch: scored", "rows", len(results), "workers", workers, "elapsed", time.Since(start))

	records := make([]siteio.Record, len(rows))
	counts := map[liquefaction.FSClass]int{}
	for i, a := range results {
		rows[i].Apply(a)
		records[i] = siteio.Record{ID: rows[i].ID, Assessment: a}
		counts[a.FSClass]++
		if a.Traditional.Failure != nil {
			logger.Warn("batch: row failed",
				"line", rows[i].Line, "id", rows[i].ID, "kind", a.Traditional.Failure.Kind, "err", a.Traditional.Failure.Detail)
		}
	}

	if err := siteio.WriteRecords(batchOutput, records, assessor.Loaded()); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	printHeader("BATCH LIQUEFACTION SCREENING")
	printSection("SUMMARY:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Sites:\t%d\n", len(records))
	for _, class := range []liquefaction.FSClass{
		liquefaction.ClassLiquefiable,
		liquefaction.ClassMarginal,
		liquefaction.ClassNotLiquefiable,
		liquefaction.ClassError,
	} {
		fmt.Fprintf(w, "  %s:\t%d\n", class, counts[class])
	}
	fmt.Fprintf(w, "  Classifier:\t%s\n", map[bool]string{true: "loaded", false: "not configured"}[assessor.Loaded()])
	w.Flush()
	fmt.Println()
	fmt.Printf("Results written to: %s\n", batchOutput)
}
