package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/alexiusacademia/goliq/internal/config"
	"github.com/alexiusacademia/goliq/internal/logging"
	"github.com/alexiusacademia/goliq/internal/version"
)

var (
	// Global flags
	cfgFile  string
	logLevel string

	// Loaded before every command runs
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "goliq",
	Short: "Soil Liquefaction Screening Tool",
	Long: `goliq - Go Liquefaction Screening

A CLI tool for screening the liquefaction potential of saturated
sandy soils under earthquake loading.

This tool helps geotechnical engineers perform:
  - Seed-Idriss simplified procedure (factor of safety)
  - Machine-learning probability with feature attribution
  - Layered soil profile evaluation
  - Earthquake scenario envelopes
  - Batch scoring of CSV/XLSX site tables
  - An HTTP API for all of the above`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(".env"); err != nil {
			return err
		}
		c, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if logLevel != "" {
			c.Logging.Level = logLevel
		}
		l, err := logging.New(c.Logging.Level, c.Logging.Format, os.Stderr)
		if err != nil {
			return err
		}
		cfg, logger = c, l
		slog.SetDefault(l)
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println()
		fmt.Println("  ╔═══════════════════════════════════════════════════════════╗")
		fmt.Println("  ║                                                           ║")
		fmt.Printf("  ║   goliq v%-49s║\n", version.Version)
		fmt.Println("  ║   Go Liquefaction Screening                               ║")
		fmt.Printf("  ║   %-56s║\n", version.Author+" ©  "+version.Year)
		fmt.Println("  ║                                                           ║")
		fmt.Println("  ╚═══════════════════════════════════════════════════════════╝")
		fmt.Println()
		fmt.Println("  A CLI tool for screening the liquefaction potential of soils")
		fmt.Println("  with the simplified procedure and a trained classifier.")
		fmt.Println()
		fmt.Println("  Features:")
		fmt.Println("    • Factor of safety: rd, CSR, MSF, Kσ, CRR")
		fmt.Println("    • Classifier probability with risk tier and attribution")
		fmt.Println("    • Soil profiles with critical layer detection")
		fmt.Println("    • Scenario envelopes with governing earthquake")
		fmt.Println("    • CSV/XLSX batch scoring, PDF reports and an HTTP API")
		fmt.Println()
		fmt.Println("  Use 'goliq --help' to see available commands.")
		fmt.Println()
		fmt.Println("  ─────────────────────────────────────────────────────────────")
		fmt.Printf("  Copyright © %s %s. All rights reserved.\n", version.Year, version.Author)
		fmt.Println()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Configuration file (YAML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
}
