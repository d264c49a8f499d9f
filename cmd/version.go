package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexiusacademia/goliq/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of goliq",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Short())
		fmt.Println("Soil Liquefaction Screening Tool")
		fmt.Println("Seed-Idriss simplified procedure with a random-forest classifier")
		fmt.Printf("Built: %s  Commit: %s\n", version.BuildTime, version.GitCommit)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
