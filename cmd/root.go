package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "car-marketplace",
	Short: "Vehicle marketplace API server",
	Long: `car-marketplace is the backend for the vehicle marketplace:
sellers list vehicles with photos and specifications, buyers search and
browse listings.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
