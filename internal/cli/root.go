// Package cli holds the furnishop command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "furnishop",
	Short: "Furniture store backend",
	Long: `furnishop serves the furniture store REST API: customer accounts,
catalog, cart, checkout, orders and reviews.

Run "furnishop migrate up" once against a fresh database, then
"furnishop serve" to start the API.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
