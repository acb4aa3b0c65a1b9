// Command mg24plan brings a board profile up on a simulated EFR32MG24 and
// prints the clock tree and every divider the drivers derive from it.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mg24plan",
	Short: "Plan EFR32MG24 clocks and peripheral dividers",
	Long: `mg24plan resolves a board profile's clock tree, brings every peripheral
it names up on a simulated part and reports the dividers each driver
programmed. Nothing touches real hardware.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(dividerCmd)
	rootCmd.AddCommand(boardsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
