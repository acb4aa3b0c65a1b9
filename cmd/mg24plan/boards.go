package main

import (
	"fmt"

	"efr32hal/hal/board"

	"github.com/spf13/cobra"
)

var boardsCmd = &cobra.Command{
	Use:   "boards",
	Short: "List the built-in board profiles",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, n := range board.Names() {
			fmt.Fprintln(cmd.OutOrStdout(), n)
		}
	},
}
