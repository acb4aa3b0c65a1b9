package main

import (
	"encoding/json"
	"fmt"
	"os"

	"efr32hal/hal/board"
	"efr32hal/hal/efr32/efr32sim"
	"efr32hal/types"
	"efr32hal/x/fmtx"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	planOpts struct {
		profile string
		board   string
		format  string
		verbose bool
	}

	planCmd = &cobra.Command{
		Use:   "plan",
		Short: "Bring a profile up and print its clock plan",
		Long: `plan loads a board profile, either a built-in one (--board) or a JSON or
YAML file (--profile), opens it on a simulated chip and prints the
resulting plan.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProfile(planOpts.profile, planOpts.board)
			if err != nil {
				return err
			}
			if planOpts.verbose {
				prev := fmtx.DefaultOutput
				fmtx.DefaultOutput = cmd.ErrOrStderr()
				defer func() { fmtx.DefaultOutput = prev }()
			}

			chip := efr32sim.New()
			b, err := board.Open(p, chip.P)
			if err != nil {
				return err
			}
			defer b.Close()

			return writePlan(cmd, b.Plan(), planOpts.format)
		},
	}
)

func init() {
	planCmd.Flags().StringVarP(&planOpts.profile, "profile", "p", "", "profile file (.json, .yaml)")
	planCmd.Flags().StringVarP(&planOpts.board, "board", "b", board.XiaoMG24, "built-in board name")
	planCmd.Flags().StringVarP(&planOpts.format, "format", "f", "json", "output format (=json, =yaml)")
	planCmd.Flags().BoolVarP(&planOpts.verbose, "verbose", "v", false, "trace driver bring-up to stderr")
}

func loadProfile(path, name string) (types.BoardProfile, error) {
	if path == "" {
		return board.Lookup(name)
	}
	f, err := os.Open(path)
	if err != nil {
		return types.BoardProfile{}, err
	}
	defer f.Close()
	return board.Load(f, board.FormatOf(path))
}

func writePlan(cmd *cobra.Command, plan types.BoardPlan, format string) error {
	out := cmd.OutOrStdout()
	switch format {
	case "json":
		data, err := json.MarshalIndent(plan, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(plan); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmtx.Errorf("unknown format %q", format)
	}
}
