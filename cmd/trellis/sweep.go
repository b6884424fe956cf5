package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppopth/trellis/field"
	"github.com/ppopth/trellis/sim"
)

var (
	sweepFile   string
	sweepOutput string

	sweepCmd = &cobra.Command{
		Use:   "sweep",
		Short: "Simulate a code over a list of SNRs read from a YAML file",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
)

func init() {
	sweepCmd.Flags().StringVarP(&sweepFile, "config", "c", "sweep.yaml", "Sweep YAML file")
	sweepCmd.Flags().StringVarP(&sweepOutput, "output", "o", "", "Also write the results as JSON to this file")
}

func runSweep(cmd *cobra.Command, args []string) error {
	sweep, err := sim.LoadSweepFile(sweepFile)
	if err != nil {
		return err
	}

	var g field.Matrix
	if sweep.GeneratorFile != "" {
		g, err = readGeneratorFile(sweep.GeneratorFile)
	} else {
		g, err = field.FromRows(sweep.Generator)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", sweepFile, err)
	}

	reg, shutdown := startMetrics()
	defer shutdown()

	s, c, err := newSimulator(g, sweep.Config(), reg)
	if err != nil {
		return err
	}
	results, err := s.Sweep(cmd.Context(), sweep.SNRs)
	reports := make([]Report, len(results))
	for i, res := range results {
		fmt.Fprintln(cmd.OutOrStdout(), res)
		reports[i] = newReport(c, res)
	}
	if err != nil {
		return err
	}
	return writeReports(sweepOutput, reports)
}
