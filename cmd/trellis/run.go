package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppopth/trellis/script"
	"github.com/ppopth/trellis/sim"
)

var (
	runSeed    uint64
	runWorkers int

	runCmd = &cobra.Command{
		Use:   "run [input] [output]",
		Short: "Run a command file (defaults: input.txt, output.txt)",
		Args:  cobra.MaximumNArgs(2),
		RunE:  runScript,
	}
)

func init() {
	runCmd.Flags().Uint64Var(&runSeed, "seed", 1, "Seed of the first Simulate command")
	runCmd.Flags().IntVar(&runWorkers, "workers", 1, "Goroutines per Simulate command")
}

func runScript(cmd *cobra.Command, args []string) (err error) {
	input, output := "input.txt", "output.txt"
	if len(args) > 0 {
		input = args[0]
	}
	if len(args) > 1 {
		output = args[1]
	}

	in, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("failed to open input: %w", err)
	}
	defer in.Close()

	out, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	defer func() {
		if cerr := out.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close output: %w", cerr)
		}
	}()

	reg, shutdown := startMetrics()
	defer shutdown()

	err = script.Run(in, out,
		script.WithContext(cmd.Context()),
		script.WithSeed(runSeed),
		script.WithWorkers(runWorkers),
		script.WithMetrics(sim.NewMetrics(reg)),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}
	return nil
}
