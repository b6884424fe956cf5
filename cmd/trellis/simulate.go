package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ppopth/trellis/code"
	"github.com/ppopth/trellis/field"
	"github.com/ppopth/trellis/script"
	"github.com/ppopth/trellis/sim"
	"github.com/ppopth/trellis/trellis"
)

var (
	simGenerator string
	simOutput    string
	simConfig    = sim.DefaultConfig()

	simulateCmd = &cobra.Command{
		Use:   "simulate",
		Short: "Estimate the frame error rate of a code at one SNR",
		Args:  cobra.NoArgs,
		RunE:  runSimulate,
	}
)

func init() {
	f := simulateCmd.Flags()
	f.StringVarP(&simGenerator, "generator", "g", "", "Generator matrix file in the \"n k\" text format")
	f.StringVarP(&simOutput, "output", "o", "", "Also write the results as JSON to this file")
	f.AddFlagSet(configFlags(simConfig))
	simulateCmd.MarkFlagRequired("generator")
}

// configFlags binds every field of cfg to a flag, using the current values as defaults
func configFlags(cfg *sim.Config) *pflag.FlagSet {
	f := pflag.NewFlagSet("simulation", pflag.ContinueOnError)
	f.Float64Var(&cfg.SNR, "snr", cfg.SNR, "Signal-to-noise ratio in dB")
	f.IntVar(&cfg.Iterations, "iterations", cfg.Iterations, "Maximum number of frames")
	f.IntVar(&cfg.MaxErrors, "max-errors", cfg.MaxErrors, "Stop after this many frame errors (0 disables)")
	f.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "Random seed")
	f.IntVar(&cfg.Workers, "workers", cfg.Workers, "Number of simulation goroutines")
	return f
}

// Report is the JSON form of one simulation point
type Report struct {
	RunID       string        `json:"run_id"`
	N           int           `json:"n"`
	K           int           `json:"k"`
	SNR         float64       `json:"snr_db"`
	Iterations  int           `json:"iterations"`
	FrameErrors int           `json:"frame_errors"`
	BitErrors   int           `json:"bit_errors"`
	FER         float64       `json:"fer"`
	BER         float64       `json:"ber"`
	FERLow      float64       `json:"fer_ci95_low"`
	FERHigh     float64       `json:"fer_ci95_high"`
	Elapsed     time.Duration `json:"elapsed_ns"`
}

func newReport(c *code.Code, res sim.Result) Report {
	lo, hi := res.Interval(0.95)
	return Report{
		RunID:       res.RunID.String(),
		N:           c.N(),
		K:           c.K(),
		SNR:         res.SNR,
		Iterations:  res.Iterations,
		FrameErrors: res.FrameErrors,
		BitErrors:   res.BitErrors,
		FER:         res.FER(),
		BER:         res.BER(),
		FERLow:      lo,
		FERHigh:     hi,
		Elapsed:     res.Elapsed,
	}
}

func runSimulate(cmd *cobra.Command, args []string) error {
	g, err := readGeneratorFile(simGenerator)
	if err != nil {
		return err
	}
	reg, shutdown := startMetrics()
	defer shutdown()

	s, c, err := newSimulator(g, simConfig, reg)
	if err != nil {
		return err
	}
	res, err := s.Run(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), res)
	return writeReports(simOutput, []Report{newReport(c, res)})
}

// newSimulator builds the code, its trellis and a simulator around them
func newSimulator(g field.Matrix, cfg *sim.Config, reg prometheus.Registerer) (*sim.Simulator, *code.Code, error) {
	c, err := code.New(g)
	if err != nil {
		return nil, nil, err
	}
	t, err := trellis.Build(c, trellis.WithBuildWorkers(cfg.Workers))
	if err != nil {
		return nil, nil, err
	}
	log.Infof("[%d,%d] code, trellis widths %v", c.N(), c.K(), t.Widths())

	s, err := sim.NewSimulator(c, t, cfg, sim.WithRegisterer(reg))
	if err != nil {
		return nil, nil, err
	}
	return s, c, nil
}

func readGeneratorFile(filename string) (field.Matrix, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open generator: %w", err)
	}
	defer f.Close()

	g, err := script.ReadGenerator(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return g, nil
}

func writeReports(filename string, reports []Report) error {
	if filename == "" {
		return nil
	}
	data, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	return nil
}
