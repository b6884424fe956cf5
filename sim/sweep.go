package sim

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SweepFile describes a series of simulation points over one code
type SweepFile struct {
	// Generator rows given inline
	Generator [][]int `yaml:"generator,omitempty"`
	// Path of a generator in the "n k" text format, relative to the sweep file
	GeneratorFile string    `yaml:"generator_file,omitempty"`
	SNRs          []float64 `yaml:"snrs"`
	Iterations    int       `yaml:"iterations"`
	MaxErrors     int       `yaml:"max_errors"`
	Seed          uint64    `yaml:"seed"`
	Workers       int       `yaml:"workers"`
}

// LoadSweepFile loads a sweep from a YAML file. Omitted parameters take
// their DefaultConfig values.
func LoadSweepFile(filename string) (*SweepFile, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read sweep file: %w", err)
	}

	def := DefaultConfig()
	sweep := SweepFile{
		Iterations: def.Iterations,
		MaxErrors:  def.MaxErrors,
		Seed:       def.Seed,
		Workers:    def.Workers,
	}
	if err := yaml.Unmarshal(data, &sweep); err != nil {
		return nil, fmt.Errorf("failed to parse sweep YAML: %w", err)
	}

	if (len(sweep.Generator) == 0) == (sweep.GeneratorFile == "") {
		return nil, fmt.Errorf("exactly one of generator and generator_file must be set: %w", ErrInvalidConfig)
	}
	if len(sweep.SNRs) == 0 {
		return nil, fmt.Errorf("no snrs to sweep: %w", ErrInvalidConfig)
	}
	if sweep.GeneratorFile != "" && !filepath.IsAbs(sweep.GeneratorFile) {
		sweep.GeneratorFile = filepath.Join(filepath.Dir(filename), sweep.GeneratorFile)
	}
	if err := sweep.Config().Validate(); err != nil {
		return nil, err
	}
	return &sweep, nil
}

// Config returns the simulation parameters shared by every point, at the first SNR
func (s *SweepFile) Config() *Config {
	cfg := &Config{
		Iterations: s.Iterations,
		MaxErrors:  s.MaxErrors,
		Seed:       s.Seed,
		Workers:    s.Workers,
	}
	if len(s.SNRs) > 0 {
		cfg.SNR = s.SNRs[0]
	}
	return cfg
}
