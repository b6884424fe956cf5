// Package script runs the whitespace-delimited command format: a header
// "n k", k generator rows of n bits, then any number of Encode, Decode and
// Simulate commands.
package script

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ppopth/trellis/code"
	"github.com/ppopth/trellis/field"
	"github.com/ppopth/trellis/sim"
	"github.com/ppopth/trellis/trellis"

	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("script")

// ErrMalformedInput is returned for a token stream that does not follow the format
var ErrMalformedInput = errors.New("script: malformed input")

// Command keywords
const (
	CmdEncode   = "Encode"
	CmdDecode   = "Decode"
	CmdSimulate = "Simulate"
)

// Option configures Run
type Option func(*runner) error

// WithSeed sets the seed of the first Simulate command. Later commands use seed+1, seed+2, ...
func WithSeed(seed uint64) Option {
	return func(r *runner) error {
		r.seed = seed
		return nil
	}
}

// WithWorkers sets the number of goroutines used by Simulate
func WithWorkers(n int) Option {
	return func(r *runner) error {
		if n < 1 {
			return fmt.Errorf("workers must be positive, got %d", n)
		}
		r.workers = n
		return nil
	}
}

// WithMetrics records Simulate commands in m
func WithMetrics(m *sim.Metrics) Option {
	return func(r *runner) error {
		r.metrics = m
		return nil
	}
}

// WithContext bounds Simulate commands by ctx
func WithContext(ctx context.Context) Option {
	return func(r *runner) error {
		r.ctx = ctx
		return nil
	}
}

type runner struct {
	ctx     context.Context
	seed    uint64
	workers int
	metrics *sim.Metrics

	tokens *tokenizer
	out    *bufio.Writer

	code       *code.Code
	trellis    *trellis.Trellis
	simulation int // number of Simulate commands run so far
}

// Run reads a generator matrix and commands from r and writes the results to w.
// The first output line is the node count of every trellis layer.
func Run(r io.Reader, w io.Writer, opts ...Option) error {
	rn := &runner{
		ctx:     context.Background(),
		seed:    1,
		workers: 1,
		tokens:  newTokenizer(r),
		out:     bufio.NewWriter(w),
	}
	for _, opt := range opts {
		if err := opt(rn); err != nil {
			return err
		}
	}

	err := rn.run()
	if ferr := rn.out.Flush(); err == nil {
		err = ferr
	}
	return err
}

func (r *runner) run() error {
	if err := r.readCode(); err != nil {
		return err
	}
	r.writeInts(r.trellis.Widths())

	for {
		cmd, err := r.tokens.next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		switch cmd {
		case CmdEncode:
			err = r.encode()
		case CmdDecode:
			err = r.decode()
		case CmdSimulate:
			err = r.simulate()
		default:
			err = fmt.Errorf("unknown command %q: %w", cmd, ErrMalformedInput)
		}
		if err != nil {
			return err
		}
	}
}

func (r *runner) readCode() error {
	g, err := readGenerator(r.tokens)
	if err != nil {
		return err
	}
	if r.code, err = code.New(g); err != nil {
		return err
	}
	if r.trellis, err = trellis.Build(r.code); err != nil {
		return err
	}
	log.Debugf("loaded [%d,%d] code with trellis widths %v", r.code.N(), r.code.K(), r.trellis.Widths())
	return nil
}

// ReadGenerator reads a header "n k" followed by k rows of n bits.
// Anything after the last row is ignored.
func ReadGenerator(r io.Reader) (field.Matrix, error) {
	return readGenerator(newTokenizer(r))
}

func readGenerator(tokens *tokenizer) (field.Matrix, error) {
	n, err := tokens.positiveInt("n")
	if err != nil {
		return nil, err
	}
	k, err := tokens.positiveInt("k")
	if err != nil {
		return nil, err
	}
	// Grow as rows arrive so the header alone never sizes an allocation
	g := make(field.Matrix, 0, min(k, maxPrealloc))
	for i := 0; i < k; i++ {
		row, err := tokens.bits(n)
		if err != nil {
			return nil, fmt.Errorf("generator row %d: %w", i, err)
		}
		g = append(g, row)
	}
	return g, nil
}

func (r *runner) encode() error {
	msg, err := r.tokens.bits(r.code.K())
	if err != nil {
		return fmt.Errorf("%s: %w", CmdEncode, err)
	}
	cw, err := r.code.EncodeChecked(msg)
	if err != nil {
		return err
	}
	r.writeLine(cw.String())
	return nil
}

func (r *runner) decode() error {
	received := make([]float64, r.code.N())
	for i := range received {
		tok, err := r.tokens.next()
		if err != nil {
			return fmt.Errorf("%s: sample %d: %w", CmdDecode, i, eofAsMalformed(err))
		}
		if received[i], err = strconv.ParseFloat(tok, 64); err != nil {
			return fmt.Errorf("%s: sample %q: %w", CmdDecode, tok, ErrMalformedInput)
		}
	}
	decoded, err := r.trellis.Decode(received)
	if err != nil {
		return err
	}
	r.writeLine(decoded.String())
	return nil
}

func (r *runner) simulate() error {
	tok, err := r.tokens.next()
	if err != nil {
		return fmt.Errorf("%s: snr: %w", CmdSimulate, eofAsMalformed(err))
	}
	snr, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return fmt.Errorf("%s: snr %q: %w", CmdSimulate, tok, ErrMalformedInput)
	}
	iterations, err := r.tokens.integer("iterations")
	if err != nil {
		return fmt.Errorf("%s: %w", CmdSimulate, err)
	}
	maxErrors, err := r.tokens.integer("error budget")
	if err != nil {
		return fmt.Errorf("%s: %w", CmdSimulate, err)
	}

	cfg := &sim.Config{
		SNR:        snr,
		Iterations: iterations,
		MaxErrors:  maxErrors,
		Seed:       r.seed + uint64(r.simulation),
		Workers:    r.workers,
	}
	r.simulation++

	var opts []sim.Option
	if r.metrics != nil {
		opts = append(opts, sim.WithMetrics(r.metrics))
	}
	s, err := sim.NewSimulator(r.code, r.trellis, cfg, opts...)
	if err != nil {
		return err
	}
	res, err := s.Run(r.ctx)
	if err != nil {
		return err
	}
	r.writeLine(fmt.Sprintf("%f", res.FER()))
	return nil
}

func (r *runner) writeInts(values []int) {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	r.writeLine(strings.Join(parts, " "))
}

func (r *runner) writeLine(s string) {
	r.out.WriteString(s)
	r.out.WriteByte('\n')
}
