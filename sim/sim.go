package sim

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/ppopth/trellis/field"

	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("sim")

// ErrInvalidConfig is returned for a configuration that cannot be simulated
var ErrInvalidConfig = errors.New("sim: invalid config")

// progressInterval is the minimum time between progress log lines of a run
const progressInterval = 10 * time.Second

// Encoder maps k-bit messages to n-bit codewords
type Encoder interface {
	// K returns the message length
	K() int
	// N returns the codeword length
	N() int
	// Rate returns K/N
	Rate() float64
	// Encode returns the codeword of msg
	Encode(msg field.Vector) field.Vector
}

//go:generate mockgen -destination=mock_decoder_test.go -package=sim github.com/ppopth/trellis/sim Decoder

// Decoder estimates the transmitted codeword from soft samples
type Decoder interface {
	Decode(received []float64) (field.Vector, error)
}

// Option configures a Simulator during construction
type Option func(*Simulator) error

// WithChannel replaces the AWGN channel derived from the configured SNR
func WithChannel(ch Channel) Option {
	return func(s *Simulator) error {
		if ch == nil {
			return fmt.Errorf("channel must not be nil: %w", ErrInvalidConfig)
		}
		s.channel = ch
		return nil
	}
}

// WithRegisterer registers the simulator metrics with reg
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(s *Simulator) error {
		s.metrics = NewMetrics(reg)
		return nil
	}
}

// WithMetrics shares already registered collectors between simulators
func WithMetrics(m *Metrics) Option {
	return func(s *Simulator) error {
		s.metrics = m
		return nil
	}
}

// Simulator estimates the frame error rate of an encoder/decoder pair by Monte Carlo
type Simulator struct {
	config  *Config
	encoder Encoder
	decoder Decoder
	channel Channel // nil means AWGN at config.SNR
	metrics *Metrics
}

// NewSimulator creates a simulator. A nil config uses DefaultConfig.
func NewSimulator(enc Encoder, dec Decoder, config *Config, opts ...Option) (*Simulator, error) {
	if enc == nil || dec == nil {
		return nil, fmt.Errorf("encoder and decoder must not be nil: %w", ErrInvalidConfig)
	}
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if enc.K() <= 0 || enc.N() < enc.K() {
		return nil, fmt.Errorf("bad code dimensions [%d,%d]: %w", enc.N(), enc.K(), ErrInvalidConfig)
	}

	s := &Simulator{
		config:  config,
		encoder: enc,
		decoder: dec,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if s.metrics == nil {
		s.metrics = NewMetrics(nil)
	}
	return s, nil
}

// Run simulates the configured SNR point
func (s *Simulator) Run(ctx context.Context) (Result, error) {
	return s.run(ctx, *s.config)
}

// Sweep runs one point per SNR in snrs, keeping every other parameter
func (s *Simulator) Sweep(ctx context.Context, snrs []float64) ([]Result, error) {
	results := make([]Result, 0, len(snrs))
	for _, snr := range snrs {
		cfg := *s.config
		cfg.SNR = snr
		if err := cfg.Validate(); err != nil {
			return results, err
		}
		res, err := s.run(ctx, cfg)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (s *Simulator) run(ctx context.Context, cfg Config) (Result, error) {
	n, k := s.encoder.N(), s.encoder.K()
	ch := s.channel
	if ch == nil {
		ch = NewAWGN(cfg.SNR, s.encoder.Rate())
	}

	res := Result{
		RunID: uuid.New(),
		SNR:   cfg.SNR,
		N:     n,
	}
	log.Debugf("run %s: [%d,%d] code at %v dB, %d iterations, %d workers", res.RunID, n, k, cfg.SNR, cfg.Iterations, cfg.Workers)

	var (
		trials      atomic.Int64
		frameErrors atomic.Int64
		bitErrors   atomic.Int64
	)
	pm := s.metrics.point(strconv.FormatFloat(cfg.SNR, 'g', -1, 64))
	start := time.Now()
	progress := rate.Sometimes{Interval: progressInterval}

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < cfg.Workers; w++ {
		wk := &worker{
			encoder: s.encoder,
			decoder: s.decoder,
			channel: ch,
			src:     rand.NewPCG(cfg.Seed, uint64(w)),
			metrics: pm,
		}
		wk.bits = distuv.Bernoulli{P: 0.5, Src: wk.src}
		g.Go(func() error {
			// Worker w owns trials w, w+Workers, w+2*Workers, ...
			for i := w; i < cfg.Iterations; i += cfg.Workers {
				if err := ctx.Err(); err != nil {
					return err
				}
				if cfg.earlyStop(frameErrors.Load()) {
					return nil
				}
				wrong, bits, err := wk.trial(res.RunID, i)
				if err != nil {
					return fmt.Errorf("trial %d: %w", i, err)
				}
				done := trials.Add(1)
				if wrong {
					frameErrors.Add(1)
					bitErrors.Add(int64(bits))
				}
				progress.Do(func() {
					log.Infof("run %s: %d/%d trials, %d frame errors", res.RunID, done, cfg.Iterations, frameErrors.Load())
				})
			}
			return nil
		})
	}
	err := g.Wait()

	res.Iterations = int(trials.Load())
	res.FrameErrors = int(frameErrors.Load())
	res.BitErrors = int(bitErrors.Load())
	res.Elapsed = time.Since(start)
	if err != nil {
		return res, err
	}
	log.Infof("run %s: snr %v dB, %d frame errors in %d trials (FER %g) in %v",
		res.RunID, res.SNR, res.FrameErrors, res.Iterations, res.FER(), res.Elapsed)
	return res, nil
}

// worker runs trials with its own random source
type worker struct {
	encoder Encoder
	decoder Decoder
	channel Channel
	src     rand.Source
	bits    distuv.Bernoulli
	metrics pointMetrics
}

// trial transmits one random message and reports whether it was decoded
// wrongly, along with the number of wrong codeword bits.
func (w *worker) trial(runID uuid.UUID, i int) (bool, int, error) {
	msg := field.NewVector(w.encoder.K())
	for j := range msg {
		msg[j] = byte(w.bits.Rand())
	}
	cw := w.encoder.Encode(msg)
	received := w.channel.Transmit(cw, w.src)

	start := time.Now()
	decoded, err := w.decoder.Decode(received)
	w.metrics.decodeSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		return false, 0, err
	}
	if len(decoded) != len(cw) {
		return false, 0, fmt.Errorf("decoder returned %d bits, want %d", len(decoded), len(cw))
	}
	w.metrics.trials.Inc()

	bits := cw.Add(decoded).Weight()
	if bits == 0 {
		return false, 0, nil
	}
	w.metrics.frameErrors.Inc()
	w.metrics.bitErrors.Add(float64(bits))
	log.Debugf("run %s trial %d: sent %x, decoded %x", runID, i, field.PackBits(cw), field.PackBits(decoded))
	return true, bits, nil
}
