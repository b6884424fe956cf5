package sim

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat/distuv"
)

// Result summarises one simulation point
type Result struct {
	RunID       uuid.UUID
	SNR         float64
	N           int // codeword length
	Iterations  int // trials actually executed
	FrameErrors int
	BitErrors   int
	Elapsed     time.Duration
}

// FER returns the frame error rate over the executed trials, 0 if none ran
func (r Result) FER() float64 {
	if r.Iterations == 0 {
		return 0
	}
	return float64(r.FrameErrors) / float64(r.Iterations)
}

// BER returns the codeword bit error rate over the executed trials
func (r Result) BER() float64 {
	if r.Iterations == 0 || r.N == 0 {
		return 0
	}
	return float64(r.BitErrors) / float64(r.Iterations*r.N)
}

// Interval returns the normal-approximation confidence interval of the FER
// at the given level, clamped to [0, 1]. It panics unless 0 < level < 1.
func (r Result) Interval(level float64) (lo, hi float64) {
	if !(level > 0 && level < 1) {
		panic(fmt.Sprintf("confidence level must be in (0, 1), got %v", level))
	}
	if r.Iterations == 0 {
		return 0, 1
	}
	p := r.FER()
	z := distuv.UnitNormal.Quantile(1 - (1-level)/2)
	half := z * math.Sqrt(p*(1-p)/float64(r.Iterations))
	return math.Max(0, p-half), math.Min(1, p+half)
}

// String formats r as one report line
func (r Result) String() string {
	lo, hi := r.Interval(0.95)
	return fmt.Sprintf("snr=%g fer=%f [%f, %f] ber=%e frames=%d errors=%d",
		r.SNR, r.FER(), lo, hi, r.BER(), r.Iterations, r.FrameErrors)
}
