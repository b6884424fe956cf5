package sim

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/ppopth/trellis/field"
)

// Channel turns a codeword into the soft samples seen by the receiver
type Channel interface {
	Transmit(codeword field.Vector, src rand.Source) []float64
}

// Modulate maps bit 0 to +1 and bit 1 to -1
func Modulate(codeword field.Vector) []float64 {
	out := make([]float64, len(codeword))
	for i, b := range codeword {
		out[i] = 1 - 2*float64(b)
	}
	return out
}

// AWGN is a BPSK channel with additive white Gaussian noise
type AWGN struct {
	Sigma float64
}

// NewAWGN returns the channel for snr dB at the given code rate.
// The noise standard deviation is sqrt(0.5 * 10^(-snr/10) / rate).
func NewAWGN(snr, rate float64) AWGN {
	return AWGN{Sigma: math.Sqrt(0.5 * math.Pow(10, -snr/10) / rate)}
}

// Transmit modulates codeword and adds noise drawn from src
func (a AWGN) Transmit(codeword field.Vector, src rand.Source) []float64 {
	out := Modulate(codeword)
	if a.Sigma == 0 {
		return out
	}
	noise := distuv.Normal{Mu: 0, Sigma: a.Sigma, Src: src}
	for i := range out {
		out[i] += noise.Rand()
	}
	return out
}

// Noiseless transmits the modulated codeword unchanged
type Noiseless struct{}

// Transmit implements Channel
func (Noiseless) Transmit(codeword field.Vector, _ rand.Source) []float64 {
	return Modulate(codeword)
}
