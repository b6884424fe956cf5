package code

import (
	"errors"
	"fmt"

	"github.com/ppopth/trellis/field"

	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("code")

var (
	// ErrNotFullRank is returned when the generator rows are linearly dependent.
	ErrNotFullRank = errors.New("code: generator matrix is not full rank")
	// ErrMessageLength is returned when a message does not have k bits.
	ErrMessageLength = errors.New("code: message length does not match code dimension")
)

// maxEnumerateK bounds Codewords; 2^k codewords are materialised.
const maxEnumerateK = 20

// Code is a binary linear block code of length n and dimension k together
// with its minimal span form. A Code is immutable and safe for concurrent use.
type Code struct {
	generator field.Matrix // original generator matrix, used for encoding
	msf       field.Matrix // minimal span form of generator
	spans     []Span       // span of every msf row
	active    [][]int      // active msf rows per column
}

// New creates a code from a full-rank k×n generator matrix.
// The matrix is copied; later changes by the caller have no effect.
func New(generator field.Matrix) (*Code, error) {
	if err := generator.Validate(); err != nil {
		return nil, fmt.Errorf("invalid generator matrix: %w", err)
	}
	if !field.IsLinearlyIndependent(generator) {
		return nil, fmt.Errorf("rank %d < %d rows: %w", field.Rank(generator), generator.Rows(), ErrNotFullRank)
	}

	msf, err := MinimalSpanForm(generator)
	if err != nil {
		return nil, err
	}
	if !field.SameRowSpace(generator, msf) {
		panic("minimal span form does not generate the original code")
	}

	spans := FindSpans(msf)
	checkDistinctSpans(spans)

	c := &Code{
		generator: generator.Clone(),
		msf:       msf,
		spans:     spans,
		active:    ActiveRows(spans, msf.Cols()),
	}
	log.Debugf("built [%d,%d] code, max active rows %d", c.N(), c.K(), c.MaxActive())
	return c, nil
}

func checkDistinctSpans(spans []Span) {
	starts := make(map[int]int, len(spans))
	ends := make(map[int]int, len(spans))
	for row, s := range spans {
		if prev, ok := starts[s.Start]; ok {
			panic(fmt.Sprintf("rows %d and %d both start at column %d", prev, row, s.Start))
		}
		if prev, ok := ends[s.End]; ok {
			panic(fmt.Sprintf("rows %d and %d both end at column %d", prev, row, s.End))
		}
		starts[s.Start] = row
		ends[s.End] = row
	}
}

// N returns the codeword length
func (c *Code) N() int {
	return c.generator.Cols()
}

// K returns the message length
func (c *Code) K() int {
	return c.generator.Rows()
}

// Rate returns k/n
func (c *Code) Rate() float64 {
	return float64(c.K()) / float64(c.N())
}

// Generator returns a copy of the original generator matrix
func (c *Code) Generator() field.Matrix {
	return c.generator.Clone()
}

// MinimalSpanForm returns a copy of the minimal span form
func (c *Code) MinimalSpanForm() field.Matrix {
	return c.msf.Clone()
}

// Spans returns the span of every minimal span form row
func (c *Code) Spans() []Span {
	return append([]Span(nil), c.spans...)
}

// ActiveRows returns the ascending list of rows active at column col.
// The returned slice must not be modified.
func (c *Code) ActiveRows(col int) []int {
	return c.active[col]
}

// MaxActive returns the largest number of rows active at any column,
// which is the base-2 logarithm of the widest trellis layer.
func (c *Code) MaxActive() int {
	m := 0
	for _, rows := range c.active {
		m = max(m, len(rows))
	}
	return m
}

// Encode multiplies msg by the generator matrix.
// msg must have K() bits; a mismatch panics. Use EncodeChecked for untrusted input.
func (c *Code) Encode(msg field.Vector) field.Vector {
	return field.MulVec(msg, c.generator)
}

// EncodeChecked is Encode with a length check returning ErrMessageLength.
func (c *Code) EncodeChecked(msg field.Vector) (field.Vector, error) {
	if len(msg) != c.K() {
		return nil, fmt.Errorf("got %d bits, want %d: %w", len(msg), c.K(), ErrMessageLength)
	}
	for i, x := range msg {
		if x > 1 {
			return nil, fmt.Errorf("message bit %d = %d: %w", i, x, field.ErrNotBinary)
		}
	}
	return c.Encode(msg), nil
}

// Codewords returns all 2^k codewords, ordered by message value.
// It panics for k above 20.
func (c *Code) Codewords() []field.Vector {
	k := c.K()
	if k > maxEnumerateK {
		panic(fmt.Sprintf("refusing to enumerate 2^%d codewords", k))
	}
	words := make([]field.Vector, 1<<k)
	for m := range words {
		words[m] = c.Encode(field.FromUint(uint64(m), k))
	}
	return words
}
