package trellis

import (
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ppopth/trellis/code"
	"github.com/ppopth/trellis/field"

	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("trellis")

// NoEdge marks a missing outgoing edge.
const NoEdge = -1

// DefaultMaxActive bounds the active rows per layer, i.e. layers of up to 2^24 nodes.
const DefaultMaxActive = 24

var (
	// ErrTooComplex is returned when a layer would exceed the configured size.
	ErrTooComplex = errors.New("trellis: layer too wide")
	// ErrReceivedLength is returned when a received vector does not have n samples.
	ErrReceivedLength = errors.New("trellis: received vector length does not match code length")
	// ErrInvalidSample is returned for a NaN or infinite received sample.
	ErrInvalidSample = errors.New("trellis: received sample is not finite")
)

// Node is a trellis state. Zero and One are the indexes of the next-layer
// nodes reached by a 0 or 1 edge, or NoEdge.
type Node struct {
	Zero int
	One  int
}

// Next returns the node reached by the edge labelled bit
func (n Node) Next(bit byte) int {
	if bit == 0 {
		return n.Zero
	}
	return n.One
}

// Layer is the set of states between two code columns. A node index is a
// mask over ActiveRows: bit i holds the value of row ActiveRows[i].
type Layer struct {
	ActiveRows []int  // rows whose span crosses this boundary
	Nodes      []Node // outgoing edges of each node

	position []int // row -> bit position in ActiveRows, -1 if inactive
}

// bit returns the value row takes in mask, and whether row is active here.
func (l *Layer) bit(mask int, row int) (byte, bool) {
	pos := l.position[row]
	if pos < 0 {
		return 0, false
	}
	return byte((mask >> uint(pos)) & 1), true
}

// Trellis is the layered graph whose root-to-terminal paths are the
// codewords of a code. It is immutable once built and safe for concurrent decoding.
type Trellis struct {
	k      int
	layers []Layer
}

// BuildOption configures Build
type BuildOption func(*buildConfig) error

type buildConfig struct {
	workers   int
	maxActive int
}

// WithBuildWorkers connects column boundaries on up to n goroutines.
func WithBuildWorkers(n int) BuildOption {
	return func(cfg *buildConfig) error {
		if n < 1 {
			return fmt.Errorf("build workers must be positive, got %d", n)
		}
		cfg.workers = n
		return nil
	}
}

// WithMaxActive sets the largest number of active rows allowed in a layer.
func WithMaxActive(m int) BuildOption {
	return func(cfg *buildConfig) error {
		if m < 0 || m > 30 {
			return fmt.Errorf("max active rows must be in [0, 30], got %d", m)
		}
		cfg.maxActive = m
		return nil
	}
}

// Build constructs the trellis of c from its minimal span form.
//
// Layer 0 is the root. Layer col+1 has one node per assignment of the rows
// active at col. Two nodes in adjacent layers are connected when they agree
// on every row active in both; the edge label is the inner product of MSF
// column col with the row values. A row occupying only column col is free
// there and yields parallel 0 and 1 edges.
func Build(c *code.Code, opts ...BuildOption) (*Trellis, error) {
	cfg := buildConfig{workers: 1, maxActive: DefaultMaxActive}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	if m := c.MaxActive(); m > cfg.maxActive {
		return nil, fmt.Errorf("%d active rows, limit %d: %w", m, cfg.maxActive, ErrTooComplex)
	}

	n, k := c.N(), c.K()
	t := &Trellis{
		k:      k,
		layers: make([]Layer, n+1),
	}
	t.layers[0] = newLayer(nil, k)
	for col := 0; col < n; col++ {
		t.layers[col+1] = newLayer(c.ActiveRows(col), k)
	}

	msf := c.MinimalSpanForm()
	spans := c.Spans()

	// Each boundary writes only to its own left layer
	var g errgroup.Group
	g.SetLimit(cfg.workers)
	for col := 0; col < n; col++ {
		g.Go(func() error {
			t.connect(msf, spans, col)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if last := len(t.layers[n].Nodes); last != 1 {
		panic(fmt.Sprintf("terminal layer has %d nodes", last))
	}
	log.Debugf("built trellis for [%d,%d] code: widths %v, %d edges", n, k, t.Widths(), t.Edges())
	return t, nil
}

func newLayer(active []int, k int) Layer {
	l := Layer{
		ActiveRows: active,
		Nodes:      make([]Node, 1<<uint(len(active))),
		position:   make([]int, k),
	}
	for i := range l.Nodes {
		l.Nodes[i] = Node{Zero: NoEdge, One: NoEdge}
	}
	for row := range l.position {
		l.position[row] = -1
	}
	for pos, row := range active {
		l.position[row] = pos
	}
	return l
}

// connect fills in the edges from layer col to layer col+1.
func (t *Trellis) connect(msf field.Matrix, spans []code.Span, col int) {
	now := &t.layers[col]
	next := &t.layers[col+1]

	// both: rows active on both sides; weighted: active rows with a 1 in this column
	var both, weighted []int
	free := false
	for row, s := range spans {
		inNow := now.position[row] >= 0
		inNext := next.position[row] >= 0
		if inNow && inNext {
			both = append(both, row)
		}
		if (inNow || inNext) && msf[row][col] == 1 {
			weighted = append(weighted, row)
		}
		if s.Start == col && s.End == col {
			free = true
		}
	}

	for maskNow := range now.Nodes {
		for maskNext := range next.Nodes {
			if !agree(now, next, both, maskNow, maskNext) {
				continue
			}
			var label byte
			for _, row := range weighted {
				v, ok := now.bit(maskNow, row)
				if !ok {
					if v, ok = next.bit(maskNext, row); !ok {
						panic(fmt.Sprintf("row %d active in neither layer %d nor %d", row, col, col+1))
					}
				}
				label ^= v
			}
			if label == 0 || free {
				setEdge(&now.Nodes[maskNow].Zero, maskNext, col)
			}
			if label == 1 || free {
				setEdge(&now.Nodes[maskNow].One, maskNext, col)
			}
		}
	}
}

func setEdge(slot *int, target, col int) {
	if *slot != NoEdge && *slot != target {
		panic(fmt.Sprintf("column %d: node already has an edge to %d, got %d", col, *slot, target))
	}
	*slot = target
}

// agree reports whether two masks assign the same value to every row in both.
func agree(now, next *Layer, both []int, maskNow, maskNext int) bool {
	for _, row := range both {
		a, _ := now.bit(maskNow, row)
		b, _ := next.bit(maskNext, row)
		if a != b {
			return false
		}
	}
	return true
}

// N returns the codeword length, one less than the number of layers
func (t *Trellis) N() int {
	return len(t.layers) - 1
}

// Layer returns layer i. The returned value must not be modified.
func (t *Trellis) Layer(i int) Layer {
	return t.layers[i]
}

// Widths returns the node count of every layer, from root to terminal.
func (t *Trellis) Widths() []int {
	widths := make([]int, len(t.layers))
	for i := range t.layers {
		widths[i] = len(t.layers[i].Nodes)
	}
	return widths
}

// Nodes returns the total number of nodes
func (t *Trellis) Nodes() int {
	total := 0
	for _, w := range t.Widths() {
		total += w
	}
	return total
}

// Edges returns the total number of edges
func (t *Trellis) Edges() int {
	total := 0
	for i := range t.layers {
		for _, node := range t.layers[i].Nodes {
			if node.Zero != NoEdge {
				total++
			}
			if node.One != NoEdge {
				total++
			}
		}
	}
	return total
}

// Codewords returns the label sequence of every root-to-terminal path.
// It panics for codes with more than 2^20 codewords.
func (t *Trellis) Codewords() []field.Vector {
	if t.k > 20 {
		panic(fmt.Sprintf("refusing to enumerate 2^%d paths", t.k))
	}
	var words []field.Vector
	path := field.NewVector(t.N())
	var walk func(col, node int)
	walk = func(col, node int) {
		if col == t.N() {
			words = append(words, path.Clone())
			return
		}
		for _, bit := range []byte{0, 1} {
			if next := t.layers[col].Nodes[node].Next(bit); next != NoEdge {
				path[col] = bit
				walk(col+1, next)
			}
		}
	}
	walk(0, 0)
	return words
}
