package trellis

import (
	"fmt"
	"math"

	"github.com/ppopth/trellis/field"
)

// survivor is the best known way into a node
type survivor struct {
	metric  float64
	prev    int  // node index in the previous layer
	bit     byte // label of the edge taken
	reached bool
}

// Decode returns the codeword whose path has the smallest metric for the
// received soft samples, one per code position. A transmitted 0 is expected
// as a positive sample and a 1 as a negative one.
func (t *Trellis) Decode(received []float64) (field.Vector, error) {
	cw, _, err := t.DecodeWithMetric(received)
	return cw, err
}

// DecodeWithMetric is Decode, also returning the metric of the winning path.
//
// A 0 edge at column c costs -received[c] and a 1 edge costs +received[c],
// so the winning path maximises the correlation with the BPSK image of the
// codeword. On an exact tie the first candidate seen is kept: lower source
// node first, 0 edge before 1 edge.
func (t *Trellis) DecodeWithMetric(received []float64) (field.Vector, float64, error) {
	n := t.N()
	if len(received) != n {
		return nil, 0, fmt.Errorf("got %d samples, want %d: %w", len(received), n, ErrReceivedLength)
	}
	for i, y := range received {
		if math.IsNaN(y) || math.IsInf(y, 0) {
			return nil, 0, fmt.Errorf("sample %d: %w", i, ErrInvalidSample)
		}
	}

	dist := make([][]survivor, n+1)
	dist[0] = []survivor{{prev: NoEdge, reached: true}}
	for col := 0; col < n; col++ {
		next := make([]survivor, len(t.layers[col+1].Nodes))
		for node, edges := range t.layers[col].Nodes {
			from := dist[col][node]
			if !from.reached {
				continue
			}
			relax(next, edges.Zero, from.metric-received[col], node, 0)
			relax(next, edges.One, from.metric+received[col], node, 1)
		}
		dist[col+1] = next
	}

	if len(dist[n]) != 1 {
		panic(fmt.Sprintf("terminal layer has %d nodes", len(dist[n])))
	}
	if !dist[n][0].reached {
		panic("terminal node is unreachable")
	}

	// Walk back from the terminal node, filling bits from the end
	cw := field.NewVector(n)
	node := 0
	for col := n; col > 0; col-- {
		s := dist[col][node]
		cw[col-1] = s.bit
		node = s.prev
	}
	return cw, dist[n][0].metric, nil
}

func relax(next []survivor, to int, metric float64, from int, bit byte) {
	if to == NoEdge {
		return
	}
	if s := &next[to]; !s.reached || metric < s.metric {
		*s = survivor{metric: metric, prev: from, bit: bit, reached: true}
	}
}
