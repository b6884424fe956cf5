package code

import (
	"github.com/ppopth/trellis/field"
)

// Span is the inclusive column interval covered by one row of a matrix.
type Span struct {
	Start int // index of the first 1
	End   int // index of the last 1
}

// Active returns true if the row is active at column c, i.e. it crosses the
// boundary between c and c+1.
func (s Span) Active(c int) bool {
	return s.Start <= c && c < s.End
}

// FindSpans returns the span of every row of m.
// A zero row gets Span{-1, -1}, which is never active.
func FindSpans(m field.Matrix) []Span {
	k, n := m.Rows(), m.Cols()
	spans := make([]Span, k)
	for row := range spans {
		spans[row] = Span{Start: -1, End: -1}
	}
	for col := 0; col < n; col++ {
		for row := 0; row < k; row++ {
			if m[row][col] == 1 && spans[row].Start == -1 {
				spans[row].Start = col
			}
		}
	}
	for col := n - 1; col >= 0; col-- {
		for row := 0; row < k; row++ {
			if m[row][col] == 1 && spans[row].End == -1 {
				spans[row].End = col
			}
		}
	}
	return spans
}

// ActiveRows returns, for every column c in [0, n), the ascending list of rows
// whose span is active at c.
func ActiveRows(spans []Span, n int) [][]int {
	active := make([][]int, n)
	for col := 0; col < n; col++ {
		active[col] = []int{}
		for row, s := range spans {
			if s.Active(col) {
				active[col] = append(active[col], row)
			}
		}
	}
	return active
}
