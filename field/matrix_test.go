package field

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper functions

// identityMatrix creates an n×n identity matrix over GF(2)
func identityMatrix(n int) Matrix {
	I := NewMatrix(n, n)
	for i := 0; i < n; i++ {
		I[i][i] = 1
	}
	return I
}

// randomMatrix fills a rows×cols matrix with random bits
func randomMatrix(r *rand.Rand, rows, cols int) Matrix {
	m := NewMatrix(rows, cols)
	for i := range m {
		for j := range m[i] {
			m[i][j] = byte(r.Intn(2))
		}
	}
	return m
}

func mustFromRows(t *testing.T, rows [][]int) Matrix {
	t.Helper()
	m, err := FromRows(rows)
	require.NoError(t, err)
	return m
}

func TestRank(t *testing.T) {
	tests := []struct {
		name string
		rows [][]int
		want int
	}{
		{"identity", [][]int{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}, 3},
		{"repeated row", [][]int{{1, 1, 0}, {1, 1, 0}}, 1},
		{"sum of rows", [][]int{{1, 0, 1, 1}, {0, 1, 1, 0}, {1, 1, 0, 1}}, 2},
		{"zero row", [][]int{{0, 0, 0}, {0, 1, 1}}, 1},
		{"wide", [][]int{{1, 0, 1, 1}, {0, 1, 1, 0}}, 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := mustFromRows(t, tc.rows)
			before := m.Clone()
			assert.Equal(t, tc.want, Rank(m))
			assert.Equal(t, before, m, "Rank modified its input")
		})
	}
}

func TestIsLinearlyIndependent(t *testing.T) {
	assert.True(t, IsLinearlyIndependent(identityMatrix(4)))
	assert.True(t, IsLinearlyIndependent(nil), "empty set should be independent")
	assert.False(t, IsLinearlyIndependent(Matrix{{1, 1, 0}, {1, 1, 0}}))

	tall := NewMatrix(3, 2)
	tall[0][0], tall[1][1], tall[2][0] = 1, 1, 1
	assert.False(t, IsLinearlyIndependent(tall), "3 vectors in 2 dimensions cannot be independent")
}

func TestIsLinearlyIndependentIncremental(t *testing.T) {
	var ref Matrix
	vectors := Matrix{
		{0, 1, 1, 0},
		{1, 0, 1, 1},
		{1, 1, 0, 1}, // sum of the first two
		{0, 0, 0, 1},
	}
	wantIndependent := []bool{true, true, false, true}

	for i, v := range vectors {
		next, ok := IsLinearlyIndependentIncremental(ref, v)
		require.Equal(t, wantIndependent[i], ok, "vector %d", i)
		if ok {
			ref = next
			require.True(t, IsRowEchelonForm(ref), "vector %d: result is not in REF:\n%s", i, ref)
		}
	}
	assert.Len(t, ref, 3)
}

func TestIsRowEchelonForm(t *testing.T) {
	tests := []struct {
		name string
		m    Matrix
		want bool
	}{
		{"identity", identityMatrix(3), true},
		{"staircase", Matrix{{1, 1, 0, 1}, {0, 0, 1, 1}}, true},
		{"pivot not to the right", Matrix{{0, 1, 0}, {1, 0, 0}}, false},
		{"nonzero below pivot", Matrix{{1, 0, 0}, {1, 1, 0}}, false},
		{"zero row above nonzero", Matrix{{0, 0, 0}, {0, 1, 0}}, false},
		{"trailing zero rows", Matrix{{1, 0, 0}, {0, 0, 0}}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsRowEchelonForm(tc.m), "matrix\n%s", tc.m)
		})
	}
}

func TestSameRowSpace(t *testing.T) {
	a := Matrix{{1, 0, 1, 1}, {0, 1, 1, 0}}
	b := Matrix{{1, 1, 0, 1}, {0, 1, 1, 0}} // row0 replaced by row0+row1
	c := Matrix{{1, 0, 1, 1}, {0, 0, 1, 0}}

	assert.True(t, SameRowSpace(a, b), "row operations must preserve the row space")
	assert.False(t, SameRowSpace(a, c))
	assert.False(t, SameRowSpace(a, Matrix{{1, 0, 1, 1}}), "subspace reported as equal")
	assert.False(t, SameRowSpace(a, Matrix{{1, 0, 1}, {0, 1, 1}}))

	assert.True(t, InSpan(a, Vector{1, 1, 0, 1}), "sum of rows should be in span")
	assert.True(t, InSpan(a, NewVector(4)))
	assert.False(t, InSpan(a, Vector{0, 0, 0, 1}))
}

func TestMulVec(t *testing.T) {
	G := Matrix{{1, 0, 1, 1}, {0, 1, 1, 0}}

	tests := []struct {
		msg  Vector
		want Vector
	}{
		{Vector{0, 0}, Vector{0, 0, 0, 0}},
		{Vector{1, 0}, Vector{1, 0, 1, 1}},
		{Vector{0, 1}, Vector{0, 1, 1, 0}},
		{Vector{1, 1}, Vector{1, 1, 0, 1}},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, MulVec(tc.msg, G), "msg %s", tc.msg)
	}

	// Identity is neutral
	r := rand.New(rand.NewSource(7))
	m := randomMatrix(r, 5, 9)
	for i := 0; i < 5; i++ {
		assert.Equal(t, m[i], MulVec(identityMatrix(5)[i], m), "unit vector %d", i)
	}
}

func TestMulVecDimensionMismatch(t *testing.T) {
	assert.Panics(t, func() { MulVec(Vector{1, 0, 1}, Matrix{{1, 0}, {0, 1}}) })
}

func TestRandomRankAgreesWithREF(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for trial := 0; trial < 50; trial++ {
		m := randomMatrix(r, 1+r.Intn(6), 1+r.Intn(8))
		ref := RowEchelon(m)
		require.Len(t, ref, Rank(m), "trial %d\n%s", trial, m)
		require.True(t, IsRowEchelonForm(ref), "trial %d: RowEchelon result not in REF\n%s", trial, ref)
		require.True(t, SameRowSpace(m, ref), "trial %d: REF changed the row space", trial)
		require.Equal(t, len(ref) == len(m), IsLinearlyIndependent(m), "trial %d", trial)
	}
}
