package code

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppopth/trellis/field"
)

// randomFullRank draws random k×n matrices until one has full row rank.
func randomFullRank(t *testing.T, r *rand.Rand, k, n int) field.Matrix {
	t.Helper()
	for {
		m := field.NewMatrix(k, n)
		for i := range m {
			for j := range m[i] {
				m[i][j] = byte(r.Intn(2))
			}
		}
		if field.Rank(m) == k {
			return m
		}
	}
}

func requireMinimalSpan(t *testing.T, g, msf field.Matrix) {
	t.Helper()
	require.True(t, field.SameRowSpace(g, msf), "row space changed:\n%s\nvs\n%s", g, msf)
	starts := make(map[int]bool)
	ends := make(map[int]bool)
	for row, s := range FindSpans(msf) {
		require.False(t, starts[s.Start], "row %d repeats start %d in\n%s", row, s.Start, msf)
		require.False(t, ends[s.End], "row %d repeats end %d in\n%s", row, s.End, msf)
		starts[s.Start] = true
		ends[s.End] = true
	}
}

func TestMinimalSpanFormExample(t *testing.T) {
	g, err := field.FromRows([][]int{{1, 0, 1, 1}, {0, 1, 1, 0}})
	require.NoError(t, err)

	msf, err := MinimalSpanForm(g)
	require.NoError(t, err)

	assert.Equal(t, field.Matrix{{1, 1, 0, 1}, {0, 1, 1, 0}}, msf)
	assert.Equal(t, field.Matrix{{1, 0, 1, 1}, {0, 1, 1, 0}}, g, "input must not be modified")
	requireMinimalSpan(t, g, msf)
}

func TestMinimalSpanFormHamming(t *testing.T) {
	// Systematic [7,4] Hamming code
	g, err := field.FromRows([][]int{
		{1, 0, 0, 0, 1, 1, 0},
		{0, 1, 0, 0, 1, 0, 1},
		{0, 0, 1, 0, 0, 1, 1},
		{0, 0, 0, 1, 1, 1, 1},
	})
	require.NoError(t, err)

	msf, err := MinimalSpanForm(g)
	require.NoError(t, err)
	requireMinimalSpan(t, g, msf)
}

func TestMinimalSpanFormRandom(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for trial := 0; trial < 200; trial++ {
		n := 2 + r.Intn(10)
		k := 1 + r.Intn(n)
		g := randomFullRank(t, r, k, n)
		msf, err := MinimalSpanForm(g)
		require.NoError(t, err, "trial %d", trial)
		requireMinimalSpan(t, g, msf)
	}
}

func TestMinimalSpanFormNotFullRank(t *testing.T) {
	tests := []struct {
		name string
		rows [][]int
	}{
		{"repeated row", [][]int{{1, 1, 0}, {1, 1, 0}}},
		{"zero row", [][]int{{1, 0, 1}, {0, 0, 0}}},
		{"sum of rows", [][]int{{1, 0, 1, 1}, {0, 1, 1, 0}, {1, 1, 0, 1}}},
		{"more rows than columns", [][]int{{1, 0}, {0, 1}, {1, 1}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g, err := field.FromRows(tc.rows)
			require.NoError(t, err)

			_, err = MinimalSpanForm(g)
			assert.ErrorIs(t, err, ErrNotFullRank)

			_, err = New(g)
			assert.ErrorIs(t, err, ErrNotFullRank)
		})
	}
}

func TestFindSpansAndActiveRows(t *testing.T) {
	msf := field.Matrix{{1, 1, 0, 1}, {0, 1, 1, 0}}

	spans := FindSpans(msf)
	assert.Equal(t, []Span{{Start: 0, End: 3}, {Start: 1, End: 2}}, spans)

	active := ActiveRows(spans, 4)
	assert.Equal(t, [][]int{{0}, {0, 1}, {0}, {}}, active)

	zero := FindSpans(field.Matrix{{0, 0, 0}})
	assert.Equal(t, []Span{{Start: -1, End: -1}}, zero)
	assert.False(t, zero[0].Active(0))
}

func TestNewCode(t *testing.T) {
	g, err := field.FromRows([][]int{{1, 0, 1, 1}, {0, 1, 1, 0}})
	require.NoError(t, err)

	c, err := New(g)
	require.NoError(t, err)

	assert.Equal(t, 4, c.N())
	assert.Equal(t, 2, c.K())
	assert.InDelta(t, 0.5, c.Rate(), 1e-12)
	assert.Equal(t, 2, c.MaxActive())
	assert.Equal(t, []int{0, 1}, c.ActiveRows(1))

	// Copies are returned
	gen := c.Generator()
	gen[0][0] = 0
	assert.Equal(t, byte(1), c.Generator()[0][0])
	g[0][0] = 0
	assert.Equal(t, byte(1), c.Generator()[0][0], "New must copy the generator")
}

func TestNewCodeInvalid(t *testing.T) {
	_, err := New(field.Matrix{{1, 2}})
	assert.ErrorIs(t, err, field.ErrNotBinary)

	_, err = New(nil)
	assert.ErrorIs(t, err, field.ErrEmpty)
}

func TestEncode(t *testing.T) {
	g, err := field.FromRows([][]int{{1, 0, 1, 1}, {0, 1, 1, 0}})
	require.NoError(t, err)
	c, err := New(g)
	require.NoError(t, err)

	assert.Equal(t, field.Vector{1, 0, 1, 1}, c.Encode(field.Vector{1, 0}))
	assert.Equal(t, field.Vector{1, 1, 0, 1}, c.Encode(field.Vector{1, 1}))

	_, err = c.EncodeChecked(field.Vector{1, 0, 1})
	assert.ErrorIs(t, err, ErrMessageLength)
	_, err = c.EncodeChecked(field.Vector{1, 5})
	assert.ErrorIs(t, err, field.ErrNotBinary)

	assert.Panics(t, func() { c.Encode(field.Vector{1}) })
}

func TestEncodeLinearity(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	for trial := 0; trial < 20; trial++ {
		n := 3 + r.Intn(8)
		k := 1 + r.Intn(n)
		c, err := New(randomFullRank(t, r, k, n))
		require.NoError(t, err)

		for i := 0; i < 20; i++ {
			m1 := field.FromUint(r.Uint64(), k)
			m2 := field.FromUint(r.Uint64(), k)
			require.Equal(t, c.Encode(m1).Add(c.Encode(m2)), c.Encode(m1.Add(m2)))
		}
	}
}

func TestCodewords(t *testing.T) {
	g, err := field.FromRows([][]int{{1, 0, 1, 1}, {0, 1, 1, 0}})
	require.NoError(t, err)
	c, err := New(g)
	require.NoError(t, err)

	words := c.Codewords()
	assert.Equal(t, []field.Vector{
		{0, 0, 0, 0},
		{0, 1, 1, 0},
		{1, 0, 1, 1},
		{1, 1, 0, 1},
	}, words)
}
