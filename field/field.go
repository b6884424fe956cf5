package field

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotBinary is returned when a matrix entry is neither 0 nor 1.
	ErrNotBinary = errors.New("field: entry is not a binary digit")
	// ErrRagged is returned when the rows of a matrix differ in length.
	ErrRagged = errors.New("field: matrix rows differ in length")
	// ErrEmpty is returned for a matrix without rows or columns.
	ErrEmpty = errors.New("field: matrix is empty")
)

// Vector is a vector over GF(2). Every entry is 0 or 1.
type Vector []byte

// Matrix is a row-major matrix over GF(2)
type Matrix []Vector

// NewVector returns the zero vector of length n
func NewVector(n int) Vector {
	return make(Vector, n)
}

// FromUint returns the n low bits of x as a vector, most significant bit first.
func FromUint(x uint64, n int) Vector {
	v := make(Vector, n)
	for i := 0; i < n; i++ {
		v[i] = byte((x >> uint(n-1-i)) & 1)
	}
	return v
}

// Clone returns a copy of v
func (v Vector) Clone() Vector {
	return append(Vector(nil), v...)
}

// Equal returns true if v and b have the same length and entries
func (v Vector) Equal(b Vector) bool {
	if len(v) != len(b) {
		return false
	}
	for i := range v {
		if v[i] != b[i] {
			return false
		}
	}
	return true
}

// Add returns v + b (XOR). The lengths must match.
func (v Vector) Add(b Vector) Vector {
	mustSameLength(len(v), len(b))
	out := make(Vector, len(v))
	for i := range v {
		out[i] = v[i] ^ b[i]
	}
	return out
}

// Xor adds b into v in place
func (v Vector) Xor(b Vector) {
	mustSameLength(len(v), len(b))
	for i := range v {
		v[i] ^= b[i]
	}
}

// Dot returns the inner product of v and b modulo 2. The lengths must match.
func (v Vector) Dot(b Vector) byte {
	mustSameLength(len(v), len(b))
	var result byte
	for i := range v {
		result ^= v[i] & b[i]
	}
	return result
}

// IsZero returns true if every entry of v is zero
func (v Vector) IsZero() bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

// Weight returns the Hamming weight of v
func (v Vector) Weight() int {
	w := 0
	for _, x := range v {
		w += int(x)
	}
	return w
}

// First returns the index of the first 1 in v, or -1 for the zero vector
func (v Vector) First() int {
	for i, x := range v {
		if x != 0 {
			return i
		}
	}
	return -1
}

// Last returns the index of the last 1 in v, or -1 for the zero vector
func (v Vector) Last() int {
	for i := len(v) - 1; i >= 0; i-- {
		if v[i] != 0 {
			return i
		}
	}
	return -1
}

// String returns the entries separated by spaces
func (v Vector) String() string {
	var sb strings.Builder
	for i, x := range v {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteByte('0' + x)
	}
	return sb.String()
}

// NewMatrix returns the zero matrix with the given shape
func NewMatrix(rows, cols int) Matrix {
	m := make(Matrix, rows)
	for i := range m {
		m[i] = NewVector(cols)
	}
	return m
}

// FromRows builds a matrix from integer rows, rejecting entries other than 0 and 1.
func FromRows(rows [][]int) (Matrix, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrEmpty
	}
	m := make(Matrix, len(rows))
	for i, row := range rows {
		if len(row) != len(rows[0]) {
			return nil, fmt.Errorf("row %d has %d entries, want %d: %w", i, len(row), len(rows[0]), ErrRagged)
		}
		m[i] = make(Vector, len(row))
		for j, x := range row {
			if x != 0 && x != 1 {
				return nil, fmt.Errorf("entry (%d,%d) = %d: %w", i, j, x, ErrNotBinary)
			}
			m[i][j] = byte(x)
		}
	}
	return m, nil
}

// Validate checks that m is non-empty, rectangular and binary
func (m Matrix) Validate() error {
	if len(m) == 0 || len(m[0]) == 0 {
		return ErrEmpty
	}
	for i, row := range m {
		if len(row) != len(m[0]) {
			return fmt.Errorf("row %d has %d entries, want %d: %w", i, len(row), len(m[0]), ErrRagged)
		}
		for j, x := range row {
			if x > 1 {
				return fmt.Errorf("entry (%d,%d) = %d: %w", i, j, x, ErrNotBinary)
			}
		}
	}
	return nil
}

// Rows returns the number of rows
func (m Matrix) Rows() int {
	return len(m)
}

// Cols returns the number of columns, or 0 for an empty matrix
func (m Matrix) Cols() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// Clone returns a deep copy of m
func (m Matrix) Clone() Matrix {
	out := make(Matrix, len(m))
	for i := range m {
		out[i] = m[i].Clone()
	}
	return out
}

// Column returns a copy of column j
func (m Matrix) Column(j int) Vector {
	col := make(Vector, len(m))
	for i := range m {
		col[i] = m[i][j]
	}
	return col
}

// Equal returns true if both matrices have the same shape and entries
func (m Matrix) Equal(b Matrix) bool {
	if len(m) != len(b) {
		return false
	}
	for i := range m {
		if !m[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// String returns one line per row
func (m Matrix) String() string {
	lines := make([]string, len(m))
	for i, row := range m {
		lines[i] = row.String()
	}
	return strings.Join(lines, "\n")
}

func mustSameLength(a, b int) {
	if a != b {
		panic(fmt.Sprintf("vector lengths mismatch: %d vs %d", a, b))
	}
}
