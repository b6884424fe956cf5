package field

import (
	"fmt"
)

// Matrix operations over GF(2)

// Rank returns the rank of m. The matrix is not modified.
func Rank(m Matrix) int {
	n := len(m) // number of rows
	if n == 0 {
		return 0
	}
	cols := m.Cols()

	A := m.Clone()

	// Forward elimination only; no need for a full RREF to count pivots
	rank := 0
	for col := 0; col < cols && rank < n; col++ {
		pivot := -1
		for i := rank; i < n; i++ {
			if A[i][col] != 0 {
				pivot = i
				break
			}
		}
		if pivot == -1 {
			continue // no pivot in this column
		}

		if pivot != rank {
			A[rank], A[pivot] = A[pivot], A[rank]
		}

		// Eliminate below; over GF(2) the factor is always 1
		for i := rank + 1; i < n; i++ {
			if A[i][col] != 0 {
				A[i].Xor(A[rank])
			}
		}
		rank++
	}

	return rank
}

// IsLinearlyIndependent checks if the rows of m are linearly independent.
func IsLinearlyIndependent(m Matrix) bool {
	if len(m) == 0 {
		return true // empty set is vacuously independent
	}
	// More vectors than dimensions must be dependent
	if len(m) > m.Cols() {
		return false
	}
	return Rank(m) == len(m)
}

// RowEchelon returns the nonzero rows of a row echelon form of m.
func RowEchelon(m Matrix) Matrix {
	var ref Matrix
	for _, row := range m {
		if next, ok := IsLinearlyIndependentIncremental(ref, row); ok {
			ref = next
		}
	}
	return ref
}

// IsLinearlyIndependentIncremental checks if adding v to an existing REF matrix keeps it independent.
// Returns the updated REF matrix and whether v was independent. existing is left unchanged.
func IsLinearlyIndependentIncremental(existing Matrix, v Vector) (Matrix, bool) {
	if len(existing) == 0 {
		if v.IsZero() {
			return nil, false // zero vector is not independent
		}
		return Matrix{v.Clone()}, true
	}

	m := len(v)
	// A full set of m independent vectors already spans the space
	if len(existing) >= m {
		return nil, false
	}

	// Since existing is in REF, clear each pivot position of v in order
	reduced := v.Clone()
	for _, row := range existing {
		pivotCol := row.First()
		if pivotCol == -1 {
			continue // zero row (shouldn't happen in valid REF)
		}
		if reduced[pivotCol] != 0 {
			reduced.Xor(row)
		}
	}

	newPivot := reduced.First()
	if newPivot == -1 {
		return nil, false // v was a combination of existing rows
	}

	// Keep pivots strictly increasing
	insertPos := len(existing)
	for i, row := range existing {
		if newPivot < row.First() {
			insertPos = i
			break
		}
	}

	ref := make(Matrix, 0, len(existing)+1)
	ref = append(ref, existing[:insertPos]...)
	ref = append(ref, reduced)
	ref = append(ref, existing[insertPos:]...)
	return ref, true
}

// InSpan returns true if v is a linear combination of the rows of basis.
func InSpan(basis Matrix, v Vector) bool {
	if v.IsZero() {
		return true
	}
	_, independent := IsLinearlyIndependentIncremental(RowEchelon(basis), v)
	return !independent
}

// SameRowSpace returns true if a and b generate the same row space.
func SameRowSpace(a, b Matrix) bool {
	if a.Cols() != b.Cols() {
		return false
	}
	refB := RowEchelon(b)
	if len(RowEchelon(a)) != len(refB) {
		return false
	}
	// Equal dimension, so containment is enough
	for _, row := range a {
		if !InSpan(refB, row) {
			return false
		}
	}
	return true
}

// IsRowEchelonForm checks if a matrix is in Row Echelon Form (REF).
// REF requirements:
// 1. All non-zero rows are above any zero rows
// 2. Each leading entry (pivot) of a row is to the right of the leading entry of the row above it
// 3. All entries in a column below a leading entry are zeros
func IsRowEchelonForm(m Matrix) bool {
	prevPivotCol := -1

	for i, row := range m {
		pivotCol := row.First()

		if pivotCol == -1 {
			// All remaining rows must also be zero rows
			for k := i + 1; k < len(m); k++ {
				if !m[k].IsZero() {
					return false
				}
			}
			break
		}

		if pivotCol <= prevPivotCol {
			return false
		}

		for k := i + 1; k < len(m); k++ {
			if pivotCol < len(m[k]) && m[k][pivotCol] != 0 {
				return false
			}
		}

		prevPivotCol = pivotCol
	}

	return true
}

// MulVec computes the row vector v × m over GF(2).
// v must have one entry per row of m; a mismatch panics.
func MulVec(v Vector, m Matrix) Vector {
	if len(v) != len(m) {
		panic(fmt.Sprintf("dimension mismatch: vector has %d entries, matrix has %d rows", len(v), len(m)))
	}
	out := NewVector(m.Cols())
	for i, x := range v {
		if x != 0 {
			out.Xor(m[i])
		}
	}
	return out
}
