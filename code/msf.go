package code

import (
	"fmt"

	"github.com/ppopth/trellis/field"
)

// MinimalSpanForm returns the minimal span form of a generator matrix.
//
// The result generates the same code as g, every row starts in a different
// column and every row ends in a different column. g itself is not modified.
// ErrNotFullRank is returned if the rows of g are linearly dependent.
func MinimalSpanForm(g field.Matrix) (field.Matrix, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	msf := g.Clone()
	if err := uniqueStarts(msf); err != nil {
		return nil, err
	}
	if !field.IsRowEchelonForm(msf) {
		panic("forward pass did not leave row echelon form")
	}
	if err := uniqueEnds(msf); err != nil {
		return nil, err
	}
	return msf, nil
}

// uniqueStarts brings m to row echelon form, so that row starts strictly increase.
func uniqueStarts(m field.Matrix) error {
	k, n := m.Rows(), m.Cols()
	col := 0
	for row := 0; row < k; {
		if col >= n {
			return fmt.Errorf("only %d of %d rows have a pivot: %w", row, k, ErrNotFullRank)
		}
		if m[row][col] == 0 {
			// Swap in a lower row with a 1 in this column
			for i := row + 1; i < k; i++ {
				if m[i][col] == 1 {
					m[i], m[row] = m[row], m[i]
					break
				}
			}
		}
		// Column is zero for all remaining rows
		if m[row][col] == 0 {
			col++
			continue
		}
		for i := row + 1; i < k; i++ {
			if m[i][col] == 1 {
				m[i].Xor(m[row])
			}
		}
		row++
		col++
	}
	return nil
}

// uniqueEnds makes row ends pairwise distinct without moving any row start.
// It expects m in the form left by uniqueStarts.
func uniqueEnds(m field.Matrix) error {
	k, n := m.Rows(), m.Cols()
	fixed := make([]bool, k)
	col := n - 1
	for remaining := k; remaining > 0; col-- {
		if col < 0 {
			return fmt.Errorf("%d rows left without a distinct end: %w", remaining, ErrNotFullRank)
		}
		// Lowest unfixed row with a 1 here; every unfixed row is zero right of col
		for last := k - 1; last >= 0; last-- {
			if fixed[last] || m[last][col] == 0 {
				continue
			}
			// Rows above start earlier, so adding m[last] keeps their start
			for other := last - 1; other >= 0; other-- {
				if m[other][col] == 1 {
					m[other].Xor(m[last])
				}
			}
			fixed[last] = true
			remaining--
			break
		}
	}
	return nil
}
