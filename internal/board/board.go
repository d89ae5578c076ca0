// Package board implements the fixed-size grid the solver plays on: a flat
// byte array of empty-sentinel or letter-code cells, plus the tight
// bounding box of occupied cells that the solver grows and shrinks on
// every placement and rollback.
package board

import "github.com/willdavis/bananagrams/internal/alphabet"

// Size is the grid side length L. 144 is sufficient because the standard
// tile set has 144 tiles and a connected crossword of n tiles fits in an
// n x n region.
const Size = 144

// Box is the tight axis-aligned rectangle containing every occupied cell.
// Valid is false for an empty board, in which case the other fields are
// meaningless.
type Box struct {
	MinRow, MaxRow, MinCol, MaxCol int
	Valid                          bool
}

// Board is a Size x Size grid of letter codes, stored flat for
// cache-friendly perpendicular scans and O(1) rollback.
type Board struct {
	cells [Size * Size]byte
	Box   Box
}

// New returns an all-empty board.
func New() *Board {
	b := &Board{}
	for i := range b.cells {
		b.cells[i] = alphabet.Empty
	}
	return b
}

func index(row, col int) int { return row*Size + col }

// InBounds reports whether (row, col) lies on the grid.
func InBounds(row, col int) bool {
	return row >= 0 && row < Size && col >= 0 && col < Size
}

// Get returns the letter code at (row, col), or alphabet.Empty if vacant.
// Out-of-bounds coordinates are treated as empty, matching the Rust
// original's "off-board is always empty" treatment of flanking checks.
func (b *Board) Get(row, col int) byte {
	if !InBounds(row, col) {
		return alphabet.Empty
	}
	return b.cells[index(row, col)]
}

// Set writes letter at (row, col). Callers are responsible for bounds
// checking; writes within Size are always safe.
func (b *Board) Set(row, col int, letter byte) {
	b.cells[index(row, col)] = letter
}

// Clear resets (row, col) to empty.
func (b *Board) Clear(row, col int) {
	b.cells[index(row, col)] = alphabet.Empty
}

// Clone returns a deep copy, used to give each parallel-dispatcher worker
// its own board derived from the initial state.
func (b *Board) Clone() *Board {
	out := &Board{Box: b.Box}
	out.cells = b.cells
	return out
}

// Widen grows the bounding box to include the given cell range, widening
// from an invalid (empty-board) box if necessary.
func (b *Board) Widen(minRow, maxRow, minCol, maxCol int) {
	if !b.Box.Valid {
		b.Box = Box{MinRow: minRow, MaxRow: maxRow, MinCol: minCol, MaxCol: maxCol, Valid: true}
		return
	}
	if minRow < b.Box.MinRow {
		b.Box.MinRow = minRow
	}
	if maxRow > b.Box.MaxRow {
		b.Box.MaxRow = maxRow
	}
	if minCol < b.Box.MinCol {
		b.Box.MinCol = minCol
	}
	if maxCol > b.Box.MaxCol {
		b.Box.MaxCol = maxCol
	}
}

// ToMatrix renders the board trimmed to its bounding box as a dense
// rectangular matrix of uppercase letters, with empty cells rendered as
// ASCII space.
func (b *Board) ToMatrix() [][]byte {
	if !b.Box.Valid {
		return nil
	}
	rows := b.Box.MaxRow - b.Box.MinRow + 1
	cols := b.Box.MaxCol - b.Box.MinCol + 1
	out := make([][]byte, rows)
	for r := 0; r < rows; r++ {
		row := make([]byte, cols)
		for c := 0; c < cols; c++ {
			v := b.Get(b.Box.MinRow+r, b.Box.MinCol+c)
			if v == alphabet.Empty {
				row[c] = ' '
			} else {
				row[c] = alphabet.Letter(v)
			}
		}
		out[r] = row
	}
	return out
}

// ToStrings renders ToMatrix as one string per row, purely for logging/CLI
// display.
func (b *Board) ToStrings() []string {
	m := b.ToMatrix()
	out := make([]string, len(m))
	for i, row := range m {
		out[i] = string(row)
	}
	return out
}

// LetterUsage reconciles the board's occupied cells within [minRow,maxRow]
// x [minCol,maxCol] against hand, mirroring the Rust original's
// check_letter_usage. It returns the remaining hand after debiting every
// occupied cell, and overused reports whether any letter was debited past
// zero (a bug in the caller, since Validate should have prevented this).
func (b *Board) LetterUsage(minRow, maxRow, minCol, maxCol int, hand alphabet.Hand) (remaining alphabet.Hand, overused bool) {
	remaining = hand
	for r := minRow; r <= maxRow; r++ {
		for c := minCol; c <= maxCol; c++ {
			v := b.Get(r, c)
			if v == alphabet.Empty {
				continue
			}
			if remaining[v] == 0 {
				return remaining, true
			}
			remaining[v]--
		}
	}
	return remaining, false
}
