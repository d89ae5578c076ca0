// Package validator checks a single proposed word placement against a
// board and a remaining hand, in the seven-step order the solver core
// relies on to short-circuit rejects as cheaply as possible: bounds,
// overlap coherence, hand sufficiency, flanking, perpendicular runs,
// parallel run, connectivity.
package validator

import (
	"fmt"

	"github.com/willdavis/bananagrams/internal/alphabet"
	"github.com/willdavis/bananagrams/internal/board"
	"github.com/willdavis/bananagrams/internal/dictionary"
)

// Orientation is the axis a word is placed along.
type Orientation int

const (
	Horizontal Orientation = iota
	Vertical
)

func (o Orientation) step() (dr, dc int) {
	if o == Vertical {
		return 1, 0
	}
	return 0, 1
}

func (o Orientation) Other() Orientation {
	if o == Horizontal {
		return Vertical
	}
	return Horizontal
}

// Placement is a candidate word, anchored at (Row, Col), laid out along
// Orientation.
type Placement struct {
	Codes       []byte
	Row, Col    int
	Orientation Orientation
}

// Cell is one board position written by an accepted placement.
type Cell struct {
	Row, Col int
	Letter   byte
}

// Accept is the outcome of a legal placement: the cells newly written
// (for rollback) and the letters debited from the hand.
type Accept struct {
	Written []Cell
	Debited alphabet.Hand
	Box     board.Box
}

// Reject explains why a placement was refused.
type Reject struct {
	Reason string
}

func (r *Reject) Error() string { return r.Reason }

func reject(format string, args ...interface{}) (*Accept, error) {
	return nil, &Reject{Reason: fmt.Sprintf(format, args...)}
}

// Validate runs the seven-step check described for the placement
// validator and, on success, returns the cells written and letters
// debited so the caller can apply then later roll back the move.
func Validate(b *board.Board, hand alphabet.Hand, p Placement, idx *dictionary.Index) (*Accept, error) {
	n := len(p.Codes)
	if n == 0 {
		return reject("empty placement")
	}
	dr, dc := p.Orientation.step()

	endRow := p.Row + dr*(n-1)
	endCol := p.Col + dc*(n-1)
	if !board.InBounds(p.Row, p.Col) || !board.InBounds(endRow, endCol) {
		return reject("placement out of bounds: (%d,%d)-(%d,%d)", p.Row, p.Col, endRow, endCol)
	}

	var written []Cell
	debited := alphabet.Hand{}
	row, col := p.Row, p.Col
	for k := 0; k < n; k++ {
		existing := b.Get(row, col)
		if existing == alphabet.Empty {
			written = append(written, Cell{Row: row, Col: col, Letter: p.Codes[k]})
			debited[p.Codes[k]]++
		} else if existing != p.Codes[k] {
			return reject("cell (%d,%d) holds %c, placement needs %c", row, col, alphabet.Letter(existing), alphabet.Letter(p.Codes[k]))
		}
		row += dr
		col += dc
	}

	for i := 0; i < alphabet.NumLetters; i++ {
		if debited[i] > hand[i] {
			return reject("letter %c: need %d, hand has %d", alphabet.Letter(byte(i)), debited[i], hand[i])
		}
	}

	beforeRow, beforeCol := p.Row-dr, p.Col-dc
	if b.Get(beforeRow, beforeCol) != alphabet.Empty {
		return reject("flanking cell before (%d,%d) is occupied", beforeRow, beforeCol)
	}
	afterRow, afterCol := endRow+dr, endCol+dc
	if b.Get(afterRow, afterCol) != alphabet.Empty {
		return reject("flanking cell after (%d,%d) is occupied", afterRow, afterCol)
	}

	perpOrient := p.Orientation.Other()
	for _, c := range written {
		if !hasPerpendicularNeighbour(b, c.Row, c.Col, perpOrient) {
			continue
		}
		run, runLen := perpendicularRun(b, c.Row, c.Col, c.Letter, perpOrient)
		if runLen <= 1 {
			continue
		}
		if !idx.ExistsCodes(run) {
			return reject("perpendicular run %q at (%d,%d) is not a word", codesToUpper(run), c.Row, c.Col)
		}
	}

	if !idx.ExistsCodes(p.Codes) {
		return reject("placed run %q is not a word", codesToUpper(p.Codes))
	}

	if b.Box.Valid {
		touches := false
		row, col = p.Row, p.Col
		for k := 0; k < n; k++ {
			if cellOccupiedBeforePlacement(b, row, col, written) {
				touches = true
				break
			}
			if neighboursOccupied(b, row, col, written) {
				touches = true
				break
			}
			row += dr
			col += dc
		}
		if !touches {
			return reject("placement does not touch the existing board")
		}
	}

	minRow, maxRow := p.Row, endRow
	minCol, maxCol := p.Col, endCol
	if minRow > maxRow {
		minRow, maxRow = maxRow, minRow
	}
	if minCol > maxCol {
		minCol, maxCol = maxCol, minCol
	}
	newBox := b.Box
	if !newBox.Valid {
		newBox = board.Box{MinRow: minRow, MaxRow: maxRow, MinCol: minCol, MaxCol: maxCol, Valid: true}
	} else {
		if minRow < newBox.MinRow {
			newBox.MinRow = minRow
		}
		if maxRow > newBox.MaxRow {
			newBox.MaxRow = maxRow
		}
		if minCol < newBox.MinCol {
			newBox.MinCol = minCol
		}
		if maxCol > newBox.MaxCol {
			newBox.MaxCol = maxCol
		}
	}

	return &Accept{Written: written, Debited: debited, Box: newBox}, nil
}

// cellOccupiedBeforePlacement reports whether (row, col) was already
// occupied prior to this placement - i.e. it's a re-use cell, not one of
// the newly written cells.
func cellOccupiedBeforePlacement(b *board.Board, row, col int, written []Cell) bool {
	for _, c := range written {
		if c.Row == row && c.Col == col {
			return false
		}
	}
	return b.Get(row, col) != alphabet.Empty
}

// neighboursOccupied reports whether any of the four neighbours of
// (row, col) were occupied before this placement wrote anything.
func neighboursOccupied(b *board.Board, row, col int, written []Cell) bool {
	for _, d := range [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
		nr, nc := row+d[0], col+d[1]
		if isWrittenCell(nr, nc, written) {
			continue
		}
		if b.Get(nr, nc) != alphabet.Empty {
			return true
		}
	}
	return false
}

func isWrittenCell(row, col int, written []Cell) bool {
	for _, c := range written {
		if c.Row == row && c.Col == col {
			return true
		}
	}
	return false
}

func hasPerpendicularNeighbour(b *board.Board, row, col int, perp Orientation) bool {
	dr, dc := perp.step()
	return b.Get(row-dr, col-dc) != alphabet.Empty || b.Get(row+dr, col+dc) != alphabet.Empty
}

// perpendicularRun expands from (row, col) along perp in both directions,
// treating the cell itself as letter (it may not be written to the board
// yet when this is called from Validate, since Validate checks before
// Apply), and returns the run's codes in axis order plus its length.
func perpendicularRun(b *board.Board, row, col int, letter byte, perp Orientation) ([]byte, int) {
	dr, dc := perp.step()
	startRow, startCol := row, col
	for b.Get(startRow-dr, startCol-dc) != alphabet.Empty {
		startRow -= dr
		startCol -= dc
	}
	var run []byte
	r, c := startRow, startCol
	for {
		if r == row && c == col {
			run = append(run, letter)
		} else {
			v := b.Get(r, c)
			if v == alphabet.Empty {
				break
			}
			run = append(run, v)
		}
		r += dr
		c += dc
	}
	return run, len(run)
}

func codesToUpper(codes []byte) string {
	b := make([]byte, len(codes))
	for i, c := range codes {
		b[i] = alphabet.Letter(c)
	}
	return string(b)
}

// Apply writes an Accept's cells to the board and widens its bounding
// box; it is the caller's job to have already validated via Validate.
func Apply(b *board.Board, acc *Accept) {
	for _, c := range acc.Written {
		b.Set(c.Row, c.Col, c.Letter)
	}
	b.Box = acc.Box
}

// Rollback undoes an Accept applied via Apply: clears the written cells
// and restores the prior bounding box exactly.
func Rollback(b *board.Board, acc *Accept, priorBox board.Box) {
	for _, c := range acc.Written {
		b.Clear(c.Row, c.Col)
	}
	b.Box = priorBox
}

// ValidateBoard checks a fully assembled board as a standalone claim,
// rather than one placement at a time: every horizontal and vertical run
// of two or more letters must be a dictionary word, and the occupied
// cells must account for hand exactly, with nothing left over and
// nothing borrowed beyond it. Used to check a client-submitted daily
// board rather than anything produced by the solver's own search.
func ValidateBoard(b *board.Board, hand alphabet.Hand, idx *dictionary.Index) error {
	if !b.Box.Valid {
		return fmt.Errorf("validator: empty board")
	}
	remaining, overused := b.LetterUsage(b.Box.MinRow, b.Box.MaxRow, b.Box.MinCol, b.Box.MaxCol, hand)
	if overused {
		return fmt.Errorf("validator: board uses more of a letter than the hand holds")
	}
	if remaining.Total() != 0 {
		return fmt.Errorf("validator: board leaves %d hand tile(s) unplaced", remaining.Total())
	}

	matrix := b.ToMatrix()
	if err := validateRuns(matrix, idx); err != nil {
		return err
	}
	return validateRuns(transpose(matrix), idx)
}

// validateRuns scans each row for maximal runs of non-space letters and
// rejects any run of length >= 2 that is not in idx.
func validateRuns(matrix [][]byte, idx *dictionary.Index) error {
	for _, row := range matrix {
		start := -1
		for col := 0; col <= len(row); col++ {
			occupied := col < len(row) && row[col] != ' '
			if occupied && start == -1 {
				start = col
				continue
			}
			if !occupied && start != -1 {
				if run := string(row[start:col]); len(run) >= 2 && !idx.Exists(run) {
					return fmt.Errorf("validator: %q is not a dictionary word", run)
				}
				start = -1
			}
		}
	}
	return nil
}

// transpose turns columns into rows so validateRuns can be reused for the
// perpendicular direction.
func transpose(matrix [][]byte) [][]byte {
	if len(matrix) == 0 {
		return nil
	}
	cols := len(matrix[0])
	out := make([][]byte, cols)
	for c := 0; c < cols; c++ {
		out[c] = make([]byte, len(matrix))
		for r := range matrix {
			out[c][r] = matrix[r][c]
		}
	}
	return out
}
