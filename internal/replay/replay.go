// Package replay implements the incremental replayer: given a previously
// solved board and a hand that grew since, try to extend the existing
// board before falling back to a cold solve.
package replay

import (
	"sort"

	"github.com/willdavis/bananagrams/internal/alphabet"
	"github.com/willdavis/bananagrams/internal/board"
	"github.com/willdavis/bananagrams/internal/dictionary"
	"github.com/willdavis/bananagrams/internal/solver"
	"github.com/willdavis/bananagrams/internal/validator"
)

// Result reports which strategy produced the returned board, mainly for
// logging and tests.
type Result struct {
	Board    *board.Board
	Strategy string
}

const (
	strategySingleLetter = "single_letter_extension"
	strategyWordReplay   = "word_replay"
	strategyColdSolve    = "cold_solve"
)

// Replay extends prevBoard to account for newHand, which must be an
// elementwise superset of prevHand. It tries, in order: a single-letter
// extension if exactly one tile was added, a word-level replay using the
// delta hand, then word-removal-and-retry, and finally a cold solve with
// newHand on an empty board.
func Replay(prevBoard *board.Board, prevHand, newHand alphabet.Hand, idx *dictionary.Index, s solver.Settings) Result {
	delta := newHand.Minus(prevHand)

	if delta.Total() == 1 {
		if b := trySingleLetterExtension(prevBoard, delta, idx); b != nil {
			return Result{Board: b, Strategy: strategySingleLetter}
		}
	}

	if b := tryWordReplay(prevBoard, delta, idx, s); b != nil {
		return Result{Board: b, Strategy: strategyWordReplay}
	}

	if b := tryWordRemovalRetry(prevBoard, delta, idx, s); b != nil {
		return Result{Board: b, Strategy: strategyWordReplay}
	}

	b := solver.Dispatch(newHand, idx, s)
	return Result{Board: b, Strategy: strategyColdSolve}
}

// trySingleLetterExtension tries the one added letter at every empty cell
// adjacent to an occupied cell, row-major, accepting the first cell where
// it completes a valid run in both axes.
func trySingleLetterExtension(prevBoard *board.Board, delta alphabet.Hand, idx *dictionary.Index) *board.Board {
	letter := singleLetter(delta)
	if letter == alphabet.Empty {
		return nil
	}
	if !prevBoard.Box.Valid {
		return nil
	}
	minRow, maxRow := prevBoard.Box.MinRow-1, prevBoard.Box.MaxRow+1
	minCol, maxCol := prevBoard.Box.MinCol-1, prevBoard.Box.MaxCol+1

	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			if !board.InBounds(row, col) || prevBoard.Get(row, col) != alphabet.Empty {
				continue
			}
			if !hasOccupiedNeighbour(prevBoard, row, col) {
				continue
			}
			candidate := prevBoard.Clone()
			candidate.Set(row, col, letter)
			if runsValidAt(candidate, row, col, idx) {
				candidate.Widen(row, row, col, col)
				return candidate
			}
		}
	}
	return nil
}

func singleLetter(delta alphabet.Hand) byte {
	for i := 0; i < alphabet.NumLetters; i++ {
		if delta[i] == 1 {
			return byte(i)
		}
	}
	return alphabet.Empty
}

func hasOccupiedNeighbour(b *board.Board, row, col int) bool {
	for _, d := range [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
		if b.Get(row+d[0], col+d[1]) != alphabet.Empty {
			return true
		}
	}
	return false
}

// runsValidAt checks that the horizontal and vertical runs through
// (row, col) are each either length 1 or a dictionary word.
func runsValidAt(b *board.Board, row, col int, idx *dictionary.Index) bool {
	return runValid(b, row, col, validator.Horizontal, idx) && runValid(b, row, col, validator.Vertical, idx)
}

func runValid(b *board.Board, row, col int, orient validator.Orientation, idx *dictionary.Index) bool {
	dr, dc := 0, 1
	if orient == validator.Vertical {
		dr, dc = 1, 0
	}
	startRow, startCol := row, col
	for b.Get(startRow-dr, startCol-dc) != alphabet.Empty {
		startRow -= dr
		startCol -= dc
	}
	var run []byte
	r, c := startRow, startCol
	for b.Get(r, c) != alphabet.Empty {
		run = append(run, b.Get(r, c))
		r += dr
		c += dc
	}
	if len(run) <= 1 {
		return true
	}
	return idx.ExistsCodes(run)
}

// tryWordReplay attempts to extend prevBoard using only words buildable
// from delta plus up to Settings.ExtraLettersAllowed board letters,
// reusing the recursive search seeded with the existing board.
func tryWordReplay(prevBoard *board.Board, delta alphabet.Hand, idx *dictionary.Index, s solver.Settings) *board.Board {
	if delta.Total() == 0 {
		return nil
	}
	candidate := prevBoard.Clone()
	shared := &solver.Shared{Cap: s.MaxIterations}
	if solver.Search(candidate, delta, 1, validator.Horizontal, idx, s.ExtraLettersAllowed, shared) {
		return candidate
	}
	return nil
}

// tryWordRemovalRetry removes one previously placed run at a time (in
// row-major order of each run's starting cell) and retries a full replay
// with the freed letters folded back into the hand. Only cells unique to
// the removed run are freed: a cell that also belongs to a still-standing
// perpendicular run is left in place, since clearing it would corrupt that
// crossing word into an invalid fragment.
func tryWordRemovalRetry(prevBoard *board.Board, delta alphabet.Hand, idx *dictionary.Index, s solver.Settings) *board.Board {
	runs := horizontalAndVerticalRuns(prevBoard)
	for _, run := range runs {
		reduced := prevBoard.Clone()
		freed := alphabet.Hand{}
		for _, c := range run.cells {
			if hasPerpendicularNeighbour(prevBoard, c.row, c.col, run.orientation) {
				continue
			}
			freed[reduced.Get(c.row, c.col)]++
			reduced.Clear(c.row, c.col)
		}
		if freed.Total() == 0 {
			continue
		}
		recomputeBox(reduced)
		remaining := delta.Plus(freed)
		shared := &solver.Shared{Cap: s.MaxIterations}
		if solver.Search(reduced, remaining, 1, validator.Horizontal, idx, s.ExtraLettersAllowed, shared) {
			return reduced
		}
	}
	return nil
}

// hasPerpendicularNeighbour reports whether (row, col) has an occupied
// neighbour along the axis perpendicular to orient, which would make it
// part of a crossing run distinct from the one being removed.
func hasPerpendicularNeighbour(b *board.Board, row, col int, orient validator.Orientation) bool {
	dr, dc := 1, 0
	if orient == validator.Vertical {
		dr, dc = 0, 1
	}
	return b.Get(row-dr, col-dc) != alphabet.Empty || b.Get(row+dr, col+dc) != alphabet.Empty
}

type cell struct{ row, col int }

type run struct {
	cells       []cell
	orientation validator.Orientation
}

// horizontalAndVerticalRuns enumerates every maximal run of length >= 2 on
// the board, in row-major order of each run's starting cell, horizontal
// runs before vertical runs at the same start.
func horizontalAndVerticalRuns(b *board.Board) []run {
	if !b.Box.Valid {
		return nil
	}
	var runs []run
	for row := b.Box.MinRow; row <= b.Box.MaxRow; row++ {
		col := b.Box.MinCol
		for col <= b.Box.MaxCol {
			if b.Get(row, col) == alphabet.Empty || b.Get(row, col-1) != alphabet.Empty {
				col++
				continue
			}
			var cells []cell
			c := col
			for b.Get(row, c) != alphabet.Empty {
				cells = append(cells, cell{row, c})
				c++
			}
			if len(cells) >= 2 {
				runs = append(runs, run{cells: cells, orientation: validator.Horizontal})
			}
			col = c
		}
	}
	for col := b.Box.MinCol; col <= b.Box.MaxCol; col++ {
		row := b.Box.MinRow
		for row <= b.Box.MaxRow {
			if b.Get(row, col) == alphabet.Empty || b.Get(row-1, col) != alphabet.Empty {
				row++
				continue
			}
			var cells []cell
			r := row
			for b.Get(r, col) != alphabet.Empty {
				cells = append(cells, cell{r, col})
				r++
			}
			if len(cells) >= 2 {
				runs = append(runs, run{cells: cells, orientation: validator.Vertical})
			}
			row = r
		}
	}
	// Stable, so a horizontal run keeps its place ahead of a vertical run
	// that starts on the same cell.
	sort.SliceStable(runs, func(i, j int) bool {
		p, q := runs[i].cells[0], runs[j].cells[0]
		if p.row != q.row {
			return p.row < q.row
		}
		return p.col < q.col
	})
	return runs
}

// recomputeBox rebuilds b.Box from scratch by scanning every cell;
// cheap enough since it only runs once per removal candidate in a replay,
// not inside the hot search loop.
func recomputeBox(b *board.Board) {
	valid := false
	minRow, maxRow, minCol, maxCol := 0, 0, 0, 0
	for row := 0; row < board.Size; row++ {
		for col := 0; col < board.Size; col++ {
			if b.Get(row, col) == alphabet.Empty {
				continue
			}
			if !valid {
				minRow, maxRow, minCol, maxCol = row, row, col, col
				valid = true
				continue
			}
			if row < minRow {
				minRow = row
			}
			if row > maxRow {
				maxRow = row
			}
			if col < minCol {
				minCol = col
			}
			if col > maxCol {
				maxCol = col
			}
		}
	}
	if !valid {
		b.Box = board.Box{}
		return
	}
	b.Box = board.Box{MinRow: minRow, MaxRow: maxRow, MinCol: minCol, MaxCol: maxCol, Valid: true}
}
