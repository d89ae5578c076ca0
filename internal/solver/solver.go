// Package solver implements the depth-first backtracking search and the
// parallel dispatcher that shards the root frame across worker
// goroutines.
package solver

import (
	"sync"
	"sync/atomic"

	"github.com/willdavis/bananagrams/internal/alphabet"
	"github.com/willdavis/bananagrams/internal/board"
	"github.com/willdavis/bananagrams/internal/dictionary"
	"github.com/willdavis/bananagrams/internal/validator"
)

// Shared is the mutable state every worker of one solve call polls and
// updates: a found flag, a global iteration counter, and the single slot
// the winner is written to.
type Shared struct {
	Found      atomic.Bool
	Iterations atomic.Int64
	Cap        int64

	mu     sync.Mutex
	Winner *board.Board
}

// Stopped reports whether the search should abandon this branch: either
// another worker already found a solution, or the iteration cap was hit.
func (s *Shared) Stopped() bool {
	return s.Found.Load() || s.Iterations.Load() >= s.Cap
}

func (s *Shared) tick() bool {
	n := s.Iterations.Add(1)
	return n > s.Cap
}

func (s *Shared) declareWinner(b *board.Board) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Winner == nil {
		s.Winner = b
	}
	s.Found.Store(true)
}

// Search runs the recursive descent from (b, hand) at the given depth
// and preferred orientation, mutating b in place and rolling every
// rejected or abandoned branch back exactly. It returns true once hand is
// fully placed, leaving b as the solution.
func Search(b *board.Board, hand alphabet.Hand, depth int, prefer validator.Orientation, idx *dictionary.Index, extraAllowed int, shared *Shared) bool {
	if hand.Total() == 0 {
		return true
	}
	if shared.Stopped() {
		return false
	}

	words := idx.Playable(hand, extraAllowed)
	root := !b.Box.Valid

	for _, w := range words {
		if shared.Stopped() {
			return false
		}
		for _, orient := range [2]validator.Orientation{prefer, prefer.Other()} {
			var rows, cols []int
			if root {
				r, c := centerPlacement(orient, len(w.Codes))
				rows, cols = []int{r}, []int{c}
			} else {
				rows, cols = candidateRange(b, orient, len(w.Codes))
			}
			for _, row := range rows {
				for _, col := range cols {
					if shared.tick() {
						return false
					}
					p := validator.Placement{Codes: w.Codes, Row: row, Col: col, Orientation: orient}
					acc, err := validator.Validate(b, hand, p, idx)
					if err != nil {
						continue
					}
					priorBox := b.Box
					newHand := hand.Minus(acc.Debited)
					validator.Apply(b, acc)
					if Search(b, newHand, depth+1, orient.Other(), idx, extraAllowed, shared) {
						return true
					}
					validator.Rollback(b, acc, priorBox)
				}
			}
		}
	}
	return false
}

func centerPlacement(orient validator.Orientation, wordLen int) (row, col int) {
	center := board.Size / 2
	if orient == validator.Vertical {
		return center - wordLen/2, center
	}
	return center, center - wordLen/2
}

// candidateRange returns the row-major sweep of anchor positions Search tries
// for a word of wordLen, given the board's current bounding box.
func candidateRange(b *board.Board, orient validator.Orientation, wordLen int) (rows, cols []int) {
	minRow, maxRow := b.Box.MinRow-wordLen, b.Box.MaxRow+wordLen
	minCol, maxCol := b.Box.MinCol-wordLen, b.Box.MaxCol+wordLen
	if minRow < 0 {
		minRow = 0
	}
	if maxRow > board.Size-1 {
		maxRow = board.Size - 1
	}
	if minCol < 0 {
		minCol = 0
	}
	if maxCol > board.Size-1 {
		maxCol = board.Size - 1
	}
	for r := minRow; r <= maxRow; r++ {
		rows = append(rows, r)
	}
	for c := minCol; c <= maxCol; c++ {
		cols = append(cols, c)
	}
	_ = orient
	return rows, cols
}
