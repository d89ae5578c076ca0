package solver

import (
	"github.com/willdavis/bananagrams/internal/alphabet"
	"github.com/willdavis/bananagrams/internal/board"
	"github.com/willdavis/bananagrams/internal/dictionary"
)

// SingleWord attempts the trivial solve: a single dictionary word whose
// letter multiset equals hand exactly, placed horizontally at the board
// centre. Used as a cheap seed before the recursive search runs.
func SingleWord(hand alphabet.Hand, idx *dictionary.Index) *board.Board {
	candidates := idx.Playable(hand, 0)
	for _, w := range candidates {
		if w.Vector != hand {
			continue
		}
		b := board.New()
		row := board.Size / 2
		col := board.Size/2 - len(w.Codes)/2
		for i, c := range w.Codes {
			b.Set(row, col+i, c)
		}
		b.Widen(row, row, col, col+len(w.Codes)-1)
		return b
	}
	return nil
}
