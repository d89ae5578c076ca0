package solver

import (
	"runtime"
	"sync"

	"github.com/willdavis/bananagrams/internal/alphabet"
	"github.com/willdavis/bananagrams/internal/board"
	"github.com/willdavis/bananagrams/internal/dictionary"
	"github.com/willdavis/bananagrams/internal/validator"
)

// Settings bundles the three solve-time knobs the dispatcher and the
// recursive search consult.
type Settings struct {
	ExtraLettersAllowed int
	MaxIterations       int64
	Workers             int
}

// Dispatch shards the root frame's candidate word list across one worker
// goroutine per logical CPU (or Settings.Workers if set), runs the
// recursive search in each, and returns the first winning board found. It
// returns nil if every worker exhausts its shard, or the iteration cap is
// reached first.
func Dispatch(hand alphabet.Hand, idx *dictionary.Index, s Settings) *board.Board {
	workers := s.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	rootWords := idx.Playable(hand, s.ExtraLettersAllowed)
	if len(rootWords) == 0 {
		return nil
	}
	if workers > len(rootWords) {
		workers = len(rootWords)
	}

	shared := &Shared{Cap: s.MaxIterations}
	shards := shardWords(rootWords, workers)

	var wg sync.WaitGroup
	for _, shard := range shards {
		shard := shard
		wg.Add(1)
		go func() {
			defer wg.Done()
			runShard(shard, hand, idx, s.ExtraLettersAllowed, shared)
		}()
	}
	wg.Wait()

	return shared.Winner
}

// runShard is the per-worker entry point: it owns a private board and
// hand copy and tries every root word in its shard, both orientations,
// via the shared iteration/found state.
func runShard(shard []*dictionary.Word, hand alphabet.Hand, idx *dictionary.Index, extra int, shared *Shared) {
	for _, w := range shard {
		if shared.Stopped() {
			return
		}
		for _, orient := range [2]validator.Orientation{validator.Horizontal, validator.Vertical} {
			if shared.Stopped() {
				return
			}
			b := board.New()
			row, col := centerPlacement(orient, len(w.Codes))
			if shared.tick() {
				return
			}
			p := validator.Placement{Codes: w.Codes, Row: row, Col: col, Orientation: orient}
			acc, err := validator.Validate(b, hand, p, idx)
			if err != nil {
				continue
			}
			newHand := hand.Minus(acc.Debited)
			validator.Apply(b, acc)
			if Search(b, newHand, 1, orient.Other(), idx, extra, shared) {
				shared.declareWinner(b)
				return
			}
		}
	}
}

// shardWords partitions words into n contiguous, roughly equal shards,
// preserving the longest-first, lexicographic-tie order so each worker's
// internal tie-breaks remain deterministic.
func shardWords(words []*dictionary.Word, n int) [][]*dictionary.Word {
	if n <= 0 {
		n = 1
	}
	shards := make([][]*dictionary.Word, 0, n)
	total := len(words)
	base := total / n
	rem := total % n
	idx := 0
	for i := 0; i < n && idx < total; i++ {
		size := base
		if i < rem {
			size++
		}
		if size == 0 {
			continue
		}
		shards = append(shards, words[idx:idx+size])
		idx += size
	}
	return shards
}
