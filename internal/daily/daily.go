// Package daily derives a deterministic hand for the Daily Hand
// Challenge: every player gets the same tiles for a given calendar date.
package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"

	"github.com/willdavis/bananagrams/internal/alphabet"
)

// HandSize is the tile count dealt for the daily challenge: 18 tiles, a
// brisker single-player puzzle than a full four-player starting hand.
const HandSize = 18

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Hand deterministically deals HandSize tiles from the standard bag for
// date, seeded by HMAC(salt, YYYY-MM-DD) so every player sees the same
// tiles that day but the sequence is not guessable without salt.
func Hand(date time.Time, salt string) alphabet.Hand {
	dk := DateKey(date)
	seed := seedFor(dk, salt)

	bag := expandBag()
	shuffle(bag, seed)

	hand := alphabet.Hand{}
	for _, letter := range bag[:HandSize] {
		hand.Add(letter)
	}
	return hand
}

func seedFor(dateKey, salt string) uint64 {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(dateKey))
	sum := h.Sum(nil)
	return binary.BigEndian.Uint64(sum[:8])
}

// expandBag flattens the standard tile bag into one letter per tile, A
// first, in code order.
func expandBag() []byte {
	bag := make([]byte, 0, alphabet.TotalTiles)
	for letter := byte(0); letter < alphabet.NumLetters; letter++ {
		for i := uint16(0); i < alphabet.StandardTileBag[letter]; i++ {
			bag = append(bag, letter)
		}
	}
	return bag
}

// shuffle runs a seeded Fisher-Yates pass so the same seed always yields
// the same permutation, without reaching for math/rand's global state.
func shuffle(bag []byte, seed uint64) {
	rng := splitmix64{state: seed}
	for i := len(bag) - 1; i > 0; i-- {
		j := int(rng.next() % uint64(i+1))
		bag[i], bag[j] = bag[j], bag[i]
	}
}

// splitmix64 is a small deterministic PRNG, sufficient for shuffling a
// 144-element bag reproducibly from a 64-bit seed.
type splitmix64 struct{ state uint64 }

func (s *splitmix64) next() uint64 {
	s.state += 0x9E3779B97F4A7C15
	z := s.state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}
