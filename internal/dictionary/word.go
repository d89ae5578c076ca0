package dictionary

import "github.com/willdavis/bananagrams/internal/alphabet"

// Word is a single dictionary entry: its uppercase text, its letter-code
// sequence, and its precomputed 26-slot count vector.
type Word struct {
	Text    string
	Codes   []byte
	Vector  alphabet.Hand
}

func newWord(text string) *Word {
	codes := alphabet.WordToCodes(text)
	return &Word{
		Text:   text,
		Codes:  codes,
		Vector: alphabet.WordVector(codes),
	}
}

func (w *Word) Len() int { return len(w.Codes) }
