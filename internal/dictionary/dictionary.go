// Package dictionary loads the short/full word lists and answers the two
// filtered queries the solver needs: an existence predicate for run
// validation, and a length-sorted "playable" list for a given hand.
package dictionary

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/willdavis/bananagrams/assets"
)

// Dictionary bundles the two immutable word sets the solver needs: short and
// full. Membership and Playable calls are routed to whichever the caller's
// settings select (internal/config decides that at solve time).
type Dictionary struct {
	Short *Index
	Full  *Index
}

// Load builds a Dictionary from explicit short/full word lists. Both must
// be non-empty after filtering, or an error is returned.
func Load(shortWords, fullWords []string) (*Dictionary, error) {
	short := BuildIndex(shortWords)
	full := BuildIndex(fullWords)
	if short.Count() == 0 {
		return nil, fmt.Errorf("dictionary: short list empty after filtering")
	}
	if full.Count() == 0 {
		return nil, fmt.Errorf("dictionary: full list empty after filtering")
	}
	return &Dictionary{Short: short, Full: full}, nil
}

// LoadDefault builds a Dictionary the way the teacher's words.Init does:
// prefer WORDS_SHORT_FILE/WORDS_FULL_FILE env-provided files, falling back
// to the embedded defaults shipped in assets/ when unset.
func LoadDefault() (*Dictionary, error) {
	shortPath := os.Getenv("WORDS_SHORT_FILE")
	fullPath := os.Getenv("WORDS_FULL_FILE")

	shortWords, err := loadLines(shortPath, assets.ShortDictionary)
	if err != nil {
		return nil, fmt.Errorf("dictionary: load short list: %w", err)
	}
	fullWords, err := loadLines(fullPath, assets.FullDictionary)
	if err != nil {
		return nil, fmt.Errorf("dictionary: load full list: %w", err)
	}
	return Load(shortWords, fullWords)
}

// loadLines reads path if non-empty, otherwise splits the embedded
// fallback string, mirroring the teacher's three-way Init switch collapsed
// to a single list (this dictionary has no "answers vs allowed" split).
func loadLines(path, embedded string) ([]string, error) {
	if path == "" {
		return splitLines(embedded), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return ParseLines(sc), nil
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if t := strings.TrimSpace(line); t != "" && !strings.HasPrefix(t, "#") {
			out = append(out, t)
		}
	}
	return out
}

// Select returns the Full index when useFull is true, otherwise Short —
// the single point where the solver's use_full_dictionary setting takes
// effect.
func (d *Dictionary) Select(useFull bool) *Index {
	if useFull {
		return d.Full
	}
	return d.Short
}
