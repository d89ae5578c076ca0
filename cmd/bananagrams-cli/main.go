// Command bananagrams-cli runs the solver core offline against a hand
// given on the command line (or today's Daily Hand Challenge deal) and
// prints the resulting board in the terminal.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/vyevs/ansi"

	"github.com/willdavis/bananagrams/internal/alphabet"
	"github.com/willdavis/bananagrams/internal/board"
	"github.com/willdavis/bananagrams/internal/daily"
	"github.com/willdavis/bananagrams/internal/dictionary"
	"github.com/willdavis/bananagrams/internal/solver"
	"github.com/willdavis/bananagrams/internal/solvererr"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		letters  string
		useDaily bool
		useFull  bool
		extra    int
		workers  int
		maxIter  int64
	)
	flag.StringVar(&letters, "hand", "", "letters to solve, e.g. -hand=CATDOG")
	flag.BoolVar(&useDaily, "daily", false, "use today's Daily Hand Challenge deal instead of -hand")
	flag.BoolVar(&useFull, "full", false, "search the full dictionary instead of the short one")
	flag.IntVar(&extra, "extra", 2, "extra letters a word may borrow beyond the hand")
	flag.IntVar(&workers, "workers", 0, "worker goroutines (0 = runtime.NumCPU())")
	flag.Int64Var(&maxIter, "max-iterations", 2_000_000, "placement attempts before giving up")
	flag.Parse()

	dict, err := dictionary.LoadDefault()
	if err != nil {
		return fmt.Errorf("load dictionary: %w", err)
	}

	var hand alphabet.Hand
	if useDaily {
		now := time.Now().UTC()
		hand = daily.Hand(now, os.Getenv("DAILY_SALT"))
		fmt.Printf("daily hand for %s: %s\n", daily.DateKey(now), hand.String())
	} else {
		if letters == "" {
			return fmt.Errorf("provide -hand=LETTERS or -daily")
		}
		hand, err = parseLetters(letters)
		if err != nil {
			return err
		}
	}

	if hand.Total() < 2 {
		return solvererr.New(solvererr.TooFewLetters, "hand must hold at least 2 tiles")
	}
	if ok, letter, available, requested := alphabet.ValidateAgainstBag(hand); !ok {
		return solvererr.New(solvererr.LetterCountExceedsAvailable, alphabet.DescribeExceeded(letter, available, requested))
	}

	idx := dict.Select(useFull)
	settings := solver.Settings{ExtraLettersAllowed: extra, MaxIterations: maxIter, Workers: workers}

	start := time.Now()
	result := solver.Dispatch(hand, idx, settings)
	elapsed := time.Since(start)

	if result == nil {
		fmt.Println("no solution found within the iteration cap")
		return nil
	}

	fmt.Print(renderBoard(result))
	fmt.Printf("solved %d tiles in %s\n", hand.Total(), elapsed)
	return nil
}

// parseLetters turns a raw letter string into a Hand, rejecting any
// non-A-Z byte.
func parseLetters(s string) (alphabet.Hand, error) {
	var h alphabet.Hand
	up := strings.ToUpper(strings.TrimSpace(s))
	for i := 0; i < len(up); i++ {
		c := up[i]
		if c < 'A' || c > 'Z' {
			return alphabet.Hand{}, fmt.Errorf("invalid letter %q in hand", c)
		}
		h.Add(c - 'A')
	}
	return h, nil
}

// wordColors cycles the same nine-color palette vyevs-wordle's
// solution.String uses to tell adjacent solved words apart.
var wordColors = [9]string{"red", "light gray", "green", "yellow", "cyan", "orange", "pink", "purple", "chartreuse"}

// wordRuns finds every maximal run of length >= 2 on b, horizontal runs
// across a row before vertical runs down a column, mirroring
// internal/replay's run scan.
func wordRuns(b *board.Board) [][][2]int {
	if !b.Box.Valid {
		return nil
	}
	var runs [][][2]int
	for row := b.Box.MinRow; row <= b.Box.MaxRow; row++ {
		col := b.Box.MinCol
		for col <= b.Box.MaxCol {
			if b.Get(row, col) == alphabet.Empty || b.Get(row, col-1) != alphabet.Empty {
				col++
				continue
			}
			var cells [][2]int
			c := col
			for b.Get(row, c) != alphabet.Empty {
				cells = append(cells, [2]int{row, c})
				c++
			}
			if len(cells) >= 2 {
				runs = append(runs, cells)
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
			var cells [][2]int
			r := row
			for b.Get(r, col) != alphabet.Empty {
				cells = append(cells, [2]int{r, col})
				r++
			}
			if len(cells) >= 2 {
				runs = append(runs, cells)
			}
			row = r
		}
	}
	return runs
}

// renderBoard assigns each placed word its own color from wordColors,
// cycling the palette once every word has one, the same way
// vyevs-wordle's solution.String builds its cellToColor map. A cell shared
// by a crossing pair takes whichever word's color was assigned last.
func renderBoard(b *board.Board) string {
	runs := wordRuns(b)
	cellToColor := make(map[[2]int]string, len(runs))
	for i, cells := range runs {
		color := wordColors[i%len(wordColors)]
		for _, cell := range cells {
			cellToColor[cell] = color
		}
	}

	var sb strings.Builder
	for r, row := range b.ToStrings() {
		for c, ch := range []byte(row) {
			if ch == ' ' {
				sb.WriteByte(' ')
				continue
			}
			color, ok := cellToColor[[2]int{b.Box.MinRow + r, b.Box.MinCol + c}]
			if !ok {
				color = "green"
			}
			sb.WriteString(ansi.FGColorName(color))
			sb.WriteByte(ch)
		}
		sb.WriteString(ansi.Clear)
		sb.WriteByte('\n')
	}
	return sb.String()
}
