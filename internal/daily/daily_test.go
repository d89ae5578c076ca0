package daily

import (
	"testing"
	"time"

	"github.com/willdavis/bananagrams/internal/alphabet"
)

func TestHandIsDeterministicForSameDateAndSalt(t *testing.T) {
	d := time.Date(2026, 8, 2, 15, 4, 5, 0, time.UTC)
	a := Hand(d, "salt")
	b := Hand(d, "salt")
	if a != b {
		t.Fatalf("Hand should be deterministic: %v != %v", a, b)
	}
}

func TestHandDiffersAcrossDates(t *testing.T) {
	d1 := time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	if Hand(d1, "salt") == Hand(d2, "salt") {
		t.Fatal("consecutive days should not deal the same hand")
	}
}

func TestHandDiffersAcrossSalts(t *testing.T) {
	d := time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC)
	if Hand(d, "salt-a") == Hand(d, "salt-b") {
		t.Fatal("different salts should not deal the same hand")
	}
}

func TestHandIgnoresTimeOfDay(t *testing.T) {
	morning := time.Date(2026, 8, 2, 1, 0, 0, 0, time.UTC)
	night := time.Date(2026, 8, 2, 23, 59, 59, 0, time.UTC)
	if Hand(morning, "salt") != Hand(night, "salt") {
		t.Fatal("Hand should key off the calendar date only, not the time of day")
	}
}

func TestHandTotalIsHandSize(t *testing.T) {
	d := time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC)
	h := Hand(d, "salt")
	if got := h.Total(); got != HandSize {
		t.Fatalf("Hand total = %d, want %d", got, HandSize)
	}
}

func TestHandNeverExceedsStandardBag(t *testing.T) {
	d := time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC)
	h := Hand(d, "salt")
	for i := 0; i < alphabet.NumLetters; i++ {
		if h[i] > alphabet.StandardTileBag[i] {
			t.Fatalf("letter %d: dealt %d, only %d in the bag", i, h[i], alphabet.StandardTileBag[i])
		}
	}
}

func TestDateKeyFormat(t *testing.T) {
	d := time.Date(2026, 8, 2, 12, 0, 0, 0, time.UTC)
	if got := DateKey(d); got != "2026-08-02" {
		t.Fatalf("DateKey = %q, want 2026-08-02", got)
	}
}
