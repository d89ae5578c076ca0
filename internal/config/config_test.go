package config

import (
	"testing"

	"github.com/willdavis/bananagrams/internal/solvererr"
)

// resetGlobal restores package-level state between tests, since Settings
// live in a process-wide singleton.
func resetGlobal(t *testing.T) {
	t.Helper()
	global.mu.Lock()
	global.settings = Settings{
		ExtraLettersAllowed: DefaultExtraLettersAllowed,
		MaxIterations:       DefaultMaxIterations,
		UseFullDictionary:   false,
	}
	global.version = 0
	global.mu.Unlock()
}

func TestGetReturnsDefaults(t *testing.T) {
	resetGlobal(t)
	s := Get()
	if s.ExtraLettersAllowed != DefaultExtraLettersAllowed {
		t.Errorf("ExtraLettersAllowed = %d, want %d", s.ExtraLettersAllowed, DefaultExtraLettersAllowed)
	}
	if s.MaxIterations != DefaultMaxIterations {
		t.Errorf("MaxIterations = %d, want %d", s.MaxIterations, DefaultMaxIterations)
	}
	if s.UseFullDictionary {
		t.Error("UseFullDictionary should default to false")
	}
}

func TestSetRejectsNegativeExtraLettersAllowed(t *testing.T) {
	resetGlobal(t)
	err := Set(Settings{ExtraLettersAllowed: -1, MaxIterations: 1000})
	se, ok := solvererr.As(err)
	if !ok || se.Kind != solvererr.InvalidConfiguration {
		t.Fatalf("Set(-1 extra) error = %v, want InvalidConfiguration", err)
	}
}

func TestSetRejectsOutOfRangeMaxIterations(t *testing.T) {
	resetGlobal(t)
	tests := []int64{-1, maxUint32 + 1}
	for _, mi := range tests {
		if _, ok := solvererr.As(Set(Settings{MaxIterations: mi})); !ok {
			t.Errorf("Set(MaxIterations=%d) should reject out-of-range value", mi)
		}
	}
}

func TestSetAcceptsValidSettingsAndPersists(t *testing.T) {
	resetGlobal(t)
	want := Settings{ExtraLettersAllowed: 5, MaxIterations: 1000, UseFullDictionary: true}
	if err := Set(want); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := Get(); got != want {
		t.Fatalf("Get() = %+v, want %+v", got, want)
	}
}

func TestVersionBumpsOnlyOnDictionaryChange(t *testing.T) {
	resetGlobal(t)
	before := Version()

	if err := Set(Settings{ExtraLettersAllowed: 3, MaxIterations: 1000, UseFullDictionary: false}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := Version(); got != before {
		t.Fatalf("Version changed from %d to %d after a non-dictionary setting change", before, got)
	}

	if err := Set(Settings{ExtraLettersAllowed: 3, MaxIterations: 1000, UseFullDictionary: true}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := Version(); got != before+1 {
		t.Fatalf("Version = %d after flipping UseFullDictionary, want %d", got, before+1)
	}

	// Flipping back also counts as a change.
	if err := Set(Settings{ExtraLettersAllowed: 3, MaxIterations: 1000, UseFullDictionary: false}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := Version(); got != before+2 {
		t.Fatalf("Version = %d after flipping UseFullDictionary back, want %d", got, before+2)
	}
}
