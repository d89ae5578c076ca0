// Package config holds the process-wide solver settings: how many board
// letters a playable word may borrow, the iteration cap, and which
// dictionary to search. Settings live for the process and are guarded by
// a mutex since the HTTP layer may read or write them from any handler
// goroutine.
package config

import (
	"sync"

	"github.com/willdavis/bananagrams/internal/solvererr"
)

const (
	DefaultExtraLettersAllowed = 2
	DefaultMaxIterations       = 2_000_000
	maxUint32                  = 1<<32 - 1
)

// Settings is the process-wide solver configuration.
type Settings struct {
	ExtraLettersAllowed int   `json:"extraLettersAllowed"`
	MaxIterations       int64 `json:"maxIterations"`
	UseFullDictionary   bool  `json:"useFullDictionary"`
}

type store struct {
	mu       sync.RWMutex
	settings Settings
	// version increments on every dictionary-affecting change.
	version uint64
}

var global = &store{
	settings: Settings{
		ExtraLettersAllowed: DefaultExtraLettersAllowed,
		MaxIterations:       DefaultMaxIterations,
		UseFullDictionary:   false,
	},
}

// Get returns a copy of the current settings.
func Get() Settings {
	global.mu.RLock()
	defer global.mu.RUnlock()
	return global.settings
}

// Set validates and installs new settings. Switching UseFullDictionary
// bumps the version counter reported by Version. No field triggers a
// rebuild: both dictionary indexes are built at load time, and every
// change takes effect on the next solve.
func Set(s Settings) error {
	if s.ExtraLettersAllowed < 0 {
		return solvererr.New(solvererr.InvalidConfiguration, "extra_letters_allowed must be >= 0")
	}
	if s.MaxIterations < 0 || s.MaxIterations > maxUint32 {
		return solvererr.New(solvererr.InvalidConfiguration, "max_iterations out of range")
	}

	global.mu.Lock()
	defer global.mu.Unlock()
	if s.UseFullDictionary != global.settings.UseFullDictionary {
		global.version++
	}
	global.settings = s
	return nil
}

// Version returns the current dictionary-selection generation: the number
// of times Set has switched UseFullDictionary.
func Version() uint64 {
	global.mu.RLock()
	defer global.mu.RUnlock()
	return global.version
}
