// internal/store/memory.go
//
// In-memory implementation of the Store interface.
// This is a lightweight persistence layer used to remember the last
// solved board per caller, so a later /solve call with a superset hand
// can be replayed instead of cold-solved.
//
// Characteristics:
//   - Stores *Session objects keyed by ID in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.
//   - Errors are returned for missing session IDs on Get().

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/willdavis/bananagrams/internal/alphabet"
	"github.com/willdavis/bananagrams/internal/board"
)

// ErrNotFound is returned by Get when no session exists for the given ID.
var ErrNotFound = errors.New("store: session not found")

// Session is the previously solved state for one caller: the board they
// last received and the hand that produced it, so the next /solve call
// can attempt an incremental replay if the new hand is a superset.
type Session struct {
	ID        string
	Board     *board.Board
	Hand      alphabet.Hand
	UpdatedAt time.Time
}

// Store defines the persistence interface for solve sessions.
// Implementations may be backed by memory (this package), Redis, SQL, etc.
type Store interface {
	// Save persists or updates a session's board and hand.
	Save(ctx context.Context, s *Session) error

	// Get retrieves a session by ID. Returns ErrNotFound if missing.
	Get(ctx context.Context, id string) (*Session, error)

	// Clear removes a session's recorded board, forcing the next solve to
	// be cold.
	Clear(ctx context.Context, id string) error
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]*Session)}
}

// Save adds or updates the session in the map.
func (m *memory) Save(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.UpdatedAt = time.Now()
	m.sessions[s.ID] = s
	return nil
}

// Get looks up a session by ID.
func (m *memory) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, ErrNotFound
}

// Clear removes a session, if any.
func (m *memory) Clear(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}
