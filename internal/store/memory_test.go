package store

import (
	"context"
	"errors"
	"testing"

	"github.com/willdavis/bananagrams/internal/alphabet"
	"github.com/willdavis/bananagrams/internal/board"
)

func TestMemoryStoreSaveAndGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	hand, _ := alphabet.ParseHand(map[string]int{"C": 1, "A": 1, "T": 1})
	sess := &Session{ID: "u:1", Board: board.New(), Hand: hand}

	if err := s.Save(ctx, sess); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Get(ctx, "u:1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Hand != hand {
		t.Fatalf("Get returned hand %v, want %v", got.Hand, hand)
	}
	if got.UpdatedAt.IsZero() {
		t.Fatal("Save should stamp UpdatedAt")
	}
}

func TestMemoryStoreGetMissingReturnsErrNotFound(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.Get(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreClear(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	sess := &Session{ID: "u:1", Board: board.New()}
	if err := s.Save(ctx, sess); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Clear(ctx, "u:1"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := s.Get(ctx, "u:1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after Clear error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreClearMissingIsNoop(t *testing.T) {
	s := NewMemoryStore()
	if err := s.Clear(context.Background(), "never-existed"); err != nil {
		t.Fatalf("Clear on missing session should not error, got %v", err)
	}
}

func TestMemoryStoreOverwritesExistingSession(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	handA, _ := alphabet.ParseHand(map[string]int{"A": 2})
	handB, _ := alphabet.ParseHand(map[string]int{"B": 2})

	if err := s.Save(ctx, &Session{ID: "u:1", Board: board.New(), Hand: handA}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Save(ctx, &Session{ID: "u:1", Board: board.New(), Hand: handB}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Get(ctx, "u:1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Hand != handB {
		t.Fatalf("Get after overwrite = %v, want %v", got.Hand, handB)
	}
}
