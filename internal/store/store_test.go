package store

import (
	"os"
	"testing"

	"github.com/nameless/chessplay/internal/board"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir, err := os.MkdirTemp("", "chessplay-store-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGetRoundTrip(t *testing.T) {
	s := openTestStore(t)

	move := board.NewMove(board.E2, board.E4, board.Pawn, board.White)
	entry := Entry{Move: move, Score: 35, Depth: 12}

	if err := s.Put(1234, entry); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, ok := s.Get(1234)
	if !ok {
		t.Fatal("expected entry to be found")
	}
	if got.Move != move || got.Score != 35 || got.Depth != 12 {
		t.Errorf("got %+v, want %+v", got, entry)
	}
}

func TestGetMissing(t *testing.T) {
	s := openTestStore(t)

	if _, ok := s.Get(9999); ok {
		t.Error("expected no entry for unseeded hash")
	}
}

func TestPutDoesNotShallowOverwrite(t *testing.T) {
	s := openTestStore(t)

	deep := Entry{Move: board.NewMove(board.D2, board.D4, board.Pawn, board.White), Score: 20, Depth: 18}
	shallow := Entry{Move: board.NewMove(board.G1, board.F3, board.Knight, board.White), Score: -10, Depth: 4}

	if err := s.Put(42, deep); err != nil {
		t.Fatalf("Put deep failed: %v", err)
	}
	if err := s.Put(42, shallow); err != nil {
		t.Fatalf("Put shallow failed: %v", err)
	}

	got, ok := s.Get(42)
	if !ok {
		t.Fatal("expected entry to remain")
	}
	if got.Depth != deep.Depth || got.Move != deep.Move {
		t.Errorf("shallower entry overwrote deeper one: got %+v", got)
	}
}

func TestAll(t *testing.T) {
	s := openTestStore(t)

	entries := map[uint64]Entry{
		1: {Move: board.NewMove(board.E2, board.E4, board.Pawn, board.White), Score: 10, Depth: 5, Type: 0},
		2: {Move: board.NewMove(board.E7, board.E5, board.Pawn, board.Black), Score: -10, Depth: 5, Type: 1},
	}
	for hash, entry := range entries {
		if err := s.Put(hash, entry); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	got, err := s.All(0)
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(got) != len(entries) {
		t.Fatalf("got %d entries, want %d", len(got), len(entries))
	}
	for hash, want := range entries {
		entry, ok := got[hash]
		if !ok {
			t.Fatalf("missing entry for hash %d", hash)
		}
		if entry.Move != want.Move || entry.Type != want.Type {
			t.Errorf("hash %d: got %+v, want %+v", hash, entry, want)
		}
	}
}

func TestAllRespectsLimit(t *testing.T) {
	s := openTestStore(t)

	for i := uint64(1); i <= 5; i++ {
		if err := s.Put(i, Entry{Move: board.NewMove(board.E2, board.E4, board.Pawn, board.White), Score: 0, Depth: 1}); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	got, err := s.All(3)
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("got %d entries, want 3", len(got))
	}
}
