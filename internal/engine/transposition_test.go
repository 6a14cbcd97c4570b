package engine

import (
	"testing"

	"github.com/nameless/chessplay/internal/board"
)

func TestStorePreservesBestMoveOnNullMoveOverwrite(t *testing.T) {
	tt := NewTranspositionTable(1)
	hash := uint64(0xABCD1234)
	move := board.NewMove(board.E2, board.E4, board.Pawn, board.White)

	tt.Store(hash, 4, 10, TTExact, move)

	// A later store for the same position with no move (e.g. a fail-low
	// node that never raised alpha) must not erase the known best move.
	tt.Store(hash, 4, -5, TTUpperBound, board.NoMove)

	if got := tt.BestMove(hash); got != move {
		t.Errorf("BestMove = %v, want the previously stored move %v", got, move)
	}
}

func TestStoreReplacesBestMoveWhenGivenANewOne(t *testing.T) {
	tt := NewTranspositionTable(1)
	hash := uint64(0xABCD1234)
	first := board.NewMove(board.E2, board.E4, board.Pawn, board.White)
	second := board.NewMove(board.D2, board.D4, board.Pawn, board.White)

	tt.Store(hash, 4, 10, TTExact, first)
	tt.Store(hash, 5, 15, TTExact, second)

	if got := tt.BestMove(hash); got != second {
		t.Errorf("BestMove = %v, want the latest stored move %v", got, second)
	}
}

func TestSnapshotReturnsOnlyPopulatedEntries(t *testing.T) {
	tt := NewTranspositionTable(1)
	if len(tt.Snapshot()) != 0 {
		t.Fatal("expected an empty snapshot for a fresh table")
	}

	move := board.NewMove(board.G1, board.F3, board.Knight, board.White)
	tt.Store(12345, 6, 42, TTExact, move)

	snap := tt.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("got %d entries, want 1", len(snap))
	}
	if snap[0].Hash != 12345 || snap[0].BestMove != move || snap[0].Depth != 6 || snap[0].Value != 42 {
		t.Errorf("unexpected snapshot entry: %+v", snap[0])
	}
}
