package nnue

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/nameless/chessplay/internal/board"
)

func TestClampedReLU(t *testing.T) {
	cases := []struct {
		in   int16
		want uint8
	}{
		{-100, 0},
		{0, 0},
		{128, 128},
		{255, 255},
		{300, 255},
	}
	for _, c := range cases {
		if got := ClampedReLU(c.in); got != c.want {
			t.Errorf("ClampedReLU(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestHalfKPIndexRange(t *testing.T) {
	pos := board.NewPosition()
	white, black := GetActiveFeatures(pos)

	if len(white) == 0 || len(black) == 0 {
		t.Fatal("expected active features for the starting position")
	}
	for _, idx := range white {
		if idx < 0 || idx >= HalfKPSize {
			t.Errorf("white feature index %d out of range [0,%d)", idx, HalfKPSize)
		}
	}
	for _, idx := range black {
		if idx < 0 || idx >= HalfKPSize {
			t.Errorf("black feature index %d out of range [0,%d)", idx, HalfKPSize)
		}
	}
}

func TestAccumulatorIncrementalMatchesFullRecompute(t *testing.T) {
	net := NewNetwork()
	net.InitRandom(7)

	pos := board.NewPosition()
	move := board.NewMove(board.E2, board.E4, board.Pawn, board.White)

	var full Accumulator
	full.ComputeFull(pos, net)

	pos.DoMove(move)

	var incremental Accumulator
	incremental.ComputeFull(board.NewPosition(), net)
	incremental.UpdateIncremental(pos, move, board.NoPiece, net)

	var recomputed Accumulator
	recomputed.ComputeFull(pos, net)

	for i := 0; i < HiddenSize; i++ {
		if incremental.White[i] != recomputed.White[i] {
			t.Fatalf("white[%d]: incremental=%d full=%d", i, incremental.White[i], recomputed.White[i])
		}
		if incremental.Black[i] != recomputed.Black[i] {
			t.Fatalf("black[%d]: incremental=%d full=%d", i, incremental.Black[i], recomputed.Black[i])
		}
	}
}

func TestNetworkForwardIsFinite(t *testing.T) {
	net := NewNetwork()
	net.InitRandom(42)

	pos := board.NewPosition()
	var acc Accumulator
	acc.ComputeFull(pos, net)

	score := net.Forward(&acc, board.White)
	if score < -1_000_000 || score > 1_000_000 {
		t.Errorf("Forward returned an implausible score: %d", score)
	}
}

func TestLoadWeightsRoundTrip(t *testing.T) {
	net := NewNetwork()
	net.InitRandom(99)

	var buf bytes.Buffer
	dims := [3]uint32{HalfKPSize, HiddenSize, OutputSize}
	if err := binary.Write(&buf, binary.LittleEndian, &dims); err != nil {
		t.Fatalf("write dims: %v", err)
	}
	for i := 0; i < HalfKPSize; i++ {
		if err := binary.Write(&buf, binary.LittleEndian, &net.L1Weights[i]); err != nil {
			t.Fatalf("write L1 weights: %v", err)
		}
	}
	if err := binary.Write(&buf, binary.LittleEndian, &net.L1Bias); err != nil {
		t.Fatalf("write L1 bias: %v", err)
	}
	if err := binary.Write(&buf, binary.LittleEndian, &net.OutputWeights); err != nil {
		t.Fatalf("write output weights: %v", err)
	}
	if err := binary.Write(&buf, binary.LittleEndian, &net.OutputBias); err != nil {
		t.Fatalf("write output bias: %v", err)
	}

	loaded := NewNetwork()
	if err := loaded.LoadWeightsFromReader(&buf); err != nil {
		t.Fatalf("LoadWeightsFromReader failed: %v", err)
	}

	if loaded.OutputBias != net.OutputBias {
		t.Errorf("output bias mismatch: got %d, want %d", loaded.OutputBias, net.OutputBias)
	}
	if loaded.L1Bias != net.L1Bias {
		t.Error("L1 bias mismatch after round trip")
	}
	if loaded.OutputWeights != net.OutputWeights {
		t.Error("output weights mismatch after round trip")
	}
}

func TestLoadWeightsRejectsDimensionMismatch(t *testing.T) {
	var buf bytes.Buffer
	dims := [3]uint32{HalfKPSize, HiddenSize + 1, OutputSize}
	binary.Write(&buf, binary.LittleEndian, &dims)

	net := NewNetwork()
	if err := net.LoadWeightsFromReader(&buf); err == nil {
		t.Error("expected an error for a mismatched hidden layer size")
	}
}

func TestEvaluatorEvaluateRunsOnStartingPosition(t *testing.T) {
	ev, err := NewEvaluator("")
	if err != nil {
		t.Fatalf("NewEvaluator failed: %v", err)
	}

	pos := board.NewPosition()
	score := ev.Evaluate(pos)
	if score < -1_000_000 || score > 1_000_000 {
		t.Errorf("Evaluate returned an implausible score: %d", score)
	}
}
