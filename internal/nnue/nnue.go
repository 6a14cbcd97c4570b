// Package nnue implements NNUE (Efficiently Updatable Neural Network) evaluation.
package nnue

import "github.com/nameless/chessplay/internal/board"

// Network architecture constants. A single hidden layer, HalfKP input
// features (own king square x piece-type x color x piece square, pawn
// through queen), output scaled directly to centipawns.
const (
	NumKingSquares  = 64
	NumPieceTypes   = 10 // P, N, B, R, Q for both colors (excluding kings)
	NumPieceSquares = 64

	HalfKPSize = NumKingSquares * NumPieceTypes * NumPieceSquares // 40960

	HiddenSize = 128
	OutputSize = 1

	reluMin = 0
	reluMax = 255

	outputScale = 400
)

// ClampedReLU clamps an accumulated hidden value to [0, 255] for the
// quantized forward pass.
func ClampedReLU(x int16) uint8 {
	if x < reluMin {
		return reluMin
	}
	if x > reluMax {
		return reluMax
	}
	return uint8(x)
}

// Evaluator is the main NNUE evaluator interface.
type Evaluator struct {
	net   *Network
	stack *AccumulatorStack
}

// NewEvaluator creates a new NNUE evaluator.
// If weightsFile is empty, uses random weights for testing.
func NewEvaluator(weightsFile string) (*Evaluator, error) {
	net := NewNetwork()

	if weightsFile != "" {
		if err := net.LoadWeights(weightsFile); err != nil {
			return nil, err
		}
	} else {
		net.InitRandom(12345) // For testing only
	}

	return &Evaluator{
		net:   net,
		stack: NewAccumulatorStack(),
	}, nil
}

// Evaluate returns NNUE evaluation for the position, recomputing the
// current accumulator from pos on every call.
// Returns score in centipawns from side to move's perspective.
func (e *Evaluator) Evaluate(pos *board.Position) int {
	acc := e.stack.Current()
	acc.ComputeFull(pos, e.net)
	return e.net.Forward(acc, pos.SideToMove)
}

// Push saves accumulator state (call before DoMove).
func (e *Evaluator) Push() {
	e.stack.Push()
}

// Pop restores accumulator state (call after UndoMove).
func (e *Evaluator) Pop() {
	e.stack.Pop()
}

// Refresh forces a full recomputation of the accumulator.
func (e *Evaluator) Refresh(pos *board.Position) {
	e.stack.Current().ComputeFull(pos, e.net)
}

// Update updates the accumulator incrementally for a move.
// Should be called after DoMove.
func (e *Evaluator) Update(pos *board.Position, m board.Move, captured board.Piece) {
	e.stack.Current().UpdateIncremental(pos, m, captured, e.net)
}

// Reset resets the accumulator stack (for new game).
func (e *Evaluator) Reset() {
	e.stack.Reset()
}
