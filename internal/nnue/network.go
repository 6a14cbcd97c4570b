package nnue

import "github.com/nameless/chessplay/internal/board"

// Network holds the NNUE weights: one hidden layer shared by both
// perspectives, then a single linear output over the concatenation of
// side-to-move and opponent hidden activations.
type Network struct {
	L1Weights [HalfKPSize][HiddenSize]int16
	L1Bias    [HiddenSize]int16

	OutputWeights [2 * HiddenSize]int8
	OutputBias    int32
}

// NewNetwork creates a network with zero weights (must load weights or init random).
func NewNetwork() *Network {
	return &Network{}
}

// Forward computes the network output given an accumulator.
// Returns evaluation in centipawns from the perspective of the side to move.
func (n *Network) Forward(acc *Accumulator, sideToMove board.Color) int {
	var stmAcc, nstmAcc *[HiddenSize]int16
	if sideToMove == board.White {
		stmAcc = &acc.White
		nstmAcc = &acc.Black
	} else {
		stmAcc = &acc.Black
		nstmAcc = &acc.White
	}

	var clipped [2 * HiddenSize]uint8
	for i := 0; i < HiddenSize; i++ {
		clipped[i] = ClampedReLU(stmAcc[i])
		clipped[HiddenSize+i] = ClampedReLU(nstmAcc[i])
	}

	output := n.OutputBias
	for j := 0; j < 2*HiddenSize; j++ {
		output += int32(n.OutputWeights[j]) * int32(clipped[j])
	}

	return int(output * outputScale / (255 * 64))
}

// InitRandom initializes weights with small random values (for testing only).
func (n *Network) InitRandom(seed int64) {
	state := uint64(seed)
	next := func() int16 {
		state = state*6364136223846793005 + 1442695040888963407
		return int16((state>>48)&0xFF) - 128
	}

	for i := 0; i < HalfKPSize; i++ {
		for j := 0; j < HiddenSize; j++ {
			n.L1Weights[i][j] = next() >> 5 // Small: -4 to 3
		}
	}

	for i := 0; i < HiddenSize; i++ {
		n.L1Bias[i] = next() >> 3 // Small: -16 to 15
	}

	for i := 0; i < 2*HiddenSize; i++ {
		val := next() >> 6
		if val > 127 {
			val = 127
		} else if val < -128 {
			val = -128
		}
		n.OutputWeights[i] = int8(val)
	}

	n.OutputBias = int32(next()) * 100
}
