package engine

import (
	"math"

	"github.com/nameless/chessplay/internal/board"
)

// seeValues mirrors PieceValue but is indexed only up to Queen; King is
// handled as a sentinel (capturing into check is illegal, so a line of
// recaptures that would require "capturing" the king is pruned by
// assigning it a value no real exchange can outweigh).
var seeValues = [6]int{100, 320, 330, 500, 900, math.MaxInt32 / 2}

// SEE performs static exchange evaluation of a capture on m.To(), walking
// the full sequence of recaptures on that square and minimax-folding the
// running material totals. Grounded on the forward attacker-collection /
// backward fold algorithm, recomputing attackers from scratch after each
// simulated capture so that X-rayed sliders are discovered as the
// blocking piece in front of them is removed.
func SEE(pos *board.Position, m board.Move) int {
	dest := m.To()
	toMove := m.Color().Other()

	composite := pos.AllOccupied &^ board.SquareBB(m.From())
	attackers := attackersOnSquare(pos, toMove, dest, composite)

	toBeCaptured := m.Captured()
	if m.IsEnPassant() {
		toBeCaptured = board.Pawn
	}

	if attackers == 0 {
		return seeValues[toBeCaptured]
	}

	var gains [32]int
	gains[0] = seeValues[toBeCaptured]
	toCapture := m.Piece()
	n := 1

	for attackers != 0 {
		toBeCaptured = toCapture
		if toBeCaptured == board.King {
			gains[n] = seeValues[board.King]
			n++
			break
		}

		toCapture = board.Pawn
		for pos.Pieces[toMove][toCapture]&attackers == 0 {
			toCapture++
		}

		gains[n] = -gains[n-1] + seeValues[toBeCaptured]
		n++

		captureBB := pos.Pieces[toMove][toCapture] & attackers
		composite &^= captureBB & -captureBB
		toMove = toMove.Other()

		attackers = attackersOnSquare(pos, toMove, dest, composite) & composite
	}

	for n--; n > 0; n-- {
		if -gains[n] < gains[n-1] {
			gains[n-1] = -gains[n]
		}
	}
	return gains[0]
}

// attackersOnSquare returns attacker's pieces attacking sq given a
// (possibly hypothetical, mid-exchange) occupancy bitboard.
func attackersOnSquare(pos *board.Position, attacker board.Color, sq board.Square, occ board.Bitboard) board.Bitboard {
	return board.AttackersOf(pos, attacker, sq, occ) & occ
}

// SEEGoodCapture reports whether a capture's static exchange evaluation
// is non-negative -- the cheap, order-of-magnitude test quiescence
// pruning uses to separate "probably fine" captures from
// ones that lose material outright.
func SEEGoodCapture(pos *board.Position, m board.Move) bool {
	return SEE(pos, m) >= 0
}
