// Package engine implements the chess AI search engine.
package engine

import (
	"github.com/nameless/chessplay/internal/board"
)

// Piece values, indexed by PieceType (Pawn..King). The endgame table
// values a pawn higher and a queen slightly higher, since material
// matters more once the board empties out.
const (
	PawnValue   = 100
	KnightValue = 320
	BishopValue = 330
	RookValue   = 500
	QueenValue  = 900
	KingValue   = 0
)

var pieceValues = [6]int{PawnValue, KnightValue, BishopValue, RookValue, QueenValue, KingValue}
var endgamePieceValues = [6]int{175, KnightValue, BishopValue, RookValue, 1000, KingValue}

const doubledPawnPenalty = -10

// Piece-square tables, indexed by square with a1 first, so the first
// row is rank 1 as seen by Black; Evaluate indexes Black's pieces
// directly and White's through Square.Mirror. Order follows
// board.PieceType: Pawn, Knight, Bishop, Rook, Queen, King.
var pawnPST = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	15, 15, 20, 25, 25, 20, 15, 15,
	4, 8, 12, 16, 16, 12, 8, 4,
	0, 6, 9, 10, 10, 9, 6, 0,
	0, 4, 6, 15, 15, 6, 4, 0,
	0, 2, 3, 5, 5, 3, 2, 0,
	0, 0, 0, -9, -9, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0,
}

var knightPST = [64]int{
	-15, -5, -5, -5, -5, -5, -5, -15,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-10, 0, 10, 8, 8, 10, 0, -10,
	-10, 0, 8, 10, 10, 8, 0, -10,
	-10, 0, 8, 10, 10, 8, 0, -10,
	-10, 0, 10, 8, 8, 10, 0, -10,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-15, -3, -5, -5, -5, -5, -3, -15,
}

var bishopPST = [64]int{
	-15, 0, 0, 0, 0, 0, 0, -15,
	-5, 0, 0, 0, 0, 0, 0, -5,
	0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 7, 12, 12, 7, 0, 0,
	0, 0, 7, 10, 10, 7, 0, 0,
	0, 0, 5, 7, 7, 5, 0, 0,
	-5, 5, 5, 7, 7, 5, 5, -5,
	-15, -7, -7, -7, -7, -7, -7, -15,
}

var rookPST = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	10, 10, 10, 10, 10, 10, 10, 10,
	0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 1, 7, 7, 0, 0, 0,
}

// Queens have no positional table of their own, and no mobility term:
// mobility is scored for bishops and rooks only.
var kingPST = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, -10, -10, 0, 0, 0,
	0, 0, 12, -5, -5, 0, 12, 0,
}

var kingEndgamePST = [64]int{
	0, 0, 1, 3, 3, 1, 0, 0,
	0, 5, 5, 5, 5, 5, 5, 0,
	1, 5, 8, 8, 8, 8, 5, 1,
	3, 5, 8, 10, 10, 8, 5, 3,
	3, 5, 8, 10, 10, 8, 5, 3,
	1, 5, 8, 8, 8, 8, 5, 1,
	0, 5, 5, 5, 5, 5, 5, 0,
	0, 0, 1, 3, 3, 1, 0, 0,
}

var psts = [6]*[64]int{&pawnPST, &knightPST, &bishopPST, &rookPST, nil, &kingPST}
var endgamePsts = [6]*[64]int{&pawnPST, &knightPST, &bishopPST, &rookPST, nil, &kingEndgamePST}

// passedPawnBonus is indexed by the pawn's rank as seen from White's
// side (rank 8 of the table, i.e. index 0, is the promotion rank).
var passedPawnBonus = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	80, 80, 80, 80, 80, 80, 80, 80,
	65, 65, 65, 65, 65, 65, 65, 65,
	50, 50, 50, 50, 50, 50, 50, 50,
	25, 25, 25, 25, 25, 25, 25, 25,
	15, 15, 15, 15, 15, 15, 15, 15,
	10, 10, 10, 10, 10, 10, 10, 10,
	0, 0, 0, 0, 0, 0, 0, 0,
}

// isEndgame reports whether fewer than eight non-pawn pieces remain on
// the board (including both kings), the threshold at which the PST and
// piece-value tables switch from their middlegame to endgame variants.
func isEndgame(pos *board.Position) bool {
	nonPawn := pos.AllOccupied &^ (pos.Pieces[board.White][board.Pawn] | pos.Pieces[board.Black][board.Pawn])
	return nonPawn.PopCount() < 8
}

// Evaluate returns the static evaluation of pos from the perspective of
// the side to move: material, piece-square placement, doubled and
// passed pawns, and bishop/rook mobility.
func Evaluate(pos *board.Position) int {
	endgame := isEndgame(pos)

	var score int
	for color := board.White; color <= board.Black; color++ {
		sign := 1
		if color != pos.SideToMove {
			sign = -1
		}

		var colorScore int

		for file := 0; file < 8; file++ {
			onFile := pos.Pieces[color][board.Pawn] & board.FileMask[file]
			if n := onFile.PopCount(); n > 1 {
				colorScore += doubledPawnPenalty * (n - 1)
			}
		}

		for pt := board.Pawn; pt <= board.King; pt++ {
			pieces := pos.Pieces[color][pt]
			for pieces != 0 {
				sq := pieces.PopLSB()

				flipped := sq
				if color == board.White {
					flipped = sq.Mirror()
				}

				if pt == board.Pawn {
					if (board.FrontSpans(color, sq) & pos.Pieces[color.Other()][board.Pawn]) == 0 {
						colorScore += passedPawnBonus[flipped]
					}
				}

				table := psts[pt]
				if endgame {
					table = endgamePsts[pt]
				}
				if table != nil {
					colorScore += table[flipped]
				}

				if endgame {
					colorScore += endgamePieceValues[pt]
				} else {
					colorScore += pieceValues[pt]
				}

				switch pt {
				case board.Bishop:
					colorScore += board.BishopAttacks(sq, pos.AllOccupied).PopCount()
				case board.Rook:
					colorScore += board.RookAttacks(sq, pos.AllOccupied).PopCount()
				}
			}
		}

		score += sign * colorScore
	}

	return score
}

// EvaluateMaterial returns just the material balance, from the
// perspective of the side to move, for callers that need only a cheap,
// purely material estimate.
func EvaluateMaterial(pos *board.Position) int {
	score := 0
	for pt := board.Pawn; pt < board.King; pt++ {
		score += pos.Pieces[board.White][pt].PopCount() * pieceValues[pt]
		score -= pos.Pieces[board.Black][pt].PopCount() * pieceValues[pt]
	}
	if pos.SideToMove == board.Black {
		return -score
	}
	return score
}
