package board

import (
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the FEN string for the starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN parses a standard 6-field FEN string. The en passant field is
// given in standard FEN as the square behind the double-pushed pawn
// (rank 3 or 6); internally it is stored as the pawn's own destination
// square (rank 4 or 5) to match this engine's do_move/undo_move
// convention. Fullmove number is parsed but otherwise unused.
func ParseFEN(fen string) (*Position, error) {
	parts := strings.Fields(fen)
	if len(parts) < 4 {
		return nil, fmt.Errorf("invalid FEN: need at least 4 fields, got %d", len(parts))
	}

	pos := &Position{FullMoveNumber: 1}
	pos.KingSquare[White] = NoSquare
	pos.KingSquare[Black] = NoSquare
	root := &state{enPassant: NoSquare}

	if err := parsePiecePlacement(pos, parts[0]); err != nil {
		return nil, err
	}

	switch parts[1] {
	case "w":
		pos.SideToMove = White
	case "b":
		pos.SideToMove = Black
	default:
		return nil, fmt.Errorf("invalid side to move: %s", parts[1])
	}

	if err := parseCastlingRights(root, parts[2]); err != nil {
		return nil, err
	}

	if parts[3] != "-" {
		sq, err := ParseSquare(parts[3])
		if err != nil {
			return nil, fmt.Errorf("invalid en passant square: %s", parts[3])
		}
		root.enPassant = remapFENEnPassant(sq)
	}

	if len(parts) > 4 {
		hmc, err := strconv.Atoi(parts[4])
		if err != nil {
			return nil, fmt.Errorf("invalid half-move clock: %s", parts[4])
		}
		root.halfMoveClock = hmc
	}

	if len(parts) > 5 {
		fmn, err := strconv.Atoi(parts[5])
		if err != nil {
			return nil, fmt.Errorf("invalid full-move number: %s", parts[5])
		}
		pos.FullMoveNumber = fmn
	}

	pos.updateOccupied()
	pos.findKings()
	pos.st = root
	pos.st.hash = pos.computeHash()
	pos.recomputeCheckState()

	return pos, nil
}

// remapFENEnPassant converts a standard-FEN en passant square (the square
// the capturing pawn lands on, i.e. the square "behind" the pusher, rank
// 3 or 6) into this engine's convention of storing the double-pushed
// pawn's own destination square (rank 4 or 5).
func remapFENEnPassant(sq Square) Square {
	switch sq.Rank() {
	case 2:
		return NewSquare(sq.File(), 3)
	case 5:
		return NewSquare(sq.File(), 4)
	default:
		return sq
	}
}

// unremapToFENEnPassant is the inverse of remapFENEnPassant, used by ToFEN.
func unremapToFENEnPassant(sq Square) Square {
	switch sq.Rank() {
	case 3:
		return NewSquare(sq.File(), 2)
	case 4:
		return NewSquare(sq.File(), 5)
	default:
		return sq
	}
}

func parsePiecePlacement(pos *Position, placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return fmt.Errorf("invalid piece placement: need 8 ranks, got %d", len(ranks))
	}

	for i, rankStr := range ranks {
		rank := 7 - i
		file := 0

		for _, c := range rankStr {
			if file > 7 {
				return fmt.Errorf("too many squares in rank %d", rank+1)
			}
			if c >= '1' && c <= '8' {
				file += int(c - '0')
			} else {
				piece := PieceFromChar(byte(c))
				if piece == NoPiece {
					return fmt.Errorf("invalid piece character: %c", c)
				}
				pos.setPiece(piece, NewSquare(file, rank))
				file++
			}
		}
		if file != 8 {
			return fmt.Errorf("invalid number of squares in rank %d: got %d", rank+1, file)
		}
	}
	return nil
}

func parseCastlingRights(st *state, castling string) error {
	if castling == "-" {
		st.castleRights = NoCastling
		return nil
	}
	for _, c := range castling {
		switch c {
		case 'K':
			st.castleRights |= WhiteKingSideCastle
		case 'Q':
			st.castleRights |= WhiteQueenSideCastle
		case 'k':
			st.castleRights |= BlackKingSideCastle
		case 'q':
			st.castleRights |= BlackQueenSideCastle
		default:
			return fmt.Errorf("invalid castling character: %c", c)
		}
	}
	return nil
}

// ToFEN returns the FEN representation of the position.
func (p *Position) ToFEN() string {
	var sb strings.Builder

	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			sq := NewSquare(file, rank)
			piece := p.PieceAt(sq)
			if piece == NoPiece {
				empty++
			} else {
				if empty > 0 {
					sb.WriteString(strconv.Itoa(empty))
					empty = 0
				}
				sb.WriteString(piece.String())
			}
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	sb.WriteByte(' ')
	if p.SideToMove == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}

	sb.WriteByte(' ')
	sb.WriteString(p.GetCastlingRights().String())

	sb.WriteByte(' ')
	if ep := p.GetEnPassant(); ep != NoSquare {
		sb.WriteString(unremapToFENEnPassant(ep).String())
	} else {
		sb.WriteByte('-')
	}

	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.GetHalfMoveClock()))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.FullMoveNumber))

	return sb.String()
}

// computeHash computes the Zobrist hash for the position from scratch;
// used once at FEN-parse time. Incremental updates during do_move/
// undo_move never call this again.
func (p *Position) computeHash() uint64 {
	var hash uint64
	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			bb := p.Pieces[c][pt]
			for bb != 0 {
				sq := bb.PopLSB()
				hash ^= ZobristPiece(c, pt, sq)
			}
		}
	}
	if p.SideToMove == Black {
		hash ^= ZobristSideToMove()
	}
	hash ^= ZobristCastling(p.st.castleRights)
	if p.st.enPassant != NoSquare {
		hash ^= ZobristEnPassant(p.st.enPassant.File())
	}
	return hash
}
