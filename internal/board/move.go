package board

import "fmt"

// Move packs a chess move into 32 bits:
//
//	bits 0-5:   source square
//	bits 6-11:  destination square
//	bits 12-14: moving piece type
//	bit  15:    moving piece color
//	bits 16-17: move type (normal, capture, castle, en passant)
//	bits 18-20: captured piece type (only meaningful when type == capture)
//	bits 21-23: promoted piece type (0 means "not a promotion" -- you can
//	            never promote to a pawn, so 0 is unambiguous here)
type Move uint32

// Move type field values (bits 16-17).
const (
	MoveNormal    uint32 = 0
	MoveCapture   uint32 = 1
	MoveCastle    uint32 = 2
	MoveEnPassant uint32 = 3
)

const (
	moveSrcShift      = 0
	moveDestShift     = 6
	movePieceShift    = 12
	moveColorShift    = 15
	moveTypeShift     = 16
	moveCapturedShift = 18
	movePromotedShift = 21

	moveSquareMask = 0x3F
	movePieceMask  = 0x07
	moveColorMask  = 0x01
	moveTypeMask   = 0x03
)

// NoMove is the null move (all fields zero).
const NoMove Move = 0

func packMove(from, to Square, pt PieceType, c Color, typ uint32, captured, promoted PieceType) Move {
	return Move(
		uint32(from)<<moveSrcShift |
			uint32(to)<<moveDestShift |
			uint32(pt)<<movePieceShift |
			uint32(c)<<moveColorShift |
			typ<<moveTypeShift |
			uint32(captured)<<moveCapturedShift |
			uint32(promoted)<<movePromotedShift)
}

// NewMove creates a normal, non-capturing move.
func NewMove(from, to Square, pt PieceType, c Color) Move {
	return packMove(from, to, pt, c, MoveNormal, Pawn, Pawn)
}

// NewCapture creates a capturing move.
func NewCapture(from, to Square, pt PieceType, c Color, captured PieceType) Move {
	return packMove(from, to, pt, c, MoveCapture, captured, Pawn)
}

// NewPromotion creates a (possibly capturing) pawn promotion.
func NewPromotion(from, to Square, c Color, captured PieceType, promoted PieceType, isCapture bool) Move {
	typ := MoveNormal
	if isCapture {
		typ = MoveCapture
	}
	return packMove(from, to, Pawn, c, typ, captured, promoted)
}

// NewEnPassant creates an en passant capture.
func NewEnPassant(from, to Square, c Color) Move {
	return packMove(from, to, Pawn, c, MoveEnPassant, Pawn, Pawn)
}

// NewCastling creates a castling move (the king's source/destination).
func NewCastling(from, to Square, c Color) Move {
	return packMove(from, to, King, c, MoveCastle, Pawn, Pawn)
}

// From returns the source square.
func (m Move) From() Square { return Square(uint32(m) & moveSquareMask) }

// To returns the destination square.
func (m Move) To() Square { return Square((uint32(m) >> moveDestShift) & moveSquareMask) }

// Piece returns the moving piece's type.
func (m Move) Piece() PieceType { return PieceType((uint32(m) >> movePieceShift) & movePieceMask) }

// Color returns the moving piece's color.
func (m Move) Color() Color { return Color((uint32(m) >> moveColorShift) & moveColorMask) }

// Type returns the move-type field (MoveNormal/MoveCapture/MoveCastle/MoveEnPassant).
func (m Move) Type() uint32 { return (uint32(m) >> moveTypeShift) & moveTypeMask }

// Captured returns the captured piece's type; only meaningful if IsCapture().
func (m Move) Captured() PieceType {
	return PieceType((uint32(m) >> moveCapturedShift) & movePieceMask)
}

// Promoted returns the promoted-to piece type; zero means not a promotion.
func (m Move) Promoted() PieceType {
	return PieceType((uint32(m) >> movePromotedShift) & movePieceMask)
}

// IsPromotion returns true if this move promotes a pawn.
func (m Move) IsPromotion() bool { return m.Promoted() != Pawn }

// IsCastling returns true if this is a castling move.
func (m Move) IsCastling() bool { return m.Type() == MoveCastle }

// IsEnPassant returns true if this is an en passant capture.
func (m Move) IsEnPassant() bool { return m.Type() == MoveEnPassant }

// IsCapture returns true if this move captures a piece (including en passant).
func (m Move) IsCapture() bool { return m.Type() == MoveCapture || m.Type() == MoveEnPassant }

// IsQuiet returns true if this move neither captures nor promotes.
func (m Move) IsQuiet() bool { return !m.IsCapture() && !m.IsPromotion() }

// String returns the coordinate wire format, e.g. "e2e4", "a7a8q".
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	s := m.From().String() + m.To().String()
	if m.IsPromotion() {
		chars := map[PieceType]byte{Knight: 'n', Bishop: 'b', Rook: 'r', Queen: 'q'}
		s += string(chars[m.Promoted()])
	}
	return s
}

// ParseMove parses "src_file src_rank dest_file dest_rank [promo]" (e.g.
// "e2e4", "a7a8q") against pos to recover the full packed move.
func ParseMove(s string, pos *Position) (Move, error) {
	if len(s) < 4 {
		return NoMove, fmt.Errorf("invalid move string: %s", s)
	}

	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, err
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, err
	}

	piece := pos.PieceAt(from)
	if piece == NoPiece {
		return NoMove, fmt.Errorf("no piece at %s", from)
	}
	pt := piece.Type()
	c := piece.Color()

	captured := Pawn
	isCapture := false
	if target := pos.PieceAt(to); target != NoPiece {
		captured = target.Type()
		isCapture = true
	}

	if len(s) >= 5 {
		var promo PieceType
		switch s[4] {
		case 'n':
			promo = Knight
		case 'b':
			promo = Bishop
		case 'r':
			promo = Rook
		case 'q':
			promo = Queen
		default:
			return NoMove, fmt.Errorf("invalid promotion piece: %c", s[4])
		}
		return NewPromotion(from, to, c, captured, promo, isCapture), nil
	}

	if pt == King && abs(int(to)-int(from)) == 2 {
		return NewCastling(from, to, c), nil
	}
	if pt == Pawn && !isCapture && to.File() != from.File() {
		return NewEnPassant(from, to, c), nil
	}
	if isCapture {
		return NewCapture(from, to, pt, c, captured), nil
	}
	return NewMove(from, to, pt, c), nil
}

// MoveList is a fixed-size list of moves held in one backing array
// (sized for 256+32+256 moves) to avoid heap allocation during move
// generation. Moves are kept in the order they are added; promotions,
// captures and other moves are not kept in separate buckets.
type MoveList struct {
	moves [256 + 32 + 256]Move
	count int
}

// Add appends a move to the list.
func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.count++
}

// Len returns the number of moves in the list.
func (ml *MoveList) Len() int { return ml.count }

// Get returns the move at index i.
func (ml *MoveList) Get(i int) Move { return ml.moves[i] }

// Set overwrites the move at index i.
func (ml *MoveList) Set(i int, m Move) { ml.moves[i] = m }

// Swap exchanges two entries.
func (ml *MoveList) Swap(i, j int) { ml.moves[i], ml.moves[j] = ml.moves[j], ml.moves[i] }

// Clear empties the list without releasing its backing array.
func (ml *MoveList) Clear() { ml.count = 0 }

// Contains reports whether m is present in the list.
func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i] == m {
			return true
		}
	}
	return false
}

// Slice returns the populated moves as a slice over the backing array.
func (ml *MoveList) Slice() []Move { return ml.moves[:ml.count] }
