package board

// Move generation works entirely from the incrementally-maintained
// king_attackers/pinned state cached on Position (see recomputeCheckState
// in position.go) instead of a make/unmake-and-recheck approach: every
// move produced here is legal by construction --
//
//   - a piece in Pinned() may only move along the line through its king
//     and the pinning slider (computePinned's sniper/target algorithm)
//   - under single check, non-king moves must capture the checker or
//     block the ray between it and the king (double check allows only
//     king moves)
//   - king moves are filtered against the destination square with the
//     king itself removed from the occupancy, so a king cannot "hide
//     behind itself" retreating along a slider's line
//   - castling checks the king's start/pass-through/landing squares for
//     attacks before the king ever moves
//   - en passant gets its own legality check: besides the usual pin and
//     check-mask rules, removing both the moving and captured pawns from
//     the same rank can expose the king to a rook or queen that neither
//     pawn was individually blocking
//
// so no separate legality filter ever runs over the generated list.

// GenerateLegalMoves generates all legal moves for the position.
func (p *Position) GenerateLegalMoves() *MoveList {
	ml := &MoveList{}
	p.generateMoves(ml, true)
	return ml
}

// GeneratePseudoLegalMoves is an alias for GenerateLegalMoves: the
// generator here never produces an illegal move, so there is no
// separate pseudo-legal stage to expose.
func (p *Position) GeneratePseudoLegalMoves() *MoveList {
	return p.GenerateLegalMoves()
}

// GenerateCaptures generates captures and promotions, for quiescence
// search. While in check this still generates full evasions (captures,
// blocks, and king moves), since a captures-only list could otherwise
// miss the only legal replies to a check.
func (p *Position) GenerateCaptures() *MoveList {
	ml := &MoveList{}
	p.generateMoves(ml, false)
	return ml
}

func (p *Position) generateMoves(ml *MoveList, includeQuiets bool) {
	us := p.SideToMove
	them := us.Other()
	ksq := p.KingSquare[us]
	occ := p.AllOccupied
	ownOcc := p.Occupied[us]
	enemies := p.Occupied[them]
	pinned := p.Pinned()

	attackers := p.KingAttackers()
	numCheckers := attackers.PopCount()

	quiets := includeQuiets || numCheckers > 0

	p.generateKingMoves(ml, us, them, ksq, ownOcc, quiets)
	if quiets && numCheckers == 0 {
		p.generateCastlingMoves(ml, us)
	}
	if numCheckers >= 2 {
		return
	}

	var captureMask, pushMask Bitboard
	if numCheckers == 1 {
		checkerSq := attackers.LSB()
		captureMask = attackers
		if isSlidingAttacker(p, them, checkerSq) {
			pushMask = Between(ksq, checkerSq)
		}
	} else {
		captureMask = enemies
		pushMask = ^occ
	}

	destMask := captureMask
	if quiets {
		destMask |= pushMask
	}

	p.generateKnightMoves(ml, us, destMask, pinned)
	p.generateSliderMoves(ml, us, Bishop, occ, destMask, pinned, ksq)
	p.generateSliderMoves(ml, us, Rook, occ, destMask, pinned, ksq)
	p.generateSliderMoves(ml, us, Queen, occ, destMask, pinned, ksq)
	p.generatePawnMoves(ml, us, them, occ, captureMask, pushMask, pinned, quiets, ksq)
}

func (p *Position) generateKingMoves(ml *MoveList, us, them Color, ksq Square, ownOcc Bitboard, quiets bool) {
	enemies := p.Occupied[them]
	targets := kingAttacks[ksq] &^ ownOcc
	if !quiets {
		targets &= enemies
	}
	occWithoutKing := p.AllOccupied &^ SquareBB(ksq)
	for targets != 0 {
		to := targets.PopLSB()
		if AttackersOf(p, them, to, occWithoutKing) != 0 {
			continue
		}
		if cap := p.PieceAt(to); cap != NoPiece {
			ml.Add(NewCapture(ksq, to, King, us, cap.Type()))
		} else {
			ml.Add(NewMove(ksq, to, King, us))
		}
	}
}

func (p *Position) generateCastlingMoves(ml *MoveList, us Color) {
	them := us.Other()
	rights := p.GetCastlingRights()
	occ := p.AllOccupied

	if us == White {
		if rights&WhiteKingSideCastle != 0 && occ&(SquareBB(F1)|SquareBB(G1)) == 0 {
			if !p.IsSquareAttacked(E1, them) && !p.IsSquareAttacked(F1, them) && !p.IsSquareAttacked(G1, them) {
				ml.Add(NewCastling(E1, G1, White))
			}
		}
		if rights&WhiteQueenSideCastle != 0 && occ&(SquareBB(B1)|SquareBB(C1)|SquareBB(D1)) == 0 {
			if !p.IsSquareAttacked(E1, them) && !p.IsSquareAttacked(D1, them) && !p.IsSquareAttacked(C1, them) {
				ml.Add(NewCastling(E1, C1, White))
			}
		}
		return
	}

	if rights&BlackKingSideCastle != 0 && occ&(SquareBB(F8)|SquareBB(G8)) == 0 {
		if !p.IsSquareAttacked(E8, them) && !p.IsSquareAttacked(F8, them) && !p.IsSquareAttacked(G8, them) {
			ml.Add(NewCastling(E8, G8, Black))
		}
	}
	if rights&BlackQueenSideCastle != 0 && occ&(SquareBB(B8)|SquareBB(C8)|SquareBB(D8)) == 0 {
		if !p.IsSquareAttacked(E8, them) && !p.IsSquareAttacked(D8, them) && !p.IsSquareAttacked(C8, them) {
			ml.Add(NewCastling(E8, C8, Black))
		}
	}
}

func (p *Position) generateKnightMoves(ml *MoveList, us Color, destMask, pinned Bitboard) {
	// An absolutely-pinned knight has no legal move: it can never stay
	// on the line between its king and the pinning slider.
	knights := p.Pieces[us][Knight] &^ pinned
	for knights != 0 {
		from := knights.PopLSB()
		targets := knightAttacks[from] & destMask
		for targets != 0 {
			to := targets.PopLSB()
			if cap := p.PieceAt(to); cap != NoPiece {
				ml.Add(NewCapture(from, to, Knight, us, cap.Type()))
			} else {
				ml.Add(NewMove(from, to, Knight, us))
			}
		}
	}
}

func (p *Position) generateSliderMoves(ml *MoveList, us Color, pt PieceType, occ, destMask, pinned Bitboard, ksq Square) {
	pieces := p.Pieces[us][pt]
	for pieces != 0 {
		from := pieces.PopLSB()
		var attacks Bitboard
		switch pt {
		case Bishop:
			attacks = BishopAttacks(from, occ)
		case Rook:
			attacks = RookAttacks(from, occ)
		default:
			attacks = QueenAttacks(from, occ)
		}
		targets := attacks & destMask
		if pinned&SquareBB(from) != 0 {
			targets &= Line(ksq, from)
		}
		for targets != 0 {
			to := targets.PopLSB()
			if cap := p.PieceAt(to); cap != NoPiece {
				ml.Add(NewCapture(from, to, pt, us, cap.Type()))
			} else {
				ml.Add(NewMove(from, to, pt, us))
			}
		}
	}
}

func (p *Position) generatePawnMoves(ml *MoveList, us, them Color, occ, captureMask, pushMask, pinned Bitboard, quiets bool, ksq Square) {
	pawns := p.Pieces[us][Pawn]
	empty := ^occ
	enemies := p.Occupied[them]

	var push1, push2, capL, capR Bitboard
	var promoRank Bitboard
	var pushDir int

	if us == White {
		push1 = pawns.North() & empty
		push2 = (push1 & Rank3).North() & empty
		capL = pawns.NorthWest() & enemies
		capR = pawns.NorthEast() & enemies
		promoRank = Rank8
		pushDir = 8
	} else {
		push1 = pawns.South() & empty
		push2 = (push1 & Rank6).South() & empty
		capL = pawns.SouthWest() & enemies
		capR = pawns.SouthEast() & enemies
		promoRank = Rank1
		pushDir = -8
	}

	if quiets {
		push1 &= pushMask
		push2 &= pushMask
	} else {
		// Captures-only (quiescence, not in check): quiet promotions are
		// still worth searching, ordinary quiet pushes are not.
		push1 &= promoRank
		push2 = Empty
	}
	capL &= captureMask
	capR &= captureMask

	pinOK := func(from, to Square) bool {
		return pinned&SquareBB(from) == 0 || Line(ksq, from)&SquareBB(to) != 0
	}

	for bb := push1; bb != 0; {
		to := bb.PopLSB()
		from := Square(int(to) - pushDir)
		if !pinOK(from, to) {
			continue
		}
		if SquareBB(to)&promoRank != 0 {
			addPromotions(ml, from, to, us, Pawn, false)
		} else {
			ml.Add(NewMove(from, to, Pawn, us))
		}
	}

	for bb := push2; bb != 0; {
		to := bb.PopLSB()
		from := Square(int(to) - 2*pushDir)
		if pinOK(from, to) {
			ml.Add(NewMove(from, to, Pawn, us))
		}
	}

	for bb := capL; bb != 0; {
		to := bb.PopLSB()
		from := Square(int(to) - pushDir + 1)
		if !pinOK(from, to) {
			continue
		}
		captured := p.PieceAt(to).Type()
		if SquareBB(to)&promoRank != 0 {
			addPromotions(ml, from, to, us, captured, true)
		} else {
			ml.Add(NewCapture(from, to, Pawn, us, captured))
		}
	}

	for bb := capR; bb != 0; {
		to := bb.PopLSB()
		from := Square(int(to) - pushDir - 1)
		if !pinOK(from, to) {
			continue
		}
		captured := p.PieceAt(to).Type()
		if SquareBB(to)&promoRank != 0 {
			addPromotions(ml, from, to, us, captured, true)
		} else {
			ml.Add(NewCapture(from, to, Pawn, us, captured))
		}
	}

	if ep := p.GetEnPassant(); ep != NoSquare {
		// ep is the double-pushed pawn's own square: capturers stand
		// beside it and land on the square it passed over.
		epBB := SquareBB(ep)
		epAttackers := (epBB.East() | epBB.West()) & pawns
		target := Square(int(ep) + pushDir)
		for epAttackers != 0 {
			from := epAttackers.PopLSB()
			if p.enPassantIsLegal(from, target, us, them, ksq) {
				ml.Add(NewEnPassant(from, target, us))
			}
		}
	}
}

// addPromotions adds all four under/over-promotion choices for a pawn
// reaching the back rank.
func addPromotions(ml *MoveList, from, to Square, c Color, captured PieceType, isCapture bool) {
	ml.Add(NewPromotion(from, to, c, captured, Queen, isCapture))
	ml.Add(NewPromotion(from, to, c, captured, Rook, isCapture))
	ml.Add(NewPromotion(from, to, c, captured, Bishop, isCapture))
	ml.Add(NewPromotion(from, to, c, captured, Knight, isCapture))
}

func isSlidingAttacker(p *Position, c Color, sq Square) bool {
	bb := SquareBB(sq)
	return p.Pieces[c][Bishop]&bb != 0 || p.Pieces[c][Rook]&bb != 0 || p.Pieces[c][Queen]&bb != 0
}

// enPassantIsLegal applies the pin, check-mask, and same-rank discovered
// check rules specific to en passant: the destination square is never
// itself occupied, so the usual AttackersOf-after-the-move test can't be
// reused verbatim.
func (p *Position) enPassantIsLegal(from, to Square, us, them Color, ksq Square) bool {
	var capSq Square
	if us == White {
		capSq = to - 8
	} else {
		capSq = to + 8
	}

	if p.Pinned()&SquareBB(from) != 0 && Line(ksq, from)&SquareBB(to) == 0 {
		return false
	}

	// A pawn giving check can only be captured, never blocked: if we're
	// in check, the capture must remove the checking pawn itself.
	if attackers := p.KingAttackers(); attackers != 0 && attackers != SquareBB(capSq) {
		return false
	}

	occAfter := (p.AllOccupied &^ SquareBB(from) &^ SquareBB(capSq)) | SquareBB(to)
	if RookAttacks(ksq, occAfter)&(p.Pieces[them][Rook]|p.Pieces[them][Queen]) != 0 {
		return false
	}
	return true
}

// IsLegal reports whether m is a legal move in the current position.
// Used to validate moves recovered from outside the generator itself --
// a transposition-table best-move hint, or xboard input -- where a full
// generate-and-match is the appropriate (if slower) check.
func (p *Position) IsLegal(m Move) bool {
	return p.GenerateLegalMoves().Contains(m)
}

// HasLegalMoves returns true if the side to move has any legal moves.
func (p *Position) HasLegalMoves() bool {
	return p.GenerateLegalMoves().Len() > 0
}

// IsCheckmate returns true if the position is checkmate.
func (p *Position) IsCheckmate() bool {
	return p.InCheck(p.SideToMove) && !p.HasLegalMoves()
}

// IsStalemate returns true if the position is stalemate.
func (p *Position) IsStalemate() bool {
	return !p.InCheck(p.SideToMove) && !p.HasLegalMoves()
}

// IsDraw returns true if the position is a draw by the 50-move rule,
// stalemate, or insufficient material. Repetition is tracked by the
// search driver, which has access to the game's move history; a single
// Position has no such history to consult.
func (p *Position) IsDraw() bool {
	if p.IsStalemate() {
		return true
	}
	if p.GetHalfMoveClock() >= 100 {
		return true
	}
	return p.IsInsufficientMaterial()
}

// IsInsufficientMaterial returns true if neither side can checkmate.
func (p *Position) IsInsufficientMaterial() bool {
	if p.Pieces[White][Pawn]|p.Pieces[Black][Pawn] != 0 ||
		p.Pieces[White][Rook]|p.Pieces[Black][Rook] != 0 ||
		p.Pieces[White][Queen]|p.Pieces[Black][Queen] != 0 {
		return false
	}

	wKnights := p.Pieces[White][Knight].PopCount()
	wBishops := p.Pieces[White][Bishop].PopCount()
	bKnights := p.Pieces[Black][Knight].PopCount()
	bBishops := p.Pieces[Black][Bishop].PopCount()

	if wKnights+wBishops+bKnights+bBishops == 0 {
		return true
	}
	if wKnights+wBishops <= 1 && bKnights+bBishops == 0 {
		return true
	}
	if bKnights+bBishops <= 1 && wKnights+wBishops == 0 {
		return true
	}
	return false
}
