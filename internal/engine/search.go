package engine

import (
	"sync/atomic"
	"time"

	"github.com/nameless/chessplay/internal/board"
)

// Search constants
const (
	Infinity  = 30000
	MateScore = 29000
	MaxPly    = 128

	aspirationWindow = 30
)

// PVTable stores the principal variation.
type PVTable struct {
	length [MaxPly]int
	moves  [MaxPly][MaxPly]board.Move
}

// Searcher performs the iterative-deepening alpha-beta search.
type Searcher struct {
	pos     *board.Position
	tt      *TranspositionTable
	orderer *MoveOrderer
	timer   *TimeManager

	nodes    uint64
	stopFlag atomic.Bool
	rootPly  int

	// evalFn computes the static score of the current position; defaults
	// to the classical Evaluate but can be swapped for an NNUE evaluator.
	evalFn func(*board.Position) int

	pv PVTable

	// repetition history, indexed by the ply (halfmove clock included) at
	// which each hash was reached, so a position is a repetition only if
	// it reappears within the current halfmove-clock run.
	hashHistory []uint64
}

// NewSearcher creates a new searcher.
func NewSearcher(tt *TranspositionTable) *Searcher {
	return &Searcher{
		tt:      tt,
		orderer: NewMoveOrderer(),
		evalFn:  Evaluate,
	}
}

// SetEvalFn overrides the static evaluator, e.g. to use NNUE instead of
// the classical evaluation. Passing nil restores Evaluate.
func (s *Searcher) SetEvalFn(fn func(*board.Position) int) {
	if fn == nil {
		fn = Evaluate
	}
	s.evalFn = fn
}

// Stop signals the search to stop.
func (s *Searcher) Stop() {
	s.stopFlag.Store(true)
}

// Reset resets the searcher for a new search.
func (s *Searcher) Reset() {
	s.stopFlag.Store(false)
	s.nodes = 0
	s.orderer.Clear()
}

// Nodes returns the number of nodes searched.
func (s *Searcher) Nodes() uint64 {
	return s.nodes
}

// Search runs iterative deepening up to maxDepth (or until the time
// manager says to stop, if tm is non-nil), returning the best move and
// score found by the deepest completed iteration. history carries the
// hashes of positions played before the root, for repetition detection.
func (s *Searcher) Search(pos *board.Position, maxDepth int, tm *TimeManager, history []uint64) (board.Move, int) {
	s.pos = pos
	s.timer = tm
	s.rootPly = len(history)
	s.hashHistory = append(append([]uint64(nil), history...), pos.Hash())
	s.Reset()
	s.tt.NewSearch()

	var bestMove board.Move
	bestScore := 0

	alpha, beta := -Infinity, Infinity

	for depth := 1; depth <= maxDepth; {
		val := s.negamax(depth, 0, alpha, beta)

		if s.stopFlag.Load() {
			break
		}

		if val <= alpha || val >= beta {
			// Aspiration window failure: widen to infinity and redo
			// this depth rather than trusting a clipped score.
			alpha, beta = -Infinity, Infinity
			continue
		}

		bestScore = val
		if s.pv.length[0] > 0 {
			bestMove = s.pv.moves[0][0]
		}

		if val >= MateScore-MaxPly || val <= -MateScore+MaxPly {
			break
		}

		alpha = val - aspirationWindow
		beta = val + aspirationWindow

		depth++

		if s.timer != nil && s.timer.PastOptimum() {
			break
		}
	}

	return bestMove, bestScore
}

// negamax implements the negamax algorithm with alpha-beta pruning.
func (s *Searcher) negamax(depth, ply int, alpha, beta int) int {
	if s.nodes&2047 == 0 {
		if s.stopFlag.Load() {
			return 0
		}
		if s.timer != nil && s.timer.ShouldStop() {
			s.stopFlag.Store(true)
			return 0
		}
	}

	s.nodes++
	s.pv.length[ply] = ply

	if ply > 0 && s.isDraw() {
		return 0
	}

	hash := s.pos.Hash()

	var ttMove board.Move
	if ply > 0 {
		if score, found := s.tt.Probe(hash, alpha, beta, depth); found {
			return AdjustScoreFromTT(score, ply)
		}
	}
	ttMove = s.tt.BestMove(hash)

	if depth <= 0 {
		return s.quiescence(ply, alpha, beta)
	}

	inCheck := s.pos.InCheck(s.pos.SideToMove)

	moves := s.pos.GenerateLegalMoves()
	if moves.Len() == 0 {
		if inCheck {
			return -MateScore + ply
		}
		return 0
	}

	scores := s.orderer.ScoreMoves(s.pos, moves, ply, ttMove)

	bestScore := -Infinity
	bestMove := board.NoMove
	flag := TTUpperBound

	for i := 0; i < moves.Len(); i++ {
		PickMove(moves, scores, i)
		move := moves.Get(i)

		s.pos.DoMove(move)
		s.hashHistory = append(s.hashHistory, s.pos.Hash())

		score := -s.negamax(depth-1, ply+1, -beta, -alpha)

		s.hashHistory = s.hashHistory[:len(s.hashHistory)-1]
		s.pos.UndoMove()

		if s.stopFlag.Load() {
			return 0
		}

		if score > bestScore {
			bestScore = score
			bestMove = move

			if score > alpha {
				alpha = score
				flag = TTExact

				s.pv.moves[ply][ply] = move
				for j := ply + 1; j < s.pv.length[ply+1]; j++ {
					s.pv.moves[ply][j] = s.pv.moves[ply+1][j]
				}
				s.pv.length[ply] = s.pv.length[ply+1]
			}
		}

		if score >= beta {
			s.tt.Store(hash, depth, AdjustScoreToTT(score, ply), TTLowerBound, bestMove)

			if !move.IsCapture() {
				s.orderer.UpdateKillers(move, ply)
				s.orderer.UpdateHistory(move, depth, true)
			}

			return score
		}
	}

	s.tt.Store(hash, depth, AdjustScoreToTT(bestScore, ply), flag, bestMove)

	return bestScore
}

// quiescence searches only captures (and, if in check, full evasions)
// to avoid the horizon effect.
func (s *Searcher) quiescence(ply int, alpha, beta int) int {
	const maxQuiescencePly = 32
	if ply >= MaxPly || ply > maxQuiescencePly {
		return s.evalFn(s.pos)
	}

	if s.stopFlag.Load() {
		return 0
	}

	s.nodes++

	inCheck := s.pos.InCheck(s.pos.SideToMove)

	var standPat int
	if !inCheck {
		standPat = s.evalFn(s.pos)
		if standPat >= beta {
			return beta
		}
		if standPat > alpha {
			alpha = standPat
		}

		bigDelta := QueenValue
		if standPat+bigDelta < alpha {
			return alpha
		}
	}

	moves := s.pos.GenerateCaptures()
	scores := s.orderer.ScoreMoves(s.pos, moves, ply, board.NoMove)

	legalMoves := 0
	for i := 0; i < moves.Len(); i++ {
		PickMove(moves, scores, i)
		move := moves.Get(i)
		legalMoves++

		if !inCheck && move.IsCapture() {
			if !SEEGoodCapture(s.pos, move) {
				continue
			}

			captureValue := seeValues[move.Captured()]
			if move.IsEnPassant() {
				captureValue = PawnValue
			}
			if move.IsPromotion() {
				captureValue += QueenValue - PawnValue
			}
			if standPat+captureValue+200 < alpha {
				continue
			}
		}

		s.pos.DoMove(move)
		score := -s.quiescence(ply+1, -beta, -alpha)
		s.pos.UndoMove()

		if score >= beta {
			return beta
		}
		if score > alpha {
			alpha = score
		}
	}

	if inCheck && legalMoves == 0 {
		return -MateScore + ply
	}

	return alpha
}

// isDraw checks for draw by the fifty-move rule, insufficient material,
// or a position repeating one already seen in the game history or the
// search path, within the halfmove clock (treating the
// first repetition as a draw, stricter than the game's threefold rule,
// which is the standard engine-side shortcut for avoiding repetition
// lines during search).
func (s *Searcher) isDraw() bool {
	if s.pos.GetHalfMoveClock() >= 100 {
		return true
	}

	if s.pos.IsInsufficientMaterial() {
		return true
	}

	hash := s.pos.Hash()
	n := len(s.hashHistory)
	clock := s.pos.GetHalfMoveClock()
	for back := 2; back <= clock && back < n; back += 2 {
		if s.hashHistory[n-1-back] == hash {
			return true
		}
	}

	return false
}

// GetPV returns the principal variation from the last search.
func (s *Searcher) GetPV() []board.Move {
	pv := make([]board.Move, s.pv.length[0])
	for i := 0; i < s.pv.length[0]; i++ {
		pv[i] = s.pv.moves[0][i]
	}
	return pv
}

// SearchTimed runs Search under a simple wall-clock deadline instead of a
// full TimeManager, for callers that just want "search for roughly this
// long".
func (s *Searcher) SearchTimed(pos *board.Position, maxDepth int, limit time.Duration, history []uint64) (board.Move, int) {
	tm := NewTimeManager()
	tm.optimumTime = limit
	tm.maximumTime = limit
	tm.startTime = time.Now()
	return s.Search(pos, maxDepth, tm, history)
}
