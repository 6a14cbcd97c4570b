package engine

import (
	"log"
	"time"

	"github.com/nameless/chessplay/internal/board"
	"github.com/nameless/chessplay/internal/nnue"
	"github.com/nameless/chessplay/internal/store"
)

// SearchInfo reports progress of an in-flight search, typically surfaced
// to a protocol collaborator as one debug line per completed depth.
type SearchInfo struct {
	Depth    int
	Score    int
	Nodes    uint64
	Time     time.Duration
	PV       []board.Move
	HashFull int // Permille of hash table used
}

// SearchLimits specifies constraints on a single search call.
type SearchLimits struct {
	Depth    int           // Maximum depth (0 = no limit)
	MoveTime time.Duration // Time for this move (0 = no limit)
	Infinite bool          // Search until stopped
}

// Engine wires the search, evaluation, transposition table, and
// persistent analysis cache together behind a single call surface.
type Engine struct {
	tt       *TranspositionTable
	searcher *Searcher
	cache    *store.Store

	useNNUE bool
	nnueNet *nnue.Evaluator

	// OnInfo, if set, is called after each completed iterative-deepening
	// depth with the current best line.
	OnInfo func(SearchInfo)
}

// NewEngine creates a new chess engine. The transposition table is fixed
// size (matching the original engine's static allocation); ttSizeMB is
// accepted for command-line compatibility and otherwise unused.
func NewEngine(ttSizeMB int) *Engine {
	tt := NewTranspositionTable(ttSizeMB)
	return &Engine{
		tt:       tt,
		searcher: NewSearcher(tt),
	}
}

// OpenCache opens a persistent analysis cache at dir, backed by an
// embedded key-value store. It is safe to call Search without ever
// opening a cache.
func (e *Engine) OpenCache(dir string) error {
	s, err := store.Open(dir)
	if err != nil {
		return err
	}
	e.cache = s
	return nil
}

// CloseCache closes the persistent analysis cache, if one was opened.
func (e *Engine) CloseCache() error {
	if e.cache == nil {
		return nil
	}
	return e.cache.Close()
}

// LoadNNUE loads an NNUE network from weightsFile and enables it for
// evaluation.
func (e *Engine) LoadNNUE(weightsFile string) error {
	ev, err := nnue.NewEvaluator(weightsFile)
	if err != nil {
		return err
	}
	e.nnueNet = ev
	e.useNNUE = true
	e.searcher.SetEvalFn(ev.Evaluate)
	log.Printf("[engine] loaded NNUE weights from %s", weightsFile)
	return nil
}

// SetUseNNUE toggles between NNUE and classical evaluation. It is a
// no-op (classical stays selected) if no network has been loaded.
func (e *Engine) SetUseNNUE(use bool) {
	if use && e.nnueNet == nil {
		return
	}
	e.useNNUE = use
	if use {
		e.searcher.SetEvalFn(e.nnueNet.Evaluate)
	} else {
		e.searcher.SetEvalFn(nil)
	}
}

// UseNNUE reports whether NNUE evaluation is currently selected.
func (e *Engine) UseNNUE() bool {
	return e.useNNUE
}

// Search finds the best move for pos under limits. history carries the
// hashes of positions played earlier in the game, for repetition
// detection across the search horizon.
func (e *Engine) Search(pos *board.Position, limits SearchLimits, history []uint64) board.Move {
	move, _ := e.SearchWithScore(pos, limits, history)
	return move
}

// SearchWithScore is like Search but also returns the search's final
// score. The persistent analysis cache, if open, never sits on this
// path: it is only read at startup (SeedCache) and written on a ticker
// or at shutdown (FlushCache), never consulted or updated by an
// individual search call.
func (e *Engine) SearchWithScore(pos *board.Position, limits SearchLimits, history []uint64) (board.Move, int) {
	maxDepth := MaxPly
	if limits.Depth > 0 {
		maxDepth = limits.Depth
	}

	tm := NewTimeManager()
	if limits.MoveTime > 0 {
		tm.optimumTime = limits.MoveTime
		tm.maximumTime = limits.MoveTime
	} else if limits.Infinite {
		tm.optimumTime = time.Hour
		tm.maximumTime = time.Hour
	} else {
		tm.optimumTime = 5 * time.Second
		tm.maximumTime = 5 * time.Second
	}
	tm.startTime = time.Now()

	return e.search(pos, maxDepth, tm, history)
}

// search runs the iterative-deepening/aspiration-window driver loop
// against an already-configured TimeManager, firing OnInfo after each
// completed depth.
func (e *Engine) search(pos *board.Position, maxDepth int, tm *TimeManager, history []uint64) (board.Move, int) {
	start := time.Now()
	e.searcher.Reset()

	var bestMove board.Move
	var bestScore int
	alpha, beta := -Infinity, Infinity

	s := e.searcher
	s.pos = pos
	s.timer = tm
	s.rootPly = len(history)
	s.hashHistory = append(append([]uint64(nil), history...), pos.Hash())
	s.tt.NewSearch()

	for depth := 1; depth <= maxDepth; {
		val := s.negamax(depth, 0, alpha, beta)

		if s.stopFlag.Load() {
			break
		}

		if val <= alpha || val >= beta {
			alpha, beta = -Infinity, Infinity
			continue
		}

		bestScore = val
		if s.pv.length[0] > 0 {
			bestMove = s.pv.moves[0][0]
		}

		if e.OnInfo != nil {
			e.OnInfo(SearchInfo{
				Depth:    depth,
				Score:    bestScore,
				Nodes:    s.Nodes(),
				Time:     time.Since(start),
				PV:       s.GetPV(),
				HashFull: e.tt.HashFull(),
			})
		}

		if val >= MateScore-MaxPly || val <= -MateScore+MaxPly {
			break
		}

		alpha = val - aspirationWindow
		beta = val + aspirationWindow
		depth++

		if tm.PastOptimum() {
			break
		}
	}

	return bestMove, bestScore
}

// SeedCache probes up to limit entries from the persistent analysis
// cache into the transposition table, warm-starting it from a prior
// session's analysis. Returns the number of entries seeded, and is a
// no-op if no cache is open.
func (e *Engine) SeedCache(limit int) (int, error) {
	if e.cache == nil {
		return 0, nil
	}

	entries, err := e.cache.All(limit)
	if err != nil {
		return 0, err
	}

	for hash, rec := range entries {
		e.tt.Store(hash, rec.Depth, rec.Score, TTFlag(rec.Type), rec.Move)
	}

	return len(entries), nil
}

// FlushCache walks the transposition table's populated entries and
// persists each to the analysis cache, then syncs the cache to disk.
// Returns the number of entries written, and is a no-op if no cache is
// open.
func (e *Engine) FlushCache() (int, error) {
	if e.cache == nil {
		return 0, nil
	}

	n := 0
	for _, rec := range e.tt.Snapshot() {
		if rec.BestMove == board.NoMove {
			continue
		}
		err := e.cache.Put(rec.Hash, store.Entry{
			Move:  rec.BestMove,
			Score: rec.Value,
			Depth: rec.Depth,
			Type:  uint8(rec.Flag),
		})
		if err != nil {
			return n, err
		}
		n++
	}

	if err := e.cache.Flush(); err != nil {
		return n, err
	}
	return n, nil
}

// Stop stops the current search.
func (e *Engine) Stop() {
	e.searcher.Stop()
}

// Clear clears the transposition table and move-ordering history.
func (e *Engine) Clear() {
	e.tt.Clear()
	e.searcher.orderer.Clear()
}

// Perft counts the leaf nodes reachable from pos at the given depth, for
// move-generator verification.
func (e *Engine) Perft(pos *board.Position, depth int) uint64 {
	return Perft(pos, depth)
}

// Perft counts the leaf nodes reachable from pos at the given depth.
func Perft(pos *board.Position, depth int) uint64 {
	if depth == 0 {
		return 1
	}

	moves := pos.GenerateLegalMoves()
	if depth == 1 {
		return uint64(moves.Len())
	}

	var nodes uint64
	for i := 0; i < moves.Len(); i++ {
		pos.DoMove(moves.Get(i))
		nodes += Perft(pos, depth-1)
		pos.UndoMove()
	}

	return nodes
}

// Evaluate returns the static evaluation of a position using whichever
// evaluator (classical or NNUE) the engine currently has selected.
func (e *Engine) Evaluate(pos *board.Position) int {
	return e.searcher.evalFn(pos)
}

// ScoreToString converts a centipawn (or mate-distance) score to a
// human-readable string.
func ScoreToString(score int) string {
	if score > MateScore-100 {
		mateIn := (MateScore - score + 1) / 2
		return "Mate in " + itoa(mateIn)
	}
	if score < -MateScore+100 {
		mateIn := (MateScore + score + 1) / 2
		return "Mated in " + itoa(mateIn)
	}

	sign := ""
	if score < 0 {
		sign = "-"
		score = -score
	}
	pawns := score / 100
	centipawns := score % 100

	return sign + itoa(pawns) + "." + itoa(centipawns)
}

// itoa is a tiny integer-to-string helper, avoiding a fmt import for a
// single conversion.
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	if n < 0 {
		return "-" + itoa(-n)
	}
	s := ""
	for n > 0 {
		s = string('0'+byte(n%10)) + s
		n /= 10
	}
	return s
}
