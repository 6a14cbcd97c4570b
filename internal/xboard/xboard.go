// Package xboard implements the xboard protocol subset the engine
// speaks as an external collaborator: enough of the Chess Engine
// Communication Protocol for a GUI to drive the search over
// stdin/stdout.
package xboard

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/nameless/chessplay/internal/board"
	"github.com/nameless/chessplay/internal/engine"
)

// XBoard implements the recognized xboard command subset: xboard, new,
// quit, force, go, setboard, result, level, _print, and bare move
// strings.
type XBoard struct {
	engine   *engine.Engine
	position *board.Position

	// positionHashes carries the played-out game history for
	// repetition detection across the search horizon.
	positionHashes []uint64

	forceMode bool

	// level settings, parsed from "level M B I" (moves-per-session,
	// base time, increment); used only to size each move's time budget.
	movesPerSession int
	baseTime        time.Duration
	increment       time.Duration

	searching     bool
	searchDone    chan struct{}
	stopRequested atomic.Bool
}

// New creates an xboard protocol handler wired to eng.
func New(eng *engine.Engine) *XBoard {
	return &XBoard{
		engine:         eng,
		position:       board.NewPosition(),
		positionHashes: []uint64{board.NewPosition().Hash()},
		baseTime:       5 * time.Minute,
	}
}

// Run reads commands from stdin until "quit" or EOF.
func (x *XBoard) Run() {
	scanner := bufio.NewScanner(os.Stdin)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		cmd := fields[0]
		args := fields[1:]

		switch cmd {
		case "xboard":
			x.handleXboard()
		case "new":
			x.handleNew()
		case "quit":
			x.handleStop()
			return
		case "force":
			x.forceMode = true
		case "go":
			x.handleGo()
		case "setboard":
			x.handleSetBoard(strings.Join(args, " "))
		case "result":
			x.handleStop()
			x.forceMode = true
		case "level":
			x.handleLevel(args)
		case "_print":
			fmt.Println(x.position.String())
		default:
			x.handleMove(cmd)
		}
	}
}

// handleXboard announces protocol feature support, per the engine's
// fixed capability set (no Chess960, no pondering, no time protocol
// beyond "level").
func (x *XBoard) handleXboard() {
	fmt.Println(`feature colors=0 setboard=1 time=0 sigint=0 sigterm=0 variants="normal" done=1`)
}

// handleNew resets to the starting position and clears search state.
func (x *XBoard) handleNew() {
	x.handleStop()
	x.engine.Clear()
	x.position = board.NewPosition()
	x.positionHashes = []uint64{x.position.Hash()}
	x.forceMode = false
}

// handleSetBoard replaces the current position with fenStr.
func (x *XBoard) handleSetBoard(fenStr string) {
	pos, err := board.ParseFEN(fenStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Illegal position: %v\n", err)
		return
	}
	x.position = pos
	x.positionHashes = []uint64{pos.Hash()}
}

// handleLevel parses "level <moves-per-session> <base-minutes[:seconds]> <increment-seconds>".
func (x *XBoard) handleLevel(args []string) {
	if len(args) < 3 {
		return
	}

	moves, _ := strconv.Atoi(args[0])
	x.movesPerSession = moves

	base := args[1]
	var minutes, seconds int
	if strings.Contains(base, ":") {
		parts := strings.SplitN(base, ":", 2)
		minutes, _ = strconv.Atoi(parts[0])
		seconds, _ = strconv.Atoi(parts[1])
	} else {
		minutes, _ = strconv.Atoi(base)
	}
	x.baseTime = time.Duration(minutes)*time.Minute + time.Duration(seconds)*time.Second

	incSeconds, _ := strconv.Atoi(args[2])
	x.increment = time.Duration(incSeconds) * time.Second
}

// handleMove parses moveStr as a move in the current position and, if
// legal, applies it. Outside force mode, the engine replies with its
// own move.
func (x *XBoard) handleMove(moveStr string) {
	move := parseMove(x.position, moveStr)
	if move == board.NoMove {
		fmt.Fprintf(os.Stderr, "Illegal move: %s\n", moveStr)
		return
	}

	x.position.DoMove(move)
	x.positionHashes = append(x.positionHashes, x.position.Hash())

	if !x.forceMode {
		x.think()
	}
}

// handleGo takes the engine out of force mode and has it move
// immediately for the side to move.
func (x *XBoard) handleGo() {
	x.forceMode = false
	x.think()
}

// think runs a search on the current position and plays the result.
func (x *XBoard) think() {
	if x.position.IsCheckmate() || x.position.IsStalemate() {
		return
	}

	limits := engine.SearchLimits{MoveTime: x.moveBudget()}

	x.searching = true
	x.stopRequested.Store(false)
	x.searchDone = make(chan struct{})

	x.engine.OnInfo = func(info engine.SearchInfo) {
		x.sendSearchDebugLine(info)
	}

	go func() {
		defer close(x.searchDone)

		move := x.engine.Search(x.position, limits, x.positionHashes)
		x.searching = false

		if move == board.NoMove {
			return
		}

		x.position.DoMove(move)
		x.positionHashes = append(x.positionHashes, x.position.Hash())
		fmt.Printf("move %s\n", move.String())
	}()
}

// moveBudget derives a per-move time allocation from the last "level"
// command, defaulting to a flat budget when none was given.
func (x *XBoard) moveBudget() time.Duration {
	if x.movesPerSession <= 0 {
		return x.baseTime / 30
	}
	return x.baseTime/time.Duration(x.movesPerSession) + x.increment
}

// sendSearchDebugLine prints one line per completed iterative-deepening
// depth: "depth value centiseconds nodes pv...".
func (x *XBoard) sendSearchDebugLine(info engine.SearchInfo) {
	var pv []string
	for _, m := range info.PV {
		pv = append(pv, m.String())
	}

	fmt.Printf("%d\t%d\t%d\t%d\t%s\n",
		info.Depth, info.Score, info.Time.Milliseconds()/10, info.Nodes, strings.Join(pv, " "))
}

// handleStop stops an in-flight search, waiting for it to unwind.
func (x *XBoard) handleStop() {
	if x.searching {
		x.stopRequested.Store(true)
		x.engine.Stop()
		<-x.searchDone
	}
}

// parseMove converts a wire-format move ("e2e4", "a7a8q") to the
// matching legal board.Move in pos, or board.NoMove if none matches.
func parseMove(pos *board.Position, moveStr string) board.Move {
	if len(moveStr) < 4 {
		return board.NoMove
	}

	fromFile := int(moveStr[0] - 'a')
	fromRank := int(moveStr[1] - '1')
	toFile := int(moveStr[2] - 'a')
	toRank := int(moveStr[3] - '1')
	if fromFile < 0 || fromFile > 7 || fromRank < 0 || fromRank > 7 ||
		toFile < 0 || toFile > 7 || toRank < 0 || toRank > 7 {
		return board.NoMove
	}

	from := board.NewSquare(fromFile, fromRank)
	to := board.NewSquare(toFile, toRank)

	var promo board.PieceType
	if len(moveStr) == 5 {
		switch moveStr[4] {
		case 'q':
			promo = board.Queen
		case 'r':
			promo = board.Rook
		case 'b':
			promo = board.Bishop
		case 'n':
			promo = board.Knight
		}
	}

	moves := pos.GenerateLegalMoves()
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		if m.From() != from || m.To() != to {
			continue
		}
		if promo != 0 {
			if m.IsPromotion() && m.Promoted() == promo {
				return m
			}
			continue
		}
		if !m.IsPromotion() {
			return m
		}
	}

	return board.NoMove
}
