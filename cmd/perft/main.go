// Command perft counts leaf nodes of the legal move tree to a fixed
// depth, for move-generator verification against known node counts.
package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/nameless/chessplay/internal/board"
	"github.com/nameless/chessplay/internal/engine"
)

func main() {
	if len(os.Args) < 2 || len(os.Args) > 3 {
		fmt.Println("Usage: perft depth [fen]")
		os.Exit(1)
	}

	depth, err := strconv.Atoi(os.Args[1])
	if err != nil || depth < 1 {
		fmt.Printf("Invalid depth: %s\n", os.Args[1])
		os.Exit(1)
	}

	var pos *board.Position
	if len(os.Args) == 3 {
		pos, err = board.ParseFEN(os.Args[2])
		if err != nil {
			fmt.Printf("Invalid FEN: %v\n", err)
			os.Exit(1)
		}
	} else {
		pos = board.NewPosition()
	}

	fmt.Printf("initial zobrist %016x\n", pos.Hash())

	start := time.Now()
	nodes := engine.Perft(pos, depth)
	elapsed := time.Since(start)

	fmt.Printf("final zobrist %016x\n%d nodes\n", pos.Hash(), nodes)
	fmt.Printf("Completed in %.2f seconds\n", elapsed.Seconds())
}
