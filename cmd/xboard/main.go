// Command xboard runs the engine behind the xboard protocol subset
// described in SPEC_FULL.md §6, for use by a GUI or scripted opponent.
package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/nameless/chessplay/internal/engine"
	"github.com/nameless/chessplay/internal/xboard"
)

func main() {
	hashMB := flag.Int("hash", 64, "transposition table size in MB (accepted but ignored: the table size is fixed)")
	nnueWeights := flag.String("nnue", "", "NNUE weights file (classical evaluation if empty)")
	cacheDir := flag.String("cache", "", "persistent position-analysis cache directory (disabled if empty)")
	seedLimit := flag.Int("cache-seed-limit", 200000, "maximum cached entries to seed into the transposition table at startup")
	flushInterval := flag.Duration("cache-flush-interval", 5*time.Minute, "how often to persist the transposition table to the analysis cache")
	flag.Parse()

	eng := engine.NewEngine(*hashMB)

	if *nnueWeights != "" {
		if err := eng.LoadNNUE(*nnueWeights); err != nil {
			log.Printf("NNUE weights not loaded: %v (using classical evaluation)", err)
		} else {
			eng.SetUseNNUE(true)
		}
	}

	var stopFlush chan struct{}
	if *cacheDir != "" {
		if err := eng.OpenCache(*cacheDir); err != nil {
			log.Printf("analysis cache not opened: %v", err)
		} else {
			if n, err := eng.SeedCache(*seedLimit); err != nil {
				log.Printf("analysis cache seed failed: %v", err)
			} else if n > 0 {
				log.Printf("[engine] seeded %d cached entries into the transposition table", n)
			}

			stopFlush = make(chan struct{})
			go func() {
				ticker := time.NewTicker(*flushInterval)
				defer ticker.Stop()
				for {
					select {
					case <-ticker.C:
						if n, err := eng.FlushCache(); err != nil {
							log.Printf("analysis cache flush failed: %v", err)
						} else if n > 0 {
							log.Printf("[engine] flushed %d entries to the analysis cache", n)
						}
					case <-stopFlush:
						return
					}
				}
			}()
		}
	}

	protocol := xboard.New(eng)
	protocol.Run()

	if stopFlush != nil {
		close(stopFlush)
		if _, err := eng.FlushCache(); err != nil {
			log.Printf("analysis cache flush failed: %v", err)
		}
	}
	if err := eng.CloseCache(); err != nil {
		log.Printf("analysis cache close failed: %v", err)
	}
	os.Exit(0)
}
