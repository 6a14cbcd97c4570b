package engine

import (
	"github.com/nameless/chessplay/internal/board"
)

// TTFlag indicates the type of bound stored in the transposition table.
type TTFlag uint8

const (
	TTExact      TTFlag = iota // Exact score
	TTLowerBound               // Failed high (beta cutoff), a lower bound
	TTUpperBound               // Failed low, an upper bound
)

// ttEntries is the fixed bucket count: 2^19 buckets of ttWidth slots
// each, matching the original engine's transposition_entries constant.
const (
	ttEntries = 1 << 19
	ttWidth   = 4
	ttMask    = ttEntries - 1
)

// ttNode is one slot of a bucket.
type ttNode struct {
	hash       uint64
	bestMove   board.Move
	value      int32
	depth      int8
	flag       TTFlag
	generation uint16
}

// TranspositionTable is a fixed-size, 4-way-bucketed hash table for
// caching search results, indexed by zobrist % ttEntries. Replacement
// first prefers an empty or stale-generation slot with the shallowest
// depth in the bucket; only when every slot is from the current
// generation does it fall back to evicting the shallowest entry
// outright.
type TranspositionTable struct {
	buckets    [ttEntries][ttWidth]ttNode
	generation uint16

	hits   uint64
	probes uint64
}

// NewTranspositionTable creates the transposition table. The size is
// fixed at compile time (matching the original engine's static
// allocation); the sizeMB parameter is accepted for command-line
// compatibility but otherwise unused.
func NewTranspositionTable(sizeMB int) *TranspositionTable {
	return &TranspositionTable{}
}

// Probe looks up hash in the table. value is only meaningful given the
// caller's current alpha/beta/depth window, mirroring
// search_transposition_get_value: an exact score is always usable, a
// lower bound only if it already meets beta, an upper bound only if it
// already fails alpha.
func (tt *TranspositionTable) Probe(hash uint64, alpha, beta, depth int) (value int, found bool) {
	tt.probes++
	bucket := &tt.buckets[hash&ttMask]
	for i := range bucket {
		node := &bucket[i]
		if node.hash != hash || int(node.depth) < depth {
			continue
		}
		switch node.flag {
		case TTExact:
			tt.hits++
			return int(node.value), true
		case TTUpperBound:
			if int(node.value) <= alpha {
				tt.hits++
				return int(node.value), true
			}
		case TTLowerBound:
			if int(node.value) >= beta {
				tt.hits++
				return int(node.value), true
			}
		}
	}
	return 0, false
}

// BestMove returns the best move stored for hash, or board.NoMove if
// hash has no entry in its bucket -- usable for move ordering even when
// Probe's depth/window test fails.
func (tt *TranspositionTable) BestMove(hash uint64) board.Move {
	bucket := &tt.buckets[hash&ttMask]
	for i := range bucket {
		if bucket[i].hash == hash {
			return bucket[i].bestMove
		}
	}
	return board.NoMove
}

// Store saves a search result, skipping depths below 1 and values at or
// beyond ±MateScore. Mate-distance scores are stored once the caller
// has converted them with AdjustScoreToTT.
func (tt *TranspositionTable) Store(hash uint64, depth, value int, flag TTFlag, bestMove board.Move) {
	if depth < 1 || value >= MateScore || value <= -MateScore {
		return
	}

	bucket := &tt.buckets[hash&ttMask]

	for i := range bucket {
		if bucket[i].hash == hash {
			// A MOVE_NULL store (e.g. from a fail-low node that never
			// raised alpha) must not clobber a move already known for
			// this position -- only a genuine new move replaces it.
			newMove := bestMove
			if newMove == board.NoMove {
				newMove = bucket[i].bestMove
			}
			tt.write(&bucket[i], hash, depth, value, flag, newMove)
			return
		}
	}

	var target *ttNode
	shallowest := 999
	for i := range bucket {
		node := &bucket[i]
		if node.generation != tt.generation && int(node.depth) < shallowest {
			shallowest = int(node.depth)
			target = node
		}
	}
	if target == nil {
		shallowest = 999
		for i := range bucket {
			node := &bucket[i]
			if int(node.depth) < shallowest {
				shallowest = int(node.depth)
				target = node
			}
		}
	}
	tt.write(target, hash, depth, value, flag, bestMove)
}

func (tt *TranspositionTable) write(node *ttNode, hash uint64, depth, value int, flag TTFlag, bestMove board.Move) {
	node.hash = hash
	node.depth = int8(depth)
	node.generation = tt.generation
	node.value = int32(value)
	node.bestMove = bestMove
	node.flag = flag
}

// NewSearch bumps the generation counter, making every existing entry
// eligible for eviction ahead of entries from the search about to start.
func (tt *TranspositionTable) NewSearch() {
	tt.generation++
}

// Clear empties every bucket.
func (tt *TranspositionTable) Clear() {
	tt.buckets = [ttEntries][ttWidth]ttNode{}
	tt.generation = 0
	tt.hits = 0
	tt.probes = 0
}

// HashFull returns the permille of sampled buckets with a current-
// generation entry.
func (tt *TranspositionTable) HashFull() int {
	const sample = 1000
	used := 0
	for i := 0; i < sample; i++ {
		for _, node := range tt.buckets[i] {
			if node.depth > 0 && node.generation == tt.generation {
				used++
				break
			}
		}
	}
	return used
}

// HitRate returns the cache hit rate as a percentage.
func (tt *TranspositionTable) HitRate() float64 {
	if tt.probes == 0 {
		return 0
	}
	return float64(tt.hits) / float64(tt.probes) * 100
}

// Size returns the number of buckets in the table.
func (tt *TranspositionTable) Size() uint64 {
	return ttEntries
}

// TTRecord is a single populated transposition-table entry, exposed for
// persisting the table to (and reloading it from) the analysis cache.
type TTRecord struct {
	Hash     uint64
	Depth    int
	Value    int
	Flag     TTFlag
	BestMove board.Move
}

// Snapshot returns every populated entry in the table (depth > 0 marks a
// slot as used, the same test HashFull uses), for the analysis
// cache to persist.
func (tt *TranspositionTable) Snapshot() []TTRecord {
	var out []TTRecord
	for i := range tt.buckets {
		for j := range tt.buckets[i] {
			node := &tt.buckets[i][j]
			if node.depth == 0 {
				continue
			}
			out = append(out, TTRecord{
				Hash:     node.hash,
				Depth:    int(node.depth),
				Value:    int(node.value),
				Flag:     node.flag,
				BestMove: node.bestMove,
			})
		}
	}
	return out
}

// AdjustScoreFromTT converts a mate score read from the table (stored
// distance-from-root-independent) into a distance-from-current-ply score.
func AdjustScoreFromTT(score int, ply int) int {
	if score > MateScore-MaxPly {
		return score - ply
	}
	if score < -MateScore+MaxPly {
		return score + ply
	}
	return score
}

// AdjustScoreToTT is the inverse of AdjustScoreFromTT, applied before storing.
func AdjustScoreToTT(score int, ply int) int {
	if score > MateScore-MaxPly {
		return score + ply
	}
	if score < -MateScore+MaxPly {
		return score - ply
	}
	return score
}
