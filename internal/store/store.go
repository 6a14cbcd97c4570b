// Package store provides a persistent, on-disk cache of search results
// keyed by position hash, so a later process can seed its transposition
// table with results from earlier analysis.
package store

import (
	"encoding/binary"
	"encoding/json"

	"github.com/dgraph-io/badger/v4"
	"github.com/nameless/chessplay/internal/board"
)

// Entry is a cached search result for one position. Type mirrors the
// transposition table's bound type (exact/lower/upper) -- a cached score
// with no bound type attached can't be probed correctly once reloaded.
type Entry struct {
	Move  board.Move `json:"move"`
	Score int        `json:"score"`
	Depth int        `json:"depth"`
	Type  uint8      `json:"type"`
}

// Store wraps an embedded key-value database for persisting Entry
// values indexed by Zobrist hash.
type Store struct {
	db *badger.DB
}

// Open opens (creating if necessary) a store rooted at dir.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func keyFor(hash uint64) []byte {
	var key [8]byte
	binary.BigEndian.PutUint64(key[:], hash)
	return key[:]
}

// Get returns the cached entry for hash, if present.
func (s *Store) Get(hash uint64) (Entry, bool) {
	var entry Entry
	found := false

	_ = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(keyFor(hash))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		err = item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		})
		if err == nil {
			found = true
		}
		return err
	})

	return entry, found
}

// Put stores entry under hash. Put only
// overwrites an existing entry when the new one reflects at least as
// deep a search, so a shallow probe never evicts a deeper cached result.
func (s *Store) Put(hash uint64, entry Entry) error {
	if existing, ok := s.Get(hash); ok && existing.Depth > entry.Depth {
		return nil
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(keyFor(hash), data)
	})
}

// All reads up to limit cached entries (0 means no limit) in a single
// transaction, keyed by Zobrist hash. The engine uses this to warm-start
// its transposition table from a previous session's analysis.
func (s *Store) All(limit int) (map[uint64]Entry, error) {
	entries := make(map[uint64]Entry)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if limit > 0 && len(entries) >= limit {
				break
			}

			item := it.Item()
			key := item.KeyCopy(nil)
			if len(key) != 8 {
				continue
			}
			hash := binary.BigEndian.Uint64(key)

			var entry Entry
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			}); err != nil {
				return err
			}
			entries[hash] = entry
		}
		return nil
	})

	return entries, err
}

// Flush forces pending writes to be persisted to disk.
func (s *Store) Flush() error {
	return s.db.Sync()
}
