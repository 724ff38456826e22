// Package ledger keeps a local history of collection runs: which families
// were uploaded, how many rows each held, and which uploads failed.
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/google/btree"
	"go.etcd.io/bbolt"

	"github.com/yairfalse/ocitally/internal/emitter"
)

// Bucket names in bbolt
var (
	bucketRuns = []byte("runs")
	bucketMeta = []byte("meta")
)

var keyRevision = []byte("current_revision")

// ErrNotFound is returned when no run matches.
var ErrNotFound = errors.New("run not found")

// Entry is one recorded run.
type Entry struct {
	Revision int64           `json:"revision"`
	Summary  emitter.Summary `json:"summary"`
}

// Ledger stores run summaries in bbolt with an in-memory revision index.
type Ledger struct {
	mu sync.RWMutex

	index *btree.BTreeG[*Entry]
	db    *bbolt.DB

	currentRev int64
}

// Open opens or creates the ledger database at path.
func Open(path string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create ledger directory: %w", err)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open ledger %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, bucket := range [][]byte{bucketRuns, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init ledger buckets: %w", err)
	}

	l := &Ledger{
		index: btree.NewG[*Entry](32, func(a, b *Entry) bool {
			return a.Revision < b.Revision
		}),
		db: db,
	}
	if err := l.load(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return l, nil
}

// Close closes the database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Record stores a run summary under the next revision.
func (l *Ledger) Record(s emitter.Summary) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rev := l.currentRev + 1
	entry := &Entry{Revision: rev, Summary: s}
	value, err := json.Marshal(entry)
	if err != nil {
		return 0, fmt.Errorf("encode run %s: %w", s.RunID, err)
	}

	err = l.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketRuns).Put(revisionKey(rev), value); err != nil {
			return err
		}
		return tx.Bucket(bucketMeta).Put(keyRevision, []byte(strconv.FormatInt(rev, 10)))
	})
	if err != nil {
		return 0, fmt.Errorf("record run %s: %w", s.RunID, err)
	}

	l.currentRev = rev
	l.index.ReplaceOrInsert(entry)
	return rev, nil
}

// List returns up to limit runs, newest first. A limit of zero or less
// returns every run.
func (l *Ledger) List(limit int) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []Entry
	l.index.Descend(func(e *Entry) bool {
		out = append(out, *e)
		return limit <= 0 || len(out) < limit
	})
	return out
}

// Get returns the run with the given run id.
func (l *Ledger) Get(runID string) (Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var found *Entry
	l.index.Descend(func(e *Entry) bool {
		if e.Summary.RunID == runID {
			found = e
			return false
		}
		return true
	})
	if found == nil {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	return *found, nil
}

// Previous returns the run recorded just before rev.
func (l *Ledger) Previous(rev int64) (Entry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var prev *Entry
	l.index.DescendLessOrEqual(&Entry{Revision: rev - 1}, func(e *Entry) bool {
		prev = e
		return false
	})
	if prev == nil {
		return Entry{}, false
	}
	return *prev, true
}

// CurrentRevision returns the latest revision.
func (l *Ledger) CurrentRevision() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.currentRev
}

// Compact drops all but the newest keep runs.
func (l *Ledger) Compact(keep int) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.currentRev - int64(keep)
	if keep < 0 || cutoff <= 0 {
		return 0, nil
	}

	var drop []*Entry
	l.index.AscendLessThan(&Entry{Revision: cutoff + 1}, func(e *Entry) bool {
		drop = append(drop, e)
		return true
	})
	if len(drop) == 0 {
		return 0, nil
	}

	err := l.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketRuns)
		for _, e := range drop {
			if err := bucket.Delete(revisionKey(e.Revision)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("compact ledger: %w", err)
	}

	for _, e := range drop {
		l.index.Delete(e)
	}
	return len(drop), nil
}

// load restores the revision counter and rebuilds the index from disk.
func (l *Ledger) load() error {
	return l.db.View(func(tx *bbolt.Tx) error {
		if data := tx.Bucket(bucketMeta).Get(keyRevision); data != nil {
			rev, err := strconv.ParseInt(string(data), 10, 64)
			if err != nil {
				return fmt.Errorf("corrupt ledger revision %q: %w", data, err)
			}
			l.currentRev = rev
		}

		return tx.Bucket(bucketRuns).ForEach(func(k, v []byte) error {
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				return fmt.Errorf("decode run %s: %w", k, err)
			}
			l.index.ReplaceOrInsert(&e)
			return nil
		})
	})
}

func revisionKey(rev int64) []byte {
	return []byte(fmt.Sprintf("%016d", rev))
}
