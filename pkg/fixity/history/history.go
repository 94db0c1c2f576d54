// Package history keeps an audit trail of baseline and verify runs in a
// Badger database. It records what each run found; the baseline itself
// lives only in the snapshot file.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/jamesainslie/fixity/pkg/fixity/types"
)

// Key prefixes.
const (
	prefixRun = "r:" // r:<unix nanos, zero padded>:<id> -> Entry JSON
	prefixID  = "i:" // i:<id> -> run key
)

// ErrNotFound is returned when no entry has the requested ID.
var ErrNotFound = errors.New("history entry not found")

// Operation identifies the kind of run.
type Operation string

// Operation types.
const (
	OpBaseline Operation = "baseline"
	OpVerify   Operation = "verify"
)

// Entry is one recorded run.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Operation Operation `json:"operation"`
	Root      string    `json:"root"`
	Baseline  string    `json:"baseline"`

	// Files is the number of files baselined, or examined during verification.
	Files    int  `json:"files"`
	Matches  bool `json:"matches"`
	Added    int  `json:"added"`
	Modified int  `json:"modified"`
	Deleted  int  `json:"deleted"`
	Skipped  int  `json:"skipped"`

	BytesHashed int64         `json:"bytes_hashed"`
	Elapsed     time.Duration `json:"elapsed"`

	// Changes lists the changed paths of a verify run.
	Changes []Change `json:"changes,omitempty"`
}

// Change is a single classified path in a verify run.
type Change struct {
	Kind string `json:"kind"`
	Path string `json:"path"`
}

// FromBaseline builds an entry describing a baseline run.
func FromBaseline(res *types.BaselineResult, baselinePath string) *Entry {
	return &Entry{
		Operation:   OpBaseline,
		Root:        res.Root,
		Baseline:    baselinePath,
		Files:       res.Count,
		Matches:     true,
		Skipped:     len(res.Skipped),
		BytesHashed: res.BytesHashed,
		Elapsed:     res.Elapsed,
	}
}

// FromReport builds an entry describing a verify run.
func FromReport(r *types.ChangeReport, baselinePath string) *Entry {
	e := &Entry{
		Operation:   OpVerify,
		Root:        r.Root,
		Baseline:    baselinePath,
		Files:       len(r.Added) + len(r.Modified) + r.Unchanged,
		Matches:     r.Matches,
		Added:       len(r.Added),
		Modified:    len(r.Modified),
		Deleted:     len(r.Deleted),
		Skipped:     len(r.Skipped),
		BytesHashed: r.BytesHashed,
		Elapsed:     r.Elapsed,
	}
	for _, p := range r.Added {
		e.Changes = append(e.Changes, Change{Kind: "added", Path: p})
	}
	for _, m := range r.Modified {
		e.Changes = append(e.Changes, Change{Kind: "modified", Path: m.Path})
	}
	for _, p := range r.Deleted {
		e.Changes = append(e.Changes, Change{Kind: "deleted", Path: p})
	}
	return e
}

// Store is the history database.
type Store struct {
	db *badger.DB
}

// Open opens or creates the history database in dir.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func runKey(ts time.Time, id string) []byte {
	return []byte(fmt.Sprintf("%s%020d:%s", prefixRun, ts.UnixNano(), id))
}

// Record stores e, filling in its ID and Timestamp when unset.
func (s *Store) Record(e *Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal history entry: %w", err)
	}

	key := runKey(e.Timestamp, e.ID)
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(key, data); err != nil {
			return err
		}
		return txn.Set([]byte(prefixID+e.ID), key)
	})
}

// List returns entries newest first. A limit of zero or less returns all.
func (s *Store) List(limit int) ([]Entry, error) {
	entries := []Entry{}

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(prefixRun)
		seek := append([]byte(prefixRun), 0xFF)
		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			var e Entry
			if err := it.Item().Value(func(v []byte) error {
				return json.Unmarshal(v, &e)
			}); err != nil {
				continue
			}
			entries = append(entries, e)
			if limit > 0 && len(entries) >= limit {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}
	return entries, nil
}

// Get returns the entry with the given ID.
func (s *Store) Get(id string) (*Entry, error) {
	if id == "" {
		return nil, errors.New("entry ID cannot be empty")
	}

	var e Entry
	err := s.db.View(func(txn *badger.Txn) error {
		idItem, err := txn.Get([]byte(prefixID + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		if err != nil {
			return err
		}

		key, err := idItem.ValueCopy(nil)
		if err != nil {
			return err
		}

		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			return json.Unmarshal(v, &e)
		})
	})
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Cleanup removes entries older than retentionDays and returns how many
// were removed. A non-positive retention keeps everything.
func (s *Store) Cleanup(retentionDays int) (int, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	return s.deleteBefore(time.Now().AddDate(0, 0, -retentionDays))
}

func (s *Store) deleteBefore(cutoff time.Time) (int, error) {
	var stale []Entry

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(prefixRun)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var e Entry
			if err := it.Item().Value(func(v []byte) error {
				return json.Unmarshal(v, &e)
			}); err != nil {
				continue
			}
			if !e.Timestamp.Before(cutoff) {
				break
			}
			stale = append(stale, e)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("scanning history: %w", err)
	}

	if len(stale) == 0 {
		return 0, nil
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, e := range stale {
		if err := wb.Delete(runKey(e.Timestamp, e.ID)); err != nil {
			return 0, err
		}
		if err := wb.Delete([]byte(prefixID + e.ID)); err != nil {
			return 0, err
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, fmt.Errorf("deleting history: %w", err)
	}
	return len(stale), nil
}
