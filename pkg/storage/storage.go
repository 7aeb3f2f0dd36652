// Package storage keeps a history of conversions in a pebble database.
//
// Entries are keyed by their KSUID, which sorts by creation time, so
// iteration order is conversion order.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"
)

// ErrNotFound is returned when no entry has the requested id
var ErrNotFound = errors.New("conversion not found")

var (
	entryPrefix = []byte("conv/")
	entryEnd    = []byte("conv0") // first key after the prefix range
)

// Entry is the stored summary of one conversion
type Entry struct {
	ID           string        `json:"id"`
	Input        string        `json:"input"`
	Output       string        `json:"output,omitempty"`
	Status       string        `json:"status"`
	Error        string        `json:"error,omitempty"`
	Devices      int           `json:"devices"`
	Good         int           `json:"good"`
	Measurements int           `json:"measurements"`
	Records      int           `json:"records"`
	Bytes        int64         `json:"bytes"`
	Disposition  string        `json:"disposition,omitempty"`
	StartedAt    time.Time     `json:"started_at"`
	Duration     time.Duration `json:"duration_ns"`
}

// HistoryStore persists conversion entries
type HistoryStore struct {
	db *pebble.DB
}

// NewHistoryStore opens or creates the database in path
func NewHistoryStore(path string) (*HistoryStore, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	return &HistoryStore{db: db}, nil
}

func entryKey(id ksuid.KSUID) []byte {
	return append(append([]byte(nil), entryPrefix...), id.Bytes()...)
}

// Put stores e under id, replacing any previous entry
func (s *HistoryStore) Put(id ksuid.KSUID, e *Entry) error {
	e.ID = id.String()
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return s.db.Set(entryKey(id), data, pebble.Sync)
}

// Get returns the entry stored under id
func (s *HistoryStore) Get(id ksuid.KSUID) (*Entry, error) {
	data, closer, err := s.db.Get(entryKey(id))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("corrupt history entry %s: %w", id, err)
	}
	return &e, nil
}

// Recent returns up to limit entries, newest first. A limit of zero or less
// returns every entry.
func (s *HistoryStore) Recent(limit int) ([]*Entry, error) {
	iter, err := s.db.NewIter(&pebble.IterOptions{LowerBound: entryPrefix, UpperBound: entryEnd})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var entries []*Entry
	for valid := iter.Last(); valid; valid = iter.Prev() {
		if limit > 0 && len(entries) >= limit {
			break
		}
		var e Entry
		if err := json.Unmarshal(iter.Value(), &e); err != nil {
			return nil, fmt.Errorf("corrupt history entry: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, iter.Error()
}

// Delete removes the entry stored under id
func (s *HistoryStore) Delete(id ksuid.KSUID) error {
	return s.db.Delete(entryKey(id), pebble.Sync)
}

// Close closes the database
func (s *HistoryStore) Close() error {
	return s.db.Close()
}
