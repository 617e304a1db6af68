package alert

import (
	"errors"
	"fmt"
	"sync"
)

// Deduplicator decides novelty against the durable store. The existence
// check and the insert for a key are serialized behind one mutex, so no two
// goroutines of this process can race on the same key. An in-run seen set
// short-circuits keys already handled this run without a store round-trip.
type Deduplicator struct {
	store Store
	mu    sync.Mutex
	seen  map[string]struct{}
}

func NewDeduplicator(store Store) *Deduplicator {
	return &Deduplicator{store: store, seen: make(map[string]struct{})}
}

// CheckAndInsert persists the record when its key is novel and reports the
// decision. A duplicate (seen this run, found in the store, or lost insert
// race) returns false with no error.
func (d *Deduplicator) CheckAndInsert(rec Record) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[rec.Key]; ok {
		return false, nil
	}

	exists, err := d.store.Exists(rec.Key)
	if err != nil {
		return false, fmt.Errorf("failed to check alert key: %w", err)
	}
	if exists {
		d.seen[rec.Key] = struct{}{}
		return false, nil
	}

	if err := d.store.Insert(rec); err != nil {
		// Another process may have inserted the key between our check and
		// this insert; that is a duplicate, not a failure.
		if errors.Is(err, ErrDuplicateKey) {
			d.seen[rec.Key] = struct{}{}
			return false, nil
		}
		return false, fmt.Errorf("failed to insert alert record: %w", err)
	}

	d.seen[rec.Key] = struct{}{}
	return true, nil
}
