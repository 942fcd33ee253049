// Package snapshot holds the aggregator currently served to queries.
//
// A Snapshot is never modified once stored. Refreshing data builds a new
// Snapshot and swaps the pointer, so a query that already holds the previous
// snapshot finishes against consistent data.
package snapshot

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/covid-series-service/internal/domain"
	"github.com/google/uuid"
)

// Snapshot is one immutable load of the three series.
type Snapshot struct {
	ID         uuid.UUID
	LoadedAt   time.Time
	Source     string
	Aggregator *domain.Aggregator
}

// New wraps an aggregator in a snapshot with a fresh ID.
func New(agg *domain.Aggregator, source string, loadedAt time.Time) *Snapshot {
	return &Snapshot{
		ID:         uuid.New(),
		LoadedAt:   loadedAt,
		Source:     source,
		Aggregator: agg,
	}
}

// Store publishes the current snapshot to concurrent readers.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Current returns the latest snapshot, or false before the first load.
func (s *Store) Current() (*Snapshot, bool) {
	snap := s.current.Load()
	return snap, snap != nil
}

// Swap installs snap and returns the snapshot it replaced, if any.
func (s *Store) Swap(snap *Snapshot) *Snapshot {
	return s.current.Swap(snap)
}

// CheckReadiness returns nil once a snapshot has been loaded.
func (s *Store) CheckReadiness(_ context.Context) error {
	if _, ok := s.Current(); !ok {
		return errors.New("no series snapshot loaded yet")
	}
	return nil
}
