package state

import (
	"sync"
	"time"

	"github.com/five82/portview/internal/conn"
	"github.com/five82/portview/internal/source"
)

// Snapshot is the latest connection table available to readers.
type Snapshot struct {
	Connections         []conn.Connection
	Statistics          Statistics
	Origin              source.Origin
	Source              string
	Populated           bool // false until the first fetch settles
	Seq                 uint64
	LastUpdated         time.Time
	FetchDuration       time.Duration
	LastError           *source.FetchError
	ConsecutiveFailures int // Number of consecutive fetch failures
}

// IsFallback reports whether the rows are the synthetic fallback dataset.
func (s Snapshot) IsFallback() bool {
	return s.Origin == source.OriginFallback
}

// IsOffline returns true when the source has failed on several fetches in a row.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Update replaces the stored snapshot with res when seq is newer than the
// last applied sequence. It reports whether res was applied. A stale result
// from a slower, older fetch is discarded.
func (s *Store) Update(seq uint64, res source.Result) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshot.Populated && seq <= s.snapshot.Seq {
		return false
	}

	conns := conn.Clone(res.Connections)
	failures := 0
	if res.Err != nil {
		failures = s.snapshot.ConsecutiveFailures + 1
	}
	updated := res.FetchedAt
	if updated.IsZero() {
		updated = time.Now()
	}
	s.snapshot = Snapshot{
		Connections:         conns,
		Statistics:          ComputeStatistics(conns),
		Origin:              res.Origin,
		Source:              res.Source,
		Populated:           true,
		Seq:                 seq,
		LastUpdated:         updated,
		FetchDuration:       res.Duration,
		LastError:           cloneError(res.Err),
		ConsecutiveFailures: failures,
	}
	return true
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Connections = conn.Clone(s.snapshot.Connections)
	snap.LastError = cloneError(s.snapshot.LastError)
	return snap
}

// Populated reports whether any fetch has settled.
func (s *Store) Populated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.Populated
}

func cloneError(err *source.FetchError) *source.FetchError {
	if err == nil {
		return nil
	}
	dup := *err
	return &dup
}
