package rates

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// ErrStaleGeneration is returned when a load finishes after a newer one.
var ErrStaleGeneration = errors.New("stale snapshot generation")

// Store holds the latest committed Snapshot. Readers never observe a
// partially loaded set of tables.
type Store struct {
	mu         sync.Mutex
	current    atomic.Pointer[Snapshot]
	committed  uint64
	generation uint64
}

// NewStore returns an empty store. Current is nil until the first Commit.
func NewStore() *Store {
	return &Store{}
}

// Begin reserves the generation number for a new load.
func (s *Store) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	return s.generation
}

// Commit publishes snap if gen is newer than the committed generation.
func (s *Store) Commit(gen uint64, snap *Snapshot) error {
	if snap == nil {
		return fmt.Errorf("refusing to commit nil snapshot")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen <= s.committed {
		return fmt.Errorf("%w: %d, committed %d", ErrStaleGeneration, gen, s.committed)
	}
	s.committed = gen
	s.current.Store(snap)
	return nil
}

// Current returns the latest committed snapshot, or nil.
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// Generation returns the committed generation.
func (s *Store) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.committed
}
