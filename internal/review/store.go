// Package review holds extraction results between the moment they are
// shown to a human and the moment the human confirms ticket creation.
package review

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/reqbridge/reqbridge/internal/logging"
	"github.com/reqbridge/reqbridge/pkg/models"
)

// ErrNotFound indicates the key is unknown, expired, or was already consumed.
var ErrNotFound = errors.New("pending review not found")

// Defaults used by NewDefaultStore. Orphaned entries (a review shown to a
// human who never confirms) accumulate for the life of the process, so the
// store bounds growth with a TTL and a capacity cap.
const (
	DefaultTTL      = time.Hour
	DefaultCapacity = 1000
)

type entry struct {
	requirements []models.Requirement
	createdAt    time.Time
}

// Store is an in-memory mapping from opaque keys to pending requirement
// lists. It is the only shared mutable state in the pipeline; Put and Take
// are atomic under concurrent access.
type Store struct {
	mu       sync.Mutex
	entries  map[string]entry
	ttl      time.Duration
	capacity int

	now func() time.Time
}

// NewStore creates a store with the given entry TTL and capacity cap.
func NewStore(ttl time.Duration, capacity int) *Store {
	return &Store{
		entries:  make(map[string]entry),
		ttl:      ttl,
		capacity: capacity,
		now:      time.Now,
	}
}

// NewDefaultStore creates a store with the default TTL and capacity.
func NewDefaultStore() *Store {
	return NewStore(DefaultTTL, DefaultCapacity)
}

// Put stores a copy of the requirement list under a fresh random key and
// returns the key. Keys are 128-bit UUIDs, so collision with a live key is
// negligible.
func (s *Store) Put(requirements []models.Requirement) string {
	key := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictLocked()

	s.entries[key] = entry{
		requirements: append([]models.Requirement(nil), requirements...),
		createdAt:    s.now(),
	}

	return key
}

// Take atomically removes and returns the entry for key. It returns
// ErrNotFound if the key is absent, expired, or was already consumed.
// Under concurrent Take calls racing on the same key, exactly one caller
// succeeds.
func (s *Store) Take(key string) ([]models.Requirement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, ErrNotFound
	}

	delete(s.entries, key)

	if s.ttl > 0 && s.now().Sub(e.createdAt) > s.ttl {
		return nil, ErrNotFound
	}

	return e.requirements, nil
}

// Len returns the number of live entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// evictLocked drops expired entries, then the oldest entries if the store
// is still at capacity. Callers must hold s.mu.
func (s *Store) evictLocked() {
	if s.ttl > 0 {
		cutoff := s.now().Add(-s.ttl)
		for key, e := range s.entries {
			if e.createdAt.Before(cutoff) {
				delete(s.entries, key)
			}
		}
	}

	evicted := 0
	for s.capacity > 0 && len(s.entries) >= s.capacity {
		oldestKey := ""
		var oldest time.Time
		for key, e := range s.entries {
			if oldestKey == "" || e.createdAt.Before(oldest) {
				oldestKey = key
				oldest = e.createdAt
			}
		}
		delete(s.entries, oldestKey)
		evicted++
	}

	if evicted > 0 {
		logging.Warn("evicted pending reviews at capacity", "count", evicted)
	}
}
