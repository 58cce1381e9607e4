package review

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reqbridge/reqbridge/pkg/models"
)

func testRequirements() []models.Requirement {
	return []models.Requirement{
		{ID: "R1", Title: "User login", Priority: "Critical"},
		{ID: "R2", Title: "Password reset"},
	}
}

func TestPutTakeRoundTrip(t *testing.T) {
	store := NewDefaultStore()

	requirements := testRequirements()
	key := store.Put(requirements)
	require.NotEmpty(t, key)

	got, err := store.Take(key)
	require.NoError(t, err)
	assert.Equal(t, requirements, got)

	// Retrieval is destructive: a second take must miss.
	got, err = store.Take(key)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, store.Len())
}

func TestTakeUnknownKey(t *testing.T) {
	store := NewDefaultStore()

	_, err := store.Take("no-such-key")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPutGeneratesUniqueKeys(t *testing.T) {
	store := NewDefaultStore()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		key := store.Put(testRequirements())
		assert.False(t, seen[key], "duplicate key %s", key)
		seen[key] = true
	}
}

func TestPutCopiesRequirements(t *testing.T) {
	store := NewDefaultStore()

	requirements := testRequirements()
	key := store.Put(requirements)

	// Mutating the caller's slice must not leak into the stored entry.
	requirements[0].Title = "mutated"

	got, err := store.Take(key)
	require.NoError(t, err)
	assert.Equal(t, "User login", got[0].Title)
}

func TestConcurrentTakeExactlyOnce(t *testing.T) {
	store := NewDefaultStore()
	key := store.Put(testRequirements())

	const callers = 32

	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0
	misses := 0

	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := store.Take(key)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else {
				misses++
			}
		}()
	}

	close(start)
	wg.Wait()

	assert.Equal(t, 1, successes, "exactly one caller may win the take")
	assert.Equal(t, callers-1, misses)
}

func TestExpiredEntryIsNotFound(t *testing.T) {
	store := NewStore(time.Minute, DefaultCapacity)

	now := time.Now()
	store.now = func() time.Time { return now }
	key := store.Put(testRequirements())

	store.now = func() time.Time { return now.Add(2 * time.Minute) }

	_, err := store.Take(key)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPutEvictsExpiredEntries(t *testing.T) {
	store := NewStore(time.Minute, DefaultCapacity)

	now := time.Now()
	store.now = func() time.Time { return now }
	store.Put(testRequirements())
	store.Put(testRequirements())

	store.now = func() time.Time { return now.Add(2 * time.Minute) }
	fresh := store.Put(testRequirements())

	assert.Equal(t, 1, store.Len())

	_, err := store.Take(fresh)
	assert.NoError(t, err)
}

func TestCapacityEvictsOldest(t *testing.T) {
	store := NewStore(time.Hour, 2)

	now := time.Now()
	store.now = func() time.Time { return now }
	oldest := store.Put(testRequirements())

	store.now = func() time.Time { return now.Add(time.Second) }
	second := store.Put(testRequirements())

	store.now = func() time.Time { return now.Add(2 * time.Second) }
	third := store.Put(testRequirements())

	// Capacity is 2, so the oldest entry must have been evicted.
	_, err := store.Take(oldest)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Take(second)
	assert.NoError(t, err)
	_, err = store.Take(third)
	assert.NoError(t, err)
}
