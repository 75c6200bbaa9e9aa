package service

import (
	"slices"
	"sync"
)

// OwnerLocks is a keyed mutex over user IDs. It serializes the mutations
// that bind tasks to an owner with the deletion of that owner.
// Entries are reference counted and dropped once no goroutine holds or
// waits for them.
type OwnerLocks struct {
	mu    sync.Mutex
	locks map[int64]*ownerLock
}

type ownerLock struct {
	mu   sync.Mutex
	refs int
}

// NewOwnerLocks creates an empty lock table.
func NewOwnerLocks() *OwnerLocks {
	return &OwnerLocks{locks: make(map[int64]*ownerLock)}
}

// Lock blocks until the locks for every given owner are held and returns the
// function that releases them. IDs are locked in ascending order and
// duplicates are ignored, so two callers locking overlapping sets cannot
// deadlock.
func (l *OwnerLocks) Lock(ownerIDs ...int64) (unlock func()) {
	ids := slices.Compact(slices.Sorted(slices.Values(ownerIDs)))

	unlocks := make([]func(), 0, len(ids))
	for _, id := range ids {
		unlocks = append(unlocks, l.lockOne(id))
	}

	return func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}
}

func (l *OwnerLocks) lockOne(ownerID int64) func() {
	l.mu.Lock()
	ol, ok := l.locks[ownerID]
	if !ok {
		ol = &ownerLock{}
		l.locks[ownerID] = ol
	}
	ol.refs++
	l.mu.Unlock()

	ol.mu.Lock()

	return func() {
		ol.mu.Unlock()

		l.mu.Lock()
		ol.refs--
		if ol.refs == 0 {
			delete(l.locks, ownerID)
		}
		l.mu.Unlock()
	}
}

// size returns the number of live entries.
func (l *OwnerLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
