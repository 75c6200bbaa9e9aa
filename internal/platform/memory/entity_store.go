package memory

import (
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/phrazzld/taskhub/internal/store"
)

// Entity is implemented by pointer types the EntityStore can hold.
type Entity[V any] interface {
	GetID() int64
	SetID(id int64)
	GetCreatedAt() time.Time
	MarkCreated(at time.Time)
	MarkUpdated(at time.Time)
	Clone() V
}

// ConflictCheck inspects one stored value while the store's write lock is
// held and returns a non-nil error to abort the pending write.
type ConflictCheck[V any] func(existing V) error

// Option configures an EntityStore or a repository built on one.
type Option func(*options)

type options struct {
	clock func() time.Time
}

// WithClock overrides the time source used for CreatedAt/UpdatedAt.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{clock: func() time.Time { return time.Now().UTC() }}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// EntityStore is a thread-safe keyed collection with monotonic ID allocation.
// The zero value is not usable; create one with NewEntityStore.
type EntityStore[V Entity[V]] struct {
	mu     sync.RWMutex
	items  map[int64]V
	lastID int64
	now    func() time.Time
}

// NewEntityStore creates an empty store whose first allocated ID is 1.
func NewEntityStore[V Entity[V]](opts ...Option) *EntityStore[V] {
	o := buildOptions(opts)
	return &EntityStore[V]{
		items: make(map[int64]V),
		now:   o.clock,
	}
}

// Insert stores a copy of v under a newly allocated ID and returns a copy of
// the stored value. It fails with store.ErrIDAlreadyAssigned if v carries an
// ID that is already present.
func (s *EntityStore[V]) Insert(v V) (V, error) {
	return s.InsertChecked(v)
}

// InsertChecked is Insert with conflict checks. Each check is run against
// every stored value, in order, under the same lock as the insertion; the
// first error aborts the insert and is returned unchanged.
func (s *EntityStore[V]) InsertChecked(v V, checks ...ConflictCheck[V]) (V, error) {
	var zero V

	s.mu.Lock()
	defer s.mu.Unlock()

	if id := v.GetID(); id != 0 {
		if _, ok := s.items[id]; ok {
			return zero, fmt.Errorf("%w: %d", store.ErrIDAlreadyAssigned, id)
		}
	}

	if err := s.checkLocked(0, checks); err != nil {
		return zero, err
	}

	s.lastID++
	stored := v.Clone()
	stored.SetID(s.lastID)
	stored.MarkCreated(s.now())
	s.items[s.lastID] = stored

	return stored.Clone(), nil
}

// Update replaces the value stored under v's ID, keeping the original
// CreatedAt and refreshing UpdatedAt. It fails with store.ErrNotFound if the
// ID is not present.
func (s *EntityStore[V]) Update(v V) (V, error) {
	return s.UpdateChecked(v)
}

// UpdateChecked is Update with conflict checks. The value being replaced is
// excluded from the checks.
func (s *EntityStore[V]) UpdateChecked(v V, checks ...ConflictCheck[V]) (V, error) {
	var zero V

	s.mu.Lock()
	defer s.mu.Unlock()

	id := v.GetID()
	existing, ok := s.items[id]
	if !ok {
		return zero, store.ErrNotFound
	}

	if err := s.checkLocked(id, checks); err != nil {
		return zero, err
	}

	stored := v.Clone()
	stored.MarkCreated(existing.GetCreatedAt())
	stored.MarkUpdated(s.now())
	s.items[id] = stored

	return stored.Clone(), nil
}

// checkLocked runs checks over every stored value except skipID in ascending
// ID order. The caller must hold the write lock.
func (s *EntityStore[V]) checkLocked(skipID int64, checks []ConflictCheck[V]) error {
	if len(checks) == 0 {
		return nil
	}
	ids := s.sortedIDsLocked()
	for _, check := range checks {
		for _, id := range ids {
			if id == skipID {
				continue
			}
			if err := check(s.items[id]); err != nil {
				return err
			}
		}
	}
	return nil
}

// Remove deletes the value stored under id and reports whether it existed.
func (s *EntityStore[V]) Remove(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return false
	}
	delete(s.items, id)
	return true
}

// Get returns a copy of the value stored under id.
func (s *EntityStore[V]) Get(id int64) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.items[id]
	if !ok {
		var zero V
		return zero, false
	}
	return v.Clone(), true
}

// List returns a snapshot of every stored value in ascending ID order.
func (s *EntityStore[V]) List() []V {
	return s.Find(nil)
}

// Find returns copies of the values for which match reports true, in
// ascending ID order. A nil match selects everything.
func (s *EntityStore[V]) Find(match func(V) bool) []V {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]V, 0, len(s.items))
	for _, id := range s.sortedIDsLocked() {
		v := s.items[id]
		if match == nil || match(v) {
			out = append(out, v.Clone())
		}
	}
	return out
}

// Count returns the number of stored values.
func (s *EntityStore[V]) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// CountWhere returns the number of stored values matching match.
func (s *EntityStore[V]) CountWhere(match func(V) bool) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, v := range s.items {
		if match(v) {
			n++
		}
	}
	return n
}

// RemoveWhere deletes every value matching match under a single write lock
// and returns how many were removed. A concurrent insert of a matching value
// that completes after the sweep is not removed.
func (s *EntityStore[V]) RemoveWhere(match func(V) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, v := range s.items {
		if match(v) {
			delete(s.items, id)
			n++
		}
	}
	return n
}

func (s *EntityStore[V]) sortedIDsLocked() []int64 {
	return slices.Sorted(maps.Keys(s.items))
}
