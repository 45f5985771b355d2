package fixture

import (
	"errors"
	"sync"
	"time"

	"github.com/nspass/nspass-mockd/internal/id"
	"github.com/nspass/nspass-mockd/pkg/model"
)

// ErrNotFound is returned by Update when no record has the given id.
var ErrNotFound = errors.New("record not found")

// Entity is implemented by every stored model type.
type Entity[T any] interface {
	GetID() int64
	GetBase() model.Base
	WithBase(b model.Base) T
	Clone() T
}

// UniqueFunc reports a conflict between a candidate record and an existing
// one. It returns nil when the two may coexist.
type UniqueFunc[T any] func(candidate, existing T) error

// Collection is an ordered, concurrency-safe list of records.
type Collection[T Entity[T]] struct {
	mu     sync.RWMutex
	name   string
	label  string
	items  []T
	seed   []T
	seq    *id.Sequence
	unique UniqueFunc[T]
	now    func() time.Time
}

// NewCollection creates a collection holding a deep copy of seed.
// Seed records without timestamps are stamped with the current time.
func NewCollection[T Entity[T]](name, label string, seed []T, now func() time.Time) *Collection[T] {
	if now == nil {
		now = time.Now
	}
	stamp := now().UTC()
	stamped := make([]T, 0, len(seed))
	for _, item := range seed {
		b := item.GetBase()
		if b.CreatedAt.IsZero() {
			b.CreatedAt = stamp
		}
		if b.UpdatedAt.IsZero() {
			b.UpdatedAt = b.CreatedAt
		}
		stamped = append(stamped, item.WithBase(b).Clone())
	}

	c := &Collection[T]{
		name:  name,
		label: label,
		seed:  stamped,
		seq:   id.NewSequence(1),
		now:   now,
	}
	c.resetLocked()
	return c
}

// WithUnique installs the conflict check run by Insert and Update.
func (c *Collection[T]) WithUnique(fn UniqueFunc[T]) *Collection[T] {
	c.mu.Lock()
	c.unique = fn
	c.mu.Unlock()
	return c
}

// Name returns the resource key, e.g. "users".
func (c *Collection[T]) Name() string { return c.name }

// Label returns the display name used in error messages, e.g. "用户".
func (c *Collection[T]) Label() string { return c.label }

// All returns deep copies of every record in insertion order.
func (c *Collection[T]) All() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, len(c.items))
	for i, item := range c.items {
		out[i] = item.Clone()
	}
	return out
}

// Count returns the number of records.
func (c *Collection[T]) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Get returns the record with the given id.
func (c *Collection[T]) Get(recordID int64) (T, bool) {
	return c.Find(func(item T) bool { return item.GetID() == recordID })
}

// Find returns the first record satisfying pred.
func (c *Collection[T]) Find(pred func(T) bool) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, item := range c.items {
		if pred(item) {
			return item.Clone(), true
		}
	}
	var zero T
	return zero, false
}

// Filter returns deep copies of every record satisfying pred.
func (c *Collection[T]) Filter(pred func(T) bool) []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, 0)
	for _, item := range c.items {
		if pred == nil || pred(item) {
			out = append(out, item.Clone())
		}
	}
	return out
}

// Insert assigns the next id and fresh timestamps to item and appends it.
// Any id or timestamps already set on item are ignored.
func (c *Collection[T]) Insert(item T) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkUniqueLocked(item, 0); err != nil {
		var zero T
		return zero, err
	}

	now := c.now().UTC()
	item = item.WithBase(model.Base{ID: c.seq.Next(), CreatedAt: now, UpdatedAt: now}).Clone()
	c.items = append(c.items, item)
	return item.Clone(), nil
}

// Update applies mutate to a copy of the record and stores the result.
// The id and createdAt survive whatever mutate does, and updatedAt is
// refreshed. An error from mutate or the unique check leaves the record
// untouched.
func (c *Collection[T]) Update(recordID int64, mutate func(*T) error) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	idx := c.indexLocked(recordID)
	if idx < 0 {
		return zero, ErrNotFound
	}

	orig := c.items[idx].GetBase()
	next := c.items[idx].Clone()
	if mutate != nil {
		if err := mutate(&next); err != nil {
			return zero, err
		}
	}
	next = next.WithBase(model.Base{ID: orig.ID, CreatedAt: orig.CreatedAt, UpdatedAt: c.now().UTC()})

	if err := c.checkUniqueLocked(next, orig.ID); err != nil {
		return zero, err
	}
	c.items[idx] = next
	return next.Clone(), nil
}

// UpdateAll applies mutate to every record and keeps the ones for which it
// returns true. It does not refresh updatedAt and returns the number of
// records changed.
func (c *Collection[T]) UpdateAll(mutate func(*T) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	changed := 0
	for i := range c.items {
		next := c.items[i].Clone()
		if mutate(&next) {
			c.items[i] = next.WithBase(c.items[i].GetBase())
			changed++
		}
	}
	return changed
}

// Remove deletes the record with the given id and reports whether it existed.
func (c *Collection[T]) Remove(recordID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.indexLocked(recordID)
	if idx < 0 {
		return false
	}
	c.items = append(c.items[:idx], c.items[idx+1:]...)
	return true
}

// Reset restores the seed records and rewinds the id counter.
func (c *Collection[T]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
}

// List filters and paginates the collection without mutating it.
func (c *Collection[T]) List(q ListQuery[T]) Page[T] {
	return Paginate(c.Filter(q.Where), q.Page, q.PageSize)
}

func (c *Collection[T]) resetLocked() {
	c.items = make([]T, len(c.seed))
	ids := make([]int64, len(c.seed))
	for i, item := range c.seed {
		c.items[i] = item.Clone()
		ids[i] = item.GetID()
	}
	c.seq.Reset(id.NextAfter(ids))
}

func (c *Collection[T]) indexLocked(recordID int64) int {
	for i, item := range c.items {
		if item.GetID() == recordID {
			return i
		}
	}
	return -1
}

func (c *Collection[T]) checkUniqueLocked(candidate T, selfID int64) error {
	if c.unique == nil {
		return nil
	}
	for _, existing := range c.items {
		if selfID != 0 && existing.GetID() == selfID {
			continue
		}
		if err := c.unique(candidate, existing); err != nil {
			return err
		}
	}
	return nil
}
