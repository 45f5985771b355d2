package requestlog

import (
	"strconv"
	"sync"
	"time"

	"github.com/nspass/nspass-mockd/internal/id"
)

// DefaultCapacity is used when NewMemoryStore gets a non-positive size.
const DefaultCapacity = 200

// MemoryStore is a Store backed by a FIFO buffer of fixed capacity.
type MemoryStore struct {
	mu       sync.RWMutex
	entries  []*Entry
	capacity int
	seq      *id.Sequence
}

// NewMemoryStore creates a MemoryStore holding at most capacity entries.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemoryStore{
		entries:  make([]*Entry, 0, capacity),
		capacity: capacity,
		seq:      id.NewSequence(1),
	}
}

// Capacity returns the maximum number of entries kept.
func (s *MemoryStore) Capacity() int { return s.capacity }

// Log implements Logger. The oldest entry is evicted at capacity.
func (s *MemoryStore) Log(entry *Entry) {
	if entry == nil {
		return
	}
	if entry.ID == "" {
		entry.ID = "req-" + strconv.FormatInt(s.seq.Next(), 10)
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.entries) >= s.capacity {
		copy(s.entries, s.entries[1:])
		s.entries = s.entries[:len(s.entries)-1]
	}
	s.entries = append(s.entries, entry)
}

// Get implements Store.
func (s *MemoryStore) Get(entryID string) *Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.entries {
		if e.ID == entryID {
			c := *e
			return &c
		}
	}
	return nil
}

// List implements Store. Returned entries are copies.
func (s *MemoryStore) List(filter *Filter) []*Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Entry, 0, len(s.entries))
	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		if filter != nil && !filter.matches(e) {
			continue
		}
		c := *e
		result = append(result, &c)
	}

	if filter != nil {
		if filter.Offset > 0 {
			if filter.Offset >= len(result) {
				return []*Entry{}
			}
			result = result[filter.Offset:]
		}
		if filter.Limit > 0 && filter.Limit < len(result) {
			result = result[:filter.Limit]
		}
	}
	return result
}

// Clear implements Store.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = s.entries[:0]
}

// Count implements Store.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
