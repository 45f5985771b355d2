package id

import (
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
)

// Sequence hands out monotonically increasing ids.
// The zero value starts at 1.
type Sequence struct {
	last atomic.Int64
}

// NewSequence returns a sequence whose first Next call yields start.
// A start below 1 is treated as 1.
func NewSequence(start int64) *Sequence {
	s := &Sequence{}
	s.Reset(start)
	return s
}

// Next returns the next id.
func (s *Sequence) Next() int64 {
	return s.last.Add(1)
}

// Peek returns the id the next call to Next will yield without consuming it.
func (s *Sequence) Peek() int64 {
	return s.last.Load() + 1
}

// Reset rewinds the sequence so the next id is start.
func (s *Sequence) Reset(start int64) {
	if start < 1 {
		start = 1
	}
	s.last.Store(start - 1)
}

// NextAfter returns the starting point for a sequence that must not collide
// with any of the given ids: max(ids)+1, or 1 for an empty set.
func NextAfter(ids []int64) int64 {
	var highest int64
	for _, v := range ids {
		if v > highest {
			highest = v
		}
	}
	return highest + 1
}

// UUID generates a random (v4) UUID string.
func UUID() string {
	return uuid.NewString()
}

// Token generates a 32 character lowercase hex token, suitable for server
// agent tokens and subscription links.
func Token() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Short generates an 8 character lowercase hex code, used for invite codes.
func Short() string {
	return Token()[:8]
}
