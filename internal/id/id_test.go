package id

import (
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequence_StartsAtGivenValue(t *testing.T) {
	s := NewSequence(5)
	assert.Equal(t, int64(5), s.Peek())
	assert.Equal(t, int64(5), s.Next())
	assert.Equal(t, int64(6), s.Next())
}

func TestSequence_ZeroValueStartsAtOne(t *testing.T) {
	var s Sequence
	assert.Equal(t, int64(1), s.Next())
}

func TestSequence_ResetBelowOne(t *testing.T) {
	s := NewSequence(10)
	s.Next()
	s.Reset(-3)
	assert.Equal(t, int64(1), s.Next())
}

func TestSequence_ConcurrentNextIsUnique(t *testing.T) {
	s := NewSequence(1)
	const workers, perWorker = 8, 200

	var mu sync.Mutex
	seen := make(map[int64]bool, workers*perWorker)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				v := s.Next()
				mu.Lock()
				seen[v] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, workers*perWorker)
}

func TestNextAfter(t *testing.T) {
	tests := []struct {
		name string
		ids  []int64
		want int64
	}{
		{"empty", nil, 1},
		{"contiguous", []int64{1, 2, 3}, 4},
		{"gaps", []int64{7, 2, 40}, 41},
		{"negative only", []int64{-4}, 1},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextAfter(tt.ids))
		})
	}
}

func TestUUID_Format(t *testing.T) {
	re := regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)
	assert.Regexp(t, re, UUID())
}

func TestToken_Format(t *testing.T) {
	tok := Token()
	require.Len(t, tok, 32)
	assert.Regexp(t, `^[0-9a-f]{32}$`, tok)
	assert.NotEqual(t, tok, Token())
}

func TestShort_Format(t *testing.T) {
	assert.Regexp(t, `^[0-9a-f]{8}$`, Short())
}
