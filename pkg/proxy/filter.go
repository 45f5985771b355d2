package proxy

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Filter decides which request paths skip interception. Patterns use
// doublestar syntax: "*" matches within one segment and "**" across
// segments.
type Filter struct {
	patterns []string
}

// NewFilter validates patterns and returns a Filter. Empty patterns are
// ignored.
func NewFilter(patterns []string) (*Filter, error) {
	f := &Filter{}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid bypass pattern %q: %w", p, doublestar.ErrBadPattern)
		}
		f.patterns = append(f.patterns, p)
	}
	return f, nil
}

// Patterns returns the active patterns.
func (f *Filter) Patterns() []string {
	if f == nil {
		return nil
	}
	return append([]string(nil), f.patterns...)
}

// Match reports the first pattern that matches path.
func (f *Filter) Match(path string) (string, bool) {
	if f == nil {
		return "", false
	}
	for _, p := range f.patterns {
		if ok, _ := doublestar.Match(p, path); ok {
			return p, true
		}
	}
	return "", false
}
