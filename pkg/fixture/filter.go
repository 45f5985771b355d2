package fixture

import (
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/nspass/nspass-mockd/internal/matching"
)

// MatchKind selects how a filter compares a query value to a field.
type MatchKind int

const (
	// Contains is a case-insensitive substring match using Unicode case
	// folding.
	Contains MatchKind = iota
	// Equals is an exact string match, used for enums and foreign keys.
	Equals
)

// Field declares a filterable field of T and how to read it.
type Field[T any] struct {
	Name  string
	Kind  MatchKind
	Value func(T) string
}

// ContainsField declares a case-insensitive substring filter.
func ContainsField[T any](name string, value func(T) string) Field[T] {
	return Field[T]{Name: name, Kind: Contains, Value: value}
}

// EqualsField declares an exact-match filter.
func EqualsField[T any](name string, value func(T) string) Field[T] {
	return Field[T]{Name: name, Kind: Equals, Value: value}
}

// IDField declares an exact-match filter over an int64 field.
func IDField[T any](name string, value func(T) int64) Field[T] {
	return EqualsField(name, func(item T) string { return strconv.FormatInt(value(item), 10) })
}

// Fields is the ordered filter declaration of a resource.
type Fields[T any] []Field[T]

// Where builds a predicate from the query string. Fields are checked in
// declaration order and combined with AND. Empty values and undeclared
// query keys are ignored. A nil predicate means "match everything".
func (fs Fields[T]) Where(q url.Values) func(T) bool {
	type bound struct {
		field  Field[T]
		needle string
	}
	var active []bound
	for _, f := range fs {
		v, ok := matching.QueryValue(q, f.Name)
		if !ok {
			continue
		}
		if f.Kind == Contains {
			v = fold(v)
		}
		active = append(active, bound{field: f, needle: v})
	}
	if len(active) == 0 {
		return nil
	}
	return func(item T) bool {
		for _, b := range active {
			got := b.field.Value(item)
			switch b.field.Kind {
			case Contains:
				if !strings.Contains(fold(got), b.needle) {
					return false
				}
			default:
				if got != b.needle {
					return false
				}
			}
		}
		return true
	}
}

// Names returns the declared field names, in order.
func (fs Fields[T]) Names() []string {
	names := make([]string, len(fs))
	for i, f := range fs {
		names[i] = f.Name
	}
	return names
}

// And combines predicates; nil predicates are skipped.
func And[T any](preds ...func(T) bool) func(T) bool {
	var live []func(T) bool
	for _, p := range preds {
		if p != nil {
			live = append(live, p)
		}
	}
	if len(live) == 0 {
		return nil
	}
	return func(item T) bool {
		for _, p := range live {
			if !p(item) {
				return false
			}
		}
		return true
	}
}

// fold applies full Unicode case folding. Casers keep state, so a fresh
// one is used per call.
func fold(s string) string {
	return cases.Fold().String(s)
}
