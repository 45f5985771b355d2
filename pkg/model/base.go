package model

import (
	"bytes"
	"encoding/json"
	"slices"
	"time"
)

// Base holds the fields shared by every stored resource.
type Base struct {
	ID        int64     `json:"id" yaml:"id"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt,omitempty"`
}

// GetID returns the record id.
func (b Base) GetID() int64 { return b.ID }

// GetBase returns the shared fields.
func (b Base) GetBase() Base { return b }

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return slices.Clone(s)
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// Nullable is a patch field that tells an explicit null apart from an
// absent key. Set is true whenever the key was present.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

// Null returns a present field holding null.
func Null[T any]() Nullable[T] { return Nullable[T]{Set: true} }

// Some returns a present field holding v.
func Some[T any](v T) Nullable[T] { return Nullable[T]{Set: true, Value: &v} }

// UnmarshalJSON implements json.Unmarshaler.
func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	n.Value = nil
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

// MarshalJSON implements json.Marshaler.
func (n Nullable[T]) MarshalJSON() ([]byte, error) {
	if n.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*n.Value)
}
