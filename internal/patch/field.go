// Package patch implements presence-aware partial updates of users and
// their profiles.
package patch

import (
	"bytes"
	"encoding/json"
)

// Field is a single member of a sparse patch document. It distinguishes a
// key that was never mentioned from one that was sent, even when the sent
// value is empty or null.
type Field[T any] struct {
	value T
	set   bool
	null  bool
}

// Set returns a present field holding v.
func Set[T any](v T) Field[T] {
	return Field[T]{value: v, set: true}
}

// Null returns a present field explicitly set to null.
func Null[T any]() Field[T] {
	return Field[T]{set: true, null: true}
}

func (f Field[T]) IsSet() bool  { return f.set }
func (f Field[T]) IsNull() bool { return f.set && f.null }
func (f Field[T]) Value() T     { return f.value }

// UnmarshalJSON only runs for keys present in the document, which is what
// marks the field as set.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		f.value = zero
		f.null = true
		return nil
	}
	f.null = false
	return json.Unmarshal(data, &f.value)
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.set || f.null {
		return []byte("null"), nil
	}
	return json.Marshal(f.value)
}
