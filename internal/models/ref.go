package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Identified is implemented by every entity that can appear behind a Ref.
type Identified interface {
	GetID() string
}

// Ref is a reference field that the backend sends either as a bare
// identifier or as the populated object.
type Ref[T Identified] struct {
	id  string
	obj *T
}

// RefID builds a reference that only knows the identifier.
func RefID[T Identified](id string) Ref[T] {
	return Ref[T]{id: id}
}

// RefObject builds a reference holding the expanded object.
func RefObject[T Identified](v T) Ref[T] {
	return Ref[T]{id: v.GetID(), obj: &v}
}

// IsExpanded reports whether the backend populated the referenced object.
func (r Ref[T]) IsExpanded() bool {
	return r.obj != nil
}

// IsZero reports whether the reference is empty.
func (r Ref[T]) IsZero() bool {
	return r.id == "" && r.obj == nil
}

// ResolveID returns the identifier regardless of the reference shape.
func ResolveID[T Identified](r Ref[T]) string {
	if r.obj != nil {
		if id := (*r.obj).GetID(); id != "" {
			return id
		}
	}
	return r.id
}

// ResolveObject returns the expanded object, or a zero value when only the
// identifier is known.
func ResolveObject[T Identified](r Ref[T]) T {
	if r.obj != nil {
		return *r.obj
	}
	var zero T
	return zero
}

// UnmarshalJSON accepts null, a string id, or an object.
func (r *Ref[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*r = Ref[T]{}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	switch data[0] {
	case '"':
		return json.Unmarshal(data, &r.id)
	case '{':
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("decode expanded reference: %w", err)
		}
		r.obj = &v
		r.id = v.GetID()
		return nil
	default:
		return fmt.Errorf("reference must be a string or an object, got %s", data)
	}
}

// MarshalJSON writes the object when expanded, the id otherwise.
func (r Ref[T]) MarshalJSON() ([]byte, error) {
	if r.obj != nil {
		return json.Marshal(r.obj)
	}
	if r.id == "" {
		return []byte("null"), nil
	}
	return json.Marshal(r.id)
}
