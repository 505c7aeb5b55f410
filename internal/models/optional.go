package models

import (
	"bytes"
	"encoding/json"
)

// Optional marks a patch field as present or absent, so an omitted field is
// never confused with one explicitly set to its zero value.
type Optional[T any] struct {
	value T
	set   bool
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// IsSet reports whether a value was provided.
func (o Optional[T]) IsSet() bool {
	return o.set
}

// Get returns the value and whether it was provided.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

// Or returns the value when provided and fallback otherwise.
func (o Optional[T]) Or(fallback T) T {
	if o.set {
		return o.value
	}
	return fallback
}

// UnmarshalJSON marks the field present whenever its key appears in the
// payload with a non-null value. A null leaves the field absent.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(data, &o.value); err != nil {
		return err
	}
	o.set = true
	return nil
}
