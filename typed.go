package state

import "encoding/json"

// Key is a typed descriptor for one table entry. It is the primary typed
// path over the untyped table: declare keys once, read and write them
// without assertions at call sites.
//
//	count := state.NewKey[int]("count")
//	_ = count.Set(container, 3)
//	n, ok := count.Get(container)
type Key[T any] struct {
	name string
}

// NewKey declares a typed key for name.
func NewKey[T any](name string) Key[T] {
	return Key[T]{name: name}
}

// Name returns the underlying table key.
func (k Key[T]) Name() string {
	return k.name
}

// Get reads the key. The boolean is false when the key is absent or holds a
// value that cannot be represented as T.
func (k Key[T]) Get(c *Container) (T, bool) {
	raw, ok := c.Get(k.name)
	if !ok {
		var zero T
		return zero, false
	}
	return coerce[T](raw)
}

// Set writes the key through the full mutation protocol.
func (k Key[T]) Set(c *Container, value T) error {
	return c.Set(k.name, value)
}

// Subscribe registers fn for typed change notifications on the key. Values
// that cannot be represented as T are dropped; removal delivers the zero
// value with present=false.
func (k Key[T]) Subscribe(c *Container, fn func(value T, present bool)) func() {
	return c.Subscribe(k.name, func(raw any, present bool) {
		if !present {
			var zero T
			fn(zero, false)
			return
		}
		if value, ok := coerce[T](raw); ok {
			fn(value, true)
		}
	})
}

// coerce converts raw to T, tolerating the numeric widening JSON round trips
// introduce: float64 (default decoding) and json.Number both map onto the
// common numeric targets.
func coerce[T any](raw any) (T, bool) {
	if value, ok := raw.(T); ok {
		return value, true
	}
	var zero T
	target := any(&zero)
	switch number := raw.(type) {
	case float64:
		switch p := target.(type) {
		case *int:
			*p = int(number)
			return zero, true
		case *int64:
			*p = int64(number)
			return zero, true
		case *float32:
			*p = float32(number)
			return zero, true
		}
	case json.Number:
		switch p := target.(type) {
		case *int:
			if n, err := number.Int64(); err == nil {
				*p = int(n)
				return zero, true
			}
		case *int64:
			if n, err := number.Int64(); err == nil {
				*p = n
				return zero, true
			}
		case *float64:
			if f, err := number.Float64(); err == nil {
				*p = f
				return zero, true
			}
		case *string:
			*p = number.String()
			return zero, true
		}
	}
	var miss T
	return miss, false
}
