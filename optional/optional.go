// Package optional provides a value which may or may not be set.
package optional

// Optional holds a value of type T together with whether it was ever set. The
// zero value is an unset Optional.
type Optional[T any] struct {
	value T
	set   bool
}

// Of returns an Optional which is set to v.
func Of[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// Set stores v and marks the optional as set.
func (o *Optional[T]) Set(v T) {
	o.value = v
	o.set = true
}

// Get returns the stored value. It returns the zero value of T when the
// optional is not set, so callers should check HasValue first.
func (o Optional[T]) Get() T {
	return o.value
}

// HasValue returns true if Set was called.
func (o Optional[T]) HasValue() bool {
	return o.set
}

// Reset clears the stored value.
func (o *Optional[T]) Reset() {
	var zero T
	o.value = zero
	o.set = false
}
