package callcodec

// Result carries either a decoded on-chain value or an explicit "unavailable" marker.
// Call sites pick their documented default through Or instead of relying on zero values.
type Result[T any] struct {
	value T
	ok    bool
}

// Some wraps an available value.
func Some[T any](v T) Result[T] {
	return Result[T]{value: v, ok: true}
}

// None returns an unavailable result.
func None[T any]() Result[T] {
	return Result[T]{}
}

// Get returns the value and whether it is available.
func (r Result[T]) Get() (T, bool) {
	return r.value, r.ok
}

// Valid reports whether a value is available.
func (r Result[T]) Valid() bool {
	return r.ok
}

// Or returns the value, or def when unavailable.
func (r Result[T]) Or(def T) T {
	if !r.ok {
		return def
	}
	return r.value
}
