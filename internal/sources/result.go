package sources

// Result is the outcome of a provider call. Providers never return
// errors to their callers: a failed call is Empty, a successful call is
// Ok, even when the data itself is an empty list.
type Result[T any] struct {
	value T
	ok    bool
}

func Ok[T any](v T) Result[T] {
	return Result[T]{value: v, ok: true}
}

func Empty[T any]() Result[T] {
	return Result[T]{}
}

// Get returns the value and whether the call succeeded.
func (r Result[T]) Get() (T, bool) {
	return r.value, r.ok
}

func (r Result[T]) IsEmpty() bool {
	return !r.ok
}

// OrZero returns the value, or the zero value for Empty.
func (r Result[T]) OrZero() T {
	return r.value
}
