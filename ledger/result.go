package ledger

// Result is the two-variant outcome wrapper returned by every facade
// operation: success carrying a value, or failure carrying a cause.
// Callers branch on the variant; there is no unwrap-or-panic path.
type Result[T any] struct {
	value T
	err   error
}

// Success wraps a value in a successful Result.
func Success[T any](value T) Result[T] {
	return Result[T]{value: value}
}

// Failure wraps a cause in a failed Result.
func Failure[T any](err error) Result[T] {
	return Result[T]{err: err}
}

func (r Result[T]) IsSuccess() bool { return r.err == nil }
func (r Result[T]) IsFailure() bool { return r.err != nil }

// Value returns the wrapped value, or the zero value on failure.
func (r Result[T]) Value() T { return r.value }

// Err returns the failure cause, or nil on success.
func (r Result[T]) Err() error { return r.err }

// Unpack returns both variants at once for callers that prefer the
// conventional (value, error) shape.
func (r Result[T]) Unpack() (T, error) { return r.value, r.err }
