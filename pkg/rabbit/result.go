package rabbit

type resultState int

const (
	resultEmpty resultState = iota
	resultOK
	resultFailed
)

// Result is the outcome of a lookup that may legitimately find nothing.
// It is in one of three states: a value, empty (the server answered 404 on
// an optional lookup), or failed with an underlying *Error. An empty result
// may retain the not-found error that produced it without counting as a
// failure.
type Result[T any] struct {
	state resultState
	value T
	cause *Error
}

// OK returns a Result holding a value.
func OK[T any](value T) Result[T] {
	return Result[T]{state: resultOK, value: value}
}

// EmptyResult returns a Result holding no value and no error.
func EmptyResult[T any]() Result[T] {
	return Result[T]{state: resultEmpty}
}

// NotFoundResult returns an empty Result that retains the not-found error
// which produced it. MustGet re-raises the retained error.
func NotFoundResult[T any](err error) Result[T] {
	return Result[T]{state: resultEmpty, cause: WrapError(err)}
}

// FailedResult returns a Result carrying a failure.
func FailedResult[T any](err error) Result[T] {
	return Result[T]{state: resultFailed, cause: WrapError(err)}
}

// Present reports whether the result holds a value.
func (r Result[T]) Present() bool {
	return r.state == resultOK
}

// Get returns the value and whether one is present.
func (r Result[T]) Get() (T, bool) {
	return r.value, r.state == resultOK
}

// MustGet returns the value or the error behind its absence. A failed or
// not-found result returns its retained error; a plain empty result returns
// ErrNoValue.
func (r Result[T]) MustGet() (T, error) {
	var zero T

	switch {
	case r.state == resultOK:
		return r.value, nil
	case r.cause != nil:
		return zero, r.cause
	default:
		return zero, ErrNoValue
	}
}

// Err returns the failure carried by the result, or nil. Empty results are
// not failures even when they retain a not-found cause.
func (r Result[T]) Err() *Error {
	if r.state != resultFailed {
		return nil
	}

	return r.cause
}
