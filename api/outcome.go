package api

import "fmt"

// ErrorKind classifies why a weather request produced no data
type ErrorKind int

const (
	NetworkError  ErrorKind = iota // DNS, connection, timeout or cancellation
	AuthError                      // HTTP 401
	NotFoundError                  // HTTP 404
	APIError                       // any other non-200 status
	DecodeError                    // 200 with a body that is not the expected JSON
)

func (k ErrorKind) String() string {
	switch k {
	case NetworkError:
		return "network"
	case AuthError:
		return "auth"
	case NotFoundError:
		return "not_found"
	case APIError:
		return "api"
	case DecodeError:
		return "decode"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// FetchError is the Err arm of an Outcome. Message is meant to be shown to
// the user as-is.
type FetchError struct {
	Kind       ErrorKind
	StatusCode int    // HTTP status, zero for network errors
	Message    string // Human-readable message
	Err        error  // Underlying cause, if any
}

func (e *FetchError) Error() string {
	return e.Message
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Outcome holds either a value or a *FetchError, never both. Build one with
// Ok or Fail; callers branch on IsOk (or Get) before touching the value.
type Outcome[T any] struct {
	value T
	err   *FetchError
}

// Ok wraps a successful result
func Ok[T any](value T) Outcome[T] {
	return Outcome[T]{value: value}
}

// Fail wraps a failed result
func Fail[T any](err *FetchError) Outcome[T] {
	if err == nil {
		err = &FetchError{Kind: APIError, Message: "unknown error"}
	}
	return Outcome[T]{err: err}
}

// IsOk reports whether the outcome carries a value
func (o Outcome[T]) IsOk() bool {
	return o.err == nil
}

// Get returns the value, or the zero value and the error
func (o Outcome[T]) Get() (T, error) {
	if o.err != nil {
		var zero T
		return zero, o.err
	}
	return o.value, nil
}

// Value returns the value; it is the zero value for a failed outcome
func (o Outcome[T]) Value() T {
	return o.value
}

// Err returns the failure, nil for a successful outcome
func (o Outcome[T]) Err() *FetchError {
	return o.err
}

// Message returns the failure message, empty for a successful outcome
func (o Outcome[T]) Message() string {
	if o.err == nil {
		return ""
	}
	return o.err.Message
}
