package rabbit

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a failure produced by the client.
type ErrorKind string

const (
	// ErrorKindTransport covers DNS, connect, timeout, and other I/O
	// failures raised before a response was received.
	ErrorKindTransport ErrorKind = "transport"

	// ErrorKindStatusMismatch means the server answered with a status
	// outside the tolerance band of the expected status.
	ErrorKindStatusMismatch ErrorKind = "status_mismatch"

	// ErrorKindAuthorization means the response failed the secret token
	// check, distinct from an HTTP-level 401/403.
	ErrorKindAuthorization ErrorKind = "authorization"

	// ErrorKindDecode means the response body did not match the expected
	// schema.
	ErrorKindDecode ErrorKind = "decode"

	// ErrorKindInvalidArgument means the caller passed a bad identifier or
	// parameter; raised before any network call and never wrapped.
	ErrorKindInvalidArgument ErrorKind = "invalid_argument"
)

// Error is the single error type surfaced by every client operation. The
// original cause, when there is one, is reachable through errors.Unwrap.
type Error struct {
	Kind           ErrorKind
	Message        string
	StatusCode     int
	ExpectedStatus int
	Body           []byte

	cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.cause.Error())
	}

	return string(e.Kind)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// Static errors that can be wrapped with context.
var (
	ErrNoValue           = errors.New("no value present")
	ErrConfigRequired    = errors.New("config is required")
	ErrBaseURLRequired   = errors.New("base URL is required")
	ErrTokenRequired     = errors.New("token is required")
	ErrPasswordRequired  = errors.New("either password or reset password must be set")
	ErrScopesRequired    = errors.New("scopes cannot be empty")
	ErrUserRefRequired   = errors.New("cannot determine ID or username from user reference")
	ErrInvalidEmail      = errors.New("email address is not valid")
	ErrPagerExhausted    = errors.New("pager is exhausted")
	ErrRateLimitExceeded = errors.New("client-side rate limit exceeded")
)

// NewTransportError wraps a low-level I/O failure.
func NewTransportError(cause error) *Error {
	return &Error{Kind: ErrorKindTransport, cause: cause}
}

// NewStatusError reports an actual status outside the tolerance band of the
// expected status. The raw body is attached so callers can inspect the full
// response.
func NewStatusError(expected, actual int, body []byte) *Error {
	msg := fmt.Sprintf("expected status %d but got %d (%s)",
		expected, actual, http.StatusText(actual))

	if serverMsg := messageFromBody(body); serverMsg != "" {
		msg += ": " + serverMsg
	}

	return &Error{
		Kind:           ErrorKindStatusMismatch,
		Message:        msg,
		StatusCode:     actual,
		ExpectedStatus: expected,
		Body:           body,
	}
}

// NewNotFoundError reports a lookup that matched nothing, either a 404
// response or an empty filtered listing. IsNotFound recognizes it.
func NewNotFoundError(message string) *Error {
	return &Error{
		Kind:           ErrorKindStatusMismatch,
		Message:        message,
		StatusCode:     http.StatusNotFound,
		ExpectedStatus: http.StatusOK,
	}
}

// NewAuthorizationError reports a secret token mismatch.
func NewAuthorizationError(message string) *Error {
	return &Error{Kind: ErrorKindAuthorization, Message: message}
}

// NewDecodeError wraps a JSON decoding failure.
func NewDecodeError(cause error) *Error {
	return &Error{Kind: ErrorKindDecode, cause: cause}
}

// NewInvalidArgumentError wraps a caller mistake detected before any network
// call. The sentinel remains reachable through errors.Is.
func NewInvalidArgumentError(cause error) *Error {
	return &Error{Kind: ErrorKindInvalidArgument, Message: cause.Error(), cause: cause}
}

// InvalidArgumentf builds an invalid-argument error from a format string.
func InvalidArgumentf(format string, args ...any) *Error {
	return &Error{Kind: ErrorKindInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// WrapError normalizes err into *Error, passing through errors that already
// are one.
func WrapError(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}

	return NewTransportError(err)
}

// AsError returns err as *Error when it is one.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}

	return nil, false
}

// IsNotFound checks if the error is a not-found response.
func IsNotFound(err error) bool {
	apiErr, ok := AsError(err)

	return ok && apiErr.Kind == ErrorKindStatusMismatch && apiErr.StatusCode == http.StatusNotFound
}

// IsUnauthorized checks if the error is a 401 response or a secret token
// failure.
func IsUnauthorized(err error) bool {
	apiErr, ok := AsError(err)
	if !ok {
		return false
	}

	if apiErr.Kind == ErrorKindAuthorization {
		return true
	}

	return apiErr.Kind == ErrorKindStatusMismatch && apiErr.StatusCode == http.StatusUnauthorized
}

// IsForbidden checks if the error is a 403 response.
func IsForbidden(err error) bool {
	apiErr, ok := AsError(err)

	return ok && apiErr.Kind == ErrorKindStatusMismatch && apiErr.StatusCode == http.StatusForbidden
}

// IsInvalidArgument checks if the error was raised before any network call
// because of a bad argument.
func IsInvalidArgument(err error) bool {
	apiErr, ok := AsError(err)

	return ok && apiErr.Kind == ErrorKindInvalidArgument
}

// serverMessage matches the error payloads the server produces. "message" may
// be a string or a structured validation map, so it is kept raw.
type serverMessage struct {
	Message json.RawMessage `json:"message"`
	Error   string          `json:"error"`
}

func messageFromBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var payload serverMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}

	if payload.Error != "" {
		return payload.Error
	}

	if len(payload.Message) > 0 {
		var s string
		if err := json.Unmarshal(payload.Message, &s); err == nil {
			return s
		}

		return string(payload.Message)
	}

	return ""
}
