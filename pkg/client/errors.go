package client

import (
	"errors"
	"fmt"
)

// ErrExhausted is returned by CollectPages when the API stops producing
// results before the requested count is reached: a page comes back short
// or without a cursor while more pages are still owed. The items collected
// up to that point accompany the error.
var ErrExhausted = errors.New("upstream results exhausted")

// Kind classifies client errors by failure mode.
type Kind string

const (
	// KindInvalidMethod means the HTTP method string is not a recognized
	// verb. Fails before any network call.
	KindInvalidMethod Kind = "invalid_method"

	// KindInvalidHeaderValue means a configured value (client ID, token,
	// user agent) contains bytes that cannot appear in a header.
	KindInvalidHeaderValue Kind = "invalid_header_value"

	// KindRequestFailed means the round trip never produced a usable
	// response: connection, DNS, timeout, or reading the body failed.
	KindRequestFailed Kind = "request_failed"

	// KindUnsuccessfulStatus means the API answered with a non-2xx
	// status. The body is not decoded.
	KindUnsuccessfulStatus Kind = "unsuccessful_status"

	// KindDeserializationFailed means the response body was not valid
	// JSON for the expected shape.
	KindDeserializationFailed Kind = "deserialization_failed"

	// KindMalformedEnvelope means the body was valid JSON but not a
	// pagination envelope: data missing or not an array, or a cursor
	// that is not a string.
	KindMalformedEnvelope Kind = "malformed_envelope"

	// KindRateLimited means the rate limit tracker blocked the request
	// before it was sent.
	KindRateLimited Kind = "rate_limited"
)

// Error is the error type returned by all client operations.
type Error struct {
	Kind       Kind
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		if msg != "" {
			msg = fmt.Sprintf("%s: %v", msg, e.Err)
		} else {
			msg = e.Err.Error()
		}
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("helix %s error (status %d): %s", e.Kind, e.StatusCode, msg)
	}
	return fmt.Sprintf("helix %s error: %s", e.Kind, msg)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a client Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var clientErr *Error
	return errors.As(err, &clientErr) && clientErr.Kind == kind
}

// StatusCode extracts the HTTP status carried by err.
// Returns 0 when err is not a client Error or carries no status.
func StatusCode(err error) int {
	var clientErr *Error
	if errors.As(err, &clientErr) {
		return clientErr.StatusCode
	}
	return 0
}
