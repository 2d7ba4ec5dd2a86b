package protocol

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrTimeout matches any TransportError caused by an expired deadline.
var ErrTimeout = errors.New("request timed out")

// HTTPStatusError reports a response whose status is outside 200-299.
type HTTPStatusError struct {
	StatusCode int
	Body       string
	Method     string
	URL        string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// TransportError reports a request that never produced a response
// (DNS failure, refused connection, expired deadline).
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	if e.Timeout() {
		return fmt.Sprintf("%s %s: %v: %v", e.Method, e.URL, ErrTimeout, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

// Unwrap exposes the cause, and ErrTimeout when the deadline expired.
func (e *TransportError) Unwrap() []error {
	if e.Timeout() {
		return []error{ErrTimeout, e.Err}
	}
	return []error{e.Err}
}

// Timeout reports whether the failure was a deadline expiry.
func (e *TransportError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(e.Err, &ne) && ne.Timeout()
}

// IsHTTPStatus returns the status error carried by err, if any.
func IsHTTPStatus(err error) (*HTTPStatusError, bool) {
	var se *HTTPStatusError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsTimeout reports whether err was caused by an expired deadline.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// ErrorKind classifies err for metrics: "", "status", "timeout" or "transport".
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case IsTimeout(err):
		return "timeout"
	default:
		if _, ok := IsHTTPStatus(err); ok {
			return "status"
		}
		return "transport"
	}
}
