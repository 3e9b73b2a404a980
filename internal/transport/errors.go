package transport

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindNone Kind = iota
	KindNetwork
	KindRateLimited
	KindForbidden
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindNetwork:
		return "network"
	case KindRateLimited:
		return "rate_limited"
	case KindForbidden:
		return "forbidden"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// NetworkError reports a failure below HTTP: no connectivity, a reset
// connection, a timeout or a cancelled context.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// HTTPError reports a non-2xx status.
type HTTPError struct {
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http error: status %d", e.StatusCode)
}

func (e *HTTPError) Kind() Kind {
	switch e.StatusCode {
	case http.StatusTooManyRequests:
		return KindRateLimited
	case http.StatusForbidden:
		return KindForbidden
	default:
		return KindServer
	}
}

// KindOf classifies an error returned by Send.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Kind()
	}

	return KindNetwork
}
