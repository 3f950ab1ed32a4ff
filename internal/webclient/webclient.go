package webclient

import (
	"context"
	"errors"
)

// ErrTransport marks failures that happened before any HTTP response was
// received: DNS errors, refused connections, unreachable hosts.
var ErrTransport = errors.New("transport failure")

type WebClient interface {
	Do(ctx context.Context, req *Request) (*Response, error)

	Close() error
}

// TransportError wraps the underlying network error. errors.Is(err,
// ErrTransport) reports true for it.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return "request to " + e.URL + " failed: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }
