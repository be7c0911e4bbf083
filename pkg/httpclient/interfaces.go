package httpclient

import (
	"context"
	"io"
)

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
}

// StreamResponse exposes an unread response body. Callers must close RawBody.
type StreamResponse interface {
	StatusCode() int
	RawBody() io.ReadCloser
}

// Request describes a single outgoing call.
// Body is sent as JSON unless it is an io.Reader, which is streamed untouched.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    any
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
	Do(ctx context.Context, req Request) (Response, error)
	Stream(ctx context.Context, url string, headers map[string]string) (StreamResponse, error)
}
