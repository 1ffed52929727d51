package transport

import (
	"context"
	"net/http"
)

// Transport sends an encoded request body to a named endpoint of the
// completion service and returns the raw response body.
//
// Implementations own the network connection, authentication, base URL
// resolution, timeouts and any retry policy.
type Transport interface {
	Send(ctx context.Context, endpoint string, body []byte) ([]byte, error)
}

// Func adapts an ordinary function to the Transport interface.
type Func func(ctx context.Context, endpoint string, body []byte) ([]byte, error)

// Send calls f(ctx, endpoint, body).
func (f Func) Send(ctx context.Context, endpoint string, body []byte) ([]byte, error) {
	return f(ctx, endpoint, body)
}

// HTTPClient is the minimal interface required from an HTTP client.
// It matches the Do method on *http.Client and allows callers to
// substitute custom clients or middleware.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientOptions configure an HTTPTransport.
type ClientOptions struct {
	// BaseURL is the root URL of the API, with or without a trailing /v1.
	BaseURL string
	// APIKey is the bearer token used for authentication.
	APIKey string
	// Organization, when set, is sent as the OpenAI-Organization header.
	Organization string
	// HTTPClient is the underlying HTTP client. If nil,
	// DefaultHTTPClient is used.
	HTTPClient HTTPClient
	// Headers contains additional HTTP headers attached to every
	// outbound request. Authorization and Content-Type always win.
	Headers http.Header
}
