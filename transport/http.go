package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// DefaultBaseURL is used when neither ClientOptions.BaseURL nor
// OPENAI_BASE_URL is set.
const DefaultBaseURL = "https://api.openai.com"

// maxResponseBody caps how much of a successful response is read.
const maxResponseBody = 8 << 20

// ErrResponseTooLarge is returned by ReadBody when a successful response
// is longer than the 8 MiB read limit.
var ErrResponseTooLarge = errors.New("transport: response body exceeds 8 MiB")

// maxErrorBody caps how much of an error response is kept.
const maxErrorBody = 8 * 1024

// StatusError is returned when the service answers with a non-2xx
// status code.
type StatusError struct {
	StatusCode int
	// Body is the start of the response body, truncated to 8 KiB.
	Body string
}

func (e *StatusError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("transport: http status %d: %s", e.StatusCode, e.Body)
}

// HTTPTransport sends requests to an OpenAI-compatible HTTP API.
type HTTPTransport struct {
	baseURL      string
	apiKey       string
	organization string
	httpClient   HTTPClient
	headers      http.Header
}

// NewHTTPTransport creates a transport from opts, falling back to
// environment variables for unset values:
//   - OPENAI_API_KEY (required if opts.APIKey is empty)
//   - OPENAI_BASE_URL (optional, defaults to https://api.openai.com)
//   - OPENAI_ORGANIZATION (optional)
func NewHTTPTransport(opts ClientOptions) (*HTTPTransport, error) {
	apiKey := opts.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("transport: missing API key; set ClientOptions.APIKey or OPENAI_API_KEY")
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = os.Getenv("OPENAI_BASE_URL")
		if baseURL == "" {
			baseURL = DefaultBaseURL
		}
	}
	baseURL = strings.TrimRight(baseURL, "/")

	org := opts.Organization
	if org == "" {
		org = os.Getenv("OPENAI_ORGANIZATION")
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = DefaultHTTPClient()
	}

	return &HTTPTransport{
		baseURL:      baseURL,
		apiKey:       apiKey,
		organization: org,
		httpClient:   hc,
		headers:      opts.Headers,
	}, nil
}

// URL returns the absolute URL of endpoint.
func (t *HTTPTransport) URL(endpoint string) string {
	endpoint = strings.TrimLeft(endpoint, "/")
	if strings.HasSuffix(t.baseURL, "/v1") {
		return t.baseURL + "/" + endpoint
	}
	return t.baseURL + "/v1/" + endpoint
}

// Send POSTs body as JSON to endpoint and returns the response body.
// Non-2xx answers are reported as *StatusError.
func (t *HTTPTransport) Send(ctx context.Context, endpoint string, body []byte) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.URL(endpoint), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	// Attach any custom headers first, then enforce required headers.
	for k, vs := range t.headers {
		for _, v := range vs {
			if v == "" {
				continue
			}
			httpReq.Header.Add(k, v)
		}
	}
	if rid := RequestIDFrom(ctx); rid != "" && httpReq.Header.Get(RequestIDHeader) == "" {
		httpReq.Header.Set(RequestIDHeader, rid)
	}
	if t.organization != "" {
		httpReq.Header.Set("OpenAI-Organization", t.organization)
	}
	httpReq.Header.Set("Authorization", "Bearer "+t.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	return ReadBody(resp)
}

// ReadBody reads and closes the response body.
//
// If the response status code is not in the 2xx range, ReadBody
// returns a *StatusError holding the truncated body. A successful body
// longer than the read limit is ErrResponseTooLarge.
func ReadBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(b)}
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody+1))
	if err != nil {
		return nil, err
	}
	if len(b) > maxResponseBody {
		return nil, ErrResponseTooLarge
	}
	return b, nil
}

// DefaultHTTPClient returns the default HTTP client used when none is provided.
func DefaultHTTPClient() *http.Client {
	return http.DefaultClient
}

// WithHTTPTimeout is a helper returning an HTTP client with a timeout.
func WithHTTPTimeout(d time.Duration) HTTPClient {
	return &http.Client{Timeout: d}
}
