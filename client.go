package completions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"github.com/ncecere/completions/transport"
)

// Endpoint is the logical route passed to the transport.
const Endpoint = "completions"

// Client dispatches completion requests through a Transport. It holds
// no per-call state and is safe for concurrent use.
type Client struct {
	transport transport.Transport
}

// NewClient returns a Client sending requests through t.
func NewClient(t transport.Transport) (*Client, error) {
	if t == nil {
		return nil, ErrNilTransport
	}
	return &Client{transport: t}, nil
}

// CreateCompletion validates req, encodes it, sends it to the
// completions endpoint and decodes the reply.
//
// Errors:
//   - Any error returned by req.Validate; the transport is not called.
//   - *SerializationError if the request cannot be encoded.
//   - *TransportError wrapping the transport's error unchanged.
//   - *MalformedResponseError if the reply is not a completion response.
func (c *Client) CreateCompletion(ctx context.Context, req *CreateCompletionRequest) (*CreateCompletionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, &SerializationError{Err: err}
	}

	raw, err := c.transport.Send(ctx, Endpoint, body)
	if err != nil {
		return nil, &TransportError{Endpoint: Endpoint, Err: err}
	}

	return decodeResponse(raw)
}

// CreateCompletion is a convenience helper for callers that do not keep
// a Client around.
func CreateCompletion(ctx context.Context, t transport.Transport, req *CreateCompletionRequest) (*CreateCompletionResponse, error) {
	c, err := NewClient(t)
	if err != nil {
		return nil, err
	}
	return c.CreateCompletion(ctx, req)
}

func decodeResponse(raw []byte) (*CreateCompletionResponse, error) {
	if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, newMalformedResponseError(raw, errors.New("body is not a JSON object"))
	}

	var out CreateCompletionResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, newMalformedResponseError(raw, err)
	}
	for i := range out.Choices {
		if err := out.Choices[i].LogProbs.Validate(); err != nil {
			return nil, newMalformedResponseError(raw, err)
		}
	}
	return &out, nil
}
