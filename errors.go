package completions

import (
	"errors"
	"fmt"
)

// Package-level error values returned by the completions package.
var (
	// ErrInvalidRequest is wrapped by every error returned from
	// CreateCompletionRequest.Validate, so callers can separate
	// user-correctable request problems from dispatch failures.
	ErrInvalidRequest = errors.New("completions: invalid request")

	// ErrEmptyModel is returned when a request does not name a model.
	ErrEmptyModel = fmt.Errorf("%w: please provide a model to use for the completion", ErrInvalidRequest)

	// ErrAmbiguousPrompt is returned when zero or several prompt
	// variants are populated.
	ErrAmbiguousPrompt = fmt.Errorf("%w: exactly one type of prompt must be set", ErrInvalidRequest)

	// ErrAmbiguousStop is returned when neither or both of the stop
	// variants are populated.
	ErrAmbiguousStop = fmt.Errorf("%w: set either a stop word or a list of stop words, not both", ErrInvalidRequest)

	// ErrTooManyStopWords is returned when the stop list exceeds
	// MaxStopWords entries.
	ErrTooManyStopWords = fmt.Errorf("%w: at most %d stop words are allowed", ErrInvalidRequest, MaxStopWords)

	// ErrStreamingUnsupported is returned for requests with Stream set.
	// The client only understands single JSON response bodies.
	ErrStreamingUnsupported = fmt.Errorf("%w: streaming responses are not supported", ErrInvalidRequest)

	// ErrNilTransport is returned by NewClient when no transport is given.
	ErrNilTransport = errors.New("completions: transport must not be nil")
)

// InvalidArgumentError indicates that a request field or helper
// argument holds a value outside its accepted range.
type InvalidArgumentError struct {
	// Parameter is the wire name of the invalid parameter.
	Parameter string
	// Value is the offending value.
	Value any
	// Message describes why the value is considered invalid.
	Message string
}

func (e *InvalidArgumentError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return "completions: invalid argument for parameter " + e.Parameter + ": " + e.Message
}

// Unwrap lets errors.Is match ErrInvalidRequest.
func (e *InvalidArgumentError) Unwrap() error {
	return ErrInvalidRequest
}

// SerializationError indicates that a request could not be encoded.
// It points to a programming or data defect and is not worth retrying.
type SerializationError struct {
	Err error
}

func (e *SerializationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return "completions: encode request: " + e.Err.Error()
}

func (e *SerializationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// TransportError wraps a failure reported by the transport. The
// underlying error is kept verbatim and reachable through errors.As.
type TransportError struct {
	// Endpoint is the logical route that was called.
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return "completions: transport " + e.Endpoint + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// MalformedResponseError indicates that the service answered, but the
// body did not match the expected response shape.
type MalformedResponseError struct {
	// Body holds the start of the offending payload, truncated to
	// maxErrorBody bytes.
	Body string
	Err  error
}

// maxErrorBody caps how much of a bad payload is kept on an error.
const maxErrorBody = 512

func newMalformedResponseError(body []byte, err error) *MalformedResponseError {
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return &MalformedResponseError{Body: string(body), Err: err}
}

func (e *MalformedResponseError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return "completions: malformed response: " + e.Err.Error()
}

func (e *MalformedResponseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
