package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ncecere/completions/transport"
)

// fakeTransport fails with errs in order, then succeeds.
type fakeTransport struct {
	errs  []error
	calls int
	ctxs  []context.Context
}

func (f *fakeTransport) Send(ctx context.Context, endpoint string, body []byte) ([]byte, error) {
	f.calls++
	f.ctxs = append(f.ctxs, ctx)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return nil, err
	}
	return []byte(`{"ok":true}`), nil
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestWrap_FirstMiddlewareIsOutermost(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next transport.Transport) transport.Transport {
			return transport.Func(func(ctx context.Context, endpoint string, body []byte) ([]byte, error) {
				order = append(order, name)
				return next.Send(ctx, endpoint, body)
			})
		}
	}

	tr := Wrap(&fakeTransport{}, mark("outer"), mark("inner"))
	_, err := tr.Send(context.Background(), "completions", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"outer", "inner"}, order)
}

func TestRetry_RetriesTransientErrors(t *testing.T) {
	base := &fakeTransport{errs: []error{
		&transport.StatusError{StatusCode: 503},
		timeoutErr{},
	}}
	tr := Retry(RetryOptions{MaxAttempts: 3, InitialBackoff: time.Millisecond})(base)

	res, err := tr.Send(context.Background(), "completions", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(res))
	assert.Equal(t, 3, base.calls)
}

func TestRetry_StopsOnPermanentError(t *testing.T) {
	permanent := &transport.StatusError{StatusCode: 400, Body: "bad"}
	base := &fakeTransport{errs: []error{permanent}}
	tr := Retry(RetryOptions{InitialBackoff: time.Millisecond})(base)

	_, err := tr.Send(context.Background(), "completions", nil)
	assert.Same(t, permanent, err)
	assert.Equal(t, 1, base.calls)
}

func TestRetry_ReturnsLastErrorWhenExhausted(t *testing.T) {
	last := &transport.StatusError{StatusCode: 500, Body: "third"}
	base := &fakeTransport{errs: []error{
		&transport.StatusError{StatusCode: 500, Body: "first"},
		&transport.StatusError{StatusCode: 502, Body: "second"},
		last,
	}}
	tr := Retry(RetryOptions{MaxAttempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond})(base)

	_, err := tr.Send(context.Background(), "completions", nil)
	assert.Same(t, last, err)
	assert.Equal(t, 3, base.calls)
}

func TestRetry_DoesNotRetryCancellation(t *testing.T) {
	base := &fakeTransport{errs: []error{context.Canceled}}
	tr := Retry(RetryOptions{
		InitialBackoff: time.Millisecond,
		ShouldRetry:    func(error) bool { return true },
	})(base)

	_, err := tr.Send(context.Background(), "completions", nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, base.calls)
}

func TestRetry_BackoffRespectsContext(t *testing.T) {
	base := &fakeTransport{errs: []error{&transport.StatusError{StatusCode: 503}}}
	tr := Retry(RetryOptions{InitialBackoff: time.Hour})(base)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := tr.Send(ctx, "completions", nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, base.calls)
}

func TestNextBackoff(t *testing.T) {
	assert.Equal(t, 200*time.Millisecond, nextBackoff(100*time.Millisecond, 0))
	assert.Equal(t, 150*time.Millisecond, nextBackoff(100*time.Millisecond, 150*time.Millisecond))
}

func TestIsTransientError(t *testing.T) {
	assert.True(t, IsTransientError(&transport.StatusError{StatusCode: 429}))
	assert.True(t, IsTransientError(&transport.StatusError{StatusCode: 500}))
	assert.False(t, IsTransientError(&transport.StatusError{StatusCode: 401}))
	assert.True(t, IsTransientError(timeoutErr{}))
	assert.False(t, IsTransientError(errors.New("boom")))
}

func TestLogging_WritesStructuredEntries(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	base := &fakeTransport{errs: []error{errors.New("connection refused")}}
	tr := Logging(LoggingOptions{Logger: logger})(base)

	ctx := transport.WithRequestID(context.Background(), "rid-7")
	_, err := tr.Send(ctx, "completions", []byte(`{}`))
	require.Error(t, err)
	_, err = tr.Send(ctx, "completions", []byte(`{}`))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first, second map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))

	assert.Equal(t, "error", first["level"])
	assert.Equal(t, "connection refused", first["error"])
	assert.Equal(t, "rid-7", first["rid"])
	assert.Equal(t, "completions", first["endpoint"])

	assert.Equal(t, "info", second["level"])
	assert.Equal(t, "transport done", second["message"])
	assert.EqualValues(t, len(`{"ok":true}`), second["resp_bytes"])
}

func TestTelemetry_ReportsCalls(t *testing.T) {
	var infos []CallInfo
	tr := Telemetry(TelemetryHooks{OnCall: func(_ context.Context, info CallInfo) {
		infos = append(infos, info)
	}})(&fakeTransport{})

	_, err := tr.Send(context.Background(), "completions", nil)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "completions", infos[0].Endpoint)
	assert.NoError(t, infos[0].Err)
	assert.False(t, infos[0].EndTime.Before(infos[0].StartTime))
}

func TestRequestID_AssignsOnlyWhenMissing(t *testing.T) {
	base := &fakeTransport{}
	tr := RequestID()(base)

	_, err := tr.Send(context.Background(), "completions", nil)
	require.NoError(t, err)
	_, err = uuid.Parse(transport.RequestIDFrom(base.ctxs[0]))
	assert.NoError(t, err)

	_, err = tr.Send(transport.WithRequestID(context.Background(), "mine"), "completions", nil)
	require.NoError(t, err)
	assert.Equal(t, "mine", transport.RequestIDFrom(base.ctxs[1]))
}
