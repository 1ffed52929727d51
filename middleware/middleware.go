package middleware

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ncecere/completions/transport"
)

// Middleware wraps a transport.Transport with additional behavior such
// as logging, retries, or telemetry.
type Middleware func(transport.Transport) transport.Transport

// Wrap applies the provided middlewares around the base transport.
// Middlewares are applied in the order provided, so the first
// middleware becomes the outermost wrapper.
func Wrap(base transport.Transport, mws ...Middleware) transport.Transport {
	wrapped := base
	for i := len(mws) - 1; i >= 0; i-- {
		wrapped = mws[i](wrapped)
	}
	return wrapped
}

// LoggingOptions controls which aspects of a transport call are logged.
type LoggingOptions struct {
	// Logger is the destination for log output. A zero Logger writes
	// nothing, so callers normally pass the process logger.
	Logger zerolog.Logger
	// LogRequest controls whether the start of a call is logged.
	LogRequest bool
	// LogResponse controls whether successful calls are logged.
	LogResponse bool
	// LogErrors controls whether errors are logged.
	LogErrors bool
}

// defaultLoggingOptions returns opts with sensible defaults filled in.
func defaultLoggingOptions(opts LoggingOptions) LoggingOptions {
	// By default, log errors and successful calls.
	if !opts.LogRequest && !opts.LogResponse && !opts.LogErrors {
		opts.LogResponse = true
		opts.LogErrors = true
	}
	return opts
}

// Logging returns a Middleware that logs Send calls. Logs carry
// the endpoint, request id, duration and body sizes, never the bodies.
func Logging(opts LoggingOptions) Middleware {
	opts = defaultLoggingOptions(opts)

	return func(next transport.Transport) transport.Transport {
		return &loggingTransport{next: next, opts: opts}
	}
}

type loggingTransport struct {
	next transport.Transport
	opts LoggingOptions
}

func (l *loggingTransport) Send(ctx context.Context, endpoint string, body []byte) ([]byte, error) {
	log := l.opts.Logger.With().
		Str("endpoint", endpoint).
		Str("rid", transport.RequestIDFrom(ctx)).
		Logger()

	start := time.Now()
	if l.opts.LogRequest {
		log.Debug().Int("req_bytes", len(body)).Msg("transport send")
	}

	res, err := l.next.Send(ctx, endpoint, body)
	dur := time.Since(start)

	if err != nil {
		if l.opts.LogErrors {
			log.Error().Err(err).Dur("dur", dur).Msg("transport error")
		}
		return nil, err
	}

	if l.opts.LogResponse {
		log.Info().Dur("dur", dur).Int("resp_bytes", len(res)).Msg("transport done")
	}
	return res, nil
}

// RetryOptions configures the retry middleware.
type RetryOptions struct {
	// MaxAttempts is the maximum number of attempts, including the first
	// call. If zero or negative, a default of 3 attempts is used.
	MaxAttempts int
	// InitialBackoff is the delay before the first retry. If zero, a
	// default of 100ms is used.
	InitialBackoff time.Duration
	// MaxBackoff caps the backoff delay. If zero, no cap is applied.
	MaxBackoff time.Duration
	// ShouldRetry reports whether an error is transient. If nil,
	// IsTransientError is used.
	ShouldRetry func(error) bool
}

func defaultRetryOptions(opts RetryOptions) RetryOptions {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = 100 * time.Millisecond
	}
	if opts.ShouldRetry == nil {
		opts.ShouldRetry = IsTransientError
	}
	return opts
}

// Retry returns a Middleware that retries Send calls when ShouldRetry
// returns true for the encountered error. Retries respect the context
// for cancellation.
func Retry(opts RetryOptions) Middleware {
	opts = defaultRetryOptions(opts)

	return func(next transport.Transport) transport.Transport {
		return &retryTransport{next: next, opt: opts}
	}
}

type retryTransport struct {
	next transport.Transport
	opt  RetryOptions
}

func (r *retryTransport) Send(ctx context.Context, endpoint string, body []byte) ([]byte, error) {
	var lastErr error

	backoff := r.opt.InitialBackoff
	for attempt := 1; attempt <= r.opt.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleepWithContext(ctx, backoff); err != nil {
				return nil, err
			}
			backoff = nextBackoff(backoff, r.opt.MaxBackoff)
		}

		res, err := r.next.Send(ctx, endpoint, body)
		if err == nil {
			return res, nil
		}
		// Do not retry on context cancellation.
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		if !r.opt.ShouldRetry(err) {
			return nil, err
		}
		lastErr = err
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, errors.New("middleware: retry: exhausted attempts with no result")
}

// sleepWithContext sleeps for the given duration or returns early if
// the context is cancelled.
func sleepWithContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// nextBackoff doubles current, capped at max when max is positive.
func nextBackoff(current, max time.Duration) time.Duration {
	next := current * 2
	if max > 0 && next > max {
		return max
	}
	return next
}

// IsTransientError reports whether err looks worth retrying: network
// timeouts, 429 Too Many Requests, and 5xx answers.
func IsTransientError(err error) bool {
	var statusErr *transport.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusTooManyRequests || statusErr.StatusCode >= 500
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

// CallInfo contains high-level metadata about a transport call that
// can be used for metrics or tracing.
type CallInfo struct {
	Endpoint  string
	RequestID string
	StartTime time.Time
	EndTime   time.Time
	Err       error
}

// TelemetryHooks defines callbacks invoked around transport calls.
// They are kept generic so callers can plug in any metrics or tracing
// system without this package depending on it.
type TelemetryHooks struct {
	OnCall func(ctx context.Context, info CallInfo)
}

// Telemetry returns a Middleware that invokes hooks after each Send.
func Telemetry(hooks TelemetryHooks) Middleware {
	return func(next transport.Transport) transport.Transport {
		return &telemetryTransport{next: next, hooks: hooks}
	}
}

type telemetryTransport struct {
	next  transport.Transport
	hooks TelemetryHooks
}

func (t *telemetryTransport) Send(ctx context.Context, endpoint string, body []byte) ([]byte, error) {
	start := time.Now()
	res, err := t.next.Send(ctx, endpoint, body)
	if t.hooks.OnCall != nil {
		t.hooks.OnCall(ctx, CallInfo{
			Endpoint:  endpoint,
			RequestID: transport.RequestIDFrom(ctx),
			StartTime: start,
			EndTime:   time.Now(),
			Err:       err,
		})
	}
	return res, err
}

// RequestID returns a Middleware that gives every call a request id.
// An id already present on the context is kept.
func RequestID() Middleware {
	return func(next transport.Transport) transport.Transport {
		return transport.Func(func(ctx context.Context, endpoint string, body []byte) ([]byte, error) {
			if transport.RequestIDFrom(ctx) == "" {
				ctx = transport.WithRequestID(ctx, uuid.NewString())
			}
			return next.Send(ctx, endpoint, body)
		})
	}
}
