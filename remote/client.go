// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package remote

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

type circuitOptions struct {
	name         string
	logger       *zap.Logger
	maxRequests  uint32
	interval     time.Duration
	timeout      time.Duration
	tripCount    uint32
	isSuccessful func(error) bool
	statusCodes  []int
}

// CircuitOption configures the circuit breaker installed by [CircuitBreaker].
type CircuitOption func(*circuitOptions)

// CircuitName names the circuit breaker. The name is also used for the
// logger reporting state changes.
func CircuitName(name string) CircuitOption {
	return func(co *circuitOptions) {
		co.name = name
	}
}

// CircuitLogger sets the logger which state changes are reported to.
func CircuitLogger(logger *zap.Logger) CircuitOption {
	return func(co *circuitOptions) {
		co.logger = logger
	}
}

// CircuitMaxRequests is the maximum number of requests allowed through
// while the circuit is half-open.
func CircuitMaxRequests(n uint32) CircuitOption {
	return func(co *circuitOptions) {
		co.maxRequests = n
	}
}

// CircuitInterval is the cyclic period of the closed state after which
// failure counts are cleared. Zero never clears them.
func CircuitInterval(d time.Duration) CircuitOption {
	return func(co *circuitOptions) {
		co.interval = d
	}
}

// CircuitTimeout is how long the circuit stays open before going half-open.
func CircuitTimeout(d time.Duration) CircuitOption {
	return func(co *circuitOptions) {
		co.timeout = d
	}
}

// CircuitTripCount is the number of consecutive failures which opens the circuit.
func CircuitTripCount(n uint32) CircuitOption {
	return func(co *circuitOptions) {
		co.tripCount = n
	}
}

// CircuitErrorOnStatusCode registers a response status code which counts
// as a failure.
//
// Default: 500, 502, 503, 504
func CircuitErrorOnStatusCode(n int) CircuitOption {
	return func(co *circuitOptions) {
		co.statusCodes = append(co.statusCodes, n)
	}
}

// StatusCodeError is returned by the circuit breaking transport when a
// response carries one of the configured failure status codes.
type StatusCodeError struct {
	StatusCode int
}

// Error implements the [builtin.error] interface.
func (e StatusCodeError) Error() string {
	return fmt.Sprintf("received failure status code: %d", e.StatusCode)
}

// NotConnError reports whether err is something other than a network
// connection failure.
func NotConnError(err error) bool {
	var addrErr *net.AddrError
	var dnsErr *net.DNSError
	var opErr *net.OpError
	switch {
	case errors.As(err, &addrErr), errors.As(err, &dnsErr), errors.As(err, &opErr):
		return false
	default:
		return true
	}
}

// NotStatusCodeError reports whether err is something other than a [StatusCodeError].
func NotStatusCodeError(err error) bool {
	return !errors.As(err, new(StatusCodeError))
}

func composeCircuitErrorCheckers(fs ...func(error) bool) func(error) bool {
	return func(err error) bool {
		for _, f := range fs {
			if !f(err) {
				return false
			}
		}
		return true
	}
}

// CountCircuitErrorIf overrides which errors count as failures. f must
// return true for errors which should be treated as successes.
func CountCircuitErrorIf(f func(error) bool) CircuitOption {
	return func(co *circuitOptions) {
		co.isSuccessful = f
	}
}

// RoundTripperOption wraps a [http.RoundTripper].
type RoundTripperOption func(http.RoundTripper) http.RoundTripper

// CircuitBreaker stops sending requests once a host keeps failing.
func CircuitBreaker(opts ...CircuitOption) RoundTripperOption {
	return func(rt http.RoundTripper) http.RoundTripper {
		co := &circuitOptions{
			logger:      zap.NewNop(),
			tripCount:   5,
			timeout:     60 * time.Second,
			maxRequests: 1,
			isSuccessful: composeCircuitErrorCheckers(
				NotStatusCodeError,
				NotConnError,
			),
		}
		for _, opt := range opts {
			opt(co)
		}

		if len(co.statusCodes) == 0 {
			co.statusCodes = append(
				co.statusCodes,
				http.StatusInternalServerError, // 500
				http.StatusBadGateway,          // 502
				http.StatusServiceUnavailable,  // 503
				http.StatusGatewayTimeout,      // 504
			)
		}
		codes := make(map[int]struct{}, len(co.statusCodes))
		for _, code := range co.statusCodes {
			codes[code] = struct{}{}
		}

		log := co.logger.Named(co.name)

		return &circuitRoundTripper{
			RoundTripper: rt,
			codes:        codes,
			cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
				Name:        co.name,
				MaxRequests: co.maxRequests,
				Interval:    co.interval,
				Timeout:     co.timeout,
				ReadyToTrip: func(counts gobreaker.Counts) bool {
					return counts.ConsecutiveFailures >= co.tripCount
				},
				OnStateChange: func(name string, from, to gobreaker.State) {
					switch to {
					case gobreaker.StateOpen:
						log.Error("circuit has been opened")
					case gobreaker.StateHalfOpen:
						log.Warn("circuit is now half open and letting some requests through", zap.Uint32("max_requests_allowed_through", co.maxRequests))
					case gobreaker.StateClosed:
						log.Info("circuit has been closed")
					}
				},
				IsSuccessful: co.isSuccessful,
			}),
		}
	}
}

// RoundTripperWith wraps rt with each option, in order.
func RoundTripperWith(rt http.RoundTripper, opts ...RoundTripperOption) http.RoundTripper {
	for _, opt := range opts {
		rt = opt(rt)
	}
	return rt
}

type circuitRoundTripper struct {
	http.RoundTripper
	cb    *gobreaker.CircuitBreaker
	codes map[int]struct{}
}

func (rt *circuitRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	v, err := rt.cb.Execute(func() (interface{}, error) {
		resp, err := rt.RoundTripper.RoundTrip(req)
		if err != nil {
			return nil, err
		}
		if _, ok := rt.codes[resp.StatusCode]; ok {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return nil, StatusCodeError{StatusCode: resp.StatusCode}
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*http.Response), nil
}

type retryOptions struct {
	logger     *zap.Logger
	maxRetries int
	waitMin    time.Duration
	waitMax    time.Duration
}

// RetryOption configures request retries.
type RetryOption func(*retryOptions)

// MinWaitDuration is the shortest backoff between attempts.
func MinWaitDuration(min time.Duration) RetryOption {
	return func(ro *retryOptions) {
		ro.waitMin = min
	}
}

// MaxWaitDuration is the longest backoff between attempts.
func MaxWaitDuration(max time.Duration) RetryOption {
	return func(ro *retryOptions) {
		ro.waitMax = max
	}
}

// MaxRetries is how many times a failed request is retried.
func MaxRetries(n int) RetryOption {
	return func(ro *retryOptions) {
		ro.maxRetries = n
	}
}

// RetryAttemptLogger sets the logger which every attempt is reported to.
func RetryAttemptLogger(logger *zap.Logger) RetryOption {
	return func(ro *retryOptions) {
		ro.logger = logger
	}
}

// RetryRequests adds request retries to the [http.Client].
func RetryRequests(opts ...RetryOption) ClientOption {
	return func(co *clientOptions) {
		ro := &retryOptions{
			logger:     zap.NewNop(),
			waitMin:    100 * time.Millisecond,
			waitMax:    5 * time.Second,
			maxRetries: 2,
		}
		for _, opt := range opts {
			opt(ro)
		}
		co.retryOptions = ro
	}
}

type clientOptions struct {
	timeout      time.Duration
	transport    http.RoundTripper
	retryOptions *retryOptions
}

// ClientOption configures the [http.Client] returned by [NewClient].
type ClientOption func(*clientOptions)

// ClientTimeout bounds every request, retries included.
func ClientTimeout(d time.Duration) ClientOption {
	return func(co *clientOptions) {
		co.timeout = d
	}
}

// WithTransport sets the transport requests are sent through.
func WithTransport(transport http.RoundTripper) ClientOption {
	return func(co *clientOptions) {
		co.transport = transport
	}
}

// NewClient returns a [http.Client] for fetching config documents.
func NewClient(opts ...ClientOption) *http.Client {
	co := &clientOptions{
		transport: http.DefaultTransport,
	}
	for _, opt := range opts {
		opt(co)
	}
	c := &http.Client{
		Timeout:   co.timeout,
		Transport: co.transport,
	}
	if co.retryOptions == nil {
		return c
	}

	log := co.retryOptions.logger
	rc := retryablehttp.Client{
		HTTPClient:   c,
		Logger:       nil,
		RetryWaitMin: co.retryOptions.waitMin,
		RetryWaitMax: co.retryOptions.waitMax,
		RetryMax:     co.retryOptions.maxRetries,
		RequestLogHook: func(l retryablehttp.Logger, req *http.Request, i int) {
			log.Debug("sending http request", zap.String("url", req.URL.String()), zap.Int("request_attempt_count", i))
		},
		ResponseLogHook: func(l retryablehttp.Logger, resp *http.Response) {
			log.Debug("received http response", zap.String("url", resp.Request.URL.String()), zap.Int("http_status_code", resp.StatusCode))
		},
		CheckRetry:   retryablehttp.DefaultRetryPolicy,
		Backoff:      retryablehttp.DefaultBackoff,
		ErrorHandler: retryablehttp.PassthroughErrorHandler,
	}
	return rc.StandardClient()
}
