package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/GriffinCanCode/AgentOS/runtime/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/runtime/internal/infrastructure/resilience"
	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var (
	// ErrUnavailable is returned while the breaker for a target is open
	ErrUnavailable = errors.New("remote service unavailable")
	// ErrServerStatus marks a 5xx reply
	ErrServerStatus = errors.New("remote server error")
)

// Options configures a Client
type Options struct {
	Name       string // metrics target and breaker name
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	RetryWait  time.Duration
	// RequestsPerSecond <= 0 means unlimited
	RequestsPerSecond float64
	// TripOnServerError counts 5xx replies as breaker failures.
	// Passthrough clients leave it off: a 5xx from an arbitrary site is data.
	TripOnServerError bool
	Metrics           *monitoring.Metrics
	Logger            *zap.Logger
}

// Client wraps resty with rate limiting, a circuit breaker and metrics
type Client struct {
	name    string
	resty   *resty.Client
	limiter *rate.Limiter
	breaker *resilience.Breaker
	trip5xx bool
	metrics *monitoring.Metrics
	logger  *zap.Logger
}

// NewClient creates a client from options
func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RetryWait <= 0 {
		opts.RetryWait = 500 * time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	retryClient := retryablehttp.NewClient()
	retryClient.Logger = nil

	r := resty.New().
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.MaxRetries).
		SetRetryWaitTime(opts.RetryWait).
		SetRetryMaxWaitTime(10*opts.RetryWait).
		SetHeader("User-Agent", "AgentOS-Runtime/1.0").
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal).
		SetTransport(retryClient.HTTPClient.Transport)
	if opts.BaseURL != "" {
		r.SetBaseURL(opts.BaseURL)
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}

	logger := opts.Logger.Named("remote").With(zap.String("target", opts.Name))
	breaker := resilience.New(opts.Name, resilience.Settings{
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5 ||
				(counts.Requests >= 20 && float64(counts.TotalFailures)/float64(counts.Requests) > 0.6)
		},
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &Client{
		name:    opts.Name,
		resty:   r,
		limiter: limiter,
		breaker: breaker,
		trip5xx: opts.TripOnServerError,
		metrics: opts.Metrics,
		logger:  logger,
	}
}

// Name returns the target name
func (c *Client) Name() string {
	return c.name
}

// BreakerState returns the current circuit breaker state
func (c *Client) BreakerState() resilience.State {
	return c.breaker.State()
}

// Request creates a request bound to ctx after waiting for the limiter.
// Every request carries a fresh X-Request-ID.
func (c *Client) Request(ctx context.Context) (*resty.Request, error) {
	if c.breaker.State() == resilience.StateOpen {
		return nil, fmt.Errorf("%s: %w", c.name, ErrUnavailable)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit error: %w", err)
	}
	return c.resty.R().
		SetContext(ctx).
		SetHeader("X-Request-ID", uuid.NewString()), nil
}

// Do runs send under the breaker and records the call
func (c *Client) Do(ctx context.Context, send func(*resty.Request) (*resty.Response, error)) (*resty.Response, error) {
	req, err := c.Request(ctx)
	if err != nil {
		c.metrics.RecordRemoteCall(c.name, "rejected", 0)
		return nil, err
	}

	timer := monitoring.NewTimer(c.metrics, c.name)
	resp, err := resilience.Do(c.breaker, func() (*resty.Response, error) {
		resp, err := send(req)
		if err != nil {
			return nil, err
		}
		if c.trip5xx && resp.StatusCode() >= http.StatusInternalServerError {
			return resp, fmt.Errorf("%w: %s", ErrServerStatus, resp.Status())
		}
		return resp, nil
	})

	switch {
	case errors.Is(err, resilience.ErrCircuitOpen), errors.Is(err, resilience.ErrTooManyRequests):
		timer.Stop("rejected")
		return nil, fmt.Errorf("%s: %w", c.name, ErrUnavailable)
	case err != nil && resp == nil:
		elapsed := timer.Stop("error")
		c.logger.Debug("request failed", zap.Error(err), zap.Duration("elapsed", elapsed))
		return nil, err
	}

	timer.Stop(strconv.Itoa(resp.StatusCode()))
	return resp, err
}

// Decode unmarshals a JSON reply body
func Decode(resp *resty.Response, out interface{}) error {
	if err := sonic.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decode %s reply: %w", resp.Request.URL, err)
	}
	return nil
}
