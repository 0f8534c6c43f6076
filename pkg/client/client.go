// Package client provides the HTTP transport for the Idalon API with request pacing,
// shared rate limit tracking, circuit breaking and instrumentation.
//
// A *Client satisfies pagination.Transport, so it can be handed directly to the
// pagination engine:
//
//	c, err := client.New(client.DefaultConfig("idalon-stats/1.0 (ops@example.com)"))
//	...
//	night, err := pagination.FindOne[models.Night](ctx, c, id)
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/idalon-client/pkg/logging"
	"github.com/Sternrassler/idalon-client/pkg/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

// Prometheus metrics for API requests.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "idalon_requests_total",
		Help: "Total Idalon API requests by resource and status",
	}, []string{"resource", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "idalon_request_duration_seconds",
		Help:    "Idalon API request duration in seconds by resource",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"resource"})

	transportErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "idalon_transport_errors_total",
		Help: "Total Idalon API transport errors by class",
	}, []string{"class"})
)

// Client is the Idalon API transport.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	tracker    *ratelimit.Tracker
	breaker    *gobreaker.CircuitBreaker
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// User-Agent header sent with every request.
	// Format: "AppName/Version (contact@example.com)"
	UserAgent string

	// Timeout bounds a single HTTP exchange.
	Timeout time.Duration

	// Client-side pacing in requests per second. Zero disables pacing.
	RateLimit float64
	Burst     int

	// Redis holds the rate limit state shared between clients. Optional.
	Redis *redis.Client

	// ThrottleDelay is applied while the server's request budget is low.
	ThrottleDelay time.Duration

	// Circuit breaker: opens after BreakerFailures consecutive failures and
	// probes again after BreakerTimeout. Zero failures disables the breaker.
	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(userAgent string) Config {
	return Config{
		UserAgent:       userAgent,
		Timeout:         30 * time.Second,
		RateLimit:       5,
		Burst:           5,
		ThrottleDelay:   ratelimit.DefaultThrottleDelay,
		BreakerFailures: 5,
		BreakerTimeout:  30 * time.Second,
	}
}

// New creates a new client.
func New(cfg Config) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be > 0 (got %s)", cfg.Timeout)
	}

	if cfg.RateLimit < 0 {
		return nil, fmt.Errorf("rate_limit must be >= 0 (got %g)", cfg.RateLimit)
	}

	if cfg.RateLimit > 0 && cfg.Burst < 1 {
		return nil, fmt.Errorf("burst must be >= 1 when rate limiting (got %d)", cfg.Burst)
	}

	logger := logging.NewLogger(logging.ComponentClient)

	c := &Client{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		config: cfg,
		logger: logger,
	}

	if cfg.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst)
	}

	if cfg.Redis != nil {
		c.tracker = ratelimit.NewTracker(cfg.Redis, logger, ratelimit.WithThrottleDelay(cfg.ThrottleDelay))
	}

	if cfg.BreakerFailures > 0 {
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "idalon-api",
			MaxRequests: 1,
			Timeout:     cfg.BreakerTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= cfg.BreakerFailures
			},
			OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
				logger.Warn().
					Str("breaker", name).
					Str("from", from.String()).
					Str("to", to.String()).
					Msg("Circuit breaker state changed")
			},
		})
	}

	return c, nil
}

// Get performs a GET request for rawURL.
func (c *Client) Get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	return c.Do(req)
}

// Do sends req through pacing, rate limit gating and the circuit breaker.
// Responses with an error status are returned to the caller, not turned into errors.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	resource := resourceLabel(req.URL.Path)

	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(resource).Observe(time.Since(startTime).Seconds())
	}()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("wait for request slot: %w", err)
		}
	}

	if c.tracker != nil {
		allowed, err := c.tracker.ShouldAllowRequest(ctx)
		if err != nil {
			c.logger.Error().Err(err).Msg("Rate limit check failed")
			return nil, fmt.Errorf("rate limit check: %w", err)
		}
		if !allowed {
			c.logger.Warn().Str("resource", resource).Msg("Request blocked by rate limiter")
			requestsTotal.WithLabelValues(resource, "rate_limited").Inc()
			transportErrorsTotal.WithLabelValues(string(ErrorClassRateLimit)).Inc()
			return nil, ErrRateLimited
		}
	}

	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("resource", resource).
		Str("url", req.URL.String()).
		Msg("Executing request")

	resp, err := c.send(req)
	if err != nil {
		class := classifyError(nil, err)
		transportErrorsTotal.WithLabelValues(string(class)).Inc()
		requestsTotal.WithLabelValues(resource, string(class)).Inc()
		c.logger.Error().Err(err).Str("resource", resource).Msg("Request failed")
		return nil, err
	}

	if c.tracker != nil {
		if err := c.tracker.UpdateFromHeaders(ctx, resp.Header); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to update rate limit from headers")
		}
	}

	requestsTotal.WithLabelValues(resource, strconv.Itoa(resp.StatusCode)).Inc()
	if class := classifyError(resp, nil); class != "" {
		transportErrorsTotal.WithLabelValues(string(class)).Inc()
		c.logger.Warn().
			Str("resource", resource).
			Int("status", resp.StatusCode).
			Str("error_class", string(class)).
			Msg("Request returned an error status")
	}

	return resp, nil
}

// send executes req, through the circuit breaker when one is configured.
// Server errors count as breaker failures but the response is still returned.
func (c *Client) send(req *http.Request) (*http.Response, error) {
	if c.breaker == nil {
		return c.httpClient.Do(req)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return resp, errServerStatus
		}
		return resp, nil
	})

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return nil, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
	case errors.Is(err, errServerStatus):
		return result.(*http.Response), nil
	case err != nil:
		return nil, err
	}

	return result.(*http.Response), nil
}

// BreakerState returns the circuit breaker state, or "disabled".
func (c *Client) BreakerState() string {
	if c.breaker == nil {
		return "disabled"
	}
	return c.breaker.State().String()
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

var versionSegment = regexp.MustCompile(`^v[0-9]+$`)

// resourceLabel reduces a request path to a low-cardinality metric label:
// "/v2/nights" becomes "nights", "/v2/nights/<uuid>" becomes "nights/:id".
func resourceLabel(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) > 0 && versionSegment.MatchString(segments[0]) {
		segments = segments[1:]
	}

	switch {
	case len(segments) == 0 || segments[0] == "":
		return "root"
	case len(segments) == 1:
		return segments[0]
	default:
		return segments[0] + "/:id"
	}
}
