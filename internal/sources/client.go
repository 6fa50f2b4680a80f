package sources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"readdit/internal/logging"
	"readdit/internal/metrics"
)

const defaultUserAgent = "readdit/1.0 (+https://github.com/readdit)"

// maxBodyBytes bounds how much of a provider response is read.
const maxBodyBytes = 8 << 20

// ClientConfig tunes the outbound client of one provider.
type ClientConfig struct {
	// Name labels logs, metrics and the circuit breaker.
	Name string

	Timeout time.Duration

	// Rate is the sustained requests per second; Burst the bucket size.
	// A zero Rate disables limiting.
	Rate  float64
	Burst int

	// FailureThreshold is the number of consecutive failures that opens
	// the breaker; OpenTimeout how long it stays open.
	FailureThreshold uint32
	OpenTimeout      time.Duration

	UserAgent string
}

// StatusError is returned for non-2xx provider responses.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// jsonClient performs rate-limited, breaker-guarded JSON GETs against a
// single provider.
type jsonClient struct {
	name      string
	http      *http.Client
	limiter   *rate.Limiter
	breaker   *gobreaker.CircuitBreaker[[]byte]
	userAgent string
}

func newJSONClient(cfg ClientConfig, hc *http.Client) *jsonClient {
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.Rate > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.Rate), burst)
	}

	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	openTimeout := cfg.OpenTimeout
	if openTimeout <= 0 {
		openTimeout = 30 * time.Second
	}

	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}

	name := cfg.Name
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			// A 404 is an answer, not an outage.
			var se *StatusError
			if errors.As(err, &se) {
				return se.Code < 500 && se.Code != http.StatusTooManyRequests
			}
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	})

	return &jsonClient{
		name:      name,
		http:      hc,
		limiter:   limiter,
		breaker:   breaker,
		userAgent: ua,
	}
}

// getJSON fetches url and decodes the body into out.
func (c *jsonClient) getJSON(ctx context.Context, url string, out any) error {
	start := time.Now()
	defer func() {
		metrics.ProviderLatency.WithLabelValues(c.name).Observe(time.Since(start).Seconds())
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		metrics.ProviderRequests.WithLabelValues(c.name, "rejected").Inc()
		return fmt.Errorf("%s: rate limit: %w", c.name, err)
	}

	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.fetch(ctx, url)
	})
	if err != nil {
		metrics.ProviderRequests.WithLabelValues(c.name, outcome(err)).Inc()
		return fmt.Errorf("%s: %w", c.name, err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		metrics.ProviderRequests.WithLabelValues(c.name, "decode_error").Inc()
		return fmt.Errorf("%s: decode: %w", c.name, err)
	}

	metrics.ProviderRequests.WithLabelValues(c.name, "ok").Inc()
	return nil
}

func (c *jsonClient) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &StatusError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

func outcome(err error) string {
	var se *StatusError
	switch {
	case errors.As(err, &se):
		return "http_error"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "rejected"
	default:
		return "transport_error"
	}
}
