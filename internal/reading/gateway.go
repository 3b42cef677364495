package reading

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/terrawatch/envzone/internal/model"
	"github.com/terrawatch/envzone/internal/resilience"
)

// GatewayOptions configures the gateway provider.
type GatewayOptions struct {
	BaseURL    string
	RateLimit  float64
	Burst      int
	Timeout    time.Duration
	MaxRetries int
}

// GatewayProvider fetches latest readings from a sensor gateway over HTTP.
// The gateway exposes GET /sensors/{id}/latest returning a reading document.
// Calls are rate limited, retried on transient failures, and circuit broken
// when the gateway stays down.
type GatewayProvider struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	retry   resilience.RetryConfig
	breaker *resilience.CircuitBreaker
}

// NewGatewayProvider creates a rate-limited gateway client.
func NewGatewayProvider(opts GatewayOptions) *GatewayProvider {
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 20
	}
	if opts.Burst == 0 {
		opts.Burst = int(math.Ceil(opts.RateLimit))
	}

	retry := resilience.DefaultRetryConfig()
	if opts.MaxRetries > 0 {
		retry.MaxAttempts = opts.MaxRetries
	}
	retry.InitialBackoff = 100 * time.Millisecond

	transport := &http.Transport{
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
	return &GatewayProvider{
		baseURL: opts.BaseURL,
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		limiter: rate.NewLimiter(rate.Limit(opts.RateLimit), opts.Burst),
		retry:   retry,
		breaker: resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{}),
	}
}

// Latest fetches the most recent reading for the sensor. Any gateway
// failure is reported as a missing reading; the sensor classifies as
// no-data instead of failing the analysis.
func (p *GatewayProvider) Latest(ctx context.Context, sensorID string) (model.Reading, bool) {
	endpoint := fmt.Sprintf("%s/sensors/%s/latest", p.baseURL, url.PathEscape(sensorID))

	body, err := p.fetch(ctx, endpoint)
	if err != nil {
		zap.L().Warn("reading: gateway fetch failed",
			zap.String("sensor_id", sensorID),
			zap.Error(err),
		)
		return model.Reading{}, false
	}

	var r model.Reading
	if err := json.Unmarshal(body, &r); err != nil {
		zap.L().Warn("reading: gateway returned malformed reading",
			zap.String("sensor_id", sensorID),
			zap.Error(err),
		)
		return model.Reading{}, false
	}
	return r, true
}

func (p *GatewayProvider) fetch(ctx context.Context, endpoint string) ([]byte, error) {
	var body []byte
	err := p.breaker.Execute(ctx, func(ctx context.Context) error {
		return resilience.Do(ctx, p.retry, func(ctx context.Context) error {
			if err := p.limiter.Wait(ctx); err != nil {
				return eris.Wrap(err, "reading: rate limiter wait")
			}

			req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
			if err != nil {
				return eris.Wrap(err, "reading: build request")
			}

			resp, err := p.client.Do(req)
			if err != nil {
				return resilience.NewTransientError(err, 0)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				statusErr := eris.Errorf("reading: http %d from %s", resp.StatusCode, endpoint)
				if resilience.IsTransientHTTPStatus(resp.StatusCode) {
					return resilience.NewTransientError(statusErr, resp.StatusCode)
				}
				return statusErr
			}

			b, err := io.ReadAll(resp.Body)
			if err != nil {
				return resilience.NewTransientError(err, 0)
			}
			body = b
			return nil
		})
	})
	return body, err
}
