package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/i474232898/current-weather-proxy/internal/weather"
	"github.com/sony/gobreaker"
)

const (
	defaultWeatherAPIBaseURL = "https://api.weatherapi.com/v1"

	// maxPayload bounds the upstream body read into memory.
	maxPayload = 1 << 20
)

// WeatherAPIConfig configures a WeatherAPIProvider. Zero values fall back to defaults.
type WeatherAPIConfig struct {
	APIKey  string
	BaseURL string
	Backoff BackoffConfig

	// BreakerThreshold is the number of consecutive failures that opens the breaker.
	BreakerThreshold uint32
	// BreakerTimeout is how long the breaker stays open before probing again.
	BreakerTimeout time.Duration
}

// WeatherAPIProvider implements the weather.Provider interface for WeatherAPI.com.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewWeatherAPIProvider(client *http.Client, cfg WeatherAPIConfig) *WeatherAPIProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultWeatherAPIBaseURL
	}
	if cfg.Backoff.MaxAttempts == 0 {
		cfg.Backoff.MaxAttempts = 5
	}
	if cfg.Backoff.InitialInterval == 0 {
		cfg.Backoff.InitialInterval = time.Second
	}
	if cfg.BreakerThreshold == 0 {
		cfg.BreakerThreshold = 20
	}
	if cfg.BreakerTimeout == 0 {
		cfg.BreakerTimeout = time.Minute
	}

	threshold := cfg.BreakerThreshold
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "weatherapi",
		MaxRequests: 1,
		Interval:    1 * time.Minute,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
	})

	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: cfg.Backoff,
		},
		circuit: cb,
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

// Fetch requests current conditions for q.City in q.Format and returns the raw body.
// Every failure is a *weather.UpstreamError.
func (p *WeatherAPIProvider) Fetch(ctx context.Context, q weather.Query) (weather.Payload, error) {
	if p.apiKey == "" {
		return weather.Payload{}, &weather.UpstreamError{Err: fmt.Errorf("weatherapi api key is not configured")}
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("q", q.City)
		values.Set("key", p.apiKey)

		// WeatherAPI picks the response encoding from the path suffix.
		u := fmt.Sprintf("%s/current.%s?%s", p.baseURL, q.Format, values.Encode())
		req, err := http.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		return req, nil
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		upErr := &weather.UpstreamError{Err: err}
		var se *statusError
		if errors.As(err, &se) {
			upErr.StatusCode = se.StatusCode
		}
		return weather.Payload{}, upErr
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayload))
	if err != nil {
		return weather.Payload{}, &weather.UpstreamError{StatusCode: resp.StatusCode, Err: err}
	}

	return weather.Payload{
		Format:     q.Format,
		StatusCode: resp.StatusCode,
		Body:       body,
	}, nil
}
