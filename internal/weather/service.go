package weather

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
)

// Service wires the upstream provider, the report formatter and the probe history.
type Service struct {
	provider  Provider
	probes    Store
	probeCity string
}

// NewService creates a new Service. probeCity may be empty to disable probing.
func NewService(provider Provider, probes Store, probeCity string) *Service {
	return &Service{
		provider:  provider,
		probes:    probes,
		probeCity: probeCity,
	}
}

// CurrentWeather fetches the current weather for q and renders it in q.Format.
//
// Upstream failures are returned as *UpstreamError. Missing or mismatched
// upstream fields are logged and rendered as empty values.
func (s *Service) CurrentWeather(ctx context.Context, q Query) (Rendered, error) {
	if s.provider == nil {
		return Rendered{}, &UpstreamError{Err: ErrNoProvider}
	}

	log.Printf("DEBUG: CurrentWeather called for %q as %s via %s", q.City, q.Format, s.provider.Name())

	payload, err := s.provider.Fetch(ctx, q)
	if err != nil {
		var upErr *UpstreamError
		if !errors.As(err, &upErr) {
			upErr = &UpstreamError{Err: err}
		}
		log.Printf("ERROR: provider %s fetch failed for %q: %v", s.provider.Name(), q.City, upErr)
		return Rendered{}, upErr
	}

	report, err := BuildReport(payload, q.City)
	if err != nil {
		// Partial data is served as empty fields rather than failing the request.
		log.Printf("ERROR: incomplete weather data for %q: %v", q.City, err)
	}

	body, err := report.Encode(q.Format)
	if err != nil {
		return Rendered{}, err
	}

	return Rendered{
		ContentType: q.Format.ContentType(),
		Body:        body,
	}, nil
}

// CheckUpstream performs one JSON fetch for the probe city and records the outcome.
func (s *Service) CheckUpstream(ctx context.Context) (ProbeResult, error) {
	if s.probeCity == "" {
		return ProbeResult{}, ErrProbeDisabled
	}
	if s.provider == nil {
		return ProbeResult{}, ErrNoProvider
	}

	result := ProbeResult{
		ID:        uuid.NewString(),
		City:      s.probeCity,
		CheckedAt: time.Now().UTC(),
	}

	start := time.Now()
	payload, err := s.provider.Fetch(ctx, Query{City: s.probeCity, Format: FormatJSON})
	result.Latency = time.Since(start)

	if err != nil {
		var upErr *UpstreamError
		if errors.As(err, &upErr) {
			result.StatusCode = upErr.StatusCode
		}
		result.Error = err.Error()
	} else {
		result.OK = true
		result.StatusCode = payload.StatusCode
	}

	if s.probes != nil {
		s.probes.SaveProbe(result)
	}
	return result, err
}

// UpstreamStatus returns the most recent probe result.
func (s *Service) UpstreamStatus() (ProbeResult, error) {
	if s.probeCity == "" || s.probes == nil {
		return ProbeResult{}, ErrProbeDisabled
	}
	return s.probes.LatestProbe()
}

// RecentFailures counts failed probes in the retained history.
func (s *Service) RecentFailures() int {
	if s.probes == nil {
		return 0
	}
	n := 0
	for _, p := range s.probes.Probes() {
		if !p.OK {
			n++
		}
	}
	return n
}
