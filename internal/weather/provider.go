package weather

import (
	"context"
)

// Provider abstracts the upstream weather API (e.g. WeatherAPI.com).
type Provider interface {
	Name() string
	Fetch(ctx context.Context, q Query) (Payload, error)
}

// Store is the contract the in-memory probe history must satisfy.
type Store interface {
	SaveProbe(result ProbeResult)
	LatestProbe() (ProbeResult, error)
	Probes() []ProbeResult
}
