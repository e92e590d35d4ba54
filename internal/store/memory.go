package store

import (
	"errors"
	"sync"
	"time"

	"github.com/i474232898/current-weather-proxy/internal/weather"
)

var (
	// ErrNotFound is returned when no probe has been recorded yet.
	ErrNotFound = errors.New("no upstream probe recorded")
)

// MemoryStore is a concurrency-safe in-memory history of upstream probes.
type MemoryStore struct {
	mu sync.RWMutex

	// oldest first
	probes []weather.ProbeResult

	// retention configuration
	maxHistory int           // max number of probes kept
	maxAge     time.Duration // optional max age for probes
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		maxHistory: maxHistory,
		maxAge:     maxAge,
	}
}

// SaveProbe appends a probe result and enforces retention.
func (s *MemoryStore) SaveProbe(result weather.ProbeResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.probes = append(s.probes, result)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(s.probes) > s.maxHistory {
		over := len(s.probes) - s.maxHistory
		s.probes = s.probes[over:]
	}

	// Enforce retention by age; the newest probe is always kept.
	if s.maxAge > 0 {
		cutoff := time.Now().Add(-s.maxAge)
		i := 0
		for ; i < len(s.probes)-1; i++ {
			if !s.probes[i].CheckedAt.Before(cutoff) {
				break
			}
		}
		s.probes = s.probes[i:]
	}
}

// LatestProbe returns the most recent probe result.
func (s *MemoryStore) LatestProbe() (weather.ProbeResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.probes) == 0 {
		return weather.ProbeResult{}, ErrNotFound
	}
	return s.probes[len(s.probes)-1], nil
}

// Probes returns a copy of the retained history, oldest first.
func (s *MemoryStore) Probes() []weather.ProbeResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]weather.ProbeResult, len(s.probes))
	copy(out, s.probes)
	return out
}
