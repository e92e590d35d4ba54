package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/i474232898/current-weather-proxy/internal/weather"
)

// Scheduler periodically probes the upstream weather API.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   *weather.Service
	city      string
	interval  time.Duration
	timeout   time.Duration
}

// New creates a new Scheduler. An empty city disables probing.
func New(city string, interval, timeout time.Duration, service *weather.Service) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		service:   service,
		city:      city,
		interval:  interval,
		timeout:   timeout,
	}
}

// Start schedules the probe job and starts the underlying scheduler.
// The first probe runs immediately.
func (s *Scheduler) Start() error {
	if s.city == "" {
		log.Println("scheduler: no probe city configured; nothing to schedule")
		return nil
	}

	interval := s.interval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	timeout := s.timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	_, err := s.scheduler.Every(interval).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		result, err := s.service.CheckUpstream(ctx)
		if err != nil {
			log.Printf("scheduler: upstream probe %s for %q failed: %v", result.ID, s.city, err)
			return
		}
		log.Printf("scheduler: upstream probe %s for %q ok in %s", result.ID, s.city, result.Latency)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
