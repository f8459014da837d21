package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/todays-weather/internal/weather"
)

// Refresher is the part of weather.Service the scheduler drives.
type Refresher interface {
	FetchAndStore(ctx context.Context, kind weather.Kind) ([]byte, error)
}

// Scheduler periodically refreshes cached documents.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   Refresher
	kinds     []weather.Kind
	interval  time.Duration
	timeout   time.Duration
}

// New creates a new Scheduler.
func New(kinds []weather.Kind, interval, timeout time.Duration, service Refresher) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		service:   service,
		kinds:     kinds,
		interval:  interval,
		timeout:   timeout,
	}
}

// Start schedules the refresh job, runs it once immediately and starts the
// underlying scheduler.
func (s *Scheduler) Start() error {
	if len(s.kinds) == 0 {
		log.Println("scheduler: no document kinds configured; nothing to schedule")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 30
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(s.RunOnce)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// RunOnce refreshes every configured kind concurrently.
func (s *Scheduler) RunOnce() {
	log.Println("scheduler: running document refresh job")

	var wg sync.WaitGroup
	for _, kind := range s.kinds {
		kind := kind
		wg.Add(1)
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
			defer cancel()

			if _, err := s.service.FetchAndStore(ctx, kind); err != nil {
				log.Printf("scheduler: refresh failed for %s: %v", kind, err)
			}
		}()
	}
	wg.Wait()
	log.Println("scheduler: completed document refresh job")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
