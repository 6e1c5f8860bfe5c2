package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/trackside-weather/internal/weather"
)

// Resolver is the part of weather.Service the scheduler drives.
type Resolver interface {
	ResolveWeatherForEvent(ctx context.Context, eventID string) (*weather.Result, error)
	SweepExpired(ctx context.Context) (int, error)
}

// Scheduler periodically sweeps expired weather and keeps configured events warm.
type Scheduler struct {
	scheduler     *gocron.Scheduler
	service       Resolver
	sweepInterval time.Duration
	warmIDs       []string
	warmInterval  time.Duration
}

// New creates a new Scheduler.
func New(service Resolver, sweepInterval time.Duration, warmIDs []string, warmInterval time.Duration) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler:     s,
		service:       service,
		sweepInterval: sweepInterval,
		warmIDs:       warmIDs,
		warmInterval:  warmInterval,
	}
}

// Start schedules the periodic jobs and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(minutesOr(s.sweepInterval, 60)).Minutes().Do(s.Sweep); err != nil {
		return err
	}

	if len(s.warmIDs) == 0 {
		log.Println("scheduler: no warm-up events configured")
	} else if _, err := s.scheduler.Every(minutesOr(s.warmInterval, 30)).Minutes().Do(s.Warm); err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Sweep removes expired weather records.
func (s *Scheduler) Sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := s.service.SweepExpired(ctx)
	if err != nil {
		log.Printf("scheduler: sweep failed: %v", err)
		return
	}
	log.Printf("scheduler: swept %d expired weather records", n)
}

// Warm resolves every configured event concurrently so requests hit cache.
func (s *Scheduler) Warm() {
	log.Println("scheduler: running weather warm-up job")

	var wg sync.WaitGroup
	for _, id := range s.warmIDs {
		wg.Add(1)
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if _, err := s.service.ResolveWeatherForEvent(ctx, id); err != nil {
				log.Printf("scheduler: warm-up failed for event %s: %v", id, err)
			}
		}()
	}
	wg.Wait()
	log.Println("scheduler: completed weather warm-up job")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

func minutesOr(d time.Duration, def int) int {
	if m := int(d.Minutes()); m > 0 {
		return m
	}
	return def
}
