package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/wxpoint/wxpoint/internal/state"
)

// Refresher periodically re-runs the view state's last successful query
// so the displayed data does not go stale between user searches.
type Refresher struct {
	scheduler *gocron.Scheduler
	manager   *state.Manager
	interval  time.Duration
	timeout   time.Duration
}

// New creates a Refresher. An interval <= 0 disables refreshing.
func New(manager *state.Manager, interval, timeout time.Duration) *Refresher {
	s := gocron.NewScheduler(time.UTC)
	return &Refresher{
		scheduler: s,
		manager:   manager,
		interval:  interval,
		timeout:   timeout,
	}
}

// Start schedules the periodic refresh job and starts the underlying
// scheduler.
func (r *Refresher) Start() error {
	if r.interval <= 0 {
		log.Println("scheduler: refresh disabled; nothing to schedule")
		return nil
	}

	_, err := r.scheduler.Every(r.interval).Do(func() {
		log.Println("scheduler: refreshing current weather view")

		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		r.manager.Refresh(ctx)
	})
	if err != nil {
		return err
	}

	r.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (r *Refresher) Stop() {
	if r.scheduler != nil {
		r.scheduler.Stop()
	}
}
