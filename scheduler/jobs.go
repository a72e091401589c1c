package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"findash_backend/services"
)

// Scheduler manages the recurring sync jobs.
type Scheduler struct {
	cron    *gocron.Scheduler
	sync    *services.SyncService
	symbols []string
}

// NewScheduler creates a scheduler over the injected sync service.
func NewScheduler(sync *services.SyncService, symbols []string) *Scheduler {
	return &Scheduler{
		cron:    gocron.NewScheduler(time.UTC),
		sync:    sync,
		symbols: symbols,
	}
}

// Start registers and starts all scheduled jobs.
func (s *Scheduler) Start() {
	log.Println("Starting scheduler...")

	// Incremental sync daily at 21:30 UTC, after US market close.
	s.cron.Every(1).Day().At("21:30").Do(func() {
		s.runSync(services.Incremental)
	})

	// Full replace weekly on Sunday, off trading hours. Repairs any rows an
	// incremental sync would never revisit.
	s.cron.Every(1).Week().Sunday().At("03:00").Do(func() {
		s.runSync(services.FullReplace)
	})

	s.cron.StartAsync()
	log.Println("Scheduler started successfully")
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("Scheduler stopped")
}

// runSync executes one sync run over the tracked symbols. A scheduled run
// gets a generous timeout; partial completion is a valid outcome.
func (s *Scheduler) runSync(mode services.SyncMode) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	log.Printf("Scheduled %s sync starting for %d symbols", mode, len(s.symbols))
	report := s.sync.Sync(ctx, s.symbols, mode)

	if failed := report.FailedSymbols(); len(failed) > 0 {
		log.Printf("Scheduled sync had failures: %v", failed)
	}
}
