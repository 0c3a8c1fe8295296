package services

import (
	"time"

	"hmo-chatbot-backend/internal/logger"

	"github.com/go-co-op/gocron"
)

// Reindexer rebuilds the knowledge index on a cron schedule. The rebuild
// produces a complete new index before the provider swap, so in-flight
// queries always run against a consistent snapshot.
type Reindexer struct {
	scheduler *gocron.Scheduler
}

func NewReindexer() *Reindexer {
	s := gocron.NewScheduler(time.UTC)
	s.TagsUnique()
	return &Reindexer{scheduler: s}
}

// Schedule registers the rebuild job under the given cron expression.
func (r *Reindexer) Schedule(cronExpr string, rebuild func() error) error {
	_, err := r.scheduler.Cron(cronExpr).Tag("reindex").Do(func() {
		started := time.Now()
		if err := rebuild(); err != nil {
			logger.Error("scheduled reindex failed", "error", err)
			return
		}
		logger.Info("scheduled reindex completed", "duration", time.Since(started).String())
	})
	return err
}

// Start runs the scheduler in the background.
func (r *Reindexer) Start() {
	r.scheduler.StartAsync()
}

// Stop halts the scheduler; a rebuild already in progress finishes.
func (r *Reindexer) Stop() {
	r.scheduler.Stop()
}
