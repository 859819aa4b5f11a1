package cache

import (
	"github.com/rs/zerolog"
)

// CleanupJob removes expired and day-old cache entries.
// It runs once at startup and then daily on the cron schedule.
type CleanupJob struct {
	service *Service
	log     zerolog.Logger
}

// NewCleanupJob creates a new cache cleanup job.
func NewCleanupJob(service *Service, log zerolog.Logger) *CleanupJob {
	return &CleanupJob{
		service: service,
		log:     log.With().Str("job", "cache_cleanup").Logger(),
	}
}

// Run executes the cleanup, removing everything past its useful life.
func (j *CleanupJob) Run() error {
	deleted, err := j.service.PurgeStale()
	if err != nil {
		return err
	}

	if deleted > 0 {
		j.log.Info().Int64("deleted", deleted).Msg("Cache cleanup completed")
	}
	return nil
}

// Name returns the job name for scheduling and logging.
func (j *CleanupJob) Name() string {
	return "cache_cleanup"
}
