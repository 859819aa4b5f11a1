package reliability

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// BackupJob runs the full backup cycle: snapshot, upload, rotate.
// Scheduled weekly; long uploads get a generous timeout.
type BackupJob struct {
	service *BackupService
	log     zerolog.Logger
}

// NewBackupJob creates a new backup job.
func NewBackupJob(service *BackupService, log zerolog.Logger) *BackupJob {
	return &BackupJob{
		service: service,
		log:     log.With().Str("job", "backup").Logger(),
	}
}

// Run executes one backup cycle.
func (j *BackupJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	if err := j.service.CreateAndUploadBackup(ctx); err != nil {
		return err
	}

	if err := j.service.RotateOldBackups(ctx); err != nil {
		j.log.Error().Err(err).Msg("Backup rotation failed")
	}
	return nil
}

// Name returns the job name for scheduling and logging.
func (j *BackupJob) Name() string {
	return "backup"
}
