package jobs

import (
	"context"
	"time"

	"musicbot/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

type staleFileCleaner interface {
	CleanupStale(ctx context.Context, maxAge time.Duration) (int, error)
}

type FileCleanupJob struct {
	fileCleanup staleFileCleaner
	maxAge      time.Duration
	log         logger.Logger
	schedule    services.Schedule
}

// NewFileCleanupJob removes run directories and published files older than
// maxAge. maxAge should not be shorter than the file link TTL.
func NewFileCleanupJob(
	fileCleanup staleFileCleaner,
	maxAge time.Duration,
	schedule services.Schedule,
) *FileCleanupJob {
	log := logger.New("fileCleanupJob")
	log.Info("Creating new file cleanup job", "schedule", schedule, "maxAge", maxAge.String())

	return &FileCleanupJob{
		fileCleanup: fileCleanup,
		maxAge:      maxAge,
		log:         log,
		schedule:    schedule,
	}
}

func (j *FileCleanupJob) Name() string {
	return "StaleFileCleanup"
}

func (j *FileCleanupJob) Execute(ctx context.Context) error {
	log := j.log.Function("Execute")

	removed, err := j.fileCleanup.CleanupStale(ctx, j.maxAge)
	if err != nil {
		return log.Err("stale file cleanup failed", err, "removed", removed)
	}

	log.Info("Stale file cleanup completed", "removed", removed)
	return nil
}

func (j *FileCleanupJob) Schedule() services.Schedule {
	return j.schedule
}
