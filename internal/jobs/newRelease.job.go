package jobs

import (
	"context"

	"musicbot/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

type releaseChecker interface {
	CheckForNewReleases(ctx context.Context, notifier services.Notifier) (int, error)
}

// NewReleaseJob alerts subscribers about new releases of the artists they
// follow.
type NewReleaseJob struct {
	notifications releaseChecker
	notifier      services.Notifier
	log           logger.Logger
	schedule      services.Schedule
}

func NewNewReleaseJob(
	notifications releaseChecker,
	notifier services.Notifier,
	schedule services.Schedule,
) *NewReleaseJob {
	log := logger.New("newReleaseJob")
	log.Info("Creating new release check job", "schedule", schedule)

	return &NewReleaseJob{
		notifications: notifications,
		notifier:      notifier,
		log:           log,
		schedule:      schedule,
	}
}

func (j *NewReleaseJob) Name() string {
	return "NewReleaseCheck"
}

func (j *NewReleaseJob) Execute(ctx context.Context) error {
	log := j.log.Function("Execute")

	sent, err := j.notifications.CheckForNewReleases(ctx, j.notifier)
	if err != nil {
		return log.Err("new release check failed", err, "sent", sent)
	}

	log.Info("New release check completed", "sent", sent)
	return nil
}

func (j *NewReleaseJob) Schedule() services.Schedule {
	return j.schedule
}
