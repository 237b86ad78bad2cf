package jobs

import (
	"musicbot/config"
	"musicbot/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

const (
	Daily        = services.Daily
	Hourly       = services.Hourly
	Every12Hours = services.Every12Hours
)

// RegisterAllJobs adds the background jobs to the scheduler. notifier delivers
// release alerts; a nil notifier skips the release job.
func RegisterAllJobs(
	schedulerService *services.SchedulerService,
	config config.Config,
	services services.Service,
	notifier services.Notifier,
) error {
	log := logger.New("jobs").Function("RegisterAllJobs")

	if !config.SchedulerEnabled {
		log.Info("Scheduler disabled, skipping job registration")
		return nil
	}

	log.Info("Registering jobs")

	if err := schedulerService.AddJob(NewTrendingRefreshJob(services.Trending, Hourly)); err != nil {
		return log.Err("failed to register trending refresh job", err)
	}

	if notifier != nil {
		if err := schedulerService.AddJob(NewNewReleaseJob(services.Notification, notifier, Every12Hours)); err != nil {
			return log.Err("failed to register new release job", err)
		}
	} else {
		log.Warn("No notifier available, new release job not registered")
	}

	if err := schedulerService.AddJob(NewFileCleanupJob(services.FileCleanup, services.FileLink.TTL(), Hourly)); err != nil {
		return log.Err("failed to register file cleanup job", err)
	}

	log.Info("Jobs registered", "count", schedulerService.GetJobCount())
	return nil
}
