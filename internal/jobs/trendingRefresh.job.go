package jobs

import (
	"context"

	"musicbot/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

type trendingRefresher interface {
	Refresh(ctx context.Context) error
}

type TrendingRefreshJob struct {
	trending trendingRefresher
	log      logger.Logger
	schedule services.Schedule
}

func NewTrendingRefreshJob(trending trendingRefresher, schedule services.Schedule) *TrendingRefreshJob {
	log := logger.New("trendingRefreshJob")
	log.Info("Creating new trending refresh job", "schedule", schedule)

	return &TrendingRefreshJob{
		trending: trending,
		log:      log,
		schedule: schedule,
	}
}

func (j *TrendingRefreshJob) Name() string {
	return "TrendingRefresh"
}

func (j *TrendingRefreshJob) Execute(ctx context.Context) error {
	if err := j.trending.Refresh(ctx); err != nil {
		return j.log.Function("Execute").Err("trending refresh failed", err)
	}
	return nil
}

func (j *TrendingRefreshJob) Schedule() services.Schedule {
	return j.schedule
}
