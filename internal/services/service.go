package services

import (
	"context"

	"musicbot/config"
	"musicbot/internal/database"
	"musicbot/internal/repositories"
)

type Service struct {
	Media          *MediaService
	Download       *DownloadService
	YouTube        *YouTubeService
	Spotify        *SpotifyService
	Acquisition    *AcquisitionService
	Conversion     *ConversionService
	Lyrics         *LyricsService
	Trending       *TrendingService
	Notification   *NotificationService
	Theme          *ThemeService
	Recommendation *RecommendationService
	FileLink       *FileLinkService
	FileCleanup    *FileCleanupService
	Scheduler      *SchedulerService
}

func New(ctx context.Context, db database.DB, config config.Config, repos repositories.Repository) (Service, error) {
	youtubeService, err := NewYouTubeService(ctx, config)
	if err != nil {
		return Service{}, err
	}
	spotifyService := NewSpotifyService(ctx, config)

	fileLinkService, err := NewFileLinkService(config)
	if err != nil {
		return Service{}, err
	}

	mediaService := NewMediaService(config)
	downloadService := NewDownloadService(config)

	return Service{
		Media:          mediaService,
		Download:       downloadService,
		YouTube:        youtubeService,
		Spotify:        spotifyService,
		Acquisition:    NewAcquisitionService(config, downloadService, mediaService, youtubeService, spotifyService),
		Conversion:     NewConversionService(config, mediaService),
		Lyrics:         NewLyricsService(config, db.Cache.ClientAPI),
		Trending:       NewTrendingService(spotifyService, youtubeService, repos.Trending, db.Cache.General),
		Notification:   NewNotificationService(repos.Subscription, spotifyService, youtubeService),
		Theme:          NewThemeService(repos.Theme),
		Recommendation: NewRecommendationService(spotifyService, youtubeService, repos.SearchHistory),
		FileLink:       fileLinkService,
		FileCleanup:    NewFileCleanupService(config),
		Scheduler:      NewSchedulerService(),
	}, nil
}

// Wait blocks until in-flight pipeline runs have finished.
func (s Service) Wait() {
	s.Acquisition.Wait()
	s.Conversion.Wait()
}
