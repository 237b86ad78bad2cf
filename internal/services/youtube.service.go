package services

import (
	"context"
	"html"
	"time"

	"musicbot/config"
	"musicbot/internal/models"
	"musicbot/internal/utils"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/sony/gobreaker/v2"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

const (
	youTubeMusicCategory = "10"
	youTubeChartRegion   = "US"
	unknownArtist        = "Unknown Artist"
)

// YouTubeService queries the YouTube Data API. It is the only source of
// downloadable audio.
type YouTubeService struct {
	api     *youtube.Service
	breaker *gobreaker.CircuitBreaker[any]
	log     logger.Logger
}

func NewYouTubeService(ctx context.Context, cfg config.Config) (*YouTubeService, error) {
	log := logger.New("youtubeService")
	service := &YouTubeService{
		breaker: newBreaker("youtube", log),
		log:     log,
	}

	if cfg.YouTubeAPIKey == "" {
		log.Warn("YOUTUBE_API_KEY not set, YouTube catalog disabled")
		return service, nil
	}

	api, err := youtube.NewService(ctx, option.WithAPIKey(cfg.YouTubeAPIKey))
	if err != nil {
		return nil, log.Err("failed to create YouTube client", err)
	}
	service.api = api
	return service, nil
}

func (s *YouTubeService) Enabled() bool {
	return s.api != nil
}

func (s *YouTubeService) Search(ctx context.Context, query string, limit int) ([]models.Track, error) {
	log := s.log.Function("Search")
	if !s.Enabled() {
		return nil, ErrServiceDisabled
	}

	response, err := guarded(s.breaker, "youtube", func() (*youtube.SearchListResponse, error) {
		return s.api.Search.List([]string{"id", "snippet"}).
			Q(query).
			Type("video").
			MaxResults(int64(limit)).
			Context(ctx).
			Do()
	})
	if err != nil {
		return nil, log.Err("failed to search videos", err, "query", query)
	}

	tracks := make([]models.Track, 0, len(response.Items))
	for _, item := range response.Items {
		if item.Id == nil || item.Id.VideoId == "" || item.Snippet == nil {
			continue
		}
		tracks = append(tracks, models.Track{
			ID:        item.Id.VideoId,
			Title:     html.UnescapeString(item.Snippet.Title),
			Artist:    html.UnescapeString(item.Snippet.ChannelTitle),
			Thumbnail: thumbnailURL(item.Snippet.Thumbnails),
			Platform:  models.PlatformYouTube,
		})
	}

	return tracks, nil
}

// Trending returns the most popular music videos. Titles in "Artist - Title"
// form are split, anything else is credited to an unknown artist.
func (s *YouTubeService) Trending(ctx context.Context, limit int) ([]models.Track, error) {
	log := s.log.Function("Trending")
	if !s.Enabled() {
		return nil, ErrServiceDisabled
	}

	response, err := guarded(s.breaker, "youtube", func() (*youtube.VideoListResponse, error) {
		return s.api.Videos.List([]string{"snippet"}).
			Chart("mostPopular").
			RegionCode(youTubeChartRegion).
			VideoCategoryId(youTubeMusicCategory).
			MaxResults(int64(limit)).
			Context(ctx).
			Do()
	})
	if err != nil {
		return nil, log.Err("failed to list trending videos", err)
	}

	tracks := make([]models.Track, 0, len(response.Items))
	for _, item := range response.Items {
		if item.Snippet == nil {
			continue
		}
		artist, title, ok := utils.SplitArtistTitle(html.UnescapeString(item.Snippet.Title))
		if !ok {
			artist = unknownArtist
		}
		tracks = append(tracks, models.Track{
			ID:        item.Id,
			Title:     title,
			Artist:    artist,
			Thumbnail: thumbnailURL(item.Snippet.Thumbnails),
			Platform:  models.PlatformYouTube,
		})
	}

	return tracks, nil
}

// LatestUpload returns the newest video of a channel, or nil when the channel
// has no uploads.
func (s *YouTubeService) LatestUpload(ctx context.Context, channelID string) (*models.Release, error) {
	log := s.log.Function("LatestUpload")
	if !s.Enabled() {
		return nil, ErrServiceDisabled
	}

	response, err := guarded(s.breaker, "youtube", func() (*youtube.SearchListResponse, error) {
		return s.api.Search.List([]string{"id", "snippet"}).
			ChannelId(channelID).
			Order("date").
			Type("video").
			MaxResults(1).
			Context(ctx).
			Do()
	})
	if err != nil {
		return nil, log.Err("failed to list channel uploads", err, "channelID", channelID)
	}

	for _, item := range response.Items {
		if item.Id == nil || item.Id.VideoId == "" || item.Snippet == nil {
			continue
		}
		published, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt)
		if err != nil {
			log.Warn("Unparseable publish time", "videoID", item.Id.VideoId, "publishedAt", item.Snippet.PublishedAt)
			continue
		}
		track := models.Track{ID: item.Id.VideoId, Platform: models.PlatformYouTube}
		return &models.Release{
			ID:          item.Id.VideoId,
			Name:        html.UnescapeString(item.Snippet.Title),
			Type:        "video",
			ReleaseDate: published.UTC(),
			URL:         track.URL(),
			Platform:    models.PlatformYouTube,
		}, nil
	}

	return nil, nil
}

func (s *YouTubeService) SearchChannels(ctx context.Context, name string, limit int) ([]models.ArtistResult, error) {
	log := s.log.Function("SearchChannels")
	if !s.Enabled() {
		return nil, ErrServiceDisabled
	}

	response, err := guarded(s.breaker, "youtube", func() (*youtube.SearchListResponse, error) {
		return s.api.Search.List([]string{"id", "snippet"}).
			Q(name).
			Type("channel").
			MaxResults(int64(limit)).
			Context(ctx).
			Do()
	})
	if err != nil {
		return nil, log.Err("failed to search channels", err, "name", name)
	}

	channels := make([]models.ArtistResult, 0, len(response.Items))
	for _, item := range response.Items {
		if item.Id == nil || item.Id.ChannelId == "" || item.Snippet == nil {
			continue
		}
		channels = append(channels, models.ArtistResult{
			ID:       item.Id.ChannelId,
			Name:     html.UnescapeString(item.Snippet.ChannelTitle),
			Platform: models.PlatformYouTube,
		})
	}
	return channels, nil
}

func thumbnailURL(thumbnails *youtube.ThumbnailDetails) string {
	if thumbnails == nil {
		return ""
	}
	for _, t := range []*youtube.Thumbnail{thumbnails.High, thumbnails.Medium, thumbnails.Default} {
		if t != nil && t.Url != "" {
			return t.Url
		}
	}
	return ""
}
