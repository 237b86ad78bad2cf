package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"musicbot/internal/constants"
	"musicbot/internal/database"
	"musicbot/internal/models"
	"musicbot/internal/repositories"

	logger "github.com/Bparsons0904/goLogger"
)

const (
	trendingTextKey     = "text"
	TrendingFailureText = "⚠️ Failed to fetch trending songs. Please try again later."
)

type PlaylistSource interface {
	PlaylistTracks(ctx context.Context, playlistID string, limit int) ([]models.Track, error)
}

type ChartSource interface {
	Trending(ctx context.Context, limit int) ([]models.Track, error)
}

type Trending struct {
	Spotify []models.Track `json:"spotify"`
	YouTube []models.Track `json:"youtube"`
}

func (t Trending) Empty() bool {
	return len(t.Spotify) == 0 && len(t.YouTube) == 0
}

type TrendingService struct {
	spotify PlaylistSource
	youtube ChartSource
	repo    repositories.TrendingRepository
	cache   database.CacheClient
	log     logger.Logger
}

func NewTrendingService(
	spotify PlaylistSource,
	youtube ChartSource,
	repo repositories.TrendingRepository,
	cache database.CacheClient,
) *TrendingService {
	return &TrendingService{
		spotify: spotify,
		youtube: youtube,
		repo:    repo,
		cache:   cache,
		log:     logger.New("trendingService"),
	}
}

// Get fetches the current charts. A failing provider contributes an empty list.
func (s *TrendingService) Get(ctx context.Context) Trending {
	log := s.log.Function("Get")

	var trending Trending

	spotifyTracks, err := s.spotify.PlaylistTracks(ctx, GlobalTopPlaylistID, TrendingPerPlatform)
	if err != nil {
		log.Warn("Spotify chart unavailable", "error", err)
	} else {
		trending.Spotify = spotifyTracks
	}

	youtubeTracks, err := s.youtube.Trending(ctx, TrendingPerPlatform)
	if err != nil {
		log.Warn("YouTube chart unavailable", "error", err)
	} else {
		trending.YouTube = youtubeTracks
	}

	return trending
}

// Text returns the formatted chart, served from cache when fresh.
func (s *TrendingService) Text(ctx context.Context) string {
	log := s.log.Function("Text")

	text, found, err := database.NewCacheBuilder(s.cache, trendingTextKey).
		WithHash(constants.TrendingCachePrefix).
		WithContext(ctx).
		GetString()
	if err != nil {
		log.Warn("failed to read trending cache", "error", err)
	}
	if found {
		return text
	}

	trending := s.Get(ctx)
	text = FormatTrending(trending)
	if !trending.Empty() {
		s.cacheText(ctx, text)
	}
	return text
}

// Refresh captures a chart snapshot and primes the cache.
func (s *TrendingService) Refresh(ctx context.Context) error {
	log := s.log.Function("Refresh")

	trending := s.Get(ctx)
	if trending.Empty() {
		return log.Error("no trending data available")
	}

	tracks := make([]models.Track, 0, len(trending.Spotify)+len(trending.YouTube))
	tracks = append(tracks, trending.Spotify...)
	tracks = append(tracks, trending.YouTube...)
	now := time.Now().UTC()
	if err := s.repo.SaveSnapshot(ctx, now, tracks); err != nil {
		return err
	}
	if pruned, err := s.repo.PruneBefore(ctx, now.Add(-TrendingRetention)); err != nil {
		log.Warn("failed to prune old snapshots", "error", err)
	} else if pruned > 0 {
		log.Debug("Pruned old snapshots", "rows", pruned)
	}

	s.cacheText(ctx, FormatTrending(trending))
	log.Info("Trending refreshed", "spotify", len(trending.Spotify), "youtube", len(trending.YouTube))
	return nil
}

func (s *TrendingService) cacheText(ctx context.Context, text string) {
	if err := database.NewCacheBuilder(s.cache, trendingTextKey).
		WithHash(constants.TrendingCachePrefix).
		WithValue(text).
		WithTTL(constants.TrendingCacheExpiry).
		WithContext(ctx).
		Set(); err != nil {
		s.log.Function("cacheText").Warn("failed to cache trending text", "error", err)
	}
}

// FormatTrending renders the chart as a Markdown chat message.
func FormatTrending(trending Trending) string {
	if trending.Empty() {
		return TrendingFailureText
	}

	var b strings.Builder
	b.WriteString("🔥 *TRENDING SONGS* 🔥\n\n")

	if len(trending.Spotify) > 0 {
		b.WriteString("📊 *Spotify Global Top 5*\n")
		writeRanked(&b, trending.Spotify)
		b.WriteString("\n")
	}

	if len(trending.YouTube) > 0 {
		b.WriteString("📺 *YouTube Music Trending*\n")
		writeRanked(&b, trending.YouTube)
	}

	b.WriteString("\nUse /search to download any of these songs!")
	return b.String()
}

func writeRanked(b *strings.Builder, tracks []models.Track) {
	for i, track := range tracks {
		fmt.Fprintf(b, "%d. *%s* - %s\n", i+1, track.Title, track.Artist)
	}
}
