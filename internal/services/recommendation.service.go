package services

import (
	"context"
	"math/rand/v2"
	"strings"

	"musicbot/internal/models"
	"musicbot/internal/repositories"
	"musicbot/internal/utils"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
)

var popularGenres = []string{
	"pop", "rock", "hip-hop", "rap", "electronic", "dance",
	"r-n-b", "indie", "classical", "jazz", "metal", "punk",
	"soul", "blues", "reggae", "country", "folk", "latin",
	"edm", "ambient", "trap", "disco", "house",
}

type GenreRecommender interface {
	RecommendByGenre(ctx context.Context, genre string, limit int) ([]models.Track, error)
	RecommendByTrack(ctx context.Context, query string, limit int) ([]models.Track, error)
}

type Recommendations struct {
	Seed    string         `json:"seed"`
	Spotify []models.Track `json:"spotify"`
	YouTube []models.Track `json:"youtube"`
}

type RecommendationService struct {
	spotify GenreRecommender
	youtube TrackSearcher
	history repositories.SearchHistoryRepository
	log     logger.Logger
}

func NewRecommendationService(
	spotify GenreRecommender,
	youtube TrackSearcher,
	history repositories.SearchHistoryRepository,
) *RecommendationService {
	return &RecommendationService{
		spotify: spotify,
		youtube: youtube,
		history: history,
		log:     logger.New("recommendationService"),
	}
}

// PopularGenres lists the genres offered as recommendation seeds.
func PopularGenres() []string {
	genres := make([]string, len(popularGenres))
	copy(genres, popularGenres)
	return genres
}

// ByGenre returns Spotify recommendations for a genre. userID may be uuid.Nil
// to skip recording the request.
func (s *RecommendationService) ByGenre(ctx context.Context, userID uuid.UUID, genre string, limit int) ([]models.Track, error) {
	s.record(ctx, userID, genre)

	tracks, err := s.spotify.RecommendByGenre(ctx, genre, limit)
	if err != nil {
		return nil, s.log.Function("ByGenre").Err("failed to get genre recommendations", err, "genre", genre)
	}
	return tracks, nil
}

// Mixed combines Spotify and YouTube suggestions. An empty query picks a
// random popular genre. A provider failure leaves its list empty.
func (s *RecommendationService) Mixed(ctx context.Context, userID uuid.UUID, query string, limit int) Recommendations {
	log := s.log.Function("Mixed")

	query = strings.TrimSpace(query)
	result := Recommendations{Seed: query}

	if query == "" {
		genre := popularGenres[rand.IntN(len(popularGenres))]
		result.Seed = genre

		tracks, err := s.spotify.RecommendByGenre(ctx, genre, limit)
		if err != nil {
			log.Warn("Spotify genre recommendations failed", "genre", genre, "error", err)
		}
		result.Spotify = tracks
	} else {
		tracks, err := s.spotify.RecommendByTrack(ctx, query, limit)
		if err != nil {
			log.Warn("Spotify track recommendations failed", "query", query, "error", err)
		}
		result.Spotify = tracks
	}

	s.record(ctx, userID, result.Seed)

	videos, err := s.youtube.Search(ctx, result.Seed+" music", limit)
	if err != nil {
		log.Warn("YouTube recommendations failed", "query", result.Seed, "error", err)
	}
	result.YouTube = splitVideoTitles(videos)

	return result
}

func (s *RecommendationService) record(ctx context.Context, userID uuid.UUID, query string) {
	if userID == uuid.Nil || query == "" {
		return
	}
	if err := s.history.Record(ctx, userID, query, models.PlatformRecommendation); err != nil {
		s.log.Function("record").Warn("failed to record recommendation", "userID", userID, "error", err)
	}
}

// splitVideoTitles credits "Artist - Title" videos to the artist, keeping the
// channel name otherwise.
func splitVideoTitles(videos []models.Track) []models.Track {
	for i := range videos {
		if artist, title, ok := utils.SplitArtistTitle(videos[i].Title); ok {
			videos[i].Artist = artist
			videos[i].Title = title
		}
	}
	return videos
}
