package services

import (
	"context"
	"sort"
	"strings"

	"musicbot/config"
	"musicbot/internal/models"
	"musicbot/internal/utils"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/sony/gobreaker/v2"
	"github.com/zmb3/spotify"
	"golang.org/x/oauth2/clientcredentials"
)

const GlobalTopPlaylistID = "37i9dQZEVXbMDoHDwVN2tF"

// SpotifyService is a metadata-only catalog; Spotify tracks are always
// downloaded through a YouTube match.
type SpotifyService struct {
	client  *spotify.Client
	breaker *gobreaker.CircuitBreaker[any]
	log     logger.Logger
}

func NewSpotifyService(ctx context.Context, cfg config.Config) *SpotifyService {
	log := logger.New("spotifyService")
	service := &SpotifyService{
		breaker: newBreaker("spotify", log),
		log:     log,
	}

	if cfg.SpotifyClientID == "" || cfg.SpotifyClientSecret == "" {
		log.Warn("Spotify credentials not set, Spotify catalog disabled")
		return service
	}

	credentials := &clientcredentials.Config{
		ClientID:     cfg.SpotifyClientID,
		ClientSecret: cfg.SpotifyClientSecret,
		TokenURL:     spotify.TokenURL,
	}
	client := spotify.NewClient(credentials.Client(ctx))
	service.client = &client
	return service
}

func (s *SpotifyService) Enabled() bool {
	return s.client != nil
}

func (s *SpotifyService) Search(ctx context.Context, query string, limit int) ([]models.Track, error) {
	log := s.log.Function("Search")
	if !s.Enabled() {
		return nil, ErrServiceDisabled
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := guarded(s.breaker, "spotify", func() (*spotify.SearchResult, error) {
		return s.client.SearchOpt(query, spotify.SearchTypeTrack, &spotify.Options{Limit: &limit})
	})
	if err != nil {
		return nil, log.Err("failed to search tracks", err, "query", query)
	}
	if result == nil || result.Tracks == nil {
		return []models.Track{}, nil
	}

	tracks := make([]models.Track, 0, len(result.Tracks.Tracks))
	for _, track := range result.Tracks.Tracks {
		tracks = append(tracks, fullTrackToModel(track))
	}
	return tracks, nil
}

// ResolveTrack returns the title and joined artist names of a Spotify track.
func (s *SpotifyService) ResolveTrack(ctx context.Context, id string) (models.Track, error) {
	log := s.log.Function("ResolveTrack")
	if !s.Enabled() {
		return models.Track{}, ErrServiceDisabled
	}
	if err := ctx.Err(); err != nil {
		return models.Track{}, err
	}

	track, err := guarded(s.breaker, "spotify", func() (*spotify.FullTrack, error) {
		return s.client.GetTrack(spotify.ID(id))
	})
	if err != nil {
		return models.Track{}, log.Err("failed to get track", err, "trackID", id)
	}
	if track == nil {
		return models.Track{}, log.Error("track not found", "trackID", id)
	}

	return fullTrackToModel(*track), nil
}

func (s *SpotifyService) PlaylistTracks(ctx context.Context, playlistID string, limit int) ([]models.Track, error) {
	log := s.log.Function("PlaylistTracks")
	if !s.Enabled() {
		return nil, ErrServiceDisabled
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	page, err := guarded(s.breaker, "spotify", func() (*spotify.PlaylistTrackPage, error) {
		return s.client.GetPlaylistTracksOpt(spotify.ID(playlistID), &spotify.Options{Limit: &limit}, "")
	})
	if err != nil {
		return nil, log.Err("failed to get playlist tracks", err, "playlistID", playlistID)
	}
	if page == nil {
		return []models.Track{}, nil
	}

	tracks := make([]models.Track, 0, len(page.Tracks))
	for _, item := range page.Tracks {
		if item.Track.ID == "" {
			continue
		}
		tracks = append(tracks, fullTrackToModel(item.Track))
		if len(tracks) == limit {
			break
		}
	}
	return tracks, nil
}

// ArtistReleases returns up to limit albums and singles, newest first.
func (s *SpotifyService) ArtistReleases(ctx context.Context, artistID string, limit int) ([]models.Release, error) {
	log := s.log.Function("ArtistReleases")
	if !s.Enabled() {
		return nil, ErrServiceDisabled
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	page, err := guarded(s.breaker, "spotify", func() (*spotify.SimpleAlbumPage, error) {
		return s.client.GetArtistAlbums(spotify.ID(artistID))
	})
	if err != nil {
		return nil, log.Err("failed to get artist albums", err, "artistID", artistID)
	}
	if page == nil {
		return []models.Release{}, nil
	}

	releases := make([]models.Release, 0, len(page.Albums))
	for _, album := range page.Albums {
		albumType := strings.ToLower(album.AlbumType)
		if albumType != "album" && albumType != "single" {
			continue
		}
		released, err := utils.ParseReleaseDate(album.ReleaseDate)
		if err != nil {
			log.Warn("Skipping album with unparseable release date", "albumID", album.ID, "releaseDate", album.ReleaseDate)
			continue
		}
		url := album.ExternalURLs["spotify"]
		if url == "" {
			url = "https://open.spotify.com/album/" + string(album.ID)
		}
		releases = append(releases, models.Release{
			ID:          string(album.ID),
			Name:        album.Name,
			Type:        albumType,
			ReleaseDate: released,
			URL:         url,
			Platform:    models.PlatformSpotify,
		})
	}

	sort.SliceStable(releases, func(i, j int) bool {
		return releases[i].ReleaseDate.After(releases[j].ReleaseDate)
	})
	if len(releases) > limit {
		releases = releases[:limit]
	}
	return releases, nil
}

func (s *SpotifyService) SearchArtists(ctx context.Context, name string, limit int) ([]models.ArtistResult, error) {
	log := s.log.Function("SearchArtists")
	if !s.Enabled() {
		return nil, ErrServiceDisabled
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := guarded(s.breaker, "spotify", func() (*spotify.SearchResult, error) {
		return s.client.SearchOpt(name, spotify.SearchTypeArtist, &spotify.Options{Limit: &limit})
	})
	if err != nil {
		return nil, log.Err("failed to search artists", err, "name", name)
	}
	if result == nil || result.Artists == nil {
		return []models.ArtistResult{}, nil
	}

	artists := make([]models.ArtistResult, 0, len(result.Artists.Artists))
	for _, artist := range result.Artists.Artists {
		artists = append(artists, models.ArtistResult{
			ID:       string(artist.ID),
			Name:     artist.Name,
			Platform: models.PlatformSpotify,
		})
	}
	return artists, nil
}

func (s *SpotifyService) RecommendByGenre(ctx context.Context, genre string, limit int) ([]models.Track, error) {
	log := s.log.Function("RecommendByGenre")
	if !s.Enabled() {
		return nil, ErrServiceDisabled
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	recommendations, err := guarded(s.breaker, "spotify", func() (*spotify.Recommendations, error) {
		return s.client.GetRecommendations(
			spotify.Seeds{Genres: []string{genre}},
			nil,
			&spotify.Options{Limit: &limit},
		)
	})
	if err != nil {
		return nil, log.Err("failed to get recommendations", err, "genre", genre)
	}
	if recommendations == nil {
		return []models.Track{}, nil
	}

	tracks := make([]models.Track, 0, len(recommendations.Tracks))
	for _, track := range recommendations.Tracks {
		tracks = append(tracks, models.Track{
			ID:       string(track.ID),
			Title:    track.Name,
			Artist:   joinArtists(track.Artists),
			Platform: models.PlatformSpotify,
		})
	}
	return tracks, nil
}

func fullTrackToModel(track spotify.FullTrack) models.Track {
	thumbnail := ""
	if len(track.Album.Images) > 0 {
		thumbnail = track.Album.Images[0].URL
	}
	return models.Track{
		ID:        string(track.ID),
		Title:     track.Name,
		Artist:    joinArtists(track.Artists),
		Album:     track.Album.Name,
		Thumbnail: thumbnail,
		Platform:  models.PlatformSpotify,
	}
}

func joinArtists(artists []spotify.SimpleArtist) string {
	names := make([]string, 0, len(artists))
	for _, artist := range artists {
		names = append(names, artist.Name)
	}
	return strings.Join(names, ", ")
}

// RecommendByTrack seeds recommendations with the best match for query. The
// seed track itself is never returned.
func (s *SpotifyService) RecommendByTrack(ctx context.Context, query string, limit int) ([]models.Track, error) {
	log := s.log.Function("RecommendByTrack")

	seeds, err := s.Search(ctx, query, 1)
	if err != nil {
		return nil, err
	}
	if len(seeds) == 0 {
		return []models.Track{}, nil
	}
	seedID := seeds[0].ID

	recommendations, err := guarded(s.breaker, "spotify", func() (*spotify.Recommendations, error) {
		return s.client.GetRecommendations(
			spotify.Seeds{Tracks: []spotify.ID{spotify.ID(seedID)}},
			nil,
			&spotify.Options{Limit: &limit},
		)
	})
	if err != nil {
		return nil, log.Err("failed to get recommendations", err, "seed", seedID)
	}
	if recommendations == nil {
		return []models.Track{}, nil
	}

	tracks := make([]models.Track, 0, len(recommendations.Tracks))
	for _, track := range recommendations.Tracks {
		if string(track.ID) == seedID {
			continue
		}
		tracks = append(tracks, models.Track{
			ID:       string(track.ID),
			Title:    track.Name,
			Artist:   joinArtists(track.Artists),
			Platform: models.PlatformSpotify,
		})
	}
	return tracks, nil
}

func (s *SpotifyService) GenreSeeds(ctx context.Context) ([]string, error) {
	if !s.Enabled() {
		return nil, ErrServiceDisabled
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	genres, err := guarded(s.breaker, "spotify", func() ([]string, error) {
		return s.client.GetAvailableGenreSeeds()
	})
	if err != nil {
		return nil, s.log.Function("GenreSeeds").Err("failed to get genre seeds", err)
	}
	return genres, nil
}
