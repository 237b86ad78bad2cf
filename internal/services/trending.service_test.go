package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"musicbot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestFormatTrending(t *testing.T) {
	t.Run("both platforms", func(t *testing.T) {
		text := FormatTrending(Trending{
			Spotify: []models.Track{{Title: "One", Artist: "A"}, {Title: "Two", Artist: "B"}},
			YouTube: []models.Track{{Title: "Clip", Artist: "C"}},
		})

		assert.True(t, strings.HasPrefix(text, "🔥 *TRENDING SONGS* 🔥"))
		assert.Contains(t, text, "📊 *Spotify Global Top 5*\n1. *One* - A\n2. *Two* - B\n")
		assert.Contains(t, text, "📺 *YouTube Music Trending*\n1. *Clip* - C\n")
		assert.True(t, strings.HasSuffix(text, "Use /search to download any of these songs!"))
	})

	t.Run("one platform missing", func(t *testing.T) {
		text := FormatTrending(Trending{YouTube: []models.Track{{Title: "Clip", Artist: "C"}}})
		assert.NotContains(t, text, "Spotify")
		assert.Contains(t, text, "1. *Clip* - C")
	})

	t.Run("nothing available", func(t *testing.T) {
		assert.Equal(t, TrendingFailureText, FormatTrending(Trending{}))
	})
}

func TestTrendingService_Get(t *testing.T) {
	spotify := &stubCatalog{err: errors.New("rate limited")}
	youtube := &stubCatalog{tracks: []models.Track{{ID: "v1", Title: "Clip", Platform: models.PlatformYouTube}}}

	trending := NewTrendingService(spotify, youtube, new(MockTrendingRepository), nil).Get(context.Background())

	assert.Empty(t, trending.Spotify)
	assert.Len(t, trending.YouTube, 1)
	assert.False(t, trending.Empty())
}

func TestTrendingService_Text(t *testing.T) {
	spotify := &stubCatalog{tracks: []models.Track{{Title: "One", Artist: "A"}}}
	youtube := &stubCatalog{err: errors.New("quota exceeded")}

	text := NewTrendingService(spotify, youtube, new(MockTrendingRepository), nil).Text(context.Background())

	assert.Contains(t, text, "1. *One* - A")
	assert.NotContains(t, text, "YouTube")
}

func TestTrendingService_Refresh(t *testing.T) {
	ctx := context.Background()

	t.Run("saves snapshot", func(t *testing.T) {
		repo := new(MockTrendingRepository)
		spotify := &stubCatalog{tracks: []models.Track{{ID: "s1", Platform: models.PlatformSpotify}}}
		youtube := &stubCatalog{tracks: []models.Track{{ID: "y1", Platform: models.PlatformYouTube}}}
		repo.On("SaveSnapshot", ctx, mock.AnythingOfType("time.Time"), mock.MatchedBy(func(tracks []models.Track) bool {
			return len(tracks) == 2 && tracks[0].ID == "s1" && tracks[1].ID == "y1"
		})).Return(nil)
		repo.On("PruneBefore", ctx, mock.AnythingOfType("time.Time")).Return(int64(10), nil)

		err := NewTrendingService(spotify, youtube, repo, nil).Refresh(ctx)

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("no data", func(t *testing.T) {
		repo := new(MockTrendingRepository)
		failing := &stubCatalog{err: errors.New("down")}

		err := NewTrendingService(failing, failing, repo, nil).Refresh(ctx)

		assert.Error(t, err)
		repo.AssertNotCalled(t, "SaveSnapshot", mock.Anything, mock.Anything, mock.Anything)
	})
}
