package services

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"musicbot/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSplitVideoTitles(t *testing.T) {
	videos := splitVideoTitles([]models.Track{
		{Title: "Daft Punk - One More Time", Artist: "DaftPunkVEVO"},
		{Title: "Lo-fi beats to study to", Artist: "Lofi Girl"},
	})

	assert.Equal(t, "Daft Punk", videos[0].Artist)
	assert.Equal(t, "One More Time", videos[0].Title)
	assert.Equal(t, "Lofi Girl", videos[1].Artist)
}

func TestRecommendationService_Mixed(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("seeded by query", func(t *testing.T) {
		history := new(MockSearchHistoryRepository)
		history.On("Record", ctx, userID, "bohemian rhapsody", models.PlatformRecommendation).Return(nil)
		spotify := &stubCatalog{tracks: []models.Track{{ID: "s1", Title: "Killer Queen"}}}
		youtube := &stubCatalog{tracks: []models.Track{{ID: "y1", Title: "Queen - Somebody to Love"}}}

		result := NewRecommendationService(spotify, youtube, history).Mixed(ctx, userID, " bohemian rhapsody ", 5)

		assert.Equal(t, "bohemian rhapsody", result.Seed)
		assert.Equal(t, []string{"track:bohemian rhapsody"}, spotify.searchQueries)
		assert.Equal(t, []string{"bohemian rhapsody music"}, youtube.searchQueries)
		require.Len(t, result.YouTube, 1)
		assert.Equal(t, "Queen", result.YouTube[0].Artist)
		history.AssertExpectations(t)
	})

	t.Run("random genre without query", func(t *testing.T) {
		history := new(MockSearchHistoryRepository)
		history.On("Record", ctx, userID, mock.AnythingOfType("string"), models.PlatformRecommendation).Return(nil)
		spotify := &stubCatalog{}

		result := NewRecommendationService(spotify, &stubCatalog{}, history).Mixed(ctx, userID, "", 5)

		assert.True(t, slices.Contains(PopularGenres(), result.Seed))
		require.Len(t, spotify.searchQueries, 1)
		assert.True(t, strings.HasPrefix(spotify.searchQueries[0], "genre:"))
	})

	t.Run("provider failures leave lists empty", func(t *testing.T) {
		failing := &stubCatalog{err: errors.New("down")}

		result := NewRecommendationService(failing, failing, new(MockSearchHistoryRepository)).Mixed(ctx, uuid.Nil, "song", 5)

		assert.Empty(t, result.Spotify)
		assert.Empty(t, result.YouTube)
	})
}

func TestRecommendationService_ByGenre(t *testing.T) {
	ctx := context.Background()
	spotify := &stubCatalog{tracks: []models.Track{{ID: "s1"}}}

	tracks, err := NewRecommendationService(spotify, &stubCatalog{}, new(MockSearchHistoryRepository)).
		ByGenre(ctx, uuid.Nil, "jazz", 5)

	require.NoError(t, err)
	assert.Len(t, tracks, 1)
	assert.Equal(t, []string{"genre:jazz"}, spotify.searchQueries)
}
