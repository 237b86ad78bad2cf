package services

import (
	"context"
	"sync"
	"time"

	"musicbot/internal/events"
	"musicbot/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockThemeRepository struct {
	mock.Mock
}

func (m *MockThemeRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*models.UserTheme, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserTheme), args.Error(1)
}

func (m *MockThemeRepository) Save(ctx context.Context, theme *models.UserTheme) error {
	args := m.Called(ctx, theme)
	return args.Error(0)
}

type MockSubscriptionRepository struct {
	mock.Mock
}

func (m *MockSubscriptionRepository) Create(ctx context.Context, sub *models.ArtistSubscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *MockSubscriptionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.ArtistSubscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ArtistSubscription), args.Error(1)
}

func (m *MockSubscriptionRepository) Delete(ctx context.Context, userID, subscriptionID uuid.UUID) error {
	args := m.Called(ctx, userID, subscriptionID)
	return args.Error(0)
}

func (m *MockSubscriptionRepository) ListNotifiable(ctx context.Context) ([]models.ArtistSubscription, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ArtistSubscription), args.Error(1)
}

func (m *MockSubscriptionRepository) MarkChecked(
	ctx context.Context,
	subscriptionID uuid.UUID,
	checkedAt time.Time,
	release *models.Release,
) error {
	args := m.Called(ctx, subscriptionID, checkedAt, release)
	return args.Error(0)
}

type MockSearchHistoryRepository struct {
	mock.Mock
}

func (m *MockSearchHistoryRepository) Record(ctx context.Context, userID uuid.UUID, query string, platform models.Platform) error {
	args := m.Called(ctx, userID, query, platform)
	return args.Error(0)
}

func (m *MockSearchHistoryRepository) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]models.SearchHistory, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SearchHistory), args.Error(1)
}

type MockTrendingRepository struct {
	mock.Mock
}

func (m *MockTrendingRepository) SaveSnapshot(ctx context.Context, capturedAt time.Time, tracks []models.Track) error {
	args := m.Called(ctx, capturedAt, tracks)
	return args.Error(0)
}

func (m *MockTrendingRepository) Latest(ctx context.Context, platform models.Platform, limit int) ([]models.TrendingSong, error) {
	args := m.Called(ctx, platform, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TrendingSong), args.Error(1)
}

func (m *MockTrendingRepository) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// stubCatalog serves fixed results for every catalog interface.
type stubCatalog struct {
	tracks        []models.Track
	releases      []models.Release
	upload        *models.Release
	err           error
	searchQueries []string
}

func (c *stubCatalog) Search(_ context.Context, query string, limit int) ([]models.Track, error) {
	c.searchQueries = append(c.searchQueries, query)
	return c.tracks, c.err
}

func (c *stubCatalog) PlaylistTracks(_ context.Context, _ string, _ int) ([]models.Track, error) {
	return c.tracks, c.err
}

func (c *stubCatalog) Trending(_ context.Context, _ int) ([]models.Track, error) {
	return c.tracks, c.err
}

func (c *stubCatalog) ArtistReleases(_ context.Context, _ string, _ int) ([]models.Release, error) {
	return c.releases, c.err
}

func (c *stubCatalog) LatestUpload(_ context.Context, _ string) (*models.Release, error) {
	return c.upload, c.err
}

func (c *stubCatalog) RecommendByGenre(_ context.Context, genre string, _ int) ([]models.Track, error) {
	c.searchQueries = append(c.searchQueries, "genre:"+genre)
	return c.tracks, c.err
}

func (c *stubCatalog) RecommendByTrack(_ context.Context, query string, _ int) ([]models.Track, error) {
	c.searchQueries = append(c.searchQueries, "track:"+query)
	return c.tracks, c.err
}

type recordingNotifier struct {
	messages map[int64][]string
	err      error
}

func (n *recordingNotifier) Notify(_ context.Context, telegramID int64, markdown string) error {
	if n.err != nil {
		return n.err
	}
	if n.messages == nil {
		n.messages = make(map[int64][]string)
	}
	n.messages[telegramID] = append(n.messages[telegramID], markdown)
	return nil
}

type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *recordingBus) Publish(channel events.Channel, event events.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	event.Channel = channel
	b.events = append(b.events, event)
	return nil
}
