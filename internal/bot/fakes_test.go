package bot

import (
	"context"
	"sync"

	"musicbot/internal/models"
	"musicbot/internal/services"

	searchController "musicbot/internal/controllers/search"
	themeController "musicbot/internal/controllers/theme"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type fakeAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	sendErrs []error
	nextID   int
	updates  chan tgbotapi.Update
	stopped  bool
	fileURL  string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{nextID: 100, updates: make(chan tgbotapi.Update, 10)}
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sent = append(f.sent, c)
	if len(f.sendErrs) > 0 {
		err := f.sendErrs[0]
		f.sendErrs = f.sendErrs[1:]
		if err != nil {
			return tgbotapi.Message{}, err
		}
	}
	f.nextID++
	return tgbotapi.Message{MessageID: f.nextID}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) StopReceivingUpdates() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

func (f *fakeAPI) GetFileDirectURL(string) (string, error) {
	return f.fileURL, nil
}

// texts returns the text of every sent message and edit.
func (f *fakeAPI) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []string
	for _, c := range f.sent {
		switch msg := c.(type) {
		case tgbotapi.MessageConfig:
			out = append(out, msg.Text)
		case tgbotapi.EditMessageTextConfig:
			out = append(out, msg.Text)
		}
	}
	return out
}

func (f *fakeAPI) messages() []tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []tgbotapi.MessageConfig
	for _, c := range f.sent {
		if msg, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, msg)
		}
	}
	return out
}

type MockChatStateRepository struct {
	mock.Mock
}

func (m *MockChatStateRepository) Get(ctx context.Context, telegramID int64) (*models.ChatState, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatState), args.Error(1)
}

func (m *MockChatStateRepository) Save(ctx context.Context, telegramID int64, state *models.ChatState) error {
	args := m.Called(ctx, telegramID, state)
	return args.Error(0)
}

func (m *MockChatStateRepository) Clear(ctx context.Context, telegramID int64) error {
	args := m.Called(ctx, telegramID)
	return args.Error(0)
}

type MockUserController struct {
	mock.Mock
}

func (m *MockUserController) Register(ctx context.Context, profile models.ChatProfile) (*models.User, error) {
	args := m.Called(ctx, profile)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserController) GetUser(ctx context.Context, telegramID int64) (*models.User, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type stubThemes struct {
	theme   *models.UserTheme
	applied []string
	custom  []models.ThemeSettings
	err     error
}

func (s *stubThemes) Presets() []services.ThemePreset {
	return services.PresetThemes()
}

func (s *stubThemes) Get(context.Context, int64) *models.UserTheme {
	return s.theme
}

func (s *stubThemes) Format(_ context.Context, _ int64, text string) string {
	if s.theme == nil {
		return services.FormatWithEmojiSet(text, services.DefaultThemeName)
	}
	return services.FormatWithEmojiSet(text, s.theme.EmojiSet)
}

func (s *stubThemes) Apply(_ context.Context, request *themeController.ApplyThemeRequest) (*models.UserTheme, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.applied = append(s.applied, request.Theme)
	s.theme.ThemeName = request.Theme
	return s.theme, nil
}

func (s *stubThemes) Customize(_ context.Context, request *themeController.CustomThemeRequest) (*models.UserTheme, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.custom = append(s.custom, request.ThemeSettings)
	request.Apply(s.theme)
	return s.theme, nil
}

type stubLyrics struct {
	lyrics *services.Lyrics
	err    error
	calls  [][2]string
}

func (s *stubLyrics) Search(_ context.Context, title, artist string) (*services.Lyrics, error) {
	s.calls = append(s.calls, [2]string{title, artist})
	return s.lyrics, s.err
}

type stubTrending struct{ text string }

func (s stubTrending) Text(context.Context) string { return s.text }

type stubRecommender struct {
	tracks []models.Track
	mixed  services.Recommendations
}

func (s stubRecommender) ByGenre(context.Context, uuid.UUID, string, int) ([]models.Track, error) {
	return s.tracks, nil
}

func (s stubRecommender) Mixed(_ context.Context, _ uuid.UUID, query string, _ int) services.Recommendations {
	result := s.mixed
	result.Seed = query
	return result
}

type stubAcquisition struct {
	requests []services.AcquisitionRequest
	err      error
}

func (s *stubAcquisition) Start(
	ctx context.Context,
	req services.AcquisitionRequest,
	delivery services.AssetDelivery,
) <-chan services.Outcome {
	s.requests = append(s.requests, req)
	done := make(chan services.Outcome, 1)
	if s.err == nil {
		_ = delivery.SendText(ctx, services.DownloadSuccessText)
	}
	done <- services.Outcome{Request: req, Err: s.err}
	close(done)
	return done
}

type stubSelection struct {
	tracks []models.Track
}

func (s stubSelection) Search(context.Context, int64, models.Platform, string) ([]models.Track, error) {
	return s.tracks, nil
}

func (s stubSelection) History(context.Context, int64, int) ([]models.SearchHistory, error) {
	return nil, nil
}

func (s stubSelection) Selection(_ context.Context, _ int64, index int) (models.Track, error) {
	state := models.ChatState{Results: s.tracks}
	track, ok := state.Result(index)
	if !ok {
		return models.Track{}, searchController.ErrNoSelection
	}
	return track, nil
}
