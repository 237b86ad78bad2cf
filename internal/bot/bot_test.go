package bot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"musicbot/internal/models"
	"musicbot/internal/progress"
	"musicbot/internal/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testChatID int64 = 42

type testBot struct {
	bot       *Bot
	api       *fakeAPI
	chatState *MockChatStateRepository
	users     *MockUserController
	themes    *stubThemes
	lyrics    *stubLyrics
	acquire   *stubAcquisition
}

func newTestBot(t *testing.T, tracks ...models.Track) testBot {
	t.Helper()

	preset, ok := services.LookupPreset(services.DefaultThemeName)
	require.True(t, ok)

	tb := testBot{
		api:       newFakeAPI(),
		chatState: &MockChatStateRepository{},
		users:     &MockUserController{},
		themes: &stubThemes{theme: &models.UserTheme{
			ThemeName:      preset.Key,
			PrimaryColor:   preset.PrimaryColor,
			SecondaryColor: preset.SecondaryColor,
			AccentColor:    preset.AccentColor,
			FontStyle:      preset.FontStyle,
			EmojiSet:       preset.EmojiSet,
		}},
		lyrics:  &stubLyrics{},
		acquire: &stubAcquisition{},
	}
	tb.users.On("Register", mock.Anything, mock.Anything).
		Return(&models.User{BaseUUIDModel: models.BaseUUIDModel{ID: uuid.New()}, TelegramID: testChatID}, nil).
		Maybe()

	tb.bot = newBot(tb.api, Dependencies{
		Users:       tb.users,
		Search:      stubSelection{tracks: tracks},
		Themes:      tb.themes,
		ChatState:   tb.chatState,
		Acquisition: tb.acquire,
		Lyrics:      tb.lyrics,
		Trending:    stubTrending{text: "📈 Trending"},
		Recommend: stubRecommender{
			tracks: []models.Track{{Title: "Song", Artist: "Band"}},
			mixed:  services.Recommendations{YouTube: []models.Track{{Title: "Clip", Artist: "Singer"}}},
		},
	})
	return tb
}

func commandUpdate(command string) tgbotapi.Update {
	name, _, _ := strings.Cut(command, " ")
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text:     command,
		Chat:     &tgbotapi.Chat{ID: testChatID},
		From:     &tgbotapi.User{ID: testChatID, FirstName: "Sam"},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(name)}},
	}}
}

func textUpdate(text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text: text,
		Chat: &tgbotapi.Chat{ID: testChatID},
		From: &tgbotapi.User{ID: testChatID},
	}}
}

func callbackUpdate(data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		Data:    data,
		From:    &tgbotapi.User{ID: testChatID},
		Message: &tgbotapi.Message{MessageID: 7, Chat: &tgbotapi.Chat{ID: testChatID}},
	}}
}

func TestHelpCommandUsesThemeEmoji(t *testing.T) {
	tb := newTestBot(t)
	tb.themes.theme.EmojiSet = "minimal"

	tb.bot.dispatch(context.Background(), commandUpdate("/help"))

	messages := tb.api.messages()
	require.Len(t, messages, 1)
	assert.Equal(t, tgbotapi.ModeMarkdown, messages[0].ParseMode)
	assert.True(t, strings.HasPrefix(messages[0].Text, "♪ *Music Bot Help* ♪"))
	assert.NotContains(t, messages[0].Text, "{emoji:")
}

func TestStartCommandGreetsByName(t *testing.T) {
	tb := newTestBot(t)
	tb.users.ExpectedCalls = nil
	tb.users.On("Register", mock.Anything, models.ChatProfile{TelegramID: testChatID, FirstName: "Sam"}).
		Return(&models.User{FirstName: "Sam <3"}, nil)
	tb.chatState.On("Clear", mock.Anything, testChatID).Return(nil)

	tb.bot.dispatch(context.Background(), commandUpdate("/start"))

	messages := tb.api.messages()
	require.Len(t, messages, 1)
	assert.Equal(t, tgbotapi.ModeHTML, messages[0].ParseMode)
	assert.Contains(t, messages[0].Text, "tg://user?id=42'>Sam &lt;3</a>")
	tb.users.AssertExpectations(t)
	tb.chatState.AssertExpectations(t)
}

func TestIdleTextFallsBack(t *testing.T) {
	tb := newTestBot(t)
	tb.chatState.On("Get", mock.Anything, testChatID).Return(&models.ChatState{}, nil)

	tb.bot.dispatch(context.Background(), textUpdate("hello"))

	assert.Equal(t, []string{unknownInputText}, tb.api.texts())
}

func TestLyricsFlow(t *testing.T) {
	tests := []struct {
		name     string
		lyrics   *services.Lyrics
		err      error
		expected string
	}{
		{
			name:     "found",
			lyrics:   &services.Lyrics{Title: "Hello", Artist: "Adele", Text: "Hello, it's me"},
			expected: "🎵 Hello by Adele\n\nHello, it's me",
		},
		{
			name:     "not found",
			err:      services.ErrLyricsNotFound,
			expected: "❌ Sorry, couldn't find lyrics for 'Hello' by Adele.",
		},
		{
			name:     "disabled",
			err:      services.ErrLyricsUnavailable,
			expected: "Lyrics search is not available right now.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tb := newTestBot(t)
			tb.lyrics.lyrics = tt.lyrics
			tb.lyrics.err = tt.err
			tb.chatState.On("Get", mock.Anything, testChatID).
				Return(&models.ChatState{Step: models.StepAwaitingLyrics}, nil)
			tb.chatState.On("Clear", mock.Anything, testChatID).Return(nil)

			tb.bot.dispatch(context.Background(), textUpdate("Hello - Adele"))

			texts := tb.api.texts()
			require.Len(t, texts, 2)
			assert.Equal(t, "🔍 Searching for lyrics of 'Hello' by Adele...", texts[0])
			assert.Contains(t, texts[1], tt.expected)
			assert.Equal(t, [][2]string{{"Hello", "Adele"}}, tb.lyrics.calls)
		})
	}
}

func TestPlatformCallbackWaitsForQuery(t *testing.T) {
	tb := newTestBot(t)
	tb.chatState.On("Get", mock.Anything, testChatID).
		Return(&models.ChatState{Step: models.StepAwaitingPlatform}, nil)
	tb.chatState.On("Save", mock.Anything, testChatID, mock.MatchedBy(func(state *models.ChatState) bool {
		return state.Step == models.StepAwaitingQuery && state.Platform == models.PlatformSpotify
	})).Return(nil)

	tb.bot.dispatch(context.Background(), callbackUpdate("platform:spotify"))

	assert.Equal(t, []string{"You selected Spotify. Please enter your search query:"}, tb.api.texts())
	require.Len(t, tb.api.requests, 1)
	tb.chatState.AssertExpectations(t)
}

func TestPreviewCallbackStartsPipelineAndOffersDownload(t *testing.T) {
	track := models.Track{ID: "abc", Title: "Song", Artist: "Band", Platform: models.PlatformYouTube}
	tb := newTestBot(t, track)

	tb.bot.dispatch(context.Background(), callbackUpdate("preview:0"))

	require.Len(t, tb.acquire.requests, 1)
	assert.Equal(t, services.AcquisitionRequest{
		Platform: models.PlatformYouTube,
		TrackID:  "abc",
		Title:    "Song",
		Artist:   "Band",
		Mode:     services.ModePreview,
	}, tb.acquire.requests[0])

	messages := tb.api.messages()
	require.Len(t, messages, 2)
	assert.Equal(t, services.DownloadSuccessText, messages[0].Text)
	assert.Equal(t, previewFollowUpText, messages[1].Text)
	markup, ok := messages[1].ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	assert.Equal(t, "download:0", *markup.InlineKeyboard[0][0].CallbackData)
}

func TestFailedDownloadSendsNoFollowUp(t *testing.T) {
	tb := newTestBot(t, models.Track{ID: "abc", Platform: models.PlatformYouTube})
	tb.acquire.err = services.ErrNoAudioSource

	tb.bot.dispatch(context.Background(), callbackUpdate("download:0"))

	require.Len(t, tb.acquire.requests, 1)
	assert.Empty(t, tb.api.messages())
}

func TestStaleSelection(t *testing.T) {
	tb := newTestBot(t)

	tb.bot.dispatch(context.Background(), callbackUpdate("select:3"))

	assert.Equal(t, []string{"⚠️ That result is no longer available. Please /search again."}, tb.api.texts())
	assert.Empty(t, tb.acquire.requests)
}

func TestThemeCallbacks(t *testing.T) {
	t.Run("apply preset", func(t *testing.T) {
		tb := newTestBot(t)

		tb.bot.dispatch(context.Background(), callbackUpdate("theme:ocean"))

		assert.Equal(t, []string{"ocean"}, tb.themes.applied)
		texts := tb.api.texts()
		require.Len(t, texts, 1)
		assert.Contains(t, texts[0], "Theme changed to *Ocean*")
		assert.Contains(t, texts[0], "Current theme: *ocean*")
	})

	t.Run("set emoji set", func(t *testing.T) {
		tb := newTestBot(t)

		tb.bot.dispatch(context.Background(), callbackUpdate("theme_set:emoji_set:music"))

		require.Len(t, tb.themes.custom, 1)
		require.NotNil(t, tb.themes.custom[0].EmojiSet)
		assert.Equal(t, "music", *tb.themes.custom[0].EmojiSet)
		texts := tb.api.texts()
		require.Len(t, texts, 1)
		assert.Contains(t, texts[0], "Current set: *music*")
	})

	t.Run("failure", func(t *testing.T) {
		tb := newTestBot(t)
		tb.themes.err = errors.New("validation error")

		tb.bot.dispatch(context.Background(), callbackUpdate("theme_set:primary:#123456"))

		assert.Equal(t, []string{"❌ Sorry, there was a problem updating your theme setting."}, tb.api.texts())
	})
}

func TestConvertCallbackStoresDirection(t *testing.T) {
	tb := newTestBot(t)
	tb.chatState.On("Save", mock.Anything, testChatID, &models.ChatState{
		Step:      models.StepAwaitingConvert,
		Direction: string(services.MP4ToMP3),
	}).Return(nil)

	tb.bot.dispatch(context.Background(), callbackUpdate("convert:mp4_to_mp3"))

	assert.Equal(t, []string{"Please send me the MP4 file you want to convert to MP3."}, tb.api.texts())
	tb.chatState.AssertExpectations(t)
}

func TestConvertRejectsWrongFile(t *testing.T) {
	tb := newTestBot(t)
	tb.chatState.On("Get", mock.Anything, testChatID).Return(&models.ChatState{
		Step:      models.StepAwaitingConvert,
		Direction: string(services.MP3ToMP4),
	}, nil)

	update := textUpdate("")
	update.Message.Video = &tgbotapi.Video{FileID: "f", FileName: "clip.mp4", MimeType: "video/mp4"}
	tb.bot.dispatch(context.Background(), update)

	assert.Equal(t, []string{convertInvalidText}, tb.api.texts())
	tb.chatState.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
}

func TestRecommendCommandWithQuery(t *testing.T) {
	tb := newTestBot(t)
	tb.chatState.On("Clear", mock.Anything, testChatID).Return(nil)

	tb.bot.dispatch(context.Background(), commandUpdate("/recommend daft punk"))

	texts := tb.api.texts()
	require.Len(t, texts, 1)
	assert.Equal(t, "👍 Recommendations for 'daft punk'\n\nYouTube:\n1. Clip - Singer", texts[0])
}

func TestNotifySendsMarkdown(t *testing.T) {
	tb := newTestBot(t)

	require.NoError(t, tb.bot.Notify(context.Background(), 7, "🎵 *New release*"))

	messages := tb.api.messages()
	require.Len(t, messages, 1)
	assert.Equal(t, int64(7), messages[0].ChatID)
	assert.Equal(t, tgbotapi.ModeMarkdown, messages[0].ParseMode)
}

func TestServeStopsOnCancel(t *testing.T) {
	tb := newTestBot(t)
	ctx, cancel := context.WithCancel(context.Background())

	errs := make(chan error, 1)
	go func() { errs <- tb.bot.Serve(ctx) }()

	tb.api.updates <- commandUpdate("/help")
	require.Eventually(t, func() bool { return len(tb.api.messages()) == 1 }, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-errs:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	assert.True(t, tb.api.stopped)
}

func TestServeReportsClosedUpdates(t *testing.T) {
	tb := newTestBot(t)
	close(tb.api.updates)

	err := tb.bot.Serve(context.Background())
	assert.ErrorIs(t, err, ErrUpdatesClosed)
}

func TestSplitLyricsQuery(t *testing.T) {
	tests := []struct {
		query, title, artist string
	}{
		{"Hello - Adele", "Hello", "Adele"},
		{"Bohemian Rhapsody", "Bohemian Rhapsody", ""},
		{"Anti-Hero - Taylor Swift", "Anti-Hero", "Taylor Swift"},
		{"Yellow-Coldplay", "Yellow", "Coldplay"},
		{"  Song -  ", "Song", ""},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			title, artist := splitLyricsQuery(tt.query)
			assert.Equal(t, tt.title, title)
			assert.Equal(t, tt.artist, artist)
		})
	}
}

func TestUploadedFileMatches(t *testing.T) {
	tests := []struct {
		name      string
		file      uploadedFile
		direction services.ConversionDirection
		expected  bool
	}{
		{"mp3 by extension", uploadedFile{FileName: "a.MP3"}, services.MP3ToMP4, true},
		{"mp4 for mp3 input", uploadedFile{FileName: "a.mp4"}, services.MP3ToMP4, false},
		{"audio mime", uploadedFile{MimeType: "audio/mpeg"}, services.MP3ToMP4, true},
		{"video mime", uploadedFile{MimeType: "video/mp4"}, services.MP4ToMP3, true},
		{"audio mime for video input", uploadedFile{MimeType: "audio/mpeg"}, services.MP4ToMP3, false},
		{"unknown", uploadedFile{}, services.MP4ToMP3, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.file.matches(tt.direction))
		})
	}
}

func TestFormatHistoryEscapesMarkdown(t *testing.T) {
	at := time.Date(2024, 3, 9, 14, 5, 0, 0, time.UTC)
	text := formatHistory([]models.SearchHistory{
		{Query: "my_song*", Platform: models.PlatformSpotify, SearchedAt: at},
	})

	assert.Equal(t, historyHeaderText+`1. my\_song\* (Spotify) Mar 9 14:05`, text)
}

func TestThemeSettings(t *testing.T) {
	for _, setting := range []string{"primary", "secondary", "accent", settingEmojiSet, settingFontStyle} {
		t.Run(setting, func(t *testing.T) {
			settings, ok := themeSettings(setting, "x")
			require.True(t, ok)
			theme := &models.UserTheme{}
			settings.Apply(theme)
			assert.Equal(t, models.CustomThemeName, theme.ThemeName)
		})
	}

	_, ok := themeSettings("border", "x")
	assert.False(t, ok)
}

func TestDeliveryMapsNotModified(t *testing.T) {
	api := newFakeAPI()
	delivery := newChatDelivery(newSender(api), testChatID)

	ref, err := delivery.SendStatus(context.Background(), "Starting")
	require.NoError(t, err)
	assert.Equal(t, progress.StatusRef(101), ref)

	api.sendErrs = []error{&tgbotapi.Error{Code: 400, Message: "Bad Request: message is not modified"}}
	err = delivery.EditStatus(context.Background(), ref, "Starting")
	assert.ErrorIs(t, err, progress.ErrMessageNotModified)

	require.NoError(t, delivery.DeleteStatus(context.Background(), ref))
	require.Len(t, api.requests, 1)
	deleted, ok := api.requests[0].(tgbotapi.DeleteMessageConfig)
	require.True(t, ok)
	assert.Equal(t, 101, deleted.MessageID)
}

func TestDeliverySendsAudioWithDisplayName(t *testing.T) {
	api := newFakeAPI()
	delivery := newChatDelivery(newSender(api), testChatID)

	path := filepath.Join(t.TempDir(), "audio.mp3")
	require.NoError(t, os.WriteFile(path, []byte("ID3"), 0o644))

	err := delivery.SendAudio(context.Background(), services.AudioAsset{
		Path:      path,
		FileName:  "Song - Band.mp3",
		Title:     "Song",
		Performer: "Band",
	})
	require.NoError(t, err)

	require.Len(t, api.sent, 1)
	audio, ok := api.sent[0].(tgbotapi.AudioConfig)
	require.True(t, ok)
	assert.Equal(t, "Song", audio.Title)
	assert.Equal(t, "Band", audio.Performer)
	reader, ok := audio.File.(tgbotapi.FileReader)
	require.True(t, ok)
	assert.Equal(t, "Song - Band.mp3", reader.Name)

	err = delivery.SendAudio(context.Background(), services.AudioAsset{Path: path + ".missing"})
	assert.Error(t, err)
}

func TestSenderRetriesFloodControl(t *testing.T) {
	api := newFakeAPI()
	api.sendErrs = []error{&tgbotapi.Error{
		Code:               429,
		Message:            "Too Many Requests",
		ResponseParameters: tgbotapi.ResponseParameters{RetryAfter: 1},
	}}
	s := newSender(api)

	sent, err := s.send(context.Background(), testChatID, tgbotapi.NewMessage(testChatID, "hi"))
	require.NoError(t, err)
	assert.Equal(t, 101, sent.MessageID)
	assert.Len(t, api.sent, 2)
}

func TestStatusEditDoesNotWaitOnFloodControl(t *testing.T) {
	api := newFakeAPI()
	api.sendErrs = []error{&tgbotapi.Error{
		Code:               429,
		Message:            "Too Many Requests",
		ResponseParameters: tgbotapi.ResponseParameters{RetryAfter: 3},
	}}
	presenter := progress.NewPresenter(newChatDelivery(newSender(api), testChatID), progress.WithStatusMessage(77))

	started := time.Now()
	presenter.OnEvent(context.Background(), progress.Event{
		Phase:            progress.PhaseDownloading,
		BytesTransferred: 50,
		BytesTotal:       100,
	})

	assert.Less(t, time.Since(started), 500*time.Millisecond)
	assert.Len(t, api.sent, 1)
}

func TestDeliveryDropsThrottledEdits(t *testing.T) {
	api := newFakeAPI()
	delivery := newChatDelivery(newSender(api), testChatID)

	started := time.Now()
	for i := 0; i < chatBurst+2; i++ {
		require.NoError(t, delivery.EditStatus(context.Background(), 77, "Downloading"))
	}

	assert.Less(t, time.Since(started), 500*time.Millisecond)
	assert.Len(t, api.sent, chatBurst)
}

func TestSenderPrunesIdleChats(t *testing.T) {
	s := newSender(newFakeAPI())
	s.chatLimiter(1)
	s.chatLimiter(2)
	s.chats[1].lastUsed = time.Now().Add(-2 * limiterIdle)

	s.prune()

	assert.NotContains(t, s.chats, int64(1))
	assert.Contains(t, s.chats, int64(2))
}
