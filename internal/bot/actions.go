package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	searchController "musicbot/internal/controllers/search"
	subscriptionController "musicbot/internal/controllers/subscription"
	themeController "musicbot/internal/controllers/theme"
	"musicbot/internal/models"
	"musicbot/internal/repositories"
	"musicbot/internal/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
)

var fontPreviews = map[string]string{
	"default":   "Regular text",
	"monospace": "`Monospace text`",
	"serif":     "*Serif text* (simulated with bold)",
	"rounded":   "_Rounded text_ (simulated with italic)",
}

var colorFieldNames = map[string]string{
	"primary":   "Primary",
	"secondary": "Background",
	"accent":    "Accent",
}

// press is one inline button press.
type press struct {
	chatID     int64
	messageID  int
	telegramID int64
	user       *models.User
	callback   callback
}

func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	log := b.log.Function("handleCallback")

	if query.Message == nil || query.From == nil {
		return
	}
	chatID := query.Message.Chat.ID

	if err := b.sender.request(ctx, chatID, tgbotapi.NewCallback(query.ID, "")); err != nil {
		log.Warn("Failed to answer callback", "chatID", chatID, "error", err)
	}

	parsed, err := parseCallback(query.Data)
	if err != nil {
		log.Warn("Ignoring callback", "data", query.Data, "error", err)
		return
	}

	p := press{
		chatID:     chatID,
		messageID:  query.Message.MessageID,
		telegramID: query.From.ID,
		user:       b.register(ctx, query.From),
		callback:   parsed,
	}

	switch parsed.Action {
	case actPlatform:
		b.onPlatform(ctx, p)
	case actSelect:
		b.onSelect(ctx, p)
	case actPreview:
		b.onAcquire(ctx, p, services.ModePreview)
	case actDownload:
		b.onAcquire(ctx, p, services.ModeFull)
	case actShare:
		b.onShare(ctx, p)
	case actConvert:
		b.onConvert(ctx, p)
	case actSubNew:
		b.saveState(ctx, p.telegramID, &models.ChatState{Step: models.StepAwaitingArtist})
		b.edit(ctx, p.chatID, p.messageID, subscribeArtistPrompt, nil, "")
	case actSubPlatform:
		b.onSubscribe(ctx, p)
	case actSubManage:
		b.showSubscriptions(ctx, p, "")
	case actUnsubscribe:
		b.onUnsubscribe(ctx, p)
	case actSubDone:
		b.edit(ctx, p.chatID, p.messageID, subsDoneText, nil, "")
	case actSubToggle:
		b.onToggleNotifications(ctx, p)
	case actTheme:
		b.onTheme(ctx, p)
	case actThemeColors:
		b.showColorMenu(ctx, p, "")
	case actThemeColor:
		b.onThemeColor(ctx, p)
	case actThemeEmoji:
		b.showEmojiMenu(ctx, p, "")
	case actThemeFont:
		b.showFontMenu(ctx, p, "")
	case actThemeSet:
		b.onThemeSet(ctx, p)
	case actGenre:
		b.onGenre(ctx, p)
	case actCustomRec:
		b.saveState(ctx, p.telegramID, &models.ChatState{Step: models.StepAwaitingRecommend})
		b.edit(ctx, p.chatID, p.messageID, recommendPromptText, nil, "")
	case actCancel:
		b.clearState(ctx, p.telegramID)
		b.edit(ctx, p.chatID, p.messageID, cancelledText, nil, "")
	default:
		log.Warn("Unknown callback action", "data", query.Data)
	}
}

func (b *Bot) onPlatform(ctx context.Context, p press) {
	platform, err := models.ParsePlatform(p.callback.arg(0))
	if err != nil {
		b.edit(ctx, p.chatID, p.messageID, b.themed(ctx, p.telegramID, choosePlatformText), ptr(platformKeyboard()), "")
		return
	}

	state := b.loadState(ctx, p.telegramID)
	b.edit(ctx, p.chatID, p.messageID, fmt.Sprintf(platformChosenText, platform.Label()), nil, "")

	if state.Query != "" {
		b.runSearch(ctx, p.chatID, p.telegramID, platform, state.Query)
		return
	}
	b.saveState(ctx, p.telegramID, &models.ChatState{Step: models.StepAwaitingQuery, Platform: platform})
}

// selection resolves the track a result button points at, telling the user
// when the stored results have expired.
func (b *Bot) selection(ctx context.Context, p press) (models.Track, int, bool) {
	index, err := p.callback.index()
	if err == nil {
		var track models.Track
		track, err = b.deps.Search.Selection(ctx, p.telegramID, index)
		if err == nil {
			return track, index, true
		}
	}
	if !errors.Is(err, searchController.ErrNoSelection) && !errors.Is(err, ErrCallbackArgument) {
		b.log.Function("selection").Er("failed to load selection", err, "telegramID", p.telegramID)
	}
	b.reply(ctx, p.chatID, b.themed(ctx, p.telegramID, selectionGoneText))
	return models.Track{}, 0, false
}

func (b *Bot) onSelect(ctx context.Context, p press) {
	track, index, ok := b.selection(ctx, p)
	if !ok {
		return
	}
	b.edit(ctx, p.chatID, p.messageID,
		fmt.Sprintf(selectedOptionsText, track.Title, track.Artist),
		ptr(trackOptionsKeyboard(index)), "")
}

// onAcquire runs the pipeline for the selected track and waits for it, so
// the follow-up offer is sent after the terminal pipeline message.
func (b *Bot) onAcquire(ctx context.Context, p press, mode services.AcquisitionMode) {
	track, index, ok := b.selection(ctx, p)
	if !ok {
		return
	}

	done := b.deps.Acquisition.Start(ctx, services.AcquisitionRequest{
		Platform: track.Platform,
		TrackID:  track.ID,
		Title:    track.Title,
		Artist:   track.Artist,
		Mode:     mode,
	}, newChatDelivery(b.sender, p.chatID))

	outcome := <-done
	if outcome.Err != nil {
		return
	}

	if mode == services.ModePreview {
		b.reply(ctx, p.chatID, previewFollowUpText, withMarkup(downloadKeyboard(index)))
		return
	}
	links := services.GenerateShareLinks(track.Title, track.Artist, track.Platform, track.ID)
	b.reply(ctx, p.chatID, shareFollowUpText, withMarkup(shareKeyboard(links)))
}

func (b *Bot) onShare(ctx context.Context, p press) {
	track, _, ok := b.selection(ctx, p)
	if !ok {
		return
	}
	links := services.GenerateShareLinks(track.Title, track.Artist, track.Platform, track.ID)
	b.reply(ctx, p.chatID, services.ShareMessage(track.Title, track.Artist, links),
		withMarkup(shareKeyboard(links)), withoutLinkPreview())
}

func (b *Bot) onConvert(ctx context.Context, p press) {
	direction, err := services.ParseDirection(p.callback.arg(0))
	if err != nil {
		b.edit(ctx, p.chatID, p.messageID, b.themed(ctx, p.telegramID, convertMenuText), ptr(convertKeyboard()), "")
		return
	}

	b.saveState(ctx, p.telegramID, &models.ChatState{
		Step:      models.StepAwaitingConvert,
		Direction: string(direction),
	})
	from := strings.ToUpper(strings.TrimPrefix(direction.InputExtension(), "."))
	to := strings.ToUpper(strings.TrimPrefix(direction.OutputExtension(), "."))
	b.edit(ctx, p.chatID, p.messageID, fmt.Sprintf(convertPromptText, from, to), nil, "")
}

func (b *Bot) onSubscribe(ctx context.Context, p press) {
	platform, err := models.ParsePlatform(p.callback.arg(0))
	if err != nil {
		return
	}

	state := b.loadState(ctx, p.telegramID)
	if state.Artist == "" {
		b.saveState(ctx, p.telegramID, &models.ChatState{Step: models.StepAwaitingArtist})
		b.edit(ctx, p.chatID, p.messageID, subscribeArtistPrompt, nil, "")
		return
	}
	b.clearState(ctx, p.telegramID)

	sub, err := b.deps.Subscriptions.Subscribe(ctx, p.telegramID, state.Artist, platform)
	var text string
	switch {
	case err == nil:
		text = fmt.Sprintf(subscribedText, sub.ArtistName, platform.Label())
	case errors.Is(err, repositories.ErrSubscriptionExists):
		text = fmt.Sprintf(alreadySubscribedText, state.Artist, platform.Label())
	case errors.Is(err, subscriptionController.ErrArtistNotFound), errors.Is(err, services.ErrServiceDisabled):
		text = fmt.Sprintf(artistNotFoundText, state.Artist, platform.Label())
	default:
		b.log.Function("onSubscribe").Er("subscribe failed", err, "telegramID", p.telegramID)
		text = genericErrorText
	}
	b.edit(ctx, p.chatID, p.messageID, b.themed(ctx, p.telegramID, text), nil, "")
}

func (b *Bot) showSubscriptions(ctx context.Context, p press, header string) {
	subs, err := b.deps.Subscriptions.List(ctx, p.telegramID)
	if err != nil {
		b.log.Function("showSubscriptions").Er("failed to list subscriptions", err, "telegramID", p.telegramID)
		b.edit(ctx, p.chatID, p.messageID, b.themed(ctx, p.telegramID, genericErrorText), nil, "")
		return
	}
	if len(subs) == 0 {
		b.edit(ctx, p.chatID, p.messageID, b.themed(ctx, p.telegramID, header+noSubscriptionsText), nil, "")
		return
	}
	b.edit(ctx, p.chatID, p.messageID, b.themed(ctx, p.telegramID, header+manageSubsText),
		ptr(manageSubscriptionsKeyboard(subs)), "")
}

func (b *Bot) onUnsubscribe(ctx context.Context, p press) {
	id, err := uuid.Parse(p.callback.arg(0))
	if err != nil {
		return
	}
	if err := b.deps.Subscriptions.Unsubscribe(ctx, p.telegramID, id); err != nil &&
		!errors.Is(err, repositories.ErrSubscriptionNotFound) {
		b.log.Function("onUnsubscribe").Er("unsubscribe failed", err, "telegramID", p.telegramID)
		b.edit(ctx, p.chatID, p.messageID, b.themed(ctx, p.telegramID, genericErrorText), nil, "")
		return
	}
	b.showSubscriptions(ctx, p, unsubscribedText+"\n\n")
}

func (b *Bot) onToggleNotifications(ctx context.Context, p press) {
	enabled, err := b.deps.Subscriptions.ToggleNotifications(ctx, p.telegramID)
	if err != nil {
		b.log.Function("onToggleNotifications").Er("toggle failed", err, "telegramID", p.telegramID)
		b.edit(ctx, p.chatID, p.messageID, b.themed(ctx, p.telegramID, genericErrorText), nil, "")
		return
	}
	text := notificationsOffText
	if enabled {
		text = notificationsOnText
	}
	b.edit(ctx, p.chatID, p.messageID, text, nil, "")
}

// showThemeMenu sends the preset picker, or rewrites messageID when non-zero.
func (b *Bot) showThemeMenu(ctx context.Context, chatID, telegramID int64, messageID int, header ...string) {
	theme := b.deps.Themes.Get(ctx, telegramID)
	current := services.DefaultThemeName
	if theme != nil {
		current = theme.ThemeName
	}

	text := strings.Join(append(header, fmt.Sprintf(themeMenuText, current)), "\n\n")
	text = b.themed(ctx, telegramID, text)
	markup := themeKeyboard(b.deps.Themes.Presets(), current)

	if messageID == 0 {
		b.reply(ctx, chatID, text, withMarkup(markup), withParseMode(tgbotapi.ModeMarkdown))
		return
	}
	b.edit(ctx, chatID, messageID, text, &markup, tgbotapi.ModeMarkdown)
}

func (b *Bot) onTheme(ctx context.Context, p press) {
	key := p.callback.arg(0)
	if key == "" {
		b.showThemeMenu(ctx, p.chatID, p.telegramID, p.messageID)
		return
	}

	theme, err := b.deps.Themes.Apply(ctx, &themeController.ApplyThemeRequest{TelegramID: p.telegramID, Theme: key})
	if err != nil {
		b.log.Function("onTheme").Warn("Failed to apply theme", "theme", key, "error", err)
		b.edit(ctx, p.chatID, p.messageID, b.themed(ctx, p.telegramID, themeFailedText), nil, "")
		return
	}

	name := key
	if preset, ok := services.LookupPreset(theme.ThemeName); ok {
		name = preset.Name
	}
	b.showThemeMenu(ctx, p.chatID, p.telegramID, p.messageID, fmt.Sprintf(themeAppliedText, name))
}

func (b *Bot) showColorMenu(ctx context.Context, p press, header string) {
	theme := b.currentTheme(ctx, p.telegramID)
	text := header + fmt.Sprintf(themeColorsText, theme.PrimaryColor, theme.SecondaryColor, theme.AccentColor)
	b.edit(ctx, p.chatID, p.messageID, b.themed(ctx, p.telegramID, text), ptr(themeColorsKeyboard()), tgbotapi.ModeMarkdown)
}

func (b *Bot) onThemeColor(ctx context.Context, p press) {
	field := p.callback.arg(0)
	name, ok := colorFieldNames[field]
	if !ok {
		b.showColorMenu(ctx, p, "")
		return
	}
	b.edit(ctx, p.chatID, p.messageID,
		b.themed(ctx, p.telegramID, fmt.Sprintf(themeColorChoiceText, name)),
		ptr(colorChoiceKeyboard(field)), tgbotapi.ModeMarkdown)
}

func (b *Bot) showEmojiMenu(ctx context.Context, p press, header string) {
	theme := b.currentTheme(ctx, p.telegramID)
	text := header + fmt.Sprintf(themeEmojiText, theme.EmojiSet)
	b.edit(ctx, p.chatID, p.messageID, b.themed(ctx, p.telegramID, text),
		ptr(styleKeyboard(settingEmojiSet, emojiSetOptions, theme.EmojiSet)), tgbotapi.ModeMarkdown)
}

func (b *Bot) showFontMenu(ctx context.Context, p press, header string) {
	theme := b.currentTheme(ctx, p.telegramID)
	preview, ok := fontPreviews[theme.FontStyle]
	if !ok {
		preview = "Text preview"
	}
	text := header + fmt.Sprintf(themeFontText, theme.FontStyle, preview)
	b.edit(ctx, p.chatID, p.messageID, b.themed(ctx, p.telegramID, text),
		ptr(styleKeyboard(settingFontStyle, fontStyleOptions, theme.FontStyle)), tgbotapi.ModeMarkdown)
}

const (
	settingEmojiSet  = "emoji_set"
	settingFontStyle = "font_style"
)

// themeSettings maps a theme_set button to a partial theme update.
func themeSettings(setting, value string) (models.ThemeSettings, bool) {
	var settings models.ThemeSettings
	switch setting {
	case "primary":
		settings.PrimaryColor = &value
	case "secondary":
		settings.SecondaryColor = &value
	case "accent":
		settings.AccentColor = &value
	case settingEmojiSet:
		settings.EmojiSet = &value
	case settingFontStyle:
		settings.FontStyle = &value
	default:
		return settings, false
	}
	return settings, true
}

func (b *Bot) onThemeSet(ctx context.Context, p press) {
	setting, value := p.callback.arg(0), p.callback.arg(1)
	settings, ok := themeSettings(setting, value)
	if !ok {
		b.showThemeMenu(ctx, p.chatID, p.telegramID, p.messageID)
		return
	}

	if _, err := b.deps.Themes.Customize(ctx, &themeController.CustomThemeRequest{
		TelegramID:    p.telegramID,
		ThemeSettings: settings,
	}); err != nil {
		b.log.Function("onThemeSet").Warn("Failed to update theme", "setting", setting, "error", err)
		b.edit(ctx, p.chatID, p.messageID, b.themed(ctx, p.telegramID, themeFailedText), nil, "")
		return
	}

	header := themeUpdatedText + "\n\n"
	switch setting {
	case settingEmojiSet:
		b.showEmojiMenu(ctx, p, header)
	case settingFontStyle:
		b.showFontMenu(ctx, p, header)
	default:
		b.showColorMenu(ctx, p, header)
	}
}

func (b *Bot) currentTheme(ctx context.Context, telegramID int64) *models.UserTheme {
	if theme := b.deps.Themes.Get(ctx, telegramID); theme != nil {
		return theme
	}
	preset, _ := services.LookupPreset(services.DefaultThemeName)
	return &models.UserTheme{
		ThemeName:      preset.Key,
		PrimaryColor:   preset.PrimaryColor,
		SecondaryColor: preset.SecondaryColor,
		AccentColor:    preset.AccentColor,
		FontStyle:      preset.FontStyle,
		EmojiSet:       preset.EmojiSet,
	}
}

func (b *Bot) onGenre(ctx context.Context, p press) {
	genre := p.callback.arg(0)
	if genre == "" {
		return
	}

	tracks, err := b.deps.Recommend.ByGenre(ctx, userID(p.user), genre, services.SearchResultLimit)
	if err != nil || len(tracks) == 0 {
		b.edit(ctx, p.chatID, p.messageID, b.themed(ctx, p.telegramID, recommendNoResultText), nil, "")
		return
	}
	text := formatRecommendations(services.Recommendations{Seed: genre, Spotify: tracks})
	b.edit(ctx, p.chatID, p.messageID, b.themed(ctx, p.telegramID, text), nil, "")
}

func withoutLinkPreview() replyOption {
	return func(msg *tgbotapi.MessageConfig) {
		msg.DisableWebPagePreview = true
	}
}

func ptr[T any](v T) *T {
	return &v
}
