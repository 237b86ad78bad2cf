package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	searchController "musicbot/internal/controllers/search"
	"musicbot/internal/models"
	"musicbot/internal/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const historyDateFormat = "Jan 2 15:04"

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	telegramID := chatID
	if message.From != nil {
		telegramID = message.From.ID
	}
	user := b.register(ctx, message.From)
	args := strings.TrimSpace(message.CommandArguments())

	b.log.Function("handleCommand").Debug("Handling command", "command", message.Command(), "telegramID", telegramID)

	switch message.Command() {
	case "start":
		b.clearState(ctx, telegramID)
		name := "there"
		if user != nil {
			name = user.DisplayName()
		}
		b.reply(ctx, chatID, fmt.Sprintf(startTemplate, telegramID, html.EscapeString(name)),
			withParseMode(tgbotapi.ModeHTML))
	case "help":
		b.reply(ctx, chatID, b.themed(ctx, telegramID, helpText), withParseMode(tgbotapi.ModeMarkdown))
	case "search":
		b.startSearch(ctx, chatID, telegramID, args)
	case "lyrics":
		if args != "" {
			b.findLyrics(ctx, chatID, telegramID, args)
			return
		}
		b.saveState(ctx, telegramID, &models.ChatState{Step: models.StepAwaitingLyrics})
		b.reply(ctx, chatID, b.themed(ctx, telegramID, lyricsPromptText))
	case "trending":
		b.reply(ctx, chatID, b.themed(ctx, telegramID, trendingFetchText))
		b.reply(ctx, chatID, b.deps.Trending.Text(ctx))
	case "subscribe":
		if args != "" {
			b.askSubscribePlatform(ctx, chatID, telegramID, args)
			return
		}
		b.reply(ctx, chatID, subscribeMenuText, withMarkup(subscribeMenuKeyboard()))
	case "convert":
		b.reply(ctx, chatID, b.themed(ctx, telegramID, convertMenuText), withMarkup(convertKeyboard()))
	case "recommend":
		if args != "" {
			b.recommendFor(ctx, chatID, telegramID, user, args)
			return
		}
		b.reply(ctx, chatID, b.themed(ctx, telegramID, recommendMenuText),
			withMarkup(genreKeyboard(services.PopularGenres())))
	case "theme":
		b.showThemeMenu(ctx, chatID, telegramID, 0)
	case "history":
		b.showHistory(ctx, chatID, telegramID)
	case "cancel":
		b.clearState(ctx, telegramID)
		b.reply(ctx, chatID, cancelledText)
	default:
		b.reply(ctx, chatID, unknownInputText)
	}
}

// startSearch asks for a platform. A query given with the command is kept so
// the platform choice runs it directly.
func (b *Bot) startSearch(ctx context.Context, chatID, telegramID int64, query string) {
	b.saveState(ctx, telegramID, &models.ChatState{Step: models.StepAwaitingPlatform, Query: query})
	b.reply(ctx, chatID, b.themed(ctx, telegramID, choosePlatformText), withMarkup(platformKeyboard()))
}

func (b *Bot) runSearch(ctx context.Context, chatID, telegramID int64, platform models.Platform, query string) {
	log := b.log.Function("runSearch")

	b.reply(ctx, chatID, b.themed(ctx, telegramID, fmt.Sprintf(searchingText, query, platform.Label())))

	tracks, err := b.deps.Search.Search(ctx, telegramID, platform, query)
	switch {
	case err == nil:
	case isValidationError(err):
		b.reply(ctx, chatID, err.Error())
		return
	default:
		log.Er("search failed", err, "platform", platform)
		b.reply(ctx, chatID, b.themed(ctx, telegramID, searchFailedText))
		return
	}

	if len(tracks) == 0 {
		b.saveState(ctx, telegramID, &models.ChatState{Step: models.StepAwaitingQuery, Platform: platform})
		b.reply(ctx, chatID, fmt.Sprintf(noResultsText, platform.Label()))
		return
	}

	b.reply(ctx, chatID, b.themed(ctx, telegramID, selectSongText), withMarkup(resultsKeyboard(tracks)))
}

func isValidationError(err error) bool {
	return errors.Is(err, searchController.ErrEmptyQuery) || errors.Is(err, searchController.ErrQueryTooLong)
}

// findLyrics takes "Title - Artist"; a query without a dash is treated as a
// bare title.
func (b *Bot) findLyrics(ctx context.Context, chatID, telegramID int64, query string) {
	title, artist := splitLyricsQuery(query)
	b.clearState(ctx, telegramID)

	b.reply(ctx, chatID, b.themed(ctx, telegramID, fmt.Sprintf(lyricsSearchingText, title, artistOrUnknown(artist))))

	lyrics, err := b.deps.Lyrics.Search(ctx, title, artist)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrLyricsNotFound):
		b.reply(ctx, chatID, b.themed(ctx, telegramID, fmt.Sprintf(lyricsNotFoundText, title, artistOrUnknown(artist))))
		return
	case errors.Is(err, services.ErrLyricsUnavailable):
		b.reply(ctx, chatID, b.themed(ctx, telegramID, lyricsDisabledText))
		return
	default:
		b.log.Function("findLyrics").Er("lyrics search failed", err, "title", title)
		b.reply(ctx, chatID, b.themed(ctx, telegramID, genericErrorText))
		return
	}

	for _, chunk := range services.ChunkLyrics(lyrics, services.TelegramMessageLimit) {
		b.reply(ctx, chatID, chunk)
	}
}

// splitLyricsQuery prefers a spaced " - " so hyphenated titles survive.
func splitLyricsQuery(query string) (title, artist string) {
	title, artist, found := strings.Cut(query, " - ")
	if !found {
		title, artist, found = strings.Cut(query, "-")
	}
	if !found {
		return strings.TrimSpace(query), ""
	}
	return strings.TrimSpace(title), strings.TrimSpace(artist)
}

func artistOrUnknown(artist string) string {
	if artist == "" {
		return "unknown artist"
	}
	return artist
}

func (b *Bot) askSubscribePlatform(ctx context.Context, chatID, telegramID int64, artist string) {
	b.saveState(ctx, telegramID, &models.ChatState{Artist: artist})
	b.reply(ctx, chatID, fmt.Sprintf(subscribePlatformText, artist), withMarkup(subscribePlatformKeyboard()))
}

func (b *Bot) recommendFor(ctx context.Context, chatID, telegramID int64, user *models.User, query string) {
	b.clearState(ctx, telegramID)
	result := b.deps.Recommend.Mixed(ctx, userID(user), query, services.SearchResultLimit)
	if len(result.Spotify) == 0 && len(result.YouTube) == 0 {
		b.reply(ctx, chatID, b.themed(ctx, telegramID, recommendNoResultText))
		return
	}
	b.reply(ctx, chatID, b.themed(ctx, telegramID, formatRecommendations(result)))
}

func formatRecommendations(result services.Recommendations) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "{emoji:recommend} Recommendations for '%s'\n", result.Seed)
	writeTrackList(&sb, "Spotify", result.Spotify)
	writeTrackList(&sb, "YouTube", result.YouTube)
	return strings.TrimSpace(sb.String())
}

func writeTrackList(sb *strings.Builder, heading string, tracks []models.Track) {
	if len(tracks) == 0 {
		return
	}
	fmt.Fprintf(sb, "\n%s:\n", heading)
	for i, track := range tracks {
		fmt.Fprintf(sb, "%d. %s - %s\n", i+1, track.Title, track.Artist)
	}
}

func (b *Bot) showHistory(ctx context.Context, chatID, telegramID int64) {
	entries, err := b.deps.Search.History(ctx, telegramID, searchController.DefaultHistoryLimit)
	if err != nil {
		b.log.Function("showHistory").Er("failed to load history", err, "telegramID", telegramID)
		b.reply(ctx, chatID, b.themed(ctx, telegramID, genericErrorText))
		return
	}
	if len(entries) == 0 {
		b.reply(ctx, chatID, historyEmptyText)
		return
	}
	b.reply(ctx, chatID, b.themed(ctx, telegramID, formatHistory(entries)), withParseMode(tgbotapi.ModeMarkdown))
}

func formatHistory(entries []models.SearchHistory) string {
	var sb strings.Builder
	sb.WriteString(historyHeaderText)
	for i, entry := range entries {
		fmt.Fprintf(&sb, "%d. %s (%s) %s\n",
			i+1,
			tgbotapi.EscapeText(tgbotapi.ModeMarkdown, entry.Query),
			entry.Platform.Label(),
			entry.SearchedAt.Format(historyDateFormat),
		)
	}
	return strings.TrimSpace(sb.String())
}
