package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"musicbot/config"
	"musicbot/internal/controllers"
	searchController "musicbot/internal/controllers/search"
	subscriptionController "musicbot/internal/controllers/subscription"
	themeController "musicbot/internal/controllers/theme"
	userController "musicbot/internal/controllers/users"
	"musicbot/internal/metrics"
	"musicbot/internal/models"
	"musicbot/internal/progress"
	"musicbot/internal/repositories"
	"musicbot/internal/services"

	logger "github.com/Bparsons0904/goLogger"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
)

const (
	pollTimeoutSeconds = 60
	prunePeriod        = 5 * time.Minute
	fileDownloadLimit  = 2 * time.Minute
)

var ErrUpdatesClosed = errors.New("telegram update channel closed")

type acquisitionStarter interface {
	Start(ctx context.Context, req services.AcquisitionRequest, delivery services.AssetDelivery) <-chan services.Outcome
}

type conversionStarter interface {
	NewInputPath(direction services.ConversionDirection) (string, error)
	Start(ctx context.Context, req services.ConversionRequest, delivery services.AssetDelivery) <-chan error
}

type lyricsFinder interface {
	Search(ctx context.Context, title, artist string) (*services.Lyrics, error)
}

type trendingReporter interface {
	Text(ctx context.Context) string
}

type recommender interface {
	ByGenre(ctx context.Context, userID uuid.UUID, genre string, limit int) ([]models.Track, error)
	Mixed(ctx context.Context, userID uuid.UUID, query string, limit int) services.Recommendations
}

// Dependencies are the application parts the chat router drives.
type Dependencies struct {
	Users         userController.UserControllerInterface
	Search        searchController.SearchControllerInterface
	Subscriptions subscriptionController.SubscriptionControllerInterface
	Themes        themeController.ThemeControllerInterface
	ChatState     repositories.ChatStateRepository
	Acquisition   acquisitionStarter
	Conversion    conversionStarter
	Lyrics        lyricsFinder
	Trending      trendingReporter
	Recommend     recommender
}

type Bot struct {
	api      telegramAPI
	sender   *sender
	deps     Dependencies
	client   *http.Client
	log      logger.Logger
	wg       sync.WaitGroup
	stopOnce sync.Once
}

func New(cfg config.Config, svc services.Service, ctrls controllers.Controllers, repos repositories.Repository) (*Bot, error) {
	log := logger.New("bot").Function("New")

	if cfg.TelegramBotToken == "" {
		return nil, log.ErrMsg("TELEGRAM_BOT_TOKEN is not set")
	}

	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, log.Err("failed to connect to Telegram", err)
	}
	api.Debug = cfg.TelegramDebug
	log.Info("Authorized on Telegram", "account", api.Self.UserName)

	return newBot(api, Dependencies{
		Users:         ctrls.User,
		Search:        ctrls.Search,
		Subscriptions: ctrls.Subscription,
		Themes:        ctrls.Theme,
		ChatState:     repos.ChatState,
		Acquisition:   svc.Acquisition,
		Conversion:    svc.Conversion,
		Lyrics:        svc.Lyrics,
		Trending:      svc.Trending,
		Recommend:     svc.Recommendation,
	}), nil
}

func newBot(api telegramAPI, deps Dependencies) *Bot {
	return &Bot{
		api:    api,
		sender: newSender(api),
		deps:   deps,
		client: &http.Client{Timeout: fileDownloadLimit},
		log:    logger.New("bot"),
	}
}

func (b *Bot) String() string {
	return "TelegramBot"
}

// Serve polls for updates until ctx is done. Every update is handled on its
// own goroutine so one slow chat never holds up another. Pipelines started
// by a handler share ctx and are waited for before Serve returns.
func (b *Bot) Serve(ctx context.Context) error {
	log := b.log.Function("Serve")

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = pollTimeoutSeconds
	updateConfig.AllowedUpdates = []string{"message", "callback_query"}
	updates := b.api.GetUpdatesChan(updateConfig)

	pruneTicker := time.NewTicker(prunePeriod)
	defer pruneTicker.Stop()

	log.Info("Telegram poller started")
	for {
		select {
		case <-ctx.Done():
			b.stopOnce.Do(b.api.StopReceivingUpdates)
			b.wg.Wait()
			log.Info("Telegram poller stopped")
			return nil
		case <-pruneTicker.C:
			b.sender.prune()
		case update, ok := <-updates:
			if !ok {
				return log.Err("update channel closed", ErrUpdatesClosed)
			}
			b.wg.Add(1)
			go func() {
				defer b.wg.Done()
				b.dispatch(ctx, update)
			}()
		}
	}
}

func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update) {
	log := b.log.Function("dispatch").With("updateID", update.UpdateID)
	defer func() {
		if r := recover(); r != nil {
			log.Er("panic while handling update", fmt.Errorf("%v", r))
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		metrics.ChatUpdates.WithLabelValues("callback").Inc()
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		if update.Message.IsCommand() {
			metrics.ChatUpdates.WithLabelValues("command").Inc()
			b.handleCommand(ctx, update.Message)
			return
		}
		metrics.ChatUpdates.WithLabelValues("message").Inc()
		b.handleMessage(ctx, update.Message)
	}
}

// Notify implements services.Notifier.
func (b *Bot) Notify(ctx context.Context, telegramID int64, markdown string) error {
	msg := tgbotapi.NewMessage(telegramID, markdown)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.sender.send(ctx, telegramID, msg); err != nil {
		return b.log.Function("Notify").Err("failed to send notification", err, "telegramID", telegramID)
	}
	return nil
}

// register records the sender and returns their user, or nil when the
// lookup fails. Chat features keep working without a stored user.
func (b *Bot) register(ctx context.Context, from *tgbotapi.User) *models.User {
	if from == nil {
		return nil
	}
	user, err := b.deps.Users.Register(ctx, models.ChatProfile{
		TelegramID: from.ID,
		Username:   from.UserName,
		FirstName:  from.FirstName,
		LastName:   from.LastName,
	})
	if err != nil {
		b.log.Function("register").Warn("failed to register user", "telegramID", from.ID, "error", err)
		return nil
	}
	return user
}

func userID(user *models.User) uuid.UUID {
	if user == nil {
		return uuid.Nil
	}
	return user.ID
}

func (b *Bot) themed(ctx context.Context, telegramID int64, text string) string {
	return b.deps.Themes.Format(ctx, telegramID, text)
}

type replyOption func(*tgbotapi.MessageConfig)

func withMarkup(markup tgbotapi.InlineKeyboardMarkup) replyOption {
	return func(msg *tgbotapi.MessageConfig) {
		msg.ReplyMarkup = markup
	}
}

func withParseMode(mode string) replyOption {
	return func(msg *tgbotapi.MessageConfig) {
		msg.ParseMode = mode
	}
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string, opts ...replyOption) {
	msg := tgbotapi.NewMessage(chatID, text)
	for _, opt := range opts {
		opt(&msg)
	}
	if _, err := b.sender.send(ctx, chatID, msg); err != nil {
		b.log.Function("reply").Er("failed to send message", err, "chatID", chatID)
	}
}

// edit rewrites a bot message in place, optionally with a new keyboard.
func (b *Bot) edit(ctx context.Context, chatID int64, messageID int, text string, markup *tgbotapi.InlineKeyboardMarkup, parseMode string) {
	var msg tgbotapi.EditMessageTextConfig
	if markup != nil {
		msg = tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, *markup)
	} else {
		msg = tgbotapi.NewEditMessageText(chatID, messageID, text)
	}
	msg.ParseMode = parseMode
	if _, err := b.sender.send(ctx, chatID, msg); err != nil && !errors.Is(err, progress.ErrMessageNotModified) {
		b.log.Function("edit").Er("failed to edit message", err, "chatID", chatID, "messageID", messageID)
	}
}

func (b *Bot) saveState(ctx context.Context, telegramID int64, state *models.ChatState) {
	if err := b.deps.ChatState.Save(ctx, telegramID, state); err != nil {
		b.log.Function("saveState").Warn("failed to save chat state", "telegramID", telegramID, "error", err)
	}
}

func (b *Bot) clearState(ctx context.Context, telegramID int64) {
	if err := b.deps.ChatState.Clear(ctx, telegramID); err != nil {
		b.log.Function("clearState").Warn("failed to clear chat state", "telegramID", telegramID, "error", err)
	}
}

func (b *Bot) loadState(ctx context.Context, telegramID int64) *models.ChatState {
	state, err := b.deps.ChatState.Get(ctx, telegramID)
	if err != nil || state == nil {
		return &models.ChatState{}
	}
	return state
}
