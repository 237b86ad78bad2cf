package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"musicbot/internal/progress"

	logger "github.com/Bparsons0904/goLogger"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

const (
	// Telegram allows about 30 messages per second overall and one per
	// second per chat, with short bursts tolerated.
	globalRate  = 30
	globalBurst = 30
	chatRate    = 1
	chatBurst   = 3

	maxRetryAfter = 30 * time.Second
	limiterIdle   = 10 * time.Minute
)

// errThrottled means a non-blocking send was skipped because a limiter had
// no token available.
var errThrottled = errors.New("send throttled")

// telegramAPI is the subset of *tgbotapi.BotAPI the bot uses.
type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	GetFileDirectURL(fileID string) (string, error)
}

type chatLimiter struct {
	limiter  *rate.Limiter
	lastUsed time.Time
}

// sender serializes outbound calls through a global and a per-chat limiter.
type sender struct {
	api    telegramAPI
	global *rate.Limiter
	mu     sync.Mutex
	chats  map[int64]*chatLimiter
	log    logger.Logger
}

func newSender(api telegramAPI) *sender {
	return &sender{
		api:    api,
		global: rate.NewLimiter(rate.Limit(globalRate), globalBurst),
		chats:  make(map[int64]*chatLimiter),
		log:    logger.New("botSender"),
	}
}

func (s *sender) chatLimiter(chatID int64) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	entry, ok := s.chats[chatID]
	if !ok {
		entry = &chatLimiter{limiter: rate.NewLimiter(rate.Limit(chatRate), chatBurst)}
		s.chats[chatID] = entry
	}
	entry.lastUsed = now
	return entry.limiter
}

// prune drops limiters of chats that have been quiet for a while.
func (s *sender) prune() {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-limiterIdle)
	for chatID, entry := range s.chats {
		if entry.lastUsed.Before(cutoff) {
			delete(s.chats, chatID)
		}
	}
}

func (s *sender) wait(ctx context.Context, chatID int64) error {
	if err := s.global.Wait(ctx); err != nil {
		return fmt.Errorf("global rate limiter: %w", err)
	}
	if err := s.chatLimiter(chatID).Wait(ctx); err != nil {
		return fmt.Errorf("chat rate limiter: %w", err)
	}
	return nil
}

// send delivers a message. A flood-control response is retried once after
// the delay Telegram asks for.
func (s *sender) send(ctx context.Context, chatID int64, msg tgbotapi.Chattable) (tgbotapi.Message, error) {
	if err := s.wait(ctx, chatID); err != nil {
		return tgbotapi.Message{}, err
	}

	sent, err := s.api.Send(msg)
	if delay, ok := retryAfter(err); ok {
		s.log.Function("send").Warn("Flood control hit, retrying", "chatID", chatID, "delay", delay.String())
		select {
		case <-ctx.Done():
			return tgbotapi.Message{}, ctx.Err()
		case <-time.After(delay):
		}
		sent, err = s.api.Send(msg)
	}
	return sent, translateError(err)
}

// trySend makes at most one API call and never waits. It is used for status
// edits, which run on the transfer goroutine; a skipped or flood-rejected
// edit is superseded by the next one.
func (s *sender) trySend(chatID int64, msg tgbotapi.Chattable) error {
	if !s.chatLimiter(chatID).Allow() || !s.global.Allow() {
		return errThrottled
	}

	_, err := s.api.Send(msg)
	return translateError(err)
}

// request is for calls whose result is not a message, such as deletes and
// callback answers.
func (s *sender) request(ctx context.Context, chatID int64, req tgbotapi.Chattable) error {
	if err := s.wait(ctx, chatID); err != nil {
		return err
	}
	_, err := s.api.Request(req)
	return translateError(err)
}

func retryAfter(err error) (time.Duration, bool) {
	var apiErr *tgbotapi.Error
	if !errors.As(err, &apiErr) || apiErr.RetryAfter <= 0 {
		return 0, false
	}
	delay := time.Duration(apiErr.RetryAfter) * time.Second
	if delay > maxRetryAfter {
		return 0, false
	}
	return delay, true
}

func translateError(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "message is not modified") {
		return progress.ErrMessageNotModified
	}
	return err
}
