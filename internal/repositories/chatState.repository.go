package repositories

import (
	"context"
	"time"

	"musicbot/internal/constants"
	"musicbot/internal/database"
	. "musicbot/internal/models"

	logger "github.com/Bparsons0904/goLogger"
)

type ChatStateRepository interface {
	Get(ctx context.Context, telegramID int64) (*ChatState, error)
	Save(ctx context.Context, telegramID int64, state *ChatState) error
	Clear(ctx context.Context, telegramID int64) error
}

type chatStateRepository struct {
	cache database.CacheClient
	log   logger.Logger
}

func NewChatStateRepository(db database.DB) ChatStateRepository {
	return &chatStateRepository{
		cache: db.Cache.Session,
		log:   logger.New("chatStateRepository"),
	}
}

// Get returns the chat's state, or an idle state when none is stored or the
// stored one expired.
func (r *chatStateRepository) Get(ctx context.Context, telegramID int64) (*ChatState, error) {
	var state ChatState
	found, err := database.NewCacheBuilder(r.cache, telegramID).
		WithHash(constants.ChatStateCachePrefix).
		WithContext(ctx).
		Get(&state)
	if err != nil {
		return nil, r.log.Function("Get").Err("failed to read chat state", err, "telegramID", telegramID)
	}
	if !found {
		return &ChatState{}, nil
	}
	return &state, nil
}

func (r *chatStateRepository) Save(ctx context.Context, telegramID int64, state *ChatState) error {
	state.UpdatedAt = time.Now().UTC()
	if err := database.NewCacheBuilder(r.cache, telegramID).
		WithHash(constants.ChatStateCachePrefix).
		WithStruct(state).
		WithTTL(constants.ChatStateCacheExpiry).
		WithContext(ctx).
		Set(); err != nil {
		return r.log.Function("Save").Err("failed to save chat state", err, "telegramID", telegramID)
	}
	return nil
}

func (r *chatStateRepository) Clear(ctx context.Context, telegramID int64) error {
	if err := database.NewCacheBuilder(r.cache, telegramID).
		WithHash(constants.ChatStateCachePrefix).
		WithContext(ctx).
		Delete(); err != nil {
		return r.log.Function("Clear").Err("failed to clear chat state", err, "telegramID", telegramID)
	}
	return nil
}
