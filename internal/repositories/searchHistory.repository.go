package repositories

import (
	"context"
	"time"

	"musicbot/internal/database"
	. "musicbot/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
)

const MAX_HISTORY_LIMIT = 50

type SearchHistoryRepository interface {
	Record(ctx context.Context, userID uuid.UUID, query string, platform Platform) error
	ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]SearchHistory, error)
}

type searchHistoryRepository struct {
	db  database.DB
	log logger.Logger
}

func NewSearchHistoryRepository(db database.DB) SearchHistoryRepository {
	return &searchHistoryRepository{
		db:  db,
		log: logger.New("searchHistoryRepository"),
	}
}

func (r *searchHistoryRepository) Record(ctx context.Context, userID uuid.UUID, query string, platform Platform) error {
	entry := SearchHistory{
		UserID:     userID,
		Query:      query,
		Platform:   platform,
		SearchedAt: time.Now().UTC(),
	}

	if err := r.db.SQLWithContext(ctx).Create(&entry).Error; err != nil {
		return r.log.Function("Record").Err("failed to record search", err, "userID", userID)
	}

	return nil
}

func (r *searchHistoryRepository) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]SearchHistory, error) {
	var entries []SearchHistory
	if err := r.db.SQLWithContext(ctx).
		Where("user_id = ?", userID).
		Order("searched_at DESC").
		Limit(clampLimit(limit, MAX_HISTORY_LIMIT)).
		Find(&entries).Error; err != nil {
		return nil, r.log.Function("ListRecent").Err("failed to list search history", err, "userID", userID)
	}

	return entries, nil
}

func clampLimit(limit, max int) int {
	if limit <= 0 || limit > max {
		return max
	}
	return limit
}
