package repositories

import (
	"context"
	"errors"
	"time"

	"musicbot/internal/database"
	. "musicbot/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	THEME_CACHE_PREFIX = "theme"
	THEME_CACHE_EXPIRY = 24 * time.Hour
)

var ErrThemeNotFound = errors.New("theme not found")

type ThemeRepository interface {
	GetByTelegramID(ctx context.Context, telegramID int64) (*UserTheme, error)
	Save(ctx context.Context, theme *UserTheme) error
}

type themeRepository struct {
	db  database.DB
	log logger.Logger
}

func NewThemeRepository(db database.DB) ThemeRepository {
	return &themeRepository{
		db:  db,
		log: logger.New("themeRepository"),
	}
}

func (r *themeRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*UserTheme, error) {
	log := r.log.Function("GetByTelegramID")

	var theme UserTheme
	found, err := database.NewCacheBuilder(r.db.Cache.User, telegramID).
		WithHash(THEME_CACHE_PREFIX).
		WithContext(ctx).
		Get(&theme)
	if err != nil {
		log.Warn("failed to read theme cache", "telegramID", telegramID, "error", err)
	}
	if found {
		return &theme, nil
	}

	if err := r.db.SQLWithContext(ctx).First(&theme, "telegram_id = ?", telegramID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrThemeNotFound
		}
		return nil, log.Err("failed to get theme", err, "telegramID", telegramID)
	}

	r.cacheTheme(ctx, &theme)
	return &theme, nil
}

// Save upserts the theme keyed by Telegram id and refreshes the cache.
func (r *themeRepository) Save(ctx context.Context, theme *UserTheme) error {
	log := r.log.Function("Save")

	if err := r.db.SQLWithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "telegram_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"theme_name",
			"primary_color",
			"secondary_color",
			"accent_color",
			"font_style",
			"emoji_set",
			"settings",
			"updated_at",
		}),
	}).Create(theme).Error; err != nil {
		return log.Err("failed to save theme", err, "telegramID", theme.TelegramID)
	}

	r.cacheTheme(ctx, theme)
	return nil
}

func (r *themeRepository) cacheTheme(ctx context.Context, theme *UserTheme) {
	if err := database.NewCacheBuilder(r.db.Cache.User, theme.TelegramID).
		WithHash(THEME_CACHE_PREFIX).
		WithStruct(theme).
		WithTTL(THEME_CACHE_EXPIRY).
		WithContext(ctx).
		Set(); err != nil {
		r.log.Function("cacheTheme").Warn("failed to cache theme", "telegramID", theme.TelegramID, "error", err)
	}
}
