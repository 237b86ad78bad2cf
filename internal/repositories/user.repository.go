package repositories

import (
	"context"
	"errors"
	"time"

	"musicbot/internal/database"
	. "musicbot/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	USER_CACHE_EXPIRY     = 7 * 24 * time.Hour
	USER_CACHE_PREFIX     = "user"
	TELEGRAM_CACHE_PREFIX = "telegram_user"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*User, error)
	FindOrCreateByTelegram(ctx context.Context, profile ChatProfile) (*User, error)
	SetNotifications(ctx context.Context, telegramID int64, enabled bool) (*User, error)
}

type userRepository struct {
	db  database.DB
	log logger.Logger
}

func NewUserRepository(db database.DB) UserRepository {
	return &userRepository{
		db:  db,
		log: logger.New("userRepository"),
	}
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	log := r.log.Function("GetByID")

	var user User
	if err := r.db.SQLWithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, log.Err("failed to get user by id", err, "id", id)
	}

	return &user, nil
}

func (r *userRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*User, error) {
	log := r.log.Function("GetByTelegramID")

	var user User
	found, err := database.NewCacheBuilder(r.db.Cache.User, telegramID).
		WithHash(TELEGRAM_CACHE_PREFIX).
		WithContext(ctx).
		Get(&user)
	if err != nil {
		log.Warn("failed to read user cache", "telegramID", telegramID, "error", err)
	}
	if found {
		return &user, nil
	}

	if err := r.db.SQLWithContext(ctx).First(&user, "telegram_id = ?", telegramID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, log.Err("failed to get user by telegram id", err, "telegramID", telegramID)
	}

	r.addUserToCache(ctx, &user)
	return &user, nil
}

// FindOrCreateByTelegram returns the user for a chat profile, creating it on
// first contact and refreshing stale profile fields.
func (r *userRepository) FindOrCreateByTelegram(ctx context.Context, profile ChatProfile) (*User, error) {
	log := r.log.Function("FindOrCreateByTelegram")

	user, err := r.GetByTelegramID(ctx, profile.TelegramID)
	switch {
	case err == nil:
		if !user.ApplyProfile(profile) {
			return user, nil
		}
		if err := r.db.SQLWithContext(ctx).Model(user).Updates(map[string]any{
			"username":   user.Username,
			"first_name": user.FirstName,
			"last_name":  user.LastName,
		}).Error; err != nil {
			return nil, log.Err("failed to update user profile", err, "telegramID", profile.TelegramID)
		}
		r.clearUserCache(ctx, profile.TelegramID)
		return user, nil
	case !errors.Is(err, ErrUserNotFound):
		return nil, err
	}

	now := time.Now()
	user = &User{NotificationsEnabled: true, LastSeenAt: &now}
	user.ApplyProfile(profile)

	if err := r.db.SQLWithContext(ctx).Create(user).Error; err != nil {
		return nil, log.Err("failed to create user", err, "telegramID", profile.TelegramID)
	}

	log.Info("Created user", "telegramID", profile.TelegramID, "userID", user.ID)
	r.addUserToCache(ctx, user)
	return user, nil
}

func (r *userRepository) SetNotifications(ctx context.Context, telegramID int64, enabled bool) (*User, error) {
	log := r.log.Function("SetNotifications")

	user, err := r.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}

	if err := r.db.SQLWithContext(ctx).Model(user).Update("notifications_enabled", enabled).Error; err != nil {
		return nil, log.Err("failed to update notifications", err, "telegramID", telegramID)
	}
	user.NotificationsEnabled = enabled

	r.clearUserCache(ctx, telegramID)
	return user, nil
}

func (r *userRepository) addUserToCache(ctx context.Context, user *User) {
	if err := database.NewCacheBuilder(r.db.Cache.User, user.TelegramID).
		WithHash(TELEGRAM_CACHE_PREFIX).
		WithStruct(user).
		WithTTL(USER_CACHE_EXPIRY).
		WithContext(ctx).
		Set(); err != nil {
		r.log.Function("addUserToCache").Warn("failed to add user to cache", "userID", user.ID, "error", err)
	}
}

func (r *userRepository) clearUserCache(ctx context.Context, telegramID int64) {
	if err := database.NewCacheBuilder(r.db.Cache.User, telegramID).
		WithHash(TELEGRAM_CACHE_PREFIX).
		WithContext(ctx).
		Delete(); err != nil {
		r.log.Function("clearUserCache").Warn("failed to clear user cache", "telegramID", telegramID, "error", err)
	}
}
