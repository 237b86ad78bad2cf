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

var (
	ErrSubscriptionExists   = errors.New("already subscribed to this artist")
	ErrSubscriptionNotFound = errors.New("subscription not found")
)

type SubscriptionRepository interface {
	Create(ctx context.Context, sub *ArtistSubscription) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]ArtistSubscription, error)
	Delete(ctx context.Context, userID, subscriptionID uuid.UUID) error
	ListNotifiable(ctx context.Context) ([]ArtistSubscription, error)
	MarkChecked(ctx context.Context, subscriptionID uuid.UUID, checkedAt time.Time, release *Release) error
}

type subscriptionRepository struct {
	db  database.DB
	log logger.Logger
}

func NewSubscriptionRepository(db database.DB) SubscriptionRepository {
	return &subscriptionRepository{
		db:  db,
		log: logger.New("subscriptionRepository"),
	}
}

func (r *subscriptionRepository) Create(ctx context.Context, sub *ArtistSubscription) error {
	log := r.log.Function("Create")

	var count int64
	if err := r.db.SQLWithContext(ctx).
		Model(&ArtistSubscription{}).
		Where("user_id = ? AND platform = ? AND artist_id = ?", sub.UserID, sub.Platform, sub.ArtistID).
		Count(&count).Error; err != nil {
		return log.Err("failed to check existing subscription", err, "userID", sub.UserID)
	}
	if count > 0 {
		return ErrSubscriptionExists
	}

	if sub.LastChecked.IsZero() {
		sub.LastChecked = time.Now().UTC()
	}

	if err := r.db.SQLWithContext(ctx).Create(sub).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrSubscriptionExists
		}
		return log.Err("failed to create subscription", err, "userID", sub.UserID, "artistID", sub.ArtistID)
	}

	return nil
}

func (r *subscriptionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]ArtistSubscription, error) {
	log := r.log.Function("ListByUser")

	var subs []ArtistSubscription
	if err := r.db.SQLWithContext(ctx).
		Where("user_id = ?", userID).
		Order("artist_name ASC").
		Find(&subs).Error; err != nil {
		return nil, log.Err("failed to list subscriptions", err, "userID", userID)
	}

	return subs, nil
}

// Delete removes a subscription owned by userID.
func (r *subscriptionRepository) Delete(ctx context.Context, userID, subscriptionID uuid.UUID) error {
	log := r.log.Function("Delete")

	result := r.db.SQLWithContext(ctx).
		Where("id = ? AND user_id = ?", subscriptionID, userID).
		Delete(&ArtistSubscription{})
	if result.Error != nil {
		return log.Err("failed to delete subscription", result.Error, "subscriptionID", subscriptionID)
	}
	if result.RowsAffected == 0 {
		return ErrSubscriptionNotFound
	}

	return nil
}

// ListNotifiable returns subscriptions whose owner has notifications enabled,
// with the owner preloaded.
func (r *subscriptionRepository) ListNotifiable(ctx context.Context) ([]ArtistSubscription, error) {
	log := r.log.Function("ListNotifiable")

	var subs []ArtistSubscription
	if err := r.db.SQLWithContext(ctx).
		Joins("JOIN users ON users.id = artist_subscriptions.user_id AND users.deleted_at IS NULL").
		Where("users.notifications_enabled = ?", true).
		Preload("User").
		Order("artist_subscriptions.last_checked ASC").
		Find(&subs).Error; err != nil {
		return nil, log.Err("failed to list notifiable subscriptions", err)
	}

	return subs, nil
}

// MarkChecked records a check. A non-nil release also becomes the last
// notified release.
func (r *subscriptionRepository) MarkChecked(
	ctx context.Context,
	subscriptionID uuid.UUID,
	checkedAt time.Time,
	release *Release,
) error {
	log := r.log.Function("MarkChecked")

	updates := map[string]any{"last_checked": checkedAt}
	if release != nil {
		updates["last_release_id"] = release.ID
		updates["last_notified"] = checkedAt
	}

	if err := r.db.SQLWithContext(ctx).
		Model(&ArtistSubscription{}).
		Where("id = ?", subscriptionID).
		Updates(updates).Error; err != nil {
		return log.Err("failed to update subscription", err, "subscriptionID", subscriptionID)
	}

	return nil
}
