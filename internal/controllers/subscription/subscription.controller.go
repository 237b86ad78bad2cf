package subscriptionController

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"musicbot/config"
	. "musicbot/internal/models"
	"musicbot/internal/repositories"
	"musicbot/internal/services"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
)

var (
	ErrArtistRequired  = errors.New("artist name is required")
	ErrArtistNotFound  = errors.New("artist not found")
	ErrInvalidPlatform = errors.New("unsupported platform")
)

// ArtistFinder resolves an artist or channel by name.
type ArtistFinder func(ctx context.Context, name string, limit int) ([]ArtistResult, error)

type SubscriptionController struct {
	userRepo repositories.UserRepository
	subRepo  repositories.SubscriptionRepository
	finders  map[Platform]ArtistFinder
	now      func() time.Time
	Config   config.Config
	log      logger.Logger
}

type SubscriptionControllerInterface interface {
	Subscribe(ctx context.Context, telegramID int64, artistName string, platform Platform) (*ArtistSubscription, error)
	Unsubscribe(ctx context.Context, telegramID int64, subscriptionID uuid.UUID) error
	List(ctx context.Context, telegramID int64) ([]ArtistSubscription, error)
	ToggleNotifications(ctx context.Context, telegramID int64) (bool, error)
}

func New(repos repositories.Repository, svc services.Service, config config.Config) SubscriptionControllerInterface {
	return NewWithFinders(repos, map[Platform]ArtistFinder{
		PlatformSpotify: svc.Spotify.SearchArtists,
		PlatformYouTube: svc.YouTube.SearchChannels,
	}, config)
}

func NewWithFinders(
	repos repositories.Repository,
	finders map[Platform]ArtistFinder,
	config config.Config,
) SubscriptionControllerInterface {
	return &SubscriptionController{
		userRepo: repos.User,
		subRepo:  repos.Subscription,
		finders:  finders,
		now:      func() time.Time { return time.Now().UTC() },
		Config:   config,
		log:      logger.New("subscriptionController"),
	}
}

// Subscribe follows the best catalog match for artistName. Releases before
// the subscription time are never announced.
func (sc *SubscriptionController) Subscribe(
	ctx context.Context,
	telegramID int64,
	artistName string,
	platform Platform,
) (*ArtistSubscription, error) {
	log := sc.log.Function("Subscribe")

	artistName = strings.TrimSpace(artistName)
	if artistName == "" {
		return nil, ErrArtistRequired
	}

	find, ok := sc.finders[platform]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPlatform, platform)
	}

	user, err := sc.userRepo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}

	matches, err := find(ctx, artistName, 1)
	if err != nil {
		return nil, log.Err("artist lookup failed", err, "artist", artistName, "platform", platform)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: %q on %s", ErrArtistNotFound, artistName, platform.Label())
	}

	sub := &ArtistSubscription{
		UserID:      user.ID,
		ArtistName:  matches[0].Name,
		ArtistID:    matches[0].ID,
		Platform:    platform,
		LastChecked: sc.now(),
	}
	if err := sc.subRepo.Create(ctx, sub); err != nil {
		return nil, err
	}

	log.Info("Subscribed", "telegramID", telegramID, "artist", sub.ArtistName, "platform", platform)
	return sub, nil
}

func (sc *SubscriptionController) Unsubscribe(ctx context.Context, telegramID int64, subscriptionID uuid.UUID) error {
	user, err := sc.userRepo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return err
	}
	return sc.subRepo.Delete(ctx, user.ID, subscriptionID)
}

func (sc *SubscriptionController) List(ctx context.Context, telegramID int64) ([]ArtistSubscription, error) {
	user, err := sc.userRepo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	return sc.subRepo.ListByUser(ctx, user.ID)
}

// ToggleNotifications flips the user's release alerts and returns the new
// setting.
func (sc *SubscriptionController) ToggleNotifications(ctx context.Context, telegramID int64) (bool, error) {
	log := sc.log.Function("ToggleNotifications")

	user, err := sc.userRepo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return false, err
	}

	updated, err := sc.userRepo.SetNotifications(ctx, telegramID, !user.NotificationsEnabled)
	if err != nil {
		return false, log.Err("failed to toggle notifications", err, "telegramID", telegramID)
	}

	return updated.NotificationsEnabled, nil
}
