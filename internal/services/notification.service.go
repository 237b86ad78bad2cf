package services

import (
	"context"
	"fmt"
	"time"

	"musicbot/internal/models"
	"musicbot/internal/repositories"
	"musicbot/internal/utils"

	logger "github.com/Bparsons0904/goLogger"
)

type ReleaseSource interface {
	ArtistReleases(ctx context.Context, artistID string, limit int) ([]models.Release, error)
}

type UploadSource interface {
	LatestUpload(ctx context.Context, channelID string) (*models.Release, error)
}

// Notifier delivers a Markdown message to a chat.
type Notifier interface {
	Notify(ctx context.Context, telegramID int64, markdown string) error
}

type NotificationService struct {
	subscriptions repositories.SubscriptionRepository
	spotify       ReleaseSource
	youtube       UploadSource
	now           func() time.Time
	log           logger.Logger
}

func NewNotificationService(
	subscriptions repositories.SubscriptionRepository,
	spotify ReleaseSource,
	youtube UploadSource,
) *NotificationService {
	return &NotificationService{
		subscriptions: subscriptions,
		spotify:       spotify,
		youtube:       youtube,
		now:           func() time.Time { return time.Now().UTC() },
		log:           logger.New("notificationService"),
	}
}

// CheckForNewReleases notifies subscribers of unseen releases and returns the
// number of notifications sent. A subscription is only advanced after its
// notification was delivered.
func (s *NotificationService) CheckForNewReleases(ctx context.Context, notifier Notifier) (int, error) {
	log := s.log.Function("CheckForNewReleases")

	subs, err := s.subscriptions.ListNotifiable(ctx)
	if err != nil {
		return 0, err
	}

	log.Info("Checking subscriptions", "count", len(subs))

	sent := 0
	for _, sub := range subs {
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		if sub.User == nil {
			continue
		}

		release, err := s.latestUnseen(ctx, sub)
		if err != nil {
			log.Warn("Release lookup failed", "subscriptionID", sub.ID, "artist", sub.ArtistName, "error", err)
			continue
		}
		if release == nil {
			continue
		}

		if err := notifier.Notify(ctx, sub.User.TelegramID, FormatReleaseAlert(sub.ArtistName, *release)); err != nil {
			log.Er("failed to send release alert", err, "telegramID", sub.User.TelegramID, "artist", sub.ArtistName)
			continue
		}

		if err := s.subscriptions.MarkChecked(ctx, sub.ID, s.now(), release); err != nil {
			log.Er("failed to record notified release", err, "subscriptionID", sub.ID)
			continue
		}

		sent++
		log.Info("Sent release alert", "telegramID", sub.User.TelegramID, "artist", sub.ArtistName, "release", release.Name)
	}

	return sent, nil
}

func (s *NotificationService) latestUnseen(ctx context.Context, sub models.ArtistSubscription) (*models.Release, error) {
	switch sub.Platform {
	case models.PlatformSpotify:
		releases, err := s.spotify.ArtistReleases(ctx, sub.ArtistID, ReleaseLookupLimit)
		if err != nil {
			return nil, err
		}
		for _, release := range releases {
			if release.IsNewFor(sub) {
				return &release, nil
			}
		}
		return nil, nil
	case models.PlatformYouTube:
		upload, err := s.youtube.LatestUpload(ctx, sub.ArtistID)
		if err != nil || upload == nil {
			return nil, err
		}
		if upload.IsNewFor(sub) {
			return upload, nil
		}
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported subscription platform %q", sub.Platform)
	}
}

// FormatReleaseAlert renders the new release notification.
func FormatReleaseAlert(artistName string, release models.Release) string {
	emoji := "📺"
	if release.Platform == models.PlatformSpotify {
		emoji = "🎵"
	}

	return fmt.Sprintf(
		"%s *NEW RELEASE ALERT!* %s\n\n"+
			"Artist: *%s*\n"+
			"New %s: *%s*\n"+
			"Released on: %s\n"+
			"Platform: %s\n\n"+
			"[Listen Now](%s)",
		emoji, emoji,
		artistName,
		release.Type, release.Name,
		utils.FormatDay(release.ReleaseDate),
		release.Platform.Label(),
		release.URL,
	)
}
