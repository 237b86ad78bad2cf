package seed

import (
	"time"

	"musicbot/config"
	. "musicbot/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
)

const demoTelegramID int64 = 100000001

// Seed loads a demo user and one trending snapshot so the web front end and
// /trending have data before the first scheduled refresh.
func Seed(db *gorm.DB, config config.Config, log logger.Logger) error {
	log = log.Function("seed")
	log.Info("Seeding development data")

	if config.Environment != "development" {
		log.Warn("Skipping seed outside development", "environment", config.Environment)
		return nil
	}

	user := User{TelegramID: demoTelegramID, Username: "demo", FirstName: "Demo", NotificationsEnabled: true}
	if err := db.Where(User{TelegramID: demoTelegramID}).FirstOrCreate(&user).Error; err != nil {
		return log.Err("failed to create user", err, "telegramID", demoTelegramID)
	}

	captured := time.Now().UTC()
	subscriptions := []ArtistSubscription{
		{UserID: user.ID, ArtistName: "Daft Punk", ArtistID: "4tZwfgrHOc3mvqYlEYSvVi", Platform: PlatformSpotify},
		{UserID: user.ID, ArtistName: "Adele", ArtistID: "UComP_epzeKzvBX156r6pm1Q", Platform: PlatformYouTube},
	}
	for _, subscription := range subscriptions {
		subscription.LastChecked = captured
		if err := db.Where(ArtistSubscription{UserID: user.ID, ArtistID: subscription.ArtistID}).
			FirstOrCreate(&subscription).Error; err != nil {
			return log.Err("failed to create subscription", err, "artist", subscription.ArtistName)
		}
	}

	songs := []TrendingSong{
		{Title: "One More Time", Artist: "Daft Punk", Platform: PlatformSpotify, TrackID: "0DiWol3AO6WpXZgp0goxAV", Rank: 1},
		{Title: "Get Lucky", Artist: "Daft Punk", Platform: PlatformSpotify, TrackID: "69kOkLUCkxIZYexIgSG8rq", Rank: 2},
		{Title: "Hello", Artist: "Adele", Platform: PlatformYouTube, TrackID: "YQHsXMglC9A", Rank: 1},
		{Title: "Rolling in the Deep", Artist: "Adele", Platform: PlatformYouTube, TrackID: "rYEDA3JcQqw", Rank: 2},
	}
	for i := range songs {
		songs[i].CapturedAt = captured
	}
	if err := db.Create(&songs).Error; err != nil {
		return log.Err("failed to create trending snapshot", err)
	}

	log.Info("Development data seeded", "subscriptions", len(subscriptions), "trending", len(songs))
	return nil
}
