package models

import (
	"time"

	"github.com/google/uuid"
)

type ArtistSubscription struct {
	BaseUUIDModel
	UserID        uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_subscription_user_artist" json:"userId"`
	ArtistName    string     `gorm:"type:text;not null"                                                 json:"artistName"`
	Platform      Platform   `gorm:"type:text;not null;uniqueIndex:idx_subscription_user_artist"       json:"platform"`
	ArtistID      string     `gorm:"type:text;not null;uniqueIndex:idx_subscription_user_artist"       json:"artistId"`
	LastChecked   time.Time  `gorm:"type:timestamp;not null"                                            json:"lastChecked"`
	LastReleaseID *string    `gorm:"type:text"                                                          json:"lastReleaseId,omitempty"`
	LastNotified  *time.Time `gorm:"type:timestamp"                                                     json:"lastNotified,omitempty"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// Release is a catalog release discovered for a subscribed artist.
type Release struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	ReleaseDate time.Time `json:"releaseDate"`
	URL         string    `json:"url"`
	Platform    Platform  `json:"platform"`
}

// IsNewFor reports whether the release has not been seen by the subscription.
func (r Release) IsNewFor(sub ArtistSubscription) bool {
	if !r.ReleaseDate.After(sub.LastChecked) {
		return false
	}
	return sub.LastReleaseID == nil || *sub.LastReleaseID != r.ID
}
