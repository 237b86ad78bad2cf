package models

import (
	"strings"
	"time"
)

// User is a chat user identified by their Telegram id.
type User struct {
	BaseUUIDModel
	TelegramID           int64      `gorm:"type:bigint;uniqueIndex;not null" json:"telegramId"`
	Username             string     `gorm:"type:text"                        json:"username"`
	FirstName            string     `gorm:"type:text"                        json:"firstName"`
	LastName             string     `gorm:"type:text"                        json:"lastName"`
	NotificationsEnabled bool       `gorm:"type:bool;default:true"           json:"notificationsEnabled"`
	LastSeenAt           *time.Time `gorm:"type:timestamp"                   json:"lastSeenAt,omitempty"`

	Subscriptions []ArtistSubscription `gorm:"foreignKey:UserID" json:"subscriptions,omitempty"`
}

func (u *User) DisplayName() string {
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		return name
	}
	if u.Username != "" {
		return "@" + u.Username
	}
	return "there"
}

// ChatProfile carries the identity fields a chat update provides.
type ChatProfile struct {
	TelegramID int64
	Username   string
	FirstName  string
	LastName   string
}

// ApplyProfile copies profile fields onto the user and reports whether
// anything changed.
func (u *User) ApplyProfile(p ChatProfile) bool {
	changed := u.Username != p.Username || u.FirstName != p.FirstName || u.LastName != p.LastName
	u.TelegramID = p.TelegramID
	u.Username = p.Username
	u.FirstName = p.FirstName
	u.LastName = p.LastName
	return changed
}
