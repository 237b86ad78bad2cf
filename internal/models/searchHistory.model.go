package models

import (
	"time"

	"github.com/google/uuid"
)

type SearchHistory struct {
	BaseModel
	UserID     uuid.UUID `gorm:"type:uuid;not null;index:idx_search_history_user_time" json:"userId"`
	Query      string    `gorm:"type:text;not null"                                     json:"query"`
	Platform   Platform  `gorm:"type:text;not null"                                     json:"platform"`
	SearchedAt time.Time `gorm:"type:timestamp;not null;index:idx_search_history_user_time,sort:desc" json:"searchedAt"`
}
