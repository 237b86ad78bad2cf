package models

import (
	"time"

	"gorm.io/datatypes"
)

type TrendingSong struct {
	BaseModel
	Title      string         `gorm:"type:text;not null"                  json:"title"`
	Artist     string         `gorm:"type:text;not null"                  json:"artist"`
	Platform   Platform       `gorm:"type:text;not null;index"            json:"platform"`
	TrackID    string         `gorm:"type:text;not null"                  json:"trackId"`
	Rank       int            `gorm:"type:int;not null"                   json:"rank"`
	CapturedAt time.Time      `gorm:"type:timestamp;not null;index"       json:"capturedAt"`
	Metadata   datatypes.JSON `gorm:"type:jsonb"                          json:"metadata,omitempty"`
}
