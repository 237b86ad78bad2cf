package services

import "time"

const (
	TrendingRetention = 30 * 24 * time.Hour

	TrendingPerPlatform = 5
	SearchResultLimit   = 5
	ReleaseLookupLimit  = 5

	// TelegramMessageLimit leaves headroom under the 4096 character cap.
	TelegramMessageLimit = 4000
)
