package constants

import "time"

// Cache hashes; CacheBuilder joins them to the key with a colon.
const (
	ChatStateCachePrefix = "chat_state"
	LyricsCachePrefix    = "lyrics"
	TrendingCachePrefix  = "trending"
)

const (
	ChatStateCacheExpiry = 30 * time.Minute
	LyricsCacheExpiry    = 24 * time.Hour
	TrendingCacheExpiry  = time.Hour
)
