package repositories

import (
	"musicbot/internal/database"
)

type Repository struct {
	User          UserRepository
	Subscription  SubscriptionRepository
	SearchHistory SearchHistoryRepository
	Trending      TrendingRepository
	Theme         ThemeRepository
	ChatState     ChatStateRepository
}

func New(db database.DB) Repository {
	return Repository{
		User:          NewUserRepository(db),
		Subscription:  NewSubscriptionRepository(db),
		SearchHistory: NewSearchHistoryRepository(db),
		Trending:      NewTrendingRepository(db),
		Theme:         NewThemeRepository(db),
		ChatState:     NewChatStateRepository(db),
	}
}
