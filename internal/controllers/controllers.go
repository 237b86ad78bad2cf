package controllers

import (
	"musicbot/config"
	"musicbot/internal/events"
	"musicbot/internal/repositories"
	"musicbot/internal/services"

	jobController "musicbot/internal/controllers/jobs"
	searchController "musicbot/internal/controllers/search"
	subscriptionController "musicbot/internal/controllers/subscription"
	themeController "musicbot/internal/controllers/theme"
	userController "musicbot/internal/controllers/users"
)

type Controllers struct {
	User         userController.UserControllerInterface
	Search       searchController.SearchControllerInterface
	Subscription subscriptionController.SubscriptionControllerInterface
	Theme        themeController.ThemeControllerInterface
	Job          jobController.JobControllerInterface
}

func New(
	svc services.Service,
	repos repositories.Repository,
	bus events.Publisher,
	config config.Config,
) Controllers {
	return Controllers{
		User:         userController.New(repos, config),
		Search:       searchController.New(repos, svc, config),
		Subscription: subscriptionController.New(repos, svc, config),
		Theme:        themeController.New(svc, config),
		Job:          jobController.New(svc, bus, config),
	}
}
